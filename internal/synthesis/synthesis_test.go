package synthesis

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/user/urlingest/internal/config"
)

func TestParseAnalysis(t *testing.T) {
	raw := `{"key_points":["first","second"],"concepts":["go","http"],"summary":"Short summary."}`

	tests := []struct {
		name     string
		response string
	}{
		{"bare json", raw},
		{"json fence", "```json\n" + raw + "\n```"},
		{"plain fence", "```\n" + raw + "\n```"},
		{"surrounding whitespace", "\n  " + raw + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnalysis(tt.response)
			if err != nil {
				t.Fatalf("parseAnalysis: %v", err)
			}
			if !reflect.DeepEqual(a.KeyPoints, []string{"first", "second"}) {
				t.Errorf("unexpected key points %v", a.KeyPoints)
			}
			if !reflect.DeepEqual(a.Concepts, []string{"go", "http"}) {
				t.Errorf("unexpected concepts %v", a.Concepts)
			}
			if a.Summary != "Short summary." {
				t.Errorf("unexpected summary %q", a.Summary)
			}
		})
	}
}

func TestParseAnalysis_MalformedIsError(t *testing.T) {
	if _, err := parseAnalysis("I could not analyze this content."); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestParseAnalysis_DeduplicatesConcepts(t *testing.T) {
	raw := `{"key_points":[],"concepts":["Go","go","HTTP"," ","http"],"summary":""}`
	a, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("parseAnalysis: %v", err)
	}
	if !reflect.DeepEqual(a.Concepts, []string{"Go", "HTTP"}) {
		t.Errorf("expected first occurrences kept in order, got %v", a.Concepts)
	}
}

func TestAnalyze_EmptyTextFailsWithoutProviderCall(t *testing.T) {
	cfg := &config.Config{}
	cfg.Synthesis.Provider = "anthropic"
	s := New(cfg)

	for _, text := range []string{"", "   \n\t"} {
		if _, err := s.Analyze(context.Background(), text); err == nil {
			t.Errorf("expected error for empty input %q", text)
		}
	}
}

func TestAnalyze_UnsupportedProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Synthesis.Provider = "palm"
	s := New(cfg)

	_, err := s.Analyze(context.Background(), "some text")
	if err == nil || !strings.Contains(err.Error(), "unsupported synthesis provider") {
		t.Errorf("expected unsupported provider error, got %v", err)
	}
}
