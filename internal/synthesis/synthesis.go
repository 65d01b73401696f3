package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/user/urlingest/internal/config"
)

// Analysis is the structured output of the synthesis pass
type Analysis struct {
	KeyPoints []string `json:"key_points"`
	Concepts  []string `json:"concepts"`
	Summary   string   `json:"summary"`
}

// Synthesizer runs a single-shot LLM analysis over extracted text
type Synthesizer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

const analysisPrompt = `Analyze the following content and respond with JSON only, no prose, in exactly this shape:
{
  "key_points": ["..."],
  "concepts": ["..."],
  "summary": "..."
}

Rules:
- key_points: the 5-10 most important points, most important first
- concepts: the key terms and topics mentioned, as short strings
- summary: 2-3 sentences capturing what this content is about

Content:
%s`

// Analyze makes one provider call and parses the JSON it returns. There is
// no second attempt and no output repair; a malformed response is an error.
func (s *Synthesizer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text to analyze")
	}

	// Guard against oversized input; extraction caps text well below this
	const maxInputLen = 10000
	if len(text) > maxInputLen {
		text = text[:maxInputLen]
	}

	prompt := fmt.Sprintf(analysisPrompt, text)

	var response string
	var err error

	switch s.cfg.Synthesis.Provider {
	case "anthropic":
		response, err = s.analyzeWithAnthropic(ctx, prompt)
	case "openai", "openrouter":
		response, err = s.analyzeWithOpenAI(ctx, prompt)
	case "ollama":
		response, err = s.analyzeWithOllama(ctx, prompt)
	default:
		return nil, fmt.Errorf("unsupported synthesis provider: %s", s.cfg.Synthesis.Provider)
	}

	if err != nil {
		return nil, err
	}

	return parseAnalysis(response)
}

func (s *Synthesizer) maxTokens() int {
	if s.cfg.Synthesis.MaxTokens > 0 {
		return s.cfg.Synthesis.MaxTokens
	}
	return 1024
}

func (s *Synthesizer) analyzeWithAnthropic(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	client := anthropic.NewClient(apiKey)

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(s.cfg.Synthesis.Model),
		MaxTokens: s.maxTokens(),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
			},
		},
	})

	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	return resp.Content[0].GetText(), nil
}

func (s *Synthesizer) analyzeWithOpenAI(ctx context.Context, prompt string) (string, error) {
	var apiKey string
	var baseURL string

	if s.cfg.Synthesis.Provider == "openrouter" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
		baseURL = s.cfg.Synthesis.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
	} else {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return "", fmt.Errorf("API key not set for provider %s", s.cfg.Synthesis.Provider)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.cfg.Synthesis.Model,
		MaxTokens: s.maxTokens(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})

	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *Synthesizer) analyzeWithOllama(ctx context.Context, prompt string) (string, error) {
	serverURL := s.cfg.Synthesis.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	llm, err := ollama.New(ollama.WithModel(s.cfg.Synthesis.Model), ollama.WithServerURL(serverURL))
	if err != nil {
		return "", fmt.Errorf("initializing ollama: %w", err)
	}

	return llm.Call(ctx, prompt, llms.WithJSONMode())
}

// parseAnalysis unwraps an optional markdown fence and unmarshals the JSON.
// Models occasionally fence their output even when told not to.
func parseAnalysis(response string) (*Analysis, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("parsing analysis response: %w", err)
	}

	a.Concepts = dedupe(a.Concepts)
	return &a, nil
}

// dedupe keeps the first occurrence of each concept, case-insensitively,
// preserving order. The concept list is a set.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
