package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/urlingest/internal/config"
	"github.com/user/urlingest/internal/db"
)

const loadLimit = 200

type model struct {
	cfg     *config.Config
	store   db.Store
	list    list.Model
	records []db.Record
	kinds   map[string]bool // Kind filter toggles
	detail  bool
	width   int
	height  int
	err     error
}

type recordItem struct {
	record db.Record
}

func (r recordItem) Title() string {
	icon := kindIcon(r.record.Kind)
	title := r.record.Title
	if title == "" {
		title = r.record.URL
	}
	return fmt.Sprintf("%s %s", icon, title)
}

func (r recordItem) Description() string {
	if r.record.Error != "" {
		return "error: " + r.record.Error
	}
	if r.record.Summary != "" {
		summary := r.record.Summary
		if len(summary) > 80 {
			summary = summary[:80] + "..."
		}
		return summary
	}
	return r.record.URL
}

func (r recordItem) FilterValue() string {
	return r.record.Title + " " + r.record.Summary + " " + strings.Join(r.record.Concepts, " ")
}

func kindIcon(kind string) string {
	switch kind {
	case "youtube":
		return "[Y]"
	case "webpage":
		return "[W]"
	default:
		return "[?]"
	}
}

func initialModel(cfg *config.Config) model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "URL Ingest"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{
		cfg:  cfg,
		list: l,
		kinds: map[string]bool{
			"webpage": true,
			"youtube": true,
		},
	}
}

type initMsg struct {
	store   db.Store
	records []db.Record
	err     error
}

type filterMsg struct {
	records []db.Record
}

func (m model) Init() tea.Cmd {
	return m.initStore
}

func (m model) initStore() tea.Msg {
	store, err := db.Open(m.cfg)
	if err != nil {
		return initMsg{err: err}
	}

	records, err := store.ListRecent(context.Background(), loadLimit)
	if err != nil {
		return initMsg{store: store, err: err}
	}

	return initMsg{store: store, records: records}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
		case "enter":
			if !m.detail && m.list.SelectedItem() != nil {
				m.detail = true
				return m, nil
			}
		case "j", "down":
			if !m.detail {
				m.list.CursorDown()
				return m, nil
			}
		case "k", "up":
			if !m.detail {
				m.list.CursorUp()
				return m, nil
			}
		case "g":
			if !m.detail {
				m.list.Select(0)
				return m, nil
			}
		case "G":
			if !m.detail {
				items := m.list.Items()
				if len(items) > 0 {
					m.list.Select(len(items) - 1)
				}
				return m, nil
			}
		case "o":
			if item, ok := m.list.SelectedItem().(recordItem); ok {
				openBrowser(item.record.URL)
			}
		case "1":
			m.kinds["webpage"] = !m.kinds["webpage"]
			return m, m.filterRecords
		case "2":
			m.kinds["youtube"] = !m.kinds["youtube"]
			return m, m.filterRecords
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)

	case initMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.store = msg.store
		m.records = msg.records
		m.list.SetItems(m.recordsToItems(msg.records))

	case filterMsg:
		m.list.SetItems(m.recordsToItems(msg.records))
	}

	if !m.detail {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) filterRecords() tea.Msg {
	return filterMsg{records: m.records}
}

func (m model) recordsToItems(records []db.Record) []list.Item {
	items := make([]list.Item, 0, len(records))
	for _, r := range records {
		if m.kinds[r.Kind] {
			items = append(items, recordItem{record: r})
		}
	}
	return items
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if m.detail {
		return m.detailView()
	}

	var b strings.Builder

	activeFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	inactiveFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	filters := []string{}
	for _, k := range []struct{ key, label string }{
		{"webpage", "[W]ebpage"},
		{"youtube", "[Y]ouTube"},
	} {
		if m.kinds[k.key] {
			filters = append(filters, activeFilter.Render(k.label))
		} else {
			filters = append(filters, inactiveFilter.Render(k.label))
		}
	}

	b.WriteString(strings.Join(filters, "  "))
	b.WriteString("\n\n")
	b.WriteString(m.list.View())

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	help := "[j/k]nav [g/G]top/end [Enter]detail [o]pen [1/2]filters [q]uit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) detailView() string {
	item, ok := m.list.SelectedItem().(recordItem)
	if !ok {
		return "No record selected.\n\nPress Esc to go back."
	}
	rec := item.record

	titleStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	var b strings.Builder
	title := rec.Title
	if title == "" {
		title = rec.URL
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", kindIcon(rec.Kind), title)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(rec.URL))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("visited %s via %s", rec.VisitedAt, rec.Source)))
	if rec.Language != "" {
		b.WriteString(dimStyle.Render("  lang " + rec.Language))
	}
	b.WriteString("\n\n")

	if rec.Error != "" {
		b.WriteString(headingStyle.Render("Error"))
		b.WriteString("\n" + rec.Error + "\n\n")
	}
	if len(rec.KeyPoints) > 0 {
		b.WriteString(headingStyle.Render("Key points"))
		b.WriteString("\n")
		for _, p := range rec.KeyPoints {
			b.WriteString("  - " + p + "\n")
		}
		b.WriteString("\n")
	}
	if len(rec.Concepts) > 0 {
		b.WriteString(headingStyle.Render("Concepts"))
		b.WriteString("\n" + strings.Join(rec.Concepts, ", ") + "\n\n")
	}
	if rec.Summary != "" {
		b.WriteString(headingStyle.Render("Summary"))
		b.WriteString("\n" + rec.Summary + "\n\n")
	}

	b.WriteString(dimStyle.Render("[Esc]back [o]pen [q]uit"))
	return b.String()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the TUI application
func Run(cfg *config.Config) error {
	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
