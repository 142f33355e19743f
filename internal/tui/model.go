// Package tui implements the interactive question answering session.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"motorag/internal/domain"
	"motorag/internal/pipeline"
)

// Model is the Bubble Tea model for the interactive session.
type Model struct {
	engine   *pipeline.Engine
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	result   *domain.QueryResult
	summary  string
	status   string
	skill    domain.SkillLevel
	busy     bool
	ready    bool
}

type answerMsg struct {
	result domain.QueryResult
}

// New creates the interactive session model. The summary line gives the
// user a hint of what the loaded corpus covers.
func New(engine *pipeline.Engine, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about maintenance, specifications, or procedures"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	return Model{
		engine:   engine,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		summary:  summary,
		status:   "Ready. Type a question and press Enter. Tab cycles skill level.",
		skill:    domain.SkillIntermediate,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case answerMsg:
		m.busy = false
		m.result = &msg.result
		m.status = statusLine(msg.result)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Searching the manuals..."
				return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
			}
		case "tab":
			m.skill = nextSkill(m.skill)
			m.status = "Skill level: " + string(m.skill)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the session layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Motorcycle Manual Assistant")
	summary := summaryStyle.Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) askCmd(query string) tea.Cmd {
	skill := m.skill
	return func() tea.Msg {
		result := m.engine.AnswerQuery(context.Background(), query, pipeline.QueryOptions{SkillLevel: skill})
		return answerMsg{result: result}
	}
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No answer yet."
	}
	r := m.result
	if !r.Success {
		return errorStyle.Render("Error: " + r.Error)
	}
	var b strings.Builder
	if r.SafetyLevel >= 2 {
		b.WriteString(safetyStyle(r.SafetyLevel).Render(fmt.Sprintf("Safety level %d content", r.SafetyLevel)))
		b.WriteString("\n\n")
	}
	b.WriteString(r.Answer)
	if len(r.Sources) > 0 {
		b.WriteString("\n\nSources:\n")
		for _, s := range r.Sources {
			fmt.Fprintf(&b, "  %s, page %d (%.0f%% relevant)\n", s.Source, s.Page, s.Similarity*100)
		}
	}
	return b.String()
}

func statusLine(r domain.QueryResult) string {
	if !r.Success {
		return "Query failed: " + r.Error
	}
	mode := "generated"
	if r.FallbackMode {
		mode = "fallback"
	}
	return fmt.Sprintf("%d chunks, confidence %.0f%%, %s, %s",
		r.ChunksFound, r.Confidence*100, mode, r.ProcessingTime.Round(time.Millisecond))
}

func nextSkill(s domain.SkillLevel) domain.SkillLevel {
	switch s {
	case domain.SkillBeginner:
		return domain.SkillIntermediate
	case domain.SkillIntermediate:
		return domain.SkillExpert
	default:
		return domain.SkillBeginner
	}
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func safetyStyle(level int) lipgloss.Style {
	color := "214" // orange
	if level >= 3 {
		color = "196" // red
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
