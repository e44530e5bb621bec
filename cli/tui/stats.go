package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/sigsplit/lode"
)

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewStatsRun:
		content = m.renderStatsRun()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStatsRun() string {
	data, ok := m.data.(*lode.RunSummary)
	if !ok {
		return "Invalid data type for stats_run"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run " + data.RunID))
	b.WriteString("\n")

	b.WriteString(m.renderField("Outcome", OutcomeStyle(data.Outcome).Render(data.Outcome)))
	if data.Message != "" {
		b.WriteString(m.renderField("Message", ValueStyle.Render(data.Message)))
	}
	b.WriteString("\n")

	boxes := []string{
		m.renderStatBox("Records", data.Records, highlightColor),
		m.renderStatBox("Chunks", data.Chunks, primaryColor),
		m.renderStatBox("Invocations", data.Invocations, warningColor),
		m.renderStatBox("Rows", data.Rows, successColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	b.WriteString(m.renderField("Organism", ValueStyle.Render(data.Organism)))
	b.WriteString(m.renderField("Input", ValueStyle.Render(data.Input)))
	b.WriteString(m.renderField("Output", ValueStyle.Render(data.Output)))
	if !data.StartedAt.IsZero() {
		b.WriteString(m.renderField("Started", ValueStyle.Render(data.StartedAt.Format("2006-01-02 15:04:05"))))
	}
	duration := time.Duration(data.DurationMs) * time.Millisecond
	b.WriteString(m.renderField("Duration", ValueStyle.Render(duration.String())))
	b.WriteString(m.renderField("Truncated", ValueStyle.Render(fmt.Sprintf("%d sequences", data.Truncated))))

	cleanup := fmt.Sprintf("%d removed", data.FilesRemoved)
	cleanupStyle := SuccessStyle
	if data.CleanupFailures > 0 {
		cleanup += fmt.Sprintf(", %d failed", data.CleanupFailures)
		cleanupStyle = WarningStyle
	}
	b.WriteString(m.renderField("Cleanup", cleanupStyle.Render(cleanup)))

	if data.TableFile != "" {
		b.WriteString(m.renderField("Archived", ValueStyle.Render(data.TableFile)))
	}

	return b.String()
}

func (m StatsModel) renderField(label, value string) string {
	return LabelStyle.Render(label+":") + " " + value + "\n"
}

func (m StatsModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	model := NewStatsModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without full TUI (for fallback).
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
