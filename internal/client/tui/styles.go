package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/GophTasks/internal/client/strength"
	"github.com/atinyakov/GophTasks/internal/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)

	openStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	inProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	doneTextStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// StatusLabel renders a task status in its colour.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusOpen:
		return openStyle.Render(string(s))
	case models.StatusInProgress:
		return inProgressStyle.Render(string(s))
	case models.StatusDone:
		return doneStyle.Render(string(s))
	}
	return mutedStyle.Render("ALL")
}

// StrengthMeter renders an assessment as a coloured bar plus its label,
// e.g. "■■■□ Strong".
func StrengthMeter(a strength.Assessment) string {
	style := dangerStyle
	switch a.Level {
	case strength.LevelWarning:
		style = warningStyle
	case strength.LevelSuccess:
		style = successStyle
	}
	bar := strings.Repeat("■", a.Score) + strings.Repeat("□", strength.MaxScore-a.Score)
	return fmt.Sprintf("%s %s", style.Render(bar), style.Render(a.Label))
}
