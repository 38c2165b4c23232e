package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/devbush/batchinfer/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	dimCellStyle = cellStyle.Foreground(lipgloss.Color("245"))
)

// StatusStyle returns the style used to render a run status.
func StatusStyle(status domain.RunStatus) lipgloss.Style {
	switch status {
	case domain.StatusComplete:
		return okStyle
	case domain.StatusCancelled:
		return warnStyle
	case domain.StatusFailed:
		return errStyle
	default:
		return valueStyle
	}
}
