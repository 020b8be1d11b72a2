// Package render draws view state as terminal text. The same functions feed
// the interactive dashboard and the one-shot CLI commands.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"finadvisor/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	incomeStyle  = successStyle
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func budgetStatusStyle(s models.BudgetStatus) lipgloss.Style {
	switch s {
	case models.BudgetOverBudget:
		return errorStyle
	case models.BudgetNearLimit:
		return warningStyle
	default:
		return successStyle
	}
}

func goalStatusStyle(s models.GoalStatus) lipgloss.Style {
	switch s {
	case models.GoalCompleted, models.GoalOnTrack:
		return successStyle
	case models.GoalBehind:
		return warningStyle
	default:
		return errorStyle
	}
}

func insightStyle(t models.InsightType) lipgloss.Style {
	switch t {
	case models.InsightPositive:
		return successStyle
	case models.InsightWarning:
		return warningStyle
	default:
		return titleStyle
	}
}
