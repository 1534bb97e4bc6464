// Package components contains the composable panels of the dashboard.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DecisionRow holds the display fields of the pending decision. All values
// are pre-formatted by the caller; the component never calculates anything.
type DecisionRow struct {
	Pair             string
	BuyVenue         string
	SellVenue        string
	SpreadBps        int64
	LoanUSD          string
	NetProfitUSD     string
	GasUSD           string
	RemainingSeconds float64
	TotalSeconds     float64
	AutoExecutable   bool
	Expired          bool
	RiskLevel        string
	RiskScore        int
	RiskReason       string
	RouteLines       []string
}

// DecisionComponent renders the single pending decision panel.
type DecisionComponent struct {
	row          *DecisionRow
	headerStyle  lipgloss.Style
	mutedStyle   lipgloss.Style
	profitStyle  lipgloss.Style
	warnStyle    lipgloss.Style
	dangerStyle  lipgloss.Style
	barFillStyle lipgloss.Style
}

// NewDecisionComponent creates the decision panel.
func NewDecisionComponent() *DecisionComponent {
	return &DecisionComponent{
		headerStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		mutedStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		profitStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		warnStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		dangerStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		barFillStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
	}
}

// Set replaces the displayed decision.
func (c *DecisionComponent) Set(row DecisionRow) {
	c.row = &row
}

// Clear empties the panel.
func (c *DecisionComponent) Clear() {
	c.row = nil
}

// Occupied reports whether a decision is on display.
func (c *DecisionComponent) Occupied() bool {
	return c.row != nil
}

// View renders the panel.
func (c *DecisionComponent) View() string {
	var sb strings.Builder
	sb.WriteString(c.headerStyle.Render("PENDING DECISION"))
	sb.WriteString("\n\n")

	if c.row == nil {
		sb.WriteString(c.mutedStyle.Render("  No pending opportunity. Scanning..."))
		return sb.String()
	}

	r := c.row
	sb.WriteString(fmt.Sprintf("  %s  %s → %s  %+d bps\n", r.Pair, r.BuyVenue, r.SellVenue, r.SpreadBps))
	sb.WriteString(fmt.Sprintf("  Loan $%s   Gas $%s   Net ", r.LoanUSD, r.GasUSD))
	sb.WriteString(c.profitStyle.Render("$" + r.NetProfitUSD))
	sb.WriteString("\n\n")

	for _, line := range r.RouteLines {
		sb.WriteString(c.mutedStyle.Render("    " + line))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if r.Expired {
		sb.WriteString(c.dangerStyle.Render("  ⏰ EXPIRED"))
		sb.WriteString(c.mutedStyle.Render("  awaiting manual decision (e: execute, c: cancel)"))
	} else {
		sb.WriteString("  " + c.renderBar())
		if r.AutoExecutable {
			sb.WriteString(c.warnStyle.Render("  AUTO"))
		}
	}
	sb.WriteString("\n")

	if r.RiskLevel != "" {
		style := c.profitStyle
		switch r.RiskLevel {
		case "MEDIUM":
			style = c.warnStyle
		case "HIGH":
			style = c.dangerStyle
		}
		sb.WriteString("  Risk: ")
		sb.WriteString(style.Render(fmt.Sprintf("%s (%d)", r.RiskLevel, r.RiskScore)))
		if r.RiskReason != "" {
			sb.WriteString(c.mutedStyle.Render(" " + r.RiskReason))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderBar draws the countdown as a fixed-width progress bar.
func (c *DecisionComponent) renderBar() string {
	const width = 24

	r := c.row
	frac := 0.0
	if r.TotalSeconds > 0 {
		frac = r.RemainingSeconds / r.TotalSeconds
	}
	filled := int(frac * width)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	bar := c.barFillStyle.Render(strings.Repeat("█", filled)) +
		c.mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %4.1fs", bar, r.RemainingSeconds)
}
