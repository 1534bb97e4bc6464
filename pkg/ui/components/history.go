package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TradeRow is one ledger entry formatted for display.
type TradeRow struct {
	Time       string
	Pair       string
	Resolution string
	ProfitUSD  string
	Profitable bool
}

// HistoryComponent renders the recent trade records plus running totals.
type HistoryComponent struct {
	rows     []TradeRow
	capacity int

	totalProfit string
	tradeCount  int

	headerStyle lipgloss.Style
	mutedStyle  lipgloss.Style
	gainStyle   lipgloss.Style
	lossStyle   lipgloss.Style
}

// NewHistoryComponent creates the history panel keeping the given number
// of rows.
func NewHistoryComponent(capacity int) *HistoryComponent {
	return &HistoryComponent{
		capacity:    capacity,
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		gainStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		lossStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
}

// Add appends a row, evicting the oldest beyond capacity.
func (c *HistoryComponent) Add(row TradeRow) {
	c.rows = append(c.rows, row)
	if len(c.rows) > c.capacity {
		c.rows = c.rows[len(c.rows)-c.capacity:]
	}
}

// SetTotals updates the running totals line.
func (c *HistoryComponent) SetTotals(totalProfit string, tradeCount int) {
	c.totalProfit = totalProfit
	c.tradeCount = tradeCount
}

// View renders the panel, newest row last.
func (c *HistoryComponent) View() string {
	var sb strings.Builder
	sb.WriteString(c.headerStyle.Render("TRADE HISTORY"))
	sb.WriteString("\n\n")

	if len(c.rows) == 0 {
		sb.WriteString(c.mutedStyle.Render("  No resolutions yet."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(c.mutedStyle.Render(fmt.Sprintf("  %-8s %-12s %-18s %10s", "TIME", "PAIR", "RESOLUTION", "PROFIT")))
		sb.WriteString("\n")
		for _, row := range c.rows {
			style := c.gainStyle
			if !row.Profitable {
				style = c.lossStyle
			}
			sb.WriteString(fmt.Sprintf("  %-8s %-12s %-18s ", row.Time, row.Pair, row.Resolution))
			sb.WriteString(style.Render(fmt.Sprintf("%10s", "$"+row.ProfitUSD)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(c.mutedStyle.Render(fmt.Sprintf("  Total: $%s over %d trades", c.totalProfit, c.tradeCount)))

	return sb.String()
}
