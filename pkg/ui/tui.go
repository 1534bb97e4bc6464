package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/arbitrage/app"
	"github.com/apexarb/apexarb/business/arbitrage/domain"
	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/pkg/ui/components"
)

// Controller receives the user's execute/cancel commands.
type Controller interface {
	Execute(ctx context.Context, oppID uuid.UUID) error
	Cancel(ctx context.Context, oppID uuid.UUID) error
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	controller Controller
	keys       KeyMap

	decision *components.DecisionComponent
	history  *components.HistoryComponent

	pending          *app.PendingDecision
	countdownSeconds float64

	totalProfit decimal.Decimal
	tradeCount  int

	scanCount    uint64
	lastScanTime time.Time
	activityFeed []string
	errorMsg     string

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a new TUI model.
func New(controller Controller, countdownSeconds float64, historyCapacity int) Model {
	return Model{
		controller:       controller,
		keys:             DefaultKeyMap(),
		decision:         components.NewDecisionComponent(),
		history:          components.NewHistoryComponent(historyCapacity),
		countdownSeconds: countdownSeconds,
		activityFeed:     make([]string, 0, 8),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Execute):
			if m.pending != nil {
				if err := m.controller.Execute(context.Background(), m.pending.Opportunity.ID); err != nil {
					m.errorMsg = err.Error()
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Cancel):
			if m.pending != nil {
				if err := m.controller.Cancel(context.Background(), m.pending.Opportunity.ID); err != nil {
					m.errorMsg = err.Error()
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			m.activityFeed = m.activityFeed[:0]
			m.errorMsg = ""
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		return m, tickCmd()

	case ScanTickMsg:
		m.scanCount++
		m.lastScanTime = time.Now()

	case OpportunityMsg:
		opp := msg.Opportunity
		snapshot := app.PendingDecision{
			Opportunity:      opp,
			RemainingSeconds: m.countdownSeconds,
			State:            app.SlotPending,
		}
		m.pending = &snapshot
		m.decision.Set(m.decisionRow(snapshot))
		m.addActivity(fmt.Sprintf("found %s", opp.String()))

	case DroppedMsg:
		m.addActivity("dropped: " + msg.Reason)

	case CountdownMsg:
		snapshot := msg.Decision
		m.pending = &snapshot
		m.decision.Set(m.decisionRow(snapshot))

	case RiskVerdictMsg:
		snapshot := msg.Decision
		m.pending = &snapshot
		m.decision.Set(m.decisionRow(snapshot))

	case ResolvedMsg:
		m.pending = nil
		m.decision.Clear()
		if msg.Record != nil {
			rec := *msg.Record
			m.totalProfit = m.totalProfit.Add(rec.RealizedProfitUSD)
			m.tradeCount++
			m.history.Add(components.TradeRow{
				Time:       rec.ResolvedAt.Format("15:04:05"),
				Pair:       rec.Opportunity.PairID,
				Resolution: string(rec.Resolution),
				ProfitUSD:  rec.RealizedProfitUSD.StringFixed(2),
				Profitable: rec.RealizedProfitUSD.IsPositive(),
			})
			m.history.SetTotals(m.totalProfit.StringFixed(2), m.tradeCount)
		}
		m.addActivity("resolved: " + msg.Resolution)

	case ErrorMsg:
		m.errorMsg = msg.Error.Error()
	}

	return m, nil
}

func (m Model) decisionRow(d app.PendingDecision) components.DecisionRow {
	opp := d.Opportunity

	routeLines := make([]string, len(opp.Route))
	for i, step := range opp.Route {
		routeLines[i] = fmt.Sprintf("%d. %s", step.Index, step.Description)
	}

	row := components.DecisionRow{
		Pair:             opp.PairID,
		BuyVenue:         opp.BuyVenue,
		SellVenue:        opp.SellVenue,
		SpreadBps:        opp.SpreadBps,
		LoanUSD:          opp.LoanUSD.StringFixed(2),
		NetProfitUSD:     opp.NetProfitUSD.StringFixed(2),
		GasUSD:           opp.GasUSD.StringFixed(2),
		RemainingSeconds: d.RemainingSeconds,
		TotalSeconds:     m.countdownSeconds,
		AutoExecutable:   d.AutoExecutable,
		Expired:          d.State == app.SlotExpired,
		RouteLines:       routeLines,
	}
	if d.RiskVerdict != nil {
		row.RiskLevel = string(d.RiskVerdict.Level)
		row.RiskScore = d.RiskVerdict.Score
		row.RiskReason = d.RiskVerdict.Reason
	}
	return row
}

func (m *Model) addActivity(message string) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	m.activityFeed = append(m.activityFeed, line)
	if len(m.activityFeed) > 6 {
		m.activityFeed = m.activityFeed[len(m.activityFeed)-6:]
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if !m.ready {
		return "\n  Loading..."
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ⚡ apexarb — flash-loan arbitrage scanner "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.decision.View()
	rightCol := m.history.View()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderActivityFeed())
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(NegativeValue.Render("  ⚠ " + m.errorMsg))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("q: quit • e: execute • c: cancel • x: clear"))

	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastScanTime) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		parts = append(parts, StatusLive.Render(spinners[idx]+" Scanning"))
	}

	parts = append(parts, fmt.Sprintf("Scans: %d", m.scanCount))
	parts = append(parts, fmt.Sprintf("Trades: %d", m.tradeCount))

	profit := "Total: $" + m.totalProfit.StringFixed(2)
	if m.totalProfit.IsNegative() {
		parts = append(parts, NegativeValue.Render(profit))
	} else {
		parts = append(parts, PositiveValue.Render(profit))
	}

	if !m.lastScanTime.IsZero() {
		ago := time.Since(m.lastScanTime).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Last tick: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(MutedValue.Render("  LIVE ACTIVITY"))
	sb.WriteString("\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for ticks..."))
		sb.WriteString("\n")
		return sb.String()
	}
	for _, line := range m.activityFeed {
		sb.WriteString(MutedValue.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the Bubble Tea program and blocks until it exits.
func Run(model Model) error {
	Program = tea.NewProgram(model, tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}

// Forward consumes the event stream and feeds it to the program. It
// returns when the stream closes or ctx is cancelled.
func Forward(ctx context.Context, stream <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-stream:
			if !ok {
				return
			}
			if msg := translate(ev); msg != nil {
				Send(msg)
			}
		}
	}
}

// translate maps bus events onto TUI messages.
func translate(ev events.Event) tea.Msg {
	switch ev.Kind {
	case events.KindScanTick:
		return ScanTickMsg{Message: ev.Message}
	case events.KindOpportunityFound:
		if opp, ok := ev.Payload.(domain.Opportunity); ok {
			return OpportunityMsg{Opportunity: opp}
		}
	case events.KindOpportunityDropped:
		return DroppedMsg{Reason: ev.Message}
	case events.KindCountdown:
		if d, ok := ev.Payload.(app.PendingDecision); ok {
			return CountdownMsg{Decision: d}
		}
	case events.KindRiskVerdict:
		if d, ok := ev.Payload.(app.PendingDecision); ok {
			return RiskVerdictMsg{Decision: d}
		}
	case events.KindDecisionResolved:
		if rec, ok := ev.Payload.(domain.TradeRecord); ok {
			return ResolvedMsg{Resolution: ev.Message, Record: &rec}
		}
		return ResolvedMsg{Resolution: ev.Message}
	}
	return nil
}
