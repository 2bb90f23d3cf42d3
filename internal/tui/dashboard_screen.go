package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// chartWidth is the widest bar in the monthly revenue chart
const chartWidth = 30

// recentInvoicesLimit is how many of the newest invoices the dashboard lists
const recentInvoicesLimit = 5

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	ctx context.Context
	app *app.App

	// Data
	stats  *service.Dashboard
	recent []*domain.Invoice

	loading bool
	err     error
}

type dashboardDataMsg struct {
	stats  *service.Dashboard
	recent []*domain.Invoice
	err    error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(ctx context.Context, a *app.App) tea.Model {
	return &DashboardModel{
		ctx:     ctx,
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		stats, err := a.ReportService.Dashboard(ctx)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("dashboard: %w", err)}
		}

		invoices, err := a.Repo.Invoices.List(ctx)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("invoices: %w", err)}
		}

		// Newest first
		recent := make([]*domain.Invoice, 0, recentInvoicesLimit)
		for i := len(invoices) - 1; i >= 0 && len(recent) < recentInvoicesLimit; i-- {
			recent = append(recent, invoices[i])
		}

		return dashboardDataMsg{stats: stats, recent: recent}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.stats = msg.stats
		m.recent = msg.recent
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case tea.KeyMsg:
		if msg.String() == "n" {
			return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenBuilder} }
		}
	}

	return m, nil
}

func (m *DashboardModel) money(d decimal.Decimal) string {
	return formatMoney(m.app.Config.Invoice.Currency, d)
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return errorText(m.err)
	}

	d := m.stats
	var b strings.Builder

	b.WriteString(fmt.Sprintf(
		"  Total Revenue:  %-20s  Clients:      %d\n  Avg. Invoice:   %-20s  Invoices:     %d\n  Outstanding:    %-20s  Paid/Unpaid:  %d/%d\n",
		m.money(d.TotalRevenue), d.ClientCount,
		m.money(d.AverageInvoice), d.InvoiceCount,
		m.money(d.Outstanding), d.PaidCount, d.UnpaidCount,
	))

	b.WriteString("\n" + m.renderRevenue())
	b.WriteString("\n" + m.renderTopServices())
	b.WriteString("\n" + m.renderRecent())
	b.WriteString("\n" + helpStyle.Render("  n: new invoice"))

	return b.String()
}

func (m *DashboardModel) renderRevenue() string {
	header := "  Revenue Overview\n"
	if len(m.stats.Monthly) == 0 {
		return header + subtitleStyle.Render("  No invoices yet") + "\n"
	}

	peak := decimal.Zero
	for _, month := range m.stats.Monthly {
		if month.Amount.GreaterThan(peak) {
			peak = month.Amount
		}
	}

	barStyle := lipgloss.NewStyle().Foreground(primaryColor)
	var b strings.Builder
	b.WriteString(header)
	for _, month := range m.stats.Monthly {
		width := 0
		if peak.IsPositive() {
			width = int(month.Amount.Div(peak).Mul(decimal.NewFromInt(chartWidth)).IntPart())
		}
		if width == 0 && month.Amount.IsPositive() {
			width = 1
		}
		b.WriteString(fmt.Sprintf("  %-9s %s %s\n",
			month.Label(),
			barStyle.Render(strings.Repeat("█", width)+strings.Repeat(" ", chartWidth-width)),
			m.money(month.Amount),
		))
	}
	return b.String()
}

func (m *DashboardModel) renderTopServices() string {
	header := "  Top Services\n"
	if len(m.stats.TopServices) == 0 {
		return header + subtitleStyle.Render("  No line items yet") + "\n"
	}

	var b strings.Builder
	b.WriteString(header)
	for i, s := range m.stats.TopServices {
		desc := s.Description
		if desc == "" {
			desc = "(no description)"
		}
		b.WriteString(fmt.Sprintf("  %d. %-32s %4d\n", i+1, truncateStr(desc, 32), s.Count))
	}
	return b.String()
}

func (m *DashboardModel) renderRecent() string {
	header := "  Recent Invoices\n"
	if len(m.recent) == 0 {
		return header + subtitleStyle.Render("  No invoices yet. Press 'n' to build one.") + "\n"
	}

	var b strings.Builder
	b.WriteString(header)
	for _, inv := range m.recent {
		b.WriteString(fmt.Sprintf("  %-12s %-10s %-22s %14s  %s\n",
			truncateStr(inv.InvoiceNumber, 12),
			inv.Date,
			truncateStr(inv.ClientSnapshot.Name, 22),
			m.money(inv.Total),
			statusBadge(inv.Status),
		))
	}
	return b.String()
}
