package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/export"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

type invoiceViewMode int

const (
	invoiceViewList   invoiceViewMode = iota
	invoiceViewDetail                 // Viewing a single invoice
	invoiceViewConfirmDelete
)

// statusFilters cycles All → Unpaid → Paid
var statusFilters = []*domain.InvoiceStatus{nil, statusPtr(domain.InvoiceStatusUnpaid), statusPtr(domain.InvoiceStatusPaid)}

func statusPtr(s domain.InvoiceStatus) *domain.InvoiceStatus { return &s }

// InvoicesModel displays invoices in list and detail views
type InvoicesModel struct {
	ctx       context.Context
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	cursor    int
	selected  *domain.Invoice
	loading   bool
	busy      bool // export running
	err       error
	statusMsg string

	search      searchBar
	filterIndex int
}

// IsCapturingInput returns true when the search bar is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.search.active || m.mode == invoiceViewConfirmDelete
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

type invoiceToggledMsg struct {
	invoice *domain.Invoice
	err     error
}

type invoiceDeletedMsg struct {
	number string
	err    error
}

// invoiceExportedMsg signals a PDF export completed
type invoiceExportedMsg struct {
	path string
	err  error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(ctx context.Context, a *app.App) tea.Model {
	return &InvoicesModel{
		ctx:     ctx,
		app:     a,
		mode:    invoiceViewList,
		loading: true,
		search:  newSearchBar("client or invoice number"),
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	ctx, a := m.ctx, m.app
	query := m.search.Query()
	status := statusFilters[m.filterIndex]
	return func() tea.Msg {
		invoices, err := a.InvoiceService.ListInvoices(ctx, query, status)
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) current() *domain.Invoice {
	if m.mode == invoiceViewDetail {
		return m.selected
	}
	if m.cursor < 0 || m.cursor >= len(m.invoices) {
		return nil
	}
	return m.invoices[m.cursor]
}

func (m *InvoicesModel) toggleStatus(inv *domain.Invoice) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		updated, err := a.InvoiceService.ToggleStatus(ctx, inv.ID)
		return invoiceToggledMsg{invoice: updated, err: err}
	}
}

func (m *InvoicesModel) deleteInvoice(inv *domain.Invoice) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return invoiceDeletedMsg{number: inv.InvoiceNumber, err: a.InvoiceService.DeleteInvoice(ctx, inv.ID)}
	}
}

func (m *InvoicesModel) exportInvoice(inv *domain.Invoice) tea.Cmd {
	ctx, a := m.ctx, m.app
	req := export.Request{Mode: export.ModeFile, Dir: a.Config.Invoice.OutputDir}
	return func() tea.Msg {
		res, err := a.InvoiceService.ExportInvoice(ctx, inv.ID, req)
		if err != nil {
			return invoiceExportedMsg{err: err}
		}
		return invoiceExportedMsg{path: res.Path}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.invoices = msg.invoices
			m.cursor = clampCursor(m.cursor, len(m.invoices))
		}
		return m, nil

	case invoiceToggledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.selected != nil && m.selected.ID == msg.invoice.ID {
			m.selected = msg.invoice
		}
		m.statusMsg = fmt.Sprintf("Invoice %s marked %s", msg.invoice.InvoiceNumber, msg.invoice.Status)
		return m, m.loadInvoices()

	case invoiceDeletedMsg:
		m.mode = invoiceViewList
		m.selected = nil
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted invoice %s", msg.number)
		m.loading = true
		return m, m.loadInvoices()

	case invoiceExportedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Exported -> %s", msg.path)
		return m, nil
	}

	if m.search.active {
		cmd := m.search.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			m.cursor = 0
			return m, tea.Batch(cmd, m.loadInvoices())
		}
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	switch m.mode {
	case invoiceViewConfirmDelete:
		if strings.ToLower(keyMsg.String()) == "y" {
			if inv := m.selectedForDelete(); inv != nil {
				return m, m.deleteInvoice(inv)
			}
		}
		if m.selected != nil {
			m.mode = invoiceViewDetail
		} else {
			m.mode = invoiceViewList
		}
		return m, nil
	case invoiceViewDetail:
		return m.updateDetail(keyMsg)
	default:
		return m.updateList(keyMsg)
	}
}

func (m *InvoicesModel) selectedForDelete() *domain.Invoice {
	if m.selected != nil {
		return m.selected
	}
	if m.cursor < 0 || m.cursor >= len(m.invoices) {
		return nil
	}
	return m.invoices[m.cursor]
}

// updateActions handles the keys shared by list and detail views
func (m *InvoicesModel) updateActions(msg tea.KeyMsg) (tea.Cmd, bool) {
	inv := m.current()
	if inv == nil {
		return nil, false
	}
	switch {
	case msg.String() == "p":
		return m.toggleStatus(inv), true
	case msg.String() == "e":
		if m.busy {
			return nil, true
		}
		m.busy = true
		m.statusMsg = "Generating PDF..."
		return m.exportInvoice(inv), true
	case key.Matches(msg, DefaultKeyMap.Delete):
		m.mode = invoiceViewConfirmDelete
		return nil, true
	}
	return nil, false
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	if cmd, handled := m.updateActions(msg); handled {
		return m, cmd
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if inv := m.current(); inv != nil {
			m.selected = inv
			m.mode = invoiceViewDetail
			m.statusMsg = ""
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		return m, m.search.Start()
	case msg.String() == "f":
		m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
		m.cursor = 0
		m.loading = true
		return m, m.loadInvoices()
	case key.Matches(msg, DefaultKeyMap.New):
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenBuilder} }
	}

	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	if cmd, handled := m.updateActions(msg); handled {
		return m, cmd
	}
	if key.Matches(msg, DefaultKeyMap.Back) {
		m.mode = invoiceViewList
		m.selected = nil
		m.statusMsg = ""
	}
	return m, nil
}

func (m *InvoicesModel) money(d decimal.Decimal) string {
	return formatMoney(m.app.Config.Invoice.Currency, d)
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading..."
	}

	if m.selected != nil && m.mode != invoiceViewList {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *InvoicesModel) filterLabel() string {
	if status := statusFilters[m.filterIndex]; status != nil {
		return string(*status)
	}
	return "All"
}

func (m *InvoicesModel) viewBanner() string {
	var s string
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	return s
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Invoices") + subtitleStyle.Render("  ("+m.filterLabel()+")") + "\n\n"
	s += m.search.View()
	s += m.viewBanner()

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices found. Press 'n' to build one.")
		return s
	}

	// Header
	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-12s  %-22s  %-10s  %-10s  %14s  %s",
		"Number", "Client", "Date", "Due", "Total", "Status",
	)) + "\n"

	for i, inv := range m.invoices {
		invLine := fmt.Sprintf("  %-12s  %-22s  %-10s  %-10s  %14s  ",
			truncateStr(inv.InvoiceNumber, 12),
			truncateStr(inv.ClientSnapshot.Name, 22),
			inv.Date,
			inv.DueDate,
			m.money(inv.Total),
		)

		if i == m.cursor {
			s += selectedStyle.Render(invLine+string(inv.Status)) + "\n"
		} else {
			s += invLine + statusBadge(inv.Status) + "\n"
		}
	}

	if m.mode == invoiceViewConfirmDelete {
		return s + m.viewConfirm()
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view  p: paid/unpaid  e: export PDF  x: delete  /: search  f: filter  n: new")

	return s
}

func (m *InvoicesModel) viewConfirm() string {
	inv := m.selectedForDelete()
	if inv == nil {
		return ""
	}
	return "\n" + lipgloss.NewStyle().Foreground(warningColor).Render(
		fmt.Sprintf("  Delete invoice %s? [y/N]", inv.InvoiceNumber)) + "\n"
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected

	var s string

	// Header
	s += titleStyle.Render(fmt.Sprintf("Invoice %s", inv.InvoiceNumber)) + "\n\n"
	s += m.viewBanner()
	s += fmt.Sprintf("  Client:   %s\n", inv.ClientSnapshot.Name)
	if inv.ClientSnapshot.Email != "" {
		s += fmt.Sprintf("            %s\n", inv.ClientSnapshot.Email)
	}
	if inv.ClientSnapshot.Address != "" {
		s += fmt.Sprintf("            %s\n", inv.ClientSnapshot.Address)
	}
	s += fmt.Sprintf("  Date:     %s\n", inv.Date)
	s += fmt.Sprintf("  Due:      %s\n", inv.DueDate)
	s += fmt.Sprintf("  Status:   %s\n", statusBadge(inv.Status))
	s += "\n"

	// Line items
	if len(inv.Items) == 0 {
		s += subtitleStyle.Render("  No line items") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-36s  %5s  %14s  %14s",
			"Description", "Qty", "Rate", "Amount",
		)) + "\n"

		for _, item := range inv.Items {
			s += fmt.Sprintf("  %-36s  %5d  %14s  %14s\n",
				truncateStr(item.Description, 36),
				item.Quantity,
				m.money(item.Rate),
				m.money(billing.LineTotal(item)),
			)
		}
	}

	s += "\n"
	s += fmt.Sprintf("  Subtotal:   %14s\n", m.money(inv.Subtotal))
	s += fmt.Sprintf("  Tax (%s): %14s\n", formatRate(inv.TaxRate), m.money(inv.TaxAmount))
	s += totalStyle.Render(fmt.Sprintf("  Total:      %14s", m.money(inv.Total))) + "\n"

	if inv.Notes != "" {
		s += "\n" + subtitleStyle.Render("  "+inv.Notes) + "\n"
	}

	if m.mode == invoiceViewConfirmDelete {
		return s + m.viewConfirm()
	}

	s += "\n" + helpStyle.Render("  p: paid/unpaid  e: export PDF  x: delete  esc: back to list")

	return s
}
