package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

type builderMode int

const (
	builderModeView builderMode = iota
	builderModePickClient
	builderModePickService
	builderModeItemForm
	builderModeDetailsForm
	builderModeConfirmDiscard
)

const (
	itemFieldDescription = iota
	itemFieldQuantity
	itemFieldRate
)

const (
	detailFieldNumber = iota
	detailFieldDate
	detailFieldDue
	detailFieldTax
	detailFieldNotes
)

// pickerOption is one row of the client or service picker
type pickerOption struct {
	id    string
	label string
}

// BuilderModel edits the invoice draft. Every change is stored immediately.
type BuilderModel struct {
	ctx   context.Context
	app   *app.App
	draft *domain.Invoice

	cursor    int // selected line item
	loading   bool
	busy      bool // save or export running
	err       error
	statusMsg string

	mode         builderMode
	form         *form
	options      []pickerOption
	optionCursor int
}

type draftMsg struct {
	draft *domain.Invoice
	err   error
}

type pickerDataMsg struct {
	mode    builderMode
	options []pickerOption
	err     error
}

type draftSavedMsg struct {
	invoice *domain.Invoice
	err     error
}

type draftExportedMsg struct {
	path string
	err  error
}

// NewBuilderModel creates a new invoice builder screen
func NewBuilderModel(ctx context.Context, a *app.App) tea.Model {
	return &BuilderModel{
		ctx:     ctx,
		app:     a,
		loading: true,
	}
}

// IsCapturingInput returns true outside the plain draft view
func (m *BuilderModel) IsCapturingInput() bool {
	return m.mode != builderModeView
}

func (m *BuilderModel) Init() tea.Cmd {
	return m.loadDraft()
}

// draftCmd runs a draft edit on a goroutine and reports the new draft
func (m *BuilderModel) draftCmd(fn func(ctx context.Context) (*domain.Invoice, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		draft, err := fn(ctx)
		return draftMsg{draft: draft, err: err}
	}
}

func (m *BuilderModel) loadDraft() tea.Cmd {
	return m.draftCmd(m.app.InvoiceService.CurrentDraft)
}

func (m *BuilderModel) loadClients() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		clients, err := a.Repo.Clients.List(ctx)
		if err != nil {
			return pickerDataMsg{err: err}
		}
		options := []pickerOption{{id: "", label: "(no client)"}}
		for _, c := range clients {
			options = append(options, pickerOption{id: c.ID, label: fmt.Sprintf("%-28s %s", truncateStr(c.Name, 28), c.Email)})
		}
		return pickerDataMsg{mode: builderModePickClient, options: options}
	}
}

func (m *BuilderModel) loadServices() tea.Cmd {
	ctx, a := m.ctx, m.app
	currency := a.Config.Invoice.Currency
	return func() tea.Msg {
		services, err := a.Repo.Services.List(ctx)
		if err != nil {
			return pickerDataMsg{err: err}
		}
		if len(services) == 0 {
			return pickerDataMsg{err: errors.New("no services yet; add some on the services screen")}
		}
		options := make([]pickerOption, 0, len(services))
		for _, s := range services {
			options = append(options, pickerOption{id: s.ID, label: fmt.Sprintf("%-28s %14s", truncateStr(s.Name, 28), formatMoney(currency, s.Price))})
		}
		return pickerDataMsg{mode: builderModePickService, options: options}
	}
}

func (m *BuilderModel) selectedItem() *domain.LineItem {
	if m.draft == nil || m.cursor < 0 || m.cursor >= len(m.draft.Items) {
		return nil
	}
	return &m.draft.Items[m.cursor]
}

func (m *BuilderModel) openItemForm(item *domain.LineItem) tea.Cmd {
	m.mode = builderModeItemForm
	m.form = newForm(
		formField{label: "Description:", placeholder: "Custom work", value: item.Description, charLimit: 200, width: 60},
		formField{label: "Quantity:", placeholder: "1", value: strconv.Itoa(item.Quantity), charLimit: 9, width: 10},
		formField{label: "Rate:", placeholder: "0.00", value: item.Rate.StringFixed(2), charLimit: 15, width: 15},
	)
	return m.form.Focus()
}

func (m *BuilderModel) openDetailsForm() tea.Cmd {
	d := m.draft
	m.mode = builderModeDetailsForm
	m.form = newForm(
		formField{label: "Invoice Number:", value: d.InvoiceNumber, charLimit: 30, width: 20},
		formField{label: "Date (YYYY-MM-DD):", value: d.Date, charLimit: 10, width: 12},
		formField{label: "Due Date (YYYY-MM-DD):", value: d.DueDate, charLimit: 10, width: 12},
		formField{label: "Tax Rate (%):", value: billing.FormatRate(d.TaxRate), charLimit: 8, width: 10},
		formField{label: "Notes:", value: d.Notes, charLimit: 500, width: 60},
	)
	return m.form.Focus()
}

func (m *BuilderModel) submitItemForm() tea.Cmd {
	item := m.selectedItem()
	if item == nil {
		m.mode = builderModeView
		return nil
	}

	description := m.form.Value(itemFieldDescription)
	qty, err := strconv.Atoi(m.form.Value(itemFieldQuantity))
	if err != nil {
		m.err = fmt.Errorf("invalid quantity: %s", m.form.Value(itemFieldQuantity))
		return nil
	}
	rate, err := decimal.NewFromString(m.form.Value(itemFieldRate))
	if err != nil {
		m.err = fmt.Errorf("invalid rate: %s", m.form.Value(itemFieldRate))
		return nil
	}

	itemID := item.ID
	patch := domain.LineItemPatch{Description: &description, Quantity: &qty, Rate: &rate}
	m.mode = builderModeView
	return m.draftCmd(func(ctx context.Context) (*domain.Invoice, error) {
		return m.app.InvoiceService.UpdateItem(ctx, itemID, patch)
	})
}

func (m *BuilderModel) submitDetailsForm() tea.Cmd {
	number := m.form.Value(detailFieldNumber)
	date := m.form.Value(detailFieldDate)
	due := m.form.Value(detailFieldDue)
	notes := m.form.Value(detailFieldNotes)
	tax, err := decimal.NewFromString(m.form.Value(detailFieldTax))
	if err != nil {
		m.err = fmt.Errorf("invalid tax rate: %s", m.form.Value(detailFieldTax))
		return nil
	}

	patch := domain.DraftPatch{
		InvoiceNumber: &number,
		Date:          &date,
		DueDate:       &due,
		Notes:         &notes,
		TaxRate:       &tax,
	}
	m.mode = builderModeView
	return m.draftCmd(func(ctx context.Context) (*domain.Invoice, error) {
		return m.app.InvoiceService.SetDetails(ctx, patch)
	})
}

func (m *BuilderModel) saveInvoice() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		invoice, err := a.InvoiceService.Save(ctx)
		return draftSavedMsg{invoice: invoice, err: err}
	}
}

func (m *BuilderModel) exportDraft() tea.Cmd {
	ctx, a := m.ctx, m.app
	req := export.Request{Mode: export.ModeFile, Dir: a.Config.Invoice.OutputDir}
	return func() tea.Msg {
		res, err := a.InvoiceService.ExportDraft(ctx, req)
		if err != nil {
			return draftExportedMsg{err: err}
		}
		return draftExportedMsg{path: res.Path}
	}
}

func (m *BuilderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadDraft()

	case draftMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.draft = msg.draft
		m.cursor = clampCursor(m.cursor, len(m.draft.Items))
		return m, nil

	case pickerDataMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = builderModeView
			return m, nil
		}
		m.mode = msg.mode
		m.options = msg.options
		m.optionCursor = 0
		if msg.mode == builderModePickClient && m.draft != nil {
			for i, o := range msg.options {
				if o.id == m.draft.ClientID {
					m.optionCursor = i
				}
			}
		}
		return m, nil

	case draftSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			if msg.invoice == nil {
				return m, nil
			}
		}
		m.statusMsg = fmt.Sprintf("Saved invoice %s (%s)", msg.invoice.InvoiceNumber,
			formatMoney(m.app.Config.Invoice.Currency, msg.invoice.Total))
		m.cursor = 0
		m.loading = true
		return m, m.loadDraft()

	case draftExportedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Exported -> %s", msg.path)
		return m, nil
	}

	switch m.mode {
	case builderModeItemForm, builderModeDetailsForm:
		result, cmd := m.form.Update(msg)
		switch result {
		case formCancelled:
			m.mode = builderModeView
			m.err = nil
			return m, nil
		case formSubmitted:
			if m.mode == builderModeItemForm {
				return m, m.submitItemForm()
			}
			return m, m.submitDetailsForm()
		}
		return m, cmd

	case builderModePickClient, builderModePickService:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.updatePicker(keyMsg)
		}
		return m, nil

	case builderModeConfirmDiscard:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			m.mode = builderModeView
			if strings.ToLower(keyMsg.String()) == "y" {
				m.cursor = 0
				m.statusMsg = "Started a new draft"
				return m, m.draftCmd(m.app.InvoiceService.NewDraft)
			}
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading || m.draft == nil {
		return m, nil
	}
	return m.updateView(keyMsg)
}

func (m *BuilderModel) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.draft.Items)-1 {
			m.cursor++
		}
	case msg.String() == "l":
		return m, m.loadClients()
	case msg.String() == "a":
		m.cursor = len(m.draft.Items)
		return m, m.draftCmd(m.app.InvoiceService.AddItem)
	case key.Matches(msg, DefaultKeyMap.Select):
		if item := m.selectedItem(); item != nil {
			return m, m.openItemForm(item)
		}
	case msg.String() == "v":
		if m.selectedItem() != nil {
			return m, m.loadServices()
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if item := m.selectedItem(); item != nil {
			itemID := item.ID
			return m, m.draftCmd(func(ctx context.Context) (*domain.Invoice, error) {
				return m.app.InvoiceService.RemoveItem(ctx, itemID)
			})
		}
	case msg.String() == "d":
		return m, m.openDetailsForm()
	case msg.String() == "w":
		if !m.busy {
			m.busy = true
			return m, m.saveInvoice()
		}
	case msg.String() == "p":
		if !m.busy {
			m.busy = true
			m.statusMsg = "Generating PDF..."
			return m, m.exportDraft()
		}
	case key.Matches(msg, DefaultKeyMap.New):
		m.mode = builderModeConfirmDiscard
	}

	return m, nil
}

func (m *BuilderModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = builderModeView
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.optionCursor < len(m.options)-1 {
			m.optionCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.options) == 0 {
			return m, nil
		}
		choice := m.options[m.optionCursor].id
		mode := m.mode
		m.mode = builderModeView

		if mode == builderModePickClient {
			return m, m.draftCmd(func(ctx context.Context) (*domain.Invoice, error) {
				return m.app.InvoiceService.SelectClient(ctx, choice)
			})
		}
		item := m.selectedItem()
		if item == nil {
			return m, nil
		}
		itemID := item.ID
		return m, m.draftCmd(func(ctx context.Context) (*domain.Invoice, error) {
			return m.app.InvoiceService.ApplyService(ctx, itemID, choice)
		})
	}
	return m, nil
}

func (m *BuilderModel) money(d decimal.Decimal) string {
	return formatMoney(m.app.Config.Invoice.Currency, d)
}

func (m *BuilderModel) View() string {
	if m.loading || m.draft == nil {
		if m.err != nil {
			return errorText(m.err)
		}
		return "Loading draft..."
	}

	switch m.mode {
	case builderModeItemForm:
		return m.viewForm("Edit Line Item")
	case builderModeDetailsForm:
		return m.viewForm("Invoice Details")
	case builderModePickClient:
		return m.viewPicker("Select Client")
	case builderModePickService:
		return m.viewPicker("Apply Service")
	}
	return m.viewDraft()
}

func (m *BuilderModel) viewForm(title string) string {
	s := titleStyle.Render(title) + "\n\n" + m.form.View()
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	return s + helpStyle.Render(formHelp)
}

func (m *BuilderModel) viewPicker(title string) string {
	s := titleStyle.Render(title) + "\n\n"
	for i, o := range m.options {
		if i == m.optionCursor {
			s += selectedStyle.Render("> "+o.label) + "\n"
		} else {
			s += "  " + o.label + "\n"
		}
	}
	return s + "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel")
}

func (m *BuilderModel) viewDraft() string {
	d := m.draft
	var s string

	s += titleStyle.Render(fmt.Sprintf("Draft %s", d.InvoiceNumber)) + "\n\n"

	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}

	client := d.ClientSnapshot.Name
	if client == "" {
		client = lipgloss.NewStyle().Foreground(warningColor).Render("(press l to select a client)")
	}
	s += fmt.Sprintf("  Client:   %s\n", client)
	if d.ClientID != "" {
		address := d.ClientSnapshot.Address
		if address == "" {
			address = "N/A"
		}
		s += subtitleStyle.Render(fmt.Sprintf("            %s  |  %s", d.ClientSnapshot.Email, address)) + "\n"
	}
	s += fmt.Sprintf("  Date:     %s    Due: %s\n", d.Date, d.DueDate)
	s += "\n"

	if len(d.Items) == 0 {
		s += subtitleStyle.Render("  No line items. Press 'a' to add one.") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-3s %-36s  %5s  %14s  %14s",
			"#", "Description", "Qty", "Rate", "Amount",
		)) + "\n"
		for i, item := range d.Items {
			desc := item.Description
			if desc == "" {
				desc = "(no description)"
			}
			line := fmt.Sprintf("  %-3d %-36s  %5d  %14s  %14s",
				i+1,
				truncateStr(desc, 36),
				item.Quantity,
				m.money(item.Rate),
				m.money(billing.LineTotal(item)),
			)
			if i == m.cursor {
				s += selectedStyle.Render(line) + "\n"
			} else {
				s += line + "\n"
			}
		}
	}

	// Live totals; they are snapshotted onto the invoice on save
	s += "\n"
	s += fmt.Sprintf("  Subtotal:   %14s\n", m.money(d.Subtotal))
	s += fmt.Sprintf("  Tax (%s): %14s\n", formatRate(d.TaxRate), m.money(d.TaxAmount))
	s += totalStyle.Render(fmt.Sprintf("  Total:      %14s", m.money(d.Total))) + "\n"

	if d.Notes != "" {
		s += "\n" + subtitleStyle.Render("  Notes: "+d.Notes) + "\n"
	}

	if m.mode == builderModeConfirmDiscard {
		return s + "\n" + lipgloss.NewStyle().Foreground(warningColor).Render(
			"  Discard this draft and start a new one? [y/N]") + "\n"
	}

	s += "\n" + helpStyle.Render("  l: client  a: add item  enter: edit item  v: apply service  x: remove item  d: details")
	s += "\n" + helpStyle.Render("  w: save invoice  p: export PDF  n: new draft")

	return s
}
