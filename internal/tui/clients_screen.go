package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
	clientModeConfirmDelete
)

// form field indices
const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldAddress
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	ctx       context.Context
	app       *app.App
	clients   []*domain.Client
	cursor    int
	billed    map[string]int // invoice count per client ID
	loading   bool
	err       error
	statusMsg string
	search    searchBar

	// Form state
	mode          clientMode
	form          *form
	editingID     string // empty for new client
	autoNewClient bool   // open new client form after data loads
}

type clientsDataMsg struct {
	clients []*domain.Client
	billed  map[string]int
	err     error
}

type clientSavedMsg struct {
	name string
	err  error
}

type clientDeletedMsg struct {
	name string
	err  error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(ctx context.Context, a *app.App) tea.Model {
	return &ClientsModel{
		ctx:     ctx,
		app:     a,
		billed:  make(map[string]int),
		loading: true,
		search:  newSearchBar("name or email"),
	}
}

// IsCapturingInput returns true when the form or search bar is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode != clientModeList || m.search.active
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		clients, err := a.Repo.Clients.List(ctx)
		if err != nil {
			return clientsDataMsg{err: err}
		}

		invoices, err := a.Repo.Invoices.List(ctx)
		if err != nil {
			return clientsDataMsg{err: err}
		}
		billed := make(map[string]int)
		for _, inv := range invoices {
			billed[inv.ClientID]++
		}

		return clientsDataMsg{clients: clients, billed: billed}
	}
}

// visible returns the clients matching the search query
func (m *ClientsModel) visible() []*domain.Client {
	return service.FilterClients(m.clients, m.search.Query())
}

func (m *ClientsModel) openForm(editing *domain.Client) tea.Cmd {
	var c domain.Client
	m.editingID = ""
	if editing != nil {
		c = *editing
		m.editingID = editing.ID
		m.mode = clientModeEdit
	} else {
		m.mode = clientModeNew
	}

	m.form = newForm(
		formField{label: "Name:", placeholder: "Client name", value: c.Name},
		formField{label: "Email:", placeholder: "billing@example.com", value: c.Email},
		formField{label: "Phone:", placeholder: "Optional", value: c.Phone, charLimit: 30, width: 20},
		formField{label: "Address:", placeholder: "Billing address", value: c.Address, charLimit: 200, width: 60},
	)
	return m.form.Focus()
}

func (m *ClientsModel) saveClient() tea.Cmd {
	ctx, a := m.ctx, m.app
	editingID := m.editingID
	name := m.form.Value(fieldName)
	email := m.form.Value(fieldEmail)
	phone := m.form.Value(fieldPhone)
	address := m.form.Value(fieldAddress)

	return func() tea.Msg {
		if editingID != "" {
			_, err := a.Repo.Clients.Update(ctx, editingID, domain.ClientPatch{
				Name:    &name,
				Email:   &email,
				Phone:   &phone,
				Address: &address,
			})
			return clientSavedMsg{name: name, err: err}
		}

		client := domain.NewClient(name, email)
		client.Phone = phone
		client.Address = address
		err := a.Repo.Clients.Add(ctx, client)
		return clientSavedMsg{name: name, err: err}
	}
}

func (m *ClientsModel) deleteClient(client *domain.Client) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		err := a.Repo.Clients.Delete(ctx, client.ID)
		return clientDeletedMsg{name: client.Name, err: err}
	}
}

func (m *ClientsModel) selected() *domain.Client {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			// Data hasn't loaded yet; set flag to auto-open form when it does
			m.autoNewClient = true
			return m, nil
		}
		return m, m.openForm(nil)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.billed = msg.billed
			m.cursor = clampCursor(m.cursor, len(m.visible()))
		}
		// Auto-open new client form on first run
		if m.autoNewClient {
			m.autoNewClient = false
			return m, m.openForm(nil)
		}
		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case clientDeletedMsg:
		m.mode = clientModeList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		m.loading = true
		return m, m.loadClients()
	}

	switch m.mode {
	case clientModeNew, clientModeEdit:
		return m.updateForm(msg)
	case clientModeConfirmDelete:
		return m.updateConfirm(msg)
	}

	if m.search.active {
		cmd := m.search.Update(msg)
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openForm(nil)
		case key.Matches(msg, DefaultKeyMap.Select):
			// Enter key opens edit form for selected client
			if client := m.selected(); client != nil {
				return m, m.openForm(client)
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = clientModeConfirmDelete
			}
		case key.Matches(msg, DefaultKeyMap.Search):
			return m, m.search.Start()
		}
	}

	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	result, cmd := m.form.Update(msg)
	switch result {
	case formCancelled:
		m.mode = clientModeList
		m.err = nil
		return m, nil
	case formSubmitted:
		return m, m.saveClient()
	}
	return m, cmd
}

func (m *ClientsModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if strings.ToLower(keyMsg.String()) == "y" {
		if client := m.selected(); client != nil {
			return m, m.deleteClient(client)
		}
	}
	m.mode = clientModeList
	return m, nil
}

func (m *ClientsModel) View() string {
	switch m.mode {
	case clientModeNew, clientModeEdit:
		return m.viewForm()
	default:
		return m.viewList()
	}
}

func (m *ClientsModel) viewForm() string {
	var s string

	if m.mode == clientModeNew {
		if len(m.clients) == 0 {
			s += titleStyle.Render("Welcome to billbook!") + "\n"
			s += subtitleStyle.Render("  Let's set up your first client to get started.") + "\n\n"
		} else {
			s += titleStyle.Render("New Client") + "\n\n"
		}
	} else {
		s += titleStyle.Render("Edit Client") + "\n\n"
	}

	s += m.form.View()

	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}

	s += helpStyle.Render(formHelp)

	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string

	s += titleStyle.Render("Clients") + "\n\n"
	s += m.search.View()

	// Status message
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}

	visible := m.visible()
	if len(visible) == 0 {
		if len(m.clients) == 0 {
			s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		} else {
			s += subtitleStyle.Render("  No clients match the filter.") + "\n"
		}
		return s
	}

	for i, client := range visible {
		s += m.renderClient(i, client) + "\n"
	}

	if m.mode == clientModeConfirmDelete {
		if client := m.selected(); client != nil {
			s += "\n" + lipgloss.NewStyle().Foreground(warningColor).Render(
				fmt.Sprintf("  Delete %s? Invoices keep their copy of the client. [y/N]", client.Name)) + "\n"
		}
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  x: delete  /: search")

	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	// Build row
	indicator := "  "
	if selected {
		indicator = "> "
	}

	line1 := fmt.Sprintf("%s%s", indicator, client.Name)

	contact := client.Email
	if client.Phone != "" {
		contact += "  |  " + client.Phone
	}
	line2 := fmt.Sprintf("    %s  |  Invoices: %d", contact, m.billed[client.ID])

	var line3 string
	if client.Address != "" {
		line3 = fmt.Sprintf("    %s", truncateStr(client.Address, 60))
	}

	// Apply styling
	nameStyle := lipgloss.NewStyle()
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
	if line3 != "" {
		result += "\n" + subtitleStyle.Render(line3)
	}

	return result
}
