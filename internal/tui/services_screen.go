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
	"github.com/shopspring/decimal"
)

type serviceMode int

const (
	serviceModeList serviceMode = iota
	serviceModeForm
	serviceModeConfirmDelete
)

const (
	serviceFieldName = iota
	serviceFieldPrice
	serviceFieldDescription
)

// ServicesModel manages the service catalogue
type ServicesModel struct {
	ctx       context.Context
	app       *app.App
	services  []*domain.Service
	cursor    int
	loading   bool
	err       error
	statusMsg string
	search    searchBar

	mode      serviceMode
	form      *form
	editingID string
}

type servicesDataMsg struct {
	services []*domain.Service
	err      error
}

type serviceSavedMsg struct {
	name string
	err  error
}

type serviceDeletedMsg struct {
	name string
	err  error
}

// NewServicesModel creates a new services screen model
func NewServicesModel(ctx context.Context, a *app.App) tea.Model {
	return &ServicesModel{
		ctx:     ctx,
		app:     a,
		loading: true,
		search:  newSearchBar("name or description"),
	}
}

// IsCapturingInput returns true when the form or search bar is active
func (m *ServicesModel) IsCapturingInput() bool {
	return m.mode != serviceModeList || m.search.active
}

func (m *ServicesModel) Init() tea.Cmd {
	return m.loadServices()
}

func (m *ServicesModel) loadServices() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		services, err := a.Repo.Services.List(ctx)
		return servicesDataMsg{services: services, err: err}
	}
}

func (m *ServicesModel) visible() []*domain.Service {
	return service.FilterServices(m.services, m.search.Query())
}

func (m *ServicesModel) selected() *domain.Service {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m *ServicesModel) openForm(editing *domain.Service) tea.Cmd {
	s := domain.Service{Price: decimal.Zero}
	m.editingID = ""
	if editing != nil {
		s = *editing
		m.editingID = editing.ID
	}
	m.mode = serviceModeForm
	m.form = newForm(
		formField{label: "Name:", placeholder: "Web Design", value: s.Name},
		formField{label: "Price:", placeholder: "500.00", value: s.Price.StringFixed(2), charLimit: 15, width: 15},
		formField{label: "Description:", placeholder: "Optional", value: s.Description, charLimit: 200, width: 60},
	)
	return m.form.Focus()
}

func (m *ServicesModel) saveService() tea.Cmd {
	ctx, a := m.ctx, m.app
	editingID := m.editingID
	name := m.form.Value(serviceFieldName)
	priceStr := m.form.Value(serviceFieldPrice)
	description := m.form.Value(serviceFieldDescription)

	return func() tea.Msg {
		price := decimal.Zero
		if priceStr != "" {
			p, err := decimal.NewFromString(priceStr)
			if err != nil {
				return serviceSavedMsg{err: fmt.Errorf("invalid price: %s", priceStr)}
			}
			price = p
		}

		if editingID != "" {
			_, err := a.Repo.Services.Update(ctx, editingID, domain.ServicePatch{
				Name:        &name,
				Price:       &price,
				Description: &description,
			})
			return serviceSavedMsg{name: name, err: err}
		}

		s := domain.NewService(name, price)
		s.Description = description
		return serviceSavedMsg{name: name, err: a.Repo.Services.Add(ctx, s)}
	}
}

func (m *ServicesModel) deleteService(s *domain.Service) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return serviceDeletedMsg{name: s.Name, err: a.Repo.Services.Delete(ctx, s.ID)}
	}
}

func (m *ServicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadServices()

	case servicesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.services = msg.services
			m.cursor = clampCursor(m.cursor, len(m.visible()))
		}
		return m, nil

	case serviceSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = serviceModeList
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadServices()

	case serviceDeletedMsg:
		m.mode = serviceModeList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		m.loading = true
		return m, m.loadServices()
	}

	switch m.mode {
	case serviceModeForm:
		result, cmd := m.form.Update(msg)
		switch result {
		case formCancelled:
			m.mode = serviceModeList
			m.err = nil
			return m, nil
		case formSubmitted:
			return m, m.saveService()
		}
		return m, cmd

	case serviceModeConfirmDelete:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if strings.ToLower(keyMsg.String()) == "y" {
				if s := m.selected(); s != nil {
					return m, m.deleteService(s)
				}
			}
			m.mode = serviceModeList
		}
		return m, nil
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
			if s := m.selected(); s != nil {
				return m, m.openForm(s)
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = serviceModeConfirmDelete
			}
		case key.Matches(msg, DefaultKeyMap.Search):
			return m, m.search.Start()
		}
	}

	return m, nil
}

func (m *ServicesModel) View() string {
	if m.mode == serviceModeForm {
		title := "New Service"
		if m.editingID != "" {
			title = "Edit Service"
		}
		s := titleStyle.Render(title) + "\n\n" + m.form.View()
		if m.editingID != "" {
			s += subtitleStyle.Render("  Line items already priced from this service keep their rate.") + "\n\n"
		}
		if m.err != nil {
			s += errorText(m.err) + "\n\n"
		}
		return s + helpStyle.Render(formHelp)
	}

	if m.loading {
		return "Loading services..."
	}

	var s string
	s += titleStyle.Render("Services") + "\n\n"
	s += m.search.View()

	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}

	visible := m.visible()
	if len(visible) == 0 {
		if len(m.services) == 0 {
			s += subtitleStyle.Render("  No services yet. Press 'n' to add one.") + "\n"
		} else {
			s += subtitleStyle.Render("  No services match the filter.") + "\n"
		}
		return s
	}

	currency := m.app.Config.Invoice.Currency
	s += subtitleStyle.Render(fmt.Sprintf("  %-28s  %14s  %s", "Name", "Price", "Description")) + "\n"
	for i, svc := range visible {
		line := fmt.Sprintf("  %-28s  %14s  %s",
			truncateStr(svc.Name, 28),
			formatMoney(currency, svc.Price),
			truncateStr(svc.Description, 40),
		)
		if i == m.cursor {
			s += selectedStyle.Render(line) + "\n"
		} else {
			s += line + "\n"
		}
	}

	if m.mode == serviceModeConfirmDelete {
		if svc := m.selected(); svc != nil {
			s += "\n" + lipgloss.NewStyle().Foreground(warningColor).Render(
				fmt.Sprintf("  Delete %s? [y/N]", svc.Name)) + "\n"
		}
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  x: delete  /: search")
	return s
}
