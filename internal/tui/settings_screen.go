package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeCompany
	settingsModeInvoice
)

// company form field indices
const (
	companyFieldName = iota
	companyFieldEmail
	companyFieldAddress
	companyFieldWebsite
	companyFieldLogo
)

// invoice defaults form field indices
const (
	settingsFieldOutputDir = iota
	settingsFieldPrefix
	settingsFieldDueDays
	settingsFieldTaxRate
	settingsFieldCurrency
)

type settingsDataMsg struct {
	company domain.CompanyInfo
	theme   domain.Theme
	err     error
}

type settingsSavedMsg struct {
	status string
	err    error
}

// SettingsModel manages the company profile, theme and invoice defaults
type SettingsModel struct {
	ctx       context.Context
	app       *app.App
	mode      settingsMode
	form      *form
	company   domain.CompanyInfo
	theme     domain.Theme
	loading   bool
	err       error
	statusMsg string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(ctx context.Context, a *app.App) tea.Model {
	return &SettingsModel{
		ctx:     ctx,
		app:     a,
		mode:    settingsModeView,
		loading: true,
	}
}

// IsCapturingInput returns true when an edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode != settingsModeView
}

func (m *SettingsModel) Init() tea.Cmd {
	return m.loadSettings()
}

func (m *SettingsModel) loadSettings() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		company, err := a.Repo.Settings.Company(ctx)
		if err != nil {
			return settingsDataMsg{err: err}
		}
		theme, err := a.Repo.Settings.Theme(ctx)
		if err != nil {
			return settingsDataMsg{err: err}
		}
		return settingsDataMsg{company: company, theme: theme}
	}
}

func (m *SettingsModel) openCompanyForm() tea.Cmd {
	c := m.company
	m.mode = settingsModeCompany
	m.form = newForm(
		formField{label: "Company Name:", placeholder: "Your Company", value: c.Name},
		formField{label: "Email:", placeholder: "contact@yourcompany.com", value: c.Email},
		formField{label: "Address:", placeholder: "123 Business St, City", value: c.Address, charLimit: 200, width: 60},
		formField{label: "Website:", placeholder: "www.yourcompany.com", value: c.Website},
		formField{label: "Logo URL:", placeholder: "Optional", value: c.Logo, charLimit: 2048, width: 60},
	)
	return m.form.Focus()
}

func (m *SettingsModel) openInvoiceForm() tea.Cmd {
	cfg := m.app.Config.Invoice
	m.mode = settingsModeInvoice
	m.form = newForm(
		formField{label: "Output Directory:", placeholder: "/path/to/invoices", value: cfg.OutputDir, charLimit: 256, width: 60},
		formField{label: "Number Prefix:", placeholder: "INV", value: cfg.NumberPrefix, charLimit: 20, width: 20},
		formField{label: "Default Due Days:", placeholder: "14", value: strconv.Itoa(cfg.DefaultDueDays), charLimit: 5, width: 10},
		formField{label: "Default Tax Rate (%):", placeholder: "0", value: billing.FormatRate(cfg.DefaultTaxRate), charLimit: 10, width: 10},
		formField{label: "Currency:", placeholder: "Rs.", value: cfg.Currency, charLimit: 10, width: 10},
	)
	return m.form.Focus()
}

func (m *SettingsModel) saveCompany() tea.Cmd {
	ctx, a := m.ctx, m.app
	info := domain.CompanyInfo{
		Name:    m.form.Value(companyFieldName),
		Email:   m.form.Value(companyFieldEmail),
		Address: m.form.Value(companyFieldAddress),
		Website: m.form.Value(companyFieldWebsite),
		Logo:    m.form.Value(companyFieldLogo),
	}
	return func() tea.Msg {
		if err := a.Repo.Settings.SetCompany(ctx, info); err != nil {
			return settingsSavedMsg{err: err}
		}
		return settingsSavedMsg{status: "Company profile saved"}
	}
}

func (m *SettingsModel) saveInvoiceDefaults() tea.Cmd {
	a := m.app
	outputDir := m.form.Value(settingsFieldOutputDir)
	prefix := m.form.Value(settingsFieldPrefix)
	dueDaysStr := m.form.Value(settingsFieldDueDays)
	taxRateStr := m.form.Value(settingsFieldTaxRate)
	currency := m.form.Value(settingsFieldCurrency)

	return func() tea.Msg {
		if outputDir == "" {
			return settingsSavedMsg{err: fmt.Errorf("output directory is required")}
		}
		if prefix == "" {
			return settingsSavedMsg{err: fmt.Errorf("invoice prefix is required")}
		}

		dueDays, err := strconv.Atoi(dueDaysStr)
		if err != nil || dueDays < 0 {
			return settingsSavedMsg{err: fmt.Errorf("due days must be a non-negative number")}
		}

		taxRate, err := decimal.NewFromString(taxRateStr)
		if err != nil || taxRate.IsNegative() {
			return settingsSavedMsg{err: fmt.Errorf("tax rate must be a non-negative number")}
		}

		a.Config.Invoice.OutputDir = outputDir
		a.Config.Invoice.NumberPrefix = prefix
		a.Config.Invoice.DefaultDueDays = dueDays
		a.Config.Invoice.DefaultTaxRate = taxRate
		a.Config.Invoice.Currency = currency

		if err := a.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}

		return settingsSavedMsg{status: "Invoice defaults saved; new drafts use them after restart"}
	}
}

func (m *SettingsModel) setTheme(next domain.Theme) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		if err := a.Repo.Settings.SetTheme(ctx, next); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save theme: %w", err)}
		}
		return ThemeChangedMsg{Theme: next}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadSettings()

	case settingsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.company = msg.company
			m.theme = msg.theme
		}
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.err = nil
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadSettings()
	}

	if m.mode != settingsModeView {
		result, cmd := m.form.Update(msg)
		switch result {
		case formCancelled:
			m.mode = settingsModeView
			m.err = nil
			return m, nil
		case formSubmitted:
			if m.mode == settingsModeCompany {
				return m, m.saveCompany()
			}
			return m, m.saveInvoiceDefaults()
		}
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.loading {
			return m, nil
		}
		m.err = nil
		m.statusMsg = ""
		switch msg.String() {
		case "enter":
			return m, m.openCompanyForm()
		case "o":
			return m, m.openInvoiceForm()
		case "t":
			m.theme = m.theme.Toggle()
			m.statusMsg = fmt.Sprintf("Theme: %s", m.theme)
			return m, m.setTheme(m.theme)
		}
	}

	return m, nil
}

func (m *SettingsModel) View() string {
	switch m.mode {
	case settingsModeCompany:
		return m.viewForm("Company Profile")
	case settingsModeInvoice:
		return m.viewForm("Invoice Defaults")
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	if m.loading {
		return "Loading settings..."
	}

	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	c := m.company
	s += subtitleStyle.Render("  Company Profile") + "\n\n"
	s += row("Name:", c.Name)
	s += row("Email:", c.Email)
	s += row("Address:", c.Address)
	s += row("Website:", c.Website)
	if c.Logo != "" {
		s += row("Logo:", truncateStr(c.Logo, 50))
	}

	cfg := m.app.Config.Invoice
	s += "\n" + subtitleStyle.Render("  Invoice Defaults") + "\n\n"
	s += row("Output Directory:", cfg.OutputDir)
	s += row("Number Prefix:", cfg.NumberPrefix)
	s += row("Default Due Days:", strconv.Itoa(cfg.DefaultDueDays))
	s += row("Default Tax Rate:", formatRate(cfg.DefaultTaxRate))
	s += row("Currency:", cfg.Currency)

	s += "\n" + subtitleStyle.Render("  Appearance") + "\n\n"
	s += row("Theme:", string(m.theme))

	s += "\n" + helpStyle.Render("  enter: edit company  o: edit invoice defaults  t: toggle theme")

	return s
}

func (m *SettingsModel) viewForm(title string) string {
	s := titleStyle.Render(title) + "\n\n" + m.form.View()
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	return s + helpStyle.Render(formHelp)
}
