package tui

import (
	"github.com/andy/billbook/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// palette is the set of colours for one theme
type palette struct {
	primary   lipgloss.Color
	accent    lipgloss.Color
	muted     lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	help      lipgloss.Color
	border    lipgloss.Color
	footer    lipgloss.Color
	onPrimary lipgloss.Color
}

var palettes = map[domain.Theme]palette{
	domain.ThemeDark: {
		primary:   lipgloss.Color("39"),  // Blue
		accent:    lipgloss.Color("205"), // Pink
		muted:     lipgloss.Color("241"), // Gray
		success:   lipgloss.Color("76"),  // Green
		warning:   lipgloss.Color("214"), // Orange
		danger:    lipgloss.Color("196"), // Red
		help:      lipgloss.Color("117"), // Bright cyan
		border:    lipgloss.Color("63"),  // Soft purple
		footer:    lipgloss.Color("226"), // Bright yellow
		onPrimary: lipgloss.Color("0"),
	},
	domain.ThemeLight: {
		primary:   lipgloss.Color("#2563EB"),
		accent:    lipgloss.Color("#DB2777"),
		muted:     lipgloss.Color("#64748B"),
		success:   lipgloss.Color("#16A34A"),
		warning:   lipgloss.Color("#D97706"),
		danger:    lipgloss.Color("#DC2626"),
		help:      lipgloss.Color("#0E7490"),
		border:    lipgloss.Color("#94A3B8"),
		footer:    lipgloss.Color("#334155"),
		onPrimary: lipgloss.Color("#FFFFFF"),
	},
}

var (
	// Colors
	primaryColor lipgloss.Color
	accentColor  lipgloss.Color
	mutedColor   lipgloss.Color
	successColor lipgloss.Color
	warningColor lipgloss.Color
	errorColor   lipgloss.Color
	borderColor  lipgloss.Color

	// Base styles
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	helpStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	totalStyle    lipgloss.Style

	// Layout
	appBorderStyle lipgloss.Style

	// Header/Footer
	headerStyle lipgloss.Style
	footerStyle lipgloss.Style
)

func init() {
	applyTheme(domain.ThemeLight)
}

// applyTheme rebuilds every style from the theme's palette. Unknown themes fall back to light.
func applyTheme(theme domain.Theme) {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[domain.ThemeLight]
	}

	primaryColor = p.primary
	accentColor = p.accent
	mutedColor = p.muted
	successColor = p.success
	warningColor = p.warning
	errorColor = p.danger
	borderColor = p.border

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle = lipgloss.NewStyle().Foreground(p.help)
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(primaryColor).Foreground(p.onPrimary)
	totalStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	appBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(p.footer).Bold(true)
}

func errorText(err error) string {
	return lipgloss.NewStyle().Foreground(errorColor).Render("  Error: " + err.Error())
}

func statusText(msg string) string {
	return lipgloss.NewStyle().Foreground(successColor).Render("  " + msg)
}

// statusBadge renders an invoice status with color
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusPaid:
		return lipgloss.NewStyle().Foreground(successColor).Render("PAID")
	case domain.InvoiceStatusUnpaid:
		return lipgloss.NewStyle().Foreground(warningColor).Render("UNPAID")
	default:
		return string(status)
	}
}
