package tui

import "github.com/andy/billbook/internal/domain"

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// OpenNewClientFormMsg tells the clients screen to open the new client form
type OpenNewClientFormMsg struct{}

// ThemeChangedMsg is sent after the theme preference is stored
type ThemeChangedMsg struct {
	Theme domain.Theme
}

// firstRunCheckMsg reports whether the store has any clients
type firstRunCheckMsg struct {
	hasClients bool
	theme      domain.Theme
}
