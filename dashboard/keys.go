// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the console dashboard.
type KeyMap struct {
	// Row movement within the active list.
	Up   key.Binding
	Down key.Binding

	// Pagination.
	NextPage key.Binding
	PrevPage key.Binding

	// Tab switching.
	TabOverview     key.Binding
	TabAccounts     key.Binding
	TabUsers        key.Binding
	TabTransactions key.Binding
	TabLedger       key.Binding

	// Drill into the selected row / back out of a detail view.
	Select key.Binding
	Back   key.Binding

	// Environment toggle (guarded by a confirmation when switching
	// into production).
	ToggleEnvironment key.Binding

	// Volume range cycle on the overview tab.
	CycleRange key.Binding

	Refresh key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style movement
// alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n/→", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p/←", "prev page"),
	),
	TabOverview: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "overview"),
	),
	TabAccounts: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "accounts"),
	),
	TabUsers: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "users"),
	),
	TabTransactions: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "transactions"),
	),
	TabLedger: key.NewBinding(
		key.WithKeys("5"),
		key.WithHelp("5", "ledger"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	ToggleEnvironment: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "environment"),
	),
	CycleRange: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "range"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("C-l", "log out"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
