// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the console. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color

	// Environment badge. Production gets the loud color on purpose:
	// the operator must always know when they are looking at live
	// money.
	SandboxBadge    lipgloss.Color
	ProductionBadge lipgloss.Color

	// Transaction/account status colors.
	StatusActive  lipgloss.Color
	StatusPending lipgloss.Color
	StatusFailed  lipgloss.Color

	// Volume chart bars.
	ChartBar lipgloss.Color
}

// StatusColor returns the color for a status string. Unknown values
// render faint.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	switch status {
	case "active", "settled", "completed", "succeeded":
		return theme.StatusActive
	case "pending", "processing", "invited":
		return theme.StatusPending
	case "failed", "reversed", "disabled":
		return theme.StatusFailed
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
	HeaderForeground:   lipgloss.Color("81"),
	BorderColor:        lipgloss.Color("238"),
	HelpText:           lipgloss.Color("243"),
	ErrorText:          lipgloss.Color("203"),
	SandboxBadge:       lipgloss.Color("35"),
	ProductionBadge:    lipgloss.Color("196"),
	StatusActive:       lipgloss.Color("35"),
	StatusPending:      lipgloss.Color("214"),
	StatusFailed:       lipgloss.Color("203"),
	ChartBar:           lipgloss.Color("75"),
}
