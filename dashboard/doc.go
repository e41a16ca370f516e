// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard is the operator console TUI: a tabbed terminal
// dashboard over accounts, users, transactions, and the ledger, with
// a settled-volume overview, built on bubbletea.
//
// The model owns no fetch logic of its own. Each tab is backed by a
// view.List or view.Detail state machine; the model translates key
// presses into view operations and renders whatever projection the
// views publish. Session and environment changes arrive as messages
// pumped from the controller and selector subscriptions.
package dashboard
