// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package view implements the data-fetch contract shared by every
// dashboard view: fetch exactly when one of the inputs that scope the
// data changes, and never otherwise.
//
// The scoping inputs are the session, the environment selector, the
// page number, whether the view's tab is active, and — for detail
// views — the selected record id. A change to any of them starts a
// fetch; activating a tab and switching environments additionally
// reset the page to 1, because page 7 of one environment's data says
// nothing about another's.
//
// Each view projects exactly one loading flag and one nullable error.
// A failed fetch keeps the previous rows on screen next to the error;
// losing the session clears everything. Commits are fenced by a
// monotonic sequence number, so a slow response for a superseded
// page, environment, or session is discarded instead of flashing
// stale data.
package view
