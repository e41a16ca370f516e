// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds small helpers shared by tests across the
// console packages, mainly channel operations with timeout safety
// valves so a broken subscription fails a test instead of hanging it.
package testutil
