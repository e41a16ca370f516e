// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package environment owns the sandbox/production mode selector.
//
// The selector is process-wide, single-writer state: only an explicit
// operator toggle and the login-resolution path in the session
// controller may change it. Every consumer (profile sync, the data
// views, the status bar) observes changes through Subscribe rather
// than caching a read.
//
// The persisted value is validated on load. Anything other than the
// two enum literals — a missing record, a corrupt file, an unknown
// string — resolves to sandbox. Production is never the accidental
// default.
package environment
