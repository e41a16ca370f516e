// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile keeps the authenticated identity display in step
// with the session and the environment selector.
//
// The Syncer refetches the profile whenever a session becomes active
// or the environment changes while one is active, because the profile
// is environment-scoped: the same operator can have different roles
// in sandbox and production. Overlapping fetches are fenced by a
// monotonic sequence number so a slow response for a superseded
// environment never overwrites a newer one.
//
// A 401 from the profile endpoint forces a logout, the same as a 401
// anywhere else. Any other failure keeps the last good profile on
// screen alongside a recoverable error.
package profile
