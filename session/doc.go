// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the authenticated session: the credential
// record, its durable persistence, and the lifecycle controller that
// is the record's only writer.
//
// The controller is a small state machine — NoSession, Restoring,
// Active, Expiring, LoggedOut — driven by four inputs: restore on
// boot, a successful login or registration, the absolute-expiry
// timer, and logout (manual, or forced by a 401 anywhere). A
// malformed durable record, a missing environment id, and an expired
// record all normalize to the same outcome: no session, reset to
// sandbox, back to the login screen.
//
// Sessions are replaced wholesale, never mutated in place. The
// environment id sent with API calls is re-resolved against the
// current environment selector on every use; the record's own
// environment_id is only the fallback when the selector matches none
// of the session's environment records.
package session
