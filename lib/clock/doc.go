// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Production code accepts a Clock instead of calling time.Now or
// time.AfterFunc directly. Real() is the standard library behavior;
// Fake() is a deterministic clock for tests that advances only when
// Advance is called.
//
// The session-expiry timer is the main consumer: it arms a single
// AfterFunc at absolute expiry, and tests drive it with a FakeClock
// to verify auto-logout without waiting wall-clock hours.
package clock
