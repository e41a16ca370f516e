// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage persists small single-value records between console
// runs. Each key maps to one JSON file under a state directory,
// wrapped in a versioned envelope so a future format change can be
// detected instead of silently misparsed.
//
// Files are written with mode 0600 and the directory with 0700: the
// session record contains access tokens.
package storage
