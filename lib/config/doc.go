// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads console configuration from a single YAML file.
//
// The file is located via the LEDGERLINE_CONFIG environment variable
// or the --config flag; when neither is set, built-in defaults apply
// except for the API base URL, which has no default. A missing base
// URL is a hard error: every network feature depends on it and there
// is deliberately no silent fallback endpoint.
package config
