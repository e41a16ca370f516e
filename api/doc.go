// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the HTTP client for the Ledgerline backend proxy.
//
// Every authenticated request carries three identifying signals: the
// bearer token, the resolved environment id (X-Environment-Id), and
// the raw environment literal (X-Environment). The backend needs both
// environment forms — a stable id for data scoping and the
// human-readable mode for routing.
//
// A 401 from any endpoint is a universal forced-logout signal;
// callers detect it with IsUnauthorized and route it to the session
// controller. All other failures normalize to *RequestError carrying
// the server's message when the body is JSON, or a generic message
// when it is not.
package api
