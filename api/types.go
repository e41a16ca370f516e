// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

// PageMeta is the pagination block every list endpoint returns.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// page is the wire envelope for list responses.
type page[T any] struct {
	Data       []T      `json:"data"`
	Pagination PageMeta `json:"pagination"`
}

// EnvironmentRecord is one backend environment available to the
// authenticated business. Type is the environment literal ("sandbox"
// or "production"); ID is the backend-side identifier that scopes
// data access.
type EnvironmentRecord struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// AuthResponse is the login/registration response. The environment id
// may arrive in any of four places depending on backend version;
// session.ExtractEnvironmentID applies the priority order.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`

	SelectedEnvironmentID string              `json:"selected_environment_id"`
	Environment           *EnvironmentRecord  `json:"environment"`
	User                  *AuthUser           `json:"user"`
	EnvironmentID         string              `json:"environment_id"`
	Environments          []EnvironmentRecord `json:"environments"`
}

// AuthUser is the user block inside an auth response.
type AuthUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EnvironmentID string `json:"environment_id"`
}

// Profile is the display-oriented projection of the authenticated
// identity, scoped to the active environment. Re-derived from the
// backend on every session or environment change; never persisted.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AvatarURL    string `json:"avatar_url"`
	BusinessName string `json:"business_name"`
}

// Account is a ledger account row.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// User is an operator/user row.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Transaction is a payment transaction row.
type Transaction struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	SettledAt   string `json:"settled_at"`
}

// AccountActivity is the first page of an account's transactions,
// shown under the account detail.
type AccountActivity struct {
	Transactions []Transaction
	Meta         PageMeta
}

// LedgerEntry is one settled ledger line. Amount is a JSON number on
// the wire; CreatedAt is an RFC 3339 timestamp string. Both are
// validated during aggregation, not at decode time — a malformed row
// is skipped there, not fatal here.
type LedgerEntry struct {
	ID        string  `json:"id"`
	AccountID string  `json:"account_id"`
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt string  `json:"created_at"`
}
