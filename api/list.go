// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPerPage is the page size the dashboard views request.
const DefaultPerPage = 25

// ListAccounts returns one page of ledger accounts.
func (c *Client) ListAccounts(ctx context.Context, auth AuthContext, pageNumber, perPage int) ([]Account, PageMeta, error) {
	return listPage[Account](ctx, c, auth, "/v1/accounts", pageNumber, perPage)
}

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, auth AuthContext, pageNumber, perPage int) ([]User, PageMeta, error) {
	return listPage[User](ctx, c, auth, "/v1/users", pageNumber, perPage)
}

// ListTransactions returns one page of transactions.
func (c *Client) ListTransactions(ctx context.Context, auth AuthContext, pageNumber, perPage int) ([]Transaction, PageMeta, error) {
	return listPage[Transaction](ctx, c, auth, "/v1/transactions", pageNumber, perPage)
}

// ListAccountTransactions returns one page of transactions scoped to
// a single account (the account drill-down view).
func (c *Client) ListAccountTransactions(ctx context.Context, auth AuthContext, accountID string, pageNumber, perPage int) ([]Transaction, PageMeta, error) {
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/transactions"
	return listPage[Transaction](ctx, c, auth, path, pageNumber, perPage)
}

// ListLedgerEntries returns one page of settled ledger entries.
func (c *Client) ListLedgerEntries(ctx context.Context, auth AuthContext, pageNumber, perPage int) ([]LedgerEntry, PageMeta, error) {
	return listPage[LedgerEntry](ctx, c, auth, "/v1/ledger_entries", pageNumber, perPage)
}

// GetAccount returns a single account by id.
func (c *Client) GetAccount(ctx context.Context, auth AuthContext, accountID string) (*Account, error) {
	var account Account
	path := "/v1/accounts/" + url.PathEscape(accountID)
	if err := c.get(ctx, path, auth, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetTransaction returns a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, auth AuthContext, transactionID string) (*Transaction, error) {
	var transaction Transaction
	path := "/v1/transactions/" + url.PathEscape(transactionID)
	if err := c.get(ctx, path, auth, nil, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// listPage fetches and decodes one page of a list endpoint. Methods
// cannot be generic, so each endpoint wraps this function.
func listPage[T any](ctx context.Context, c *Client, auth AuthContext, path string, pageNumber, perPage int) ([]T, PageMeta, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	query := url.Values{
		"page":     {strconv.Itoa(pageNumber)},
		"per_page": {strconv.Itoa(perPage)},
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, auth, nil, query)
	if err != nil {
		return nil, PageMeta{}, err
	}

	var envelope page[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, PageMeta{}, fmt.Errorf("api: parsing %s response: %w", path, err)
	}
	return envelope.Data, envelope.Pagination, nil
}
