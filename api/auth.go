// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginRequest is the credentials payload for Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the signup payload for Register.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BusinessName string `json:"business_name"`
}

// Login authenticates with email and password. The response must
// resolve to a non-empty environment id through the fallback chain in
// session.ExtractEnvironmentID; that validation belongs to the
// session controller, not here.
func (c *Client) Login(ctx context.Context, request LoginRequest) (*AuthResponse, error) {
	return c.authRequest(ctx, "/v1/auth/login", request)
}

// Register creates a new business account. The response contract is
// identical to Login.
func (c *Client) Register(ctx context.Context, request RegisterRequest) (*AuthResponse, error) {
	return c.authRequest(ctx, "/v1/auth/register", request)
}

func (c *Client) authRequest(ctx context.Context, path string, request any) (*AuthResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, path, AuthContext{}, request, nil)
	if err != nil {
		return nil, err
	}

	var response AuthResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("api: parsing auth response: %w", err)
	}
	if response.AccessToken == "" {
		return nil, fmt.Errorf("api: auth response has no access_token")
	}
	return &response, nil
}
