// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// profileResponse tolerates both shapes the backend has shipped:
// {"user": {...}} and the bare object. Business arrives as a nested
// block when present.
type profileResponse struct {
	User *profileFields `json:"user"`
	profileFields
	Business *struct {
		Name string `json:"name"`
	} `json:"business"`
}

type profileFields struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AvatarURL    string `json:"avatar_url"`
	BusinessName string `json:"business_name"`
}

// FetchProfile retrieves the authenticated identity scoped to the
// given environment. Missing fields degrade to defaults rather than
// failing: the display name falls back to first+last name, then to
// the email address.
func (c *Client) FetchProfile(ctx context.Context, auth AuthContext) (*Profile, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/me", auth, nil, nil)
	if err != nil {
		return nil, err
	}

	var response profileResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("api: parsing profile response: %w", err)
	}

	fields := response.profileFields
	if response.User != nil {
		fields = *response.User
	}

	profile := &Profile{
		ID:           fields.ID,
		Name:         fields.Name,
		Email:        fields.Email,
		Role:         fields.Role,
		AvatarURL:    fields.AvatarURL,
		BusinessName: fields.BusinessName,
	}

	if profile.Name == "" {
		combined := strings.TrimSpace(fields.FirstName + " " + fields.LastName)
		if combined != "" {
			profile.Name = combined
		} else {
			profile.Name = fields.Email
		}
	}

	if profile.BusinessName == "" && response.Business != nil {
		profile.BusinessName = response.Business.Name
	}

	return profile, nil
}
