// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/environment"
)

// ErrNoEnvironmentID means an auth payload or durable record carried
// no environment id anywhere. Such a session cannot scope a single
// API call and is treated as corrupt.
var ErrNoEnvironmentID = errors.New("session: no environment id in auth payload")

// Record is one authenticated login. Created by a successful login or
// registration, persisted durably, and replaced wholesale — never
// mutated in place.
type Record struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// ExpiresIn (seconds) and Timestamp (unix milliseconds at
	// creation) together define the absolute expiry instant.
	ExpiresIn int64 `json:"expires_in"`
	Timestamp int64 `json:"timestamp"`

	// EnvironmentID is the backend environment active at login time.
	// A record without one is invalid.
	EnvironmentID string `json:"environment_id"`

	// Environments lists every environment record available to the
	// business, used to re-resolve the id when the selector changes.
	Environments []api.EnvironmentRecord `json:"environments"`
}

// ExpiresAt returns the absolute expiry instant.
func (r *Record) ExpiresAt() time.Time {
	return time.UnixMilli(r.Timestamp + r.ExpiresIn*1000)
}

// Expired reports whether the record is at or past expiry.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt())
}

// Validate checks the structural invariants of a restored record.
func (r *Record) Validate() error {
	if r.AccessToken == "" {
		return fmt.Errorf("session: record has no access_token")
	}
	if r.EnvironmentID == "" {
		return ErrNoEnvironmentID
	}
	return nil
}

// ResolveEnvironmentID maps the current selector to this session's
// backend environment id: the environments entry whose type matches
// wins, and the login-time id is the fallback when none does. The
// result is what goes into X-Environment-Id — never the selector
// literal itself.
func (r *Record) ResolveEnvironmentID(env environment.Environment) string {
	for _, record := range r.Environments {
		if record.Type == string(env) {
			return record.ID
		}
	}
	return r.EnvironmentID
}

// EnvironmentTypeForID returns the selector value for a backend
// environment id, defaulting to sandbox when the id matches no known
// record. Used once, at login, to push the server-chosen environment
// into the selector — the only server-driven environment write.
func (r *Record) EnvironmentTypeForID(id string) environment.Environment {
	for _, record := range r.Environments {
		if record.ID == id {
			if env := environment.Environment(record.Type); env.Valid() {
				return env
			}
			return environment.Sandbox
		}
	}
	return environment.Sandbox
}

// ExtractEnvironmentID pulls the environment id out of an auth
// payload. Backend versions have carried it in four places; the first
// present field wins:
//
//  1. selected_environment_id
//  2. environment.id
//  3. user.environment_id
//  4. environment_id
//
// Missing in all four is a hard error: login aborts with no session
// created.
func ExtractEnvironmentID(auth *api.AuthResponse) (string, error) {
	switch {
	case auth.SelectedEnvironmentID != "":
		return auth.SelectedEnvironmentID, nil
	case auth.Environment != nil && auth.Environment.ID != "":
		return auth.Environment.ID, nil
	case auth.User != nil && auth.User.EnvironmentID != "":
		return auth.User.EnvironmentID, nil
	case auth.EnvironmentID != "":
		return auth.EnvironmentID, nil
	}
	return "", ErrNoEnvironmentID
}
