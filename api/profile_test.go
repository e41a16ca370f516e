// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"io"
	"net/http"
	"testing"
)

func profileServer(t *testing.T, payload string) *Client {
	t.Helper()
	return testClient(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/v1/me" {
			t.Errorf("path = %q", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		io.WriteString(writer, payload)
	})
}

func TestFetchProfileWrappedShape(t *testing.T) {
	client := profileServer(t, `{
		"user": {
			"id": "usr_1",
			"name": "Ada Operator",
			"email": "ada@example.test",
			"role": "admin",
			"avatar_url": "https://cdn.example.test/a.png"
		},
		"business": {"name": "Example Clearing Co"}
	}`)

	profile, err := client.FetchProfile(context.Background(), AuthContext{AccessToken: "t", EnvironmentID: "env_1", Environment: "sandbox"})
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.Name != "Ada Operator" {
		t.Errorf("Name = %q", profile.Name)
	}
	if profile.BusinessName != "Example Clearing Co" {
		t.Errorf("BusinessName = %q", profile.BusinessName)
	}
}

func TestFetchProfileBareShape(t *testing.T) {
	client := profileServer(t, `{"id": "usr_2", "name": "Bo", "email": "bo@example.test"}`)

	profile, err := client.FetchProfile(context.Background(), AuthContext{AccessToken: "t"})
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.ID != "usr_2" || profile.Name != "Bo" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestFetchProfileNameFallbacks(t *testing.T) {
	t.Run("first and last name", func(t *testing.T) {
		client := profileServer(t, `{"user": {"first_name": "Ada", "last_name": "Byron", "email": "ada@example.test"}}`)
		profile, err := client.FetchProfile(context.Background(), AuthContext{AccessToken: "t"})
		if err != nil {
			t.Fatal(err)
		}
		if profile.Name != "Ada Byron" {
			t.Errorf("Name = %q, want concatenated names", profile.Name)
		}
	})

	t.Run("email only", func(t *testing.T) {
		client := profileServer(t, `{"user": {"email": "ada@example.test"}}`)
		profile, err := client.FetchProfile(context.Background(), AuthContext{AccessToken: "t"})
		if err != nil {
			t.Fatal(err)
		}
		if profile.Name != "ada@example.test" {
			t.Errorf("Name = %q, want email fallback", profile.Name)
		}
	})
}
