// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerline/console/lib/storage"
	"github.com/ledgerline/console/lib/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultsToSandbox(t *testing.T) {
	store := NewStore(storage.New(t.TempDir()), quietLogger())
	if got := store.Get(); got != Sandbox {
		t.Errorf("Get() on first run = %q, want sandbox", got)
	}
}

func TestInvalidPersistedValuesResolveToSandbox(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"unknown literal", `{"version":1,"value":{"environment":"staging"}}`},
		{"empty literal", `{"version":1,"value":{"environment":""}}`},
		{"wrong shape", `{"version":1,"value":{"mode":"production"}}`},
		{"not json", `{broken`},
		{"wrong envelope version", `{"version":9,"value":{"environment":"production"}}`},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			directory := t.TempDir()
			path := filepath.Join(directory, "environment.json")
			if err := os.WriteFile(path, []byte(testCase.payload), 0600); err != nil {
				t.Fatal(err)
			}

			store := NewStore(storage.New(directory), quietLogger())
			if got := store.Get(); got != Sandbox {
				t.Errorf("Get() = %q, want sandbox", got)
			}
		})
	}
}

func TestSetPersistsAndReloads(t *testing.T) {
	directory := t.TempDir()

	store := NewStore(storage.New(directory), quietLogger())
	store.Set(Production)

	reloaded := NewStore(storage.New(directory), quietLogger())
	if got := reloaded.Get(); got != Production {
		t.Errorf("reloaded Get() = %q, want production", got)
	}
}

func TestSetNotifiesSubscribers(t *testing.T) {
	store := NewStore(storage.New(t.TempDir()), quietLogger())
	updates := store.Subscribe()

	store.Set(Production)
	got := testutil.RequireReceive(t, updates, time.Second, "environment change")
	if got != Production {
		t.Errorf("subscriber received %q, want production", got)
	}
}

func TestSetSameValueIsSilent(t *testing.T) {
	store := NewStore(storage.New(t.TempDir()), quietLogger())
	updates := store.Subscribe()

	store.Set(Sandbox)
	testutil.RequireNoReceive(t, updates, 50*time.Millisecond, "no-op Set should not notify")
}

func TestSetInvalidValueIgnored(t *testing.T) {
	store := NewStore(storage.New(t.TempDir()), quietLogger())
	store.Set(Environment("staging"))
	if got := store.Get(); got != Sandbox {
		t.Errorf("Get() after invalid Set = %q, want sandbox", got)
	}
}

func TestResetForcesSandbox(t *testing.T) {
	store := NewStore(storage.New(t.TempDir()), quietLogger())
	store.Set(Production)

	store.Reset()
	if got := store.Get(); got != Sandbox {
		t.Errorf("Get() after Reset = %q, want sandbox", got)
	}
}

func TestToggle(t *testing.T) {
	store := NewStore(storage.New(t.TempDir()), quietLogger())

	if got := store.Toggle(); got != Production {
		t.Errorf("first Toggle = %q, want production", got)
	}
	if got := store.Toggle(); got != Sandbox {
		t.Errorf("second Toggle = %q, want sandbox", got)
	}
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	// Point the store at a path that cannot be created (a file where
	// the directory should be).
	base := t.TempDir()
	blocked := filepath.Join(base, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(storage.New(filepath.Join(blocked, "state")), quietLogger())
	store.Set(Production)
	if got := store.Get(); got != Production {
		t.Errorf("Get() after failed persist = %q, want production", got)
	}
}
