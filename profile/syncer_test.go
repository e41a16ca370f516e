// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/environment"
	"github.com/ledgerline/console/lib/storage"
	"github.com/ledgerline/console/lib/testutil"
	"github.com/ledgerline/console/session"
)

// stubController stands in for the session controller. Tests push
// lifecycle events through the events channel and observe forced
// logouts on the forced channel.
type stubController struct {
	events chan session.Event
	forced chan string

	mu   sync.Mutex
	auth api.AuthContext
	ok   bool
}

func newStubController() *stubController {
	return &stubController{
		events: make(chan session.Event, 8),
		forced: make(chan string, 8),
	}
}

func (c *stubController) Subscribe() <-chan session.Event { return c.events }

func (c *stubController) AuthContext() (api.AuthContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth, c.ok
}

func (c *stubController) setAuth(auth api.AuthContext) {
	c.mu.Lock()
	c.auth = auth
	c.ok = true
	c.mu.Unlock()
}

func (c *stubController) ForceLogout(reason string) { c.forced <- reason }

// stubFetcher serves scripted profile responses. When gated, each
// FetchProfile call blocks until the test releases it, letting tests
// order overlapping fetches deterministically.
type stubFetcher struct {
	mu      sync.Mutex
	calls   int
	respond func(call int, auth api.AuthContext) (*api.Profile, error)
	gates   chan chan struct{}
}

func (f *stubFetcher) FetchProfile(ctx context.Context, auth api.AuthContext) (*api.Profile, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.gates != nil {
		release := make(chan struct{})
		f.gates <- release
		<-release
	}
	return f.respond(call, auth)
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestEnv(t *testing.T) *environment.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return environment.NewStore(storage.New(t.TempDir()), logger)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testAuth = api.AuthContext{
	AccessToken:   "tok",
	EnvironmentID: "env_sbx",
	Environment:   "sandbox",
}

func TestLoginEventFetchesProfile(t *testing.T) {
	controller := newStubController()
	controller.setAuth(testAuth)
	fetcher := &stubFetcher{respond: func(int, api.AuthContext) (*api.Profile, error) {
		return &api.Profile{ID: "usr_1", Name: "Ada Lovelace"}, nil
	}}
	syncer := NewSyncer(fetcher, controller, newTestEnv(t), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Run(ctx)

	updates := syncer.Subscribe()
	controller.events <- session.Event{Kind: session.EventLoggedIn}

	update := testutil.RequireReceive(t, updates, time.Second, "profile update after login")
	if update.Err != nil {
		t.Fatal(update.Err)
	}
	if update.Profile == nil || update.Profile.Name != "Ada Lovelace" {
		t.Errorf("profile = %+v", update.Profile)
	}
}

func TestEnvironmentChangeRefetches(t *testing.T) {
	controller := newStubController()
	controller.setAuth(testAuth)
	fetcher := &stubFetcher{respond: func(call int, auth api.AuthContext) (*api.Profile, error) {
		return &api.Profile{ID: fmt.Sprintf("usr_%d", call)}, nil
	}}
	env := newTestEnv(t)
	syncer := NewSyncer(fetcher, controller, env, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Run(ctx)

	updates := syncer.Subscribe()
	controller.events <- session.Event{Kind: session.EventLoggedIn}
	testutil.RequireReceive(t, updates, time.Second, "initial profile")

	env.Set(environment.Production)
	update := testutil.RequireReceive(t, updates, time.Second, "profile after environment change")
	if update.Profile == nil || update.Profile.ID != "usr_2" {
		t.Errorf("profile = %+v, want the second fetch's result", update.Profile)
	}
	if fetcher.callCount() != 2 {
		t.Errorf("fetch calls = %d, want 2", fetcher.callCount())
	}
}

func TestEnvironmentChangeWithoutSessionDoesNotFetch(t *testing.T) {
	controller := newStubController() // no auth context
	fetcher := &stubFetcher{respond: func(int, api.AuthContext) (*api.Profile, error) {
		t.Error("fetch attempted with no session")
		return nil, nil
	}}
	env := newTestEnv(t)
	syncer := NewSyncer(fetcher, controller, env, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Run(ctx)

	updates := syncer.Subscribe()
	env.Set(environment.Production)
	testutil.RequireNoReceive(t, updates, 50*time.Millisecond, "update with no session")
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	controller := newStubController()
	controller.setAuth(testAuth)
	fetcher := &stubFetcher{respond: func(int, api.AuthContext) (*api.Profile, error) {
		return nil, &api.RequestError{StatusCode: 401}
	}}
	syncer := NewSyncer(fetcher, controller, newTestEnv(t), quietLogger())

	updates := syncer.Subscribe()
	syncer.Refresh(context.Background())

	reason := testutil.RequireReceive(t, controller.forced, time.Second, "forced logout")
	if reason != "unauthorized" {
		t.Errorf("reason = %q, want unauthorized", reason)
	}
	testutil.RequireNoReceive(t, updates, 50*time.Millisecond, "update after 401")
}

func TestFetchFailureKeepsStaleProfile(t *testing.T) {
	controller := newStubController()
	controller.setAuth(testAuth)
	fetcher := &stubFetcher{respond: func(call int, _ api.AuthContext) (*api.Profile, error) {
		if call == 1 {
			return &api.Profile{ID: "usr_1", Name: "Ada Lovelace"}, nil
		}
		return nil, &api.RequestError{StatusCode: 502}
	}}
	syncer := NewSyncer(fetcher, controller, newTestEnv(t), quietLogger())
	updates := syncer.Subscribe()

	syncer.Refresh(context.Background())
	testutil.RequireReceive(t, updates, time.Second, "first profile")

	syncer.Refresh(context.Background())
	update := testutil.RequireReceive(t, updates, time.Second, "failed refresh")
	if update.Err == nil {
		t.Fatal("expected a recoverable error")
	}
	if update.Profile == nil || update.Profile.ID != "usr_1" {
		t.Errorf("stale profile lost: %+v", update.Profile)
	}
}

func TestCorruptSessionForcesLogoutWithoutFetching(t *testing.T) {
	controller := newStubController()
	controller.setAuth(api.AuthContext{AccessToken: "tok"}) // no environment id
	fetcher := &stubFetcher{respond: func(int, api.AuthContext) (*api.Profile, error) {
		t.Error("network call made for a corrupt session")
		return nil, nil
	}}
	syncer := NewSyncer(fetcher, controller, newTestEnv(t), quietLogger())

	syncer.Refresh(context.Background())

	reason := testutil.RequireReceive(t, controller.forced, time.Second, "forced logout")
	if reason != "corrupt" {
		t.Errorf("reason = %q, want corrupt", reason)
	}
	if fetcher.callCount() != 0 {
		t.Errorf("fetch calls = %d, want 0", fetcher.callCount())
	}
}

func TestLogoutClearsProfile(t *testing.T) {
	controller := newStubController()
	controller.setAuth(testAuth)
	fetcher := &stubFetcher{respond: func(int, api.AuthContext) (*api.Profile, error) {
		return &api.Profile{ID: "usr_1"}, nil
	}}
	syncer := NewSyncer(fetcher, controller, newTestEnv(t), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Run(ctx)

	updates := syncer.Subscribe()
	controller.events <- session.Event{Kind: session.EventLoggedIn}
	testutil.RequireReceive(t, updates, time.Second, "profile after login")

	controller.events <- session.Event{Kind: session.EventLoggedOut}
	update := testutil.RequireReceive(t, updates, time.Second, "clear after logout")
	if update.Profile != nil || update.Err != nil {
		t.Errorf("update after logout = %+v", update)
	}
	if profile, _ := syncer.Current(); profile != nil {
		t.Error("profile survives logout")
	}
}

func TestSlowFetchCannotOverwriteNewerResult(t *testing.T) {
	controller := newStubController()
	controller.setAuth(testAuth)
	fetcher := &stubFetcher{
		gates: make(chan chan struct{}, 2),
		respond: func(call int, _ api.AuthContext) (*api.Profile, error) {
			return &api.Profile{ID: fmt.Sprintf("usr_%d", call)}, nil
		},
	}
	syncer := NewSyncer(fetcher, controller, newTestEnv(t), quietLogger())
	updates := syncer.Subscribe()

	syncer.Refresh(context.Background())
	firstGate := testutil.RequireReceive(t, fetcher.gates, time.Second, "first fetch started")

	syncer.Refresh(context.Background())
	secondGate := testutil.RequireReceive(t, fetcher.gates, time.Second, "second fetch started")

	// The newer fetch completes first and wins.
	close(secondGate)
	update := testutil.RequireReceive(t, updates, time.Second, "second fetch result")
	if update.Profile.ID != "usr_2" {
		t.Fatalf("profile = %+v", update.Profile)
	}

	// The stale fetch completes afterwards and must be discarded.
	close(firstGate)
	testutil.RequireNoReceive(t, updates, 50*time.Millisecond, "stale fetch published")
	if profile, _ := syncer.Current(); profile.ID != "usr_2" {
		t.Errorf("current profile = %+v, stale result overwrote it", profile)
	}
}
