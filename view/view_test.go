// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/lib/testutil"
)

// stubSource implements SessionSource with a controllable auth
// context and a channel recording forced logouts.
type stubSource struct {
	mu     sync.Mutex
	auth   api.AuthContext
	ok     bool
	forced chan string
}

func newStubSource(loggedIn bool) *stubSource {
	source := &stubSource{forced: make(chan string, 8)}
	if loggedIn {
		source.auth = api.AuthContext{AccessToken: "tok", EnvironmentID: "env_sbx", Environment: "sandbox"}
		source.ok = true
	}
	return source
}

func (s *stubSource) AuthContext() (api.AuthContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth, s.ok
}

func (s *stubSource) ForceLogout(reason string) { s.forced <- reason }

// pageFetcher serves scripted pages and records every request. Gated
// calls block until released, letting tests order overlapping fetches.
type pageFetcher struct {
	mu       sync.Mutex
	requests []int
	respond  func(pageNumber int) ([]string, api.PageMeta, error)
	gates    chan chan struct{}
}

func (f *pageFetcher) fetch(ctx context.Context, _ api.AuthContext, pageNumber int) ([]string, api.PageMeta, error) {
	f.mu.Lock()
	f.requests = append(f.requests, pageNumber)
	f.mu.Unlock()

	if f.gates != nil {
		release := make(chan struct{})
		f.gates <- release
		<-release
	}
	return f.respond(pageNumber)
}

func (f *pageFetcher) requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.requests...)
}

func pagesOf(totalPages int) func(int) ([]string, api.PageMeta, error) {
	return func(pageNumber int) ([]string, api.PageMeta, error) {
		return []string{fmt.Sprintf("row_p%d", pageNumber)}, api.PageMeta{
			Page:       pageNumber,
			PerPage:    1,
			TotalCount: totalPages,
			TotalPages: totalPages,
		}, nil
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// awaitRows drains state updates until one arrives with Loading false,
// or fails the test.
func awaitRows(t *testing.T, updates <-chan State[string]) State[string] {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case state := <-updates:
			if !state.Loading {
				return state
			}
		case <-deadline:
			t.Fatal("timed out waiting for a settled view state")
		}
	}
}

func TestActivateFetchesPageOne(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(3)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())

	state := awaitRows(t, updates)
	if state.Err != nil {
		t.Fatal(state.Err)
	}
	if len(state.Rows) != 1 || state.Rows[0] != "row_p1" {
		t.Errorf("rows = %v", state.Rows)
	}
	if state.Page != 1 || state.Meta.TotalPages != 3 {
		t.Errorf("page = %d, meta = %+v", state.Page, state.Meta)
	}
}

func TestInactiveViewNeverFetches(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(3)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())

	list.SetPage(context.Background(), 2)
	list.Refresh(context.Background())

	time.Sleep(20 * time.Millisecond)
	if got := fetcher.requested(); len(got) != 0 {
		t.Errorf("inactive view made requests: %v", got)
	}
}

func TestPaginationRequestsTheRightPages(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(3)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	awaitRows(t, updates)

	list.NextPage(context.Background())
	state := awaitRows(t, updates)
	if state.Page != 2 || state.Rows[0] != "row_p2" {
		t.Errorf("page = %d, rows = %v", state.Page, state.Rows)
	}

	list.PrevPage(context.Background())
	state = awaitRows(t, updates)
	if state.Page != 1 {
		t.Errorf("page = %d, want 1", state.Page)
	}

	// Page 1 is the floor.
	list.PrevPage(context.Background())
	time.Sleep(20 * time.Millisecond)
	if got := fetcher.requested(); len(got) != 3 {
		t.Errorf("requests = %v, want exactly 3", got)
	}
}

func TestNextPageStopsAtTotalPages(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(1)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	awaitRows(t, updates)

	list.NextPage(context.Background())
	time.Sleep(20 * time.Millisecond)
	if got := fetcher.requested(); len(got) != 1 {
		t.Errorf("requests = %v, NextPage fetched past the last page", got)
	}
}

func TestEnvironmentChangeResetsToPageOne(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(5)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	awaitRows(t, updates)
	list.SetPage(context.Background(), 3)
	awaitRows(t, updates)

	list.EnvironmentChanged(context.Background())
	state := awaitRows(t, updates)
	if state.Page != 1 {
		t.Errorf("page = %d after environment change, want 1", state.Page)
	}
	if got := fetcher.requested(); got[len(got)-1] != 1 {
		t.Errorf("requests = %v, last should be page 1", got)
	}
}

func TestEnvironmentChangeOnInactiveViewDropsRows(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(2)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	awaitRows(t, updates)
	list.Deactivate()

	requestsBefore := len(fetcher.requested())
	list.EnvironmentChanged(context.Background())
	time.Sleep(20 * time.Millisecond)

	if len(fetcher.requested()) != requestsBefore {
		t.Error("inactive view fetched on environment change")
	}
	if state := list.State(); len(state.Rows) != 0 {
		t.Errorf("rows = %v, want none after environment change", state.Rows)
	}
}

func TestNoSessionClearsInsteadOfFetching(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(2)}
	list := NewList("accounts", newStubSource(false), fetcher.fetch, quietLogger())

	list.Activate(context.Background())
	time.Sleep(20 * time.Millisecond)

	if got := fetcher.requested(); len(got) != 0 {
		t.Errorf("requests made with no session: %v", got)
	}
	if state := list.State(); len(state.Rows) != 0 || state.Loading {
		t.Errorf("state = %+v, want empty and idle", state)
	}
}

func TestFetchErrorKeepsPreviousRows(t *testing.T) {
	failing := false
	fetcher := &pageFetcher{respond: func(pageNumber int) ([]string, api.PageMeta, error) {
		if failing {
			return nil, api.PageMeta{}, &api.RequestError{StatusCode: 502}
		}
		return pagesOf(2)(pageNumber)
	}}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	awaitRows(t, updates)

	failing = true
	list.Refresh(context.Background())
	state := awaitRows(t, updates)
	if state.Err == nil {
		t.Fatal("expected an error in the projection")
	}
	if len(state.Rows) != 1 || state.Rows[0] != "row_p1" {
		t.Errorf("rows = %v, previous rows lost", state.Rows)
	}
	if state.Loading {
		t.Error("loading flag stuck after failed fetch")
	}
}

func TestNewFetchClearsPreviousError(t *testing.T) {
	failing := true
	fetcher := &pageFetcher{respond: func(pageNumber int) ([]string, api.PageMeta, error) {
		if failing {
			return nil, api.PageMeta{}, &api.RequestError{StatusCode: 502}
		}
		return pagesOf(2)(pageNumber)
	}}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	if state := awaitRows(t, updates); state.Err == nil {
		t.Fatal("expected the first fetch to fail")
	}

	// The loading state the retry publishes must not carry the old
	// error next to the spinner.
	failing = false
	list.Refresh(context.Background())

	state := testutil.RequireReceive(t, updates, time.Second, "loading state")
	if !state.Loading {
		t.Fatalf("state = %+v, want the loading projection first", state)
	}
	if state.Err != nil {
		t.Errorf("err = %v, want nil once the retry starts", state.Err)
	}
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	source := newStubSource(true)
	fetcher := &pageFetcher{respond: func(int) ([]string, api.PageMeta, error) {
		return nil, api.PageMeta{}, &api.RequestError{StatusCode: 401}
	}}
	list := NewList("accounts", source, fetcher.fetch, quietLogger())

	list.Activate(context.Background())

	reason := testutil.RequireReceive(t, source.forced, time.Second, "forced logout")
	if reason != "unauthorized" {
		t.Errorf("reason = %q, want unauthorized", reason)
	}
}

func TestSessionEndedClearsEverything(t *testing.T) {
	fetcher := &pageFetcher{respond: pagesOf(2)}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())
	updates := list.Subscribe()

	list.Activate(context.Background())
	awaitRows(t, updates)

	list.SessionEnded()
	state := list.State()
	if len(state.Rows) != 0 || state.Err != nil || state.Loading || state.Page != 1 {
		t.Errorf("state = %+v, want zeroed", state)
	}
}

func TestStalePageCannotOverwriteNewerPage(t *testing.T) {
	fetcher := &pageFetcher{
		gates:   make(chan chan struct{}, 2),
		respond: pagesOf(5),
	}
	list := NewList("accounts", newStubSource(true), fetcher.fetch, quietLogger())

	list.Activate(context.Background())
	firstGate := testutil.RequireReceive(t, fetcher.gates, time.Second, "page 1 fetch started")

	list.SetPage(context.Background(), 2)
	secondGate := testutil.RequireReceive(t, fetcher.gates, time.Second, "page 2 fetch started")

	updates := list.Subscribe()
	close(secondGate)
	awaitRows(t, updates)

	// The superseded page-1 response arrives late and must be dropped.
	close(firstGate)
	time.Sleep(20 * time.Millisecond)
	if state := list.State(); state.Rows[0] != "row_p2" || state.Page != 2 {
		t.Errorf("state = %+v, stale page overwrote it", state)
	}
}
