// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ledgerline/console/api"
)

// SessionSource is the slice of the session controller a view needs:
// the auth context for outgoing calls, and the forced-logout path for
// a 401.
type SessionSource interface {
	AuthContext() (auth api.AuthContext, ok bool)
	ForceLogout(reason string)
}

// FetchFunc loads one page of rows. The api list methods satisfy this
// shape directly.
type FetchFunc[T any] func(ctx context.Context, auth api.AuthContext, pageNumber int) ([]T, api.PageMeta, error)

// State is the renderable projection of a list view.
type State[T any] struct {
	Rows    []T
	Meta    api.PageMeta
	Page    int
	Loading bool
	Err     error
}

// List is a paginated view over one collection. All methods are safe
// for concurrent use; fetches run in their own goroutines and publish
// through Subscribe.
type List[T any] struct {
	name   string
	source SessionSource
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu          sync.Mutex
	active      bool
	page        int
	seq         uint64
	state       State[T]
	subscribers []chan State[T]
}

// NewList creates an inactive list view. The name is used only in
// logs.
func NewList[T any](name string, source SessionSource, fetch FetchFunc[T], logger *slog.Logger) *List[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &List[T]{
		name:   name,
		source: source,
		fetch:  fetch,
		logger: logger,
		page:   1,
		state:  State[T]{Page: 1},
	}
}

// State returns the current projection.
func (l *List[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Subscribe returns a channel receiving the projection after every
// change. Buffered; a slow subscriber misses intermediate states and
// should re-read with State.
func (l *List[T]) Subscribe() <-chan State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	channel := make(chan State[T], 8)
	l.subscribers = append(l.subscribers, channel)
	return channel
}

// Activate marks the view's tab active and fetches page 1. Activation
// always resets the page: cached position is meaningless across the
// session and environment changes that may have happened since the
// tab was last shown.
func (l *List[T]) Activate(ctx context.Context) {
	l.mu.Lock()
	l.active = true
	l.page = 1
	l.mu.Unlock()
	l.start(ctx)
}

// Deactivate marks the tab inactive. Rows stay cached for instant
// redisplay; no fetch happens until reactivation.
func (l *List[T]) Deactivate() {
	l.mu.Lock()
	l.active = false
	l.mu.Unlock()
}

// SetPage moves to the given page and fetches it. Out-of-range input
// clamps to 1; the server's pagination block is the authority on the
// upper bound.
func (l *List[T]) SetPage(ctx context.Context, pageNumber int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	l.mu.Lock()
	if !l.active || l.page == pageNumber {
		l.mu.Unlock()
		return
	}
	l.page = pageNumber
	l.mu.Unlock()
	l.start(ctx)
}

// NextPage advances one page when the pagination block says one
// exists.
func (l *List[T]) NextPage(ctx context.Context) {
	l.mu.Lock()
	next := l.page + 1
	total := l.state.Meta.TotalPages
	l.mu.Unlock()
	if total > 0 && next > total {
		return
	}
	l.SetPage(ctx, next)
}

// PrevPage moves back one page.
func (l *List[T]) PrevPage(ctx context.Context) {
	l.mu.Lock()
	previous := l.page - 1
	l.mu.Unlock()
	l.SetPage(ctx, previous)
}

// EnvironmentChanged responds to an environment switch. An active
// view resets to page 1 and refetches; an inactive view just drops
// its cached rows so the other environment's data never flashes on
// reactivation.
func (l *List[T]) EnvironmentChanged(ctx context.Context) {
	l.mu.Lock()
	l.page = 1
	if !l.active {
		l.clearLocked()
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	l.start(ctx)
}

// SessionEnded clears everything and fences any in-flight fetch.
func (l *List[T]) SessionEnded() {
	l.mu.Lock()
	l.clearLocked()
	update := l.state
	subscribers := l.subscribers
	l.mu.Unlock()
	publish(subscribers, update)
}

// Refresh refetches the current page of an active view.
func (l *List[T]) Refresh(ctx context.Context) {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	if active {
		l.start(ctx)
	}
}

// start begins a fetch for the current page. Without a session there
// is nothing to fetch and anything shown is stale.
func (l *List[T]) start(ctx context.Context) {
	auth, ok := l.source.AuthContext()
	if !ok {
		l.SessionEnded()
		return
	}

	l.mu.Lock()
	l.seq++
	seq := l.seq
	pageNumber := l.page
	l.state.Loading = true
	l.state.Err = nil
	l.state.Page = pageNumber
	update := l.state
	subscribers := l.subscribers
	l.mu.Unlock()

	publish(subscribers, update)
	go l.fetchPage(ctx, auth, pageNumber, seq)
}

func (l *List[T]) fetchPage(ctx context.Context, auth api.AuthContext, pageNumber int, seq uint64) {
	rows, meta, err := l.fetch(ctx, auth, pageNumber)
	if err != nil && api.IsUnauthorized(err) {
		l.source.ForceLogout("unauthorized")
		return
	}
	if err != nil {
		l.logger.Warn("fetch failed", "view", l.name, "page", pageNumber, "error", err)
	}
	l.commit(seq, rows, meta, err)
}

// commit installs a fetch result unless a newer fetch or a clear has
// superseded it. On error the previous rows stay visible next to the
// error.
func (l *List[T]) commit(seq uint64, rows []T, meta api.PageMeta, err error) {
	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		return
	}
	l.state.Loading = false
	if err == nil {
		l.state.Rows = rows
		l.state.Meta = meta
		l.state.Err = nil
	} else {
		l.state.Err = err
	}
	update := l.state
	subscribers := l.subscribers
	l.mu.Unlock()

	publish(subscribers, update)
}

// clearLocked resets the projection and fences in-flight fetches.
// Must hold l.mu.
func (l *List[T]) clearLocked() {
	l.seq++
	l.page = 1
	l.state = State[T]{Page: 1}
}

func publish[T any](subscribers []chan State[T], state State[T]) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- state:
		default:
		}
	}
}
