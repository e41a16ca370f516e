// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ledgerline/console/api"
)

// DetailFetchFunc loads one record by id.
type DetailFetchFunc[T any] func(ctx context.Context, auth api.AuthContext, id string) (*T, error)

// DetailState is the renderable projection of a detail view.
type DetailState[T any] struct {
	ID      string
	Record  *T
	Loading bool
	Err     error
}

// Detail is a single-record view keyed by a selected id. Selecting an
// id fetches; clearing the selection empties the view with no network
// call.
type Detail[T any] struct {
	name   string
	source SessionSource
	fetch  DetailFetchFunc[T]
	logger *slog.Logger

	mu          sync.Mutex
	seq         uint64
	state       DetailState[T]
	subscribers []chan DetailState[T]
}

// NewDetail creates an empty detail view.
func NewDetail[T any](name string, source SessionSource, fetch DetailFetchFunc[T], logger *slog.Logger) *Detail[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detail[T]{
		name:   name,
		source: source,
		fetch:  fetch,
		logger: logger,
	}
}

// State returns the current projection.
func (d *Detail[T]) State() DetailState[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Subscribe returns a channel receiving the projection after every
// change.
func (d *Detail[T]) Subscribe() <-chan DetailState[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	channel := make(chan DetailState[T], 8)
	d.subscribers = append(d.subscribers, channel)
	return channel
}

// Select sets the record id and fetches it. An empty id clears the
// view without any network call; reselecting the current id refetches
// so the operator can force a refresh.
func (d *Detail[T]) Select(ctx context.Context, id string) {
	if id == "" {
		d.Clear()
		return
	}

	auth, ok := d.source.AuthContext()
	if !ok {
		d.Clear()
		return
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.state.ID = id
	d.state.Loading = true
	d.state.Err = nil
	update := d.state
	subscribers := d.subscribers
	d.mu.Unlock()

	publishDetail(subscribers, update)
	go d.fetchRecord(ctx, auth, id, seq)
}

// Clear empties the view and fences any in-flight fetch.
func (d *Detail[T]) Clear() {
	d.mu.Lock()
	d.seq++
	d.state = DetailState[T]{}
	update := d.state
	subscribers := d.subscribers
	d.mu.Unlock()
	publishDetail(subscribers, update)
}

// EnvironmentChanged clears the selection: a record id from one
// environment does not exist in the other.
func (d *Detail[T]) EnvironmentChanged() { d.Clear() }

// SessionEnded clears the selection.
func (d *Detail[T]) SessionEnded() { d.Clear() }

func (d *Detail[T]) fetchRecord(ctx context.Context, auth api.AuthContext, id string, seq uint64) {
	record, err := d.fetch(ctx, auth, id)
	if err != nil && api.IsUnauthorized(err) {
		d.source.ForceLogout("unauthorized")
		return
	}
	if err != nil {
		d.logger.Warn("detail fetch failed", "view", d.name, "id", id, "error", err)
	}

	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.state.Loading = false
	if err == nil {
		d.state.Record = record
		d.state.Err = nil
	} else {
		d.state.Err = err
	}
	update := d.state
	subscribers := d.subscribers
	d.mu.Unlock()

	publishDetail(subscribers, update)
}

func publishDetail[T any](subscribers []chan DetailState[T], state DetailState[T]) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- state:
		default:
		}
	}
}
