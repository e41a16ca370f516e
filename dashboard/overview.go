// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/lib/clock"
	"github.com/ledgerline/console/view"
)

// OverviewSource is the slice of the API client the overview needs:
// the two collections it drains in full.
type OverviewSource interface {
	ListLedgerEntries(ctx context.Context, auth api.AuthContext, pageNumber, perPage int) ([]api.LedgerEntry, api.PageMeta, error)
	ListUsers(ctx context.Context, auth api.AuthContext, pageNumber, perPage int) ([]api.User, api.PageMeta, error)
}

// OverviewState is the renderable projection of the overview tab.
type OverviewState struct {
	Volume  Volume
	Stats   UserStats
	Loading bool
	Err     error
}

// Overview is the settled-volume and user-stats view. It follows the
// same fetch contract as the list views, but each fetch drains its
// collections completely — one request per page — before reducing
// client-side.
type Overview struct {
	session view.SessionSource
	source  OverviewSource
	clock   clock.Clock
	logger  *slog.Logger

	mu          sync.Mutex
	active      bool
	volumeRange VolumeRange
	seq         uint64
	state       OverviewState
	subscribers []chan OverviewState
}

// NewOverview creates an inactive overview defaulting to the ALL
// range.
func NewOverview(session view.SessionSource, source OverviewSource, clk clock.Clock, logger *slog.Logger) *Overview {
	if logger == nil {
		logger = slog.Default()
	}
	return &Overview{
		session:     session,
		source:      source,
		clock:       clk,
		logger:      logger,
		volumeRange: RangeAll,
	}
}

// State returns the current projection.
func (o *Overview) State() OverviewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Range returns the selected volume range.
func (o *Overview) Range() VolumeRange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volumeRange
}

// Subscribe returns a channel receiving the projection after every
// change.
func (o *Overview) Subscribe() <-chan OverviewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	channel := make(chan OverviewState, 8)
	o.subscribers = append(o.subscribers, channel)
	return channel
}

// Activate marks the tab active and starts an aggregation pass.
func (o *Overview) Activate(ctx context.Context) {
	o.mu.Lock()
	o.active = true
	o.mu.Unlock()
	o.start(ctx)
}

// Deactivate marks the tab inactive.
func (o *Overview) Deactivate() {
	o.mu.Lock()
	o.active = false
	o.mu.Unlock()
}

// SetRange switches the bucket layout and re-aggregates. The drained
// entries are not cached across calls — the collection may have grown
// since the last pass.
func (o *Overview) SetRange(ctx context.Context, volumeRange VolumeRange) {
	o.mu.Lock()
	if o.volumeRange == volumeRange {
		o.mu.Unlock()
		return
	}
	o.volumeRange = volumeRange
	active := o.active
	o.mu.Unlock()
	if active {
		o.start(ctx)
	}
}

// EnvironmentChanged re-aggregates an active overview and drops a
// hidden one's data.
func (o *Overview) EnvironmentChanged(ctx context.Context) {
	o.mu.Lock()
	if !o.active {
		o.clearLocked()
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	o.start(ctx)
}

// SessionEnded clears the projection and fences any in-flight pass.
func (o *Overview) SessionEnded() {
	o.mu.Lock()
	o.clearLocked()
	update := o.state
	subscribers := o.subscribers
	o.mu.Unlock()
	publishOverview(subscribers, update)
}

// Refresh re-runs the aggregation for an active overview.
func (o *Overview) Refresh(ctx context.Context) {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()
	if active {
		o.start(ctx)
	}
}

func (o *Overview) start(ctx context.Context) {
	auth, ok := o.session.AuthContext()
	if !ok {
		o.SessionEnded()
		return
	}

	o.mu.Lock()
	o.seq++
	seq := o.seq
	volumeRange := o.volumeRange
	o.state.Loading = true
	update := o.state
	subscribers := o.subscribers
	o.mu.Unlock()

	publishOverview(subscribers, update)
	go o.aggregate(ctx, auth, volumeRange, seq)
}

// aggregate drains both collections and reduces them. The sequence
// check before commit is what keeps a superseded pass (older
// environment, older session) from publishing its result.
func (o *Overview) aggregate(ctx context.Context, auth api.AuthContext, volumeRange VolumeRange, seq uint64) {
	entries, err := api.DrainAll(ctx, func(ctx context.Context, pageNumber int) ([]api.LedgerEntry, api.PageMeta, error) {
		return o.source.ListLedgerEntries(ctx, auth, pageNumber, api.DefaultPerPage)
	})
	if err != nil {
		o.fail(seq, err)
		return
	}

	users, err := api.DrainAll(ctx, func(ctx context.Context, pageNumber int) ([]api.User, api.PageMeta, error) {
		return o.source.ListUsers(ctx, auth, pageNumber, api.DefaultPerPage)
	})
	if err != nil {
		o.fail(seq, err)
		return
	}

	volume := AggregateVolume(entries, volumeRange, o.clock.Now())
	stats := CountUsers(users)

	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		return
	}
	o.state = OverviewState{Volume: volume, Stats: stats}
	update := o.state
	subscribers := o.subscribers
	o.mu.Unlock()
	publishOverview(subscribers, update)
}

func (o *Overview) fail(seq uint64, err error) {
	if api.IsUnauthorized(err) {
		o.session.ForceLogout("unauthorized")
		return
	}
	o.logger.Warn("overview aggregation failed", "error", err)

	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		return
	}
	o.state.Loading = false
	o.state.Err = err
	update := o.state
	subscribers := o.subscribers
	o.mu.Unlock()
	publishOverview(subscribers, update)
}

// clearLocked resets the projection and fences in-flight passes. Must
// hold o.mu.
func (o *Overview) clearLocked() {
	o.seq++
	o.state = OverviewState{}
}

func publishOverview(subscribers []chan OverviewState, state OverviewState) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- state:
		default:
		}
	}
}
