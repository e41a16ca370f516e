// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/environment"
	"github.com/ledgerline/console/session"
)

// Fetcher retrieves the profile for an authenticated context.
// *api.Client satisfies this.
type Fetcher interface {
	FetchProfile(ctx context.Context, auth api.AuthContext) (*api.Profile, error)
}

// SessionController is the slice of the session controller the syncer
// needs: lifecycle events, the current auth context, and the forced
// logout escape hatch.
type SessionController interface {
	Subscribe() <-chan session.Event
	AuthContext() (api.AuthContext, bool)
	ForceLogout(reason string)
}

// Update is published after every completed sync attempt. Profile is
// the current (possibly stale) profile; Err is the recoverable fetch
// error, nil on success.
type Update struct {
	Profile *api.Profile
	Err     error
}

// Syncer owns the profile state. Start Run in its own goroutine; read
// with Current or subscribe for pushes.
type Syncer struct {
	fetcher    Fetcher
	controller SessionController
	env        *environment.Store
	logger     *slog.Logger

	// Subscribed at construction, not in Run, so no lifecycle event
	// slips through between wiring and the Run goroutine starting.
	events     <-chan session.Event
	envChanges <-chan environment.Environment

	mu          sync.Mutex
	seq         uint64
	profile     *api.Profile
	err         error
	subscribers []chan Update
}

// NewSyncer wires a syncer to its collaborators.
func NewSyncer(fetcher Fetcher, controller SessionController, env *environment.Store, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		fetcher:    fetcher,
		controller: controller,
		env:        env,
		logger:     logger,
		events:     controller.Subscribe(),
		envChanges: env.Subscribe(),
	}
}

// Current returns the latest profile and the latest recoverable fetch
// error. Both nil means no session, or a sync still in flight.
func (s *Syncer) Current() (*api.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.err
}

// Subscribe returns a channel receiving an Update after every sync
// attempt and after every clear. Buffered; slow subscribers miss
// intermediate updates and should re-read with Current.
func (s *Syncer) Subscribe() <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel := make(chan Update, 8)
	s.subscribers = append(s.subscribers, channel)
	return channel
}

// Run reacts to session and environment changes until ctx is
// cancelled. Fetches run in their own goroutines so a slow backend
// never blocks event processing; the sequence fence keeps commits
// ordered.
func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.events:
			switch event.Kind {
			case session.EventRestored, session.EventLoggedIn:
				s.Refresh(ctx)
			case session.EventLoggedOut:
				s.clear()
			}
		case <-s.envChanges:
			// Only meaningful with a live session; the selector also
			// resets to sandbox during logout, which must not fetch.
			if _, ok := s.controller.AuthContext(); ok {
				s.Refresh(ctx)
			}
		}
	}
}

// Refresh starts a profile fetch for the current session and
// environment. A session whose environment id resolves to nothing is
// corrupt and forces a logout without any network call.
func (s *Syncer) Refresh(ctx context.Context) {
	auth, ok := s.controller.AuthContext()
	if !ok {
		return
	}
	if auth.EnvironmentID == "" {
		s.logger.Warn("session has no resolvable environment id, forcing logout")
		s.controller.ForceLogout("corrupt")
		return
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	go s.fetch(ctx, auth, seq)
}

func (s *Syncer) fetch(ctx context.Context, auth api.AuthContext, seq uint64) {
	fetched, err := s.fetcher.FetchProfile(ctx, auth)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.controller.ForceLogout("unauthorized")
			return
		}
		s.logger.Warn("profile sync failed", "error", err)
		s.commit(seq, nil, err)
		return
	}
	s.commit(seq, fetched, nil)
}

// commit installs a fetch result unless a newer fetch or a clear has
// started since. On error the previous profile stays — a transient
// backend failure must not blank the identity display.
func (s *Syncer) commit(seq uint64, fetched *api.Profile, err error) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	if err == nil {
		s.profile = fetched
	}
	s.err = err
	update := Update{Profile: s.profile, Err: s.err}
	subscribers := s.subscribers
	s.mu.Unlock()

	dispatch(subscribers, update)
}

// clear drops the profile on logout and fences any in-flight fetch.
func (s *Syncer) clear() {
	s.mu.Lock()
	s.seq++
	s.profile = nil
	s.err = nil
	subscribers := s.subscribers
	s.mu.Unlock()

	dispatch(subscribers, Update{})
}

func dispatch(subscribers []chan Update, update Update) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- update:
		default:
		}
	}
}
