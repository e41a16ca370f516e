// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ledgerline/console/lib/storage"
)

// Environment is the sandbox/production mode selector governing which
// backend dataset a session's calls are scoped to.
type Environment string

const (
	// Sandbox is the safe default: test data, no real money movement.
	Sandbox Environment = "sandbox"
	// Production scopes calls to live data.
	Production Environment = "production"
)

// Valid reports whether e is one of the two enum literals.
func (e Environment) Valid() bool {
	return e == Sandbox || e == Production
}

// storageKey is the durable record key for the persisted selector.
const storageKey = "environment"

// persistedRecord is the durable form of the selector.
type persistedRecord struct {
	Environment Environment `json:"environment"`
}

// Store holds the current Environment, persists every change, and
// notifies subscribers. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	current     Environment
	storage     *storage.Store
	logger      *slog.Logger
	subscribers []chan Environment
}

// NewStore loads the persisted selector and validates it. Any value
// outside the enum — including an absent or corrupt record — resolves
// to Sandbox with a logged warning, never an error: a broken state
// file must not block the console, and it must never leave production
// selected by accident.
func NewStore(durable *storage.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		current: Sandbox,
		storage: durable,
		logger:  logger,
	}

	var record persistedRecord
	err := durable.Read(storageKey, &record)
	switch {
	case err == nil && record.Environment.Valid():
		store.current = record.Environment
	case err == nil:
		logger.Warn("persisted environment is not a known value, defaulting to sandbox",
			"value", string(record.Environment))
	case errors.Is(err, storage.ErrNotFound):
		// First run. Sandbox, silently.
	default:
		logger.Warn("could not read persisted environment, defaulting to sandbox", "error", err)
	}

	return store
}

// Get returns the current Environment.
func (s *Store) Get() Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set switches the selector, persists it, and notifies subscribers.
// Setting the current value is a no-op. Persistence failures are
// logged and swallowed: the in-memory value stays authoritative for
// this process.
func (s *Store) Set(env Environment) {
	if !env.Valid() {
		// Writers are the user toggle and login resolution, both of
		// which produce enum literals. Guard anyway.
		s.logger.Warn("ignoring invalid environment value", "value", string(env))
		return
	}

	s.mu.Lock()
	if s.current == env {
		s.mu.Unlock()
		return
	}
	s.current = env
	subscribers := s.subscribers
	s.mu.Unlock()

	s.persist(env)
	dispatch(subscribers, env)
}

// Reset forces Sandbox unconditionally. Called on logout so a stale
// production selection never survives into the next session on a
// shared machine.
func (s *Store) Reset() {
	s.Set(Sandbox)
}

// Subscribe returns a channel that receives the new value after every
// change. The channel is buffered; a subscriber that falls behind
// misses intermediate values and should re-read with Get.
func (s *Store) Subscribe() <-chan Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel := make(chan Environment, 8)
	s.subscribers = append(s.subscribers, channel)
	return channel
}

// Toggle flips between the two environments and returns the new value.
func (s *Store) Toggle() Environment {
	if s.Get() == Sandbox {
		s.Set(Production)
		return Production
	}
	s.Set(Sandbox)
	return Sandbox
}

func (s *Store) persist(env Environment) {
	if err := s.storage.Write(storageKey, persistedRecord{Environment: env}); err != nil {
		s.logger.Warn("could not persist environment selection", "error", err)
	}
}

// dispatch sends env to each subscriber without blocking. The
// subscriber list is append-only, so iterating a snapshot taken under
// the lock is safe.
func dispatch(subscribers []chan Environment, env Environment) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- env:
		default:
		}
	}
}
