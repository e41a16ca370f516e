// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log/slog"
	"sync"

	"github.com/ledgerline/console/lib/storage"
)

// storageKey is the durable record key for the persisted session.
const storageKey = "session"

// Store holds the in-memory session record and mirrors it to durable
// storage. The lifecycle Controller is the only writer; everything
// else reads through Current.
type Store struct {
	mu      sync.Mutex
	record  *Record
	storage *storage.Store
	logger  *slog.Logger
}

// NewStore creates an empty session store backed by durable storage.
// It does not load the durable record — restore is a controller
// decision (expiry and shape checks), not a storage one.
func NewStore(durable *storage.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: durable, logger: logger}
}

// Current returns the session record, or nil when logged out.
func (s *Store) Current() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// replace installs a new record wholesale and persists it. A durable
// write failure is logged and swallowed — the in-memory session keeps
// the operator working; the cost is a re-login after restart.
func (s *Store) replace(record *Record) {
	s.mu.Lock()
	s.record = record
	s.mu.Unlock()

	if err := s.storage.Write(storageKey, record); err != nil {
		s.logger.Warn("could not persist session record", "error", err)
	}
}

// install puts a record in memory without touching durable storage.
// Used by restore, where the record came from durable storage in the
// first place.
func (s *Store) install(record *Record) {
	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
}

// clear drops the session from memory and durable storage.
func (s *Store) clear() {
	s.mu.Lock()
	s.record = nil
	s.mu.Unlock()

	if err := s.storage.Delete(storageKey); err != nil {
		s.logger.Warn("could not remove durable session record", "error", err)
	}
}

// loadDurable reads the raw durable record without installing it.
// Returns nil with no error when no record exists or it cannot be
// parsed — the caller treats both as "nothing to restore" and the
// broken record is discarded.
func (s *Store) loadDurable() *Record {
	var record Record
	if err := s.storage.Read(storageKey, &record); err != nil {
		if err != storage.ErrNotFound {
			s.logger.Warn("discarding unreadable session record", "error", err)
			s.discardDurable()
		}
		return nil
	}
	return &record
}

// discardDurable removes a rejected durable record so the next boot
// does not re-parse it.
func (s *Store) discardDurable() {
	if err := s.storage.Delete(storageKey); err != nil {
		s.logger.Warn("could not remove rejected session record", "error", err)
	}
}
