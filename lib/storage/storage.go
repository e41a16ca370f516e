// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// envelopeVersion is bumped when the on-disk layout changes. A
// mismatched version is treated the same as a corrupt record.
const envelopeVersion = 1

// ErrNotFound is returned by Read when no record exists for the key.
var ErrNotFound = errors.New("storage: record not found")

// envelope wraps every persisted value with a format version.
type envelope struct {
	Version int             `json:"version"`
	Value   json.RawMessage `json:"value"`
}

// Store reads and writes keyed JSON records under a state directory.
type Store struct {
	directory string
}

// New creates a Store rooted at the given directory. The directory is
// created on first write, not here, so a read-only boot (no session
// yet) never touches the filesystem.
func New(directory string) *Store {
	return &Store{directory: directory}
}

// Path returns the file backing the given key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.directory, key+".json")
}

// Read unmarshals the record for key into value. Returns ErrNotFound
// when no record exists, or a descriptive error when the record is
// unreadable or fails envelope validation. Callers decide whether a
// corrupt record is fatal — for session and environment records it
// never is; they degrade to their safe defaults.
func (s *Store) Read(key string, value any) error {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: reading %s: %w", path, err)
	}

	var record envelope
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("storage: parsing %s: %w", path, err)
	}
	if record.Version != envelopeVersion {
		return fmt.Errorf("storage: %s has envelope version %d, want %d", path, record.Version, envelopeVersion)
	}

	if err := json.Unmarshal(record.Value, value); err != nil {
		return fmt.Errorf("storage: decoding %s value: %w", path, err)
	}
	return nil
}

// Write persists value under key. Creates the state directory with
// mode 0700 if needed; the record file is written with mode 0600
// since it may contain access tokens.
func (s *Store) Write(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encoding %s: %w", key, err)
	}

	data, err := json.MarshalIndent(envelope{Version: envelopeVersion, Value: encoded}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encoding %s envelope: %w", key, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.directory, 0700); err != nil {
		return fmt.Errorf("storage: creating state directory %s: %w", s.directory, err)
	}

	path := s.Path(key)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("storage: writing %s: %w", path, err)
	}
	return nil
}

// Delete removes the record for key. Deleting a missing record is not
// an error.
func (s *Store) Delete(key string) error {
	path := s.Path(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing %s: %w", path, err)
	}
	return nil
}
