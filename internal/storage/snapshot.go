// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local session snapshot for skydesk.
//
// The snapshot is the client-side mirror of session state, used as a fallback
// cache when the backend's session list is unavailable. One JSON file per
// user; both read and write are best-effort: a missing or malformed file is
// treated as "no snapshot", and a failed write is logged by the caller, never
// retried.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/util"
)

// snapshotVersion tags the file format. There is no migration logic: a
// version mismatch is treated the same as a parse failure.
const snapshotVersion = 1

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is the persisted shape: the full session list, the active session
// pointer and the counter used for default titles.
type Snapshot struct {
	Version         int              `json:"version"`
	Sessions        []*model.Session `json:"sessions"`
	ActiveSessionID string           `json:"active_session_id"`
	SessionCounter  int              `json:"session_counter"`
}

// Empty reports whether the snapshot holds no sessions.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Sessions) == 0
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// SnapshotStore reads and writes per-user snapshot files.
type SnapshotStore struct {
	// BaseDir is the directory for snapshot files.
	// Default: ~/.skydesk/
	BaseDir string
}

// NewSnapshotStore creates a store rooted in the user's home directory.
func NewSnapshotStore() (*SnapshotStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewSnapshotStoreWithDir(filepath.Join(homeDir, ".skydesk"))
}

// NewSnapshotStoreWithDir creates a store with a custom directory.
func NewSnapshotStoreWithDir(baseDir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &SnapshotStore{BaseDir: baseDir}, nil
}

// filePath returns the snapshot path, scoped per user when signed in.
func (s *SnapshotStore) filePath(userID string) string {
	name := "sessions.json"
	if userID != "" {
		name = "sessions_" + userID + ".json"
	}
	return filepath.Join(s.BaseDir, name)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the snapshot for a user. Absent, unreadable or malformed files
// all return (nil, nil): the caller falls through to server restore or fresh
// session creation. A broken cache must never block startup.
func (s *SnapshotStore) Load(userID string) (*Snapshot, error) {
	data, err := os.ReadFile(s.filePath(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil
	}
	if snap.Version != snapshotVersion {
		return nil, nil
	}

	// Loading state is transient; a snapshot written mid-exchange must not
	// resurrect a stuck spinner.
	for _, session := range snap.Sessions {
		session.IsLoading = false
	}
	return &snap, nil
}

// Save writes the snapshot atomically.
func (s *SnapshotStore) Save(userID string, snap *Snapshot) error {
	snap.Version = snapshotVersion
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.filePath(userID), data, 0644)
}

// Clear removes the snapshot file for a user. Used on logout.
func (s *SnapshotStore) Clear(userID string) error {
	err := os.Remove(s.filePath(userID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
