package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Epic documents live beside the spawn documents, one file per epic, grouped
// by repository identity. They follow the same lock and rename discipline.

func (s *Store) epicDir() string {
	return filepath.Join(s.baseDir, "epics", s.repoID)
}

func (s *Store) epicPath(epicID string) string {
	return filepath.Join(s.epicDir(), epicID+".json")
}

func (s *Store) epicLockPath(epicID string) string {
	return filepath.Join(s.epicDir(), epicID+".lock")
}

// CreateEpic persists a new epic document. Fails with ErrDuplicateEpic if a
// document for the ID already exists.
func (s *Store) CreateEpic(epic Epic) error {
	unlock, err := lockFile(s.epicLockPath(epic.ID))
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(s.epicPath(epic.ID)); err == nil {
		return fmt.Errorf("%w: %q", ErrDuplicateEpic, epic.ID)
	}
	now := time.Now().UTC()
	if epic.Created.IsZero() {
		epic.Created = now
	}
	epic.LastUpdated = now
	return writeAtomic(s.epicPath(epic.ID), &epic)
}

// LoadEpic reads an epic document by ID.
func (s *Store) LoadEpic(epicID string) (*Epic, error) {
	data, err := os.ReadFile(s.epicPath(epicID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrEpicNotFound, epicID)
		}
		return nil, fmt.Errorf("read epic: %w", err)
	}
	var epic Epic
	if err := json.Unmarshal(data, &epic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, s.epicPath(epicID), err)
	}
	return &epic, nil
}

// MutateEpic runs fn over the epic document inside its lock and persists the
// result, refreshing LastUpdated.
func (s *Store) MutateEpic(epicID string, fn func(*Epic) error) error {
	unlock, err := lockFile(s.epicLockPath(epicID))
	if err != nil {
		return err
	}
	defer unlock()

	epic, err := s.LoadEpic(epicID)
	if err != nil {
		return err
	}
	if err := fn(epic); err != nil {
		return err
	}
	epic.LastUpdated = time.Now().UTC()
	return writeAtomic(s.epicPath(epicID), epic)
}

// DeleteEpic removes the epic document and its lock file.
func (s *Store) DeleteEpic(epicID string) error {
	if err := os.Remove(s.epicPath(epicID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrEpicNotFound, epicID)
		}
		return fmt.Errorf("remove epic: %w", err)
	}
	os.Remove(s.epicLockPath(epicID))
	return nil
}

// ListEpics returns the IDs of all epics recorded for this repository.
func (s *Store) ListEpics() ([]string, error) {
	entries, err := os.ReadDir(s.epicDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list epics: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}
