// Package store persists spawned tasks and epics as JSON documents, one per
// repository identity. Documents live under the user config directory so
// distinct repositories never collide, and every mutation is a locked
// read-modify-write followed by an atomic rename, so a crash mid-write can
// never leave a half-written document behind.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors surfaced by store operations. Callers match with errors.Is.
var (
	ErrDuplicateTask = errors.New("task already exists")
	ErrTaskNotFound  = errors.New("task not found")
	ErrDuplicateEpic = errors.New("epic already exists")
	ErrEpicNotFound  = errors.New("epic not found")
	// ErrStoreCorrupt means a persisted document failed to parse. It is
	// always surfaced rather than silently treated as an empty store.
	ErrStoreCorrupt = errors.New("state document is corrupt")
	// ErrInvalidTransition means a status update tried to move a task
	// backward in its lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store manages the task and epic documents for one repository.
type Store struct {
	baseDir string // e.g. ~/.config/wt
	repoID  string
}

// RepoID derives the stable identity for a repository from its absolute path.
func RepoID(repoRoot string) string {
	sum := sha256.Sum256([]byte(repoRoot))
	return hex.EncodeToString(sum[:])[:12]
}

// New creates a store rooted at the user config directory.
func New(repoRoot string) (*Store, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config directory: %w", err)
	}
	return NewAt(filepath.Join(cfgDir, "wt"), repoRoot), nil
}

// NewAt creates a store rooted at an explicit base directory.
func NewAt(baseDir, repoRoot string) *Store {
	return &Store{baseDir: baseDir, repoID: RepoID(repoRoot)}
}

// RepoID returns the repository identity this store is keyed by.
func (s *Store) RepoID() string {
	return s.repoID
}

// document is the on-disk shape of the per-repository spawn state.
type document struct {
	Tasks []Task `json:"tasks"`
}

func (s *Store) spawnDir() string {
	return filepath.Join(s.baseDir, "spawned")
}

func (s *Store) docPath() string {
	return filepath.Join(s.spawnDir(), s.repoID+".json")
}

func (s *Store) lockPath() string {
	return filepath.Join(s.spawnDir(), s.repoID+".lock")
}

// load reads the task document. A missing file is an empty store; a file
// that fails to parse is ErrStoreCorrupt.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.docPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, s.docPath(), err)
	}
	return &doc, nil
}

// save atomically replaces the task document. An empty document deletes the
// file so the last unregister leaves nothing behind.
func (s *Store) save(doc *document) error {
	if len(doc.Tasks) == 0 {
		if err := os.Remove(s.docPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove state: %w", err)
		}
		return nil
	}
	return writeAtomic(s.docPath(), doc)
}

// writeAtomic marshals v and replaces path via write-temp-then-rename.
func writeAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// mutate runs fn over the document inside the advisory lock, then persists
// the result. Concurrent invocations serialize on the lock; a racing loser
// re-reads fresh state, so updates are last-writer-wins but never torn.
func (s *Store) mutate(fn func(*document) error) error {
	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// Register adds a new task. Fails with ErrDuplicateTask if the name is taken.
func (s *Store) Register(task Task) error {
	return s.mutate(func(doc *document) error {
		for _, t := range doc.Tasks {
			if t.Name == task.Name {
				return fmt.Errorf("%w: %q", ErrDuplicateTask, task.Name)
			}
		}
		doc.Tasks = append(doc.Tasks, task)
		return nil
	})
}

// UpdateStatus advances a task's status. Status only moves forward, so a
// racing invocation that lost cannot drag a completed task back to life.
func (s *Store) UpdateStatus(name string, status TaskStatus) error {
	return s.mutate(func(doc *document) error {
		t := findTask(doc, name)
		if t == nil {
			return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
		}
		if !t.Status.CanAdvanceTo(status) {
			return fmt.Errorf("%w: %q %s -> %s", ErrInvalidTransition, name, t.Status, status)
		}
		t.Status = status
		return nil
	})
}

// SetWindowRef records the window handle for a task.
func (s *Store) SetWindowRef(name, ref string) error {
	return s.mutate(func(doc *document) error {
		t := findTask(doc, name)
		if t == nil {
			return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
		}
		t.WindowRef = ref
		return nil
	})
}

// ClearWindowRef removes the window handle after the window is destroyed.
func (s *Store) ClearWindowRef(name string) error {
	return s.mutate(func(doc *document) error {
		t := findTask(doc, name)
		if t == nil {
			return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
		}
		t.WindowRef = ""
		return nil
	})
}

// Unregister removes a task. Fails with ErrTaskNotFound if absent.
func (s *Store) Unregister(name string) error {
	return s.mutate(func(doc *document) error {
		for i, t := range doc.Tasks {
			if t.Name == name {
				doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	})
}

// Get returns a single task by name.
func (s *Store) Get(name string) (*Task, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if t := findTask(doc, name); t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, name)
}

// List returns all tasks in declaration order.
func (s *Store) List() ([]Task, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

func findTask(doc *document, name string) *Task {
	for i := range doc.Tasks {
		if doc.Tasks[i].Name == name {
			return &doc.Tasks[i]
		}
	}
	return nil
}
