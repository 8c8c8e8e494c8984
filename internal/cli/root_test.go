package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amiller68/wt/internal/deps"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{store.ErrTaskNotFound, 2},
		{store.ErrEpicNotFound, 2},
		{store.ErrDuplicateTask, 3},
		{git.ErrWorkspaceExists, 3},
		{session.ErrWindowExists, 3},
		{git.ErrUncommittedChanges, 4},
		{git.ErrMergeConflict, 5},
		{deps.ErrDependencyCycle, 6},
		{session.ErrSessionUnavailable, 7},
		{store.ErrStoreCorrupt, 8},
		{git.ErrNotARepo, 9},
		{errors.New("anything else"), 1},
	}
	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Errorf("ExitCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}

	// Wrapped sentinels still map.
	wrapped := fmt.Errorf("merge %q: %w", "api", git.ErrMergeConflict)
	if got := ExitCode(wrapped); got != 5 {
		t.Errorf("ExitCode(wrapped conflict) = %d, want 5", got)
	}
}
