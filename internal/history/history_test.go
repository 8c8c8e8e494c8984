package history

import (
	"path/filepath"
	"testing"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	l, err := OpenAt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecord_AndRecent(t *testing.T) {
	l := testLog(t)

	if err := l.Record("repo1", "api", EventSpawned, "spawned on branch api"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record("repo1", "api", EventMerged, "merged into main"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record("repo2", "other", EventSpawned, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	events, err := l.Recent("repo1", "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for repo1, got %d", len(events))
	}
	// Newest first.
	if events[0].EventType != EventMerged {
		t.Errorf("expected merged first, got %s", events[0].EventType)
	}
}

func TestRecent_FilterByTask(t *testing.T) {
	l := testLog(t)

	l.Record("repo1", "api", EventSpawned, "")
	l.Record("repo1", "auth", EventSpawned, "")
	l.Record("repo1", "auth", EventKilled, "")

	events, err := l.Recent("repo1", "auth", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 auth events, got %d", len(events))
	}
	for _, e := range events {
		if e.Task != "auth" {
			t.Errorf("unexpected task %q in filtered results", e.Task)
		}
	}
}

func TestRecent_Limit(t *testing.T) {
	l := testLog(t)

	for i := 0; i < 10; i++ {
		l.Record("repo1", "api", EventSpawned, "")
	}
	events, err := l.Recent("repo1", "", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
}

func TestRecent_EmptyRepo(t *testing.T) {
	l := testLog(t)

	events, err := l.Recent("nothing", "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
