package brief

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWrite_CreatesBriefingAndStatus(t *testing.T) {
	ws := t.TempDir()

	err := Write(ws, Briefing{
		Task:        "auth/login",
		Issue:       "GH-42",
		Description: "Add the login endpoint",
		Context:     "Sessions live in redis",
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	md, err := ReadTask(ws)
	if err != nil {
		t.Fatalf("ReadTask: %v", err)
	}
	for _, want := range []string{"# Task: auth/login", "GH-42", "Add the login endpoint", "Sessions live in redis", "status.json"} {
		if !strings.Contains(md, want) {
			t.Errorf("briefing missing %q", want)
		}
	}

	status, err := ReadStatus(ws)
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if status == nil || status.Status != StateWorking {
		t.Errorf("expected initial working status, got %+v", status)
	}
}

func TestRender_OmitsEmptySections(t *testing.T) {
	md := Briefing{Task: "api"}.Render()
	if strings.Contains(md, "## Issue") || strings.Contains(md, "## Context") {
		t.Errorf("empty sections rendered:\n%s", md)
	}
	if !strings.Contains(md, "## Constraints") {
		t.Error("constraints always rendered")
	}
}

func TestReadStatus_MissingIsNil(t *testing.T) {
	status, err := ReadStatus(t.TempDir())
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if status != nil {
		t.Errorf("expected nil status, got %+v", status)
	}
}

func TestReadStatus_WorkerUpdate(t *testing.T) {
	ws := t.TempDir()
	if err := Write(ws, Briefing{Task: "api"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Worker reports it is stuck.
	update := Status{Status: StateQuestion, Message: "which auth scheme?", UpdatedAt: time.Now().UTC()}
	data, _ := json.Marshal(update)
	if err := os.WriteFile(filepath.Join(ws, ".wt", "status.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	status, err := ReadStatus(ws)
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if status.Status != StateQuestion {
		t.Errorf("status = %s", status.Status)
	}
	if !status.NeedsAttention() {
		t.Error("question status should need attention")
	}
	if status.Message != "which auth scheme?" {
		t.Errorf("message = %q", status.Message)
	}
}

func TestEnsureIgnored(t *testing.T) {
	ws := t.TempDir()
	if err := os.WriteFile(filepath.Join(ws, ".gitignore"), []byte("node_modules\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Write(ws, Briefing{Task: "api"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(ws, Briefing{Task: "api"}); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(ws, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), ".wt/"); got != 1 {
		t.Errorf("expected .wt/ ignored exactly once, found %d times in %q", got, data)
	}
	if !strings.Contains(string(data), "node_modules") {
		t.Error("existing entries clobbered")
	}
}
