package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Setenv("CMDSENSE_HOME", t.TempDir())

	doc, path, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(doc.History) != 0 || len(doc.Patterns) != 0 {
		t.Fatalf("expected empty document before save")
	}

	doc.AppendEvent(Event{Command: "ls -la", Intent: "Normal system command", Time: 1700000000}, 50)
	doc.Patterns["gti status"] = &Rule{Correct: "git status", Count: 2, LastSeen: 1700000000}
	doc.SetLastPrune(1700000000)

	if err := Save(path, doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	again, _, err := Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(again.History) != 1 || again.History[0].Command != "ls -la" {
		t.Fatalf("unexpected history: %+v", again.History)
	}
	rule, ok := again.Patterns["gti status"]
	if !ok || rule.Correct != "git status" || rule.Count != 2 {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if again.LastPrune() != 1700000000 {
		t.Fatalf("unexpected last prune: %d", again.LastPrune())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected private perms, got %o", info.Mode().Perm())
	}
}

func TestMalformedStoreFallsBackToEmpty(t *testing.T) {
	t.Setenv("CMDSENSE_HOME", t.TempDir())

	_, path, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := Save(path, NewDocument()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	doc, _, err := Load()
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(doc.History) != 0 || len(doc.Patterns) != 0 {
		t.Fatalf("expected empty document after malformed store")
	}
}

func TestHistoryBound(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 75; i++ {
		doc.AppendEvent(Event{Command: fmt.Sprintf("echo %d", i), Intent: "Normal system command", Time: int64(i)}, 50)
	}
	if len(doc.History) != 50 {
		t.Fatalf("expected 50 events, got %d", len(doc.History))
	}
	if doc.History[0].Command != "echo 25" || doc.History[49].Command != "echo 74" {
		t.Fatalf("expected most recent events kept in order, got %q..%q",
			doc.History[0].Command, doc.History[49].Command)
	}
}

func TestMetaPreservesUnknownKeys(t *testing.T) {
	t.Setenv("CMDSENSE_HOME", t.TempDir())

	doc, path, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	doc.Meta["schema_hint"] = "v2"
	doc.SetLastPrune(42)
	if err := Save(path, doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	again, _, err := Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Meta["schema_hint"] != "v2" {
		t.Fatalf("expected unknown meta key preserved, got %v", again.Meta["schema_hint"])
	}
	if again.LastPrune() != 42 {
		t.Fatalf("unexpected last prune: %d", again.LastPrune())
	}
}

func TestNormalizeDropsZeroCountRules(t *testing.T) {
	doc := NewDocument()
	doc.Patterns["sl -la"] = &Rule{Correct: "ls -la", Count: 0, LastSeen: 10}
	doc.Patterns["gti push"] = &Rule{Correct: "git push", Count: 1, LastSeen: 10}
	doc.normalize()
	if _, ok := doc.Patterns["sl -la"]; ok {
		t.Fatalf("expected zero-count rule dropped")
	}
	if _, ok := doc.Patterns["gti push"]; !ok {
		t.Fatalf("expected valid rule kept")
	}
}

func TestLastPruneAcceptsJSONNumbers(t *testing.T) {
	doc := NewDocument()
	doc.Meta["last_prune"] = json.Number("77")
	if doc.LastPrune() != 77 {
		t.Fatalf("unexpected last prune: %d", doc.LastPrune())
	}
	doc.Meta["last_prune"] = float64(88)
	if doc.LastPrune() != 88 {
		t.Fatalf("unexpected last prune: %d", doc.LastPrune())
	}
}
