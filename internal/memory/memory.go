package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cmdsense/internal/appdirs"
)

const storeFileName = "memory.json"

// Event is one analyzed command. Immutable after creation; only the history
// retention trim removes events.
type Event struct {
	Command string `json:"command"`
	Intent  string `json:"intent"`
	Time    int64  `json:"time"`
}

// Rule is a learned correction for one normalized wrong-command key. Correct
// always holds the latest observed correction, not a history of them.
type Rule struct {
	Correct  string `json:"correct"`
	Count    int    `json:"count"`
	LastSeen int64  `json:"last_seen"`
}

// Document is the whole persisted state: one load-mutate-save cycle per
// invocation, no locking. Meta is an open map so keys written by newer
// versions survive a round trip through an older one.
type Document struct {
	History  []Event          `json:"history"`
	Patterns map[string]*Rule `json:"patterns"`
	Meta     map[string]any   `json:"meta"`
}

func NewDocument() Document {
	return Document{
		History:  []Event{},
		Patterns: map[string]*Rule{},
		Meta:     map[string]any{},
	}
}

// Load reads the memory document. A missing or unparseable file yields the
// empty document; only real I/O failures (e.g. permission denied) surface
// as errors.
func Load() (Document, string, error) {
	path, err := appdirs.DataFilePath(storeFileName)
	if err != nil {
		return NewDocument(), "", err
	}
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewDocument(), path, nil
	}
	if err != nil {
		return NewDocument(), "", fmt.Errorf("could not read memory store: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(bytes, &doc); err != nil {
		return NewDocument(), path, nil
	}
	doc.normalize()
	return doc, path, nil
}

// Save persists the document, pretty-printed, via an atomic temp-file
// replace. Failures here are the one fatal error class of the tool: silent
// data loss would be worse than a visible failure.
func Save(path string, doc Document) error {
	doc.normalize()
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode memory store: %w", err)
	}
	if _, err := appdirs.EnsureDataDir(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".cmdsense-memory-*.json")
	if err != nil {
		return fmt.Errorf("could not create temp memory file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}
	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp memory file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp memory file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp memory file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace memory file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure memory file: %w", err)
	}
	return nil
}

func (d *Document) normalize() {
	if d.History == nil {
		d.History = []Event{}
	}
	if d.Patterns == nil {
		d.Patterns = map[string]*Rule{}
	}
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	for key, rule := range d.Patterns {
		if rule == nil || rule.Count < 1 {
			delete(d.Patterns, key)
		}
	}
}

// AppendEvent records one event, most-recent-last, keeping at most limit
// entries in original order.
func (d *Document) AppendEvent(event Event, limit int) {
	d.History = append(d.History, event)
	d.TrimHistory(limit)
}

func (d *Document) TrimHistory(limit int) {
	if limit > 0 && len(d.History) > limit {
		d.History = d.History[len(d.History)-limit:]
	}
}

const lastPruneKey = "last_prune"

// LastPrune returns the epoch seconds of the last pruning pass, 0 when the
// document has never been pruned. JSON decodes numbers as float64, so both
// representations are accepted.
func (d *Document) LastPrune() int64 {
	switch v := d.Meta[lastPruneKey].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (d *Document) SetLastPrune(epoch int64) {
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	d.Meta[lastPruneKey] = epoch
}
