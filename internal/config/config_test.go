package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCarriesLearningConstants(t *testing.T) {
	cfg := Default()
	if cfg.Advisor.DecayHalfLifeSeconds != 604800 {
		t.Fatalf("unexpected half life: %d", cfg.Advisor.DecayHalfLifeSeconds)
	}
	if cfg.Advisor.MinConfidence != 0.4 {
		t.Fatalf("unexpected confidence floor: %g", cfg.Advisor.MinConfidence)
	}
	if cfg.Advisor.PruneIntervalSeconds != 86400 {
		t.Fatalf("unexpected prune interval: %d", cfg.Advisor.PruneIntervalSeconds)
	}
	if cfg.Advisor.SimilarityThreshold != 0.75 {
		t.Fatalf("unexpected similarity threshold: %g", cfg.Advisor.SimilarityThreshold)
	}
	if cfg.Advisor.HistoryLimit != 50 {
		t.Fatalf("unexpected history limit: %d", cfg.Advisor.HistoryLimit)
	}
	if len(cfg.Safety.DangerPatterns) == 0 || len(cfg.Safety.CriticalPaths) == 0 {
		t.Fatalf("expected safety lists to be populated")
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	t.Setenv("CMDSENSE_HOME", t.TempDir())

	cfg, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Advisor.HistoryLimit != 50 {
		t.Fatalf("unexpected history limit: %d", cfg.Advisor.HistoryLimit)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file created: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected private perms, got %o", info.Mode().Perm())
	}

	again, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Advisor.SimilarityThreshold != cfg.Advisor.SimilarityThreshold {
		t.Fatalf("reload changed settings")
	}
}

func TestNormalizeBackfillsZeroValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CMDSENSE_HOME", home)

	partial := `version = 1

[advisor]
min_confidence = 0.5
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(partial), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Advisor.MinConfidence != 0.5 {
		t.Fatalf("expected explicit floor kept, got %g", cfg.Advisor.MinConfidence)
	}
	if cfg.Advisor.DecayHalfLifeSeconds != 604800 {
		t.Fatalf("expected default half life backfilled, got %d", cfg.Advisor.DecayHalfLifeSeconds)
	}
	if cfg.UI.Backend != "auto" {
		t.Fatalf("expected default ui backend, got %q", cfg.UI.Backend)
	}
}

func TestNormalizeRejectsBogusBackend(t *testing.T) {
	cfg := Default()
	cfg.UI.Backend = "ncurses"
	cfg.normalize()
	if cfg.UI.Backend != "auto" {
		t.Fatalf("expected fallback backend, got %q", cfg.UI.Backend)
	}
}
