package appdirs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBaseDirUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CMDSENSE_HOME", "")

	base, err := BaseDir()
	if err != nil {
		t.Fatalf("base dir failed: %v", err)
	}
	if base != filepath.Join(home, "linux_ai") {
		t.Fatalf("unexpected base dir: %q", base)
	}
}

func TestOverrideWins(t *testing.T) {
	override := t.TempDir()
	t.Setenv("CMDSENSE_HOME", override)

	base, err := BaseDir()
	if err != nil {
		t.Fatalf("base dir failed: %v", err)
	}
	if base != override {
		t.Fatalf("expected override %q, got %q", override, base)
	}

	memoryPath, err := DataFilePath("memory.json")
	if err != nil {
		t.Fatalf("data file path failed: %v", err)
	}
	if memoryPath != filepath.Join(override, "data", "memory.json") {
		t.Fatalf("unexpected memory path: %q", memoryPath)
	}

	cfgPath, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.HasSuffix(cfgPath, "config.toml") {
		t.Fatalf("unexpected config path: %q", cfgPath)
	}
}

func TestEnsureDataDirCreatesPrivateDir(t *testing.T) {
	override := t.TempDir()
	t.Setenv("CMDSENSE_HOME", override)

	dir, err := EnsureDataDir()
	if err != nil {
		t.Fatalf("ensure data dir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected private perms, got %o", info.Mode().Perm())
	}
}
