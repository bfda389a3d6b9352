package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupLogFileCreatesFile(t *testing.T) {
	dir := t.TempDir()

	f, err := SetupLogFile(dir, 5)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	if _, err := os.Stat(f.Name()); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if matched, _ := filepath.Match("mosaic-*.log", filepath.Base(f.Name())); !matched {
		t.Errorf("log file name %q does not match the expected pattern", filepath.Base(f.Name()))
	}
}

func TestSetupLogFilePrunesOldLogs(t *testing.T) {
	dir := t.TempDir()

	// Seed older files; the timestamped names sort chronologically.
	old := []string{
		"mosaic-2024-01-01T00-00-00.log",
		"mosaic-2024-01-02T00-00-00.log",
		"mosaic-2024-01-03T00-00-00.log",
	}
	for _, name := range old {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "mosaic-*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d log files after pruning, want 2: %v", len(files), files)
	}

	// The oldest seeded files go first; the new file survives.
	for _, name := range old[:2] {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be pruned", name)
		}
	}
	if _, err := os.Stat(f.Name()); err != nil {
		t.Errorf("new log file pruned: %v", err)
	}
}
