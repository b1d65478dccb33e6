package pibox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestLoadFingerprint_PersistsAcrossRestarts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	first, err := LoadFingerprint(dir)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("fingerprint %q is not a UUID", first)
	}

	second, err := LoadFingerprint(dir)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Errorf("fingerprint changed across loads: %q != %q", first, second)
	}
}

func TestLoadFingerprint_ReplacesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fingerprintFile), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	id, err := LoadFingerprint(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("fingerprint %q is not a UUID", id)
	}
}

func TestLoadFingerprint_Ephemeral(t *testing.T) {
	a, _ := LoadFingerprint("")
	b, _ := LoadFingerprint("")
	if a == "" || a == b {
		t.Errorf("ephemeral fingerprints should be fresh UUIDs, got %q and %q", a, b)
	}
}
