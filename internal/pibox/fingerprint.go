package pibox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fingerprintFile = "fingerprint"

// LoadFingerprint returns the device fingerprint stored in stateDir,
// generating and persisting a new one on first use. An empty stateDir
// yields a fingerprint that lives only as long as the process.
func LoadFingerprint(stateDir string) (string, error) {
	if stateDir == "" {
		return uuid.NewString(), nil
	}

	path := filepath.Join(stateDir, fingerprintFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if id, perr := uuid.Parse(strings.TrimSpace(string(data))); perr == nil {
			return id.String(), nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read fingerprint: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write fingerprint: %w", err)
	}
	return id, nil
}
