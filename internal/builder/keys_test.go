package builder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDeveloperKeysFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.pub")
	if err := os.WriteFile(path, []byte("ssh-ed25519 AAAA dev@host\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	keys, err := LoadDeveloperKeys(path)
	if err != nil {
		t.Fatalf("LoadDeveloperKeys: %v", err)
	}
	if keys != "ssh-ed25519 AAAA dev@host\n" {
		t.Fatalf("keys = %q", keys)
	}
}

// An explicit path wins over the environment variable.
func TestLoadDeveloperKeysPathPriority(t *testing.T) {
	t.Setenv(devKeysEnv, "ssh-rsa ENV env@host")

	path := filepath.Join(t.TempDir(), "keys.pub")
	if err := os.WriteFile(path, []byte("ssh-ed25519 FILE dev@host"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	keys, err := LoadDeveloperKeys(path)
	if err != nil {
		t.Fatalf("LoadDeveloperKeys: %v", err)
	}
	if keys != "ssh-ed25519 FILE dev@host" {
		t.Fatalf("keys = %q, path did not take priority", keys)
	}
}

func TestLoadDeveloperKeysFromEnv(t *testing.T) {
	t.Setenv(devKeysEnv, "ssh-rsa ENV env@host")

	keys, err := LoadDeveloperKeys("")
	if err != nil {
		t.Fatalf("LoadDeveloperKeys: %v", err)
	}
	if keys != "ssh-rsa ENV env@host" {
		t.Fatalf("keys = %q", keys)
	}
}

func TestLoadDeveloperKeysNone(t *testing.T) {
	t.Setenv(devKeysEnv, "")

	keys, err := LoadDeveloperKeys("")
	if err != nil {
		t.Fatalf("LoadDeveloperKeys: %v", err)
	}
	if keys != "" {
		t.Fatalf("keys = %q, want empty", keys)
	}
}

func TestLoadDeveloperKeysBadPath(t *testing.T) {
	_, err := LoadDeveloperKeys(filepath.Join(t.TempDir(), "missing.pub"))
	if !errors.Is(err, ErrDeveloperKeys) {
		t.Fatalf("err = %v, want ErrDeveloperKeys", err)
	}
}

func TestLoadDeveloperKeysDirectory(t *testing.T) {
	_, err := LoadDeveloperKeys(t.TempDir())
	if !errors.Is(err, ErrDeveloperKeys) {
		t.Fatalf("err = %v, want ErrDeveloperKeys", err)
	}
}
