package trakt

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileCredentialStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trakt_token.json")
	store := NewFileCredentialStore(path)

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file failed: %v", err)
	}
	if !loaded.Empty() {
		t.Fatalf("expected empty credential, got %#v", loaded)
	}

	cred := Credential{
		AccessToken:      "token",
		RefreshToken:     "refresh",
		TokenType:        "bearer",
		CreatedAt:        1764000000,
		ClientIdentifier: "abc123",
	}
	if err := store.Save(cred); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err = store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cred {
		t.Fatalf("round trip mismatch: %#v", loaded)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat credential: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
		}
	}
}

func TestFileCredentialStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trakt_token.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	if _, err := NewFileCredentialStore(path).Load(); err == nil {
		t.Fatal("expected decode error")
	}
}
