package trakt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credential holds the access token and protocol metadata returned by the
// device-authorization exchange. It is read once at process start and used
// unmodified for the process lifetime.
type Credential struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
	CreatedAt        int64  `json:"created_at"`
	ClientIdentifier string `json:"client_identifier,omitempty"`
}

// Empty reports whether the credential carries no usable access token.
func (c Credential) Empty() bool {
	return c.AccessToken == ""
}

// IssuedAt returns the credential creation time reported by the service.
func (c Credential) IssuedAt() time.Time {
	if c.CreatedAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.CreatedAt, 0).UTC()
}

// CredentialStore abstracts persistence for the Trakt credential.
type CredentialStore interface {
	Load() (Credential, error)
	Save(Credential) error
}

// FileCredentialStore writes the credential to a JSON file on disk.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore builds a FileCredentialStore rooted at the provided path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Load reads the credential from disk. A missing file resolves to an empty
// credential.
func (s *FileCredentialStore) Load() (Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credential{}, nil
		}
		return Credential{}, fmt.Errorf("read trakt credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("decode trakt credential: %w", err)
	}
	return cred, nil
}

// Save persists the credential to disk with restricted permissions.
func (s *FileCredentialStore) Save(cred Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure credential directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trakt credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write trakt credential: %w", err)
	}
	return nil
}
