// Package credentials persists OAuth credentials across runs: the
// application client id/secret in a .env file and the refresh token in
// its own file, mirroring how the account-level secret and the per-user
// grant have different lifetimes.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

const (
	// Environment keys read from the process environment or the .env file.
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"

	defaultEnvPath   = ".env"
	defaultTokenPath = "refresh.token"
)

// FileStore is the file-based credential store.
type FileStore struct {
	logger    *zap.Logger
	envPath   string
	tokenPath string
}

// NewFileStore creates a store using the default file locations in the
// working directory.
func NewFileStore(logger *zap.Logger) *FileStore {
	return NewFileStoreAt(logger, defaultEnvPath, defaultTokenPath)
}

// NewFileStoreAt creates a store with explicit file locations.
func NewFileStoreAt(logger *zap.Logger, envPath, tokenPath string) *FileStore {
	return &FileStore{logger: logger, envPath: envPath, tokenPath: tokenPath}
}

// Load reads whatever credentials exist. Missing files are not errors:
// the id/secret may come from the process environment, and a missing
// refresh token just means authorization has not happened yet.
func (f *FileStore) Load() (domain.Credentials, error) {
	var creds domain.Credentials

	env, err := godotenv.Read(f.envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return creds, fmt.Errorf("read %s: %w", f.envPath, err)
	}

	creds.ClientID = firstNonEmpty(env[EnvClientID], os.Getenv(EnvClientID))
	creds.ClientSecret = firstNonEmpty(env[EnvClientSecret], os.Getenv(EnvClientSecret))

	raw, err := os.ReadFile(f.tokenPath)
	switch {
	case err == nil:
		creds.RefreshToken = strings.TrimSpace(string(raw))
	case errors.Is(err, os.ErrNotExist):
		f.logger.Debug("No refresh token file yet", zap.String("path", f.tokenPath))
	default:
		return creds, fmt.Errorf("read %s: %w", f.tokenPath, err)
	}

	return creds, nil
}

// SaveClient persists the client id and secret to the .env file.
func (f *FileStore) SaveClient(id, secret string) error {
	env, err := godotenv.Read(f.envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", f.envPath, err)
	}
	if env == nil {
		env = make(map[string]string)
	}
	env[EnvClientID] = id
	env[EnvClientSecret] = secret

	if err := godotenv.Write(env, f.envPath); err != nil {
		return fmt.Errorf("write %s: %w", f.envPath, err)
	}
	f.logger.Info("Client credentials saved", zap.String("path", f.envPath))
	return nil
}

// SaveRefreshToken persists the refresh token with owner-only permissions.
func (f *FileStore) SaveRefreshToken(token string) error {
	if err := os.WriteFile(f.tokenPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", f.tokenPath, err)
	}
	f.logger.Info("Refresh token saved", zap.String("path", f.tokenPath))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
