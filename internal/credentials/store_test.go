package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStoreAt(zap.NewNop(),
		filepath.Join(dir, ".env"),
		filepath.Join(dir, "refresh.token"))
}

func TestLoad_NothingStored(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	creds, err := tempStore(t).Load()
	require.NoError(t, err, "missing files are not an error")
	assert.Empty(t, creds.ClientID)
	assert.Empty(t, creds.RefreshToken)
}

func TestSaveClient_RoundTrip(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	store := tempStore(t)

	require.NoError(t, store.SaveClient("my-id", "my-secret"))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "my-id", creds.ClientID)
	assert.Equal(t, "my-secret", creds.ClientSecret)
}

func TestLoad_ProcessEnvironmentFallback(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")

	creds, err := tempStore(t).Load()
	require.NoError(t, err)
	assert.Equal(t, "env-id", creds.ClientID)
	assert.Equal(t, "env-secret", creds.ClientSecret)
}

func TestLoad_FilePrecedesEnvironment(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")
	store := tempStore(t)

	require.NoError(t, store.SaveClient("file-id", "file-secret"))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "file-id", creds.ClientID)
}

func TestSaveRefreshToken_RoundTrip(t *testing.T) {
	store := tempStore(t)

	require.NoError(t, store.SaveRefreshToken("tok-123"))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", creds.RefreshToken, "trailing newline must be trimmed")

	info, err := os.Stat(store.tokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
