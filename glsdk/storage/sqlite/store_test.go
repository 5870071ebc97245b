package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glsdk.db")

	store, err := Open(path)
	require.NoError(t, err)

	_, exists, err := store.Get("displayLogs")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set("displayLogs", "1"))
	require.NoError(t, store.Set("displayLogs", "0"))
	require.NoError(t, store.Append("localTelemetry", "a;"))
	require.NoError(t, store.Append("localTelemetry", "b;"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, exists, err := reopened.Get("displayLogs")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "0", value)

	value, _, err = reopened.Get("localTelemetry")
	require.NoError(t, err)
	assert.Equal(t, "a;b;", value)

	require.NoError(t, reopened.Delete("localTelemetry"))
	_, exists, err = reopened.Get("localTelemetry")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreClosed(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, _, err = store.Get("x")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Set("x", "y"), storage.ErrStorageClosed)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
