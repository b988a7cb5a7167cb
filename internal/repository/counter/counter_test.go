package counter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStores_Contract runs the same expectations against every backend.
func TestStores_Contract(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{KindFile, KindSQLite} {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "counters."+kind)

			store, err := Open(ctx, kind, path)
			require.NoError(t, err)

			value, err := store.ReadCounter(ctx, "long_snooze_count")
			require.NoError(t, err)
			require.Zero(t, value)

			require.NoError(t, store.WriteCounter(ctx, "long_snooze_count", 2))
			require.NoError(t, store.WriteCounter(ctx, "long_snooze_stamp", 1792393200))
			require.NoError(t, store.WriteCounter(ctx, "long_snooze_count", 1))
			require.NoError(t, store.Close())

			// Values survive reopening.
			reopened, err := Open(ctx, kind, path)
			require.NoError(t, err)

			defer func() {
				_ = reopened.Close()
			}()

			value, err = reopened.ReadCounter(ctx, "long_snooze_count")
			require.NoError(t, err)
			require.Equal(t, 1, value)

			value, err = reopened.ReadCounter(ctx, "long_snooze_stamp")
			require.NoError(t, err)
			require.Equal(t, 1792393200, value)
		})
	}
}

// TestFileRepository_Corrupt reports a decode error instead of a zero value.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counters.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), filePermissions))

	_, err := NewFileRepository(path).ReadCounter(context.Background(), "long_snooze_count")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"long_snooze_count": 1.5}`), filePermissions))

	_, err = NewFileRepository(path).ReadCounter(context.Background(), "long_snooze_count")
	require.ErrorIs(t, err, errNotInteger)
}

// TestFileRepository_Format checks the document is plain JSON with numeric values.
func TestFileRepository_Format(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counters.json")
	repo := NewFileRepository(path)

	require.NoError(t, repo.WriteCounter(context.Background(), "long_snooze_count", 2))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"long_snooze_count": 2}`, string(contents))

	_, err = os.Stat(path + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestOpen_UnknownKind rejects unsupported backends.
func TestOpen_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "etcd", "x")
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = OpenSQLite(context.Background(), " ")
	require.ErrorIs(t, err, errPathRequired)
}
