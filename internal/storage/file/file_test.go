package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/save"
	"github.com/cory-johannsen/aviary/internal/storage/file"
)

func TestBackend_PutGetDelete(t *testing.T) {
	dir := t.TempDir()
	b, err := file.New(filepath.Join(dir, "saves"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.Get(ctx, "main")
	assert.ErrorIs(t, err, save.ErrSlotNotFound)

	require.NoError(t, b.Put(ctx, "main", []byte(`{"a":1}`)))
	require.NoError(t, b.Put(ctx, "main", []byte(`{"a":2}`)))
	got, err := b.Get(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "saves"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "main.json", entries[0].Name())

	require.NoError(t, b.Delete(ctx, "main"))
	require.NoError(t, b.Delete(ctx, "main"))
	_, err = b.Get(ctx, "main")
	assert.ErrorIs(t, err, save.ErrSlotNotFound)
}

func TestBackend_RejectsPathSlots(t *testing.T) {
	b, err := file.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	for _, slot := range []string{"", "../escape", "a/b", "dot.name"} {
		assert.Error(t, b.Put(ctx, slot, []byte("x")), slot)
		_, err := b.Get(ctx, slot)
		assert.Error(t, err, slot)
	}
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := file.New("")
	assert.Error(t, err)
}

func TestBackend_WithStore(t *testing.T) {
	b, err := file.New(t.TempDir())
	require.NoError(t, err)
	store := save.NewStore(b, balance.Default(), zaptest.NewLogger(t))
	ctx := context.Background()
	st, err := store.Load(ctx, "main")
	require.NoError(t, err)
	st.Wallet.Coins = 42
	require.NoError(t, store.Save(ctx, "main", st))
	loaded, err := store.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Wallet.Coins)
}
