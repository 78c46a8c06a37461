package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/aviary/internal/config"
	"github.com/cory-johannsen/aviary/internal/storage/postgres"
	"github.com/cory-johannsen/aviary/internal/testutil"
)

func TestNewPool_InvalidDSN(t *testing.T) {
	_, err := postgres.NewPool(context.Background(), config.DatabaseConfig{Host: "bad host", Port: -1})
	assert.Error(t, err)
}

func TestPool_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	require.NoError(t, pc.Pool.Health(context.Background(), 5*time.Second))
}

func TestPool_SchemaReady(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	assert.ErrorIs(t, pc.Pool.SchemaReady(context.Background()), postgres.ErrSchemaMissing)
	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.SchemaReady(context.Background()))

	saves := pc.Pool.Saves()
	require.NoError(t, saves.Put(context.Background(), "main", []byte(`{}`)))
	slots, err := saves.Slots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, slots)
}
