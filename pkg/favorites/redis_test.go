//go:build integration

package favorites

import (
	"context"
	"testing"

	"github.com/Sternrassler/catalog-explorer/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage_RoundTrip(t *testing.T) {
	client := testutil.StartRedis(t)
	ctx := context.Background()
	storage := NewRedisStorage(client, "")

	ids, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	store, err := Open(ctx, storage, zerolog.Nop())
	require.NoError(t, err)
	_, err = store.Toggle(ctx, 25)
	require.NoError(t, err)
	_, err = store.Toggle(ctx, 133)
	require.NoError(t, err)

	raw, err := client.Get(ctx, DefaultKey).Result()
	require.NoError(t, err)
	assert.JSONEq(t, `[25,133]`, raw)

	reopened, err := Open(ctx, NewRedisStorage(client, DefaultKey), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []int{25, 133}, reopened.List())
}

func TestRedisStorage_CorruptValueStartsEmpty(t *testing.T) {
	client := testutil.StartRedis(t)
	ctx := context.Background()
	require.NoError(t, client.Set(ctx, DefaultKey, "oops", 0).Err())

	store, err := Open(ctx, NewRedisStorage(client, ""), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, store.List())
}
