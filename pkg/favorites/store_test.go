package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage with injectable failures.
type memStorage struct {
	mu      sync.Mutex
	ids     []int
	saves   int
	loadErr error
	saveErr error
}

func (m *memStorage) Load(context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]int(nil), m.ids...), nil
}

func (m *memStorage) Save(_ context.Context, ids []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.ids = append([]int(nil), ids...)
	return nil
}

func TestOpen_LoadsPersistedSet(t *testing.T) {
	storage := &memStorage{ids: []int{25, 6, 25, 0, 151}}

	store, err := Open(context.Background(), storage, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []int{25, 6, 151}, store.List(), "duplicates and invalid ids dropped")
	assert.True(t, store.IsFavorite(6))
	assert.False(t, store.IsFavorite(7))
	assert.Equal(t, 0, storage.saves, "loading never writes")
}

func TestOpen_LoadFailureStartsEmpty(t *testing.T) {
	storage := &memStorage{loadErr: errors.New("corrupt")}

	store, err := Open(context.Background(), storage, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, store.List())
	assert.Equal(t, 0, store.Len())
}

func TestOpen_NilStorage(t *testing.T) {
	_, err := Open(context.Background(), nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestStore_ToggleWritesThrough(t *testing.T) {
	storage := &memStorage{}
	store, err := Open(context.Background(), storage, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	fav, err := store.Toggle(ctx, 25)
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = store.Toggle(ctx, 6)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []int{25, 6}, storage.ids)

	fav, err = store.Toggle(ctx, 25)
	require.NoError(t, err)
	assert.False(t, fav)

	assert.Equal(t, []int{6}, store.List())
	assert.Equal(t, []int{6}, storage.ids)
	assert.Equal(t, 3, storage.saves)
}

func TestStore_ToggleSaveFailureKeepsChange(t *testing.T) {
	storage := &memStorage{saveErr: errors.New("disk full")}
	store, err := Open(context.Background(), storage, zerolog.Nop())
	require.NoError(t, err)

	fav, err := store.Toggle(context.Background(), 4)
	require.Error(t, err)
	assert.True(t, fav)
	assert.True(t, store.IsFavorite(4))
}

func TestStore_ToggleInvalidID(t *testing.T) {
	storage := &memStorage{}
	store, err := Open(context.Background(), storage, zerolog.Nop())
	require.NoError(t, err)

	_, err = store.Toggle(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Equal(t, 0, storage.saves)
}

func TestStore_ListIsACopy(t *testing.T) {
	store, err := Open(context.Background(), &memStorage{ids: []int{1, 2}}, zerolog.Nop())
	require.NoError(t, err)

	ids := store.List()
	ids[0] = 99
	assert.Equal(t, []int{1, 2}, store.List())
}

func TestStore_ConcurrentToggles(t *testing.T) {
	storage := &memStorage{}
	store, err := Open(context.Background(), storage, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, _ = store.Toggle(context.Background(), id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
	assert.ElementsMatch(t, store.List(), storage.ids, "last write holds the full set")
}
