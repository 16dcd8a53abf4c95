package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

func TestMemory_GetMiss(t *testing.T) {
	store := NewMemory()

	detail, err := store.Get(context.Background(), 25)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() error = %v, want ErrCacheMiss", err)
	}
	if detail != nil {
		t.Errorf("Get() detail = %v, want nil", detail)
	}
}

func TestMemory_SetAndGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	want := &catalog.EntityDetail{ID: 25, Name: "pikachu", Types: []string{"electric"}}
	if err := store.Set(ctx, 25, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, 25)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "pikachu" {
		t.Errorf("Name = %q, want pikachu", got.Name)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemory_FirstWriteWins(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_ = store.Set(ctx, 6, &catalog.EntityDetail{ID: 6, Name: "charizard"})
	_ = store.Set(ctx, 6, &catalog.EntityDetail{ID: 6, Name: "overwritten"})

	got, err := store.Get(ctx, 6)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "charizard" {
		t.Errorf("Name = %q, want first write to be kept", got.Name)
	}
}

func TestMemory_SetNil(t *testing.T) {
	if err := NewMemory().Set(context.Background(), 1, nil); err == nil {
		t.Error("Set(nil) should fail")
	}
}

func TestMemory_ConcurrentWriters(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := i%10 + 1
			_ = store.Set(ctx, id, &catalog.EntityDetail{ID: id})
			_, _ = store.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	if store.Len() != 10 {
		t.Errorf("Len() = %d, want 10", store.Len())
	}
}
