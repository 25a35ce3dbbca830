package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func setupTestTiered(t *testing.T) *Tiered {
	t.Helper()

	svc := setupTestService(t)
	mem := newTestMemory(t)
	return NewTiered(mem, svc)
}

func TestTiered_SetWritesBothLayers(t *testing.T) {
	tc := setupTestTiered(t)
	ctx := context.Background()

	tc.Set(ctx, BookDetailKey(1), []byte("payload"), time.Minute)

	if _, ok := tc.mem.Get(ctx, BookDetailKey(1)); !ok {
		t.Error("Set should populate the memory tier")
	}
	if _, ok := tc.svc.Get(ctx, BookDetailKey(1)); !ok {
		t.Error("Set should populate Redis")
	}
}

func TestTiered_Get_PromotesFromRedis(t *testing.T) {
	tc := setupTestTiered(t)
	ctx := context.Background()

	// Populate Redis only.
	tc.svc.Set(ctx, BookDetailKey(2), []byte("payload"), time.Minute)

	v, ok := tc.Get(ctx, BookDetailKey(2))
	if !ok || string(v) != "payload" {
		t.Fatalf("Expected redis hit through tiered cache, got (%s, %v)", v, ok)
	}

	if _, ok := tc.mem.Get(ctx, BookDetailKey(2)); !ok {
		t.Error("Redis hit should be promoted into memory")
	}
}

func TestTiered_Delete_RemovesBothLayers(t *testing.T) {
	tc := setupTestTiered(t)
	ctx := context.Background()

	tc.Set(ctx, RecommendationsKey(1), []byte("payload"), time.Minute)
	if err := tc.Delete(ctx, RecommendationsKey(1)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok := tc.Get(ctx, RecommendationsKey(1)); ok {
		t.Error("Expected miss after delete")
	}
}

func TestTiered_Clear(t *testing.T) {
	tc := setupTestTiered(t)
	ctx := context.Background()

	tc.Set(ctx, BooksListKey(), []byte("payload"), time.Minute)
	if err := tc.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, ok := tc.Get(ctx, BooksListKey()); ok {
		t.Error("Expected miss after clear")
	}
}

func TestTiered_GetOrCompute_DeduplicatesLoads(t *testing.T) {
	tc := setupTestTiered(t)
	ctx := context.Background()

	var mu sync.Mutex
	loads := 0
	loader := func(context.Context) ([]byte, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		time.Sleep(50 * time.Millisecond)
		return []byte("computed"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, _, err := tc.GetOrCompute(ctx, RecommendationsKey(7), time.Minute, loader)
			if err != nil || string(data) != "computed" {
				t.Errorf("GetOrCompute = (%s, %v)", data, err)
			}
		}()
	}
	wg.Wait()

	if loads != 1 {
		t.Errorf("Concurrent lookups should share one load, got %d", loads)
	}
}
