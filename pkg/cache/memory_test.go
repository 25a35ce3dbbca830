package cache

import (
	"context"
	"testing"
	"time"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()

	mem, err := NewMemory(100)
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	t.Cleanup(mem.Close)
	return mem
}

func TestMemory_SetAndGet(t *testing.T) {
	mem := newTestMemory(t)
	ctx := context.Background()

	mem.Set(ctx, "book:detail:1", []byte("payload"), time.Minute)

	v, ok := mem.Get(ctx, "book:detail:1")
	if !ok {
		t.Fatal("Expected memory hit")
	}
	if string(v) != "payload" {
		t.Errorf("Unexpected value: %s", v)
	}
}

func TestMemory_Get_Miss(t *testing.T) {
	mem := newTestMemory(t)

	if _, ok := mem.Get(context.Background(), "missing"); ok {
		t.Error("Expected miss for unknown key")
	}
}

func TestMemory_Expiry(t *testing.T) {
	mem := newTestMemory(t)
	ctx := context.Background()

	mem.Set(ctx, "book:detail:2", []byte("payload"), 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if _, ok := mem.Get(ctx, "book:detail:2"); ok {
		t.Error("Expected miss after TTL expiry")
	}
}

func TestMemory_Delete(t *testing.T) {
	mem := newTestMemory(t)
	ctx := context.Background()

	mem.Set(ctx, "book:detail:3", []byte("payload"), time.Minute)
	mem.Delete(ctx, "book:detail:3")

	if _, ok := mem.Get(ctx, "book:detail:3"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestMemory_ValueIsolation(t *testing.T) {
	mem := newTestMemory(t)
	ctx := context.Background()

	src := []byte("original")
	mem.Set(ctx, "k", src, time.Minute)
	src[0] = 'X'

	v, ok := mem.Get(ctx, "k")
	if !ok {
		t.Fatal("Expected hit")
	}
	if string(v) != "original" {
		t.Errorf("Stored value should not alias caller's slice, got %s", v)
	}

	// Mutating the returned slice must not poison the cache either.
	v[0] = 'Y'
	v2, _ := mem.Get(ctx, "k")
	if string(v2) != "original" {
		t.Errorf("Returned value should be a copy, got %s", v2)
	}
}
