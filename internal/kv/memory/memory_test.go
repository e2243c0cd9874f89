package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/kv"
)

var _ kv.Store = (*Store)(nil)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", v, ok, err)
	}

	// returned slice is a copy
	v[0] = 'X'
	v2, _, _ := s.Get(ctx, "k")
	if string(v2) != "v1" {
		t.Fatalf("stored value mutated: %q", v2)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected key removed")
	}
	// deleting a missing key is not an error
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
