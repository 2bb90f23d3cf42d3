package store

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "clients"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := m.Set(ctx, "clients", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Set(ctx, "clients", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok, err := m.Get(ctx, "clients")
	if err != nil || !ok {
		t.Fatalf("expected key, got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte(`[{"id":"1"}]`)) {
		t.Fatalf("Set did not replace value: %s", v)
	}

	if err := m.Delete(ctx, "clients"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Delete(ctx, "clients"); err != nil {
		t.Fatalf("deleting a missing key should not fail: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "clients"); ok {
		t.Fatalf("key still present after delete")
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("light")
	_ = m.Set(ctx, "theme", in)
	in[0] = 'X'

	out, _, _ := m.Get(ctx, "theme")
	if string(out) != "light" {
		t.Fatalf("store kept caller's buffer: %s", out)
	}
	out[0] = 'Y'

	again, _, _ := m.Get(ctx, "theme")
	if string(again) != "light" {
		t.Fatalf("store handed out internal buffer: %s", again)
	}
}

func TestMemoryKeysSorted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, k := range []string{"services", "clients", "invoices"} {
		_ = m.Set(ctx, k, []byte("[]"))
	}

	keys, err := m.Keys(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"clients", "invoices", "services"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMemory().Set(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
