package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestBoltStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bolt")
	s, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	want := Entry{TaskName: "add", Format: FormatOpaque, Payload: []byte{0x01, 0x02, 0x03}}
	if err := s.Save(ctx, "sig", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "sig")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TaskName != want.TaskName || got.Format != want.Format {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestBoltStore_InvalidateRemovesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bolt")
	s, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Save(ctx, "sig", Entry{TaskName: "t", Payload: []byte("x")})
	if err := s.Invalidate(ctx, "sig"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if ok, _ := s.Exists(ctx, "sig"); ok {
		t.Fatalf("expected entry to be gone")
	}
}

func TestBoltStore_SignaturesListsEveryEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bolt")
	s, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Save(ctx, "sigA", Entry{TaskName: "a", Payload: []byte("x")})
	_ = s.Save(ctx, "sigB", Entry{TaskName: "b", Payload: []byte("y")})

	sigs, err := s.Signatures(ctx)
	if err != nil {
		t.Fatalf("signatures: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %v", sigs)
	}
}
