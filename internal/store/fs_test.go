package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFSStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir)
	ctx := context.Background()

	want := Entry{TaskName: "add", Format: FormatJSON, Payload: []byte(`{"result":3}`)}
	if err := s.Save(ctx, "deadbeefcafef00d", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, "deadbeefcafef00d")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TaskName != want.TaskName || got.Format != want.Format || string(got.Payload) != string(want.Payload) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestFSStore_ExistsAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir)
	ctx := context.Background()

	if ok, _ := s.Exists(ctx, "abc123"); ok {
		t.Fatalf("expected no entry before save")
	}
	_ = s.Save(ctx, "abc123", Entry{TaskName: "t", Payload: []byte("x")})
	if ok, _ := s.Exists(ctx, "abc123"); !ok {
		t.Fatalf("expected entry to exist after save")
	}
	if err := s.Invalidate(ctx, "abc123"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if ok, _ := s.Exists(ctx, "abc123"); ok {
		t.Fatalf("expected entry to be gone after invalidate")
	}
}

func TestFSStore_CorruptPayloadDetected(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir)
	ctx := context.Background()

	_ = s.Save(ctx, "sig1", Entry{TaskName: "t", Payload: []byte("original")})

	// Flip a byte in the payload region, after the header, to simulate
	// on-disk corruption.
	path := filepath.Join(dir, "sig1.bin")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := s.Load(ctx, "sig1"); err == nil {
		t.Fatalf("expected a CacheCorruptionError for a flipped payload byte")
	}
}

func TestFSStore_MissingEntryIsAStorageError(t *testing.T) {
	s := NewFSStore(t.TempDir())
	if _, err := s.Load(context.Background(), "nope"); err == nil {
		t.Fatalf("expected an error loading a missing entry")
	}
}

func TestFSStore_SignaturesListsEveryEntry(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir)
	ctx := context.Background()

	if sigs, err := s.Signatures(ctx); err != nil || len(sigs) != 0 {
		t.Fatalf("expected empty cache, got %v err %v", sigs, err)
	}

	_ = s.Save(ctx, "sigA", Entry{TaskName: "a", Payload: []byte("x")})
	_ = s.Save(ctx, "sigB", Entry{TaskName: "b", Payload: []byte("y")})

	sigs, err := s.Signatures(ctx)
	if err != nil {
		t.Fatalf("signatures: %v", err)
	}
	got := map[string]bool{}
	for _, s := range sigs {
		got[s] = true
	}
	if !got["sigA"] || !got["sigB"] || len(got) != 2 {
		t.Fatalf("unexpected signature set: %v", sigs)
	}
}
