// Package store implements Purple Titanium's Persistence Store: the
// save/load/exists/invalidate contract a Scheduler uses for cross-run
// memoization, plus two concrete backends behind that one interface — a
// default one-file-per-signature filesystem backend, and an embedded
// go.etcd.io/bbolt backend for deployments that would rather ship one
// cache file.
package store

import "context"

// Format tags the payload encoding inside a persisted entry.
type Format uint8

const (
	// FormatJSON marks a transparent, human-inspectable payload.
	FormatJSON Format = 0
	// FormatOpaque marks an opaque binary payload the caller encoded
	// itself (e.g. gob, protobuf) and which the store never interprets.
	FormatOpaque Format = 1
)

// Entry is one persisted task result.
type Entry struct {
	TaskName string
	Format   Format
	Payload  []byte
}

// Store is the interface the Scheduler's persistence layer depends on.
// Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, signatureHex string, e Entry) error
	Load(ctx context.Context, signatureHex string) (Entry, error)
	Exists(ctx context.Context, signatureHex string) (bool, error)
	Invalidate(ctx context.Context, signatureHex string) error

	// Signatures lists every signature currently persisted, for CLI
	// introspection (`titanium store stats`/`gc`) and watch-mode cache
	// revalidation. Order is unspecified.
	Signatures(ctx context.Context) ([]string, error)
}
