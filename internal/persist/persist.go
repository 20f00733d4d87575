// Package persist stores complete ledger snapshots in PostgreSQL. The
// application holds the working snapshot in memory; this layer only loads it
// at startup and writes the whole thing back on the debounced sync, so the
// contract is deliberately coarse: one Load, one Save, no per-record
// operations.
package persist

import (
	"context"
	"time"

	"oilhub/internal/store"
)

// SnapshotStore loads and saves whole snapshot revisions.
type SnapshotStore interface {
	// Load reads every collection and returns a normalized snapshot.
	Load(ctx context.Context) (*store.Snapshot, error)

	// Save atomically replaces the stored state with the given snapshot.
	Save(ctx context.Context, s *store.Snapshot) error
}

// User is a login account. Admin rights are decided per snapshot (the
// admin username list lives in the ledger), not here.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore provides login account lookup and creation.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
}
