package model

import "github.com/google/uuid"

// NewSnapshotID produces a fresh identifier for one persisted VSTP state
// snapshot, styled on the snapshot-id-per-write pattern used throughout the
// corpus's database-backed pollers.
func NewSnapshotID() string {
	return uuid.New().String()
}
