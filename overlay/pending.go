package overlay

import (
	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// pendingKey is (train-id, location, location-suffix).
type pendingKey struct {
	trainID  string
	location string
	suffix   string
}

// PendingEntry is one queued association awaiting its target train to
// exist (component C7's element type).
type PendingEntry struct {
	Node     *model.AssociationNode
	Category model.AssociationCategory
}

// PendingStore is component C7: associations queued against a
// (train-id, location, location-suffix) triple because the target train's
// route may not yet have been built when the AA record arrived. Entries
// are appended on Insert/Insert and walked (not just appended) on the
// subsequent Amend and Delete cells against the same association, since a
// pending entry may need the same modification a committed one would. The
// Delete/Insert cell is the exception: it removes committed nodes only, so
// a pending entry is not removed by it.
type PendingStore struct {
	entries map[pendingKey][]*PendingEntry
}

// NewPendingStore builds an empty pending-association store.
func NewPendingStore() *PendingStore {
	return &PendingStore{entries: make(map[pendingKey][]*PendingEntry)}
}

// Put queues an association against a (train, location, suffix) triple.
func (p *PendingStore) Put(trainID, location, suffix string, entry *PendingEntry) {
	key := pendingKey{trainID: trainID, location: location, suffix: suffix}
	p.entries[key] = append(p.entries[key], entry)
}

// All returns the full pending map, keyed internally, for the finaliser's
// flush pass.
func (p *PendingStore) All() map[pendingKey][]*PendingEntry {
	return p.entries
}

// Walk visits every pending entry on trainID regardless of location,
// applying fn. Used by Amend/Delete handlers that must reach into the
// pending store (spec.md §4.7: "a record may modify both").
func (p *PendingStore) Walk(trainID string, fn func(key pendingKey, entry *PendingEntry)) {
	for key, entries := range p.entries {
		if key.trainID != trainID {
			continue
		}
		for _, e := range entries {
			fn(key, e)
		}
	}
}

// Clear empties the store (called once the finaliser has flushed it).
func (p *PendingStore) Clear() {
	p.entries = make(map[pendingKey][]*PendingEntry)
}

// Len reports the number of queued (not flattened) entries.
func (p *PendingStore) Len() int {
	n := 0
	for _, entries := range p.entries {
		n += len(entries)
	}
	return n
}
