package overlay

import (
	"time"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// orphanKey is a (train-id, validity-begin) pair. Begin is keyed by its
// RFC3339 rendering rather than the time.Time value directly — time.Time
// carries a monotonic reading that breaks struct-key equality even for two
// instants that represent the same wall-clock moment.
type orphanKey struct {
	trainID string
	begin   string
}

func newOrphanKey(trainID string, begin time.Time) orphanKey {
	return orphanKey{trainID: trainID, begin: begin.Format(time.RFC3339)}
}

// OrphanStore is component C8: STP replacement Trains created before any
// baseline variant exists to attach them to. ApplyBasicSchedule returns
// the orphaned replacement itself, so the train assembler builds route
// records (LO/LI/LT/CR) onto it without looking the store up; the
// finaliser (C9) resolves or reports every entry still present at
// end-of-stream.
type OrphanStore struct {
	entries map[orphanKey]*model.Train
}

// NewOrphanStore builds an empty orphan-overlay store.
func NewOrphanStore() *OrphanStore {
	return &OrphanStore{entries: make(map[orphanKey]*model.Train)}
}

// Put records an orphaned replacement.
func (o *OrphanStore) Put(trainID string, begin time.Time, t *model.Train) {
	o.entries[newOrphanKey(trainID, begin)] = t
}

// Get resolves a (train-id, begin) pair without removing it.
func (o *OrphanStore) Get(trainID string, begin time.Time) (*model.Train, bool) {
	t, ok := o.entries[newOrphanKey(trainID, begin)]
	return t, ok
}

// Delete removes a resolved orphan entry.
func (o *OrphanStore) Delete(trainID string, begin time.Time) {
	delete(o.entries, newOrphanKey(trainID, begin))
}

// DeleteKey removes a resolved orphan entry by its internal key, for
// callers (the finaliser) already iterating All().
func (o *OrphanStore) DeleteKey(key orphanKey) {
	delete(o.entries, key)
}

// Len reports how many orphans are outstanding.
func (o *OrphanStore) Len() int { return len(o.entries) }

// All returns every outstanding orphan, for the finaliser to walk.
func (o *OrphanStore) All() map[orphanKey]*model.Train {
	return o.entries
}
