// Package registry implements component C3, the location registry: a
// thread-safe store of Locations keyed by their TIPLOC-style identifier,
// with a secondary index from public (CRS-style) code back to the primary
// identifier. Grounded on repository/netex_repository.go's map-plus-
// secondary-index-plus-sync.RWMutex shape.
package registry

import (
	"fmt"
	"sync"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// Locations is the C3 location registry, safe for concurrent use.
type Locations struct {
	mu sync.RWMutex

	byID       map[string]*model.Location
	byPublicID map[string][]string // public code -> primary ids sharing it
}

// New builds an empty Locations registry.
func New() *Locations {
	return &Locations{
		byID:       make(map[string]*model.Location),
		byPublicID: make(map[string][]string),
	}
}

// Insert adds a new location. TD records that arrive for an id not yet
// known are not an error at this layer (spec.md §4.2 leaves referential
// integrity to the caller); Insert simply overwrites like a map write,
// matching TI's "latest wins" semantics for a replayed bulk file.
func (l *Locations) Insert(loc *model.Location) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.put(loc)
}

// Amend replaces an existing location's attributes in place, preserving
// the identity but re-indexing the public code if it changed.
func (l *Locations) Amend(loc *model.Location) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[loc.ID]; !ok {
		return fmt.Errorf("registry: amend of unknown location %q", loc.ID)
	}
	l.put(loc)
	return nil
}

// put is the shared insert/amend body: write-through plus secondary-index
// maintenance, run under the caller's lock.
func (l *Locations) put(loc *model.Location) {
	if old, ok := l.byID[loc.ID]; ok && old.PublicID != "" {
		l.removeFromPublicIndex(old.PublicID, loc.ID)
	}
	l.byID[loc.ID] = loc
	if loc.PublicID != "" {
		l.byPublicID[loc.PublicID] = appendUniqueID(l.byPublicID[loc.PublicID], loc.ID)
	}
}

// Delete removes a location by its primary identifier.
func (l *Locations) Delete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old, ok := l.byID[id]
	if !ok {
		return
	}
	if old.PublicID != "" {
		l.removeFromPublicIndex(old.PublicID, id)
	}
	delete(l.byID, id)
}

// Lookup resolves a primary identifier.
func (l *Locations) Lookup(id string) (*model.Location, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	loc, ok := l.byID[id]
	return loc, ok
}

// LookupByPublicID resolves every location sharing a public (CRS-style)
// code — normally one, but station groups can share a public code across
// several TIPLOCs.
func (l *Locations) LookupByPublicID(publicID string) []*model.Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.byPublicID[publicID]
	out := make([]*model.Location, 0, len(ids))
	for _, id := range ids {
		if loc, ok := l.byID[id]; ok {
			out = append(out, loc)
		}
	}
	return out
}

// Len reports how many locations are currently registered.
func (l *Locations) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

func (l *Locations) removeFromPublicIndex(publicID, id string) {
	ids := l.byPublicID[publicID]
	for i, existing := range ids {
		if existing == id {
			l.byPublicID[publicID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(l.byPublicID[publicID]) == 0 {
		delete(l.byPublicID, publicID)
	}
}

func appendUniqueID(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
