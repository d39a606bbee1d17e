package model

import "time"

// Schedule is the in-memory database of locations and trains for one feed
// namespace (component C1). It exclusively owns every Location, Train, and
// (transitively) every TrainLocation and AssociationNode reachable from
// them.
type Schedule struct {
	Namespace string
	TheirID   string // provider-assigned identifier, empty if none supplied

	ValidBegin  *time.Time
	ValidEnd    *time.Time
	LastUpdated *time.Time

	Locations map[string]*Location // keyed by internal 7-char id

	// Trains holds every temporal variant of a service, keyed by train id.
	// Variants are distinguished by (Source, Validity[0].Begin) per
	// spec.md §3 invariant 2.
	Trains map[string][]*Train

	// PublicIDIndex and LocationIndex are secondary lookups filled only by
	// IndexTrain; the overlay engine does not call it, so they are not kept
	// in step with Trains and are not authoritative storage.
	PublicIDIndex map[string][]string // public train id -> train ids
	LocationIndex map[string][]string // location id -> train ids calling there

	// PublicLocationIndex has the shape Location.PublicID -> {location id}
	// of the registry's set-valued inverse index (C3); registry.Locations
	// keeps its own index and does not fill this one.
	PublicLocationIndex map[string]map[string]struct{}
}

// NewSchedule constructs an empty Schedule for namespace ns.
func NewSchedule(ns string) *Schedule {
	return &Schedule{
		Namespace:           ns,
		Locations:           make(map[string]*Location),
		Trains:              make(map[string][]*Train),
		PublicIDIndex:       make(map[string][]string),
		LocationIndex:       make(map[string][]string),
		PublicLocationIndex: make(map[string]map[string]struct{}),
	}
}

// IndexTrain records train t under the schedule's secondary indices. It
// does not insert t into Trains — callers (the overlay engine) own that.
func (s *Schedule) IndexTrain(t *Train) {
	if t.VariableTrain.PublicID != "" {
		s.PublicIDIndex[t.VariableTrain.PublicID] = appendUnique(s.PublicIDIndex[t.VariableTrain.PublicID], t.ID)
	}
	for _, loc := range t.Route {
		s.LocationIndex[loc.ID] = appendUnique(s.LocationIndex[loc.ID], t.ID)
	}
}

func appendUnique(ss []string, v string) []string {
	for _, s := range ss {
		if s == v {
			return ss
		}
	}
	return append(ss, v)
}
