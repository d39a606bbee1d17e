package overlay

import (
	"fmt"

	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// Finalise is component C9, triggered by the ZZ sentinel (or equivalent
// end-of-stream signal). It flushes the pending-association store (C7)
// first, then the orphan-overlay store (C8), per spec.md §9's explicit
// ordering note: overlays may themselves be targets of associations via
// the replacement recursion, so associations must land first.
func (e *Engine) Finalise(result *railerr.Result) error {
	if err := e.flushPending(result); err != nil {
		return err
	}
	e.flushOrphans(result)
	return nil
}

func (e *Engine) flushPending(result *railerr.Result) error {
	for key, entries := range e.Pending.All() {
		trains, ok := e.Schedule.Trains[key.trainID]
		if !ok || len(trains) == 0 {
			return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
				fmt.Sprintf("finalise: unknown train %q referenced by pending association", key.trainID), nil)
		}
		for _, entry := range entries {
			if !e.attachPendingEntry(trains, key, entry) {
				result.AddWarning("finalise", fmt.Sprintf(
					"pending association for train %q at location %q/%q not attached: no matching route position",
					key.trainID, key.location, key.suffix))
			}
		}
	}
	e.Pending.Clear()
	return nil
}

// attachPendingEntry walks every variant (recursing through replacements)
// of the trains registered for key.trainID, attaching entry.Node to every
// TrainLocation whose (id, suffix) matches and whose owning Train's period
// and days overlap the association's.
func (e *Engine) attachPendingEntry(trains []*model.Train, key pendingKey, entry *PendingEntry) bool {
	attached := false
	var walk func(t *model.Train)
	walk = func(t *model.Train) {
		if len(t.Validity) > 0 && len(entry.Node.Validity) > 0 &&
			applicable(t.Validity[0], t.DaysOfWeek, entry.Node.Validity[0], entry.Node.Days) {
			for _, loc := range t.Route {
				if loc.ID == key.location && loc.IDSuffix == key.suffix {
					attachNode(loc, entry.Category, entry.Node)
					attached = true
				}
			}
		}
		for _, r := range t.Replacements {
			walk(r)
		}
	}
	for _, t := range trains {
		walk(t)
	}
	return attached
}

// attachNode places node into the list (or single-pointer) field on loc
// that corresponds to category.
func attachNode(loc *model.TrainLocation, category model.AssociationCategory, node *model.AssociationNode) {
	switch category {
	case model.Join:
		loc.JoinsTo = append(loc.JoinsTo, node)
	case model.Divide:
		loc.DividesToForm = append(loc.DividesToForm, node)
	case model.Next:
		loc.Becomes = node
	case model.IsJoinedToBy:
		loc.IsJoinedToBy = append(loc.IsJoinedToBy, node)
	case model.DividesFrom:
		loc.DividesFrom = append(loc.DividesFrom, node)
	case model.FormsFrom:
		loc.FormsFrom = node
	}
}

// flushOrphans walks the orphan-overlay store (C8): every replacement
// Train that found no baseline at the time it was created gets one more
// chance now that the full feed has been read, since a baseline inserted
// later in record order may resolve it.
func (e *Engine) flushOrphans(result *railerr.Result) {
	for key, t := range e.Orphans.All() {
		attached := false
		if len(t.Validity) > 0 {
			for _, baseline := range e.Schedule.Trains[key.trainID] {
				if len(baseline.Validity) > 0 && applicable(baseline.Validity[0], baseline.DaysOfWeek, t.Validity[0], t.DaysOfWeek) {
					baseline.Replacements = append(baseline.Replacements, t)
					attached = true
					break
				}
			}
		}
		if attached {
			e.Orphans.DeleteKey(key)
		} else {
			result.AddWarning("finalise", fmt.Sprintf("orphaned replacement train %q remains unattached to any baseline", key.trainID))
		}
	}
}
