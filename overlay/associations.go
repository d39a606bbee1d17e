package overlay

import (
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/railtimetable/calendar"
	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// ApplyAssociation applies one AA record's outer-modification x
// STP-modification matrix over association nodes (spec.md §4.6), mirroring
// every mutation onto the reverse side (the other referenced train) with
// day-diff-shifted days/dates and the reversed category.
func (e *Engine) ApplyAssociation(rec cif.AssociationRecord, source model.TrainSource) error {
	switch rec.Modification {
	case model.Insert:
		switch rec.STPModification {
		case model.Insert:
			return e.assocInsertInsert(rec, source)
		case model.Amend:
			return e.assocInsertAmend(rec, source)
		case model.Delete:
			return e.assocInsertDelete(rec)
		}
	case model.Amend:
		switch rec.STPModification {
		case model.Insert:
			return e.assocAmendInsert(rec)
		case model.Amend:
			return e.assocAmendAmend(rec, source)
		case model.Delete:
			return e.assocAmendDelete(rec)
		}
	case model.Delete:
		switch rec.STPModification {
		case model.Insert:
			return e.assocDeleteInsert(rec)
		case model.Amend:
			return e.assocDeleteAmend(rec)
		case model.Delete:
			return e.assocDeleteDelete(rec)
		}
	}
	return fmt.Errorf("overlay: unreachable association modification combination %v/%v", rec.Modification, rec.STPModification)
}

// buildPair constructs the forward node (attached to the main train, at
// the association's shared location and main-side suffix, pointing at the
// other train) and the reverse node (attached to the other train, with
// day-diff-shifted validity and days, pointing back at the main train).
func buildPair(rec cif.AssociationRecord, source model.TrainSource) (forward, reverse *model.AssociationNode) {
	fwdSrc, revSrc := source, source
	forward = &model.AssociationNode{
		OtherTrainID:               rec.OtherTrainID,
		OtherTrainLocationIDSuffix: rec.OtherSuffix,
		Validity:                   []model.ValidityPeriod{{Begin: rec.Begin, End: rec.End}},
		Days:                       rec.Days,
		DayDiff:                    rec.DayDiff,
		ForPassengers:              rec.ForPassengers,
		Source:                     &fwdSrc,
	}
	reverse = &model.AssociationNode{
		OtherTrainID:               rec.MainTrainID,
		OtherTrainLocationIDSuffix: rec.MainSuffix,
		Validity: []model.ValidityPeriod{{
			Begin: calendar.ShiftDate(rec.Begin, rec.DayDiff),
			End:   calendar.ShiftDate(rec.End, rec.DayDiff),
		}},
		Days:          calendar.ShiftDays(rec.Days, -rec.DayDiff),
		DayDiff:       -rec.DayDiff,
		ForPassengers: rec.ForPassengers,
		Source:        &revSrc,
	}
	return forward, reverse
}

// assocInsertInsert queues both the forward and reverse nodes into the
// pending store (C7) — attachment to an actual Route position happens only
// at finalisation, since the target train's route may not exist yet.
func (e *Engine) assocInsertInsert(rec cif.AssociationRecord, source model.TrainSource) error {
	forward, reverse := buildPair(rec, source)
	reverseCategory := rec.Category.Reverse()

	e.Pending.Put(rec.MainTrainID, rec.Location, rec.MainSuffix, &PendingEntry{Node: forward, Category: rec.Category})
	e.Pending.Put(rec.OtherTrainID, rec.Location, rec.OtherSuffix, &PendingEntry{Node: reverse, Category: reverseCategory})
	return nil
}

// findCommittedNodes walks every variant (and, recursively, every
// replacement) of trainID's trains, collecting association nodes attached
// anywhere on its route that point at (otherTrainID, otherSuffix).
func (e *Engine) findCommittedNodes(trainID, otherTrainID, otherSuffix string) []*model.AssociationNode {
	var out []*model.AssociationNode
	var walkTrain func(t *model.Train)
	walkTrain = func(t *model.Train) {
		for _, loc := range t.Route {
			out = append(out, matchingNodes(loc, otherTrainID, otherSuffix)...)
		}
		for _, repl := range t.Replacements {
			walkTrain(repl)
		}
	}
	for _, t := range e.Schedule.Trains[trainID] {
		walkTrain(t)
	}
	return out
}

func matchingNodes(loc *model.TrainLocation, otherTrainID, otherSuffix string) []*model.AssociationNode {
	var out []*model.AssociationNode
	consider := func(n *model.AssociationNode) {
		if n != nil && n.OtherTrainID == otherTrainID && n.OtherTrainLocationIDSuffix == otherSuffix {
			out = append(out, n)
		}
	}
	for _, n := range loc.DividesToForm {
		consider(n)
	}
	for _, n := range loc.JoinsTo {
		consider(n)
	}
	consider(loc.Becomes)
	for _, n := range loc.DividesFrom {
		consider(n)
	}
	for _, n := range loc.IsJoinedToBy {
		consider(n)
	}
	consider(loc.FormsFrom)
	return out
}

// pendingNodesFor collects queued (not yet attached) nodes on trainID
// pointing at (otherTrainID, otherSuffix), regardless of which location key
// they were queued under.
func (e *Engine) pendingNodesFor(trainID, otherTrainID, otherSuffix string) []*model.AssociationNode {
	var out []*model.AssociationNode
	e.Pending.Walk(trainID, func(_ pendingKey, entry *PendingEntry) {
		if entry.Node.OtherTrainID == otherTrainID && entry.Node.OtherTrainLocationIDSuffix == otherSuffix {
			out = append(out, entry.Node)
		}
	})
	return out
}

// candidatesFor is findCommittedNodes plus pendingNodesFor, the full
// "committed trains and pending store" search spec.md §4.6 describes for
// Insert/Amend and Insert/Delete.
func (e *Engine) candidatesFor(trainID, otherTrainID, otherSuffix string) []*model.AssociationNode {
	out := e.findCommittedNodes(trainID, otherTrainID, otherSuffix)
	return append(out, e.pendingNodesFor(trainID, otherTrainID, otherSuffix)...)
}

// assocInsertAmend is an STP replacement: attach the forward/reverse nodes
// as Replacements on every applicable baseline found on either side
// (spec.md §4.6 names no fallback for the no-baseline case, unlike the
// train overlay's orphan store — a replacement with nothing to attach to
// is simply dropped).
func (e *Engine) assocInsertAmend(rec cif.AssociationRecord, source model.TrainSource) error {
	forward, reverse := buildPair(rec, source)

	mainPeriod := forward.Validity[0]
	for _, baseline := range e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix) {
		if len(baseline.Validity) > 0 && applicable(baseline.Validity[0], baseline.Days, mainPeriod, rec.Days) {
			baseline.Replacements = append(baseline.Replacements, forward)
		}
	}

	reversePeriod := reverse.Validity[0]
	reverseDays := reverse.Days
	for _, baseline := range e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix) {
		if len(baseline.Validity) > 0 && applicable(baseline.Validity[0], baseline.Days, reversePeriod, reverseDays) {
			baseline.Replacements = append(baseline.Replacements, reverse)
		}
	}
	return nil
}

// assocInsertDelete is an STP-cancel: append a cancellation to every
// applicable baseline on both sides.
func (e *Engine) assocInsertDelete(rec cif.AssociationRecord) error {
	period := model.ValidityPeriod{Begin: rec.Begin, End: rec.End}
	for _, baseline := range e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix) {
		if len(baseline.Validity) > 0 && applicable(baseline.Validity[0], baseline.Days, period, rec.Days) {
			baseline.Cancellations = append(baseline.Cancellations, model.AssociationCancellation{Period: period, Days: rec.Days})
		}
	}

	reversePeriod := model.ValidityPeriod{
		Begin: calendar.ShiftDate(rec.Begin, rec.DayDiff),
		End:   calendar.ShiftDate(rec.End, rec.DayDiff),
	}
	reverseDays := calendar.ShiftDays(rec.Days, -rec.DayDiff)
	for _, baseline := range e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix) {
		if len(baseline.Validity) > 0 && applicable(baseline.Validity[0], baseline.Days, reversePeriod, reverseDays) {
			baseline.Cancellations = append(baseline.Cancellations, model.AssociationCancellation{Period: reversePeriod, Days: reverseDays})
		}
	}
	return nil
}

func (e *Engine) assocAmendInsert(rec cif.AssociationRecord) error {
	var mainNode, otherNode *model.AssociationNode
	for _, n := range e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix) {
		if n.Source != nil && sameSource(*n.Source, rec.IsSTP) && len(n.Validity) > 0 && n.Validity[0].Begin.Equal(rec.Begin) {
			mainNode = n
			break
		}
	}
	reverseBegin := calendar.ShiftDate(rec.Begin, rec.DayDiff)
	for _, n := range e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix) {
		if n.Source != nil && sameSource(*n.Source, rec.IsSTP) && len(n.Validity) > 0 && n.Validity[0].Begin.Equal(reverseBegin) {
			otherNode = n
			break
		}
	}
	if mainNode == nil || otherNode == nil {
		return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
			fmt.Sprintf("association amend/insert: no baseline between %q and %q at %s", rec.MainTrainID, rec.OtherTrainID, rec.Begin), nil)
	}

	mainNode.Validity = []model.ValidityPeriod{{Begin: rec.Begin, End: rec.End}}
	mainNode.Days = rec.Days
	mainNode.DayDiff = rec.DayDiff
	mainNode.ForPassengers = rec.ForPassengers

	otherNode.Validity = []model.ValidityPeriod{{Begin: reverseBegin, End: calendar.ShiftDate(rec.End, rec.DayDiff)}}
	otherNode.Days = calendar.ShiftDays(rec.Days, -rec.DayDiff)
	otherNode.DayDiff = -rec.DayDiff
	otherNode.ForPassengers = rec.ForPassengers
	return nil
}

func (e *Engine) assocAmendAmend(rec cif.AssociationRecord, source model.TrainSource) error {
	forward, reverse := buildPair(rec, source)
	found := false
	for _, baseline := range e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix) {
		for i, repl := range baseline.Replacements {
			if len(repl.Validity) > 0 && repl.Validity[0].Begin.Equal(rec.Begin) {
				baseline.Replacements[i] = forward
				found = true
			}
		}
	}
	reverseBegin := calendar.ShiftDate(rec.Begin, rec.DayDiff)
	for _, baseline := range e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix) {
		for i, repl := range baseline.Replacements {
			if len(repl.Validity) > 0 && repl.Validity[0].Begin.Equal(reverseBegin) {
				baseline.Replacements[i] = reverse
			}
		}
	}
	if !found {
		return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
			fmt.Sprintf("association amend/amend: no replacement between %q and %q at %s", rec.MainTrainID, rec.OtherTrainID, rec.Begin), nil)
	}
	return nil
}

func (e *Engine) assocAmendDelete(rec cif.AssociationRecord) error {
	period := model.ValidityPeriod{Begin: rec.Begin, End: rec.End}
	reverseBegin := calendar.ShiftDate(rec.Begin, rec.DayDiff)
	reversePeriod := model.ValidityPeriod{Begin: reverseBegin, End: calendar.ShiftDate(rec.End, rec.DayDiff)}
	reverseDays := calendar.ShiftDays(rec.Days, -rec.DayDiff)

	found := false
	for _, baseline := range e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix) {
		for i, c := range baseline.Cancellations {
			if c.Period.Begin.Equal(rec.Begin) {
				baseline.Cancellations[i] = model.AssociationCancellation{Period: period, Days: rec.Days}
				found = true
			}
		}
	}
	for _, baseline := range e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix) {
		for i, c := range baseline.Cancellations {
			if c.Period.Begin.Equal(reverseBegin) {
				baseline.Cancellations[i] = model.AssociationCancellation{Period: reversePeriod, Days: reverseDays}
			}
		}
	}

	if !found {
		e.Log.Debug().
			Str("main_train_id", rec.MainTrainID).
			Str("other_train_id", rec.OtherTrainID).
			Msg("association amend/delete: no matching cancellation to overwrite, silently accepted")
	}
	return nil
}

func (e *Engine) assocDeleteInsert(rec cif.AssociationRecord) error {
	reverseBegin := calendar.ShiftDate(rec.Begin, rec.DayDiff)
	removedMain := removeNodeByIdentity(e.Schedule, rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix, rec.Begin, rec.IsSTP)
	removedOther := removeNodeByIdentity(e.Schedule, rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix, reverseBegin, rec.IsSTP)
	if !removedMain && !removedOther {
		return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
			fmt.Sprintf("association delete/insert: no baseline between %q and %q at %s", rec.MainTrainID, rec.OtherTrainID, rec.Begin), nil)
	}
	return nil
}

func (e *Engine) assocDeleteAmend(rec cif.AssociationRecord) error {
	reverseBegin := calendar.ShiftDate(rec.Begin, rec.DayDiff)
	removedMain := removeReplacementByBegin(e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix), rec.Begin)
	removeReplacementByBegin(e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix), reverseBegin)
	if !removedMain {
		e.Log.Debug().
			Str("main_train_id", rec.MainTrainID).
			Str("other_train_id", rec.OtherTrainID).
			Msg("association delete/amend: no matching replacement to remove, silently accepted")
	}
	return nil
}

func (e *Engine) assocDeleteDelete(rec cif.AssociationRecord) error {
	removedMain := removeCancellationByBegin(e.candidatesFor(rec.MainTrainID, rec.OtherTrainID, rec.OtherSuffix), rec.Begin)
	reverseBegin := calendar.ShiftDate(rec.Begin, rec.DayDiff)
	removeCancellationByBegin(e.candidatesFor(rec.OtherTrainID, rec.MainTrainID, rec.MainSuffix), reverseBegin)
	if !removedMain {
		return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
			fmt.Sprintf("association delete/delete: no cancellation between %q and %q at %s", rec.MainTrainID, rec.OtherTrainID, rec.Begin), nil)
	}
	return nil
}

// removeNodeByIdentity deletes a committed node matching (other-train-id,
// other-location-suffix, source, begin) from wherever it sits on trainID's
// route.
func removeNodeByIdentity(sched *model.Schedule, trainID, otherTrainID, otherSuffix string, begin time.Time, isSTP bool) bool {
	removed := false
	var walk func(tr *model.Train)
	walk = func(tr *model.Train) {
		for _, loc := range tr.Route {
			removed = removeFromLocation(loc, otherTrainID, otherSuffix, begin, isSTP) || removed
		}
		for _, r := range tr.Replacements {
			walk(r)
		}
	}
	for _, t := range sched.Trains[trainID] {
		walk(t)
	}
	return removed
}

func removeFromLocation(loc *model.TrainLocation, otherTrainID, otherSuffix string, begin time.Time, isSTP bool) bool {
	removed := false
	matches := func(n *model.AssociationNode) bool {
		if n == nil || n.OtherTrainID != otherTrainID || n.OtherTrainLocationIDSuffix != otherSuffix {
			return false
		}
		if n.Source == nil || !sameSource(*n.Source, isSTP) {
			return false
		}
		return len(n.Validity) > 0 && n.Validity[0].Begin.Equal(begin)
	}
	filterSlice := func(nodes []*model.AssociationNode) []*model.AssociationNode {
		out := nodes[:0]
		for _, n := range nodes {
			if matches(n) {
				removed = true
				continue
			}
			out = append(out, n)
		}
		return out
	}
	loc.DividesToForm = filterSlice(loc.DividesToForm)
	loc.JoinsTo = filterSlice(loc.JoinsTo)
	loc.DividesFrom = filterSlice(loc.DividesFrom)
	loc.IsJoinedToBy = filterSlice(loc.IsJoinedToBy)
	if loc.Becomes != nil && matches(loc.Becomes) {
		loc.Becomes = nil
		removed = true
	}
	if loc.FormsFrom != nil && matches(loc.FormsFrom) {
		loc.FormsFrom = nil
		removed = true
	}
	return removed
}

func removeReplacementByBegin(candidates []*model.AssociationNode, begin time.Time) bool {
	removed := false
	for _, baseline := range candidates {
		kept := baseline.Replacements[:0]
		for _, r := range baseline.Replacements {
			if len(r.Validity) > 0 && r.Validity[0].Begin.Equal(begin) {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		baseline.Replacements = kept
	}
	return removed
}

func removeCancellationByBegin(candidates []*model.AssociationNode, begin time.Time) bool {
	removed := false
	for _, baseline := range candidates {
		kept := baseline.Cancellations[:0]
		for _, c := range baseline.Cancellations {
			if c.Period.Begin.Equal(begin) {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		baseline.Cancellations = kept
	}
	return removed
}
