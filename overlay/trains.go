// Package overlay implements the overlay-merging engine: the train overlay
// matrix (C5), the association engine (C6), the pending-association and
// orphan-overlay stores (C7/C8), and the finaliser (C9). Grounded on
// original_source/src/nr_importer.rs's read_basic_schedule/read_association
// match arms, restructured from Rust's inline match into Go functions per
// outer-modification value, styled on the teacher's producer package for
// its one-concern-per-file organisation.
package overlay

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// Engine bundles the overlay state that outlives any one record: the
// schedule under construction, the pending-association store (C7), the
// orphan-overlay store (C8), and a logger for the one documented
// ambiguous-success case (spec.md §9).
type Engine struct {
	Schedule *model.Schedule
	Pending  *PendingStore
	Orphans  *OrphanStore
	Log      zerolog.Logger
}

// NewEngine builds an Engine over an existing schedule.
func NewEngine(sched *model.Schedule, log zerolog.Logger) *Engine {
	return &Engine{
		Schedule: sched,
		Pending:  NewPendingStore(),
		Orphans:  NewOrphanStore(),
		Log:      log,
	}
}

// ApplyBasicSchedule applies one BS record's nine-cell outer-modification
// x STP-modification matrix (spec.md §4.4) and returns the Train the
// assembler should now treat as "under construction" (last_train).
func (e *Engine) ApplyBasicSchedule(rec cif.BasicScheduleRecord, source model.TrainSource) (*model.Train, error) {
	switch rec.Modification {
	case model.Insert:
		switch rec.STPModification {
		case model.Insert:
			return e.insertInsert(rec, source)
		case model.Amend:
			return e.insertAmend(rec, source)
		case model.Delete:
			return e.insertDelete(rec)
		}
	case model.Amend:
		switch rec.STPModification {
		case model.Insert:
			return e.amendInsert(rec)
		case model.Amend:
			return e.amendAmend(rec, source)
		case model.Delete:
			return e.amendDelete(rec)
		}
	case model.Delete:
		switch rec.STPModification {
		case model.Insert:
			return nil, e.deleteInsert(rec)
		case model.Amend:
			return nil, e.deleteAmend(rec)
		case model.Delete:
			return nil, e.deleteDelete(rec)
		}
	}
	return nil, fmt.Errorf("overlay: unreachable modification combination %v/%v", rec.Modification, rec.STPModification)
}

// buildTrain constructs a fresh Train from a BS record, with an empty
// Route ready to be filled by LO/LI/LT.
func buildTrain(rec cif.BasicScheduleRecord, source model.TrainSource) *model.Train {
	src := source
	return &model.Train{
		ID: rec.TrainID,
		Validity: []model.ValidityPeriod{
			{Begin: rec.Begin, End: rec.End},
		},
		DaysOfWeek:     rec.Days,
		VariableTrain:  buildVariableTrain(rec),
		Source:         &src,
		RunsAsRequired: rec.RunsAsRequired,
		Status:         rec.Status,
	}
}

func buildVariableTrain(rec cif.BasicScheduleRecord) model.VariableTrain {
	vt := model.VariableTrain{
		TrainType:                rec.TrainType,
		PublicID:                 rec.PublicID,
		Headcode:                 rec.Headcode,
		ServiceGroup:             rec.ServiceGroup,
		PowerType:                rec.Power,
		TimingSpeedMPerS:         rec.Speed,
		OperatingCharacteristics: rec.OperatingChars,
		CarriesVehicles:          rec.TrainType.IsCarCarrier(),
		Reservations:             rec.Reservations,
		Catering:                 rec.Catering,
		Brand:                    rec.Brand,
	}
	if rec.PowerDesc != "" {
		vt.TimingAllocation = &model.TrainAllocation{Description: rec.PowerDesc}
	}
	vt.HasFirstClassSeats, vt.HasSecondClassSeats = cif.ClassesToBools(rec.SeatingClass)
	vt.HasFirstClassSleepers, vt.HasSecondClassSleepers = cif.ClassesToBools(rec.SleeperClass)
	return vt
}

// applicable implements spec.md §4.4's applicability test: date-range
// overlap and day-of-week intersection, both required.
func applicable(period model.ValidityPeriod, days model.DaysOfWeek, candidatePeriod model.ValidityPeriod, candidateDays model.DaysOfWeek) bool {
	return period.Overlaps(candidatePeriod) && days.Intersects(candidateDays)
}

// insertInsert is outer=Insert, stp=Insert: append a wholly new Train
// baseline variant.
func (e *Engine) insertInsert(rec cif.BasicScheduleRecord, source model.TrainSource) (*model.Train, error) {
	t := buildTrain(rec, source)
	e.Schedule.Trains[rec.TrainID] = append(e.Schedule.Trains[rec.TrainID], t)
	return t, nil
}

// insertAmend is outer=Insert, stp=Amend: create an STP replacement,
// attaching it to the overlapping baseline if one exists, else parking it
// in the orphan-overlay store (C8).
func (e *Engine) insertAmend(rec cif.BasicScheduleRecord, source model.TrainSource) (*model.Train, error) {
	t := buildTrain(rec, source)
	period := t.Validity[0]

	for _, baseline := range e.Schedule.Trains[rec.TrainID] {
		if len(baseline.Validity) == 0 {
			continue
		}
		if applicable(baseline.Validity[0], baseline.DaysOfWeek, period, rec.Days) {
			baseline.Replacements = append(baseline.Replacements, t)
			return t, nil
		}
	}

	e.Orphans.Put(rec.TrainID, rec.Begin, t)
	return t, nil
}

// insertDelete is outer=Insert, stp=Delete (an STP cancellation): append a
// (period, days) cancellation to every applicable baseline variant.
func (e *Engine) insertDelete(rec cif.BasicScheduleRecord) (*model.Train, error) {
	period := model.ValidityPeriod{Begin: rec.Begin, End: rec.End}
	var last *model.Train
	for _, baseline := range e.Schedule.Trains[rec.TrainID] {
		if len(baseline.Validity) == 0 {
			continue
		}
		if applicable(baseline.Validity[0], baseline.DaysOfWeek, period, rec.Days) {
			baseline.Cancellations = append(baseline.Cancellations, model.AssociationCancellation{
				Period: period, Days: rec.Days,
			})
			last = baseline
		}
	}
	return last, nil
}

// findBaselineBySource locates a top-level Train variant by (is-stp,
// validity begin) — the identity spec.md §4.4 names for Amend/Insert.
func findBaselineBySource(trains []*model.Train, begin time.Time, isSTP bool) *model.Train {
	for _, t := range trains {
		if len(t.Validity) == 0 || t.Source == nil {
			continue
		}
		if sameSource(*t.Source, isSTP) && t.Validity[0].Begin.Equal(begin) {
			return t
		}
	}
	return nil
}

func sameSource(src model.TrainSource, isSTP bool) bool {
	if isSTP {
		return src != model.LongTerm
	}
	return src == model.LongTerm
}

// amendInsert is outer=Amend, stp=Insert: overwrite validity/days/variable
// attributes on the matching baseline and reset its route.
func (e *Engine) amendInsert(rec cif.BasicScheduleRecord) (*model.Train, error) {
	baseline := findBaselineBySource(e.Schedule.Trains[rec.TrainID], rec.Begin, rec.IsSTP)
	if baseline == nil {
		return nil, railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
			fmt.Sprintf("amend/insert: no baseline train %q at %s", rec.TrainID, rec.Begin), nil)
	}
	baseline.Validity = []model.ValidityPeriod{{Begin: rec.Begin, End: rec.End}}
	baseline.DaysOfWeek = rec.Days
	baseline.RunsAsRequired = rec.RunsAsRequired
	baseline.VariableTrain = buildVariableTrain(rec)
	baseline.Status = rec.Status
	baseline.Route = nil
	return baseline, nil
}

// amendAmend is outer=Amend, stp=Amend: overwrite the matching replacement
// (by validity begin) wherever it sits within the train's baselines.
func (e *Engine) amendAmend(rec cif.BasicScheduleRecord, source model.TrainSource) (*model.Train, error) {
	for _, baseline := range e.Schedule.Trains[rec.TrainID] {
		for i, repl := range baseline.Replacements {
			if len(repl.Validity) > 0 && repl.Validity[0].Begin.Equal(rec.Begin) {
				updated := buildTrain(rec, source)
				baseline.Replacements[i] = updated
				return updated, nil
			}
		}
	}
	return nil, railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
		fmt.Sprintf("amend/amend: no replacement train %q at %s", rec.TrainID, rec.Begin), nil)
}

// amendDelete is outer=Amend, stp=Delete: overwrite the matching
// cancellation's period and days.
func (e *Engine) amendDelete(rec cif.BasicScheduleRecord) (*model.Train, error) {
	for _, baseline := range e.Schedule.Trains[rec.TrainID] {
		for i, c := range baseline.Cancellations {
			if c.Period.Begin.Equal(rec.Begin) {
				baseline.Cancellations[i] = model.AssociationCancellation{
					Period: model.ValidityPeriod{Begin: rec.Begin, End: rec.End},
					Days:   rec.Days,
				}
				return baseline, nil
			}
		}
	}
	return nil, railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
		fmt.Sprintf("amend/delete: no cancellation on train %q at %s", rec.TrainID, rec.Begin), nil)
}

// deleteInsert is outer=Delete, stp=Insert: remove every baseline variant
// matching (is-stp, begin).
func (e *Engine) deleteInsert(rec cif.BasicScheduleRecord) error {
	trains := e.Schedule.Trains[rec.TrainID]
	kept := trains[:0]
	removed := false
	for _, t := range trains {
		if len(t.Validity) > 0 && t.Source != nil && sameSource(*t.Source, rec.IsSTP) && t.Validity[0].Begin.Equal(rec.Begin) {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	e.Schedule.Trains[rec.TrainID] = kept
	if !removed {
		return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
			fmt.Sprintf("delete/insert: no baseline train %q at %s", rec.TrainID, rec.Begin), nil)
	}
	return nil
}

// deleteAmend is outer=Delete, stp=Amend: remove the matching replacement.
// Per spec.md §9's documented ambiguous-success case, a missing target is
// not an error — it is logged at debug and otherwise ignored.
func (e *Engine) deleteAmend(rec cif.BasicScheduleRecord) error {
	for _, baseline := range e.Schedule.Trains[rec.TrainID] {
		for i, repl := range baseline.Replacements {
			if len(repl.Validity) > 0 && repl.Validity[0].Begin.Equal(rec.Begin) {
				baseline.Replacements = append(baseline.Replacements[:i], baseline.Replacements[i+1:]...)
				return nil
			}
		}
	}
	e.Log.Debug().
		Str("train_id", rec.TrainID).
		Time("begin", rec.Begin).
		Msg("delete/amend: no matching replacement to remove, silently accepted")
	return nil
}

// deleteDelete is outer=Delete, stp=Delete: remove the matching
// cancellation.
func (e *Engine) deleteDelete(rec cif.BasicScheduleRecord) error {
	for _, baseline := range e.Schedule.Trains[rec.TrainID] {
		for i, c := range baseline.Cancellations {
			if c.Period.Begin.Equal(rec.Begin) {
				baseline.Cancellations = append(baseline.Cancellations[:i], baseline.Cancellations[i+1:]...)
				return nil
			}
		}
	}
	return railerr.NewFieldError(railerr.KindReferentialIntegrity, 0, 0,
		fmt.Sprintf("delete/delete: no cancellation on train %q at %s", rec.TrainID, rec.Begin), nil)
}
