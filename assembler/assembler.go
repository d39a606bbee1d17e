// Package assembler implements the train assembler (component C4): the
// BS/BX/LO/LI/LT/CR state machine that turns a run of bulk-file records
// into committed Train/TrainLocation structures, delegating the BS
// overlay decision itself to package overlay. Grounded on
// original_source/src/nr_importer.rs's get_last_train/read_extended_schedule/
// read_location_origin/read_location_intermediate/read_location_terminating/
// read_change_en_route/validate_change_en_route_location/calculate_day/
// get_working_time, restructured from one big `impl CifImporter` into a
// small struct with one method per record kind, styled on the teacher's
// converter package's one-phase-per-file organisation.
package assembler

import (
	"fmt"

	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/overlay"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// crLocation identifies the (id, suffix) a pending change-en-route was
// captured at, so the next LI/LT can be validated against it.
type crLocation struct {
	id     string
	suffix string
}

// Assembler is component C4. One Assembler processes one feed (one bulk
// file, or one VSTP message at a time) against a shared overlay.Engine.
type Assembler struct {
	Overlay *overlay.Engine

	// STPSource is the TrainSource assigned to a BS record whose STP
	// indicator marks it as an overlay (rec.IsSTP == true): ShortTerm for
	// the bulk CIF feed, VeryShortTerm for the VSTP structured feed. A
	// non-STP BS record always commits as LongTerm regardless of this
	// field.
	STPSource model.TrainSource

	current    *model.Train
	pendingCR  *model.VariableTrain
	crLocation *crLocation
}

// New builds an Assembler bound to an overlay engine, defaulting STPSource
// to ShortTerm (the bulk CIF feed's overlay layer). VSTP callers should set
// STPSource to model.VeryShortTerm before use.
func New(eng *overlay.Engine) *Assembler {
	return &Assembler{Overlay: eng, STPSource: model.ShortTerm}
}

func (a *Assembler) sourceFor(isSTP bool) model.TrainSource {
	if isSTP {
		return a.STPSource
	}
	return model.LongTerm
}

// ApplyBasicSchedule handles a BS record: delegates the overlay decision
// to the overlay engine and adopts its result as the train under
// construction.
func (a *Assembler) ApplyBasicSchedule(rec cif.BasicScheduleRecord, line int) error {
	t, err := a.Overlay.ApplyBasicSchedule(rec, a.sourceFor(rec.IsSTP))
	if err != nil {
		return err
	}
	a.current = t
	a.pendingCR = nil
	a.crLocation = nil
	return nil
}

// ApplyExtendedSchedule handles a BX record: fills UIC code, operator, and
// performance-monitoring flag on the train under construction.
func (a *Assembler) ApplyExtendedSchedule(rec cif.ExtendedScheduleRecord, line int) error {
	t, err := a.require(line, "BX")
	if err != nil {
		return err
	}
	t.VariableTrain.UICCode = rec.UICCode
	t.VariableTrain.Operator = rec.Operator
	perf := rec.PerformanceMonitoring
	t.PerformanceMonitoring = &perf
	return nil
}

// ApplyLocation handles an LO, LI, or LT record, dispatching on
// rec.Which.
func (a *Assembler) ApplyLocation(rec cif.LocationRecord, line int) error {
	switch rec.Which {
	case cif.KindOrigin:
		return a.applyOrigin(rec, line)
	case cif.KindIntermediate:
		return a.applyIntermediate(rec, line)
	case cif.KindTerminating:
		return a.applyTerminating(rec, line)
	default:
		return fmt.Errorf("assembler: location record with unexpected kind %v", rec.Which)
	}
}

func (a *Assembler) applyOrigin(rec cif.LocationRecord, line int) error {
	t, err := a.require(line, "LO")
	if err != nil {
		return err
	}
	if len(t.Route) != 0 {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 0,
			"LO: train route is not empty", nil)
	}
	t.Route = append(t.Route, &model.TrainLocation{
		ID:                    rec.ID,
		IDSuffix:              rec.Suffix,
		WorkingDep:            rec.WorkingDep,
		WorkingDepDay:         0,
		PublicDep:             rec.PublicDep,
		PublicDepDay:          0,
		Platform:              rec.Platform,
		Line:                  rec.Line,
		EngineeringAllowanceS: rec.EngineeringAllowanceS,
		PathingAllowanceS:     rec.PathingAllowanceS,
		PerformanceAllowanceS: rec.PerformanceAllowanceS,
		Activities:            rec.Activities,
	})
	return nil
}

func (a *Assembler) applyIntermediate(rec cif.LocationRecord, line int) error {
	if err := a.validateChangeEnRouteLocation(rec.ID, rec.Suffix, line); err != nil {
		return err
	}
	if err := validateIntermediateTimeCombo(rec); err != nil {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 10, err.Error(), nil)
	}

	t, err := a.require(line, "LI")
	if err != nil {
		return err
	}
	if len(t.Route) == 0 {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 0,
			"LI: train route is empty", nil)
	}

	lastTime, lastDay := workingTime(t.Route[len(t.Route)-1])
	loc := &model.TrainLocation{
		ID:                    rec.ID,
		IDSuffix:              rec.Suffix,
		WorkingArr:            rec.WorkingArr,
		WorkingDep:            rec.WorkingDep,
		WorkingPass:           rec.WorkingPass,
		PublicArr:             rec.PublicArr,
		PublicDep:             rec.PublicDep,
		Platform:              rec.Platform,
		Line:                  rec.Line,
		Path:                  rec.Path,
		EngineeringAllowanceS: rec.EngineeringAllowanceS,
		PathingAllowanceS:     rec.PathingAllowanceS,
		PerformanceAllowanceS: rec.PerformanceAllowanceS,
		Activities:            rec.Activities,
		ChangeEnRoute:         a.pendingCR,
	}
	if rec.WorkingArr != nil {
		loc.WorkingArrDay = dayOffset(*rec.WorkingArr, lastTime, lastDay)
	}
	if rec.WorkingDep != nil {
		loc.WorkingDepDay = dayOffset(*rec.WorkingDep, lastTime, lastDay)
	}
	if rec.WorkingPass != nil {
		loc.WorkingPassDay = dayOffset(*rec.WorkingPass, lastTime, lastDay)
	}
	if rec.PublicArr != nil {
		loc.PublicArrDay = dayOffset(*rec.PublicArr, lastTime, lastDay)
	}
	if rec.PublicDep != nil {
		loc.PublicDepDay = dayOffset(*rec.PublicDep, lastTime, lastDay)
	}

	t.Route = append(t.Route, loc)
	a.pendingCR = nil
	a.crLocation = nil
	return nil
}

func (a *Assembler) applyTerminating(rec cif.LocationRecord, line int) error {
	if err := a.validateChangeEnRouteLocation(rec.ID, rec.Suffix, line); err != nil {
		return err
	}
	if rec.WorkingArr == nil {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 10,
			"LT: terminating location requires a working arrival time", nil)
	}

	t, err := a.require(line, "LT")
	if err != nil {
		return err
	}
	if len(t.Route) == 0 {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 0,
			"LT: train route is empty", nil)
	}

	lastTime, lastDay := workingTime(t.Route[len(t.Route)-1])
	loc := &model.TrainLocation{
		ID:                    rec.ID,
		IDSuffix:              rec.Suffix,
		WorkingArr:            rec.WorkingArr,
		WorkingArrDay:         dayOffset(*rec.WorkingArr, lastTime, lastDay),
		PublicArr:             rec.PublicArr,
		Platform:              rec.Platform,
		Path:                  rec.Path,
		Activities:            rec.Activities,
		ChangeEnRoute:         a.pendingCR,
	}
	if rec.PublicArr != nil {
		loc.PublicArrDay = dayOffset(*rec.PublicArr, lastTime, lastDay)
	}

	t.Route = append(t.Route, loc)
	a.pendingCR = nil
	a.crLocation = nil
	a.current = nil
	return nil
}

// ApplyChangeEnRoute handles a CR record: captures a VariableTrain that
// will replace the current one from the next LI/LT location onward.
func (a *Assembler) ApplyChangeEnRoute(rec cif.ChangeEnRouteRecord, line int) error {
	t, err := a.require(line, "CR")
	if err != nil {
		return err
	}
	if len(t.Route) == 0 {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 0,
			"CR: train route is empty", nil)
	}

	vt := &model.VariableTrain{
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
		UICCode:                  rec.UICCode,
		Operator:                 rec.Operator,
	}
	if rec.PowerDesc != "" {
		vt.TimingAllocation = &model.TrainAllocation{Description: rec.PowerDesc}
	}
	vt.HasFirstClassSeats, vt.HasSecondClassSeats = cif.ClassesToBools(rec.SeatingClass)
	vt.HasFirstClassSleepers, vt.HasSecondClassSleepers = cif.ClassesToBools(rec.SleeperClass)

	a.pendingCR = vt
	a.crLocation = &crLocation{id: rec.ID, suffix: rec.Suffix}
	return nil
}

// Reset clears the assembler's state machine, for use between bulk files
// or when an error aborts the current train.
func (a *Assembler) Reset() {
	a.current = nil
	a.pendingCR = nil
	a.crLocation = nil
}

func (a *Assembler) require(line int, recordType string) (*model.Train, error) {
	if a.current == nil {
		return nil, railerr.NewFieldError(railerr.KindSemanticViolation, line, 0,
			fmt.Sprintf("%s: no preceding BS established a train under construction", recordType), nil)
	}
	return a.current, nil
}

func (a *Assembler) validateChangeEnRouteLocation(id, suffix string, line int) error {
	if a.crLocation == nil {
		return nil
	}
	if a.crLocation.id != id || a.crLocation.suffix != suffix {
		return railerr.NewFieldError(railerr.KindSemanticViolation, line, 2,
			fmt.Sprintf("location %s/%s does not match the location captured by the preceding CR (%s/%s)",
				id, suffix, a.crLocation.id, a.crLocation.suffix), nil)
	}
	return nil
}

// validateIntermediateTimeCombo enforces spec.md §4.3's (arr, dep, pass)
// legality rule: pass-only, or both arr and dep.
func validateIntermediateTimeCombo(rec cif.LocationRecord) error {
	switch {
	case rec.WorkingArr == nil && rec.WorkingDep == nil && rec.WorkingPass != nil:
		return nil
	case rec.WorkingArr != nil && rec.WorkingDep != nil && rec.WorkingPass == nil:
		return nil
	default:
		return fmt.Errorf("LI: working time combination must be pass-only or (arrival and departure)")
	}
}

// workingTime mirrors original_source's get_working_time: a location's
// working departure, or its working pass if it has no departure.
func workingTime(loc *model.TrainLocation) (model.TimeOfDay, int) {
	if loc.WorkingDep != nil {
		return *loc.WorkingDep, loc.WorkingDepDay
	}
	return *loc.WorkingPass, loc.WorkingPassDay
}

// dayOffset mirrors original_source's calculate_day: any time that is not
// at-or-after the previous working time implies the train has rolled over
// into the next calendar day.
func dayOffset(t, last model.TimeOfDay, lastDay int) int {
	if totalMinutes(t) < totalMinutes(last) {
		return lastDay + 1
	}
	return lastDay
}

func totalMinutes(t model.TimeOfDay) int {
	m := t.Hour*60 + t.Minute
	if t.HalfMinute {
		return m*2 + 1
	}
	return m * 2
}
