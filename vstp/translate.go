package vstp

import (
	"fmt"
	"strings"

	"github.com/theoremus-urban-solutions/railtimetable/calendar"
	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// RouteStep is one LI/LT/LO-equivalent location to drive through an
// assembler.Assembler, optionally preceded by a change-en-route: a new
// schedule_segment after the first carries a fresh VariableTrain that
// applies from its first location onward, exactly as a CR record would.
type RouteStep struct {
	ChangeEnRoute *cif.ChangeEnRouteRecord
	Location      cif.LocationRecord
}

// Plan is a fully decoded VSTP message, ready to drive through
// assembler.Assembler/overlay.Engine the same way a BS/BX/LO/LI/LT/CR run
// would for the bulk CIF feed.
type Plan struct {
	BasicSchedule cif.BasicScheduleRecord
	Steps         []RouteStep
}

func fieldErr(kind railerr.Kind, field, format string, args ...interface{}) *railerr.Error {
	return railerr.NewStructuredError(kind, field, fmt.Sprintf(format, args...), nil)
}

func firstByteOrSpace(s string) byte {
	if s == "" {
		return ' '
	}
	return s[0]
}

// ToPlan decodes msg into a Plan. Every train produced by a Plan is tagged
// model.VeryShortTerm by the caller (the assembler's STPSource field),
// per spec.md §6: "Structured-feed trains are always tagged source =
// VeryShortTerm."
func ToPlan(msg *Message) (*Plan, error) {
	sched := msg.CIFMsgV1.Schedule

	var modification model.ModificationType
	switch sched.TransactionType {
	case TransactionCreate:
		modification = model.Insert
	case TransactionDelete:
		modification = model.Delete
	default:
		return nil, fieldErr(railerr.KindUnknownEnum, "schedule.transaction_type", "unrecognised transaction type %q", sched.TransactionType)
	}

	stpModification, isSTP, err := cif.DecodeSTPIndicator(firstByteOrSpace(sched.CIFSTPIndicator), 0, 0)
	if err != nil {
		return nil, fieldErr(railerr.KindUnknownEnum, "schedule.cif_stp_indicator", "unrecognised STP indicator %q", sched.CIFSTPIndicator)
	}

	begin, err := calendar.ParseStructuredDate(sched.ScheduleStartDate)
	if err != nil {
		return nil, fieldErr(railerr.KindFieldParse, "schedule.schedule_start_date", "invalid date %q", sched.ScheduleStartDate)
	}
	end, err := calendar.ParseStructuredDate(sched.ScheduleEndDate)
	if err != nil {
		return nil, fieldErr(railerr.KindFieldParse, "schedule.schedule_end_date", "invalid date %q", sched.ScheduleEndDate)
	}

	days, err := cif.DecodeDaysOfWeek(sched.ScheduleDaysRuns, 0, 0)
	if err != nil {
		return nil, fieldErr(railerr.KindFieldParse, "schedule.schedule_days_runs", "invalid days-of-week %q", sched.ScheduleDaysRuns)
	}

	status, err := cif.DecodeTrainStatus(firstByteOrSpace(sched.TrainStatus), 0, 0)
	if err != nil {
		return nil, fieldErr(railerr.KindUnknownEnum, "schedule.train_status", "unrecognised train status %q", sched.TrainStatus)
	}

	vt, err := variableTrainFromSegment(sched.ScheduleSegment[0], status)
	if err != nil {
		return nil, err
	}

	bs := cif.BasicScheduleRecord{
		Modification:    modification,
		TrainID:         strings.TrimSpace(sched.CIFTrainUID),
		Begin:           begin,
		End:             end,
		Days:            days,
		Status:          status,
		PublicID:        vt.PublicID,
		Headcode:        vt.Headcode,
		ServiceGroup:    vt.ServiceGroup,
		Power:           vt.PowerType,
		PowerDesc:       descriptionOf(vt),
		Speed:           vt.TimingSpeedMPerS,
		OperatingChars:  vt.OperatingCharacteristics,
		RunsAsRequired:  vt.OperatingCharacteristics.RunsToLocationsAsRequired,
		SeatingClass:    classFromBools(vt.HasFirstClassSeats, vt.HasSecondClassSeats),
		SleeperClass:    classFromBools(vt.HasFirstClassSleepers, vt.HasSecondClassSleepers),
		Reservations:    vt.Reservations,
		Catering:        vt.Catering,
		Brand:           vt.Brand,
		TrainType:       vt.TrainType,
		STPModification: stpModification,
		IsSTP:           isSTP,
	}

	steps, err := routeSteps(sched.ScheduleSegment, status)
	if err != nil {
		return nil, err
	}

	return &Plan{BasicSchedule: bs, Steps: steps}, nil
}

func descriptionOf(vt model.VariableTrain) string {
	if vt.TimingAllocation == nil {
		return ""
	}
	return vt.TimingAllocation.Description
}

// classFromBools recovers a model.Class from the derived booleans, the
// inverse of cif.ClassesToBools — BasicScheduleRecord wants the original
// code's class rather than the booleans VariableTrain exposes.
func classFromBools(first, second bool) model.Class {
	switch {
	case first && second:
		return model.ClassBoth
	case first:
		return model.ClassFirst
	case second:
		return model.ClassStandard
	default:
		return model.ClassNone
	}
}

// trainTypeForStatus is the fallback table original_source/src/nr_importer.rs's
// read_vstp_variable_train applies when CIF_train_category is absent —
// VSTP sometimes omits the category for non-passenger services and
// expects the train status to stand in for it.
func trainTypeForStatus(status model.TrainStatus) model.TrainType {
	switch status {
	case model.StatusBus, model.StatusSTPBus:
		return model.Bus
	case model.StatusFreight, model.StatusSTPFreight:
		return model.Freight
	case model.StatusPassengerAndParcels, model.StatusSTPPassengerAndParcels:
		return model.PassengerParcels
	case model.StatusShip, model.StatusSTPShip:
		return model.Ship
	default:
		return model.Trip
	}
}

func variableTrainFromSegment(seg ScheduleSegment, status model.TrainStatus) (model.VariableTrain, error) {
	var vt model.VariableTrain

	if strings.TrimSpace(seg.CIFTrainCategory) != "" {
		tt, err := cif.DecodeTrainType(seg.CIFTrainCategory, 0, 0)
		if err != nil {
			return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_train_category", "unrecognised train category %q", seg.CIFTrainCategory)
		}
		vt.TrainType = tt
	} else {
		vt.TrainType = trainTypeForStatus(status)
	}

	vt.PublicID = strings.TrimSpace(seg.SignallingID)
	vt.Headcode = cif.DecodeOptionalString(seg.CIFHeadcode)
	vt.ServiceGroup = strings.TrimSpace(seg.CIFTrainServiceCode)

	speed, err := cif.DecodeSpeed(seg.CIFSpeed, 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindFieldParse, "schedule_segment.CIF_speed", "invalid speed %q", seg.CIFSpeed)
	}
	vt.TimingSpeedMPerS = speed

	oc, runsAsRequired, err := cif.DecodeOperatingCharacteristics(seg.CIFOperatingCharacteristics, 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_operating_characteristics", "unrecognised operating characteristic in %q", seg.CIFOperatingCharacteristics)
	}
	oc.RunsToLocationsAsRequired = runsAsRequired
	vt.OperatingCharacteristics = oc

	power, powerDesc, err := cif.DecodePowerTiming(seg.CIFPowerType, seg.CIFTimingLoad, oc.BRMarkFourCoaches, 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_power_type", "unrecognised power/timing-load %q/%q", seg.CIFPowerType, seg.CIFTimingLoad)
	}
	if strings.TrimSpace(seg.CIFPowerType) != "" {
		vt.PowerType = &power
	}
	if powerDesc != "" {
		vt.TimingAllocation = &model.TrainAllocation{Description: powerDesc}
	}

	seatingClass, err := cif.DecodeClass(firstByteOrSpace(seg.CIFTrainClass), vt.TrainType, 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_train_class", "unrecognised seating class %q", seg.CIFTrainClass)
	}
	sleeperClass, err := cif.DecodeSleeperClass(firstByteOrSpace(seg.CIFSleepers), 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_sleepers", "unrecognised sleeper class %q", seg.CIFSleepers)
	}
	vt.HasFirstClassSeats, vt.HasSecondClassSeats = cif.ClassesToBools(seatingClass)
	vt.HasFirstClassSleepers, vt.HasSecondClassSleepers = cif.ClassesToBools(sleeperClass)

	catering, wheelchairFlag, err := cif.DecodeCatering(seg.CIFCateringCode, 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_catering_code", "unrecognised catering code %q", seg.CIFCateringCode)
	}
	vt.Catering = catering

	reservations, err := cif.DecodeReservations(firstByteOrSpace(seg.CIFReservations), seatingClass, sleeperClass, wheelchairFlag, vt.TrainType.IsCarCarrier(), 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_reservations", "unrecognised reservations code %q", seg.CIFReservations)
	}
	vt.Reservations = reservations
	vt.CarriesVehicles = vt.TrainType.IsCarCarrier()

	brand, err := cif.DecodeBrand(firstByteOrSpace(seg.CIFServiceBranding), 0, 0)
	if err != nil {
		return vt, fieldErr(railerr.KindUnknownEnum, "schedule_segment.CIF_service_branding", "unrecognised service branding %q", seg.CIFServiceBranding)
	}
	vt.Brand = brand

	vt.UICCode = cif.DecodeOptionalString(seg.UICCode)
	vt.Operator = cif.DecodeTrainOperator(seg.ATOCCode)

	return vt, nil
}

// routeSteps mirrors original_source's read_vstp_route: walk every segment
// and every location within it, producing an origin at (segment 0,
// location 0), a terminator at the very last location, intermediates
// elsewhere, and a change-en-route whenever a non-first segment begins (its
// first location carries the new VariableTrain).
func routeSteps(segments []ScheduleSegment, status model.TrainStatus) ([]RouteStep, error) {
	var steps []RouteStep
	for i, seg := range segments {
		if len(seg.ScheduleLocation) == 0 {
			return nil, fieldErr(railerr.KindSemanticViolation, "schedule_segment.schedule_location", "segment %d has no locations", i)
		}
		for j, loc := range seg.ScheduleLocation {
			isOrigin := i == 0 && j == 0
			isTerminus := i == len(segments)-1 && j == len(seg.ScheduleLocation)-1

			var step RouteStep
			if i > 0 && j == 0 {
				vt, err := variableTrainFromSegment(seg, status)
				if err != nil {
					return nil, err
				}
				step.ChangeEnRoute = &cif.ChangeEnRouteRecord{
					ID:             loc.Location.Tiploc.TiplocID,
					TrainType:      vt.TrainType,
					PublicID:       vt.PublicID,
					Headcode:       vt.Headcode,
					ServiceGroup:   vt.ServiceGroup,
					Power:          vt.PowerType,
					PowerDesc:      descriptionOf(vt),
					Speed:          vt.TimingSpeedMPerS,
					OperatingChars: vt.OperatingCharacteristics,
					RunsAsRequired: vt.OperatingCharacteristics.RunsToLocationsAsRequired,
					SeatingClass:   classFromBools(vt.HasFirstClassSeats, vt.HasSecondClassSeats),
					SleeperClass:   classFromBools(vt.HasFirstClassSleepers, vt.HasSecondClassSleepers),
					Reservations:   vt.Reservations,
					Catering:       vt.Catering,
					Brand:          vt.Brand,
					UICCode:        vt.UICCode,
					Operator:       vt.Operator,
				}
			}

			rec, err := locationRecord(loc, isOrigin, isTerminus)
			if err != nil {
				return nil, err
			}
			step.Location = rec
			steps = append(steps, step)
		}
	}
	return steps, nil
}

func vstpTime(s string) (*model.TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) < 4 {
		return nil, fmt.Errorf("time field too short: %q", s)
	}
	hour, err1 := parseTwoDigits(s[0:2])
	minute, err2 := parseTwoDigits(s[2:4])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("invalid time %q", s)
	}
	return &model.TimeOfDay{Hour: hour, Minute: minute}, nil
}

func parseTwoDigits(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("expected 2 digits, got %q", s)
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit in %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// vstpPublicTime applies original_source's read_public_time rule:
// midnight ("0000") is the sentinel for "no public time", since a public
// departure of exactly midnight does not occur on the British network.
func vstpPublicTime(s string) (*model.TimeOfDay, error) {
	t, err := vstpTime(s)
	if err != nil {
		return nil, err
	}
	if t != nil && t.Hour == 0 && t.Minute == 0 {
		return nil, nil
	}
	return t, nil
}

func locationRecord(loc ScheduleLocation, isOrigin, isTerminus bool) (cif.LocationRecord, error) {
	arr, err := vstpTime(loc.ScheduledArrivalTime)
	if err != nil {
		return cif.LocationRecord{}, fieldErr(railerr.KindFieldParse, "schedule_location.scheduled_arrival_time", "%s", err)
	}
	dep, err := vstpTime(loc.ScheduledDepartureTime)
	if err != nil {
		return cif.LocationRecord{}, fieldErr(railerr.KindFieldParse, "schedule_location.scheduled_departure_time", "%s", err)
	}
	pass, err := vstpTime(loc.ScheduledPassTime)
	if err != nil {
		return cif.LocationRecord{}, fieldErr(railerr.KindFieldParse, "schedule_location.scheduled_pass_time", "%s", err)
	}
	pubArr, err := vstpPublicTime(loc.PublicArrivalTime)
	if err != nil {
		return cif.LocationRecord{}, fieldErr(railerr.KindFieldParse, "schedule_location.public_arrival_time", "%s", err)
	}
	pubDep, err := vstpPublicTime(loc.PublicDepartureTime)
	if err != nil {
		return cif.LocationRecord{}, fieldErr(railerr.KindFieldParse, "schedule_location.public_departure_time", "%s", err)
	}

	activities, err := cif.DecodeActivities(loc.CIFActivity, 0, 0)
	if err != nil {
		return cif.LocationRecord{}, fieldErr(railerr.KindUnknownEnum, "schedule_location.CIF_activity", "unrecognised activity in %q", loc.CIFActivity)
	}

	which := cif.KindIntermediate
	switch {
	case isOrigin:
		which = cif.KindOrigin
	case isTerminus:
		which = cif.KindTerminating
	}

	return cif.LocationRecord{
		Which:       which,
		ID:          loc.Location.Tiploc.TiplocID,
		WorkingArr:  arr,
		WorkingDep:  dep,
		WorkingPass: pass,
		PublicArr:   pubArr,
		PublicDep:   pubDep,
		Platform:    strings.TrimSpace(loc.CIFPlatform),
		Line:        strings.TrimSpace(loc.CIFLine),
		Path:        strings.TrimSpace(loc.CIFPath),
		Activities:  activities,
	}, nil
}
