package cif

import (
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/railtimetable/calendar"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// RecordKind identifies which of the twelve bulk-file record types a line
// decoded to.
type RecordKind int

const (
	KindHeader RecordKind = iota
	KindTiplocInsert
	KindTiplocAmend
	KindTiplocDelete
	KindAssociation
	KindBasicSchedule
	KindExtendedSchedule
	KindOrigin
	KindIntermediate
	KindTerminating
	KindChangeEnRoute
	KindFinalise
)

// Record is implemented by every decoded bulk-file record.
type Record interface {
	Kind() RecordKind
}

// HeaderRecord is a decoded HD record.
type HeaderRecord struct {
	ProviderID string
	UpdateTime time.Time
	Full       bool
	ValidBegin *time.Time
	ValidEnd   *time.Time
}

func (HeaderRecord) Kind() RecordKind { return KindHeader }

// TiplocRecord is a decoded TI/TA/TD record.
type TiplocRecord struct {
	Op       model.ModificationType
	ID       string
	Name     string
	PublicID string
}

func (TiplocRecord) Kind() RecordKind {
	return KindTiplocInsert // callers switch on .Op for TI vs TA vs TD semantics
}

// AssociationRecord is a decoded AA record.
type AssociationRecord struct {
	Modification    model.ModificationType
	MainTrainID     string
	OtherTrainID    string
	Begin           time.Time
	End             time.Time
	Days            model.DaysOfWeek
	Category        model.AssociationCategory
	DayDiff         int8
	Location        string
	MainSuffix      string
	OtherSuffix     string
	ForPassengers   bool
	STPModification model.ModificationType
	IsSTP           bool
}

func (AssociationRecord) Kind() RecordKind { return KindAssociation }

// BasicScheduleRecord is a decoded BS record.
type BasicScheduleRecord struct {
	Modification    model.ModificationType
	TrainID         string
	Begin           time.Time
	End             time.Time
	Days            model.DaysOfWeek
	Status          model.TrainStatus
	PublicID        string
	Headcode        string
	ServiceGroup    string
	Power           *model.TrainPower
	PowerDesc       string
	Speed           *float64
	OperatingChars  model.OperatingCharacteristics
	RunsAsRequired  bool
	SeatingClass    model.Class
	SleeperClass    model.Class
	Reservations    model.Reservations
	Catering        model.Catering
	Brand           string
	TrainType       model.TrainType
	STPModification model.ModificationType
	IsSTP           bool
}

func (BasicScheduleRecord) Kind() RecordKind { return KindBasicSchedule }

// ExtendedScheduleRecord is a decoded BX record.
type ExtendedScheduleRecord struct {
	UICCode              string
	Operator             *model.TrainOperator
	PerformanceMonitoring bool
}

func (ExtendedScheduleRecord) Kind() RecordKind { return KindExtendedSchedule }

// LocationRecord is a decoded LO/LI/LT record.
type LocationRecord struct {
	Which RecordKind // KindOrigin, KindIntermediate, or KindTerminating

	ID     string
	Suffix string

	WorkingArr  *model.TimeOfDay
	WorkingDep  *model.TimeOfDay
	WorkingPass *model.TimeOfDay
	PublicArr   *model.TimeOfDay
	PublicDep   *model.TimeOfDay

	Platform string
	Line     string
	Path     string

	EngineeringAllowanceS *float64
	PathingAllowanceS     *float64
	PerformanceAllowanceS *float64

	Activities model.Activities
}

func (l LocationRecord) Kind() RecordKind { return l.Which }

// ChangeEnRouteRecord is a decoded CR record: the same descriptive columns
// as BS, anchored at a location.
type ChangeEnRouteRecord struct {
	ID     string
	Suffix string

	TrainType      model.TrainType
	PublicID       string
	Headcode       string
	ServiceGroup   string
	Power          *model.TrainPower
	PowerDesc      string
	Speed          *float64
	OperatingChars model.OperatingCharacteristics
	RunsAsRequired bool
	SeatingClass   model.Class
	SleeperClass   model.Class
	Reservations   model.Reservations
	Catering       model.Catering
	Brand          string
	UICCode        string
	Operator       *model.TrainOperator
}

func (ChangeEnRouteRecord) Kind() RecordKind { return KindChangeEnRoute }

// FinaliseRecord is the ZZ sentinel.
type FinaliseRecord struct{}

func (FinaliseRecord) Kind() RecordKind { return KindFinalise }

// field slices a 1-based inclusive column range, matching spec.md §6's
// column numbering.
func field(line string, from, to int) string {
	if from < 1 {
		from = 1
	}
	if to > len(line) {
		to = len(line)
	}
	if from > to {
		return ""
	}
	return line[from-1 : to]
}

// ParseLine decodes one 80-byte bulk-file line into a typed Record.
// Empty lines are ignored (returns nil, nil). Lines of any other length
// are RecordLengthWrong. Unknown two-character record types are
// UnknownRecordType.
func ParseLine(line string, lineNo int) (Record, error) {
	if line == "" {
		return nil, nil
	}
	if len(line) != 80 {
		return nil, railerr.NewFieldError(railerr.KindRecordLengthWrong, lineNo, 1,
			fmt.Sprintf("record must be 80 characters, got %d", len(line)), nil)
	}

	switch line[0:2] {
	case "HD":
		return parseHeader(line, lineNo)
	case "TI":
		return parseTiploc(line, lineNo, model.Insert)
	case "TA":
		return parseTiploc(line, lineNo, model.Amend)
	case "TD":
		return parseTiploc(line, lineNo, model.Delete)
	case "AA":
		return parseAssociation(line, lineNo)
	case "BS":
		return parseBasicSchedule(line, lineNo)
	case "BX":
		return parseExtendedSchedule(line, lineNo)
	case "LO":
		return parseLocation(line, lineNo, KindOrigin)
	case "LI":
		return parseLocation(line, lineNo, KindIntermediate)
	case "LT":
		return parseLocation(line, lineNo, KindTerminating)
	case "CR":
		return parseChangeEnRoute(line, lineNo)
	case "ZZ":
		return FinaliseRecord{}, nil
	default:
		return nil, railerr.NewFieldError(railerr.KindUnknownRecordType, lineNo, 1,
			"unknown record type "+line[0:2], nil)
	}
}

func parseHeader(line string, lineNo int) (Record, error) {
	updateTime, err := calendar.ParseHeaderTimestamp(field(line, 23, 32))
	if err != nil {
		return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 23, err.Error(), err)
	}
	full := field(line, 47, 47) == "F"
	h := HeaderRecord{
		ProviderID: DecodeOptionalString(field(line, 3, 22)),
		UpdateTime: updateTime,
		Full:       full,
	}
	if full {
		begin, err := calendar.ParseHeaderDate(field(line, 49, 54))
		if err != nil {
			return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 49, err.Error(), err)
		}
		end, err := calendar.ParseHeaderDate(field(line, 55, 60))
		if err != nil {
			return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 55, err.Error(), err)
		}
		h.ValidBegin = &begin
		h.ValidEnd = &end
	}
	return h, nil
}

func parseTiploc(line string, lineNo int, op model.ModificationType) (Record, error) {
	return TiplocRecord{
		Op:       op,
		ID:       DecodeOptionalString(field(line, 3, 9)),
		Name:     DecodeOptionalString(field(line, 19, 44)),
		PublicID: DecodeOptionalString(field(line, 54, 56)),
	}, nil
}

func parseAssociation(line string, lineNo int) (Record, error) {
	mod, err := DecodeModificationType(field(line, 3, 3)[0], lineNo, 3)
	if err != nil {
		return nil, err
	}
	begin, err := calendar.ParseBulkDate(field(line, 16, 21))
	if err != nil {
		return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 16, err.Error(), err)
	}
	end, err := calendar.ParseBulkDate(field(line, 22, 27))
	if err != nil {
		return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 22, err.Error(), err)
	}
	days, err := DecodeDaysOfWeek(field(line, 28, 34), lineNo, 28)
	if err != nil {
		return nil, err
	}

	var category model.AssociationCategory
	switch field(line, 35, 36) {
	case "JJ":
		category = model.Join
	case "VV":
		category = model.Divide
	case "NP":
		category = model.Next
	default:
		return nil, enumErr(lineNo, 35, "association category", field(line, 35, 36))
	}

	var dayDiff int8
	switch field(line, 37, 37) {
	case "S":
		dayDiff = 0
	case "N":
		dayDiff = 1
	case "P":
		dayDiff = -1
	default:
		return nil, enumErr(lineNo, 37, "association date indicator", field(line, 37, 37))
	}

	forPassengers := field(line, 48, 48) == "P"

	stpMod, isSTP, err := DecodeSTPIndicator(field(line, 80, 80)[0], lineNo, 80)
	if err != nil {
		return nil, err
	}

	return AssociationRecord{
		Modification:    mod,
		MainTrainID:     DecodeOptionalString(field(line, 4, 9)),
		OtherTrainID:    DecodeOptionalString(field(line, 10, 15)),
		Begin:           begin,
		End:             end,
		Days:            days,
		Category:        category,
		DayDiff:         dayDiff,
		Location:        DecodeOptionalString(field(line, 38, 44)),
		MainSuffix:      DecodeOptionalString(field(line, 45, 45)),
		OtherSuffix:     DecodeOptionalString(field(line, 46, 46)),
		ForPassengers:   forPassengers,
		STPModification: stpMod,
		IsSTP:           isSTP,
	}, nil
}

func parseBasicSchedule(line string, lineNo int) (Record, error) {
	mod, err := DecodeModificationType(field(line, 3, 3)[0], lineNo, 3)
	if err != nil {
		return nil, err
	}
	begin, err := calendar.ParseBulkDate(field(line, 10, 15))
	if err != nil {
		return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 10, err.Error(), err)
	}
	end, err := calendar.ParseBulkDate(field(line, 16, 21))
	if err != nil {
		return nil, railerr.NewFieldError(railerr.KindFieldParse, lineNo, 16, err.Error(), err)
	}
	days, err := DecodeDaysOfWeek(field(line, 22, 28), lineNo, 22)
	if err != nil {
		return nil, err
	}

	status, err := DecodeTrainStatus(field(line, 30, 30)[0], lineNo, 30)
	if err != nil {
		return nil, err
	}

	trainType, err := DecodeTrainType(field(line, 31, 32), lineNo, 31)
	if err != nil {
		return nil, err
	}

	speed, err := DecodeSpeed(field(line, 58, 60), lineNo, 58)
	if err != nil {
		return nil, err
	}

	oc, runsAsRequired, err := DecodeOperatingCharacteristics(field(line, 61, 66), lineNo, 61)
	if err != nil {
		return nil, err
	}

	power, powerDesc, err := DecodePowerTiming(field(line, 51, 53), field(line, 54, 57), oc.BRMarkFourCoaches, lineNo, 51)
	if err != nil {
		return nil, err
	}
	var powerPtr *model.TrainPower
	if powerDesc != "" || field(line, 51, 53) != "   " {
		powerPtr = &power
	}

	seatingClass, err := DecodeClass(field(line, 67, 67)[0], trainType, lineNo, 67)
	if err != nil {
		return nil, err
	}
	sleeperClass, err := DecodeSleeperClass(field(line, 68, 68)[0], lineNo, 68)
	if err != nil {
		return nil, err
	}

	catering, wheelchair, err := DecodeCatering(field(line, 71, 74), lineNo, 71)
	if err != nil {
		return nil, err
	}

	brand, err := DecodeBrand(field(line, 75, 75)[0], lineNo, 75)
	if err != nil {
		return nil, err
	}

	reservations, err := DecodeReservations(field(line, 69, 69)[0], seatingClass, sleeperClass,
		wheelchair, trainType.IsCarCarrier(), lineNo, 69)
	if err != nil {
		return nil, err
	}

	stpMod, isSTP, err := DecodeSTPIndicator(field(line, 80, 80)[0], lineNo, 80)
	if err != nil {
		return nil, err
	}

	return BasicScheduleRecord{
		Modification:       mod,
		TrainID:            DecodeOptionalString(field(line, 4, 9)),
		Begin:              begin,
		End:                end,
		Days:               days,
		Status:             status,
		PublicID:           DecodeOptionalString(field(line, 33, 36)),
		Headcode:           DecodeOptionalString(field(line, 37, 40)),
		ServiceGroup:       DecodeOptionalString(field(line, 42, 49)),
		Power:              powerPtr,
		PowerDesc:          powerDesc,
		Speed:              speed,
		OperatingChars:     oc,
		RunsAsRequired:     runsAsRequired,
		SeatingClass:    seatingClass,
		SleeperClass:    sleeperClass,
		Reservations:    reservations,
		Catering:        catering,
		Brand:           brand,
		TrainType:       trainType,
		STPModification: stpMod,
		IsSTP:           isSTP,
	}, nil
}

func parseExtendedSchedule(line string, lineNo int) (Record, error) {
	pm, err := DecodeATSCode(field(line, 14, 14)[0], lineNo, 14)
	if err != nil {
		return nil, err
	}
	return ExtendedScheduleRecord{
		UICCode:               DecodeOptionalString(field(line, 7, 11)),
		Operator:              DecodeTrainOperator(field(line, 12, 13)),
		PerformanceMonitoring: pm,
	}, nil
}

func parseLocation(line string, lineNo int, which RecordKind) (Record, error) {
	loc := LocationRecord{
		Which:  which,
		ID:     DecodeOptionalString(field(line, 3, 9)),
		Suffix: DecodeOptionalString(field(line, 10, 10)),
	}

	var err error
	switch which {
	case KindOrigin:
		loc.WorkingDep, err = DecodeOptionalWTTTime(field(line, 11, 15), lineNo, 11)
		if err != nil {
			return nil, err
		}
		loc.PublicDep, err = DecodePublicTime(field(line, 16, 19), lineNo, 16)
		if err != nil {
			return nil, err
		}
		loc.Platform = DecodeOptionalString(field(line, 20, 22))
		loc.Line = DecodeOptionalString(field(line, 23, 25))
		loc.EngineeringAllowanceS, err = DecodeAllowance(field(line, 26, 27), lineNo, 26)
		if err != nil {
			return nil, err
		}
		loc.PathingAllowanceS, err = DecodeAllowance(field(line, 28, 29), lineNo, 28)
		if err != nil {
			return nil, err
		}
		loc.Activities, err = DecodeActivities(field(line, 30, 41), lineNo, 30)
		if err != nil {
			return nil, err
		}
		loc.PerformanceAllowanceS, err = DecodeAllowance(field(line, 42, 43), lineNo, 42)
		if err != nil {
			return nil, err
		}
	case KindIntermediate:
		loc.WorkingArr, err = DecodeOptionalWTTTime(field(line, 11, 15), lineNo, 11)
		if err != nil {
			return nil, err
		}
		loc.WorkingDep, err = DecodeOptionalWTTTime(field(line, 16, 20), lineNo, 16)
		if err != nil {
			return nil, err
		}
		loc.WorkingPass, err = DecodeOptionalWTTTime(field(line, 21, 25), lineNo, 21)
		if err != nil {
			return nil, err
		}
		loc.PublicArr, err = DecodePublicTime(field(line, 26, 29), lineNo, 26)
		if err != nil {
			return nil, err
		}
		loc.PublicDep, err = DecodePublicTime(field(line, 30, 33), lineNo, 30)
		if err != nil {
			return nil, err
		}
		loc.Platform = DecodeOptionalString(field(line, 34, 36))
		loc.Line = DecodeOptionalString(field(line, 37, 39))
		loc.Path = DecodeOptionalString(field(line, 40, 42))
		loc.Activities, err = DecodeActivities(field(line, 43, 54), lineNo, 43)
		if err != nil {
			return nil, err
		}
		loc.EngineeringAllowanceS, err = DecodeAllowance(field(line, 55, 56), lineNo, 55)
		if err != nil {
			return nil, err
		}
		loc.PathingAllowanceS, err = DecodeAllowance(field(line, 57, 58), lineNo, 57)
		if err != nil {
			return nil, err
		}
		loc.PerformanceAllowanceS, err = DecodeAllowance(field(line, 59, 60), lineNo, 59)
		if err != nil {
			return nil, err
		}
		if err := validateIntermediateTimeCombo(loc, lineNo); err != nil {
			return nil, err
		}
	case KindTerminating:
		loc.WorkingArr, err = DecodeOptionalWTTTime(field(line, 11, 15), lineNo, 11)
		if err != nil {
			return nil, err
		}
		loc.PublicArr, err = DecodePublicTime(field(line, 16, 19), lineNo, 16)
		if err != nil {
			return nil, err
		}
		loc.Platform = DecodeOptionalString(field(line, 20, 22))
		loc.Path = DecodeOptionalString(field(line, 23, 25))
		loc.Activities, err = DecodeActivities(field(line, 26, 37), lineNo, 26)
		if err != nil {
			return nil, err
		}
		if loc.WorkingArr == nil {
			return nil, railerr.NewFieldError(railerr.KindSemanticViolation, lineNo, 11,
				"terminating location requires a working arrival time", nil)
		}
	}

	return loc, nil
}

// validateIntermediateTimeCombo enforces spec.md §4.3's rule: an
// intermediate location is legal as either (pass only) or (arr and dep).
func validateIntermediateTimeCombo(loc LocationRecord, lineNo int) error {
	passOnly := loc.WorkingPass != nil && loc.WorkingArr == nil && loc.WorkingDep == nil
	arrAndDep := loc.WorkingArr != nil && loc.WorkingDep != nil && loc.WorkingPass == nil
	if passOnly || arrAndDep {
		return nil
	}
	return railerr.NewFieldError(railerr.KindSemanticViolation, lineNo, 11,
		"intermediate location must specify either a pass time alone or both arrival and departure", nil)
}

func parseChangeEnRoute(line string, lineNo int) (Record, error) {
	trainType, err := DecodeTrainType(field(line, 31, 32), lineNo, 31)
	if err != nil {
		return nil, err
	}
	speed, err := DecodeSpeed(field(line, 58, 60), lineNo, 58)
	if err != nil {
		return nil, err
	}
	oc, runsAsRequired, err := DecodeOperatingCharacteristics(field(line, 61, 66), lineNo, 61)
	if err != nil {
		return nil, err
	}
	power, powerDesc, err := DecodePowerTiming(field(line, 51, 53), field(line, 54, 57), oc.BRMarkFourCoaches, lineNo, 51)
	if err != nil {
		return nil, err
	}
	var powerPtr *model.TrainPower
	if powerDesc != "" || field(line, 51, 53) != "   " {
		powerPtr = &power
	}
	seatingClass, err := DecodeClass(field(line, 67, 67)[0], trainType, lineNo, 67)
	if err != nil {
		return nil, err
	}
	sleeperClass, err := DecodeSleeperClass(field(line, 68, 68)[0], lineNo, 68)
	if err != nil {
		return nil, err
	}
	catering, wheelchair, err := DecodeCatering(field(line, 71, 74), lineNo, 71)
	if err != nil {
		return nil, err
	}
	brand, err := DecodeBrand(field(line, 75, 75)[0], lineNo, 75)
	if err != nil {
		return nil, err
	}
	reservations, err := DecodeReservations(field(line, 69, 69)[0], seatingClass, sleeperClass,
		wheelchair, trainType.IsCarCarrier(), lineNo, 69)
	if err != nil {
		return nil, err
	}

	return ChangeEnRouteRecord{
		ID:             DecodeOptionalString(field(line, 3, 9)),
		Suffix:         DecodeOptionalString(field(line, 10, 10)),
		TrainType:      trainType,
		PublicID:       DecodeOptionalString(field(line, 33, 36)),
		Headcode:       DecodeOptionalString(field(line, 37, 40)),
		ServiceGroup:   DecodeOptionalString(field(line, 42, 49)),
		Power:          powerPtr,
		PowerDesc:      powerDesc,
		Speed:          speed,
		OperatingChars: oc,
		RunsAsRequired: runsAsRequired,
		SeatingClass:   seatingClass,
		SleeperClass:   sleeperClass,
		Reservations:   reservations,
		Catering:       catering,
		Brand:          brand,
		UICCode:        DecodeOptionalString(field(line, 7, 11)),
		Operator:       DecodeTrainOperator(field(line, 12, 13)),
	}, nil
}
