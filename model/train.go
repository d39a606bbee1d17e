package model

import "time"

// ValidityPeriod is an inclusive date range in the British civil zone.
type ValidityPeriod struct {
	Begin time.Time
	End   time.Time
}

// Overlaps reports whether p and other share at least one day, per
// spec.md §4.4's applicability test: newBegin <= existingEnd && newEnd >= existingBegin.
func (p ValidityPeriod) Overlaps(other ValidityPeriod) bool {
	return !other.Begin.After(p.End) && !other.End.Before(p.Begin)
}

// DaysOfWeek is a Monday-first applicability mask.
type DaysOfWeek struct {
	Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday bool
}

// Intersects reports whether d and other share at least one applicable day.
func (d DaysOfWeek) Intersects(other DaysOfWeek) bool {
	for i, bit := range d.bits() {
		if bit && other.bits()[i] {
			return true
		}
	}
	return false
}

// bits returns the mask as a fixed 7-element Monday-first array, matching
// original_source/src/schedule.rs's DaysOfWeek IntoIterator order.
func (d DaysOfWeek) bits() [7]bool {
	return [7]bool{d.Monday, d.Tuesday, d.Wednesday, d.Thursday, d.Friday, d.Saturday, d.Sunday}
}

// ByWeekday returns the flag for the given time.Weekday (Sunday = 0, as in
// the standard library, unlike the Monday-first struct layout above).
func (d DaysOfWeek) ByWeekday(w time.Weekday) bool {
	switch w {
	case time.Monday:
		return d.Monday
	case time.Tuesday:
		return d.Tuesday
	case time.Wednesday:
		return d.Wednesday
	case time.Thursday:
		return d.Thursday
	case time.Friday:
		return d.Friday
	case time.Saturday:
		return d.Saturday
	case time.Sunday:
		return d.Sunday
	default:
		return false
	}
}

// TimeOfDay is a working or public time: hour/minute plus the CIF
// half-minute fraction flag ("H" suffix). Public times never carry the
// half-minute flag.
type TimeOfDay struct {
	Hour       int
	Minute     int
	HalfMinute bool
}

// OperatingCharacteristics is the 11-flag bitset decoded from a single CIF
// column group (see cif.DecodeOperatingCharacteristics).
type OperatingCharacteristics struct {
	VacuumBraked             bool
	OneHundredMPH            bool
	DriverOnlyPassenger      bool
	BRMarkFourCoaches        bool
	GuardRequired            bool
	OneHundredAndTenMPH      bool
	PushPull                 bool
	AirConditionedWithPA     bool
	SteamHeat                bool
	RunsToLocationsAsRequired bool
	SB1CGauge                bool
}

// Reservations holds the five resource-kind reservation fields decoded by
// cif.DecodeReservations.
type Reservations struct {
	Seats      ReservationField
	Bicycles   ReservationField
	Sleepers   ReservationField
	Vehicles   ReservationField
	Wheelchairs ReservationField
}

// Catering is the 6-flag catering bitset.
type Catering struct {
	Buffet              bool
	FirstClassRestaurant bool
	HotFood             bool
	FirstClassMeal      bool
	Restaurant          bool
	Trolley             bool
}

// Activities is the ~33-flag activity bitset, decoded two CIF characters
// at a time (see cif.DecodeActivities).
type Activities struct {
	Detach                        bool
	Attach                        bool
	StopsToPass                   bool
	AttachOrDetachAssistingLoco   bool
	XOnArrival                    bool
	StopsForBankingLoco           bool
	StopsForCrewChange            bool
	SetDownOnly                   bool
	Examination                   bool
	GBPRTT                        bool
	PreventColumnMerge            bool
	PreventThirdColumnMerge       bool
	PassengerCount                bool
	TicketCollection              bool
	TicketExamination             bool
	FirstClassTicketExamination   bool
	SelectiveTicketExamination    bool
	StopsToChangeLoco             bool
	UnadvertisedStop              bool
	OperationalStop               bool
	TrainLocomotiveOnRear         bool
	Propelling                    bool
	RequestStop                   bool
	ReversingMove                 bool
	RunRound                      bool
	StaffStop                     bool
	NormalPassengerStop           bool
	TrainBegins                   bool
	TrainFinishes                 bool
	TOPSReporting                 bool
	StopsForTokenEtc              bool
	PickUpOnly                    bool
	WateringStock                 bool
	StopsToCross                  bool
}

// TrainVehicle is one vehicle kind within a TrainAllocation.
type TrainVehicle struct {
	ID          string
	Description string
}

// TrainAllocation is a timing or actual stock allocation.
type TrainAllocation struct {
	ID          string
	Description string
	Vehicles    []TrainVehicle
}

// TrainOperator is an ATOC-coded operator.
type TrainOperator struct {
	ID          string
	Description string // empty means unknown/not supplied
}

// VariableTrain is the set of descriptive attributes that may change
// en route (captured wholesale by a CR record onto TrainLocation.ChangeEnRoute,
// and otherwise describing the train from its origin).
type VariableTrain struct {
	TrainType     TrainType
	PublicID      string
	Headcode      string
	ServiceGroup  string
	PowerType     *TrainPower
	TimingAllocation *TrainAllocation
	ActualAllocation *TrainAllocation
	TimingSpeedMPerS *float64

	OperatingCharacteristics OperatingCharacteristics

	HasFirstClassSeats    bool
	HasSecondClassSeats   bool
	HasFirstClassSleepers bool
	HasSecondClassSleepers bool

	CarriesVehicles bool

	Reservations Reservations
	Catering     Catering

	Brand string
	Name  string

	UICCode string

	Operator *TrainOperator
}

// AssociationNode is one side of a bidirectional association: forward on
// the anchoring train's route, or the mirrored reverse on the other
// train's route (component C6 produces and consumes both).
type AssociationNode struct {
	OtherTrainID               string
	OtherTrainLocationIDSuffix string // empty means no suffix

	Validity []ValidityPeriod

	Cancellations []AssociationCancellation
	Replacements  []*AssociationNode

	Days DaysOfWeek

	// DayDiff is the offset, in whole days, between the two trains'
	// operating days at the meeting point: -1, 0, or +1.
	DayDiff int8

	ForPassengers bool
	Source        *TrainSource
}

// AssociationCancellation is a (period, days) pair removing instances of
// an association.
type AssociationCancellation struct {
	Period ValidityPeriod
	Days   DaysOfWeek
}

// TrainLocation is one stop on a Train's route.
type TrainLocation struct {
	Timezone *time.Location
	ID       string
	IDSuffix string // disambiguates repeated visits to the same location

	WorkingArr    *TimeOfDay
	WorkingArrDay int
	WorkingDep    *TimeOfDay
	WorkingDepDay int
	WorkingPass   *TimeOfDay
	WorkingPassDay int

	PublicArr    *TimeOfDay
	PublicArrDay int
	PublicDep    *TimeOfDay
	PublicDepDay int

	Platform string
	Line     string
	Path     string

	EngineeringAllowanceS *float64
	PathingAllowanceS     *float64
	PerformanceAllowanceS *float64

	Activities Activities

	// ChangeEnRoute, if set, replaces VariableTrain from this location
	// onward.
	ChangeEnRoute *VariableTrain

	// Forward association attachments.
	DividesToForm []*AssociationNode
	JoinsTo       []*AssociationNode
	Becomes       *AssociationNode

	// Reverse association attachments (mirrored by package overlay).
	DividesFrom  []*AssociationNode
	IsJoinedToBy []*AssociationNode
	FormsFrom    *AssociationNode
}

// Train is one temporal variant of a service (component C1's core unit).
type Train struct {
	ID string

	Validity      []ValidityPeriod
	Cancellations []AssociationCancellation // reused shape: (period, days)
	Replacements  []*Train

	DaysOfWeek DaysOfWeek

	VariableTrain VariableTrain

	Source *TrainSource

	RunsAsRequired bool

	// PerformanceMonitoring is nil until a BX record sets it explicitly.
	PerformanceMonitoring *bool

	// Status is the CIF/VSTP train status, a supplemented descriptive
	// attribute per SPEC_FULL.md §8.
	Status TrainStatus

	Route []*TrainLocation
}

// IsSTP reports whether t belongs to an STP layer (ShortTerm or
// VeryShortTerm) rather than the LongTerm baseline.
func (t *Train) IsSTP() bool {
	return t.Source != nil && *t.Source != LongTerm
}
