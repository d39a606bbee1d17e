// Package model holds the in-memory schedule representation: locations,
// trains, their descriptive attributes, and the association graph between
// them. It has no behaviour of its own beyond simple accessors — the
// overlay and association algorithms live in package overlay.
package model

// TrainSource distinguishes the three layers a Train can be contributed by.
type TrainSource int

const (
	LongTerm TrainSource = iota
	ShortTerm
	VeryShortTerm
)

func (s TrainSource) String() string {
	switch s {
	case LongTerm:
		return "LongTerm"
	case ShortTerm:
		return "ShortTerm"
	case VeryShortTerm:
		return "VeryShortTerm"
	default:
		return "Unknown"
	}
}

// ModificationType is the outer CIF "transaction type": new record, amend
// an existing one, or delete it outright.
type ModificationType int

const (
	Insert ModificationType = iota
	Delete
	Amend
)

func (m ModificationType) String() string {
	switch m {
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	case Amend:
		return "Amend"
	default:
		return "Unknown"
	}
}

// AssociationCategory is the forward direction a CIF AA record names.
type AssociationCategory int

const (
	Join AssociationCategory = iota
	Divide
	Next
	IsJoinedToBy
	DividesFrom
	FormsFrom
)

func (c AssociationCategory) String() string {
	switch c {
	case Join:
		return "Join"
	case Divide:
		return "Divide"
	case Next:
		return "Next"
	case IsJoinedToBy:
		return "IsJoinedToBy"
	case DividesFrom:
		return "DividesFrom"
	case FormsFrom:
		return "FormsFrom"
	default:
		return "Unknown"
	}
}

// Reverse returns the reverse-direction category mirrored onto the other
// train: Join/Divide/Next have a dedicated reverse category each.
func (c AssociationCategory) Reverse() AssociationCategory {
	switch c {
	case Join:
		return IsJoinedToBy
	case Divide:
		return DividesFrom
	case Next:
		return FormsFrom
	default:
		panic("Reverse called on an already-reverse category")
	}
}

// Class is the four-valued seating/sleeper availability the CIF single-
// character class codes decode to; VariableTrain exposes the derived
// booleans per spec, this enum is only the decode target.
type Class int

const (
	ClassNone Class = iota
	ClassFirst
	ClassStandard
	ClassBoth
)

// TrainStatus is the CIF/VSTP train status code, retained as a descriptive
// attribute even though spec.md's data model names it only implicitly.
type TrainStatus int

const (
	StatusBus TrainStatus = iota
	StatusFreight
	StatusPassengerAndParcels
	StatusShip
	StatusTrip
	StatusSTPPassengerAndParcels
	StatusSTPFreight
	StatusSTPTrip
	StatusSTPShip
	StatusSTPBus
	StatusVstpNone
)

// ReservationField is the five-valued truth-table output for each
// reservable resource kind (seats, bicycles, sleepers, vehicles,
// wheelchairs).
type ReservationField int

const (
	ReservationPossible ReservationField = iota
	ReservationMandatory
	ReservationRecommended
	ReservationImpossible
	ReservationNotMandatory
	ReservationNotApplicable
)

// TrainPower is the decoded motive-power kind.
type TrainPower int

const (
	DieselLocomotive TrainPower = iota
	DieselElectricMultipleUnit
	DieselMechanicalMultipleUnit
	DieselHydraulicMultipleUnit
	ElectricLocomotive
	ElectricAndDieselLocomotive
	ElectricMultipleUnitWithLocomotive
	ElectricMultipleUnit
	ElectricAndDieselMultipleUnit
	BatteryLocomotive
	BatteryMultipleUnit
	SteamLocomotive
	SteamRailcar
)

// TrainType is the train category taxonomy, ported in full from the
// original source (original_source/src/schedule.rs) per SPEC_FULL.md's
// supplemented-features section — spec.md names only the shape ("≈60-entry
// taxonomy"); this is the literal enumeration.
type TrainType int

const (
	Bus TrainType = iota
	ServiceBus
	ReplacementBus
	Freight
	FreightDepartmental
	FreightCivilEngineer
	FreightMechanicalElectricalEngineer
	FreightStores
	FreightTest
	FreightSignalTelecoms
	FreightAutomotiveComponents
	FreightAutomotiveVehicles
	FreightEdibleProducts
	FreightIndustrialMinerals
	FreightChemicals
	FreightWagonloadBuildingMaterials
	FreightMerchandise
	FreightInternational
	FreightInternationalMixed
	FreightInternationalIntermodal
	FreightInternationalAutomotive
	FreightInternationalContract
	FreightInternationalHaulmark
	FreightInternationalJointVenture
	FreightIntermodalContracts
	FreightIntermodalOther
	FreightCoalDistributive
	FreightCoalElectricity
	FreightNuclear
	FreightMetals
	FreightAggregates
	FreightWaste
	FreightTrainloadBuildingMaterials
	FreightPetroleum
	LocomotiveBrakeVan
	Locomotive
	OrdinaryPassenger
	ExpressPassenger
	InternationalPassenger
	SleeperPassenger
	InternationalSleeperPassenger
	CarCarryingPassenger
	UnadvertisedPassenger
	UnadvertisedExpressPassenger
	EmptyPassenger
	Staff
	EmptyPassengerAndStaff
	Mixed
	Metro
	EmptyMetro
	Post
	Parcels
	EmptyNonPassenger
	PassengerParcels
	Ship
	Trip
)

// IsCarCarrier reports whether vehicle reservation can be mandatory per
// §4.5's rule ("mandatory iff train is a car-carrying passenger train").
func (t TrainType) IsCarCarrier() bool {
	return t == CarCarryingPassenger
}

// hasClassSeating reports whether this train type is one of the passenger-
// bearing categories for which blank class codes default to Both rather
// than None, per read_seating_class in the original source.
func (t TrainType) hasClassSeating() bool {
	switch t {
	case OrdinaryPassenger, ExpressPassenger, InternationalPassenger,
		SleeperPassenger, InternationalSleeperPassenger, CarCarryingPassenger,
		UnadvertisedPassenger, UnadvertisedExpressPassenger, EmptyPassenger,
		Staff, EmptyPassengerAndStaff, Mixed, Metro, PassengerParcels:
		return true
	default:
		return false
	}
}

// HasClassSeating exposes hasClassSeating to package cif for decode-time
// class-default resolution.
func (t TrainType) HasClassSeating() bool { return t.hasClassSeating() }
