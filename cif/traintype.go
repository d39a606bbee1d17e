package cif

import (
	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// trainTypeCodes is the ~60-entry CIF train category table, ported from
// original_source/src/schedule.rs's enumeration and nr_importer.rs's
// read_train_type match arms.
var trainTypeCodes = map[string]model.TrainType{
	"B ": model.Bus,
	"BS": model.ServiceBus,
	"BR": model.ReplacementBus,
	"H ": model.Freight,
	"H0": model.FreightDepartmental,
	"H1": model.FreightCivilEngineer,
	"H2": model.FreightMechanicalElectricalEngineer,
	"H3": model.FreightStores,
	"H4": model.FreightTest,
	"H5": model.FreightSignalTelecoms,
	"H6": model.FreightAutomotiveComponents,
	"H7": model.FreightAutomotiveVehicles,
	"H8": model.FreightEdibleProducts,
	"H9": model.FreightIndustrialMinerals,
	"J2": model.FreightChemicals,
	"J3": model.FreightMerchandise,
	"J4": model.FreightInternational,
	"J5": model.FreightInternationalMixed,
	"J6": model.FreightInternationalIntermodal,
	"J8": model.FreightInternationalAutomotive,
	"J9": model.FreightInternationalContract,
	"A0": model.FreightInternationalHaulmark,
	"A1": model.FreightInternationalJointVenture,
	"E0": model.FreightIntermodalContracts,
	"E1": model.FreightIntermodalOther,
	"B0": model.FreightCoalDistributive,
	"B1": model.FreightCoalElectricity,
	"B4": model.FreightNuclear,
	"B5": model.FreightMetals,
	"B6": model.FreightAggregates,
	"B7": model.FreightWaste,
	"B8": model.FreightTrainloadBuildingMaterials,
	"B9": model.FreightPetroleum,
	"E2": model.LocomotiveBrakeVan,
	"E3": model.Locomotive,
	"OO": model.OrdinaryPassenger,
	"OL": model.Metro,
	"OU": model.UnadvertisedPassenger,
	"XX": model.ExpressPassenger,
	"XZ": model.SleeperPassenger,
	"XC": model.InternationalPassenger,
	"XD": model.InternationalSleeperPassenger,
	"XI": model.InternationalPassenger,
	"XR": model.CarCarryingPassenger,
	"XU": model.UnadvertisedExpressPassenger,
	"EE": model.EmptyPassenger,
	"ES": model.Staff,
	"EL": model.EmptyPassengerAndStaff,
	"EM": model.EmptyMetro,
	"EC": model.EmptyMetro,
	"PM": model.Mixed,
	"PP": model.Post,
	"PV": model.Parcels,
	"DD": model.FreightDepartmental,
	"DH": model.FreightDepartmental,
	"DI": model.FreightDepartmental,
	"DQ": model.FreightDepartmental,
	"DT": model.FreightDepartmental,
	"DY": model.FreightDepartmental,
	"ZZ": model.EmptyNonPassenger,
	"J7": model.PassengerParcels,
	"SS": model.Ship,
	"JJ": model.Post,
}

// DecodeTrainStatus maps the single-character CIF train status code.
func DecodeTrainStatus(c byte, line, col int) (model.TrainStatus, error) {
	switch c {
	case ' ':
		return model.StatusVstpNone, nil
	case 'B':
		return model.StatusBus, nil
	case 'F':
		return model.StatusFreight, nil
	case 'P':
		return model.StatusPassengerAndParcels, nil
	case 'S':
		return model.StatusShip, nil
	case 'T':
		return model.StatusTrip, nil
	case '1':
		return model.StatusSTPPassengerAndParcels, nil
	case '2':
		return model.StatusSTPFreight, nil
	case '3':
		return model.StatusSTPTrip, nil
	case '4':
		return model.StatusSTPShip, nil
	case '5':
		return model.StatusSTPBus, nil
	default:
		return 0, enumErr(line, col, "train status", string(c))
	}
}

// DecodeTrainType resolves the 2-character category code.
func DecodeTrainType(s string, line, col int) (model.TrainType, error) {
	tt, ok := trainTypeCodes[s]
	if !ok {
		return 0, enumErr(line, col, "train category", s)
	}
	return tt, nil
}

// dmuVariantByLoadFirstChar resolves a bare "DMU" power code's variant from
// the first character of its timing load, per read_power_type's nested
// match (nr_importer.rs:1376-1385). Unmatched first characters (including
// "H") fall back to DieselHydraulicMultipleUnit, same as the original's `_`
// arm.
func dmuVariantByLoadFirstChar(load string) model.TrainPower {
	switch load[0:1] {
	case "D":
		return model.DieselMechanicalMultipleUnit
	case "V":
		return model.DieselElectricMultipleUnit
	case "7", "8":
		return model.ElectricAndDieselMultipleUnit
	default:
		return model.DieselHydraulicMultipleUnit
	}
}

// powerOnlyTable mirrors read_power_type's bare power-code arms
// (nr_importer.rs:1373-1393) for every code whose TrainPower does not also
// depend on the timing load.
var powerOnlyTable = map[string]model.TrainPower{
	"D":   model.DieselLocomotive,
	"DEM": model.DieselElectricMultipleUnit,
	"E":   model.ElectricLocomotive,
	"ED":  model.ElectricAndDieselLocomotive,
	"EML": model.ElectricMultipleUnitWithLocomotive,
	"EMU": model.ElectricMultipleUnit,
	"HST": model.DieselElectricMultipleUnit,
}

// DecodePowerTiming jointly decodes the 3-character power code and the
// 4-character timing load code into a TrainPower and a human description,
// per spec.md §4.1, grounded on read_power_type/read_timing_load
// (nr_importer.rs:1365-1540). Locomotive-hauled power kinds ("D", "E",
// "ED") describe the load as a tonnage figure, appending the BR Mark 4
// Coaches variant when the schedule's operating characteristics say so.
func DecodePowerTiming(power, load string, brMarkFourCoaches bool, line, col int) (model.TrainPower, string, error) {
	power = DecodeOptionalString(power)
	load = DecodeOptionalString(load)

	if power == "" {
		return 0, "", nil
	}

	var tp model.TrainPower
	switch power {
	case "DMU":
		if load == "" {
			tp = model.DieselHydraulicMultipleUnit
		} else {
			tp = dmuVariantByLoadFirstChar(load)
		}
	default:
		var ok bool
		tp, ok = powerOnlyTable[power]
		if !ok {
			return 0, "", enumErr(line, col, "power type", power)
		}
	}

	desc, err := timingLoadDescription(power, load, brMarkFourCoaches, line, col)
	if err != nil {
		return 0, "", err
	}

	return tp, desc, nil
}

// dmuTimingLoadDescriptions mirrors read_timing_load's "DEM"|"DMU" arm
// (nr_importer.rs:1475-1500).
var dmuTimingLoadDescriptions = map[string]string{
	"69":  "Class 172/0, 172/1, or 172/2 'Turbostar' DMU",
	"A":   "Class 14x 2-axle 'Pacer' DMU",
	"E":   "Class 158, 168, 170, 172, or 175 'Express' DMU",
	"N":   "Class 165/0 'Network Turbo' DMU",
	"S":   "Class 150, 153, 155, or 156 'Sprinter' DMU",
	"T":   "Class 165/1 or 166 'Network Turbo' DMU",
	"V":   "Class 220 or 221 'Voyager' DMU",
	"X":   "Class 159 'South Western Turbo' DMU",
	"D1":  "Vacuum-braked DMU with power car and trailer",
	"D2":  "Vacuum-braked DMU with two power cars and trailer",
	"D3":  "Vacuum-braked DMU with two power cars",
	"195": "Class 195 'Civity' DMU",
	"196": "Class 196 'Civity' DMU",
	"197": "Class 197 'Civity' DMU",
	"755": "Class 755 'FLIRT' bi-mode running on diesel",
	"777": "Class 777/1 'METRO' bi-mode running on battery",
	"800": "Class 800 'Azuma' bi-mode running on diesel",
	"802": "Class 800/802 'IET/Nova 1/Paragon' bi-mode running on diesel",
	"805":  "Class 805 'Hitachi AT300' bi-mode running on diesel",
	"1400": "Diesel locomotive hauling 1400 tons",
}

// emuTimingLoadDescriptions mirrors read_timing_load's "EML"|"EMU" arm
// (nr_importer.rs:1528-1535); any other non-empty load falls through to
// "Class <load> EMU".
var emuTimingLoadDescriptions = map[string]string{
	"AT":  "EMU with accelerated timings",
	"E":   "Class 458 EMU",
	"0":   "Class 380 EMU",
	"506": "Class 350/1 EMU",
}

func timingLoadDescription(power, load string, brMarkFourCoaches bool, line, col int) (string, error) {
	switch power {
	case "D":
		if load == "" {
			return "", nil
		}
		return haulageDescription("Diesel locomotive", load, brMarkFourCoaches), nil
	case "DEM", "DMU":
		if load == "" {
			return "", nil
		}
		if desc, ok := dmuTimingLoadDescriptions[load]; ok {
			return desc, nil
		}
		return "", enumErr(line, col, "timing load", load)
	case "E":
		if load == "" {
			return "", nil
		}
		if load == "325" {
			return "Class 325 Parcels EMU", nil
		}
		return haulageDescription("Electric locomotive", load, brMarkFourCoaches), nil
	case "ED":
		if load == "" {
			return "", nil
		}
		return haulageDescription("Electric and diesel locomotive", load, brMarkFourCoaches), nil
	case "EML", "EMU":
		if load == "" {
			return "", nil
		}
		if desc, ok := emuTimingLoadDescriptions[load]; ok {
			return desc, nil
		}
		return "Class " + load + " EMU", nil
	case "HST":
		return "High Speed Train (IC125)", nil
	default:
		return "", nil
	}
}

func haulageDescription(locoKind, tons string, brMarkFourCoaches bool) string {
	if brMarkFourCoaches {
		return locoKind + " hauling " + tons + " tons of BR Mark 4 Coaches"
	}
	return locoKind + " hauling " + tons + " tons"
}
