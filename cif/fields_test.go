package cif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

func TestDecodeActivitiesMapsEachCodeToItsOwnFlag(t *testing.T) {
	cases := []struct {
		code string
		get  func(model.Activities) bool
	}{
		{"A ", func(a model.Activities) bool { return a.StopsToPass }},
		{"AE", func(a model.Activities) bool { return a.AttachOrDetachAssistingLoco }},
		{"AX", func(a model.Activities) bool { return a.XOnArrival }},
		{"BL", func(a model.Activities) bool { return a.StopsForBankingLoco }},
		{"C ", func(a model.Activities) bool { return a.StopsForCrewChange }},
		{"D ", func(a model.Activities) bool { return a.SetDownOnly }},
		{"N ", func(a model.Activities) bool { return a.UnadvertisedStop }},
		{"S ", func(a model.Activities) bool { return a.StaffStop }},
		{"T ", func(a model.Activities) bool { return a.NormalPassengerStop }},
		{"TW", func(a model.Activities) bool { return a.StopsForTokenEtc }},
		{"U ", func(a model.Activities) bool { return a.PickUpOnly }},
		{"X ", func(a model.Activities) bool { return a.StopsToCross }},
	}

	for _, tc := range cases {
		a, err := DecodeActivities(tc.code, 1, 1)
		require.NoError(t, err, "code %q", tc.code)
		assert.True(t, tc.get(a), "code %q did not set its flag", tc.code)
	}
}

func TestDecodeActivitiesDetachAttachShorthand(t *testing.T) {
	a, err := DecodeActivities("-D", 1, 1)
	require.NoError(t, err)
	assert.True(t, a.Detach)
	assert.False(t, a.Attach)

	a, err = DecodeActivities("-U", 1, 1)
	require.NoError(t, err)
	assert.True(t, a.Attach)
	assert.False(t, a.Detach)

	a, err = DecodeActivities("-T", 1, 1)
	require.NoError(t, err)
	assert.True(t, a.Detach)
	assert.True(t, a.Attach)
}

func TestDecodeActivitiesRejectsUnknownCode(t *testing.T) {
	_, err := DecodeActivities("ZZ", 1, 1)
	require.Error(t, err)
}

func TestDecodeReservationsBlankWithoutSeatsOrSleepersIsNotApplicable(t *testing.T) {
	r, err := DecodeReservations(' ', model.ClassNone, model.ClassNone, false, false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationNotApplicable, r.Wheelchairs)
}

func TestDecodeReservationsBlankWithSeatsIsImpossibleUnlessFlagged(t *testing.T) {
	r, err := DecodeReservations(' ', model.ClassBoth, model.ClassNone, false, false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationImpossible, r.Wheelchairs)

	r, err = DecodeReservations(' ', model.ClassBoth, model.ClassNone, true, false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPossible, r.Wheelchairs)
}

func TestDecodePowerTimingDieselLocomotiveTonnage(t *testing.T) {
	power, desc, err := DecodePowerTiming("D", "100", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DieselLocomotive, power)
	assert.Equal(t, "Diesel locomotive hauling 100 tons", desc)

	_, desc, err = DecodePowerTiming("D", "100", true, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Diesel locomotive hauling 100 tons of BR Mark 4 Coaches", desc)
}

func TestDecodePowerTimingDMUVariantSelectedByLoadFirstChar(t *testing.T) {
	power, _, err := DecodePowerTiming("DMU", "D1", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DieselMechanicalMultipleUnit, power)

	power, _, err = DecodePowerTiming("DMU", "V", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DieselElectricMultipleUnit, power)

	power, _, err = DecodePowerTiming("DMU", "", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DieselHydraulicMultipleUnit, power)
}

func TestDecodePowerTimingBareElectricIsLocomotiveNotMultipleUnit(t *testing.T) {
	power, _, err := DecodePowerTiming("E", "", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ElectricLocomotive, power)
}

func TestDecodePowerTimingHSTIsDieselElectricMultipleUnit(t *testing.T) {
	power, desc, err := DecodePowerTiming("HST", "", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DieselElectricMultipleUnit, power)
	assert.Equal(t, "High Speed Train (IC125)", desc)
}

func TestDecodePowerTimingEMUFallsBackToClassDescription(t *testing.T) {
	_, desc, err := DecodePowerTiming("EMU", "999", false, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Class 999 EMU", desc)
}
