package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

func TestShiftDays(t *testing.T) {
	mondayOnly := model.DaysOfWeek{Monday: true}

	t.Run("zero delta returns the same mask", func(t *testing.T) {
		assert.Equal(t, mondayOnly, ShiftDays(mondayOnly, 0))
	})

	t.Run("minus one rotates Monday into Sunday", func(t *testing.T) {
		got := ShiftDays(mondayOnly, -1)
		assert.Equal(t, model.DaysOfWeek{Sunday: true}, got)
	})

	t.Run("plus one rotates Monday into Tuesday", func(t *testing.T) {
		got := ShiftDays(mondayOnly, 1)
		assert.Equal(t, model.DaysOfWeek{Tuesday: true}, got)
	})

	t.Run("round trip with opposite deltas restores the mask", func(t *testing.T) {
		weekday := model.DaysOfWeek{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true}
		got := ShiftDays(ShiftDays(weekday, 1), -1)
		assert.Equal(t, weekday, got)
	})

	t.Run("out of range delta panics", func(t *testing.T) {
		assert.Panics(t, func() { ShiftDays(mondayOnly, 2) })
	})
}

func TestShiftDate(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, London)

	require.Equal(t, base, ShiftDate(base, 0))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, London), ShiftDate(base, -1))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, London), ShiftDate(base, 1))
}
