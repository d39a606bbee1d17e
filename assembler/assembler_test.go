package assembler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/overlay"
)

func newTestAssembler() *Assembler {
	sched := &model.Schedule{Trains: make(map[string][]*model.Train)}
	eng := overlay.NewEngine(sched, zerolog.Nop())
	return New(eng)
}

func tod(h, m int) *model.TimeOfDay {
	return &model.TimeOfDay{Hour: h, Minute: m}
}

func basicSchedule(id string, begin, end string) cif.BasicScheduleRecord {
	b, _ := time.Parse("2006-01-02", begin)
	e, _ := time.Parse("2006-01-02", end)
	return cif.BasicScheduleRecord{
		Modification: model.Insert,
		TrainID:      id,
		Begin:        b,
		End:          e,
		Days:         model.DaysOfWeek{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true},
	}
}

func TestApplyOriginThenIntermediate(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))

	require.NoError(t, a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindOrigin,
		ID:         "PADTON",
		WorkingDep: tod(10, 0),
	}, 2))

	require.NoError(t, a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindIntermediate,
		ID:         "READING",
		WorkingArr: tod(10, 30),
		WorkingDep: tod(10, 32),
	}, 3))

	require.Len(t, a.current.Route, 2)
	assert.Equal(t, 0, a.current.Route[0].WorkingDepDay)
	assert.Equal(t, 0, a.current.Route[1].WorkingArrDay)
	assert.Equal(t, 0, a.current.Route[1].WorkingDepDay)
}

func TestApplyIntermediateRollsOverDay(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindOrigin,
		ID:         "PADTON",
		WorkingDep: tod(23, 50),
	}, 2))

	require.NoError(t, a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindIntermediate,
		ID:         "READING",
		WorkingArr: tod(0, 10),
		WorkingDep: tod(0, 12),
	}, 3))

	assert.Equal(t, 1, a.current.Route[1].WorkingArrDay)
	assert.Equal(t, 1, a.current.Route[1].WorkingDepDay)
}

func TestApplyOriginRejectsNonEmptyRoute(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 2))

	err := a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "SLOUGH", WorkingDep: tod(10, 5)}, 3)
	require.Error(t, err)
}

func TestApplyTerminatingRequiresArrival(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 2))

	err := a.ApplyLocation(cif.LocationRecord{Which: cif.KindTerminating, ID: "READING"}, 3)
	require.Error(t, err)
}

func TestApplyTerminatingClearsCurrent(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 2))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindTerminating, ID: "READING", WorkingArr: tod(10, 30)}, 3))

	assert.Nil(t, a.current)
}

func TestChangeEnRouteLocationMismatchErrors(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 2))
	require.NoError(t, a.ApplyChangeEnRoute(cif.ChangeEnRouteRecord{ID: "READING"}, 3))

	err := a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindIntermediate,
		ID:         "SLOUGH",
		WorkingArr: tod(10, 20),
		WorkingDep: tod(10, 22),
	}, 4)
	require.Error(t, err)
}

func TestChangeEnRouteAttachesToMatchingLocation(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 2))
	require.NoError(t, a.ApplyChangeEnRoute(cif.ChangeEnRouteRecord{ID: "READING", PublicID: "2A34"}, 3))

	require.NoError(t, a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindIntermediate,
		ID:         "READING",
		WorkingArr: tod(10, 30),
		WorkingDep: tod(10, 32),
	}, 4))

	require.NotNil(t, a.current.Route[1].ChangeEnRoute)
	assert.Equal(t, "2A34", a.current.Route[1].ChangeEnRoute.PublicID)
}

func TestApplyLocationWithoutPrecedingBSErrors(t *testing.T) {
	a := newTestAssembler()
	err := a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 1)
	require.Error(t, err)
}

func TestIntermediateInvalidTimeComboErrors(t *testing.T) {
	a := newTestAssembler()
	require.NoError(t, a.ApplyBasicSchedule(basicSchedule("Y12345", "2026-01-01", "2026-12-31"), 1))
	require.NoError(t, a.ApplyLocation(cif.LocationRecord{Which: cif.KindOrigin, ID: "PADTON", WorkingDep: tod(10, 0)}, 2))

	err := a.ApplyLocation(cif.LocationRecord{
		Which:      cif.KindIntermediate,
		ID:         "READING",
		WorkingArr: tod(10, 30),
	}, 3)
	require.Error(t, err)
}
