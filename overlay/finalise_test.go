package overlay

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

func allDays() model.DaysOfWeek {
	return model.DaysOfWeek{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, Saturday: true, Sunday: true}
}

func period(begin, end string) model.ValidityPeriod {
	b, err := time.Parse("2006-01-02", begin)
	if err != nil {
		panic(err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		panic(err)
	}
	return model.ValidityPeriod{Begin: b, End: e}
}

func newTestEngine() *Engine {
	sched := &model.Schedule{Trains: make(map[string][]*model.Train)}
	return NewEngine(sched, zerolog.Nop())
}

func TestFlushPendingAttachesToMatchingLocation(t *testing.T) {
	e := newTestEngine()

	target := &model.Train{
		ID:         "Y12345",
		Validity:   []model.ValidityPeriod{period("2026-01-01", "2026-12-31")},
		DaysOfWeek: allDays(),
		Route: []*model.TrainLocation{
			{ID: "PADTON", IDSuffix: ""},
		},
	}
	e.Schedule.Trains["Y12345"] = []*model.Train{target}

	node := &model.AssociationNode{
		OtherTrainID: "X98765",
		Validity:     []model.ValidityPeriod{period("2026-01-01", "2026-12-31")},
		Days:         allDays(),
	}
	e.Pending.Put("Y12345", "PADTON", "", &PendingEntry{Node: node, Category: model.Join})

	result := railerr.NewResult()
	require.NoError(t, e.Finalise(result))

	assert.Empty(t, result.Warnings)
	assert.Equal(t, 0, e.Pending.Len())
	require.Len(t, target.Route[0].JoinsTo, 1)
	assert.Same(t, node, target.Route[0].JoinsTo[0])
}

func TestFlushPendingWarnsWhenNoMatchingLocation(t *testing.T) {
	e := newTestEngine()

	target := &model.Train{
		ID:         "Y12345",
		Validity:   []model.ValidityPeriod{period("2026-01-01", "2026-12-31")},
		DaysOfWeek: allDays(),
		Route: []*model.TrainLocation{
			{ID: "OTHERLOC", IDSuffix: ""},
		},
	}
	e.Schedule.Trains["Y12345"] = []*model.Train{target}

	node := &model.AssociationNode{
		OtherTrainID: "X98765",
		Validity:     []model.ValidityPeriod{period("2026-01-01", "2026-12-31")},
		Days:         allDays(),
	}
	e.Pending.Put("Y12345", "PADTON", "", &PendingEntry{Node: node, Category: model.Join})

	result := railerr.NewResult()
	require.NoError(t, e.Finalise(result))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "finalise", result.Warnings[0].Stage)
}

func TestFlushPendingErrorsOnUnknownTrain(t *testing.T) {
	e := newTestEngine()

	node := &model.AssociationNode{
		OtherTrainID: "X98765",
		Validity:     []model.ValidityPeriod{period("2026-01-01", "2026-12-31")},
		Days:         allDays(),
	}
	e.Pending.Put("UNKNOWN1", "PADTON", "", &PendingEntry{Node: node, Category: model.Join})

	result := railerr.NewResult()
	err := e.Finalise(result)
	require.Error(t, err)

	var railErr *railerr.Error
	require.ErrorAs(t, err, &railErr)
	assert.Equal(t, railerr.KindReferentialIntegrity, railErr.Kind)
}

func TestFlushOrphansAttachesToLaterBaseline(t *testing.T) {
	e := newTestEngine()

	replacement := &model.Train{
		ID:         "Y12345",
		Validity:   []model.ValidityPeriod{period("2026-03-01", "2026-03-05")},
		DaysOfWeek: allDays(),
	}
	e.Orphans.Put("Y12345", replacement.Validity[0].Begin, replacement)

	baseline := &model.Train{
		ID:         "Y12345",
		Validity:   []model.ValidityPeriod{period("2026-01-01", "2026-12-31")},
		DaysOfWeek: allDays(),
	}
	e.Schedule.Trains["Y12345"] = []*model.Train{baseline}

	result := railerr.NewResult()
	require.NoError(t, e.Finalise(result))

	assert.Empty(t, result.Warnings)
	assert.Equal(t, 0, e.Orphans.Len())
	require.Len(t, baseline.Replacements, 1)
	assert.Same(t, replacement, baseline.Replacements[0])
}

func TestFlushOrphansWarnsWhenStillUnattached(t *testing.T) {
	e := newTestEngine()

	replacement := &model.Train{
		ID:         "Y12345",
		Validity:   []model.ValidityPeriod{period("2026-03-01", "2026-03-05")},
		DaysOfWeek: allDays(),
	}
	e.Orphans.Put("Y12345", replacement.Validity[0].Begin, replacement)

	result := railerr.NewResult()
	require.NoError(t, e.Finalise(result))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 1, e.Orphans.Len())
}
