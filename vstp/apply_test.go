package vstp

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/assembler"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/overlay"
)

func newTestAssembler() *assembler.Assembler {
	sched := &model.Schedule{Trains: make(map[string][]*model.Train)}
	eng := overlay.NewEngine(sched, zerolog.Nop())
	a := assembler.New(eng)
	a.STPSource = model.VeryShortTerm
	return a
}

func TestApplyPlanBuildsCommittedTrain(t *testing.T) {
	a := newTestAssembler()
	msg := decodeSample(t)
	plan, err := ToPlan(msg)
	require.NoError(t, err)

	require.NoError(t, Apply(a, plan))

	trains := a.Overlay.Schedule.Trains["Z12345"]
	require.Len(t, trains, 1)
	require.NotNil(t, trains[0].Source)
	assert.Equal(t, model.VeryShortTerm, *trains[0].Source)
	require.Len(t, trains[0].Route, 2)
	assert.Equal(t, "PADTON", trains[0].Route[0].ID)
	assert.Equal(t, "READING", trains[0].Route[1].ID)
}
