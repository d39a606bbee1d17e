package vstp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
)

func decodeSample(t *testing.T) *Message {
	t.Helper()
	msg, err := Decode([]byte(sampleMessage))
	require.NoError(t, err)
	return msg
}

func TestToPlanBasicSchedule(t *testing.T) {
	msg := decodeSample(t)
	plan, err := ToPlan(msg)
	require.NoError(t, err)

	assert.Equal(t, model.Insert, plan.BasicSchedule.Modification)
	assert.Equal(t, "Z12345", plan.BasicSchedule.TrainID)
	assert.True(t, plan.BasicSchedule.IsSTP)
	assert.Equal(t, model.OrdinaryPassenger, plan.BasicSchedule.TrainType)
	assert.True(t, plan.BasicSchedule.Days.Monday)
	assert.False(t, plan.BasicSchedule.Days.Tuesday)
}

func TestToPlanRouteSteps(t *testing.T) {
	msg := decodeSample(t)
	plan, err := ToPlan(msg)
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, cif.KindOrigin, plan.Steps[0].Location.Which)
	assert.Equal(t, "PADTON", plan.Steps[0].Location.ID)
	require.NotNil(t, plan.Steps[0].Location.WorkingDep)
	assert.Equal(t, 10, plan.Steps[0].Location.WorkingDep.Hour)
	assert.Equal(t, 0, plan.Steps[0].Location.WorkingDep.Minute)

	assert.Equal(t, cif.KindTerminating, plan.Steps[1].Location.Which)
	assert.Equal(t, "READING", plan.Steps[1].Location.ID)
	require.NotNil(t, plan.Steps[1].Location.WorkingArr)
	assert.Equal(t, 10, plan.Steps[1].Location.WorkingArr.Hour)
	assert.Equal(t, 30, plan.Steps[1].Location.WorkingArr.Minute)
	assert.Nil(t, plan.Steps[1].ChangeEnRoute)
}

func TestToPlanRejectsUnknownTransactionType(t *testing.T) {
	msg := decodeSample(t)
	msg.CIFMsgV1.Schedule.TransactionType = "Bogus"
	_, err := ToPlan(msg)
	require.Error(t, err)
}

func TestToPlanRejectsUnknownTrainCategory(t *testing.T) {
	msg := decodeSample(t)
	msg.CIFMsgV1.Schedule.ScheduleSegment[0].CIFTrainCategory = "??"
	_, err := ToPlan(msg)
	require.Error(t, err)
}

func TestToPlanFallsBackToStatusWhenCategoryBlank(t *testing.T) {
	msg := decodeSample(t)
	msg.CIFMsgV1.Schedule.ScheduleSegment[0].CIFTrainCategory = ""
	msg.CIFMsgV1.Schedule.TrainStatus = "F"
	plan, err := ToPlan(msg)
	require.NoError(t, err)
	assert.Equal(t, model.Freight, plan.BasicSchedule.TrainType)
}

func TestToPlanChangeEnRouteOnLaterSegment(t *testing.T) {
	msg := decodeSample(t)
	seg := msg.CIFMsgV1.Schedule.ScheduleSegment[0]
	seg.ScheduleLocation = seg.ScheduleLocation[:1]
	var loc2 Location
	loc2.Tiploc.TiplocID = "READING"
	second := ScheduleSegment{
		SignallingID:     "2A35",
		CIFTrainCategory: "XX",
		ScheduleLocation: []ScheduleLocation{
			{
				ScheduledArrivalTime: "103000",
				Location:             loc2,
			},
		},
	}
	msg.CIFMsgV1.Schedule.ScheduleSegment = []ScheduleSegment{seg, second}

	plan, err := ToPlan(msg)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.NotNil(t, plan.Steps[1].ChangeEnRoute)
	assert.Equal(t, "READING", plan.Steps[1].ChangeEnRoute.ID)
	assert.Equal(t, model.ExpressPassenger, plan.Steps[1].ChangeEnRoute.TrainType)
}
