package vstp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMessage = `{
	"VSTPCIFMsgV1": {
		"schedule": {
			"transaction_type": "Create",
			"cif_stp_indicator": "N",
			"CIF_train_uid": "Z12345",
			"schedule_start_date": "2026-08-01",
			"schedule_end_date": "2026-08-01",
			"schedule_days_runs": "1000000",
			"train_status": "1",
			"schedule_segment": [
				{
					"signalling_id": "2A34",
					"atoc_code": "GW",
					"CIF_train_category": "OO",
					"CIF_power_type": "EMU",
					"schedule_location": [
						{
							"scheduled_departure_time": "100000",
							"CIF_activity": "TB",
							"location": {"tiploc": {"tiploc_id": "PADTON"}}
						},
						{
							"scheduled_arrival_time": "103000",
							"CIF_activity": "TF",
							"location": {"tiploc": {"tiploc_id": "READING"}}
						}
					]
				}
			]
		}
	}
}`

func TestDecodeValidMessage(t *testing.T) {
	msg, err := Decode([]byte(sampleMessage))
	require.NoError(t, err)
	assert.Equal(t, TransactionCreate, msg.CIFMsgV1.Schedule.TransactionType)
	assert.Equal(t, "Z12345", msg.CIFMsgV1.Schedule.CIFTrainUID)
	require.Len(t, msg.CIFMsgV1.Schedule.ScheduleSegment, 1)
	assert.Equal(t, "PADTON", msg.CIFMsgV1.Schedule.ScheduleSegment[0].ScheduleLocation[0].Location.Tiploc.TiplocID)
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)
}

func TestDecodeRejectsNoSegments(t *testing.T) {
	_, err := Decode([]byte(`{"VSTPCIFMsgV1":{"schedule":{"transaction_type":"Create","schedule_segment":[]}}}`))
	require.Error(t, err)
}
