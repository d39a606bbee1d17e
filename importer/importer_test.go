package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// padLine pads s to 80 characters, mirroring cif's test helper since this
// package has no access to cif's unexported one.
func padLine(s string) string {
	for len(s) < 80 {
		s += " "
	}
	return s[:80]
}

func bsLine() string {
	b := []byte(padLine(""))
	copy(b[0:2], "BS")
	b[2] = 'N'
	copy(b[3:9], "G12345")
	copy(b[9:15], "240101")
	copy(b[15:21], "241231")
	copy(b[21:28], "1111100")
	b[29] = 'P'
	copy(b[30:32], "OO")
	copy(b[32:36], "1A23")
	copy(b[36:40], "1A23")
	return string(b)
}

func loLine() string {
	b := []byte(padLine(""))
	copy(b[0:2], "LO")
	copy(b[2:9], "WATRLOO")
	copy(b[10:15], "0800 ")
	copy(b[15:19], "0800")
	return string(b)
}

func ltLine() string {
	b := []byte(padLine(""))
	copy(b[0:2], "LT")
	copy(b[2:9], "READING")
	copy(b[10:15], "0900 ")
	return string(b)
}

func tiLine(id, name, public string) string {
	b := []byte(padLine(""))
	copy(b[0:2], "TI")
	copy(b[2:9], padRight(id, 7))
	copy(b[18:44], padRight(name, 26))
	copy(b[53:56], padRight(public, 3))
	return string(b)
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s[:n]
}

func bulkFile() string {
	lines := []string{
		tiLine("WATRLOO", "LONDON WATERLOO", "WAT"),
		tiLine("READING", "READING", "RDG"),
		bsLine(),
		loLine(),
		ltLine(),
		padLine("ZZ"),
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestApplyCIFBuildsCommittedTrain(t *testing.T) {
	im := New()
	result, err := im.ApplyCIF(strings.NewReader(bulkFile()))
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	trains := im.Schedule.Trains["G12345"]
	require.Len(t, trains, 1)
	require.Len(t, trains[0].Route, 2)
	assert.Equal(t, "WATRLOO", trains[0].Route[0].ID)
	assert.Equal(t, "READING", trains[0].Route[1].ID)

	loc, ok := im.Locations.Lookup("WATRLOO")
	require.True(t, ok)
	assert.Equal(t, "WAT", loc.PublicID)
}

func TestApplyCIFWithoutSentinelStillFinalises(t *testing.T) {
	im := New()
	withoutZZ := strings.Join([]string{bsLine(), loLine(), ltLine()}, "\n") + "\n"
	result, err := im.ApplyCIF(strings.NewReader(withoutZZ))
	require.NoError(t, err)
	assert.NotNil(t, result)

	trains := im.Schedule.Trains["G12345"]
	require.Len(t, trains, 1)
}

func TestApplyCIFRejectsBadLineLength(t *testing.T) {
	im := New()
	_, err := im.ApplyCIF(strings.NewReader("HDshort\n"))
	require.Error(t, err)
}

func TestApplyVSTPTagsVeryShortTerm(t *testing.T) {
	im := New()
	msg := `{
		"VSTPCIFMsgV1": {
			"schedule": {
				"transaction_type": "Create",
				"cif_stp_indicator": "N",
				"CIF_train_uid": "Z98765",
				"schedule_start_date": "2026-08-01",
				"schedule_end_date": "2026-08-01",
				"schedule_days_runs": "1000000",
				"train_status": "1",
				"schedule_segment": [
					{
						"signalling_id": "2A34",
						"CIF_train_category": "OO",
						"schedule_location": [
							{"scheduled_departure_time": "100000", "location": {"tiploc": {"tiploc_id": "PADTON"}}},
							{"scheduled_arrival_time": "103000", "location": {"tiploc": {"tiploc_id": "READING"}}}
						]
					}
				]
			}
		}
	}`

	result, err := im.ApplyVSTP([]byte(msg))
	require.NoError(t, err)
	assert.NotNil(t, result)

	trains := im.Schedule.Trains["Z98765"]
	require.Len(t, trains, 1)
	require.NotNil(t, trains[0].Source)
	assert.Equal(t, model.VeryShortTerm, *trains[0].Source)
}
