package cif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// padLine pads s to 80 characters so tests can write only the columns they
// care about.
func padLine(s string) string {
	for len(s) < 80 {
		s += " "
	}
	return s[:80]
}

func TestParseLineEmptyAndShort(t *testing.T) {
	rec, err := ParseLine("", 1)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = ParseLine("HDshort", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RecordLengthWrong")
}

func TestParseLineUnknownRecordType(t *testing.T) {
	_, err := ParseLine(padLine("QQ"), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UnknownRecordType")
}

func TestParseHeaderFull(t *testing.T) {
	line := "HD" + "TESTPROVIDER        " + "240101120000" // provider(20)+timestamp placeholder
	line = padLine(line)
	// rebuild precisely: cols 3-22 provider, 23-32 timestamp YYMMDDHHMM, 47 F, 49-54/55-60 dates
	b := []byte(padLine(""))
	copy(b[0:2], "HD")
	copy(b[2:22], "TESTPROVIDER        ")
	copy(b[22:32], "2401011200")
	b[46] = 'F'
	copy(b[48:54], "010124")
	copy(b[54:60], "311224")
	rec, err := ParseLine(string(b), 1)
	require.NoError(t, err)
	h, ok := rec.(HeaderRecord)
	require.True(t, ok)
	assert.True(t, h.Full)
	require.NotNil(t, h.ValidBegin)
	require.NotNil(t, h.ValidEnd)
	assert.Equal(t, 2024, h.ValidBegin.Year())
	assert.Equal(t, 2024, h.ValidEnd.Year())
}

func TestParseTiploc(t *testing.T) {
	b := []byte(padLine(""))
	copy(b[0:2], "TI")
	copy(b[2:9], "WATRLOO")
	copy(b[18:44], "LONDON WATERLOO           ")
	copy(b[53:56], "WAT")
	rec, err := ParseLine(string(b), 1)
	require.NoError(t, err)
	ti, ok := rec.(TiplocRecord)
	require.True(t, ok)
	assert.Equal(t, "WATRLOO", ti.ID)
	assert.Equal(t, "WAT", ti.PublicID)
}

func TestParseBasicScheduleMinimal(t *testing.T) {
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
	b[66] = ' '
	b[67] = ' '
	b[68] = ' '
	b[79] = ' '
	rec, err := ParseLine(string(b), 1)
	require.NoError(t, err)
	bs, ok := rec.(BasicScheduleRecord)
	require.True(t, ok)
	assert.Equal(t, "G12345", bs.TrainID)
	assert.False(t, bs.IsSTP)
	assert.True(t, bs.Days.Monday)
	assert.False(t, bs.Days.Saturday)
}

func TestParseLocationOriginAndTerminating(t *testing.T) {
	lo := []byte(padLine(""))
	copy(lo[0:2], "LO")
	copy(lo[2:9], "WATRLOO")
	copy(lo[10:15], "0800 ")
	copy(lo[15:19], "0800")
	rec, err := ParseLine(string(lo), 1)
	require.NoError(t, err)
	l, ok := rec.(LocationRecord)
	require.True(t, ok)
	require.NotNil(t, l.WorkingDep)
	assert.Equal(t, 8, l.WorkingDep.Hour)

	lt := []byte(padLine(""))
	copy(lt[0:2], "LT")
	copy(lt[2:9], "WATRLOO")
	copy(lt[10:15], "0900 ")
	rec2, err := ParseLine(string(lt), 1)
	require.NoError(t, err)
	l2, ok := rec2.(LocationRecord)
	require.True(t, ok)
	require.NotNil(t, l2.WorkingArr)
	assert.Equal(t, KindTerminating, l2.Kind())
}

func TestParseLocationTerminatingMissingArrivalErrors(t *testing.T) {
	lt := []byte(padLine(""))
	copy(lt[0:2], "LT")
	copy(lt[2:9], "WATRLOO")
	_, err := ParseLine(string(lt), 1)
	require.Error(t, err)
}
