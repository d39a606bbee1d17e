package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBulkDate(t *testing.T) {
	got, err := ParseBulkDate("240301")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 3, int(got.Month()))
	assert.Equal(t, 1, got.Day())

	_, err = ParseBulkDate("2403")
	assert.Error(t, err)
}

func TestParseHeaderDate(t *testing.T) {
	got, err := ParseHeaderDate("010324")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 3, int(got.Month()))
	assert.Equal(t, 1, got.Day())
}

func TestParseStructuredDate(t *testing.T) {
	got, err := ParseStructuredDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 3, int(got.Month()))
	assert.Equal(t, 1, got.Day())

	_, err = ParseStructuredDate("01-03-2024")
	assert.Error(t, err)
}

func TestParseHeaderTimestamp(t *testing.T) {
	got, err := ParseHeaderTimestamp("2403011530")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 15, got.Hour())
	assert.Equal(t, 30, got.Minute())
}
