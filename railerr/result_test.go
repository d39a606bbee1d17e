package railerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := NewFieldError(KindFieldParse, 12, 34, "bad date", cause)

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "line 12 col 34")
}

func TestStructuredError(t *testing.T) {
	e := NewStructuredError(KindUnknownEnum, "schedule.train_status", "unrecognised status", nil)
	assert.Equal(t, "schedule.train_status", e.Field)
	assert.Contains(t, e.Error(), "schedule.train_status")
}

func TestResultAccumulatesWarnings(t *testing.T) {
	r := NewResult()
	require.Empty(t, r.Warnings)

	r.AddWarning("finalise", "orphan overlay store not empty")
	r.AddWarning("assoc", "STP-Amend/Delete with no baseline")

	assert.Len(t, r.Warnings, 2)
	assert.Equal(t, "finalise", r.Warnings[0].Stage)

	r.Finalize()
	assert.GreaterOrEqual(t, r.Duration().Nanoseconds(), int64(0))
}
