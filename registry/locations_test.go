package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

func TestInsertAndLookup(t *testing.T) {
	r := New()
	r.Insert(&model.Location{ID: "WATRLOO", Name: "London Waterloo", PublicID: "WAT"})

	loc, ok := r.Lookup("WATRLOO")
	require.True(t, ok)
	assert.Equal(t, "London Waterloo", loc.Name)

	byPublic := r.LookupByPublicID("WAT")
	require.Len(t, byPublic, 1)
	assert.Equal(t, "WATRLOO", byPublic[0].ID)
}

func TestAmendUnknownErrors(t *testing.T) {
	r := New()
	err := r.Amend(&model.Location{ID: "NOPE", Name: "Nowhere"})
	assert.Error(t, err)
}

func TestAmendChangesPublicIndex(t *testing.T) {
	r := New()
	r.Insert(&model.Location{ID: "WATRLOO", Name: "London Waterloo", PublicID: "WAT"})

	err := r.Amend(&model.Location{ID: "WATRLOO", Name: "London Waterloo", PublicID: "WLO"})
	require.NoError(t, err)

	assert.Empty(t, r.LookupByPublicID("WAT"))
	byNew := r.LookupByPublicID("WLO")
	require.Len(t, byNew, 1)
}

func TestDelete(t *testing.T) {
	r := New()
	r.Insert(&model.Location{ID: "WATRLOO", Name: "London Waterloo", PublicID: "WAT"})
	r.Delete("WATRLOO")

	_, ok := r.Lookup("WATRLOO")
	assert.False(t, ok)
	assert.Empty(t, r.LookupByPublicID("WAT"))
	assert.Equal(t, 0, r.Len())
}

func TestSharedPublicIDAcrossLocations(t *testing.T) {
	r := New()
	r.Insert(&model.Location{ID: "STFD", Name: "Stratford (low level)", PublicID: "SRA"})
	r.Insert(&model.Location{ID: "STFDIC", Name: "Stratford International", PublicID: "SRA"})

	locs := r.LookupByPublicID("SRA")
	assert.Len(t, locs, 2)
}
