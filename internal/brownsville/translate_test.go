package brownsville

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(n int64) *int64 { return &n }

func TestLoadTranslationsEmbeddedDefault(t *testing.T) {
	tr, err := LoadTranslations("")
	require.NoError(t, err)

	assert.NotEmpty(t, tr.UnitType)
	assert.NotEmpty(t, tr.MajorCategory)
	assert.NotEmpty(t, tr.Code)
}

func TestLoadTranslationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unittype:\n  99: PENTHOUSE\n"), 0o644))

	tr, err := LoadTranslations(path)
	require.NoError(t, err)
	assert.Equal(t, "PENTHOUSE", tr.UnitType[99])

	_, err = LoadTranslations(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	tr := &Translations{
		UnitType:      map[int64]string{1: "APARTMENT"},
		MajorCategory: map[int64]string{9: "HEAT/HOT WATER"},
	}

	r := Record{
		UnitTypeID:      int64p(1),
		MajorCategoryID: int64p(9),
		MinorCategoryID: int64p(77),
	}
	tr.Apply(&r)

	assert.Equal(t, "APARTMENT", r.UnitType)
	assert.Equal(t, "HEAT/HOT WATER", r.MajorCategory)
	// An id with no table entry leaves the label empty.
	assert.Equal(t, "", r.MinorCategory)
	// A nil id leaves the label empty.
	assert.Equal(t, "", r.SpaceType)
}

func TestShortDescriptionUnmappedPassesThrough(t *testing.T) {
	text := "Some status sentence nobody has seen before."
	assert.Equal(t, text, shortDescription(text))
}

func TestShortDescriptionMapsKnownSentences(t *testing.T) {
	full := "The Department of Housing Preservation and Development inspected the following conditions. No violations were issued. The complaint has been closed."
	assert.Equal(t, "Inspected; no violations issued", shortDescription(full))
	assert.Equal(t, unknownStatus, shortDescription(unknownStatus))
}
