package brownsville

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timep(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func indexedRecords() []Record {
	return []Record{
		{BuildingID: 20, MajorCategory: "HEAT/HOT WATER", MinorCategory: "ENTIRE BUILDING", StatusDate: timep(2021, time.January, 5)},
		{BuildingID: 10, MajorCategory: "HEAT/HOT WATER", MinorCategory: "APARTMENT ONLY", StatusDate: timep(2021, time.February, 10)},
		{BuildingID: 20, MajorCategory: "HEAT/HOT WATER", MinorCategory: "ENTIRE BUILDING", StatusDate: timep(2021, time.July, 1)},
		{BuildingID: 20, MajorCategory: "PLUMBING", MinorCategory: "BATHTUB/SHOWER", StatusDate: timep(2021, time.October, 20)},
	}
}

func TestBuildingIndexLookups(t *testing.T) {
	idx := NewBuildingIndex(indexedRecords())

	assert.Equal(t, []int64{10, 20}, idx.Buildings())
	assert.Len(t, idx.Rows(20), 3)
	assert.Empty(t, idx.Rows(999), "unknown building yields an empty slice")
	assert.Nil(t, idx.Record(999))

	r := idx.Record(10)
	require.NotNil(t, r)
	assert.Equal(t, "APARTMENT ONLY", r.MinorCategory)
}

func TestFeatureOccurrences(t *testing.T) {
	idx := NewBuildingIndex(indexedRecords())

	counts, err := idx.FeatureOccurrences(20, []string{"majorcategory", "minorcategory"}, 0)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, []string{"HEAT/HOT WATER", "ENTIRE BUILDING"}, counts[0].Values)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)

	top, err := idx.FeatureOccurrences(20, []string{"majorcategory", "minorcategory"}, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestFeatureOccurrencesInvalidFeature(t *testing.T) {
	idx := NewBuildingIndex(indexedRecords())

	_, err := idx.FeatureOccurrences(20, []string{"nonexistent"}, 0)
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = idx.FeatureOccurrences(20, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestDateRange(t *testing.T) {
	records := indexedRecords()

	min, max, err := DateRange(records, "status")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC), min)
	assert.Equal(t, time.Date(2021, time.October, 20, 0, 0, 0, 0, time.UTC), max)

	_, _, err = DateRange(records, "bogus")
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestDateRangeSkipsNilDates(t *testing.T) {
	records := []Record{
		{StatusDate: timep(2021, time.March, 1)},
		{},
	}

	min, max, err := DateRange(records, "status")
	require.NoError(t, err)
	assert.Equal(t, min, max)
}

func TestRecordsByMonthAndSeason(t *testing.T) {
	records := indexedRecords()

	months := RecordsByMonth(records)
	assert.Equal(t, 1, months[0])
	assert.Equal(t, 1, months[1])
	assert.Equal(t, 1, months[6])
	assert.Equal(t, 1, months[9])

	seasons := RecordsBySeason(records)
	assert.Equal(t, [4]int{2, 0, 1, 1}, seasons)
}
