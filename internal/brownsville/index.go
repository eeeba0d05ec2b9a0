package brownsville

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidColumn reports a feature name outside the queryable column set.
var ErrInvalidColumn = eris.New("brownsville: invalid column name")

// BuildingIndex maps building ids to the rows describing them. It is built
// once over a record slice and replaces ad hoc position-based searches.
type BuildingIndex struct {
	records []Record
	rows    map[int64][]int
}

// NewBuildingIndex builds the index over the given records.
func NewBuildingIndex(records []Record) *BuildingIndex {
	idx := &BuildingIndex{
		records: records,
		rows:    make(map[int64][]int),
	}
	for i, r := range records {
		idx.rows[r.BuildingID] = append(idx.rows[r.BuildingID], i)
	}
	return idx
}

// Buildings returns the distinct building ids, ascending.
func (idx *BuildingIndex) Buildings() []int64 {
	ids := make([]int64, 0, len(idx.rows))
	for id := range idx.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rows returns the row positions of a building. An unknown id yields an
// empty slice, not an error.
func (idx *BuildingIndex) Rows(buildingID int64) []int {
	return idx.rows[buildingID]
}

// Record returns the first record of a building, or nil when the id is
// unknown.
func (idx *BuildingIndex) Record(buildingID int64) *Record {
	rows := idx.rows[buildingID]
	if len(rows) == 0 {
		return nil
	}
	return &idx.records[rows[0]]
}

// featureValue reads a queryable feature of a record by column name.
func featureValue(r *Record, feature string) (string, error) {
	switch feature {
	case "unittype":
		return r.UnitType, nil
	case "spacetype":
		return r.SpaceType, nil
	case "type":
		return r.Type, nil
	case "majorcategory":
		return r.MajorCategory, nil
	case "minorcategory":
		return r.MinorCategory, nil
	case "code":
		return r.Code, nil
	case "status":
		return r.Status, nil
	case "statusdescriptionshort":
		return r.StatusDescriptionShort, nil
	case "streetname":
		return r.StreetName, nil
	case "apartment":
		return r.Apartment, nil
	case "address":
		return r.Address, nil
	default:
		return "", eris.Wrapf(ErrInvalidColumn, "%q", feature)
	}
}

// FeatureCount is one value combination and how often it occurs.
type FeatureCount struct {
	Values []string
	Count  int
}

// FeatureOccurrences returns the most common value combinations of the given
// features among a building's rows, descending by count. n caps the result
// size; n <= 0 returns everything.
func (idx *BuildingIndex) FeatureOccurrences(buildingID int64, features []string, n int) ([]FeatureCount, error) {
	if len(features) == 0 {
		return nil, eris.Wrap(ErrInvalidColumn, "no feature names given")
	}

	counts := make(map[string]int)
	for _, row := range idx.rows[buildingID] {
		values := make([]string, len(features))
		for i, feature := range features {
			v, err := featureValue(&idx.records[row], feature)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		counts[strings.Join(values, "\x00")]++
	}

	out := make([]FeatureCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, FeatureCount{Values: strings.Split(key, "\x00"), Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Join(out[i].Values, "\x00") < strings.Join(out[j].Values, "\x00")
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// DateRange returns the minimum and maximum date of the given date column,
// which must be "status" or "received".
func DateRange(records []Record, by string) (time.Time, time.Time, error) {
	var pick func(*Record) *time.Time
	switch by {
	case "status":
		pick = func(r *Record) *time.Time { return r.StatusDate }
	case "received":
		pick = func(r *Record) *time.Time { return r.ReceivedDate }
	default:
		return time.Time{}, time.Time{}, eris.Wrapf(ErrInvalidColumn, "%q", by)
	}

	var min, max time.Time
	for i := range records {
		d := pick(&records[i])
		if d == nil {
			continue
		}
		if min.IsZero() || d.Before(min) {
			min = *d
		}
		if max.IsZero() || d.After(max) {
			max = *d
		}
	}
	return min, max, nil
}

// RecordsByMonth counts complaints by status-date calendar month, indexed
// January through December.
func RecordsByMonth(records []Record) [12]int {
	var counts [12]int
	for i := range records {
		if d := records[i].StatusDate; d != nil {
			counts[int(d.Month())-1]++
		}
	}
	return counts
}

// Season labels for RecordsBySeason.
var Seasons = [4]string{"Winter", "Spring", "Summer", "Autumn"}

// RecordsBySeason rolls the monthly counts up into quarters aligned with the
// original reporting: Jan-Mar, Apr-Jun, Jul-Sep, Oct-Dec.
func RecordsBySeason(records []Record) [4]int {
	months := RecordsByMonth(records)
	var seasons [4]int
	for i, count := range months {
		seasons[i/3] += count
	}
	return seasons
}
