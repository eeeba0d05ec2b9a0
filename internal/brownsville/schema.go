package brownsville

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/CahhBrownsville/Brownsville-project/internal/dataset"
)

// Record is one row of the unified Brownsville table: a complaint-problem
// occurrence joined to its housing maintenance complaint and, when the parcel
// is known, its PLUTO attributes. Nullable ids are pointers; nil means the
// source row had no value.
type Record struct {
	ComplaintID    int64  `csv:"complaintid"`
	BuildingID     int64  `csv:"buildingid"`
	BoroughID      int64  `csv:"boroughid"`
	Borough        string `csv:"borough"`
	HouseNumber    string `csv:"housenumber"`
	StreetName     string `csv:"streetname"`
	Address        string `csv:"address"`
	Zip            *int64 `csv:"zip"`
	Block          int64  `csv:"block"`
	Lot            int64  `csv:"lot"`
	BBL            int64  `csv:"bbl"`
	Apartment      string `csv:"apartment"`
	CommunityBoard int64  `csv:"communityboard"`

	ReceivedDate *time.Time `csv:"receiveddate"`
	Status       string     `csv:"status"`
	StatusDate   *time.Time `csv:"statusdate"`

	UnitTypeID      *int64 `csv:"unittypeid"`
	UnitType        string `csv:"unittype"`
	SpaceTypeID     *int64 `csv:"spacetypeid"`
	SpaceType       string `csv:"spacetype"`
	TypeID          *int64 `csv:"typeid"`
	Type            string `csv:"type"`
	MajorCategoryID *int64 `csv:"majorcategoryid"`
	MajorCategory   string `csv:"majorcategory"`
	MinorCategoryID *int64 `csv:"minorcategoryid"`
	MinorCategory   string `csv:"minorcategory"`
	CodeID          *int64 `csv:"codeid"`
	Code            string `csv:"code"`

	StatusDescription      string `csv:"statusdescription"`
	StatusDescriptionShort string `csv:"statusdescriptionshort"`

	BldgClass     string  `csv:"bldgclass"`
	BldgArea      int64   `csv:"bldgarea"`
	NumBldgs      int64   `csv:"numbldgs"`
	NumFloors     float64 `csv:"numfloors"`
	UnitsRes      int64   `csv:"unitsres"`
	UnitsTotal    int64   `csv:"unitstotal"`
	LandUse       int64   `csv:"landuse"`
	OwnerType     string  `csv:"ownertype"`
	OwnerName     string  `csv:"ownername"`
	OwnerTypeLong string  `csv:"ownertypelong"`
	YearBuilt     int64   `csv:"yearbuilt"`
	YearAlter1    int64   `csv:"yearalter1"`
	YearAlter2    int64   `csv:"yearalter2"`

	Latitude  *float64 `csv:"latitude"`
	Longitude *float64 `csv:"longitude"`
}

// joinedColumns is the fixed projection of the housing-maintenance /
// complaint-problems join, in output order. Projection fails if the joined
// table is missing any of them.
var joinedColumns = []string{
	"complaintid", "buildingid", "boroughid", "borough", "housenumber",
	"streetname", "zip", "block", "lot", "apartment", "communityboard",
	"receiveddate", "status", "unittypeid", "spacetypeid", "typeid",
	"majorcategoryid", "minorcategoryid", "codeid", "statusdate",
	"statusdescription",
}

// dateLayouts are the timestamp forms the remote service emits.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func parseDate(cell string) *time.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return &t
		}
	}
	return nil
}

func parseInt(cell string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseNullableInt(cell string) *int64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	n, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		// Socrata number columns occasionally come back as decimals.
		f, ferr := strconv.ParseFloat(cell, 64)
		if ferr != nil {
			return nil
		}
		n = int64(f)
	}
	return &n
}

func parseFloat(cell string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0
	}
	return f
}

// recordFromRow coerces one joined-table row into a typed record. This is the
// single coercion pass over the dynamic table: everything after it works on
// typed values.
func recordFromRow(t *dataset.Table, row int) Record {
	return Record{
		ComplaintID:       parseInt(t.Get(row, "complaintid")),
		BuildingID:        parseInt(t.Get(row, "buildingid")),
		BoroughID:         parseInt(t.Get(row, "boroughid")),
		Borough:           t.Get(row, "borough"),
		HouseNumber:       t.Get(row, "housenumber"),
		StreetName:        t.Get(row, "streetname"),
		Zip:               parseNullableInt(t.Get(row, "zip")),
		Block:             parseInt(t.Get(row, "block")),
		Lot:               parseInt(t.Get(row, "lot")),
		Apartment:         t.Get(row, "apartment"),
		CommunityBoard:    parseInt(t.Get(row, "communityboard")),
		ReceivedDate:      parseDate(t.Get(row, "receiveddate")),
		Status:            t.Get(row, "status"),
		StatusDate:        parseDate(t.Get(row, "statusdate")),
		UnitTypeID:        parseNullableInt(t.Get(row, "unittypeid")),
		SpaceTypeID:       parseNullableInt(t.Get(row, "spacetypeid")),
		TypeID:            parseNullableInt(t.Get(row, "typeid")),
		MajorCategoryID:   parseNullableInt(t.Get(row, "majorcategoryid")),
		MinorCategoryID:   parseNullableInt(t.Get(row, "minorcategoryid")),
		CodeID:            parseNullableInt(t.Get(row, "codeid")),
		StatusDescription: t.Get(row, "statusdescription"),
	}
}

// projectJoined validates that the joined table carries the full output
// column set and returns it projected to that set.
func projectJoined(t *dataset.Table) (*dataset.Table, error) {
	indices := make([]int, len(joinedColumns))
	for i, col := range joinedColumns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			return nil, eris.Errorf("pipeline: joined table missing required column %q", col)
		}
		indices[i] = idx
	}

	out := dataset.NewTable(joinedColumns...)
	for _, row := range t.Rows {
		projected := make([]string, len(indices))
		for i, idx := range indices {
			projected[i] = row[idx]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}
