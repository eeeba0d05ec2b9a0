// Package brownsville builds the unified Brownsville complaint table: housing
// maintenance complaints scoped to the target community board, joined to
// their complaint-problem details and PLUTO parcel attributes, typed,
// translated, and geocoded.
package brownsville

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CahhBrownsville/Brownsville-project/internal/dataset"
	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
)

// ErrDegenerateBound reports that the housing maintenance slice gave no valid
// complaint-id range or status-date lower bound. Issuing an unbounded
// complaint-problems query in that case would pull the entire city-wide
// dataset, so the pipeline stops instead.
var ErrDegenerateBound = errors.New("pipeline: degenerate complaint-problems bound")

// detailColumns are the problem-detail columns the left join takes from the
// complaint problems dataset. Housing maintenance rows without a match keep
// them null.
var detailColumns = []string{
	"unittypeid", "spacetypeid", "typeid",
	"majorcategoryid", "minorcategoryid", "codeid",
	"statusdescription",
}

// complaintProblemsSelect is the bounded projection requested from the
// complaint problems endpoint.
const complaintProblemsSelect = "distinct complaintid, unittypeid, spacetypeid, " +
	"typeid, majorcategoryid, minorcategoryid, codeid, " +
	"statusid, statusdate, statusdescription"

// plutoSelect is the parcel attribute projection requested from PLUTO.
const plutoSelect = "bbl, bldgclass, bldgarea, numbldgs, numfloors, unitsres, unitstotal," +
	"landuse, ownertype, ownername, yearbuilt, yearalter1, yearalter2"

// Pipeline builds the unified table from a dataset session.
type Pipeline struct {
	session           *dataset.Session
	translations      *Translations
	communityBoard    int
	communityDistrict int
}

// New creates a pipeline over an open session.
func New(session *dataset.Session, translations *Translations, communityBoard, communityDistrict int) *Pipeline {
	return &Pipeline{
		session:           session,
		translations:      translations,
		communityBoard:    communityBoard,
		communityDistrict: communityDistrict,
	}
}

// Load returns the unified table, serving the locally cached copy when both
// parent datasets are still fresh and forceLoad is unset.
func (p *Pipeline) Load(ctx context.Context, forceLoad bool) ([]Record, error) {
	metaCP, err := p.session.Meta(dataset.DatasetComplaintProblems)
	if err != nil {
		return nil, err
	}
	metaHM, err := p.session.Meta(dataset.DatasetHousingMaintenance)
	if err != nil {
		return nil, err
	}
	metaBrownsville, err := p.session.Meta(dataset.DatasetBrownsville)
	if err != nil {
		return nil, err
	}

	updateDue := metaCP.Stale() || metaHM.Stale()
	cached := p.session.Cache().Path(metaBrownsville.Filename)

	if !forceLoad && !updateDue {
		if records, err := ReadSaved(cached); err == nil {
			zap.L().Info("loading cached unified dataset", zap.Int("rows", len(records)))
			return records, nil
		}
	}

	records, err := p.Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := writeRecords(cached, records); err != nil {
		return nil, err
	}
	metaBrownsville.RowOffset = uint(len(records))
	metaBrownsville.CacheDate = time.Now()

	return records, nil
}

// Build constructs the unified table from the remote datasets.
func (p *Pipeline) Build(ctx context.Context) ([]Record, error) {
	log := zap.L().With(zap.String("component", "brownsville.pipeline"))
	opts := dataset.FetchOptions{FetchAll: true, LoadLocal: true}

	housing, err := p.session.LoadHousingMaintenance(ctx, opts, soda.Query{
		Where: fmt.Sprintf("communityboard=%d", p.communityBoard),
	})
	if err != nil {
		return nil, err
	}
	log.Info("housing maintenance slice loaded", zap.Int("rows", housing.NumRows()))

	bound, err := complaintBound(housing)
	if err != nil {
		return nil, err
	}

	problems, err := p.session.LoadComplaintProblems(ctx, opts, bound.query())
	if err != nil {
		return nil, err
	}
	log.Info("complaint problems slice loaded", zap.Int("rows", problems.NumRows()))

	joined := leftJoin(housing, problems, detailColumns)
	projected, err := projectJoined(joined)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, projected.NumRows())
	for i := range projected.Rows {
		r := recordFromRow(projected, i)
		r.Address = strings.TrimSpace(r.HouseNumber + " " + r.StreetName)
		r.BBL = FormatBBL(r.BoroughID, r.Block, r.Lot)
		p.translations.Apply(&r)
		records = append(records, r)
	}

	if err := p.mergePLUTO(ctx, records); err != nil {
		return nil, err
	}

	for i := range records {
		fillDefaults(&records[i])
	}

	records = dropUncategorized(records)

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].BuildingID < records[j].BuildingID
	})

	log.Info("unified table built", zap.Int("rows", len(records)))
	return records, nil
}

// complaintProblemsBound is the derived filter that keeps the complaint
// problems fetch joinable against the housing maintenance slice.
type complaintProblemsBound struct {
	minStatusDate  time.Time
	minComplaintID int64
	maxComplaintID int64
}

func (b complaintProblemsBound) query() soda.Query {
	return soda.Query{
		Select: complaintProblemsSelect,
		Where: fmt.Sprintf("statusdate>='%s' AND (complaintid between '%d' and '%d')",
			b.minStatusDate.Format("2006-01-02"), b.minComplaintID, b.maxComplaintID),
	}
}

// complaintBound derives the complaint-problems filter from the housing
// maintenance slice. An empty slice or one without parsable complaint ids and
// status dates has no valid bound, which is fatal.
func complaintBound(housing *dataset.Table) (complaintProblemsBound, error) {
	var b complaintProblemsBound
	if housing.NumRows() == 0 {
		return b, eris.Wrap(ErrDegenerateBound, "empty housing maintenance slice")
	}

	var haveID, haveDate bool
	for i := range housing.Rows {
		if id, err := strconv.ParseInt(housing.Get(i, "complaintid"), 10, 64); err == nil {
			if !haveID || id < b.minComplaintID {
				b.minComplaintID = id
			}
			if !haveID || id > b.maxComplaintID {
				b.maxComplaintID = id
			}
			haveID = true
		}
		if d := parseDate(housing.Get(i, "statusdate")); d != nil {
			if !haveDate || d.Before(b.minStatusDate) {
				b.minStatusDate = *d
			}
			haveDate = true
		}
	}

	if !haveID {
		return b, eris.Wrap(ErrDegenerateBound, "no parsable complaint ids")
	}
	if !haveDate {
		return b, eris.Wrap(ErrDegenerateBound, "no parsable status dates")
	}
	return b, nil
}

// joinKey normalizes the (complaintid, statusdate) pair both datasets share.
// Dates are canonicalized so formatting differences between the two endpoints
// cannot break the match.
func joinKey(complaintID, statusDate string) string {
	if d := parseDate(statusDate); d != nil {
		statusDate = d.Format("2006-01-02T15:04:05")
	}
	return strings.TrimSpace(complaintID) + "|" + statusDate
}

// leftJoin joins the housing maintenance slice to complaint problem details
// on (complaintid, statusdate). Every left row appears exactly once; detail
// cells stay empty when no right row matches. When several right rows share a
// key the first one wins, the right side having been deduplicated upstream.
func leftJoin(left, right *dataset.Table, rightColumns []string) *dataset.Table {
	index := make(map[string]int, right.NumRows())
	for i := range right.Rows {
		key := joinKey(right.Get(i, "complaintid"), right.Get(i, "statusdate"))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	var addColumns []string
	for _, col := range rightColumns {
		if left.ColumnIndex(col) < 0 {
			addColumns = append(addColumns, col)
		}
	}

	out := dataset.NewTable(append(append([]string(nil), left.Columns...), addColumns...)...)
	for i := range left.Rows {
		row := append([]string(nil), left.Rows[i]...)
		cells := make([]string, len(addColumns))
		if j, ok := index[joinKey(left.Get(i, "complaintid"), left.Get(i, "statusdate"))]; ok {
			for k, col := range addColumns {
				cells[k] = right.Get(j, col)
			}
		}
		out.Rows = append(out.Rows, append(row, cells...))
	}
	return out
}

// mergePLUTO left-joins parcel attributes onto the records by BBL and
// translates the owner-type code.
func (p *Pipeline) mergePLUTO(ctx context.Context, records []Record) error {
	pluto, err := p.session.LoadPLUTO(ctx, dataset.FetchOptions{FetchAll: true, LoadLocal: true}, soda.Query{
		Select: plutoSelect,
		Where:  fmt.Sprintf("cd=%d", p.communityDistrict),
	})
	if err != nil {
		return err
	}

	index := make(map[int64]int, pluto.NumRows())
	for i := range pluto.Rows {
		if bbl := parseNullableInt(pluto.Get(i, "bbl")); bbl != nil {
			if _, ok := index[*bbl]; !ok {
				index[*bbl] = i
			}
		}
	}

	for i := range records {
		r := &records[i]
		row, ok := index[r.BBL]
		if !ok {
			continue
		}
		r.BldgClass = pluto.Get(row, "bldgclass")
		r.BldgArea = parseInt(pluto.Get(row, "bldgarea"))
		r.NumBldgs = parseInt(pluto.Get(row, "numbldgs"))
		r.NumFloors = parseFloat(pluto.Get(row, "numfloors"))
		r.UnitsRes = parseInt(pluto.Get(row, "unitsres"))
		r.UnitsTotal = parseInt(pluto.Get(row, "unitstotal"))
		r.LandUse = parseInt(pluto.Get(row, "landuse"))
		r.OwnerType = pluto.Get(row, "ownertype")
		r.OwnerName = pluto.Get(row, "ownername")
		r.YearBuilt = parseInt(pluto.Get(row, "yearbuilt"))
		r.YearAlter1 = parseInt(pluto.Get(row, "yearalter1"))
		r.YearAlter2 = parseInt(pluto.Get(row, "yearalter2"))
		r.OwnerTypeLong = ownerTypes[r.OwnerType]
	}
	return nil
}

// fillDefaults applies the fixed default map: numeric counts already default
// to zero at coercion; the label defaults are applied here, and the short
// status description is derived last so the fill value maps onto itself.
func fillDefaults(r *Record) {
	if r.OwnerTypeLong == "" {
		r.OwnerTypeLong = unknownOwnerType
	}
	if r.StatusDescription == "" {
		r.StatusDescription = unknownStatus
	}
	r.StatusDescriptionShort = shortDescription(r.StatusDescription)
}

// dropUncategorized removes rows with neither a major nor a minor complaint
// category; a complaint-less building row carries no information here.
func dropUncategorized(records []Record) []Record {
	out := records[:0]
	for _, r := range records {
		if r.MajorCategoryID == nil && r.MinorCategoryID == nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Save writes the unified table to path. An existing file is only overwritten
// after interactive confirmation on in, unless force is set.
func Save(records []Record, path string, force bool, in io.Reader) error {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Printf("File %s already exists. Type y/Y to overwrite: ", path)
		reply, _ := bufio.NewReader(in).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(reply)) != "y" {
			zap.L().Info("save aborted by user", zap.String("path", path))
			return nil
		}
	}
	return writeRecords(path, records)
}

func writeRecords(path string, records []Record) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "pipeline: encode unified table")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// ReadSaved loads a previously saved unified table.
func ReadSaved(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	var records []Record
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "pipeline: decode %s", path)
	}
	return records, nil
}
