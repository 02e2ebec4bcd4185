package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

// utf8BOM keeps the semicolon-delimited file openable in spreadsheet
// tools that sniff encoding from a byte-order mark.
const utf8BOM = "\xef\xbb\xbf"

// catalogColumns is the fixed column order of the catalog file.
var catalogColumns = []string{
	"url",
	"name",
	"location",
	"price_range_min",
	"price_range_max",
	"room_with_open_air_bath",
	"rental_open_air_tubs",
	"rental_indoor_tubs",
	"rental_both_indoor_outdoor_tubs",
	"tripadvisor_rating",
	"tags",
	"description",
	"transportation",
	"lat",
	"lon",
}

// CSVCatalog stores the catalog as a semicolon-delimited UTF-8 file.
// The same file is both the scrape output and the geocoder's input, so
// saves go through a temp file plus rename: a crash mid-write never
// clobbers the last good snapshot.
type CSVCatalog struct {
	path string
}

// NewCSVCatalog creates a catalog store writing to path.
func NewCSVCatalog(path string) *CSVCatalog {
	return &CSVCatalog{path: path}
}

// Path returns the catalog file location.
func (c *CSVCatalog) Path() string { return c.path }

// Save implements Catalog.
func (c *CSVCatalog) Save(ctx context.Context, records []model.ListingRecord) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "catalog: save cancelled")
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.tmp")
	if err != nil {
		return eris.Wrap(err, "catalog: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after successful rename

	if err := writeCatalog(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "catalog: close temp file")
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return eris.Wrap(err, "catalog: replace snapshot")
	}
	return nil
}

func writeCatalog(f *os.File, records []model.ListingRecord) error {
	if _, err := f.WriteString(utf8BOM); err != nil {
		return eris.Wrap(err, "catalog: write BOM")
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(catalogColumns); err != nil {
		return eris.Wrap(err, "catalog: write header")
	}
	for i := range records {
		row, err := buildRow(&records[i])
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "catalog: write row for %s", records[i].URL)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "catalog: flush")
}

// buildRow maps a record to its row, column order per catalogColumns.
func buildRow(r *model.ListingRecord) ([]string, error) {
	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: marshal tags for %s", r.URL)
	}
	if r.Tags == nil {
		tags = []byte("[]")
	}

	var lat, lon string
	if r.HasCoordinates() {
		lat = strconv.FormatFloat(*r.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(*r.Lon, 'f', -1, 64)
	}

	return []string{
		r.URL,
		r.Name,
		r.Address,
		strconv.Itoa(r.PriceMin),
		strconv.Itoa(r.PriceMax),
		strconv.Itoa(r.OpenAirRoomCount),
		formatBool(r.RentalOpenAir),
		formatBool(r.RentalIndoor),
		formatBool(r.RentalBoth),
		strconv.FormatFloat(r.Rating, 'f', -1, 64),
		string(tags),
		r.Description,
		r.TransportationNotes,
		lat,
		lon,
	}, nil
}

// formatBool renders booleans as literal True/False for spreadsheet
// compatibility with prior catalog files.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Load implements Catalog. A missing file is an empty catalog, not an
// error, so first runs and resumed runs share one code path.
func (c *CSVCatalog) Load(ctx context.Context) ([]model.ListingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: load cancelled")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "catalog: read file")
	}

	body := strings.TrimPrefix(string(data), utf8BOM)
	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = ';'
	reader.FieldsPerRecord = len(catalogColumns)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "catalog: parse file")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]model.ListingRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (model.ListingRecord, error) {
	rec := model.ListingRecord{
		URL:                 row[0],
		Name:                row[1],
		Address:             row[2],
		Description:         row[11],
		TransportationNotes: row[12],
	}

	var err error
	if rec.PriceMin, err = strconv.Atoi(row[3]); err != nil {
		return rec, eris.Wrapf(err, "catalog: parse price_range_min for %s", rec.URL)
	}
	if rec.PriceMax, err = strconv.Atoi(row[4]); err != nil {
		return rec, eris.Wrapf(err, "catalog: parse price_range_max for %s", rec.URL)
	}
	if rec.OpenAirRoomCount, err = strconv.Atoi(row[5]); err != nil {
		return rec, eris.Wrapf(err, "catalog: parse room count for %s", rec.URL)
	}
	rec.RentalOpenAir = parseBool(row[6])
	rec.RentalIndoor = parseBool(row[7])
	rec.RentalBoth = parseBool(row[8])
	if rec.Rating, err = strconv.ParseFloat(row[9], 64); err != nil {
		return rec, eris.Wrapf(err, "catalog: parse rating for %s", rec.URL)
	}
	if row[10] != "" {
		if err := json.Unmarshal([]byte(row[10]), &rec.Tags); err != nil {
			return rec, eris.Wrapf(err, "catalog: parse tags for %s", rec.URL)
		}
	}

	// Coordinates are both present or both absent; a lone value is a
	// corrupted row.
	switch {
	case row[13] != "" && row[14] != "":
		lat, latErr := strconv.ParseFloat(row[13], 64)
		if latErr != nil {
			return rec, eris.Wrapf(latErr, "catalog: parse lat for %s", rec.URL)
		}
		lon, lonErr := strconv.ParseFloat(row[14], 64)
		if lonErr != nil {
			return rec, eris.Wrapf(lonErr, "catalog: parse lon for %s", rec.URL)
		}
		rec.SetCoordinates(lat, lon)
	case row[13] != "" || row[14] != "":
		return rec, eris.Errorf("catalog: lone coordinate for %s", rec.URL)
	}

	return rec, nil
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
