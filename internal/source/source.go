// Package source reads the census population table (CSV or XLSX, local or
// over HTTP) into population records.
package source

import (
	"context"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zsj-atlas/zsj-cli/internal/fetcher"
	"github.com/zsj-atlas/zsj-cli/internal/model"
	"github.com/zsj-atlas/zsj-cli/internal/textnorm"
)

// Options configures Load.
type Options struct {
	// Fetcher downloads http(s) inputs; nil means a default HTTPFetcher.
	Fetcher fetcher.Fetcher
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// Districts keeps only records of these districts when non-empty.
	Districts []string
}

// Stats describes a Load.
type Stats struct {
	Rows     int `json:"rows"`
	Records  int `json:"records"`
	Skipped  int `json:"skipped"`
	Filtered int `json:"filtered"`
}

// Load reads records from a file path or http(s) URL.
func Load(ctx context.Context, input string, opts Options) ([]model.PopulationRecord, Stats, error) {
	path := input
	if isURL(input) {
		tmp, err := download(ctx, input, opts.Fetcher)
		if err != nil {
			return nil, Stats{}, err
		}
		defer func() { _ = os.Remove(tmp) }()
		path = tmp
	}

	rows, err := readRows(ctx, path, opts.Sheet)
	if err != nil {
		return nil, Stats{}, err
	}
	return Parse(rows, opts.Districts)
}

// Parse converts raw rows, header first, to records. Rows with an
// unparseable count are skipped with a warning; blank counts are zero.
func Parse(rows [][]string, districts []string) ([]model.PopulationRecord, Stats, error) {
	if len(rows) == 0 {
		return nil, Stats{}, eris.New("source: empty table")
	}

	cols := mapHeader(rows[0])
	if !cols.has(fieldCode) {
		return nil, Stats{}, eris.Errorf("source: no micro-area code column in header %q", rows[0])
	}

	keep := make(map[string]struct{}, len(districts))
	for _, d := range districts {
		keep[textnorm.Key(d)] = struct{}{}
	}

	var stats Stats
	records := make([]model.PopulationRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		stats.Rows++
		line := i + 2

		rec, err := parseRow(cols, row)
		if err != nil {
			zap.L().Warn("source: skipping row",
				zap.Int("line", line),
				zap.Error(err),
			)
			stats.Skipped++
			continue
		}

		if len(keep) > 0 {
			if _, ok := keep[textnorm.Key(rec.DistrictName)]; !ok {
				stats.Filtered++
				continue
			}
		}
		records = append(records, rec)
	}
	stats.Records = len(records)

	zap.L().Info("source: parsed table",
		zap.Int("rows", stats.Rows),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped),
		zap.Int("filtered", stats.Filtered),
	)
	return records, stats, nil
}

func parseRow(cols columnMap, row []string) (model.PopulationRecord, error) {
	rec := model.PopulationRecord{
		RegionName:       strings.TrimSpace(cols.get(row, fieldRegion)),
		DistrictName:     strings.TrimSpace(cols.get(row, fieldDistrict)),
		MunicipalityName: strings.TrimSpace(cols.get(row, fieldMunicipality)),
		MicroAreaCode:    normalizeCode(cols.get(row, fieldCode)),
		MicroAreaName:    strings.TrimSpace(cols.get(row, fieldName)),
	}

	counts := []struct {
		f   field
		dst *int
	}{
		{fieldPermanent, &rec.PopPermanent},
		{fieldElsewhere, &rec.PopElsewhereDomestic},
		{fieldAbroad, &rec.PopAbroad},
		{fieldTotal, &rec.PopTotal},
	}
	for _, c := range counts {
		n, err := ParseCount(cols.get(row, c.f))
		if err != nil {
			return rec, eris.Wrapf(err, "source: zsj %s", rec.MicroAreaCode)
		}
		*c.dst = n
	}
	return rec, nil
}

var countSpaces = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")

// ParseCount parses a population count. Blank is 0; spaces used as
// thousands separators are ignored; "12.0" is accepted.
func ParseCount(s string) (int, error) {
	s = countSpaces.Replace(s)
	if s == "" || s == "-" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, eris.Errorf("source: invalid count %q", s)
	}
	return int(f), nil
}

func normalizeCode(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, ".0")
}

func readRows(ctx context.Context, path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet})
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "source: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		rows, err := fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{LazyQuotes: true})
		if err != nil {
			return nil, eris.Wrapf(err, "source: read %s", path)
		}
		return rows, nil
	default:
		return nil, eris.Errorf("source: unsupported input format %q", filepath.Ext(path))
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// download stores a remote table in a temp file that keeps the URL's
// extension so the format can be detected.
func download(ctx context.Context, rawURL string, f fetcher.Fetcher) (string, error) {
	if f == nil {
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}

	ext := ".csv"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(filepath.Ext(u.Path)); e == ".xlsx" || e == ".csv" {
			ext = e
		}
	}

	tmp, err := os.CreateTemp("", "zsj-input-*"+ext)
	if err != nil {
		return "", eris.Wrap(err, "source: create temp file")
	}
	path := tmp.Name()
	_ = tmp.Close()

	n, err := f.DownloadToFile(ctx, rawURL, path)
	if err != nil {
		_ = os.Remove(path)
		return "", eris.Wrap(err, "source: download input")
	}
	zap.L().Info("source: downloaded input", zap.String("url", rawURL), zap.Int64("bytes", n))
	return path, nil
}
