// Package csvout serializes collected rows as the flat dataset table.
package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
)

// Header is the column order of the dataset.
var Header = []string{
	"country",
	"city",
	"activity",
	"season",
	"trend_score",
	"avg_daily_precipitation",
	"avg_daily_temperature",
	"avg_daily_daylight",
	"avg_daily_wind_speed",
	"season_duration",
}

// Write writes the header followed by one record per row.
func Write(w io.Writer, rows []domain.CollectedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path through a temporary file in the same
// directory, so path either holds the complete table or is untouched.
func WriteFile(path string, rows []domain.CollectedRow) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, rows); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Read parses a table produced by Write.
func Read(r io.Reader) ([]domain.CollectedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("table is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var rows []domain.CollectedRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]domain.CollectedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func record(r domain.CollectedRow) []string {
	return []string{
		r.Country,
		r.City,
		r.Activity,
		r.Season,
		formatFloat(r.TrendScore),
		formatFloat(r.AvgDailyPrecipitation),
		formatFloat(r.AvgDailyTemperature),
		formatFloat(r.AvgDailyDaylight),
		formatFloat(r.AvgDailyWindSpeed),
		strconv.Itoa(r.SeasonDuration),
	}
}

func parseRecord(rec []string) (domain.CollectedRow, error) {
	row := domain.CollectedRow{
		Country:  rec[0],
		City:     rec[1],
		Activity: rec[2],
		Season:   rec[3],
	}
	floats := []*float64{
		&row.TrendScore,
		&row.AvgDailyPrecipitation,
		&row.AvgDailyTemperature,
		&row.AvgDailyDaylight,
		&row.AvgDailyWindSpeed,
	}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(rec[4+i], 64)
		if err != nil {
			return domain.CollectedRow{}, fmt.Errorf("column %s: %w", Header[4+i], err)
		}
		*dst = v
	}
	d, err := strconv.Atoi(rec[9])
	if err != nil {
		return domain.CollectedRow{}, fmt.Errorf("column season_duration: %w", err)
	}
	row.SeasonDuration = d
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
