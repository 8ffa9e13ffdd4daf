package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalBench/internal/model"
)

// CSVFetcher reads daily bars from a local CSV file with a header row.
// The symbol is ignored; the file holds one instrument.
type CSVFetcher struct {
	Path string
}

func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(_ context.Context, _ string, _ int) ([]model.RawBar, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return bars, nil
}

var columnAliases = map[string]string{
	"date":      "date",
	"timestamp": "date",
	"time":      "date",
	"open":      "open",
	"high":      "high",
	"low":       "low",
	"close":     "close",
	"price":     "close",
	"volume":    "volume",
	"vol":       "volume",
	"vol.":      "volume",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"Jan 02, 2006",
}

// ReadCSV parses rows into raw bars. Cells that do not parse are left nil;
// a malformed row never fails the whole file.
func ReadCSV(r io.Reader) ([]model.RawBar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := columnAliases[name]; ok {
			if _, seen := cols[canon]; !seen {
				cols[canon] = i
			}
		}
	}
	for _, need := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[need]; !ok {
			return nil, fmt.Errorf("missing %q column", need)
		}
	}

	var bars []model.RawBar
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, err
		}
		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		bars = append(bars, model.RawBar{
			Date:   parseDate(cell("date")),
			Open:   parseNumber(cell("open")),
			High:   parseNumber(cell("high")),
			Low:    parseNumber(cell("low")),
			Close:  parseNumber(cell("close")),
			Volume: parseNumber(cell("volume")),
		})
	}
	return bars, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseNumber accepts thousands separators and K/M/B suffixes as found in
// exported volume columns.
func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	mult := 1.0
	switch strings.ToUpper(s[len(s)-1:]) {
	case "K":
		mult = 1e3
	case "M":
		mult = 1e6
	case "B":
		mult = 1e9
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v *= mult
	return &v
}
