// Package dayahead provides day-ahead electricity price series from a
// historical weather-year workbook.
package dayahead

import (
	"fmt"
	"time"

	"github.com/ebp-rad/h2dispatch/feeds/internal/numeric"
	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/ebp-rad/h2dispatch/weathermap"
	"github.com/xuri/excelize/v2"
)

// Source is the contract every day-ahead price provider satisfies.
type Source interface {
	Load(startYear, endYear int) ([]hourtable.DAPoint, error)
}

// Workbook reads an hourly day-ahead price series from a workbook with
// one sheet per weather year ("WY_<year>"), rounds timestamps to the
// nearest hour, and re-stamps them onto the optimization year — the
// behavior of original_source/Quellcode/load_data_old.py:get_da_prices.
type Workbook struct {
	Path string
}

func (w Workbook) Load(startYear, endYear int) ([]hourtable.DAPoint, error) {
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("dayahead: open workbook: %w", err)
	}
	defer f.Close()

	var out []hourtable.DAPoint
	for optYear := startYear; optYear <= endYear; optYear++ {
		weatherYear, ok := weathermap.WeatherYear(optYear)
		if !ok {
			return nil, fmt.Errorf("dayahead: no weather mapping for optimization year %d", optYear)
		}
		sheet := fmt.Sprintf("WY_%d", weatherYear)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("dayahead: read sheet %q: %w", sheet, err)
		}
		points, err := parseSheet(rows, optYear)
		if err != nil {
			return nil, err
		}
		out = append(out, points...)
	}
	return out, nil
}

func parseSheet(rows [][]string, optYear int) ([]hourtable.DAPoint, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dayahead: sheet is empty")
	}
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	utcCol, ok := col["UTC"]
	if !ok {
		return nil, fmt.Errorf("dayahead: sheet missing required column \"UTC\"")
	}
	priceCol, ok := col["DA_price"]
	if !ok {
		return nil, fmt.Errorf("dayahead: sheet missing required column \"DA_price\"")
	}

	var out []hourtable.DAPoint
	for _, row := range rows[1:] {
		if utcCol >= len(row) || priceCol >= len(row) {
			continue
		}
		ts, err := time.Parse("2006-01-02 15:04:05", row[utcCol])
		if err != nil {
			continue
		}
		ts = ts.Round(time.Hour)
		if ts.Year() != weatherYearFromSheet(optYear) {
			continue // get_da_prices filters the sheet to its own weather year first
		}
		price, ok := numeric.ParseFloat(row[priceCol])
		if !ok {
			continue
		}
		out = append(out, hourtable.DAPoint{Instant: safeReplaceYear(ts, optYear), Price: price})
	}
	return out, nil
}

func weatherYearFromSheet(optYear int) int {
	y, _ := weathermap.WeatherYear(optYear)
	return y
}

// safeReplaceYear re-stamps t onto year, mapping a source 29-February
// onto 28-February when the target year is not a leap year — the exact
// behavior of the original loader's safe_replace_year helper.
func safeReplaceYear(t time.Time, year int) time.Time {
	if t.Month() == time.February && t.Day() == 29 && !isLeap(year) {
		return time.Date(year, time.February, 28, t.Hour(), 0, 0, 0, time.UTC)
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
