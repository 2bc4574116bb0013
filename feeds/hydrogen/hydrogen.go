// Package hydrogen loads the month-indexed hydrogen sale price and keys
// it by (year, month); hourtable.Assemble expands it to hourly
// granularity. Grounded on
// original_source/Quellcode/get_data/h2_prices.py.
package hydrogen

import (
	"fmt"

	"github.com/ebp-rad/h2dispatch/feeds/internal/numeric"
	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/xuri/excelize/v2"
)

// sheetName is the worksheet read_h2_prices reads from in the original
// loader.
const sheetName = "€_per_MWh"

// MonthlyPrice is one (year, month, h2_price) row. Keys must be unique
// per (year, month).
type MonthlyPrice struct {
	Year  int
	Month int
	Price float64
}

// LoadMonthly reads the monthly hydrogen price table from an Excel
// workbook with columns year, month, h2_price on sheet "€_per_MWh",
// filtered to [startYear, endYear].
func LoadMonthly(path string, startYear, endYear int) ([]MonthlyPrice, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("hydrogen: open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("hydrogen: read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("hydrogen: sheet %q is empty", sheetName)
	}

	col, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var out []MonthlyPrice
	for _, row := range rows[1:] {
		year, okY := numeric.ParseInt(cellAt(row, col["year"]))
		month, okM := numeric.ParseInt(cellAt(row, col["month"]))
		price, okP := numeric.ParseFloat(cellAt(row, col["h2_price"]))
		if !okY || !okM || !okP {
			continue // matches the original loader's errors="coerce" behavior
		}
		if year < startYear || year > endYear {
			continue
		}
		out = append(out, MonthlyPrice{Year: year, Month: month, Price: price})
	}
	return out, nil
}

func columnIndex(header []string) (map[string]int, error) {
	required := []string{"year", "month", "h2_price"}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("hydrogen: sheet missing required column %q", name)
		}
	}
	return idx, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ToMonthly converts a loaded slice into the keyed map Assemble expects.
func ToMonthly(prices []MonthlyPrice) map[hourtable.YearMonth]float64 {
	m := make(map[hourtable.YearMonth]float64, len(prices))
	for _, p := range prices {
		m[hourtable.YearMonth{Year: p.Year, Month: p.Month}] = p.Price
	}
	return m
}
