package hydrogen

import (
	"testing"

	"github.com/ebp-rad/h2dispatch/hourtable"
)

func TestColumnIndex_RequiresAllColumns(t *testing.T) {
	_, err := columnIndex([]string{"year", "month"})
	if err == nil {
		t.Fatal("expected error for missing h2_price column")
	}
}

func TestColumnIndex_MapsNames(t *testing.T) {
	idx, err := columnIndex([]string{"h2_price", "year", "month"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx["year"] != 1 || idx["month"] != 2 || idx["h2_price"] != 0 {
		t.Errorf("unexpected column mapping: %+v", idx)
	}
}

func TestCellAt_OutOfRangeReturnsEmpty(t *testing.T) {
	row := []string{"a", "b"}
	if cellAt(row, 5) != "" {
		t.Error("expected empty string for out-of-range index")
	}
	if cellAt(row, -1) != "" {
		t.Error("expected empty string for negative index")
	}
}

func TestToMonthly(t *testing.T) {
	prices := []MonthlyPrice{
		{Year: 2030, Month: 1, Price: 100},
		{Year: 2030, Month: 2, Price: 110},
	}
	m := ToMonthly(prices)
	if m[hourtable.YearMonth{Year: 2030, Month: 1}] != 100 {
		t.Errorf("expected price 100 for (2030,1)")
	}
	if m[hourtable.YearMonth{Year: 2030, Month: 2}] != 110 {
		t.Errorf("expected price 110 for (2030,2)")
	}
}
