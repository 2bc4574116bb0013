package ppa

import (
	"testing"
	"time"
)

func TestSafeReplaceYear_RemapsFeb29OnNonLeapTarget(t *testing.T) {
	src := time.Date(2012, time.February, 29, 5, 0, 0, 0, time.UTC)
	got := safeReplaceYear(src, 2030)
	want := time.Date(2030, time.February, 28, 5, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRemapAndDedup_DropsLeapDayCollision(t *testing.T) {
	raw := map[string]float64{
		"2012-02-28 12:00:00": 100,
		"2012-02-29 12:00:00": 200, // collides with the above once remapped onto a non-leap year
	}
	points := remapAndDedup(raw, 2030)
	if len(points) != 1 {
		t.Fatalf("expected 1 point after leap-day dedup, got %d", len(points))
	}
	if points[0].GAvail != 0.1 { // 100 kW / 1000
		t.Errorf("expected first occurrence (100kW -> 0.1 MWh) kept, got %v", points[0].GAvail)
	}
}

func TestRemapAndDedup_ConvertsKWToMWh(t *testing.T) {
	raw := map[string]float64{
		"2012-06-15 08:00:00": 500,
	}
	points := remapAndDedup(raw, 2030)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].GAvail != 0.5 {
		t.Errorf("expected 0.5 MWh, got %v", points[0].GAvail)
	}
	if points[0].Instant.Year() != 2030 {
		t.Errorf("expected instant remapped onto 2030, got %v", points[0].Instant)
	}
}
