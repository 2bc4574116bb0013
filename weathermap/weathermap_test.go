package weathermap

import "testing"

func TestWeatherYear_KnownYear(t *testing.T) {
	wy, ok := WeatherYear(2026)
	if !ok {
		t.Fatal("expected a mapping for 2026")
	}
	if wy != 2007 {
		t.Errorf("expected weather year 2007 for 2026, got %d", wy)
	}
}

func TestWeatherYear_UnknownYear(t *testing.T) {
	if _, ok := WeatherYear(1999); ok {
		t.Error("expected no mapping for 1999")
	}
}
