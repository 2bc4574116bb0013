package config

import (
	"strings"
	"testing"
)

// DefaultConfig leaves the workbook paths empty (see
// TestValidate_RejectsEmptyWorkbookPaths); with those set, every other
// default must validate.
func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DayAheadWorkbookPath = "da.xlsx"
	cfg.HydrogenWorkbookPath = "h2.xlsx"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate_RejectsPMinAbovePMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PMin = cfg.PMax + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when p_min exceeds p_max")
	}
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	cfg.DayAheadWorkbookPath = "x.xlsx"
	cfg.HydrogenWorkbookPath = "y.xlsx"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestValidate_RejectsEmptyWorkbookPaths(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing workbook paths")
	}
}

func TestLoadConfigFromReader_ParsesJSON(t *testing.T) {
	body := `{
		"p_max": 2.0,
		"p_min": 0.5,
		"delta_t": 1,
		"eta_ely": 0.65,
		"p_ppa": 25,
		"policy_year": 2032,
		"start_year": 2032,
		"end_year": 2032,
		"day_ahead_workbook_path": "da.xlsx",
		"hydrogen_workbook_path": "h2.xlsx",
		"log_level": "info"
	}`
	cfg, err := LoadConfigFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PMax != 2.0 {
		t.Errorf("expected p_max 2.0, got %v", cfg.PMax)
	}
	if cfg.PolicyYear != 2032 {
		t.Errorf("expected policy_year 2032, got %v", cfg.PolicyYear)
	}
}

func TestLoadConfigFromReader_RejectsInvalidConfig(t *testing.T) {
	body := `{"p_max": -1}`
	if _, err := LoadConfigFromReader(strings.NewReader(body)); err == nil {
		t.Fatal("expected validation error for negative p_max-derived config")
	}
}

func TestMarshalUnmarshalJSON_RoundTripsDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DayAheadWorkbookPath = "da.xlsx"
	cfg.HydrogenWorkbookPath = "h2.xlsx"

	data, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var roundTripped Config
	if err := roundTripped.UnmarshalJSON(data); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if roundTripped.SolverNodeTimeout != cfg.SolverNodeTimeout {
		t.Errorf("expected duration to round-trip, got %v want %v", roundTripped.SolverNodeTimeout, cfg.SolverNodeTimeout)
	}
}
