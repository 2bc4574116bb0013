// Package config is the flat JSON-file configuration for a dispatch run,
// modeled on the teacher's scheduler.Config: DefaultConfig + Validate +
// custom duration marshaling, with environment-variable overrides for
// secrets layered on top via caarlos0/env.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything one dispatch run needs: the parameter set Θ,
// input source locations, and the ambient operational settings.
type Config struct {
	// Parameter set Θ (spec §3, §6.2)
	PMax       float64 `json:"p_max"`       // MW
	PMin       float64 `json:"p_min"`       // MW
	DeltaT     float64 `json:"delta_t"`     // hours
	EtaEly     float64 `json:"eta_ely"`     // dimensionless
	PPPA       float64 `json:"p_ppa"`       // currency/MWh
	PolicyYear int     `json:"policy_year"` // calendar year

	// Horizon
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`

	// Input sources
	DayAheadWorkbookPath string        `json:"day_ahead_workbook_path"`
	HydrogenWorkbookPath string        `json:"hydrogen_workbook_path"`
	PPALatitude          float64       `json:"ppa_latitude"`
	PPALongitude         float64       `json:"ppa_longitude"`
	PPAToken             string        `json:"ppa_token" env:"H2DISPATCH_PPA_TOKEN"`
	AdmissionThreshold   float64       `json:"admission_threshold"`
	SolverNodeTimeout    time.Duration `json:"solver_node_timeout"`

	// Persistence & observability
	PostgresConnString string `json:"postgres_conn_string" env:"H2DISPATCH_POSTGRES_DSN"`
	HealthCheckPort    int    `json:"health_check_port"`
	StatusWSPort       int    `json:"status_ws_port"`

	// Logging
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns a configuration with the system defaults.
func DefaultConfig() *Config {
	return &Config{
		PMax:                 1.0,
		PMin:                 0.2,
		DeltaT:               1.0,
		EtaEly:               0.7,
		PPPA:                 30.0,
		PolicyYear:           2030,
		StartYear:            2030,
		EndYear:              2030,
		PPALatitude:          52.52,
		PPALongitude:         13.405,
		AdmissionThreshold:   20.0,
		SolverNodeTimeout:    30 * time.Second,
		HealthCheckPort:      0,
		StatusWSPort:         0,
		LogLevel:             "info",
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("config: open file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode JSON: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("config: apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides layers secrets from the environment (PPA token,
// Postgres DSN) on top of whatever the JSON file holds, so credentials
// never need to be committed alongside the rest of the configuration.
func (c *Config) applyEnvOverrides() error {
	return env.Parse(c)
}

// SaveConfig saves the configuration to a JSON file.
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("config: create file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer.
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("config: encode JSON: %w", err)
	}
	return nil
}

// Validate checks the configuration values, including I3 from spec §3.
func (c *Config) Validate() error {
	if c.DeltaT <= 0 {
		return fmt.Errorf("delta_t must be > 0, got %v", c.DeltaT)
	}
	if c.PMin < 0 {
		return fmt.Errorf("p_min must be >= 0, got %v", c.PMin)
	}
	if c.PMin*c.DeltaT > c.PMax*c.DeltaT {
		return fmt.Errorf("p_min*delta_t exceeds p_max*delta_t")
	}
	if c.EtaEly <= 0 || c.EtaEly > 1 {
		return fmt.Errorf("eta_ely must be in (0,1], got %v", c.EtaEly)
	}
	if c.PPPA < 0 {
		return fmt.Errorf("p_ppa must be >= 0, got %v", c.PPPA)
	}
	if c.PolicyYear == 0 {
		return fmt.Errorf("policy_year must be set")
	}
	if c.StartYear == 0 || c.EndYear == 0 || c.StartYear > c.EndYear {
		return fmt.Errorf("start_year/end_year must form a valid range, got %d-%d", c.StartYear, c.EndYear)
	}
	if c.DayAheadWorkbookPath == "" {
		return fmt.Errorf("day_ahead_workbook_path cannot be empty")
	}
	if c.HydrogenWorkbookPath == "" {
		return fmt.Errorf("hydrogen_workbook_path cannot be empty")
	}
	if c.HealthCheckPort < 0 || c.HealthCheckPort > 65535 {
		return fmt.Errorf("health_check_port must be between 0 and 65535, got %d", c.HealthCheckPort)
	}
	if c.StatusWSPort < 0 || c.StatusWSPort > 65535 {
		return fmt.Errorf("status_ws_port must be between 0 and 65535, got %d", c.StatusWSPort)
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// MarshalJSON implements custom JSON marshaling to render durations as
// strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		SolverNodeTimeout string `json:"solver_node_timeout"`
	}{
		Alias:             (*Alias)(c),
		SolverNodeTimeout: c.SolverNodeTimeout.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to parse durations
// from strings.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		SolverNodeTimeout string `json:"solver_node_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.SolverNodeTimeout != "" {
		d, err := time.ParseDuration(aux.SolverNodeTimeout)
		if err != nil {
			return fmt.Errorf("invalid solver_node_timeout: %w", err)
		}
		c.SolverNodeTimeout = d
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
