// Package config holds the injected configuration for the fleet analytics
// engine: base geofences, inspection interval patterns, classification
// windows, telemetry provider settings, and data file locations.
//
// Every tunable carries an embedded default matching the operational values
// the fleet has run with, so a missing or partial YAML file still produces a
// working engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Base describes a named geofenced home base.
type Base struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Latitude    float64 `yaml:"latitude" json:"lat"`
	Longitude   float64 `yaml:"longitude" json:"lon"`
	RadiusMiles float64 `yaml:"radius-miles" json:"radius_miles"`
}

// IntervalPattern maps one tracked inspection interval (in airframe hours)
// to the ATA/task-code patterns that identify it in the maintenance export.
type IntervalPattern struct {
	Hours    float64  `yaml:"hours"`
	Patterns []string `yaml:"patterns"`
}

// PositionData holds the position classifier thresholds. The airborne and
// staleness values are empirical constants carried over from operations;
// they are configuration, not derived.
type PositionData struct {
	AirborneAltitudeFt    float64 `yaml:"airborne-altitude-ft"`
	AirborneGroundSpeedKt float64 `yaml:"airborne-ground-speed-kt"`
	StalenessSeconds      float64 `yaml:"staleness-seconds"`
}

// ADSBData configures the ADS-B aggregator telemetry provider.
type ADSBData struct {
	BaseURL        string        `yaml:"base-url"`
	RequestTimeout time.Duration `yaml:"request-timeout"`
	UserAgent      string        `yaml:"user-agent"`
}

// SkyRouterData configures the SkyRouter FlightTracking telemetry provider.
// Credentials come from the environment, never from the config file.
type SkyRouterData struct {
	BaseURL        string        `yaml:"base-url"`
	UsernameEnv    string        `yaml:"username-env"`
	PasswordEnv    string        `yaml:"password-env"`
	RequestTimeout time.Duration `yaml:"request-timeout"`
}

// TelemetryData selects and configures the telemetry provider.
type TelemetryData struct {
	Provider    string        `yaml:"provider"` // "adsb" or "skyrouter"
	MappingFile string        `yaml:"mapping-file"`
	ADSB        ADSBData      `yaml:"adsb"`
	SkyRouter   SkyRouterData `yaml:"skyrouter"`
}

// Config is the complete engine configuration.
type Config struct {
	DataDir         string `yaml:"data-dir"`
	DailyExport     string `yaml:"daily-export"`
	WeeklyExport    string `yaml:"weekly-export"`
	HistoryFile     string `yaml:"history-file"`
	AssignmentsFile string `yaml:"assignments-file"`
	StatsFile       string `yaml:"stats-file"`
	DueListFile     string `yaml:"due-list-file"`
	LogFile         string `yaml:"log-file"`

	StaleExportAfter time.Duration `yaml:"stale-export-after"`

	Intervals            []IntervalPattern `yaml:"intervals"`
	RetirementKeywords   []string          `yaml:"retirement-keywords"`
	ComponentWindowHours float64           `yaml:"component-window-hours"`
	ComponentWindowDays  float64           `yaml:"component-window-days"`

	RetentionDays int `yaml:"retention-days"`

	Bases     []Base        `yaml:"bases"`
	Position  PositionData  `yaml:"position"`
	Telemetry TelemetryData `yaml:"telemetry"`
}

// Default returns the embedded operational configuration.
func Default() *Config {
	return &Config{
		DataDir:         "data",
		DailyExport:     "Due-List_Latest.csv",
		WeeklyExport:    "Due-List_BIG_WEEKLY.csv",
		HistoryFile:     "flight_hours_history.json",
		AssignmentsFile: "base_assignments.json",
		StatsFile:       "flight_hours_stats.json",
		DueListFile:     "due_list.json",
		LogFile:         "",

		StaleExportAfter: 36 * time.Hour,

		Intervals: []IntervalPattern{
			{Hours: 50, Patterns: []string{`05 1000`}},
			{Hours: 100, Patterns: []string{`64 01\[273\]`}},
			{Hours: 200, Patterns: []string{`05 1005`}},
			{Hours: 400, Patterns: []string{`05 1010`}},
			{Hours: 800, Patterns: []string{`05 1015`}},
			{Hours: 2400, Patterns: []string{`62 11\[373\]`}},
			{Hours: 3200, Patterns: []string{`05 1020`}},
		},
		RetirementKeywords: []string{
			"RETIRE", "OVERHAUL", "DISCARD", "LIFE LIMIT", "TBO",
			"REPLACEMENT", "REPLACE", "CHANGE OIL", "NOZZLE",
		},
		ComponentWindowHours: 200,
		ComponentWindowDays:  60,

		RetentionDays: 90,

		Bases: []Base{
			{ID: "LOGAN", Name: "Logan", Latitude: 41.7912, Longitude: -111.8522, RadiusMiles: 5},
			{ID: "MCKAY", Name: "McKay", Latitude: 41.2545, Longitude: -112.0126, RadiusMiles: 5},
			{ID: "IMED", Name: "IMed", Latitude: 40.2338, Longitude: -111.6585, RadiusMiles: 5},
			{ID: "PROVO", Name: "Provo", Latitude: 40.2192, Longitude: -111.7233, RadiusMiles: 5},
			{ID: "ROOSEVELT", Name: "Roosevelt", Latitude: 40.2765, Longitude: -110.0518, RadiusMiles: 5},
			{ID: "CEDAR_CITY", Name: "Cedar City", Latitude: 37.7010, Longitude: -113.0989, RadiusMiles: 5},
			{ID: "ST_GEORGE", Name: "St George", Latitude: 37.0365, Longitude: -113.5101, RadiusMiles: 5},
			{ID: "KSLC", Name: "KSLC", Latitude: 40.7884, Longitude: -111.9778, RadiusMiles: 10},
		},
		Position: PositionData{
			AirborneAltitudeFt:    400,
			AirborneGroundSpeedKt: 30,
			StalenessSeconds:      300,
		},
		Telemetry: TelemetryData{
			Provider:    "adsb",
			MappingFile: "aircraft_icao_map.json",
			ADSB: ADSBData{
				BaseURL:        "https://api.adsb.lol",
				RequestTimeout: 15 * time.Second,
				UserAgent:      "fleetmx/1.2 (base-assignments)",
			},
			SkyRouter: SkyRouterData{
				BaseURL:        "https://new.skyrouter.com/Bsn.Skyrouter.DataExchange/",
				UsernameEnv:    "SKYROUTER_USER",
				PasswordEnv:    "SKYROUTER_PASS",
				RequestTimeout: 30 * time.Second,
			},
		},
	}
}

// Load reads a YAML configuration file over the embedded defaults. Fields
// absent from the file keep their default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	cfgFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(cfgFile, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants a malformed file could break.
func (c *Config) Validate() error {
	if len(c.Bases) == 0 {
		return fmt.Errorf("config: at least one base must be defined")
	}
	for _, b := range c.Bases {
		if b.ID == "" {
			return fmt.Errorf("config: base with empty id")
		}
		if b.RadiusMiles <= 0 {
			return fmt.Errorf("config: base %s has non-positive radius", b.ID)
		}
	}
	if len(c.Intervals) == 0 {
		return fmt.Errorf("config: at least one inspection interval must be defined")
	}
	for _, iv := range c.Intervals {
		if iv.Hours <= 0 {
			return fmt.Errorf("config: interval with non-positive hours")
		}
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("config: retention-days must be positive")
	}
	switch c.Telemetry.Provider {
	case "adsb", "skyrouter", "none":
	default:
		return fmt.Errorf("config: unknown telemetry provider %q", c.Telemetry.Provider)
	}
	return nil
}

// IntervalHours returns the tracked interval buckets in config order.
func (c *Config) IntervalHours() []float64 {
	hours := make([]float64, len(c.Intervals))
	for i, iv := range c.Intervals {
		hours[i] = iv.Hours
	}
	return hours
}

// BaseByID returns the base with the given id, or nil.
func (c *Config) BaseByID(id string) *Base {
	for i := range c.Bases {
		if c.Bases[i].ID == id {
			return &c.Bases[i]
		}
	}
	return nil
}
