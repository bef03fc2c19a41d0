// Package config is the run configuration surface: a flat JSON-tagged
// struct with a DefaultConfig/LoadConfig/Validate triad describing a
// multi-year LP run's years/countries/interconnectors/solver settings.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/lp"
	"github.com/devskill-org/gridopt/internal/solver"
)

// CountryConfig is the per-region input block of spec.md §6.
type CountryConfig struct {
	BasicSources    []entity.Source         `json:"basic_sources"`
	FlexibleSources []entity.FlexibleSource `json:"flexible_sources"`
	Storage         []entity.Storage        `json:"storage"`
	LoadFactors     map[string]float64      `json:"load_factors,omitempty"`
	Reserves        entity.Reserves         `json:"reserves,omitempty"`
	HeatDemand      bool                    `json:"heat_demand,omitempty"`
	Temperatures    string                  `json:"temperatures,omitempty"`
	InAggregate     string                  `json:"in_aggregate,omitempty"`
}

// LinkConfig is one declared interconnector edge (spec.md §6). When
// Symmetric is set, Config.Links expands it into two directed links
// (spec.md §3, §9); loading keeps it as one LinkConfig.
type LinkConfig struct {
	CapacityMW        float64                   `json:"capacity_mw"`
	PaidOffCapacityMW float64                   `json:"paid_off_capacity_mw"`
	Loss              float64                   `json:"loss"`
	LengthKM          float64                   `json:"length_km"`
	Type              entity.InterconnectorType `json:"type"`
	Symmetric         bool                      `json:"symmetric"`
}

// FilterConfig narrows plotting/reporting scope; it has no bearing on
// the LP itself (spec.md §6: "not part of the LP").
type FilterConfig struct {
	Regions []string `json:"regions,omitempty"`
	Days    []string `json:"days,omitempty"`
	Weeks   []int    `json:"weeks,omitempty"`
}

// Config is the top-level run configuration (spec.md §6).
type Config struct {
	CommonYears []int `json:"common_years"`
	EntsoeYears []int `json:"entsoe_years"`
	PecdYears   []int `json:"pecd_years"`

	Countries       map[string]CountryConfig      `json:"countries"`
	Interconnectors map[string]map[string]LinkConfig `json:"interconnectors"`

	Filter FilterConfig `json:"filter"`
	Output string       `json:"output"`

	OptimizeCapex                  bool `json:"optimize_capex"`
	OptimizeHeat                    bool `json:"optimize_heat"`
	OptimizeRampUpCosts             bool `json:"optimize_ramp_up_costs"`
	LoadPreviousSolution            bool `json:"load_previous_solution"`
	IncludeTransmissionLossInPrice  bool `json:"include_transmission_loss_in_price"`

	Solver                            string  `json:"solver"`
	SolverTimeoutMinutes              float64 `json:"solver_timeout_minutes"`
	SolverShiftIPMTerminationByOrders float64 `json:"solver_shift_ipm_termination_by_orders"`

	StoreModel bool `json:"store_model"`

	// ImportPPAPriceEURPerMWh feeds the statistics aggregator's PPA-like
	// import/export pricing variant (spec.md §4.7); nil disables it.
	ImportPPAPriceEURPerMWh *float64 `json:"import_ppa_price_eur_per_mwh,omitempty"`
}

// DefaultConfig returns conservative run-level defaults.
func DefaultConfig() *Config {
	return &Config{
		Countries:                         map[string]CountryConfig{},
		Interconnectors:                   map[string]map[string]LinkConfig{},
		Output:                            "csv",
		OptimizeCapex:                     false,
		OptimizeHeat:                      false,
		OptimizeRampUpCosts:               false,
		LoadPreviousSolution:              false,
		IncludeTransmissionLossInPrice:    false,
		Solver:                            "",
		SolverTimeoutMinutes:              30,
		SolverShiftIPMTerminationByOrders: 0,
		StoreModel:                        false,
	}
}

// LoadConfig loads configuration from a JSON file at path.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a JSON file at path.
func (c *Config) SaveConfig(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

// Validate checks run-level invariants of spec.md §6 that precede
// per-entity validation (which entity.Zone/NewAggregateRegion perform
// once the hourly frames are attached).
func (c *Config) Validate() error {
	if len(c.CommonYears) == 0 {
		return fmt.Errorf("common_years must not be empty")
	}
	if len(c.EntsoeYears) != len(c.CommonYears) || len(c.PecdYears) != len(c.CommonYears) {
		return fmt.Errorf("common_years, entsoe_years, and pecd_years must have equal length")
	}
	if len(c.Countries) == 0 {
		return fmt.Errorf("countries must not be empty")
	}
	if c.SolverTimeoutMinutes <= 0 {
		return fmt.Errorf("solver_timeout_minutes must be > 0, got %f", c.SolverTimeoutMinutes)
	}
	for from, tos := range c.Interconnectors {
		for to, link := range tos {
			if link.CapacityMW < 0 {
				return fmt.Errorf("interconnector %s->%s: capacity_mw must be non-negative", from, to)
			}
			if link.Loss < 0 || link.Loss >= 1 {
				return fmt.Errorf("interconnector %s->%s: loss must be in [0,1)", from, to)
			}
		}
	}
	return nil
}

// NumYears is the LP's num_years scale factor, the number of modeled
// calendar years folded into one solve (spec.md §4.2, §4.7).
func (c *Config) NumYears() float64 {
	return float64(len(c.CommonYears))
}

// LPConfig projects the run configuration onto the LP builder's Config
// (spec.md §4.2).
func (c *Config) LPConfig() lp.Config {
	return lp.Config{
		NumYears:            c.NumYears(),
		OptimizeCapex:       c.OptimizeCapex,
		OptimizeHeat:        c.OptimizeHeat,
		OptimizeRampUpCosts: c.OptimizeRampUpCosts,
	}
}

// SolverOptions projects the run configuration onto the solver
// backend's Options (spec.md §6 "Must support ... IPM termination-
// tolerance override").
func (c *Config) SolverOptions() solver.Options {
	return solver.Options{
		TimeoutMinutes:              int(c.SolverTimeoutMinutes),
		ShiftIPMTerminationByOrders: int(c.SolverShiftIPMTerminationByOrders),
	}
}

// Links expands the declared interconnectors into directed lp.Link
// values, doubling every symmetric declaration (spec.md §3, §9).
func (c *Config) Links() ([]lp.Link, error) {
	var links []lp.Link
	for from, tos := range c.Interconnectors {
		for to, lc := range tos {
			ic := entity.Interconnector{
				From: from, To: to,
				CapacityMW:        lc.CapacityMW,
				PaidOffCapacityMW: lc.PaidOffCapacityMW,
				Loss:              lc.Loss,
				LengthKM:          lc.LengthKM,
				Type:              lc.Type,
			}
			if err := ic.Validate(); err != nil {
				return nil, err
			}
			links = append(links, lp.Link{Interconnector: ic})
			if lc.Symmetric {
				reverse := ic
				reverse.From, reverse.To = to, from
				links = append(links, lp.Link{Interconnector: reverse})
			}
		}
	}
	return links, nil
}
