package entity

import (
	"fmt"

	"github.com/devskill-org/gridopt/internal/apperror"
)

// Source is a basic (non-dispatchable) generator: wind, solar, hydro,
// or nuclear, whose hourly output is taken from a predefined curve
// unless it is also flexible (see FlexibleBasicExtras).
type Source struct {
	Type              BasicSourceType  `json:"type"`
	CapacityMW        float64          `json:"capacity_mw"`
	MinCapacityMW     float64          `json:"min_capacity_mw"`
	PaidOffCapacityMW float64          `json:"paid_off_capacity_mw"`
	Renewable         bool             `json:"renewable"`
	CO2TPerMWh        float64          `json:"co2_t_per_mwh"`
	ProfileOverride   string           `json:"profile_override,omitempty"` // optional: redirect to another region's normalized profile
	Economics         SourceEconomics  `json:"economics"`

	// Flexible extras; Flexible.MaxDecreaseMW == 0 means "not flexible".
	Flexible FlexibleBasicExtras `json:"flexible,omitempty"`
}

// FlexibleBasicExtras holds the attributes that let a basic source
// decrease below its predefined curve (spec.md §3 "FlexibleBasicSource").
type FlexibleBasicExtras struct {
	MaxDecreaseMW   float64 `json:"max_decrease_mw,omitempty"`
	MinProductionMW float64 `json:"min_production_mw,omitempty"`
	RampRate        float64 `json:"ramp_rate,omitempty"` // (0,1]
	RampUpCostMWEUR float64 `json:"ramp_up_cost_mw_eur,omitempty"`
}

// IsTrulyFlexible reports whether this source's flexible-basic bounds
// (spec.md §4.2 item 3) are active.
func (s Source) IsTrulyFlexible() bool {
	return s.Flexible.MaxDecreaseMW > 0 && s.Flexible.MinProductionMW < s.CapacityMW
}

// Validate checks the invariants of spec.md §3 for a basic source.
func (s Source) Validate() error {
	field := fmt.Sprintf("source[%s]", s.Type)
	if s.PaidOffCapacityMW > s.MinCapacityMW {
		return apperror.NewConfigError(field+".paid_off_capacity_mw", "must be <= min_capacity_mw")
	}
	if s.MinCapacityMW > s.CapacityMW {
		return apperror.NewConfigError(field+".min_capacity_mw", "must be <= capacity_mw")
	}
	if s.MinCapacityMW < 0 || s.CapacityMW < 0 {
		return apperror.NewConfigError(field, "capacities must be non-negative")
	}
	if s.Flexible.MaxDecreaseMW > 0 {
		if s.Flexible.RampRate <= 0 || s.Flexible.RampRate > 1 {
			return apperror.NewConfigError(field+".ramp_rate", "must be in (0,1]")
		}
	}
	return s.Economics.Validate(field)
}

// InstalledFactorLowerBound returns the lb used for the α_B[type]
// variable bound (spec.md §4.2): min_capacity/capacity when capex
// optimization is active (0 for a non-positive capacity), otherwise 1,
// which forbids downsizing.
func (s Source) InstalledFactorLowerBound(optimizeCapex bool) float64 {
	if optimizeCapex {
		if s.CapacityMW <= 0 {
			return 0
		}
		return s.MinCapacityMW / s.CapacityMW
	}
	return 1
}
