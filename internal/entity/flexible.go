package entity

import (
	"fmt"

	"github.com/devskill-org/gridopt/internal/apperror"
)

// FlexibleSource is a dispatchable generator: the LP chooses its
// output freely within capacity and ramp limits (spec.md §3).
type FlexibleSource struct {
	Type              FlexibleSourceType `json:"type"`
	CapacityMW        float64            `json:"capacity_mw"`
	MinCapacityMW     float64            `json:"min_capacity_mw"`
	PaidOffCapacityMW float64            `json:"paid_off_capacity_mw"`
	MaxTotalTWh       *float64           `json:"max_total_twh,omitempty"` // optional cap, spec.md §4.2 item 13
	MaxCapacityFactor *float64           `json:"max_capacity_factor,omitempty"`
	RampRate          float64            `json:"ramp_rate"` // (0,1]
	RampUpCostMWEUR   float64            `json:"ramp_up_cost_mw_eur,omitempty"`
	Heat              *HeatCoupling      `json:"heat,omitempty"` // nil when this source has no heat coupling
	Virtual           bool               `json:"virtual,omitempty"`          // EENS/loss-of-load
	CO2TPerMWh        float64            `json:"co2_t_per_mwh,omitempty"`
	Economics         SourceEconomics    `json:"economics"`
}

// Validate checks the invariants of spec.md §3 for a flexible source.
func (f FlexibleSource) Validate() error {
	field := fmt.Sprintf("flexible[%s]", f.Type)
	if f.PaidOffCapacityMW > f.MinCapacityMW {
		return apperror.NewConfigError(field+".paid_off_capacity_mw", "must be <= min_capacity_mw")
	}
	if f.MinCapacityMW > f.CapacityMW {
		return apperror.NewConfigError(field+".min_capacity_mw", "must be <= capacity_mw")
	}
	if f.RampRate <= 0 || f.RampRate > 1 {
		return apperror.NewConfigError(field+".ramp_rate", "must be in (0,1]")
	}
	return f.Economics.Validate(field)
}

// InstalledFactorLowerBound mirrors Source.InstalledFactorLowerBound
// for flexible sources with min_capacity < capacity.
func (f FlexibleSource) InstalledFactorLowerBound(optimizeCapex bool) float64 {
	if optimizeCapex {
		if f.CapacityMW <= 0 {
			return 0
		}
		return f.MinCapacityMW / f.CapacityMW
	}
	return 1
}

// HasCapacityScaledBound reports whether p_F[i,t] <= capacity*alpha is
// needed (spec.md §4.2 item 4): only when min_capacity < capacity.
func (f FlexibleSource) HasCapacityScaledBound() bool {
	return f.MinCapacityMW < f.CapacityMW
}
