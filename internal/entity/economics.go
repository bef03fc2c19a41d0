package entity

import "github.com/devskill-org/gridopt/internal/apperror"

// SourceEconomics holds the cost inputs consumed by the cost calculus
// (C2, spec.md §4.1). DiscountRate is multiplicative (e.g. 1.05 for a
// 5% discount rate).
type SourceEconomics struct {
	OvernightCostsPerKWEUR      float64  `json:"overnight_costs_per_kw_eur"`
	DecommissioningCostPerKWEUR float64  `json:"decommissioning_cost_per_kw_eur,omitempty"`
	ConstructionTimeYears       float64  `json:"construction_time_years"`
	LifetimeYears               float64  `json:"lifetime_years"`
	LifetimeHours               *float64 `json:"lifetime_hours,omitempty"` // optional
	DecommissioningTimeYears    float64  `json:"decommissioning_time_years"`
	FixedOMCostsPerKWEUR        float64  `json:"fixed_om_costs_per_kw_eur,omitempty"`
	VariableCostsPerMWHEUR      float64  `json:"variable_costs_per_mwh_eur,omitempty"`
	DiscountRate                float64  `json:"discount_rate"`
}

// Validate checks the invariants spec.md §7 calls out for economics
// inputs (a lifetime of zero would make the annualization undefined).
func (e SourceEconomics) Validate(field string) error {
	if e.LifetimeYears <= 0 {
		return apperror.NewConfigError(field+".lifetime_years", "must be > 0")
	}
	if e.DiscountRate <= 0 {
		return apperror.NewConfigError(field+".discount_rate", "must be > 0")
	}
	return nil
}
