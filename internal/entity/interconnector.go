package entity

import "github.com/devskill-org/gridopt/internal/apperror"

// Interconnector is a directed transmission link between two regions.
// A "symmetric" declaration at the config layer yields two Interconnector
// values, one per direction (spec.md §3).
type Interconnector struct {
	From, To          string             `json:"-"`
	CapacityMW        float64            `json:"capacity_mw"`
	PaidOffCapacityMW float64            `json:"paid_off_capacity_mw,omitempty"`
	Loss              float64            `json:"loss"` // fractional
	LengthKM          float64            `json:"length_km"`
	Type              InterconnectorType `json:"type"`
}

// Validate checks basic sanity for an interconnector.
func (ic Interconnector) Validate() error {
	if ic.Loss < 0 || ic.Loss >= 1 {
		return apperror.NewConfigError("interconnector.loss", "must be in [0,1)")
	}
	if ic.PaidOffCapacityMW > ic.CapacityMW {
		return apperror.NewConfigError("interconnector.paid_off_capacity_mw", "must be <= capacity_mw")
	}
	return nil
}

// Reserves holds per-region reserve requirements (spec.md §3).
type Reserves struct {
	AdditionalLoadMW         float64 `json:"additional_load_mw,omitempty"`
	HydroCapacityReductionMW float64 `json:"hydro_capacity_reduction_mw,omitempty"`
}
