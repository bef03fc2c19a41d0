package entity

import (
	"fmt"

	"github.com/devskill-org/gridopt/internal/apperror"
)

// Storage models a charge/discharge asset: batteries, pumped hydro,
// electrolysers, thermal stores (spec.md §3).
type Storage struct {
	Type StorageType `json:"type"`
	Use  StorageUse  `json:"use"`

	DischargingCapacityMW        float64 `json:"discharging_capacity_mw"`
	MinDischargingCapacityMW     float64 `json:"min_discharging_capacity_mw"`
	PaidOffDischargingCapacityMW float64 `json:"paid_off_discharging_capacity_mw,omitempty"`
	ChargingCapacityMW           float64 `json:"charging_capacity_mw"`
	MinChargingCapacityMW        float64 `json:"min_charging_capacity_mw"`
	PaidOffChargingCapacityMW    float64 `json:"paid_off_charging_capacity_mw,omitempty"`

	ChargingEfficiency    float64 `json:"charging_efficiency"`    // η⁺
	DischargingEfficiency float64 `json:"discharging_efficiency"` // η⁻

	MaxEnergyMWh      float64  `json:"max_energy_mwh"`
	InitialEnergyMWh  float64  `json:"initial_energy_mwh"`
	FinalEnergyMWh    float64  `json:"final_energy_mwh"`
	MinFinalEnergyMWh float64  `json:"min_final_energy_mwh"`
	MidnightEnergyMWh *float64 `json:"midnight_energy_mwh,omitempty"`

	LossRatePerDay    float64 `json:"loss_rate_per_day,omitempty"`
	UseMWhPerDay      float64 `json:"use_mwh_per_day,omitempty"`
	CostSellBuyMWhEUR float64 `json:"cost_sell_buy_mwh_eur,omitempty"`

	RampRate float64 `json:"ramp_rate"` // (0,1], 1 means unconstrained

	InflowHourlyDataKey     string  `json:"inflow_hourly_data_key,omitempty"`
	InflowMinDischargeRatio float64 `json:"inflow_min_discharge_ratio,omitempty"` // only meaningful if InflowHourlyDataKey != ""

	MaxCapacityMWHourlyDataKey string  `json:"max_capacity_mw_hourly_data_key,omitempty"`
	MaxCapacityMWHourlyFactor  float64 `json:"max_capacity_mw_hourly_factor,omitempty"`

	MinChargingCapacityRatioToVRE float64 `json:"min_charging_capacity_ratio_to_vre,omitempty"`

	SeparateCharging bool `json:"separate_charging,omitempty"` // electrolyser-like: charging side scaled independently

	Economics SourceEconomics `json:"economics"`
}

// AvailableForReserves derives from Use (spec.md §3).
func (s Storage) AvailableForReserves() bool {
	return s.Use.AvailableForReserves()
}

// Validate checks the invariants of spec.md §3 for storage.
func (s Storage) Validate() error {
	field := fmt.Sprintf("storage[%s]", s.Type)
	if s.PaidOffDischargingCapacityMW > s.MinDischargingCapacityMW {
		return apperror.NewConfigError(field+".paid_off_discharging_capacity_mw", "must be <= min_discharging_capacity_mw")
	}
	if s.PaidOffChargingCapacityMW > s.MinChargingCapacityMW {
		return apperror.NewConfigError(field+".paid_off_charging_capacity_mw", "must be <= min_charging_capacity_mw")
	}
	if s.MinDischargingCapacityMW > s.DischargingCapacityMW {
		return apperror.NewConfigError(field+".min_discharging_capacity_mw", "must be <= discharging_capacity_mw")
	}
	if s.MinChargingCapacityMW > s.ChargingCapacityMW {
		return apperror.NewConfigError(field+".min_charging_capacity_mw", "must be <= charging_capacity_mw")
	}
	if s.RampRate <= 0 || s.RampRate > 1 {
		return apperror.NewConfigError(field+".ramp_rate", "must be in (0,1]")
	}
	if s.LossRatePerDay >= 1 {
		return apperror.NewConfigError(field+".loss_rate_per_day", "must be < 1")
	}
	if s.MinFinalEnergyMWh > s.FinalEnergyMWh || s.FinalEnergyMWh > s.MaxEnergyMWh {
		return apperror.NewConfigError(field+".final_energy_mwh", "must satisfy min_final_energy_mwh <= final_energy_mwh <= max_energy_mwh")
	}
	if s.Use == UseElectricity && !s.SeparateCharging {
		if s.ChargingCapacityMW != s.DischargingCapacityMW && s.MinChargingCapacityMW < s.ChargingCapacityMW && s.MinDischargingCapacityMW < s.DischargingCapacityMW {
			// charging/discharging installed-factor is shared (alpha_S+ == alpha_S-);
			// the nominal MW values need not be equal but the *ratios* min/nominal
			// must coincide for the shared factor to be meaningful for both sides.
			ratioDis := s.MinDischargingCapacityMW / s.DischargingCapacityMW
			ratioChg := s.MinChargingCapacityMW / s.ChargingCapacityMW
			if abs(ratioDis-ratioChg) > 1e-9 {
				return apperror.NewConfigError(field, "non-separate-charging storage must have matching charging/discharging installed-factor ratios")
			}
		}
	}
	return s.Economics.Validate(field)
}

// HasDischargingScaledBound reports whether d_S <= cap*alpha is needed.
func (s Storage) HasDischargingScaledBound() bool {
	return s.MinDischargingCapacityMW < s.DischargingCapacityMW
}

// HasChargingScaledBound reports whether c_S <= cap*alpha is needed.
func (s Storage) HasChargingScaledBound() bool {
	return s.MinChargingCapacityMW < s.ChargingCapacityMW
}

// DischargingInstalledFactorLowerBound returns lb for alpha_S-.
func (s Storage) DischargingInstalledFactorLowerBound(optimizeCapex bool) float64 {
	if optimizeCapex {
		if s.DischargingCapacityMW <= 0 {
			return 0
		}
		return s.MinDischargingCapacityMW / s.DischargingCapacityMW
	}
	return 1
}

// ChargingInstalledFactorLowerBound returns lb for alpha_S+.
func (s Storage) ChargingInstalledFactorLowerBound(optimizeCapex bool) float64 {
	if optimizeCapex {
		if s.ChargingCapacityMW <= 0 {
			return 0
		}
		return s.MinChargingCapacityMW / s.ChargingCapacityMW
	}
	return 1
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
