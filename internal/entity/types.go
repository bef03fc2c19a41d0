// Package entity holds the typed representations of the physical and
// economic entities the dispatch engine optimizes over: basic and
// flexible generation sources, storage, interconnectors, reserves, and
// regions (zones and aggregates of zones). Construction checks the
// invariants of spec.md §3 and does not fill in defaults: an omitted
// field keeps its Go zero value. Entities are immutable
// through LP build and are only mutated afterwards by the solution
// extractor (C5), which scales capacities by optimized installed
// factors.
package entity

// BasicSourceType identifies a non-dispatchable generation technology.
type BasicSourceType string

const (
	Solar    BasicSourceType = "Solar"
	Onshore  BasicSourceType = "Wind onshore"
	Offshore BasicSourceType = "Wind offshore"
	Hydro    BasicSourceType = "Hydro"
	Nuclear  BasicSourceType = "Nuclear"
)

// BasicTypes enumerates all basic source types in a stable order, used
// wherever the engine must iterate deterministically.
var BasicTypes = []BasicSourceType{Solar, Onshore, Offshore, Hydro, Nuclear}

// VRETypes returns the basic types counted as variable renewable energy.
var VRETypes = []BasicSourceType{Solar, Onshore, Offshore}

// FlexibleSourceType identifies a dispatchable generation technology.
type FlexibleSourceType string

const (
	Gas        FlexibleSourceType = "Gas"
	Coal       FlexibleSourceType = "Coal"
	Biomass    FlexibleSourceType = "Biomass"
	Hydrogen   FlexibleSourceType = "Hydrogen"
	LossOfLoad FlexibleSourceType = "LossOfLoad"
)

// HeatCouplingType tags the three CHP heat-coupling constraint patterns
// of spec.md §4.2 item 12.
type HeatCouplingType string

const (
	BackPressureTurbine HeatCouplingType = "BackPressureTurbine"
	ExtractionTurbine   HeatCouplingType = "ExtractionTurbine"
	HeatRecoveryUnit    HeatCouplingType = "HeatRecoveryUnit"
)

// HeatCoupling is the sum type consumed by the LP builder via
// exhaustive matching (spec.md §9 "Polymorphic heat coupling").
// Exactly one of the type-specific field groups is meaningful,
// selected by Type.
type HeatCoupling struct {
	Type HeatCouplingType `json:"type"`

	// BackPressureTurbine
	RatioHeatPerEl float64 `json:"ratio_heat_per_el,omitempty"`

	// ExtractionTurbine
	BaseRatio     float64 `json:"base_ratio,omitempty"`     // β
	ExchangeRate  float64 `json:"exchange_rate,omitempty"`  // γ
	MinElFraction float64 `json:"min_el_fraction,omitempty"` // μ

	// HeatRecoveryUnit
	MaxRatio float64 `json:"max_ratio,omitempty"`
}

// MaxVarRatio returns γ·(1-μ) for an ExtractionTurbine coupling.
func (h HeatCoupling) MaxVarRatio() float64 {
	return h.ExchangeRate * (1 - h.MinElFraction)
}

// StorageType identifies a storage technology (battery chemistry,
// pumped hydro, electrolyser, etc). Kept as a free string since the
// LP treats all storage uniformly via StorageUse and the numeric
// parameters below.
type StorageType string

// StorageUse selects which balance(s) a storage participates in.
type StorageUse string

const (
	UseElectricity         StorageUse = "Electricity"
	UseElectricityAsBasic  StorageUse = "ElectricityAsBasic"
	UseDemandFlexibility   StorageUse = "DemandFlexibility"
	UseHeat                StorageUse = "Heat"
)

// AvailableForReserves reports whether storage of this use mode
// contributes to the reserve-adequacy constraint (spec.md §4.2 item 6).
func (u StorageUse) AvailableForReserves() bool {
	return u == UseElectricity || u == UseElectricityAsBasic
}

// IsElectricity reports whether storage of this use mode participates
// in the electricity balance (spec.md §4.7: statistics and pricing
// only consider ELECTRICITY/ELECTRICITY_AS_BASIC storage).
func (u StorageUse) IsElectricity() bool {
	return u == UseElectricity || u == UseElectricityAsBasic
}

// InterconnectorType identifies the physical transmission medium,
// which affects loss/cost assumptions carried by the caller; the LP
// itself only consumes CapacityMW and Loss.
type InterconnectorType string

const (
	ACOverland     InterconnectorType = "AC_OVERLAND"
	HVDCSubmarine  InterconnectorType = "HVDC_SUBMARINE"
)

// OutflowFeeEURPerMWh is the small per-MWh charge applied to every
// interconnector outflow (spec.md §4.2 item 14, §6).
const OutflowFeeEURPerMWh = 2.0

// CurtailmentEpsilonMWh is the threshold below which curtailment or
// excess production is treated as zero (spec.md §4.6).
const CurtailmentEpsilonMWh = 1e-3
