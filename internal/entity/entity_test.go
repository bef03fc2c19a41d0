package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/series"
)

func validEconomics() SourceEconomics {
	return SourceEconomics{
		OvernightCostsPerKWEUR: 1000,
		ConstructionTimeYears:  2,
		LifetimeYears:          25,
		DiscountRate:           1.05,
	}
}

func TestSourceEconomics_Validate_RejectsNonPositiveLifetimeAndDiscountRate(t *testing.T) {
	base := validEconomics()
	base.LifetimeYears = 0
	assert.Error(t, base.Validate("x"))

	base = validEconomics()
	base.DiscountRate = 0
	assert.Error(t, base.Validate("x"))

	assert.NoError(t, validEconomics().Validate("x"))
}

func TestSource_IsTrulyFlexible_RequiresPositiveMaxDecreaseAndRoomBelowCapacity(t *testing.T) {
	s := Source{CapacityMW: 100}
	assert.False(t, s.IsTrulyFlexible(), "no flexible extras set")

	s.Flexible = FlexibleBasicExtras{MaxDecreaseMW: 10, MinProductionMW: 50}
	assert.True(t, s.IsTrulyFlexible())

	s.Flexible.MinProductionMW = 100
	assert.False(t, s.IsTrulyFlexible(), "min production at full capacity leaves no room to flex")
}

func TestSource_Validate_RejectsPaidOffAboveMinCapacity(t *testing.T) {
	s := Source{Type: Nuclear, CapacityMW: 100, MinCapacityMW: 50, PaidOffCapacityMW: 60, Economics: validEconomics()}
	err := s.Validate()
	assert.Error(t, err)
}

func TestSource_Validate_RejectsOutOfRangeRampRateWhenFlexible(t *testing.T) {
	s := Source{
		Type: Nuclear, CapacityMW: 100, MinCapacityMW: 50, Economics: validEconomics(),
		Flexible: FlexibleBasicExtras{MaxDecreaseMW: 10, RampRate: 1.5},
	}
	assert.Error(t, s.Validate())
}

func TestSource_Validate_AcceptsWellFormedSource(t *testing.T) {
	s := Source{Type: Nuclear, CapacityMW: 100, MinCapacityMW: 50, Economics: validEconomics()}
	assert.NoError(t, s.Validate())
}

func TestSource_InstalledFactorLowerBound(t *testing.T) {
	s := Source{CapacityMW: 100, MinCapacityMW: 40}
	assert.Equal(t, 1.0, s.InstalledFactorLowerBound(false))
	assert.Equal(t, 0.4, s.InstalledFactorLowerBound(true))

	zeroCapacity := Source{CapacityMW: 0}
	assert.Equal(t, 0.0, zeroCapacity.InstalledFactorLowerBound(true))
}

func TestFlexibleSource_Validate_RejectsMinAboveCapacity(t *testing.T) {
	f := FlexibleSource{Type: Gas, CapacityMW: 100, MinCapacityMW: 150, RampRate: 1, Economics: validEconomics()}
	assert.Error(t, f.Validate())
}

func TestFlexibleSource_Validate_RejectsOutOfRangeRampRate(t *testing.T) {
	f := FlexibleSource{Type: Gas, CapacityMW: 100, MinCapacityMW: 20, RampRate: 0, Economics: validEconomics()}
	assert.Error(t, f.Validate())
}

func TestFlexibleSource_HasCapacityScaledBound(t *testing.T) {
	f := FlexibleSource{CapacityMW: 100, MinCapacityMW: 100}
	assert.False(t, f.HasCapacityScaledBound())

	f.MinCapacityMW = 50
	assert.True(t, f.HasCapacityScaledBound())
}

func TestInterconnector_Validate_RejectsLossOutOfRange(t *testing.T) {
	ic := Interconnector{CapacityMW: 100, Loss: 1}
	assert.Error(t, ic.Validate())

	ic.Loss = -0.1
	assert.Error(t, ic.Validate())

	ic.Loss = 0.05
	assert.NoError(t, ic.Validate())
}

func TestInterconnector_Validate_RejectsPaidOffAboveCapacity(t *testing.T) {
	ic := Interconnector{CapacityMW: 100, PaidOffCapacityMW: 150, Loss: 0.05}
	assert.Error(t, ic.Validate())
}

func validStorage() Storage {
	return Storage{
		Type: "battery", Use: UseElectricity,
		DischargingCapacityMW: 100, MinDischargingCapacityMW: 50,
		ChargingCapacityMW: 80, MinChargingCapacityMW: 40,
		ChargingEfficiency: 0.9, DischargingEfficiency: 0.9,
		MaxEnergyMWh: 400, InitialEnergyMWh: 200, FinalEnergyMWh: 200, MinFinalEnergyMWh: 100,
		RampRate: 1, Economics: validEconomics(),
	}
}

func TestStorage_Validate_AcceptsMatchingChargeDischargeRatios(t *testing.T) {
	assert.NoError(t, validStorage().Validate())
}

func TestStorage_Validate_RejectsMismatchedChargeDischargeRatiosWhenNotSeparate(t *testing.T) {
	s := validStorage()
	s.MinChargingCapacityMW = 20 // ratio now differs from discharging's 50/100
	assert.Error(t, s.Validate())
}

func TestStorage_Validate_AllowsMismatchedRatiosWhenSeparateCharging(t *testing.T) {
	s := validStorage()
	s.MinChargingCapacityMW = 20
	s.SeparateCharging = true
	assert.NoError(t, s.Validate())
}

func TestStorage_Validate_RejectsFinalEnergyOutsideBounds(t *testing.T) {
	s := validStorage()
	s.FinalEnergyMWh = 500 // above MaxEnergyMWh
	assert.Error(t, s.Validate())
}

func TestStorage_Validate_RejectsLossRateAtOrAboveOne(t *testing.T) {
	s := validStorage()
	s.LossRatePerDay = 1
	assert.Error(t, s.Validate())
}

func TestStorage_InstalledFactorLowerBounds(t *testing.T) {
	s := validStorage()
	assert.Equal(t, 0.5, s.DischargingInstalledFactorLowerBound(true))
	assert.Equal(t, 1.0, s.DischargingInstalledFactorLowerBound(false))
	assert.Equal(t, 0.5, s.ChargingInstalledFactorLowerBound(true))
	assert.Equal(t, 1.0, s.ChargingInstalledFactorLowerBound(false))
}

func TestStorageUse_AvailableForReservesAndIsElectricity(t *testing.T) {
	assert.True(t, UseElectricity.AvailableForReserves())
	assert.True(t, UseElectricityAsBasic.IsElectricity())
	assert.False(t, UseHeat.AvailableForReserves())
	assert.False(t, UseDemandFlexibility.IsElectricity())
}

func TestHeatCoupling_MaxVarRatio(t *testing.T) {
	h := HeatCoupling{Type: ExtractionTurbine, ExchangeRate: 0.2, MinElFraction: 0.5}
	assert.InDelta(t, 0.1, h.MaxVarRatio(), 1e-9)
}

func newValidZoneFrame(hours int) *series.Frame {
	idx := series.NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), hours)
	f := series.NewFrame(idx)
	for _, col := range []string{"Load", "Solar", "Wind onshore", "Wind offshore", "Nuclear", "Hydro"} {
		f.SetCol(col, make([]float64, hours))
	}
	return f
}

func TestNewZone_RejectsMissingRequiredColumn(t *testing.T) {
	idx := series.NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	f := series.NewFrame(idx)
	f.SetCol("Load", []float64{0})

	_, err := NewZone("A", nil, nil, nil, Reserves{}, f, false)
	assert.Error(t, err)
}

func TestNewZone_RequiresHeatDemandColumnWhenHeatOptimized(t *testing.T) {
	f := newValidZoneFrame(1)
	_, err := NewZone("A", nil, nil, nil, Reserves{}, f, true)
	assert.Error(t, err, "heat-optimized zones require Heat_Demand_MW")

	f.SetCol("Heat_Demand_MW", []float64{0})
	_, err = NewZone("A", nil, nil, nil, Reserves{}, f, true)
	assert.NoError(t, err)
}

func TestNewZone_PropagatesSourceValidationError(t *testing.T) {
	f := newValidZoneFrame(1)
	bad := Source{Type: Nuclear, CapacityMW: 100, MinCapacityMW: 200, Economics: validEconomics()}
	_, err := NewZone("A", []Source{bad}, nil, nil, Reserves{}, f, false)
	require.Error(t, err)
}

func TestNewZone_AccessorsReturnConstructorArguments(t *testing.T) {
	f := newValidZoneFrame(1)
	src := Source{Type: Nuclear, CapacityMW: 100, MinCapacityMW: 50, Economics: validEconomics()}
	reserves := Reserves{AdditionalLoadMW: 5}

	zone, err := NewZone("A", []Source{src}, nil, nil, reserves, f, false)
	require.NoError(t, err)

	assert.Equal(t, "A", zone.Name())
	assert.Equal(t, []Source{src}, zone.Sources())
	assert.Equal(t, reserves, zone.Reserves())
	assert.Same(t, f, zone.Frame())
	assert.False(t, zone.HeatOptimized())
}
