package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/series"
)

// newStatsZone builds a one-year hourly zone with a single nuclear
// source and no flexible sources or storages, all required columns
// populated with simple constant series so TWh/year totals are easy to
// hand-check.
func newStatsZone(t *testing.T) (*entity.Zone, int) {
	t.Helper()
	hours := 24 * 365
	idx := series.NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), hours)
	frame := series.NewFrame(idx)
	for _, col := range []string{"Load", "Solar", "Wind onshore", "Wind offshore", "Nuclear", "Hydro"} {
		frame.SetCol(col, make([]float64, hours))
	}

	load := make([]float64, hours)
	nuclear := make([]float64, hours)
	price := make([]float64, hours)
	production := make([]float64, hours)
	curtailment := make([]float64, hours)
	vre := make([]float64, hours)
	for i := range load {
		load[i] = 100
		nuclear[i] = 80
		price[i] = 30
		production[i] = 80
		curtailment[i] = 0
	}
	frame.SetCol("Load", load)
	frame.SetCol("Nuclear", nuclear)
	frame.SetCol("Price", price)
	frame.SetCol("Production", production)
	frame.SetCol("Curtailment", curtailment)
	frame.SetCol("VRE", vre)
	frame.SetCol("Net_Import", make([]float64, hours))

	sources := []entity.Source{
		{
			Type:       entity.Nuclear,
			CapacityMW: 100,
			Economics: entity.SourceEconomics{
				OvernightCostsPerKWEUR: 4000,
				ConstructionTimeYears:  7,
				LifetimeYears:          40,
				DecommissioningTimeYears: 10,
				FixedOMCostsPerKWEUR:   100,
				VariableCostsPerMWHEUR: 10,
				DiscountRate:           1.05,
			},
			CO2TPerMWh: 0,
		},
	}
	zone, err := entity.NewZone("A", sources, nil, nil, entity.Reserves{}, frame, false)
	require.NoError(t, err)
	return zone, hours
}

func TestCompute_CapacityInstalledGW(t *testing.T) {
	zone, _ := newStatsZone(t)
	rows := Compute(zone, nil, Options{NumYears: 1})

	var nuclearCap, totalCap float64
	var foundN, foundT bool
	for _, r := range rows {
		if r.Season != Year || r.Stat != CapacityGW {
			continue
		}
		if r.Source == "Nuclear" {
			nuclearCap, foundN = r.Value, true
		}
		if r.Source == TotalKey {
			totalCap, foundT = r.Value, true
		}
	}
	require.True(t, foundN)
	require.True(t, foundT)
	assert.InDelta(t, 0.1, nuclearCap, 1e-9)
	assert.InDelta(t, 0.1, totalCap, 1e-9)
}

func TestCompute_LoadAndProductionTWhPerYear(t *testing.T) {
	zone, hours := newStatsZone(t)
	rows := Compute(zone, nil, Options{NumYears: 1})

	expectedLoadTWh := 100 * float64(hours) / 1_000_000
	expectedProdTWh := 80 * float64(hours) / 1_000_000

	loadVal, loadOK := findRow(rows, Year, TotalKey, LoadTWh)
	require.True(t, loadOK)
	assert.InDelta(t, expectedLoadTWh, loadVal, 1e-6)

	nuclearProd, prodOK := findRow(rows, Year, "Nuclear", ProductionTWh)
	require.True(t, prodOK)
	assert.InDelta(t, 80*float64(hours)/1_000_000, nuclearProd, 1e-6)

	totalProd, totalOK := findRow(rows, Year, TotalKey, ProductionTWh)
	require.True(t, totalOK)
	assert.InDelta(t, expectedProdTWh, totalProd, 1e-6)
}

func TestCompute_NumYearsDividesAnnualTotals(t *testing.T) {
	zone, hours := newStatsZone(t)
	rowsOneYear := Compute(zone, nil, Options{NumYears: 1})
	rowsTwoYears := Compute(zone, nil, Options{NumYears: 2})

	oneYearLoad, _ := findRow(rowsOneYear, Year, TotalKey, LoadTWh)
	twoYearLoad, _ := findRow(rowsTwoYears, Year, TotalKey, LoadTWh)
	_ = hours
	assert.InDelta(t, oneYearLoad/2, twoYearLoad, 1e-9)
}

func TestCompute_CapacityFactorMatchesProductionOverCapacityTimesHours(t *testing.T) {
	zone, hours := newStatsZone(t)
	rows := Compute(zone, nil, Options{NumYears: 1})

	factor, ok := findRow(rows, Year, "Nuclear", CapacityFactor)
	require.True(t, ok)
	// production 80 MW constant over a 100 MW plant => capacity factor 0.8.
	assert.InDelta(t, 0.8, factor, 1e-6)
	_ = hours
}

func TestCompute_EmissionsZeroWhenCO2FactorZero(t *testing.T) {
	zone, _ := newStatsZone(t)
	rows := Compute(zone, nil, Options{NumYears: 1})

	emissions, ok := findRow(rows, Year, TotalKey, EmissionsMtCO2)
	require.True(t, ok)
	assert.Equal(t, 0.0, emissions)
}

func TestCompute_SummerAndWinterPartitionTheYear(t *testing.T) {
	zone, hours := newStatsZone(t)
	rows := Compute(zone, nil, Options{NumYears: 1})

	summerLoad, sOK := findRow(rows, Summer, TotalKey, LoadTWh)
	winterLoad, wOK := findRow(rows, Winter, TotalKey, LoadTWh)
	yearLoad, yOK := findRow(rows, Year, TotalKey, LoadTWh)
	require.True(t, sOK)
	require.True(t, wOK)
	require.True(t, yOK)
	assert.InDelta(t, yearLoad, summerLoad+winterLoad, 1e-6)
	_ = hours
}

func TestCompute_AverageConsumerPriceIsLoadWeighted(t *testing.T) {
	zone, _ := newStatsZone(t)
	rows := Compute(zone, nil, Options{NumYears: 1})

	avgPrice, ok := findRow(rows, Year, TotalKey, AverageConsumerPriceEUR)
	require.True(t, ok)
	// price and load are both constant, so the load-weighted average
	// degenerates to the constant price.
	assert.InDelta(t, 30.0, avgPrice, 1e-9)
}

func TestInSeason_BoundariesMatchDayOfYearWindow(t *testing.T) {
	assert.False(t, inSeason(91, Summer))
	assert.True(t, inSeason(92, Summer))
	assert.True(t, inSeason(273, Summer))
	assert.False(t, inSeason(274, Summer))

	assert.True(t, inSeason(91, Winter))
	assert.False(t, inSeason(92, Winter))
	assert.False(t, inSeason(273, Winter))
	assert.True(t, inSeason(274, Winter))

	assert.True(t, inSeason(1, Year))
	assert.True(t, inSeason(365, Year))
}

func findRow(rows []Row, season Season, source string, stat StatType) (float64, bool) {
	for _, r := range rows {
		if r.Season == season && r.Source == source && r.Stat == stat {
			return r.Value, true
		}
	}
	return 0, false
}
