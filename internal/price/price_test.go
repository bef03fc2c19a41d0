package price

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/series"
)

func newPricingZone(t *testing.T) *entity.Zone {
	t.Helper()
	idx := series.NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	frame := series.NewFrame(idx)
	for _, col := range []string{"Load", "Solar", "Wind onshore", "Wind offshore", "Nuclear", "Hydro"} {
		frame.SetCol(col, make([]float64, 1))
	}
	frame.SetCol("Load", []float64{100})
	frame.SetCol("VRE", []float64{0})
	frame.SetCol("Nuclear", []float64{50})
	frame.SetCol("Hydro", []float64{0})
	frame.SetCol("Net_Import", []float64{0})
	frame.SetCol("Curtailment", []float64{0})

	sources := []entity.Source{
		{
			Type:       entity.Nuclear,
			CapacityMW: 100,
			Economics:  entity.SourceEconomics{VariableCostsPerMWHEUR: 20, LifetimeYears: 40, DiscountRate: 1.05},
		},
	}
	zone, err := entity.NewZone("A", sources, nil, nil, entity.Reserves{}, frame, false)
	require.NoError(t, err)
	return zone
}

func TestRun_PicksMarginalSourceWhenNoCurtailmentOrExcess(t *testing.T) {
	zone := newPricingZone(t)
	regions := []entity.Region{zone}

	err := Run(regions, nil, false)
	require.NoError(t, err)

	assert.Equal(t, 20.0, zone.Frame().At("Price", 0))
	assert.Equal(t, "Nuclear", zone.Frame().Labels["Price_Type"][0])
}

func TestRun_CurtailmentForcesZeroPrice(t *testing.T) {
	zone := newPricingZone(t)
	zone.Frame().SetCol("Curtailment", []float64{5})

	err := Run([]entity.Region{zone}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, 0.0, zone.Frame().At("Price", 0))
	assert.Equal(t, "Curtailment", zone.Frame().Labels["Price_Type"][0])
}

func TestHasExcess_TrueWhenMustRunExceedsResidual(t *testing.T) {
	zone := newPricingZone(t)
	// Load 100, VRE 0 => residual 100; Nuclear+Hydro must exceed 100 to excess.
	zone.Frame().SetCol("Nuclear", []float64{150})

	assert.True(t, hasExcess(zone, 0))
}

func TestHasExcess_FalseWhenWithinResidual(t *testing.T) {
	zone := newPricingZone(t)
	assert.False(t, hasExcess(zone, 0))
}
