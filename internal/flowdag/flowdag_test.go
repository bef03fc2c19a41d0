package flowdag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/lp"
	"github.com/devskill-org/gridopt/internal/series"
)

func newTestZone(t *testing.T, name string, hours int) (*entity.Zone, series.DatetimeIndex) {
	t.Helper()
	idx := series.NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), hours)
	frame := series.NewFrame(idx)
	for _, col := range []string{"Load", "Solar", "Wind onshore", "Wind offshore", "Nuclear", "Hydro"} {
		frame.SetCol(col, make([]float64, hours))
	}
	zone, err := entity.NewZone(name, nil, nil, nil, entity.Reserves{}, frame, false)
	require.NoError(t, err)
	return zone, idx
}

func TestOrder_LinearChain(t *testing.T) {
	a, idx := newTestZone(t, "A", 2)
	b, _ := newTestZone(t, "B", 2)
	c, _ := newTestZone(t, "C", 2)

	// A exports to B, B exports to C, at hour 0.
	a.Frame().SetCol("Import", []float64{0, 0})
	b.Frame().SetCol("Import", []float64{10, 0})
	b.Frame().SetCol("Import_A", []float64{10, 0})
	c.Frame().SetCol("Import", []float64{5, 0})
	c.Frame().SetCol("Import_B", []float64{5, 0})

	regions := []entity.Region{a, b, c}
	links := []lp.Link{
		{Interconnector: entity.Interconnector{From: "A", To: "B", CapacityMW: 100}},
		{Interconnector: entity.Interconnector{From: "B", To: "C", CapacityMW: 100}},
	}

	order, err := Order(0, regions, links)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
	_ = idx
}

func TestOrder_DetectsCycle(t *testing.T) {
	a, _ := newTestZone(t, "A", 1)
	b, _ := newTestZone(t, "B", 1)

	// Both regions report positive gross import with no zero/negative
	// starting candidate, so no region can ever become ready.
	a.Frame().SetCol("Import", []float64{5})
	a.Frame().SetCol("Import_B", []float64{5})
	b.Frame().SetCol("Import", []float64{5})
	b.Frame().SetCol("Import_A", []float64{5})

	regions := []entity.Region{a, b}
	links := []lp.Link{
		{Interconnector: entity.Interconnector{From: "A", To: "B", CapacityMW: 100}},
		{Interconnector: entity.Interconnector{From: "B", To: "A", CapacityMW: 100}},
	}

	_, err := Order(0, regions, links)
	assert.Error(t, err)
}

func TestRealExportersTo_IgnoresZeroCapacityLinks(t *testing.T) {
	a, _ := newTestZone(t, "A", 1)
	b, _ := newTestZone(t, "B", 1)
	b.Frame().SetCol("Import_A", []float64{10})

	byName := map[string]entity.Region{"A": a, "B": b}
	links := []lp.Link{
		{Interconnector: entity.Interconnector{From: "A", To: "B", CapacityMW: 0}},
	}

	exporters := RealExportersTo("B", 0, links, byName)
	assert.Empty(t, exporters)
}
