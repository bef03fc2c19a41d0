// Package extract is the solution extractor: it
// copies solved LP variable values back into each region's hourly
// Frame, scales predefined series and installed capacities by the
// optimized installed factors, and derives the summary columns
// (Wind, VRE, Production, Curtailment, Shortage, ...) the price
// estimator and statistics aggregator consume downstream.
package extract

import (
	"fmt"
	"strings"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/lp"
	"github.com/devskill-org/gridopt/internal/series"
	"github.com/devskill-org/gridopt/internal/solver"
)

// Run mutates every region's Frame and entity capacities in place.
func Run(regions []entity.Region, links []lp.Link, ix *lp.Index, sol *solver.Solution) error {
	for _, g := range regions {
		ri := ix.Regions[g.Name()]
		frame := g.Frame()
		H := frame.Index.Len()

		extractBasicSources(g, ri, sol, frame, H)
		extractFlexibleSources(g, ri, sol, frame, H)
		extractStorages(g, ri, sol, frame, H)
	}

	extractFlows(regions, links, ix, sol)

	for _, g := range regions {
		deriveSummaryColumns(g)
	}
	return nil
}

func extractBasicSources(g entity.Region, ri *lp.RegionIndex, sol *solver.Solution, frame *series.Frame, H int) {
	srcs := g.Sources()
	for k := range srcs {
		src := &srcs[k]
		alpha := sol.Value(ri.AlphaB[src.Type])
		colName := string(src.Type)
		col := frame.Col(colName)

		if src.IsTrulyFlexible() {
			predefined := make([]float64, H)
			copy(predefined, col)
			decrease := make([]float64, H)
			pb := ri.PB[src.Type]
			for t := 0; t < H; t++ {
				solved := sol.Value(pb[t])
				col[t] = solved
				decrease[t] = predefined[t] - solved
			}
			frame.SetCol(colName+"_Predefined", predefined)
			frame.SetCol(colName+"_Decrease", decrease)
			if rb, ok := ri.RB[src.Type]; ok {
				rampCol := make([]float64, H)
				for t := 0; t < H; t++ {
					rampCol[t] = sol.Value(rb[t])
				}
				frame.SetCol(fmt.Sprintf("Ramp_Up_%s", colName), rampCol)
			}
		} else {
			for t := 0; t < H; t++ {
				col[t] *= alpha
			}
		}
		src.CapacityMW *= alpha
		src.MinCapacityMW *= alpha
	}
}

func extractFlexibleSources(g entity.Region, ri *lp.RegionIndex, sol *solver.Solution, frame *series.Frame, H int) {
	flex := g.FlexibleSources()
	for i := range flex {
		fs := &flex[i]
		alpha := sol.Value(ri.AlphaF[i])
		label := string(fs.Type)

		prod := make([]float64, H)
		for t := 0; t < H; t++ {
			prod[t] = sol.Value(ri.PF[i][t])
		}
		frame.SetCol("Flexible_"+label, prod)

		if fs.Heat != nil && ri.PH[i] != nil {
			heat := make([]float64, H)
			elEquiv := make([]float64, H)
			for t := 0; t < H; t++ {
				heat[t] = sol.Value(ri.PH[i][t])
				elEquiv[t] = electricityEquivalent(*fs, prod[t], heat[t])
			}
			frame.SetCol("Heat_Flexible_"+label, heat)
			frame.SetCol("Electricity_Equivalent_Flexible_"+label, elEquiv)
		}

		if rf, ok := ri.RF[i]; ok {
			rampCol := make([]float64, H)
			for t := 0; t < H; t++ {
				rampCol[t] = sol.Value(rf[t])
			}
			frame.SetCol("Ramp_Up_"+label, rampCol)
		}

		fs.CapacityMW *= alpha
		fs.MinCapacityMW *= alpha
	}
}

// electricityEquivalent mirrors the electricity contribution of a CHP
// source used in the LP balance (spec.md §4.2 item 12).
func electricityEquivalent(fs entity.FlexibleSource, pf, ph float64) float64 {
	if fs.Heat == nil || fs.Heat.Type != entity.ExtractionTurbine {
		return pf
	}
	beta := fs.Heat.BaseRatio
	gamma := fs.Heat.ExchangeRate
	return pf - (ph-beta*pf)/gamma
}

func extractStorages(g entity.Region, ri *lp.RegionIndex, sol *solver.Solution, frame *series.Frame, H int) {
	storages := g.Storages()
	for j := range storages {
		st := &storages[j]
		alphaMinus := sol.Value(ri.AlphaSMinus[j])
		alphaPlus := sol.Value(ri.AlphaSPlus[j])
		label := string(st.Type)

		charging := make([]float64, H)
		discharging := make([]float64, H)
		soc := make([]float64, H)
		for t := 0; t < H; t++ {
			charging[t] = sol.Value(ri.CS[j][t])
			discharging[t] = sol.Value(ri.DS[j][t])
			soc[t] = sol.Value(ri.ES[j][t])
		}
		frame.SetCol("Charging_"+label, charging)
		frame.SetCol("Discharging_"+label, discharging)
		frame.SetCol("State_Of_Charge_"+label, soc)

		st.DischargingCapacityMW *= alphaMinus
		st.MinDischargingCapacityMW *= alphaMinus
		st.ChargingCapacityMW *= alphaPlus
		st.MinChargingCapacityMW *= alphaPlus
		if !st.SeparateCharging {
			st.InitialEnergyMWh *= alphaMinus
			st.MaxEnergyMWh *= alphaMinus
			st.FinalEnergyMWh *= alphaMinus
			st.MinFinalEnergyMWh *= alphaMinus
			if st.MidnightEnergyMWh != nil {
				scaled := *st.MidnightEnergyMWh * alphaMinus
				st.MidnightEnergyMWh = &scaled
			}
		}
	}
}

func extractFlows(regions []entity.Region, links []lp.Link, ix *lp.Index, sol *solver.Solution) {
	byName := make(map[string]entity.Region, len(regions))
	for _, g := range regions {
		byName[g.Name()] = g
	}
	for _, l := range links {
		flowVars, ok := ix.Flows[l.From][l.To]
		if !ok {
			continue
		}
		values := make([]float64, len(flowVars))
		for t, v := range flowVars {
			values[t] = sol.Value(v)
		}
		if to, ok := byName[l.To]; ok {
			to.Frame().SetCol("Import_"+l.From, values)
		}
		if from, ok := byName[l.From]; ok {
			from.Frame().SetCol("Export_"+l.To, values)
		}
	}
}

// deriveSummaryColumns computes Wind, VRE, Production, Net_Import,
// Total, Curtailment, Shortage, etc. (spec.md §4.4).
func deriveSummaryColumns(g entity.Region) {
	frame := g.Frame()
	H := frame.Index.Len()

	wind := sumCols(frame, H, string(entity.Onshore), string(entity.Offshore))
	frame.SetCol("Wind", wind)
	vre := sumCols(frame, H, "Wind", string(entity.Solar))
	frame.SetCol("VRE", vre)

	flexibleTotal := make([]float64, H)
	for _, fs := range g.FlexibleSources() {
		label := string(fs.Type)
		col := flexibleEquivalentColumn(frame, label, fs.Heat != nil)
		for t := 0; t < H; t++ {
			flexibleTotal[t] += col[t]
		}
	}
	frame.SetCol("Flexible_Total", flexibleTotal)

	production := sumCols(frame, H, "VRE", string(entity.Hydro), string(entity.Nuclear), "Flexible_Total")
	frame.SetCol("Production", production)

	imports := make([]float64, H)
	exports := make([]float64, H)
	netImport := make([]float64, H)
	chargingTotal := make([]float64, H)
	dischargingTotal := make([]float64, H)
	for name, col := range frame.Columns {
		switch {
		case strings.HasPrefix(name, "Import_"):
			for t := 0; t < H; t++ {
				imports[t] += col[t]
				netImport[t] += col[t]
			}
		case strings.HasPrefix(name, "Export_"):
			for t := 0; t < H; t++ {
				exports[t] += col[t]
				netImport[t] -= col[t]
			}
		case strings.HasPrefix(name, "Charging_"):
			for t := 0; t < H; t++ {
				chargingTotal[t] += col[t]
			}
		case strings.HasPrefix(name, "Discharging_"):
			for t := 0; t < H; t++ {
				dischargingTotal[t] += col[t]
			}
		}
	}
	frame.SetCol("Import", imports)
	frame.SetCol("Export", exports)
	frame.SetCol("Net_Import", netImport)
	frame.SetCol("Charging_Total", chargingTotal)
	frame.SetCol("Discharging_Total", dischargingTotal)

	totalWithoutStorage := sumCols(frame, H, "Production", "Net_Import")
	frame.SetCol("Total_Without_Storage", totalWithoutStorage)

	total := make([]float64, H)
	storable := make([]float64, H)
	curtailment := make([]float64, H)
	shortage := make([]float64, H)
	load := frame.Col("Load")
	for t := 0; t < H; t++ {
		total[t] = totalWithoutStorage[t] - chargingTotal[t] + dischargingTotal[t]
		storable[t] = totalWithoutStorage[t] - load[t]
		curtailment[t] = total[t] - load[t]
		shortage[t] = load[t] - total[t]
	}
	frame.SetCol("Total", total)
	frame.SetCol("Storable", storable)
	frame.SetCol("Curtailment", curtailment)
	frame.SetCol("Shortage", shortage)
}

func flexibleEquivalentColumn(frame *series.Frame, label string, isCHP bool) []float64 {
	if isCHP {
		if col, ok := frame.Columns["Electricity_Equivalent_Flexible_"+label]; ok {
			return col
		}
	}
	return frame.Col("Flexible_" + label)
}

func sumCols(frame *series.Frame, H int, names ...string) []float64 {
	out := make([]float64, H)
	for _, n := range names {
		if !frame.Has(n) {
			continue
		}
		col := frame.Col(n)
		for t := 0; t < H; t++ {
			out[t] += col[t]
		}
	}
	return out
}
