package lp

import (
	"fmt"

	"github.com/devskill-org/gridopt/internal/costcalc"
	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/series"
	"github.com/devskill-org/gridopt/internal/solver"
)

// allocateVars creates every variable named in spec.md §4.2 and
// records its index in the returned Index; per-hour constraints are
// added separately by buildConstraints.
func allocateVars(p *solver.Problem, regions []entity.Region, links []Link, idx series.DatetimeIndex, cfg Config) *Index {
	ix := newIndex()
	H := idx.Len()

	for _, g := range regions {
		name := g.Name()
		ri := newRegionIndex()
		ix.Regions[name] = ri

		for _, src := range g.Sources() {
			lb := src.InstalledFactorLowerBound(cfg.OptimizeCapex)
			capexCoef := annualizedCostPerMW(src.Economics, src.CapacityMW) * src.CapacityMW * cfg.NumYears
			a := p.AddVar(fmt.Sprintf("alphaB_%s_%s", name, src.Type), lb, 1, capexCoef)
			ri.AlphaB[src.Type] = a

			if src.IsTrulyFlexible() {
				opexPerMWh := costcalc.OpexPerMWh(src.Economics, src.CapacityMW)
				pb := make([]int, H)
				for t := 0; t < H; t++ {
					pb[t] = p.AddVarUnbounded(fmt.Sprintf("pB_%s_%s_%d", name, src.Type, t), 0, opexPerMWh)
				}
				ri.PB[src.Type] = pb

				if src.Flexible.RampRate < 1 {
					rb := make([]int, H)
					for t := 0; t < H; t++ {
						var rampObj float64
						if cfg.OptimizeRampUpCosts {
							rampObj = src.Flexible.RampUpCostMWEUR
						}
						rb[t] = p.AddVarUnbounded(fmt.Sprintf("rB_%s_%s_%d", name, src.Type, t), 0, rampObj)
					}
					ri.RB[src.Type] = rb
				}
			}
		}

		ri.AlphaF = make([]int, len(g.FlexibleSources()))
		ri.PF = make([][]int, len(g.FlexibleSources()))
		ri.RF = make([][]int, len(g.FlexibleSources()))
		ri.PH = make([][]int, len(g.FlexibleSources()))
		for i, fs := range g.FlexibleSources() {
			lb := fs.InstalledFactorLowerBound(cfg.OptimizeCapex)
			capexCoef := annualizedCostPerMW(fs.Economics, fs.CapacityMW) * fs.CapacityMW * cfg.NumYears
			ri.AlphaF[i] = p.AddVar(fmt.Sprintf("alphaF_%s_%s", name, fs.Type), lb, 1, capexCoef)

			pf := make([]int, H)
			opexPerMWh := opexPerMWhFor(fs)
			for t := 0; t < H; t++ {
				pf[t] = p.AddVar(fmt.Sprintf("pF_%s_%s_%d", name, fs.Type, t), 0, fs.CapacityMW, opexPerMWh)
			}
			ri.PF[i] = pf

			if fs.RampRate < 1 {
				rf := make([]int, H)
				for t := 0; t < H; t++ {
					var rampObj float64
					if cfg.OptimizeRampUpCosts {
						rampObj = fs.RampUpCostMWEUR
					}
					rf[t] = p.AddVarUnbounded(fmt.Sprintf("rF_%s_%s_%d", name, fs.Type, t), 0, rampObj)
				}
				ri.RF[i] = rf
			}

			if fs.Heat != nil && cfg.OptimizeHeat && g.HeatOptimized() {
				ph := make([]int, H)
				for t := 0; t < H; t++ {
					ph[t] = p.AddVarUnbounded(fmt.Sprintf("pH_%s_%s_%d", name, fs.Type, t), 0, 0)
				}
				ri.PH[i] = ph
			}
		}

		ri.AlphaSMinus = make([]int, len(g.Storages()))
		ri.AlphaSPlus = make([]int, len(g.Storages()))
		ri.ES = make([][]int, len(g.Storages()))
		ri.CS = make([][]int, len(g.Storages()))
		ri.DS = make([][]int, len(g.Storages()))
		for j, st := range g.Storages() {
			lbMinus := st.DischargingInstalledFactorLowerBound(cfg.OptimizeCapex)
			lbPlus := st.ChargingInstalledFactorLowerBound(cfg.OptimizeCapex)
			capexMinus := annualizedCostPerMW(st.Economics, st.DischargingCapacityMW) * st.DischargingCapacityMW * cfg.NumYears
			capexPlus := annualizedCostPerMW(st.Economics, st.ChargingCapacityMW) * st.ChargingCapacityMW * cfg.NumYears
			ri.AlphaSMinus[j] = p.AddVar(fmt.Sprintf("alphaSminus_%s_%s", name, st.Type), lbMinus, 1, capexMinus)
			ri.AlphaSPlus[j] = p.AddVar(fmt.Sprintf("alphaSplus_%s_%s", name, st.Type), lbPlus, 1, capexPlus)

			es := make([]int, H)
			cs := make([]int, H)
			ds := make([]int, H)
			for t := 0; t < H; t++ {
				es[t] = p.AddVarUnbounded(fmt.Sprintf("eS_%s_%s_%d", name, st.Type, t), 0, 0)
				cs[t] = p.AddVar(fmt.Sprintf("cS_%s_%s_%d", name, st.Type, t), 0, st.ChargingCapacityMW, 0)
				dsVarObj := 0.0
				if st.DischargingEfficiency > 0 {
					dsVarObj = opexPerMWhForStorage(st)
				}
				ds[t] = p.AddVar(fmt.Sprintf("dS_%s_%s_%d", name, st.Type, t), 0, st.DischargingCapacityMW, dsVarObj)
			}
			ri.ES[j] = es
			ri.CS[j] = cs
			ri.DS[j] = ds
		}
	}

	for _, l := range links {
		if ix.Flows[l.From] == nil {
			ix.Flows[l.From] = make(map[string][]int)
		}
		flow := make([]int, H)
		for t := 0; t < H; t++ {
			flow[t] = p.AddVar(fmt.Sprintf("flow_%s_%s_%d", l.From, l.To, t), 0, l.CapacityMW, entity.OutflowFeeEURPerMWh)
		}
		ix.Flows[l.From][l.To] = flow
	}
	ix.Links = links

	return ix
}

// opexPerMWhFor wraps costcalc.OpexPerMWh for a flexible source.
func opexPerMWhFor(fs entity.FlexibleSource) float64 {
	return costcalc.OpexPerMWh(fs.Economics, fs.CapacityMW)
}

// opexPerMWhForStorage applies the same variable-cost calculus to a
// storage's discharging side (e.g. O&M per MWh throughput).
func opexPerMWhForStorage(st entity.Storage) float64 {
	return costcalc.OpexPerMWh(st.Economics, st.DischargingCapacityMW)
}
