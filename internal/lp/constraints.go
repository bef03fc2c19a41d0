package lp

import (
	"fmt"
	"math"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/series"
	"github.com/devskill-org/gridopt/internal/solver"
)

// buildConstraints adds every per-hour and global constraint family of
// spec.md §4.2 items 1-13 (item 14, the outflow fee, is folded into the
// flow variables' objective coefficients at creation).
func buildConstraints(p *solver.Problem, regions []entity.Region, links []Link, idx series.DatetimeIndex, ix *Index, cfg Config) error {
	H := idx.Len()

	byName := make(map[string]entity.Region, len(regions))
	for _, g := range regions {
		byName[g.Name()] = g
	}

	addStaticStorageConstraints(p, regions, ix, cfg)
	addGlobalProductionCaps(p, regions, ix, cfg)

	for t := 0; t < H; t++ {
		for _, g := range regions {
			ri := ix.Regions[g.Name()]

			elEquiv := electricityEquivalentTerms(g, ri, t)
			addElectricityAdequacy(p, g, ri, ix, links, t, elEquiv)

			if cfg.OptimizeHeat && g.HeatOptimized() {
				addHeatAdequacy(p, g, ri, t)
			}

			addFlexibleBasicBounds(p, g, ri, t)
			addCapacityScaledBounds(p, g, ri, t)
			addStorageScaledBounds(p, g, ri, t, cfg)
			addReserveAdequacy(p, g, ri, t)
			addRampConstraints(p, g, ri, t)
			addStorageStateTransition(p, g, ri, t, cfg)
			addInflowMinDischarge(p, g, ri, t)
			addMidnightSnap(p, g, ri, t, cfg)

			if t == H-1 {
				addFinalStateWindow(p, g, ri, cfg)
			}

			if cfg.OptimizeHeat && g.HeatOptimized() {
				addHeatCoupling(p, g, ri, t)
			}
		}
	}
	return nil
}

// electricityEquivalentTerms returns, for each flexible source index i,
// the linear terms contributing p_F_el[i,t] to the electricity balance
// (spec.md §4.2 item 12: only ExtractionTurbine reduces the electricity
// contribution relative to raw p_F).
func electricityEquivalentTerms(g entity.Region, ri *RegionIndex, t int) map[int][]solver.Term {
	out := make(map[int][]solver.Term, len(g.FlexibleSources()))
	for i, fs := range g.FlexibleSources() {
		pf := ri.PF[i][t]
		if fs.Heat != nil && fs.Heat.Type == entity.ExtractionTurbine && ri.PH[i] != nil {
			beta := fs.Heat.BaseRatio
			gamma := fs.Heat.ExchangeRate
			ph := ri.PH[i][t]
			out[i] = []solver.Term{
				{Var: pf, Coef: 1 + beta/gamma},
				{Var: ph, Coef: -1 / gamma},
			}
			continue
		}
		out[i] = []solver.Term{{Var: pf, Coef: 1}}
	}
	return out
}

func addElectricityAdequacy(p *solver.Problem, g entity.Region, ri *RegionIndex, ix *Index, links []Link, t int, elEquiv map[int][]solver.Term) {
	var terms []solver.Term
	frame := g.Frame()

	for _, src := range g.Sources() {
		a := ri.AlphaB[src.Type]
		if src.IsTrulyFlexible() {
			terms = append(terms, solver.Term{Var: ri.PB[src.Type][t], Coef: 1})
		} else {
			row := frame.At(string(src.Type), t)
			terms = append(terms, solver.Term{Var: a, Coef: row})
		}
	}

	for i := range g.FlexibleSources() {
		terms = append(terms, elEquiv[i]...)
	}

	for j, st := range g.Storages() {
		if st.Use == entity.UseElectricity || st.Use == entity.UseElectricityAsBasic {
			terms = append(terms, solver.Term{Var: ri.DS[j][t], Coef: 1})
			terms = append(terms, solver.Term{Var: ri.CS[j][t], Coef: -1})
		}
	}

	for from, tos := range ix.Flows {
		for to, flowVars := range tos {
			if to == g.Name() {
				link := findLink(links, from, to)
				terms = append(terms, solver.Term{Var: flowVars[t], Coef: 1 - link.Loss})
			}
			if from == g.Name() {
				terms = append(terms, solver.Term{Var: flowVars[t], Coef: -1})
			}
		}
	}

	rhs := frame.At("Load", t) + g.Reserves().AdditionalLoadMW
	p.AddConstraint(fmt.Sprintf("adequacy_elec_%s_%d", g.Name(), t), terms, solver.GE, rhs)
}

func findLink(links []Link, from, to string) Link {
	for _, l := range links {
		if l.From == from && l.To == to {
			return l
		}
	}
	return Link{}
}

func addHeatAdequacy(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	var terms []solver.Term
	for i, fs := range g.FlexibleSources() {
		if fs.Heat != nil && ri.PH[i] != nil {
			terms = append(terms, solver.Term{Var: ri.PH[i][t], Coef: 1})
		}
	}
	for j, st := range g.Storages() {
		if st.Use == entity.UseHeat {
			terms = append(terms, solver.Term{Var: ri.DS[j][t], Coef: 1})
			terms = append(terms, solver.Term{Var: ri.CS[j][t], Coef: -1})
		}
	}
	rhs := g.Frame().At("Heat_Demand_MW", t)
	p.AddConstraint(fmt.Sprintf("adequacy_heat_%s_%d", g.Name(), t), terms, solver.EQ, rhs)
}

func addFlexibleBasicBounds(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	frame := g.Frame()
	for _, src := range g.Sources() {
		if !src.IsTrulyFlexible() {
			continue
		}
		M := frame.At(string(src.Type), t)
		m := src.Flexible.MinProductionMW
		mPrime := m
		if src.CapacityMW > 0 {
			dynamic := M - (M/src.CapacityMW)*src.Flexible.MaxDecreaseMW
			if dynamic > mPrime {
				mPrime = dynamic
			}
		}
		pb := ri.PB[src.Type][t]
		a := ri.AlphaB[src.Type]
		name := fmt.Sprintf("flexbasic_%s_%s_%d", g.Name(), src.Type, t)
		if math.Abs(mPrime-M) < 1e-9 {
			p.AddConstraint(name, []solver.Term{{Var: pb, Coef: 1}, {Var: a, Coef: -M}}, solver.EQ, 0)
			continue
		}
		p.AddConstraint(name+"_lo", []solver.Term{{Var: pb, Coef: 1}, {Var: a, Coef: -mPrime}}, solver.GE, 0)
		p.AddConstraint(name+"_hi", []solver.Term{{Var: pb, Coef: 1}, {Var: a, Coef: -M}}, solver.LE, 0)
	}
}

func addCapacityScaledBounds(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	for i, fs := range g.FlexibleSources() {
		if !fs.HasCapacityScaledBound() {
			continue
		}
		pf := ri.PF[i][t]
		a := ri.AlphaF[i]
		p.AddConstraint(fmt.Sprintf("capscaled_%s_%s_%d", g.Name(), fs.Type, t),
			[]solver.Term{{Var: pf, Coef: 1}, {Var: a, Coef: -fs.CapacityMW}}, solver.LE, 0)
	}
}

func addStorageScaledBounds(p *solver.Problem, g entity.Region, ri *RegionIndex, t int, cfg Config) {
	frame := g.Frame()
	for j, st := range g.Storages() {
		cs := ri.CS[j][t]
		ds := ri.DS[j][t]
		aPlus := ri.AlphaSPlus[j]
		aMinus := ri.AlphaSMinus[j]

		if st.HasChargingScaledBound() {
			p.AddConstraint(fmt.Sprintf("chgscaled_%s_%s_%d", g.Name(), st.Type, t),
				[]solver.Term{{Var: cs, Coef: 1}, {Var: aPlus, Coef: -st.ChargingCapacityMW}}, solver.LE, 0)
		}
		if st.HasDischargingScaledBound() {
			p.AddConstraint(fmt.Sprintf("disscaled_%s_%s_%d", g.Name(), st.Type, t),
				[]solver.Term{{Var: ds, Coef: 1}, {Var: aMinus, Coef: -st.DischargingCapacityMW}}, solver.LE, 0)
		}
		if st.MaxCapacityMWHourlyDataKey != "" {
			bound := st.MaxCapacityMWHourlyFactor * frame.At(st.MaxCapacityMWHourlyDataKey, t)
			p.AddConstraint(fmt.Sprintf("chghourly_%s_%s_%d", g.Name(), st.Type, t),
				[]solver.Term{{Var: cs, Coef: 1}}, solver.LE, bound)
			p.AddConstraint(fmt.Sprintf("dishourly_%s_%s_%d", g.Name(), st.Type, t),
				[]solver.Term{{Var: ds, Coef: 1}}, solver.LE, bound)
		}

		scale := 1.0
		if st.SeparateCharging {
			scale = cfg.NumYears
		}
		es := ri.ES[j][t]
		p.AddConstraint(fmt.Sprintf("esbound_%s_%s_%d", g.Name(), st.Type, t),
			[]solver.Term{{Var: es, Coef: 1}, {Var: aMinus, Coef: -st.MaxEnergyMWh * scale}}, solver.LE, 0)
	}
}

func addReserveAdequacy(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	required := g.Reserves().HydroCapacityReductionMW
	if required <= 0 {
		return
	}
	var terms []solver.Term
	for j, st := range g.Storages() {
		if !st.AvailableForReserves() {
			continue
		}
		terms = append(terms, solver.Term{Var: ri.AlphaSMinus[j], Coef: st.DischargingCapacityMW})
		terms = append(terms, solver.Term{Var: ri.DS[j][t], Coef: -1})
	}
	if len(terms) == 0 {
		return
	}
	p.AddConstraint(fmt.Sprintf("reserve_%s_%d", g.Name(), t), terms, solver.GE, required)
}

func addRampConstraints(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	frame := g.Frame()

	for _, src := range g.Sources() {
		if !src.IsTrulyFlexible() || src.Flexible.RampRate >= 1 {
			continue
		}
		r := ri.RB[src.Type][t]
		cur := ri.PB[src.Type][t]
		a := ri.AlphaB[src.Type]
		ramp := src.Flexible.RampRate * src.CapacityMW
		if t == 0 {
			p.AddConstraint(fmt.Sprintf("ramp0_%s_%s", g.Name(), src.Type), []solver.Term{{Var: r, Coef: 1}}, solver.EQ, 0)
			continue
		}
		prev := ri.PB[src.Type][t-1]
		Mt := frame.At(string(src.Type), t)
		Mprev := frame.At(string(src.Type), t-1)
		predefinedDelta := Mt - Mprev
		var upExtra, downExtra float64
		if predefinedDelta > ramp {
			upExtra = predefinedDelta - ramp
		}
		if -predefinedDelta > ramp {
			downExtra = -predefinedDelta - ramp
		}
		addRampRows(p, g.Name(), string(src.Type), t, r, prev, cur, a, ramp, upExtra, downExtra)
	}

	for i, fs := range g.FlexibleSources() {
		if fs.RampRate >= 1 {
			continue
		}
		r := ri.RF[i][t]
		cur := ri.PF[i][t]
		a := ri.AlphaF[i]
		ramp := fs.RampRate * fs.CapacityMW
		if t == 0 {
			p.AddConstraint(fmt.Sprintf("rampF0_%s_%s", g.Name(), fs.Type), []solver.Term{{Var: r, Coef: 1}}, solver.EQ, 0)
			continue
		}
		prev := ri.PF[i][t-1]
		addRampRows(p, g.Name(), string(fs.Type), t, r, prev, cur, a, ramp, 0, 0)
	}
}

// addRampRows emits the three ramp rows of spec.md §4.2 item 7: the
// ramp-budget bound, the downward limit, and the upward limit, the
// latter two widened by upExtra/downExtra when a predefined curve
// (truly-flexible basic sources only) swings faster than ramp itself.
func addRampRows(p *solver.Problem, region, label string, t int, r, prev, cur, alpha int, ramp, upExtra, downExtra float64) {
	p.AddConstraint(fmt.Sprintf("rampbudget_%s_%s_%d", region, label, t),
		[]solver.Term{{Var: r, Coef: 1}, {Var: alpha, Coef: -ramp}}, solver.LE, 0)

	p.AddConstraint(fmt.Sprintf("rampdown_%s_%s_%d", region, label, t),
		[]solver.Term{
			{Var: prev, Coef: 1}, {Var: r, Coef: 1}, {Var: alpha, Coef: -ramp - downExtra}, {Var: cur, Coef: -1},
		}, solver.LE, 0)

	p.AddConstraint(fmt.Sprintf("rampup_%s_%s_%d", region, label, t),
		[]solver.Term{
			{Var: prev, Coef: 1}, {Var: r, Coef: 1}, {Var: alpha, Coef: upExtra}, {Var: cur, Coef: -1},
		}, solver.GE, 0)
}

func addStorageStateTransition(p *solver.Problem, g entity.Region, ri *RegionIndex, t int, cfg Config) {
	frame := g.Frame()
	for j, st := range g.Storages() {
		es := ri.ES[j][t]
		cs := ri.CS[j][t]
		ds := ri.DS[j][t]
		aMinus := ri.AlphaSMinus[j]

		k := math.Pow(1-st.LossRatePerDay, 1.0/24)
		var prevTerms []solver.Term
		if t == 0 {
			scale := 1.0
			if st.SeparateCharging {
				scale = cfg.NumYears
			}
			prevTerms = []solver.Term{{Var: aMinus, Coef: -st.InitialEnergyMWh * scale}}
		} else {
			prevTerms = []solver.Term{{Var: ri.ES[j][t-1], Coef: -k}}
		}

		inflow := 0.0
		if st.InflowHourlyDataKey != "" {
			inflow = frame.At(st.InflowHourlyDataKey, t)
		}
		drainCoef := st.UseMWhPerDay / 24

		name := fmt.Sprintf("storagebal_%s_%s_%d", g.Name(), st.Type, t)
		switch {
		case st.MaxEnergyMWh == 0:
			terms := []solver.Term{
				{Var: ds, Coef: 1},
				{Var: aMinus, Coef: drainCoef},
			}
			p.AddConstraint(name, terms, solver.LE, inflow)
		case st.ChargingCapacityMW == 0:
			terms := append([]solver.Term{
				{Var: es, Coef: 1},
				{Var: aMinus, Coef: drainCoef},
				{Var: ds, Coef: 1 / st.DischargingEfficiency},
			}, prevTerms...)
			p.AddConstraint(name, terms, solver.LE, inflow)
		default:
			terms := append([]solver.Term{
				{Var: es, Coef: 1},
				{Var: aMinus, Coef: drainCoef},
				{Var: cs, Coef: -st.ChargingEfficiency},
				{Var: ds, Coef: 1 / st.DischargingEfficiency},
			}, prevTerms...)
			p.AddConstraint(name, terms, solver.LE, inflow)
		}
	}
}

func addInflowMinDischarge(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	frame := g.Frame()
	for j, st := range g.Storages() {
		if st.InflowHourlyDataKey == "" || st.InflowMinDischargeRatio <= 0 {
			continue
		}
		inflow := frame.At(st.InflowHourlyDataKey, t)
		if inflow <= 0 {
			continue
		}
		minVal := inflow * st.InflowMinDischargeRatio
		if st.DischargingCapacityMW < minVal {
			minVal = st.DischargingCapacityMW
		}
		ds := ri.DS[j][t]
		p.AddConstraint(fmt.Sprintf("inflowmin_%s_%s_%d", g.Name(), st.Type, t),
			[]solver.Term{{Var: ds, Coef: 1}}, solver.GE, minVal*st.DischargingEfficiency)
	}
}

func addMidnightSnap(p *solver.Problem, g entity.Region, ri *RegionIndex, t int, cfg Config) {
	if t%24 != 0 {
		return
	}
	for j, st := range g.Storages() {
		if st.MidnightEnergyMWh == nil {
			continue
		}
		scale := 1.0
		if st.SeparateCharging {
			scale = cfg.NumYears
		}
		es := ri.ES[j][t]
		aMinus := ri.AlphaSMinus[j]
		p.AddConstraint(fmt.Sprintf("midnight_%s_%s_%d", g.Name(), st.Type, t),
			[]solver.Term{{Var: es, Coef: 1}, {Var: aMinus, Coef: -*st.MidnightEnergyMWh * scale}}, solver.EQ, 0)
	}
}

func addFinalStateWindow(p *solver.Problem, g entity.Region, ri *RegionIndex, cfg Config) {
	for j, st := range g.Storages() {
		last := len(ri.ES[j]) - 1
		es := ri.ES[j][last]
		aMinus := ri.AlphaSMinus[j]
		scale := 1.0
		if st.SeparateCharging {
			scale = cfg.NumYears
		}
		p.AddConstraint(fmt.Sprintf("finalstate_%s_%s", g.Name(), st.Type),
			[]solver.Term{{Var: es, Coef: 1}, {Var: aMinus, Coef: -st.MinFinalEnergyMWh * scale}}, solver.GE, 0)

		if st.CostSellBuyMWhEUR != 0 {
			p.AddToObjective(es, -st.CostSellBuyMWhEUR)
		}
	}
}

func addHeatCoupling(p *solver.Problem, g entity.Region, ri *RegionIndex, t int) {
	for i, fs := range g.FlexibleSources() {
		if fs.Heat == nil || ri.PH[i] == nil {
			continue
		}
		pf := ri.PF[i][t]
		ph := ri.PH[i][t]
		name := fmt.Sprintf("heat_%s_%s_%d", g.Name(), fs.Type, t)
		switch fs.Heat.Type {
		case entity.BackPressureTurbine:
			p.AddConstraint(name, []solver.Term{{Var: ph, Coef: 1}, {Var: pf, Coef: -fs.Heat.RatioHeatPerEl}}, solver.EQ, 0)
		case entity.ExtractionTurbine:
			beta := fs.Heat.BaseRatio
			maxVar := fs.Heat.MaxVarRatio()
			p.AddConstraint(name+"_lo", []solver.Term{{Var: ph, Coef: 1}, {Var: pf, Coef: -beta}}, solver.GE, 0)
			p.AddConstraint(name+"_hi", []solver.Term{{Var: ph, Coef: 1}, {Var: pf, Coef: -(beta + maxVar)}}, solver.LE, 0)
		case entity.HeatRecoveryUnit:
			p.AddConstraint(name, []solver.Term{{Var: ph, Coef: 1}, {Var: pf, Coef: -fs.Heat.MaxRatio}}, solver.LE, 0)
		}
	}
}

// addStaticStorageConstraints adds the two storage constraints of
// spec.md §4.2 item 5 that do not carry an hour index.
func addStaticStorageConstraints(p *solver.Problem, regions []entity.Region, ix *Index, cfg Config) {
	for _, g := range regions {
		ri := ix.Regions[g.Name()]
		for j, st := range g.Storages() {
			if st.Use == entity.UseElectricity && !st.SeparateCharging {
				p.AddConstraint(fmt.Sprintf("sharedfactor_%s_%s", g.Name(), st.Type),
					[]solver.Term{{Var: ri.AlphaSPlus[j], Coef: 1}, {Var: ri.AlphaSMinus[j], Coef: -1}}, solver.EQ, 0)
			}
			if st.MinChargingCapacityRatioToVRE > 0 {
				terms := []solver.Term{{Var: ri.AlphaSPlus[j], Coef: st.ChargingCapacityMW}}
				for _, src := range g.Sources() {
					if !isVRE(src.Type) {
						continue
					}
					terms = append(terms, solver.Term{Var: ri.AlphaB[src.Type], Coef: -st.MinChargingCapacityRatioToVRE * src.CapacityMW})
				}
				p.AddConstraint(fmt.Sprintf("chgratio_%s_%s", g.Name(), st.Type), terms, solver.GE, 0)
			}
		}
	}
}

func isVRE(t entity.BasicSourceType) bool {
	for _, v := range entity.VRETypes {
		if v == t {
			return true
		}
	}
	return false
}

// addGlobalProductionCaps adds the two whole-horizon caps of spec.md
// §4.2 item 13, summing the electricity-equivalent production of every
// hour for each flexible source.
func addGlobalProductionCaps(p *solver.Problem, regions []entity.Region, ix *Index, cfg Config) {
	for _, g := range regions {
		ri := ix.Regions[g.Name()]
		H := 0
		if len(g.FlexibleSources()) > 0 {
			H = len(ri.PF[0])
		}
		for i, fs := range g.FlexibleSources() {
			if fs.MaxCapacityFactor == nil && fs.MaxTotalTWh == nil {
				continue
			}
			var sumTerms []solver.Term
			coefs := make(map[int]float64)
			for t := 0; t < H; t++ {
				elEquiv := electricityEquivalentTerms(g, ri, t)
				for _, term := range elEquiv[i] {
					coefs[term.Var] += term.Coef
				}
			}
			for v, c := range coefs {
				sumTerms = append(sumTerms, solver.Term{Var: v, Coef: c})
			}

			if fs.MaxCapacityFactor != nil {
				rhsCoefTerms := append(append([]solver.Term{}, sumTerms...),
					solver.Term{Var: ri.AlphaF[i], Coef: -cfg.NumYears * fs.CapacityMW * (*fs.MaxCapacityFactor) * 8760})
				p.AddConstraint(fmt.Sprintf("maxcf_%s_%s", g.Name(), fs.Type), rhsCoefTerms, solver.LE, 0)
			}
			if fs.MaxTotalTWh != nil {
				p.AddConstraint(fmt.Sprintf("maxtwh_%s_%s", g.Name(), fs.Type), sumTerms, solver.LE, cfg.NumYears*(*fs.MaxTotalTWh)*1e6)
			}
		}
	}
}
