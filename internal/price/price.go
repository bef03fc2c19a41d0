// Package price estimates post-solve spot prices: a
// generation-side-marginal-plus-import-shadow sweep, then a
// charging-side floor sweep using each storage's measured round-trip
// margin.
package price

import (
	"math"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/flowdag"
	"github.com/devskill-org/gridopt/internal/lp"
)

const epsilon = entity.CurtailmentEpsilonMWh

// bid is a candidate (price, label) pair; higher price wins unless
// explicitly minimizing.
type bid struct {
	price float64
	label string
}

// Run fills Price, Price_Import, Price_Export, and Price_Type columns
// on every region's frame for every hour.
func Run(regions []entity.Region, links []lp.Link, includeTransmissionLossInPrice bool) error {
	byName := make(map[string]entity.Region, len(regions))
	for _, g := range regions {
		byName[g.Name()] = g
	}
	if len(regions) == 0 {
		return nil
	}
	H := regions[0].Frame().Index.Len()

	priceCol := make(map[string][]float64, len(regions))
	importCol := make(map[string][]float64, len(regions))
	exportCol := make(map[string][]float64, len(regions))
	typeCol := make(map[string][]string, len(regions))
	for _, g := range regions {
		priceCol[g.Name()] = make([]float64, H)
		importCol[g.Name()] = make([]float64, H)
		exportCol[g.Name()] = make([]float64, H)
		typeCol[g.Name()] = make([]string, H)
	}

	for t := 0; t < H; t++ {
		order, err := flowdag.Order(t, regions, links)
		if err != nil {
			return err
		}
		for _, name := range order {
			g := byName[name]
			importPrice := importShadowPrice(g, t, links, byName, priceCol, includeTransmissionLossInPrice)
			b := estimateSpotPrice(g, t, importPrice)
			priceCol[name][t] = b.price
			importCol[name][t] = importPrice
			typeCol[name][t] = b.label
		}
		for _, name := range order {
			g := byName[name]
			exportCol[name][t] = exportPrice(g, t, links, byName, importCol)
		}
	}

	margins := computeStorageMargins(regions, priceCol)
	for t := 0; t < H; t++ {
		for _, g := range regions {
			name := g.Name()
			applyChargingFloor(g, t, margins[name], priceCol[name], typeCol[name])
		}
	}

	for _, g := range regions {
		name := g.Name()
		frame := g.Frame()
		frame.SetCol("Price", priceCol[name])
		frame.SetCol("Price_Import", importCol[name])
		frame.SetCol("Price_Export", exportCol[name])
		frame.SetLabelCol("Price_Type", typeCol[name])
	}
	return nil
}

func importShadowPrice(g entity.Region, t int, links []lp.Link, byName map[string]entity.Region, priceCol map[string][]float64, includeLoss bool) float64 {
	exporters := flowdag.RealExportersTo(g.Name(), t, links, byName)
	if len(exporters) == 0 {
		return 0
	}
	max := 0.0
	for from := range exporters {
		p := priceCol[from][t]
		if includeLoss {
			loss := linkLoss(links, from, g.Name())
			if loss < 1 {
				p = p / (1 - loss)
			}
		}
		if p > max {
			max = p
		}
	}
	return max + entity.OutflowFeeEURPerMWh
}

func exportPrice(g entity.Region, t int, links []lp.Link, byName map[string]entity.Region, importCol map[string][]float64) float64 {
	importers := flowdag.RealImportersFrom(g.Name(), t, links, byName)
	max := 0.0
	for to := range importers {
		if p := importCol[to][t]; p > max {
			max = p
		}
	}
	return max
}

func linkLoss(links []lp.Link, from, to string) float64 {
	for _, l := range links {
		if l.From == from && l.To == to {
			return l.Loss
		}
	}
	return 0
}

// estimateSpotPrice runs sweep 1 of spec.md §4.6 for one region/hour.
func estimateSpotPrice(g entity.Region, t int, importPrice float64) bid {
	frame := g.Frame()
	if hasCurtailment(frame.At("Curtailment", t)) {
		return bid{0, "Curtailment"}
	}
	if hasExcess(g, t) {
		return bid{5, "Charging_min"}
	}

	best := bid{0, "Curtailment"}
	maybeUpdate(&best, bid{importPrice, "Net_Import"}, frame.At("Net_Import", t))

	for _, src := range g.Sources() {
		col := string(src.Type)
		maybeUpdate(&best, bid{src.Economics.VariableCostsPerMWHEUR, col}, frame.At(col, t))
	}
	for _, fs := range g.FlexibleSources() {
		label := "Flexible_" + string(fs.Type)
		maybeUpdate(&best, bid{fs.Economics.VariableCostsPerMWHEUR, label}, frame.At(label, t))
	}

	minFlexiblePrice := math.Inf(1)
	for _, fs := range g.FlexibleSources() {
		if fs.Economics.VariableCostsPerMWHEUR < minFlexiblePrice {
			minFlexiblePrice = fs.Economics.VariableCostsPerMWHEUR
		}
	}
	if math.IsInf(minFlexiblePrice, 1) {
		minFlexiblePrice = 0
	}
	for _, st := range g.Storages() {
		if !st.Use.IsElectricity() {
			continue
		}
		label := "Discharging_" + string(st.Type)
		candidate := minFlexiblePrice
		if st.ChargingCapacityMW == 0 && st.CostSellBuyMWhEUR > 0 {
			sellPrice := st.CostSellBuyMWhEUR / st.DischargingEfficiency
			if sellPrice > candidate {
				candidate = sellPrice
			}
		}
		maybeUpdate(&best, bid{candidate, label}, frame.At(label, t))
	}

	return best
}

func maybeUpdate(current *bid, candidate bid, gatingValue float64) {
	if gatingValue > 0 && candidate.price > current.price {
		*current = candidate
	}
}

func hasCurtailment(curtailment float64) bool {
	return curtailment > epsilon
}

func hasExcess(g entity.Region, t int) bool {
	frame := g.Frame()
	residual := frame.At("Load", t) - frame.At("VRE", t)
	excess := frame.At(string(entity.Nuclear), t) + frame.At(string(entity.Hydro), t) - residual
	return excess > epsilon
}

// storageMargin is the discharging-weighted price minus opex, scaled
// by round-trip efficiency (spec.md §4.6 sweep 2).
type storageMargin struct {
	label  string
	margin float64
}

func computeStorageMargins(regions []entity.Region, priceCol map[string][]float64) map[string][]storageMargin {
	out := make(map[string][]storageMargin, len(regions))
	for _, g := range regions {
		frame := g.Frame()
		H := frame.Index.Len()
		var margins []storageMargin
		for _, st := range g.Storages() {
			if st.Use != entity.UseElectricity {
				continue
			}
			dischargeCol := frame.Col("Discharging_" + string(st.Type))
			totalDischarge := 0.0
			sellEUR := 0.0
			prices := priceCol[g.Name()]
			for t := 0; t < H; t++ {
				totalDischarge += dischargeCol[t]
				sellEUR += prices[t] * dischargeCol[t]
			}
			if totalDischarge == 0 {
				margins = append(margins, storageMargin{label: string(st.Type), margin: 0})
				continue
			}
			pricePerMWh := sellEUR / totalDischarge
			roundTrip := st.ChargingEfficiency * st.DischargingEfficiency
			opexPerMWh := st.Economics.VariableCostsPerMWHEUR
			margin := (pricePerMWh - opexPerMWh) * roundTrip
			margins = append(margins, storageMargin{label: string(st.Type), margin: margin})
		}
		out[g.Name()] = margins
	}
	return out
}

func applyChargingFloor(g entity.Region, t int, margins []storageMargin, priceCol []float64, typeCol []string) {
	frame := g.Frame()
	minCharge := math.Inf(1)
	var label string
	for _, m := range margins {
		chargeCol := "Charging_" + m.label
		if !frame.Has(chargeCol) || frame.At(chargeCol, t) <= 0 {
			continue
		}
		floor := m.margin
		if floor < 0 {
			floor = 0
		}
		if floor < minCharge {
			minCharge = floor
			label = "Charging_" + m.label
		}
	}
	if math.IsInf(minCharge, 1) {
		return
	}
	if minCharge > priceCol[t] {
		priceCol[t] = minCharge
		typeCol[t] = label
	}
}
