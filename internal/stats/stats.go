// Package stats is the statistics aggregator: per-season, per-source
// TWh/hours/capacity-factor/emissions/economics/power-share rollups,
// computed over a solved Region's Frame and flattened into a slice of
// Row values for logging or persistence.
package stats

import (
	"math"

	"github.com/devskill-org/gridopt/internal/costcalc"
	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/lp"
	"github.com/devskill-org/gridopt/internal/series"
)

// Season is one of the three reporting windows (spec.md §4.7).
type Season string

const (
	Year   Season = "Year"
	Summer Season = "Summer"
	Winter Season = "Winter"
)

// AllSeasons enumerates the reporting windows in a stable order.
var AllSeasons = []Season{Year, Summer, Winter}

// summerStartDay/summerEndDay bound the Summer day-of-year window
// [⌈365/4⌉, ⌈3·365/4⌉) (spec.md §4.7).
const (
	summerStartDay = 92
	summerEndDay   = 274
)

func inSeason(dayOfYear int, season Season) bool {
	switch season {
	case Year:
		return true
	case Summer:
		return dayOfYear >= summerStartDay && dayOfYear < summerEndDay
	case Winter:
		return dayOfYear < summerStartDay || dayOfYear >= summerEndDay
	}
	return false
}

// StatType identifies one statistic (spec.md §4.7); string values
// match the persisted "stat" column contract of spec.md §6.
type StatType string

const (
	CapacityGW         StatType = "capacity_GW"
	CapacityChargingGW StatType = "capacity_charging_GW"

	LoadTWh         StatType = "load_TWh"
	ImportTWh       StatType = "import_TWh"
	ExportTWh       StatType = "export_TWh"
	NetImportTWh    StatType = "net_import_TWh"
	CurtailmentTWh  StatType = "curtailment_TWh"

	ProductionTWh       StatType = "production_TWh"
	ProductionElEqTWh   StatType = "production_el_eq_TWh"
	ProductionUsedTWh   StatType = "production_used_TWh"
	ProductionExcessTWh StatType = "production_excess_TWh"
	DischargedTWh       StatType = "discharged_TWh"
	ChargedTWh          StatType = "charged_TWh"
	InflowTWh           StatType = "inflow_TWh"
	HeatProductionPJ    StatType = "heat_production_PJ"
	ProductionHours     StatType = "production_hours"

	CapexPerYearEUR          StatType = "capex_mn_EUR_per_yr"
	OpexEUR                  StatType = "opex_mn_EUR"
	WholesaleExpensesEUR     StatType = "wholesale_expenses_mn_EUR"
	WholesaleRevenuesEUR     StatType = "wholesale_revenues_mn_EUR"
	WholesaleExpensesPPAEUR  StatType = "wholesale_expenses_PPA_mn_EUR"
	WholesaleRevenuesPPAEUR  StatType = "wholesale_revenues_PPA_mn_EUR"
	AverageConsumerPriceEUR  StatType = "avg_consumer_price_EUR_per_MWh"
	AverageProducerPriceEUR  StatType = "avg_producer_price_EUR_per_MWh"

	CapacityFactor         StatType = "capacity_factor"
	CapacityFactorCharging StatType = "capacity_factor_charging"

	EmissionsMtCO2 StatType = "emissions_MtCO2"

	PowerShareHighValue StatType = "power_share_high_value"
	PowerShareLowValue  StatType = "power_share_low_value"
	PowerShareZeroValue StatType = "power_share_zero_value"
)

// Pseudo-source keys for aggregate rows not tied to a single
// generator/storage (spec.md §4.7).
const (
	TotalKey        = "Total"
	ImportExportKey = "ImportExport"
)

// Row is one (season, source, stat) -> value observation.
type Row struct {
	Region string
	Season Season
	Source string
	Stat   StatType
	Value  float64
}

// Options carries the knobs spec.md §4.7/§6 names beyond the grid
// itself: the number of modeled years (for per-year averaging of a
// multi-year horizon) and an optional PPA-style import/export price
// floor.
type Options struct {
	NumYears        float64
	ImportPPAPriceEURPerMWh *float64
}

// Compute runs the full C8 rollup for one region.
func Compute(g entity.Region, links []lp.Link, opts Options) []Row {
	c := &collector{region: g.Name(), frame: g.Frame(), opts: opts}
	splitExcessProduction(c.frame)

	c.computeSourceInstalled(g)
	c.computeInterconnectorCapex(g, links)

	for _, season := range AllSeasons {
		c.computeSourceStats(g, season)
		c.computeAveragePrices(season)
	}

	return c.rows
}

type collector struct {
	region string
	frame  *series.Frame
	opts   Options
	rows   []Row
}

func (c *collector) store(season Season, source string, stat StatType, value float64) {
	c.rows = append(c.rows, Row{Region: c.region, Season: season, Source: source, Stat: stat, Value: value})
}

// valuesOf returns every stored value for stat/season, for summation
// (mirrors CountryGridStats.get_stat_values).
func (c *collector) valuesOf(stat StatType, season Season) []float64 {
	var out []float64
	for _, r := range c.rows {
		if r.Stat == stat && r.Season == season {
			out = append(out, r.Value)
		}
	}
	return out
}

func (c *collector) valueOf(source string, stat StatType, season Season) (float64, bool) {
	for _, r := range c.rows {
		if r.Stat == stat && r.Season == season && r.Source == source {
			return r.Value, true
		}
	}
	return 0, false
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func (c *collector) computeSourceInstalled(g entity.Region) {
	for _, src := range g.Sources() {
		c.store(Year, string(src.Type), CapacityGW, src.CapacityMW/1000)
	}
	for _, fs := range g.FlexibleSources() {
		if fs.Virtual {
			continue
		}
		c.store(Year, string(fs.Type), CapacityGW, fs.CapacityMW/1000)
	}
	for _, st := range g.Storages() {
		if st.SeparateCharging {
			c.store(Year, string(st.Type), CapacityChargingGW, st.ChargingCapacityMW/1000)
		}
		c.store(Year, string(st.Type), CapacityGW, st.DischargingCapacityMW/1000)
	}
	c.store(Year, TotalKey, CapacityGW, sum(c.valuesOf(CapacityGW, Year)))
}

// computeInterconnectorCapex assigns each region half the expansion
// capex of every interconnector touching it (spec.md §4.7, §9).
func (c *collector) computeInterconnectorCapex(g entity.Region, links []lp.Link) {
	total := 0.0
	seen := make(map[string]bool)
	for _, l := range links {
		if l.From != g.Name() && l.To != g.Name() {
			continue
		}
		key := l.From + "|" + l.To
		if seen[key] {
			continue
		}
		seen[key] = true

		upgradeMW := l.CapacityMW - l.PaidOffCapacityMW
		countryLengthKM := l.LengthKM / 2
		total += costcalc.InterconnectorCapexPerYearEUR(upgradeMW, countryLengthKM, l.Type) / 1e6
	}
	if total != 0 {
		c.store(Year, ImportExportKey, CapexPerYearEUR, total)
	}
}

func (c *collector) computeAveragePrices(season Season) {
	H := c.frame.Index.Len()
	price := c.frame.Col("Price")
	load := c.frame.Col("Load")
	production := c.frame.Col("Production")

	var priceLoadSum, loadSum, priceProdSum, prodSum float64
	for t := 0; t < H; t++ {
		if !inSeason(c.frame.Index.DayOfYear(t), season) {
			continue
		}
		priceLoadSum += price[t] * load[t]
		loadSum += load[t]
		priceProdSum += price[t] * production[t]
		prodSum += production[t]
	}
	if loadSum != 0 {
		c.store(season, TotalKey, AverageConsumerPriceEUR, priceLoadSum/loadSum)
	}
	if prodSum != 0 {
		c.store(season, TotalKey, AverageProducerPriceEUR, priceProdSum/prodSum)
	}
}

func (c *collector) computeSourceStats(g entity.Region, season Season) {
	H := c.frame.Index.Len()
	seasonHours := 0
	for t := 0; t < H; t++ {
		if inSeason(c.frame.Index.DayOfYear(t), season) {
			seasonHours++
		}
	}
	numYears := c.opts.NumYears
	if numYears <= 0 {
		numYears = 1
	}
	twhPerYear := func(col []float64) float64 {
		var total float64
		for t := 0; t < H; t++ {
			if inSeason(c.frame.Index.DayOfYear(t), season) {
				total += col[t]
			}
		}
		return total / 1_000_000 / numYears
	}
	colTWhPerYear := func(name string) (float64, bool) {
		if !c.frame.Has(name) {
			return 0, false
		}
		return twhPerYear(c.frame.Col(name)), true
	}

	c.computeLoad(season, colTWhPerYear)
	c.computeCurtailment(season, H, numYears)
	c.computeImportExport(season, colTWhPerYear)
	c.computeProduction(g, season, colTWhPerYear)
	c.computeProductionHours(g, season, H)
	c.computeCapacityFactor(season, float64(seasonHours)/numYears)
	c.computeEmissions(g, season)
	c.computeCosts(g, season, H, numYears)
	c.computePowerShare(g, season, H, numYears)
}

func (c *collector) computeLoad(season Season, colTWhPerYear func(string) (float64, bool)) {
	if v, ok := colTWhPerYear("Load"); ok {
		c.store(season, TotalKey, LoadTWh, v)
	}
}

func (c *collector) computeCurtailment(season Season, H int, numYears float64) {
	if !c.frame.Has("Curtailment") {
		return
	}
	col := c.frame.Col("Curtailment")
	var total float64
	for t := 0; t < H; t++ {
		if !inSeason(c.frame.Index.DayOfYear(t), season) {
			continue
		}
		if col[t] > 0 {
			total += col[t]
		}
	}
	c.store(season, TotalKey, CurtailmentTWh, total/1_000_000/numYears)
}

func (c *collector) computeImportExport(season Season, colTWhPerYear func(string) (float64, bool)) {
	importTWh, _ := colTWhPerYear("Import")
	exportTWh, _ := colTWhPerYear("Export")
	c.store(season, TotalKey, ImportTWh, importTWh)
	c.store(season, TotalKey, ExportTWh, exportTWh)
	c.store(season, TotalKey, NetImportTWh, importTWh-exportTWh)
}

func (c *collector) computeProduction(g entity.Region, season Season, colTWhPerYear func(string) (float64, bool)) {
	for _, src := range g.Sources() {
		label := string(src.Type)
		if v, ok := colTWhPerYear(label); ok {
			c.store(season, label, ProductionTWh, v)
		}
		if usedV, ok := colTWhPerYear(label + "_Used"); ok {
			c.store(season, label, ProductionUsedTWh, usedV)
			if excessV, ok := colTWhPerYear(label + "_Excess"); ok {
				c.store(season, label, ProductionExcessTWh, excessV)
			}
		}
	}

	for _, fs := range g.FlexibleSources() {
		label := string(fs.Type)
		if v, ok := colTWhPerYear("Flexible_" + label); ok {
			c.store(season, label, ProductionTWh, v)
		}
		if fs.Heat != nil {
			if v, ok := colTWhPerYear("Electricity_Equivalent_Flexible_" + label); ok {
				c.store(season, label, ProductionElEqTWh, v)
			}
			if v, ok := colTWhPerYear("Heat_Flexible_" + label); ok {
				c.store(season, label, HeatProductionPJ, 3.6*v)
			}
		}
	}

	for _, st := range g.Storages() {
		label := string(st.Type)
		if v, ok := colTWhPerYear("Discharging_" + label); ok {
			c.store(season, label, ProductionTWh, v)
			c.store(season, label, DischargedTWh, v)
		}
		if v, ok := colTWhPerYear("Charging_" + label); ok {
			c.store(season, label, ChargedTWh, v)
		}
		if st.InflowHourlyDataKey != "" {
			if v, ok := colTWhPerYear(st.InflowHourlyDataKey); ok {
				c.store(season, label, InflowTWh, v)
			}
		}
	}

	c.store(season, TotalKey, ProductionTWh, sum(c.valuesOf(ProductionTWh, season)))
	c.store(season, TotalKey, DischargedTWh, sum(c.valuesOf(DischargedTWh, season)))
	c.store(season, TotalKey, ChargedTWh, sum(c.valuesOf(ChargedTWh, season)))
}

func (c *collector) computeProductionHours(g entity.Region, season Season, H int) {
	count := func(col []float64) float64 {
		var n float64
		for t := 0; t < H; t++ {
			if inSeason(c.frame.Index.DayOfYear(t), season) && col[t] > 1e-3 {
				n++
			}
		}
		return n
	}
	for _, fs := range g.FlexibleSources() {
		key := "Flexible_" + string(fs.Type)
		if c.frame.Has(key) {
			c.store(season, string(fs.Type), ProductionHours, count(c.frame.Col(key)))
		}
	}
	for _, st := range g.Storages() {
		key := "Discharging_" + string(st.Type)
		if c.frame.Has(key) {
			c.store(season, string(st.Type), ProductionHours, count(c.frame.Col(key)))
		}
	}
}

func (c *collector) computeCapacityFactor(season Season, totalHours float64) {
	c.computeCapacityFactorImpl(season, totalHours, ProductionTWh, CapacityGW, CapacityFactor)
	c.computeCapacityFactorImpl(season, totalHours, ChargedTWh, CapacityChargingGW, CapacityFactorCharging)
}

func (c *collector) computeCapacityFactorImpl(season Season, totalHours float64, productionStat, capacityStat, factorStat StatType) {
	if totalHours <= 0 {
		return
	}
	for _, r := range c.rows {
		if r.Stat != capacityStat || r.Season != Year || r.Value == 0 {
			continue
		}
		production, ok := c.valueOf(r.Source, productionStat, season)
		if !ok {
			continue
		}
		if elEq, ok := c.valueOf(r.Source, ProductionElEqTWh, season); ok {
			production = elEq
		}
		factor := production * 1000 / (r.Value * totalHours)
		c.store(season, r.Source, factorStat, factor)
	}
}

func (c *collector) computeEmissions(g entity.Region, season Season) {
	add := func(source string, co2TPerMWh float64) {
		production, ok := c.valueOf(source, ProductionTWh, season)
		if !ok {
			return
		}
		if elEq, ok := c.valueOf(source, ProductionElEqTWh, season); ok {
			production = elEq
		}
		c.store(season, source, EmissionsMtCO2, production*co2TPerMWh)
	}
	for _, src := range g.Sources() {
		add(string(src.Type), src.CO2TPerMWh)
	}
	for _, fs := range g.FlexibleSources() {
		add(string(fs.Type), fs.CO2TPerMWh)
	}
	c.store(season, TotalKey, EmissionsMtCO2, sum(c.valuesOf(EmissionsMtCO2, season)))
}

func (c *collector) totalPriceMnEUR(key string, H int, numYears float64) float64 {
	if !c.frame.Has(key) || !c.frame.Has("Price") {
		return 0
	}
	price := c.frame.Col("Price")
	col := c.frame.Col(key)
	var total float64
	for t := 0; t < H; t++ {
		total += price[t] * col[t]
	}
	return total / 1e6 / numYears
}

func (c *collector) computeCosts(g entity.Region, season Season, H int, numYears float64) {
	for _, src := range g.Sources() {
		label := string(src.Type)
		totalTWh, ok := c.valueOf(label, ProductionTWh, season)
		if !ok {
			continue
		}
		totalMWh := 1e6 * totalTWh
		newlyBuilt := src.CapacityMW - src.PaidOffCapacityMW
		capexMn := costcalc.CapexPerYearEUR(src.Economics, newlyBuilt) / 1e6
		opexPerMWh := costcalc.OpexPerMWh(src.Economics, src.CapacityMW)
		opexMn := opexPerMWh * totalMWh / 1e6
		c.store(season, label, CapexPerYearEUR, capexMn)
		c.store(season, label, OpexEUR, opexMn)
		c.store(season, label, WholesaleRevenuesEUR, c.totalPriceMnEUR(label, H, numYears))
	}

	for _, fs := range g.FlexibleSources() {
		if fs.Virtual {
			continue
		}
		label := string(fs.Type)
		key := "Flexible_" + label
		if fs.Heat != nil {
			key = "Electricity_Equivalent_Flexible_" + label
		}
		totalTWh, ok := c.valueOf(label, ProductionTWh, season)
		if !ok {
			continue
		}
		totalMWh := 1e6 * totalTWh
		newlyBuilt := fs.CapacityMW - fs.PaidOffCapacityMW
		capexMn := costcalc.CapexPerYearEUR(fs.Economics, newlyBuilt) / 1e6
		opexPerMWh := costcalc.OpexPerMWh(fs.Economics, fs.CapacityMW)
		opexMn := opexPerMWh * totalMWh / 1e6
		c.store(season, label, CapexPerYearEUR, capexMn)
		c.store(season, label, OpexEUR, opexMn)
		c.store(season, label, WholesaleRevenuesEUR, c.totalPriceMnEUR(key, H, numYears))
	}

	for _, st := range g.Storages() {
		if !st.Use.IsElectricity() {
			continue
		}
		label := string(st.Type)
		chargingKey := "Charging_" + label
		dischargingKey := "Discharging_" + label
		sellRevenueMn := c.totalPriceMnEUR(dischargingKey, H, numYears)
		buyExpensesMn := c.totalPriceMnEUR(chargingKey, H, numYears)

		dischargedTWh, _ := c.valueOf(label, DischargedTWh, season)
		chargedTWh, _ := c.valueOf(label, ChargedTWh, season)
		totalMWhDischarged := 1e6 * dischargedTWh
		totalMWhCharged := 1e6 * chargedTWh

		capexMn := costcalc.CapexPerYearEUR(st.Economics, st.DischargingCapacityMW-st.PaidOffDischargingCapacityMW) / 1e6
		if st.SeparateCharging {
			capexMn += costcalc.CapexPerYearEUR(st.Economics, st.ChargingCapacityMW-st.PaidOffChargingCapacityMW) / 1e6
		}
		dischargingOpexPerMWh := costcalc.OpexPerMWh(st.Economics, st.DischargingCapacityMW)
		var chargingOpexPerMWh float64
		if st.SeparateCharging {
			chargingOpexPerMWh = costcalc.OpexPerMWh(st.Economics, st.ChargingCapacityMW)
		}
		opexMn := dischargingOpexPerMWh*totalMWhDischarged/1e6 + chargingOpexPerMWh*totalMWhCharged/1e6

		if c.frame.Has("State_Of_Charge_"+label) && season == Year {
			soc := c.frame.Col("State_Of_Charge_" + label)
			finalStateMWh := soc[len(soc)-1]
			targetFinalStateMWh := st.FinalEnergyMWh
			if st.SeparateCharging {
				targetFinalStateMWh *= numYears
			}
			extraStateMWh := finalStateMWh - targetFinalStateMWh
			totalGainsMn := extraStateMWh * st.CostSellBuyMWhEUR / 1e6
			opexMn -= totalGainsMn / numYears
		}

		c.store(season, label, CapexPerYearEUR, capexMn)
		c.store(season, label, OpexEUR, opexMn)
		c.store(season, label, WholesaleExpensesEUR, buyExpensesMn)
		c.store(season, label, WholesaleRevenuesEUR, sellRevenueMn)
	}

	c.computeImportExportCosts(season, H, numYears)
}

func (c *collector) computeImportExportCosts(season Season, H int, numYears float64) {
	if !c.frame.Has("Net_Import") || !c.frame.Has("Price_Export") || !c.frame.Has("Price_Import") {
		return
	}
	netImport := c.frame.Col("Net_Import")
	priceExport := c.frame.Col("Price_Export")
	priceImport := c.frame.Col("Price_Import")
	export := c.frame.Col("Export")

	var exportRevenuesMn, importCostsMn float64
	var exportRevenuesPPAMn, importCostsPPAMn float64

	for t := 0; t < H; t++ {
		netExport := math.Min(netImport[t], 0)
		netImportPositive := math.Max(netImport[t], 0)

		exportRevenuesMn += -netExport*priceExport[t] - export[t]*entity.OutflowFeeEURPerMWh
		importCostsMn += netImportPositive * priceImport[t]

		if c.opts.ImportPPAPriceEURPerMWh != nil {
			ppaFloor := *c.opts.ImportPPAPriceEURPerMWh
			exportRevenuesPPAMn += -netExport * math.Max(priceExport[t], ppaFloor)
			importCostsPPAMn += netImportPositive * math.Max(priceImport[t], ppaFloor)
		}
	}
	exportRevenuesMn /= 1e6 * numYears
	importCostsMn /= 1e6 * numYears
	c.store(season, ImportExportKey, WholesaleRevenuesEUR, exportRevenuesMn)
	c.store(season, ImportExportKey, WholesaleExpensesEUR, importCostsMn)

	if c.opts.ImportPPAPriceEURPerMWh != nil {
		exportRevenuesPPAMn /= 1e6 * numYears
		importCostsPPAMn /= 1e6 * numYears
		c.store(season, ImportExportKey, WholesaleRevenuesPPAEUR, exportRevenuesPPAMn)
		c.store(season, ImportExportKey, WholesaleExpensesPPAEUR, importCostsPPAMn)
	}
}

func (c *collector) computePowerShare(g entity.Region, season Season, H int, numYears float64) {
	for _, src := range g.Sources() {
		label := string(src.Type)
		totalTWh, ok := c.valueOf(label, ProductionTWh, season)
		if !ok {
			continue
		}
		if totalTWh == 0 {
			c.store(season, label, PowerShareZeroValue, 0)
			c.store(season, label, PowerShareLowValue, 0)
			c.store(season, label, PowerShareHighValue, 1)
			continue
		}
		if !c.frame.Has(label) {
			continue
		}
		col := c.frame.Col(label)
		var zeroTWh, lowTWh, highTWh float64
		for t := 0; t < H; t++ {
			if !inSeason(c.frame.Index.DayOfYear(t), season) {
				continue
			}
			excess := hasExcess(c.frame, t)
			curtailed := hasCurtailment(c.frame, t)
			switch {
			case excess && curtailed:
				zeroTWh += col[t]
			case excess && !curtailed:
				lowTWh += col[t]
			default:
				highTWh += col[t]
			}
		}
		zeroTWh /= 1_000_000 * numYears
		lowTWh /= 1_000_000 * numYears
		highTWh /= 1_000_000 * numYears
		c.store(season, label, PowerShareZeroValue, zeroTWh/totalTWh)
		c.store(season, label, PowerShareLowValue, lowTWh/totalTWh)
		c.store(season, label, PowerShareHighValue, highTWh/totalTWh)
	}
}

func hasCurtailment(frame *series.Frame, t int) bool {
	return frame.At("Curtailment", t) > entity.CurtailmentEpsilonMWh
}

func hasExcess(frame *series.Frame, t int) bool {
	residual := frame.At("Load", t) - frame.At("VRE", t)
	return frame.At(string(entity.Nuclear), t)+frame.At(string(entity.Hydro), t)-residual > entity.CurtailmentEpsilonMWh
}

// splitExcessProduction derives `<type>_Used`/`<type>_Excess` columns
// for every VRE basic source, splitting its production between the
// share actually needed to meet residual demand and the curtailed/
// exported excess (spec.md §4.7, grounded on grid_plot_utils.py's
// split_excess_production).
func splitExcessProduction(frame *series.Frame) {
	if !frame.Has("VRE") {
		return
	}
	H := frame.Index.Len()
	vre := frame.Col("VRE")
	load := frame.Col("Load")
	netImport := frame.Col("Net_Import")
	nuclear := frame.Col(string(entity.Nuclear))
	hydro := frame.Col(string(entity.Hydro))

	var charging, discharging []float64
	if frame.Has("Charging_Total") {
		charging = frame.Col("Charging_Total")
	}
	if frame.Has("Discharging_Total") {
		discharging = frame.Col("Discharging_Total")
	}

	usedVRE := make([]float64, H)
	excessVRE := make([]float64, H)
	for t := 0; t < H; t++ {
		netExport := -netImport[t]
		consumption := load[t] + netExport
		if charging != nil {
			consumption += charging[t]
		}
		if discharging != nil {
			consumption -= discharging[t]
		}
		residual := consumption - nuclear[t] - hydro[t]
		if residual < 0 {
			residual = 0
		}
		used := math.Min(vre[t], residual)
		excess := vre[t] - residual
		if excess < 0 {
			excess = 0
		}
		usedVRE[t] = used
		excessVRE[t] = excess
	}

	for _, vt := range entity.VRETypes {
		label := string(vt)
		if !frame.Has(label) {
			continue
		}
		col := frame.Col(label)
		used := make([]float64, H)
		excess := make([]float64, H)
		for t := 0; t < H; t++ {
			if vre[t] == 0 {
				continue
			}
			share := col[t] / vre[t]
			used[t] = usedVRE[t] * share
			excess[t] = excessVRE[t] * share
		}
		frame.SetCol(label+"_Used", used)
		frame.SetCol(label+"_Excess", excess)
	}
}
