package entity

import "github.com/devskill-org/gridopt/internal/series"

// AggregateRegion is built by summing the hourly series of a set of
// zones and merging their source/flexible/storage dictionaries by
// type with per-field sum (spec.md §9 "Aggregate regions"). Prices are
// not merged here, and no load- or flow-weighted average of the zones'
// prices is computed anywhere: internal/price prices an aggregate as a
// single region from its own summed frame, and internal/stats reads
// that Price column like any other region's.
type AggregateRegion struct {
	name    string
	zones   []*Zone
	sources []Source
	flexible []FlexibleSource
	storages []Storage
	reserves Reserves
	frame   *series.Frame
	heatOptimized bool
}

// NewAggregateRegion merges the given zones into one LP node.
func NewAggregateRegion(name string, zones []*Zone) (*AggregateRegion, error) {
	if len(zones) == 0 {
		return nil, nil
	}
	idx := zones[0].Frame().Index
	frames := make([]*series.Frame, 0, len(zones))
	for _, z := range zones {
		frames = append(frames, z.Frame())
	}
	summed := series.SumFrames(frames...)
	summed.Index = idx

	ag := &AggregateRegion{name: name, zones: zones, frame: summed}

	for _, z := range zones {
		ag.reserves.AdditionalLoadMW += z.Reserves().AdditionalLoadMW
		ag.reserves.HydroCapacityReductionMW += z.Reserves().HydroCapacityReductionMW
		if z.HeatOptimized() {
			ag.heatOptimized = true
		}
	}

	ag.sources = mergeSources(zones)
	ag.flexible = mergeFlexible(zones)
	ag.storages = mergeStorages(zones)

	return ag, nil
}

func mergeSources(zones []*Zone) []Source {
	byType := make(map[BasicSourceType]*Source)
	order := make([]BasicSourceType, 0)
	for _, z := range zones {
		for _, s := range z.Sources() {
			if existing, ok := byType[s.Type]; ok {
				existing.CapacityMW += s.CapacityMW
				existing.MinCapacityMW += s.MinCapacityMW
				existing.PaidOffCapacityMW += s.PaidOffCapacityMW
				existing.Flexible.MaxDecreaseMW += s.Flexible.MaxDecreaseMW
				existing.Flexible.MinProductionMW += s.Flexible.MinProductionMW
				continue
			}
			cp := s
			byType[s.Type] = &cp
			order = append(order, s.Type)
		}
	}
	out := make([]Source, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

func mergeFlexible(zones []*Zone) []FlexibleSource {
	byType := make(map[FlexibleSourceType]*FlexibleSource)
	order := make([]FlexibleSourceType, 0)
	for _, z := range zones {
		for _, s := range z.FlexibleSources() {
			if existing, ok := byType[s.Type]; ok {
				existing.CapacityMW += s.CapacityMW
				existing.MinCapacityMW += s.MinCapacityMW
				existing.PaidOffCapacityMW += s.PaidOffCapacityMW
				if existing.MaxTotalTWh != nil && s.MaxTotalTWh != nil {
					sum := *existing.MaxTotalTWh + *s.MaxTotalTWh
					existing.MaxTotalTWh = &sum
				} else {
					existing.MaxTotalTWh = nil
				}
				continue
			}
			cp := s
			byType[s.Type] = &cp
			order = append(order, s.Type)
		}
	}
	out := make([]FlexibleSource, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

func mergeStorages(zones []*Zone) []Storage {
	byType := make(map[StorageType]*Storage)
	order := make([]StorageType, 0)
	for _, z := range zones {
		for _, s := range z.Storages() {
			if existing, ok := byType[s.Type]; ok {
				existing.DischargingCapacityMW += s.DischargingCapacityMW
				existing.MinDischargingCapacityMW += s.MinDischargingCapacityMW
				existing.PaidOffDischargingCapacityMW += s.PaidOffDischargingCapacityMW
				existing.ChargingCapacityMW += s.ChargingCapacityMW
				existing.MinChargingCapacityMW += s.MinChargingCapacityMW
				existing.PaidOffChargingCapacityMW += s.PaidOffChargingCapacityMW
				existing.MaxEnergyMWh += s.MaxEnergyMWh
				existing.InitialEnergyMWh += s.InitialEnergyMWh
				existing.FinalEnergyMWh += s.FinalEnergyMWh
				existing.MinFinalEnergyMWh += s.MinFinalEnergyMWh
				continue
			}
			cp := s
			byType[s.Type] = &cp
			order = append(order, s.Type)
		}
	}
	out := make([]Storage, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

func (a *AggregateRegion) Name() string                      { return a.name }
func (a *AggregateRegion) Sources() []Source                 { return a.sources }
func (a *AggregateRegion) FlexibleSources() []FlexibleSource { return a.flexible }
func (a *AggregateRegion) Storages() []Storage               { return a.storages }
func (a *AggregateRegion) Reserves() Reserves                { return a.reserves }
func (a *AggregateRegion) Frame() *series.Frame               { return a.frame }
func (a *AggregateRegion) HeatOptimized() bool                { return a.heatOptimized }

// Zones returns the constituent zones, e.g. for price-averaging in C8.
func (a *AggregateRegion) Zones() []*Zone { return a.zones }
