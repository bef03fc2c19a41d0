package entity

import "github.com/devskill-org/gridopt/internal/series"

// Region is either an atomic Zone or an AggregateRegion built from a
// set of zones; either way it participates in the LP as exactly one
// node (spec.md §3, §9).
type Region interface {
	Name() string
	Sources() []Source
	FlexibleSources() []FlexibleSource
	Storages() []Storage
	Reserves() Reserves
	Frame() *series.Frame
	HeatOptimized() bool
}

// Zone is an atomic region.
type Zone struct {
	name            string
	sources         []Source
	flexibleSources []FlexibleSource
	storages        []Storage
	reserves        Reserves
	frame           *series.Frame
	heatOptimized   bool
}

// NewZone constructs a Zone, validating every entity it holds.
func NewZone(name string, sources []Source, flex []FlexibleSource, storages []Storage, reserves Reserves, frame *series.Frame, heatOptimized bool) (*Zone, error) {
	for _, s := range sources {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	for _, s := range flex {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	for _, s := range storages {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	required := []string{"Load", "Solar", "Wind onshore", "Wind offshore", "Nuclear", "Hydro"}
	if heatOptimized {
		required = append(required, "Heat_Demand_MW")
	}
	if err := frame.RequireColumns(name, required...); err != nil {
		return nil, err
	}
	return &Zone{
		name: name, sources: sources, flexibleSources: flex, storages: storages,
		reserves: reserves, frame: frame, heatOptimized: heatOptimized,
	}, nil
}

func (z *Zone) Name() string                    { return z.name }
func (z *Zone) Sources() []Source               { return z.sources }
func (z *Zone) FlexibleSources() []FlexibleSource { return z.flexibleSources }
func (z *Zone) Storages() []Storage             { return z.storages }
func (z *Zone) Reserves() Reserves              { return z.reserves }
func (z *Zone) Frame() *series.Frame            { return z.frame }
func (z *Zone) HeatOptimized() bool             { return z.heatOptimized }
