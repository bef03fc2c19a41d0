package lp

import (
	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/series"
	"github.com/devskill-org/gridopt/internal/solver"
)

// Build assembles the full multi-region, multi-hour LP described in
// spec.md §4.2 and returns it alongside the Index the solution
// extractor (C5) needs to read results back out.
func Build(regions []entity.Region, links []Link, idx series.DatetimeIndex, cfg Config) (*solver.Problem, *Index, error) {
	p := &solver.Problem{}
	ix := allocateVars(p, regions, links, idx, cfg)
	if err := buildConstraints(p, regions, links, idx, ix, cfg); err != nil {
		return nil, nil, err
	}
	return p, ix, nil
}
