// Package flowdag computes the per-hour export-flow DAG ordering: the
// real exporters and importers for an hour, and a topological order
// over the flows between them, derived straight from Frame columns.
package flowdag

import (
	"fmt"

	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/lp"
)

const epsilon = entity.CurtailmentEpsilonMWh

// RealExportersTo returns the set of regions with positive measured
// flow into `to` at hour t over a positive-capacity link.
func RealExportersTo(to string, t int, links []lp.Link, byName map[string]entity.Region) map[string]bool {
	out := make(map[string]bool)
	region, ok := byName[to]
	if !ok {
		return out
	}
	frame := region.Frame()
	for _, l := range links {
		if l.To != to || l.CapacityMW <= 0 {
			continue
		}
		col := "Import_" + l.From
		if frame.Has(col) && frame.At(col, t) > 0 {
			out[l.From] = true
		}
	}
	return out
}

// RealImportersFrom returns the set of regions with positive measured
// flow out of `from` at hour t over a positive-capacity link.
func RealImportersFrom(from string, t int, links []lp.Link, byName map[string]entity.Region) map[string]bool {
	out := make(map[string]bool)
	region, ok := byName[from]
	if !ok {
		return out
	}
	frame := region.Frame()
	for _, l := range links {
		if l.From != from || l.CapacityMW <= 0 {
			continue
		}
		col := "Export_" + l.To
		if frame.Has(col) && frame.At(col, t) > 0 {
			out[l.To] = true
		}
	}
	return out
}

// Order computes the hour-t export-flow ordering: exporters always
// precede the regions they feed (spec.md §4.5).
func Order(t int, regions []entity.Region, links []lp.Link) ([]string, error) {
	byName := make(map[string]entity.Region, len(regions))
	for _, g := range regions {
		byName[g.Name()] = g
	}

	outgoing := make(map[string][]lp.Link)
	for _, l := range links {
		outgoing[l.From] = append(outgoing[l.From], l)
	}

	candidates := make([]string, 0, len(regions))
	inCandidates := make(map[string]bool)
	for _, g := range regions {
		if g.Frame().At("Import", t) < epsilon {
			candidates = append(candidates, g.Name())
			inCandidates[g.Name()] = true
		}
	}

	processed := make(map[string]bool)
	order := make([]string, 0, len(regions))

	for len(candidates) > 0 {
		var toProcess []string
		for _, c := range candidates {
			exporters := RealExportersTo(c, t, links, byName)
			ready := true
			for e := range exporters {
				if !processed[e] {
					ready = false
					break
				}
			}
			if ready {
				toProcess = append(toProcess, c)
			}
		}
		if len(toProcess) == 0 {
			return nil, fmt.Errorf("flowdag: no region ready to process at hour %d (cycle under current import thresholds)", t)
		}

		for _, c := range toProcess {
			processed[c] = true
			order = append(order, c)
			candidates = removeName(candidates, c)
			delete(inCandidates, c)

			for _, l := range outgoing[c] {
				if l.CapacityMW == 0 || processed[l.To] || inCandidates[l.To] {
					continue
				}
				candidates = append(candidates, l.To)
				inCandidates[l.To] = true
			}
		}
	}

	if len(order) != len(regions) {
		return nil, fmt.Errorf("flowdag: only %d of %d regions ordered at hour %d (cycle under current import thresholds)", len(order), len(regions), t)
	}
	return order, nil
}

func removeName(list []string, name string) []string {
	out := list[:0]
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
