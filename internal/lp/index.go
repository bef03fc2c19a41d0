// Package lp is the LP builder: it walks every region and hour and
// emits variables and constraints into a sparse solver.Problem, one
// builder function per constraint family. Construction streams rows
// into the Problem as it goes rather than materializing a matrix
// itself; the solver backend is the only place a dense representation
// is built.
package lp

import (
	"github.com/devskill-org/gridopt/internal/entity"
)

// Link is a directed interconnector between two named regions; its
// per-hour flow variables are recorded in Index.Flows.
type Link struct {
	entity.Interconnector
}

// RegionIndex records every variable index allocated for one region,
// keyed the same way the builder iterates: by type for basic sources,
// by slice position for flexible sources and storages. C5 (solution
// extractor) re-reads these maps to pull solved values back out.
type RegionIndex struct {
	AlphaB map[entity.BasicSourceType]int
	AlphaF []int
	AlphaSMinus []int
	AlphaSPlus  []int

	PB map[entity.BasicSourceType][]int
	RB map[entity.BasicSourceType][]int

	PF [][]int
	RF [][]int

	ES [][]int
	CS [][]int
	DS [][]int

	PH [][]int // per flexible index i, only meaningful when Heat != nil
}

func newRegionIndex() *RegionIndex {
	return &RegionIndex{
		AlphaB: make(map[entity.BasicSourceType]int),
		PB:     make(map[entity.BasicSourceType][]int),
		RB:     make(map[entity.BasicSourceType][]int),
	}
}

// Index is the full variable map produced by Build, consumed by
// internal/extract.
type Index struct {
	Regions map[string]*RegionIndex
	// Flows[from][to] is the per-hour flow variable slice for the
	// directed link from->to.
	Flows map[string]map[string][]int
	Links []Link
}

func newIndex() *Index {
	return &Index{
		Regions: make(map[string]*RegionIndex),
		Flows:   make(map[string]map[string][]int),
	}
}

func (ix *Index) flowVar(from, to string, t int) int {
	return ix.Flows[from][to][t]
}
