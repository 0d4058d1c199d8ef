/*
Copyright (C) the iland-go developers.
This file is part of iland-go.

iland-go is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

iland-go is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with iland-go.  If not, see <http://www.gnu.org/licenses/>.
*/

package iland

import (
	"fmt"
	"math"

	"github.com/iland-go/iland/watercycle"
)

// ResourceUnitStats holds the derived, once-a-year statistics of a
// ResourceUnit, refreshed exactly once after growth.
type ResourceUnitStats struct {
	BasalArea   float64 // m2/ha
	StockedArea float64 // m2
	Volume      float64 // m3/ha
	LAI         float64
	MeanAging   float64
}

// SoilPools holds the coarse soil and snag carbon pools of a ResourceUnit.
// This core treats them as opaque accumulators driven by growth/mortality;
// their decomposition dynamics are an external collaborator's concern.
type SoilPools struct {
	DeadWoodStem   float64
	DeadWoodBranch float64
	DeadWoodCoarse float64
	LitterFoliage  float64
	LitterFineRoot float64
}

// ResourceUnit is one 100 m x 100 m axis-aligned tile: the unit of parallel
// work and of soil/climate state. Climate is a shared, read-only reference;
// Trees is mutated only by the single goroutine processing this RU during a
// given phase.
type ResourceUnit struct {
	ID     int
	Bounds Rect

	Trees []*Tree

	Water *watercycle.WaterCycle

	Soil  SoilPools
	Stats ResourceUnitStats

	// DelayedTemperature is the tissue-temperature memory carried across
	// years: an exponentially smoothed daily mean temperature (degC) the
	// phenology of external regeneration collaborators reads.
	DelayedTemperature float64

	// checkerboardParity is (ix+iy) mod 2 for this RU's position in the
	// landscape's RU grid; the dispatcher uses it to build the S1/S2
	// partition without recomputing it every year.
	checkerboardParity int
}

// NewResourceUnit constructs an empty RU covering bounds, with checkerboard
// parity derived from its (ix, iy) position in the landscape's RU grid.
func NewResourceUnit(id int, bounds Rect, ix, iy int) *ResourceUnit {
	return &ResourceUnit{
		ID:                 id,
		Bounds:             bounds,
		checkerboardParity: (ix + iy) % 2,
	}
}

// Parity returns 0 or 1 depending on whether this RU belongs to the
// checkerboard set S1 or S2.
func (r *ResourceUnit) Parity() int { return r.checkerboardParity }

// AddTree appends a tree to the RU's tree list, enforcing the invariant
// that a tree's position must lie within its owning RU's bounds.
func (r *ResourceUnit) AddTree(t *Tree) error {
	if !r.Bounds.Contains(t.Position) {
		return fmt.Errorf("iland: tree %d position %v outside resource unit %d bounds %v", t.ID, t.Position, r.ID, r.Bounds)
	}
	t.RUIndex = r.ID
	r.Trees = append(r.Trees, t)
	return nil
}

// LivingTrees returns the subset of Trees currently alive, preserving
// insertion order (the ordering guarantee every phase depends on).
func (r *ResourceUnit) LivingTrees() []*Tree {
	out := make([]*Tree, 0, len(r.Trees))
	for _, t := range r.Trees {
		if t.Flags.Alive {
			out = append(out, t)
		}
	}
	return out
}

// RefreshStats recomputes the RU's derived statistics from its current tree
// list, looking each tree's species up in the landscape's species slice for
// its stem form factor. It must be called exactly once per simulated year,
// after growth; calling it twice in the same year silently recomputes the
// same values from the same tree list (idempotent, but callers should not
// rely on that to skip bookkeeping).
func (r *ResourceUnit) RefreshStats(species []*Species) {
	const referenceFormFactor = 0.5
	var basalArea, volume, lai, agingSum, agingWeight float64
	for _, t := range r.LivingTrees() {
		radius := t.DBH / 200 // cm -> m, diameter -> radius
		ba := math.Pi * radius * radius
		formFactor := referenceFormFactor
		if t.SpeciesIndex >= 0 && t.SpeciesIndex < len(species) && species[t.SpeciesIndex].FormFactor > 0 {
			formFactor = species[t.SpeciesIndex].FormFactor
		}
		basalArea += ba
		volume += ba * t.Height * formFactor
		lai += t.Biomass.Foliage * 0.01
		agingSum += t.StressIndex * ba
		agingWeight += ba
	}
	r.Stats.BasalArea = basalArea
	r.Stats.Volume = volume
	r.Stats.LAI = lai
	if agingWeight > 0 {
		r.Stats.MeanAging = agingSum / agingWeight
	}
}

// RefreshStockedArea derives the RU's stocked area (m2) from the height
// grid: the summed area of valid cells within the RU's bounds that carry at
// least one tree crown after light pass A. A nil height grid leaves the
// figure unchanged.
func (r *ResourceUnit) RefreshStockedArea(h *HeightGrid) {
	if h == nil {
		return
	}
	cellArea := h.Grid().CellSize() * h.Grid().CellSize()
	var stocked float64
	runner := NewRunner(h.Grid(), r.Bounds)
	for runner.Next() {
		c := runner.Value()
		if c.Valid && c.MaxHeight > 0 {
			stocked += cellArea
		}
	}
	r.Stats.StockedArea = stocked
}
