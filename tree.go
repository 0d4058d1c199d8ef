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

import "fmt"

// DeathCause tags why a tree left the living population, replacing the
// raw floating-point sentinels the stamp/physiology code would otherwise
// need to distinguish "alive" from various kinds of dead.
type DeathCause int

const (
	CauseNone DeathCause = iota
	CauseIntrinsic
	CauseStress
	CauseWind
	CauseBarkBeetle
	CauseManagement
)

// TreeFlags records boolean status independent of the death cause: a tree
// can be alive and simultaneously marked for harvest.
type TreeFlags struct {
	Alive        bool
	MarkedForCut bool
	Dead         bool
	DeadCause    DeathCause
}

// Biomass holds a tree's carbon pools in kg dry matter.
type Biomass struct {
	Stem       float64
	Branch     float64
	Foliage    float64
	CoarseRoot float64
	FineRoot   float64
}

// Total returns the sum of every biomass pool.
func (b Biomass) Total() float64 {
	return b.Stem + b.Branch + b.Foliage + b.CoarseRoot + b.FineRoot
}

// Tree is one simulated individual. Position is fixed for its lifetime;
// every other field is mutated only by the ResourceUnit that owns it, and
// only during that RU's single-threaded growth step. SpeciesIndex and
// RUIndex are arena indices rather than pointers: lifetimes are
// whole-simulation, so an index into a landscape-owned slice is cheaper
// and safer to copy than a pointer graph.
type Tree struct {
	ID           int
	Position     Point
	SpeciesIndex int
	RUIndex      int

	DBH    float64 // cm
	Height float64 // m
	Age    int

	StressIndex float64
	LightIndex  float64 // set by light engine pass B

	Biomass Biomass
	Flags   TreeFlags

	// writerStamp and readerStamp are resolved once per growth step from the
	// tree's species' StampContainer, cached here so the light engine's two
	// passes don't repeat the dbh/hd-ratio lookup.
	writerStamp *Stamp
	readerStamp *Stamp
}

// NewTree constructs a living tree at the given position.
func NewTree(id int, pos Point, speciesIndex, ruIndex int, dbh, height float64) *Tree {
	return &Tree{
		ID:           id,
		Position:     pos,
		SpeciesIndex: speciesIndex,
		RUIndex:      ruIndex,
		DBH:          dbh,
		Height:       height,
		Flags:        TreeFlags{Alive: true},
	}
}

// HDRatio returns the tree's current slenderness, 100*height/dbh.
func (t *Tree) HDRatio() float64 {
	if t.DBH == 0 {
		return 0
	}
	return 100 * t.Height / t.DBH
}

// ResolveStamps looks up and caches the writer and reader stamps this tree
// should use for the current growth step, given its species' stamp
// container. Callers must call this once per tree per year before the
// light engine's pass A.
func (t *Tree) ResolveStamps(stamps *StampContainer) error {
	if stamps == nil {
		return fmt.Errorf("iland: tree %d: no stamp container for species %d", t.ID, t.SpeciesIndex)
	}
	s := stamps.Stamp(float32(t.DBH), float32(t.Height))
	if s == nil {
		return fmt.Errorf("iland: tree %d: no writer stamp for dbh=%v height=%v", t.ID, t.DBH, t.Height)
	}
	t.writerStamp = s
	t.readerStamp = s.Reader()
	if t.readerStamp == nil {
		return fmt.Errorf("iland: tree %d: writer stamp has no attached reader", t.ID)
	}
	return nil
}

// WriterStamp returns the stamp cached by the most recent ResolveStamps call.
func (t *Tree) WriterStamp() *Stamp { return t.writerStamp }

// ReaderStamp returns the reader stamp cached by the most recent
// ResolveStamps call.
func (t *Tree) ReaderStamp() *Stamp { return t.readerStamp }

// MarkDead transitions the tree to dead with the given cause. A tree already
// dead is left unchanged; callers should not call MarkDead twice with
// different causes.
func (t *Tree) MarkDead(cause DeathCause) {
	if t.Flags.Dead {
		return
	}
	t.Flags.Alive = false
	t.Flags.Dead = true
	t.Flags.DeadCause = cause
}

// AttemptSeedProduction reports a produced-seed event for this tree to the
// species-level dispersal collaborator when it has crossed its species'
// maturity threshold and the current year is a seed year. The core does not
// perform dispersal itself; it only decides whether to notify.
func (t *Tree) AttemptSeedProduction(species *Species, seedYear bool, dispersal func(positionIndex Point)) {
	if !t.Flags.Alive || dispersal == nil {
		return
	}
	if !seedYear {
		return
	}
	if species.IsMature(t.Age, t.Height) {
		dispersal(t.Position)
	}
}

// Validate checks the runtime-consistency invariants a tree must satisfy
// after any mutation: non-negative dbh/height/age, non-negative biomass.
func (t *Tree) Validate() error {
	if t.DBH < 0 || t.Height < 0 {
		return fmt.Errorf("iland: tree %d: negative dbh or height", t.ID)
	}
	if t.Age < 0 {
		return fmt.Errorf("iland: tree %d: negative age", t.ID)
	}
	if t.Biomass.Total() < 0 {
		return fmt.Errorf("iland: tree %d: negative biomass", t.ID)
	}
	return nil
}
