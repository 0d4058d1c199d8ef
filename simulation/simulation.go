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

// Package simulation sequences one simulated year through its fixed phase
// barriers: climate advance, water cycle, the two-pass light engine,
// growth/mortality/regeneration, and statistics aggregation. It is the thin
// orchestration layer a host binary drives; every phase itself lives in the
// root package or one of its topic packages.
package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	iland "github.com/iland-go/iland"
	"github.com/iland-go/iland/climate"
	"github.com/iland-go/iland/watercycle"
)

var log = logrus.WithField("component", "simulation")

// ExternalModule is the hook management and disturbance logic runs through:
// an out-of-scope collaborator invoked between light pass B and growth. A
// Simulation with no modules registered simply skips the phase.
type ExternalModule func(rus []*iland.ResourceUnit) error

// Simulation owns everything a simulated landscape needs across years: the
// resource-unit grid (and its precomputed checkerboard), the shared LIF and
// height grids, the species table, a climate table, and a cancellation
// flag. Species and Climate are read-only for the Simulation's lifetime;
// ResourceUnits and the grids are mutated in place each year.
type Simulation struct {
	RUs          []*iland.ResourceUnit
	Checkerboard iland.Checkerboard
	LIF          *iland.LightGrid
	Height       *iland.HeightGrid
	Species      []*iland.Species
	Climate      climate.Table
	Cancel       *iland.Cancel
	Modules      []ExternalModule

	// CO2Concentration is the shared atmospheric CO2 level (ppm), set by the
	// host; RunYear does not change it, phase 1 included. External modules
	// may read it. Zero means "not set".
	CO2Concentration float64

	// TemperatureTau is the memory time (days) of the delayed tissue
	// temperature each resource unit tracks through the year; zero disables
	// smoothing (the delayed temperature follows the daily mean directly).
	TemperatureTau float64

	seed            int64
	stampContainers []*iland.StampContainer
	dispersalFunc   func(speciesIndex int, positionIndex iland.Point)
}

// SetStampContainers assigns the per-species writer/reader stamp libraries
// light pass A/B resolve trees against, indexed the same way as Species.
func (s *Simulation) SetStampContainers(containers []*iland.StampContainer) {
	s.stampContainers = containers
}

// SetDispersalCollaborator registers the outgoing hook for regeneration: a
// species-partitioned `setMatureTree(positionIndex)` call made once per
// mature tree in a seed year. Passing nil restores the no-op default.
func (s *Simulation) SetDispersalCollaborator(fn func(speciesIndex int, positionIndex iland.Point)) {
	s.dispersalFunc = fn
}

// New builds a Simulation over an already-constructed resource-unit grid
// and shared grids. seed seeds the mortality/regeneration random draws;
// callers that need reproducible runs should fix it.
func New(rus []*iland.ResourceUnit, lif *iland.LightGrid, height *iland.HeightGrid, species []*iland.Species, tbl climate.Table, seed int64) *Simulation {
	if lif != nil && height != nil {
		lif.SetHeightGrid(height)
	}
	return &Simulation{
		RUs:          rus,
		Checkerboard: iland.BuildCheckerboard(rus),
		LIF:          lif,
		Height:       height,
		Species:      species,
		Climate:      tbl,
		Cancel:       &iland.Cancel{},
		seed:         seed,
	}
}

// RunYear advances the simulation through its ten phases for the given
// calendar year. It aborts (returning the first phase's error) without
// rolling back any partially computed state.
func (s *Simulation) RunYear(year int) error {
	yearLog := log.WithField("year", year)

	// Phase 1: climate advance (single-threaded; per-RU cursors live inside
	// the Climate table implementation itself, so this phase is a no-op at
	// this layer beyond validating the year exists).
	if s.Climate.DaysInYear(year) == 0 {
		return fmt.Errorf("iland/simulation: year %d: no climate data", year)
	}

	// Phase 2: water cycle, parallel per RU.
	if err := iland.RunRUs(s.RUs, s.Cancel, func(ru *iland.ResourceUnit) error {
		return s.stepWaterCycle(ru, year)
	}); err != nil {
		yearLog.WithError(err).Error("water cycle phase failed")
		return err
	}

	// Phases 3-6: light pass A over S1, barrier, S2, barrier.
	s.LIF.Reset()
	if err := iland.RunLightPassA(s.Checkerboard, s.Cancel, func(ru *iland.ResourceUnit) error {
		return s.applyLightPassA(ru)
	}); err != nil {
		yearLog.WithError(err).Error("light pass A failed")
		return err
	}

	// Phase 7: light pass B, parallel per RU, read-only on the LIF.
	if err := iland.RunRUs(s.RUs, s.Cancel, func(ru *iland.ResourceUnit) error {
		return s.readLightPassB(ru)
	}); err != nil {
		yearLog.WithError(err).Error("light pass B failed")
		return err
	}

	// Phase 8: external modules (management, disturbance), run in
	// registration order between light and growth.
	for _, m := range s.Modules {
		if err := m(s.RUs); err != nil {
			yearLog.WithError(err).Error("external module failed")
			return err
		}
	}

	// Phase 9: growth, mortality, regeneration, parallel per RU.
	if err := iland.RunRUs(s.RUs, s.Cancel, func(ru *iland.ResourceUnit) error {
		return s.growAndCull(ru, year)
	}); err != nil {
		yearLog.WithError(err).Error("growth phase failed")
		return err
	}

	// Phase 10: statistics aggregation, parallel per RU.
	return iland.RunRUs(s.RUs, s.Cancel, func(ru *iland.ResourceUnit) error {
		ru.RefreshStats(s.Species)
		ru.RefreshStockedArea(s.Height)
		return nil
	})
}

func (s *Simulation) stepWaterCycle(ru *iland.ResourceUnit, year int) error {
	if ru.Water == nil {
		return nil
	}
	var laiNeedle, laiBroadleaf float64
	for _, t := range ru.LivingTrees() {
		sp := s.Species[t.SpeciesIndex]
		if sp.Phenology == iland.PhenologyEvergreen {
			laiNeedle += t.Biomass.Foliage * 0.01
		} else {
			laiBroadleaf += t.Biomass.Foliage * 0.01
		}
	}
	stand := watercycle.StandInputs{
		LAINeedle:            laiNeedle,
		LAIBroadleaf:         laiBroadleaf,
		MaxCanopyConductance: s.standConductance(ru, laiNeedle+laiBroadleaf),
		AgingFactor:          1,
	}
	smoother := climate.NewSmoother(s.TemperatureTau)
	if ru.DelayedTemperature != 0 {
		smoother.Reset(ru.DelayedTemperature)
	}
	ndays := s.Climate.DaysInYear(year)
	for doy := 0; doy < ndays; doy++ {
		day, err := s.Climate.Day(year, doy)
		if err != nil {
			return fmt.Errorf("iland/simulation: RU %d: %w", ru.ID, err)
		}
		if _, _, err := ru.Water.Step(day, s.Climate.DaylengthHours(doy), stand); err != nil {
			return fmt.Errorf("iland/simulation: RU %d: %w", ru.ID, err)
		}
		smoother.Add(day.MeanTemperature())
	}
	ru.DelayedTemperature = smoother.Value()
	return nil
}

// standConductance is the LAI-weighted mean of the per-species maximum
// canopy conductance across the RU's living trees, falling back to a
// reference value for an unstocked tile (the ground-vegetation blend still
// needs a conductance to work with).
func (s *Simulation) standConductance(ru *iland.ResourceUnit, totalLAI float64) float64 {
	const referenceConductance = 0.02 // m/s
	if totalLAI <= 0 {
		return referenceConductance
	}
	var weighted float64
	for _, t := range ru.LivingTrees() {
		sp := s.Species[t.SpeciesIndex]
		gc := sp.CanopyConductance
		if gc == 0 {
			gc = referenceConductance
		}
		weighted += gc * t.Biomass.Foliage * 0.01
	}
	return weighted / totalLAI
}

func (s *Simulation) applyLightPassA(ru *iland.ResourceUnit) error {
	for _, t := range ru.LivingTrees() {
		if err := t.ResolveStamps(s.speciesStamps(t.SpeciesIndex)); err != nil {
			return err
		}
		if err := s.LIF.ApplyStamp(t); err != nil {
			return err
		}
		if s.Height != nil {
			if ix, iy, ok := s.Height.IndexAt(t.Position); ok {
				s.Height.Update(ix, iy, t.Height)
			}
		}
	}
	return nil
}

func (s *Simulation) readLightPassB(ru *iland.ResourceUnit) error {
	for _, t := range ru.LivingTrees() {
		if err := s.LIF.ReadStamp(t); err != nil {
			return err
		}
	}
	return nil
}

// speciesStamps resolves the StampContainer a tree of the given species
// should apply/read this year. Species does not itself own a
// StampContainer field (stamp libraries stay a StampContainer concern, not
// a Species one); a host wires the two together by species index when it
// builds the Simulation. This stub is overridden via SetStampContainers
// before the first RunYear call.
func (s *Simulation) speciesStamps(speciesIndex int) *iland.StampContainer {
	if speciesIndex < 0 || speciesIndex >= len(s.stampContainers) {
		return nil
	}
	return s.stampContainers[speciesIndex]
}

// growAndCull runs phase 9 for one resource unit: scale each living tree's
// annual biomass increment by its light and water response, grow dbh and
// height from the updated biomass via the species allometries, draw
// mortality, and report regeneration to external dispersal collaborators.
// The mortality/seed-year draws come from an RNG seeded per (RU, year), so
// they are reproducible regardless of the order the dispatcher schedules
// resource units in and are never shared across goroutines.
func (s *Simulation) growAndCull(ru *iland.ResourceUnit, year int) error {
	rng := rand.New(rand.NewSource(s.seed ^ int64(ru.ID)<<20 ^ int64(year)))
	for _, t := range ru.LivingTrees() {
		sp := s.Species[t.SpeciesIndex]

		lightResponse := clamp01(t.LightIndex)
		response := lightResponse
		if ru.Water != nil {
			response = math.Min(response, clamp01(ru.Water.SoilWaterPotential()/-1500+1))
		}
		t.StressIndex = 1 - response

		growthRate := 0.02 * response // fraction of current stem biomass added this year
		t.Biomass.Stem += t.Biomass.Stem * growthRate
		t.Biomass.Foliage = sp.FoliageAllometry.Biomass(t.DBH)
		t.Biomass.Branch = sp.BranchAllometry.Biomass(t.DBH)
		t.Biomass.CoarseRoot = sp.CoarseRootAllometry.Biomass(t.DBH)

		if sp.WoodyAllometry.A > 0 && sp.WoodyAllometry.B > 0 {
			t.DBH = math.Pow(t.Biomass.Stem/sp.WoodyAllometry.A, 1/sp.WoodyAllometry.B)
		}
		if _, hdMax, err := sp.HDRatio(t.DBH); err == nil && hdMax > 0 {
			t.Height = t.DBH * hdMax / 100
		}
		t.Age++

		if err := t.Validate(); err != nil {
			return fmt.Errorf("iland/simulation: RU %d: %w", ru.ID, err)
		}

		mortalityP := sp.IntrinsicMortality + sp.StressMortality*t.StressIndex
		if rng.Float64() < mortalityP {
			t.MarkDead(iland.CauseStress)
			continue
		}

		seedYear := sp.IsSeedYear(rng.Float64())
		speciesIndex := t.SpeciesIndex
		t.AttemptSeedProduction(sp, seedYear, func(positionIndex iland.Point) {
			s.dispersal(speciesIndex, positionIndex)
		})
	}
	return nil
}

// dispersal forwards a produced-seed event to the registered dispersal
// collaborator, or drops it if none was registered: this package reports
// the event, it never performs dispersal itself.
func (s *Simulation) dispersal(speciesIndex int, positionIndex iland.Point) {
	if s.dispersalFunc != nil {
		s.dispersalFunc(speciesIndex, positionIndex)
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
