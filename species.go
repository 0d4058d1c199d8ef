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

	"github.com/iland-go/iland/expr"
)

// PhenologyClass indexes a species into a table of per-month fractions of
// the vegetation period during which it carries leaves. Evergreen conifers
// use PhenologyEvergreen; deciduous broadleaves carry an index into an
// external per-month leaf-fraction table, which is not part of this module.
type PhenologyClass int

const (
	PhenologyEvergreen PhenologyClass = iota
	PhenologyDeciduousBroadleaf
	PhenologyDeciduousConifer
)

// Allometry is an a·d^b power-law biomass function, the shape used for
// foliage, woody, root, and branch biomass as functions of dbh (cm).
type Allometry struct {
	A, B float64
}

// Biomass evaluates the allometry at the given dbh (cm), returning kg.
func (a Allometry) Biomass(dbhCm float64) float64 {
	if a.A == 0 || dbhCm <= 0 {
		return 0
	}
	return a.A * math.Pow(dbhCm, a.B)
}

// Species is an immutable, per-species parameter bundle. It is loaded once
// at setup and never mutated afterward; every field here is read
// concurrently by many goroutines during growth, so no method may write to
// a Species.
type Species struct {
	ID   string
	Name string

	FoliageAllometry    Allometry
	WoodyAllometry      Allometry
	RootAllometry       Allometry
	BranchAllometry     Allometry
	CoarseRootAllometry Allometry

	// HDMin and HDMax are dbh-indexed expressions giving the minimum and
	// maximum plausible hd-ratio for a tree of that diameter. HDRatio
	// evaluates them as stored; nothing in this package linearises them.
	HDMin *expr.Expression
	HDMax *expr.Expression

	WoodDensity float64 // kg/m3
	FormFactor  float64

	SnagHalflifeStem   float64 // years
	SnagHalflifeBranch float64
	SnagHalflifeCoarse float64

	MaxAge    int
	MaxHeight float64 // m

	// IntrinsicMortality and StressMortality are yearly death probabilities;
	// StressMortality is additionally scaled by a tree's running stress
	// index during growth.
	IntrinsicMortality float64
	StressMortality    float64

	VPDResponse         *expr.Expression
	TemperatureResponse *expr.Expression
	NitrogenResponse    *expr.Expression

	Phenology          PhenologyClass
	CanopyConductance  float64 // m/s, species-level maximum
	LightResponseClass float64 // 0 (shade-tolerant) .. 1 (light-demanding)

	MaturityAge         int
	SeedYearProbability float64

	SaplingGrowthRate float64
	SaplingHeightMax  float64
}

// Validate checks the invariants a Species must satisfy before it can be
// used in a simulation: the mandatory allometric coefficients are nonzero
// and every probability lies in [0,1].
func (s *Species) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("iland: species missing id")
	}
	if s.FoliageAllometry.A == 0 || s.WoodyAllometry.A == 0 {
		return fmt.Errorf("iland: species %s: missing mandatory allometric parameter", s.ID)
	}
	if s.WoodDensity <= 0 {
		return fmt.Errorf("iland: species %s: wood density must be positive", s.ID)
	}
	if s.MaxAge <= 0 || s.MaxHeight <= 0 {
		return fmt.Errorf("iland: species %s: max age and max height must be positive", s.ID)
	}
	for name, p := range map[string]float64{
		"intrinsic mortality":   s.IntrinsicMortality,
		"stress mortality":      s.StressMortality,
		"seed-year probability": s.SeedYearProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("iland: species %s: %s %v out of [0,1]", s.ID, name, p)
		}
	}
	return nil
}

// HDRatio returns the hd-ratio (100*height/dbh) bounds for dbhCm, evaluating
// the species' HDMin/HDMax expressions; the values are not clamped.
func (s *Species) HDRatio(dbhCm float64) (min, max float64, err error) {
	min, err = s.HDMin.Eval1("dbh", dbhCm)
	if err != nil {
		return 0, 0, fmt.Errorf("iland: species %s: hd-min: %w", s.ID, err)
	}
	max, err = s.HDMax.Eval1("dbh", dbhCm)
	if err != nil {
		return 0, 0, fmt.Errorf("iland: species %s: hd-max: %w", s.ID, err)
	}
	return min, max, nil
}

// IsMature reports whether a tree of the given age and height has crossed
// this species' seed-production threshold.
func (s *Species) IsMature(age int, heightM float64) bool {
	return age >= s.MaturityAge && heightM >= s.MaxHeight*0.5
}

// IsSeedYear draws the yearly Bernoulli outcome for whether this is a seed
// year for the species, using the supplied uniform random draw in [0,1) so
// callers control the random source (and can make tests deterministic).
func (s *Species) IsSeedYear(uniform float64) bool {
	return uniform < s.SeedYearProbability
}
