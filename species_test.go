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
	"math"
	"testing"

	"github.com/iland-go/iland/expr"
)

func testSpecies(t *testing.T) *Species {
	t.Helper()
	hdMin := expr.MustParse("100")
	hdMax := expr.MustParse("250")
	return &Species{
		ID:                  "piab",
		Name:                "Picea abies",
		FoliageAllometry:    Allometry{A: 0.05, B: 2.1},
		WoodyAllometry:      Allometry{A: 0.1, B: 2.4},
		HDMin:               hdMin,
		HDMax:               hdMax,
		WoodDensity:         450,
		FormFactor:          0.55,
		MaxAge:              500,
		MaxHeight:           50,
		IntrinsicMortality:  0.01,
		StressMortality:     0.05,
		SeedYearProbability: 0.3,
		MaturityAge:         40,
	}
}

func TestAllometryBiomass(t *testing.T) {
	a := Allometry{A: 0.1, B: 2}
	if v := a.Biomass(10); math.Abs(v-10) > 1e-9 {
		t.Fatalf("Biomass(10) = %v, want 10", v)
	}
	if v := a.Biomass(0); v != 0 {
		t.Fatalf("Biomass(0) = %v, want 0", v)
	}
}

func TestSpeciesValidate(t *testing.T) {
	s := testSpecies(t)
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSpeciesValidateRejectsMissingAllometry(t *testing.T) {
	s := testSpecies(t)
	s.WoodyAllometry = Allometry{}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for missing woody allometry")
	}
}

func TestSpeciesValidateRejectsOutOfRangeProbability(t *testing.T) {
	s := testSpecies(t)
	s.StressMortality = 1.5
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for out-of-range stress mortality")
	}
}

func TestSpeciesHDRatio(t *testing.T) {
	s := testSpecies(t)
	min, max, err := s.HDRatio(20)
	if err != nil {
		t.Fatalf("HDRatio: %v", err)
	}
	if min != 100 || max != 250 {
		t.Fatalf("HDRatio = (%v,%v), want (100,250)", min, max)
	}
}

func TestSpeciesMaturityAndSeedYear(t *testing.T) {
	s := testSpecies(t)
	if s.IsMature(30, 30) {
		t.Fatal("tree below maturity age should not be mature")
	}
	if !s.IsMature(50, 30) {
		t.Fatal("tree above maturity age and height threshold should be mature")
	}
	if !s.IsSeedYear(0.1) {
		t.Fatal("draw below seed-year probability should be a seed year")
	}
	if s.IsSeedYear(0.9) {
		t.Fatal("draw above seed-year probability should not be a seed year")
	}
}
