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

// Package watercycle implements the resource unit's daily soil water
// balance: canopy interception, snow pack routing, Penman-Monteith
// evapotranspiration, and the Schwalm & Ek (2004) pedotransfer functions
// that turn soil texture into available water capacity.
package watercycle

import (
	"fmt"
	"math"

	"github.com/iland-go/iland/climate"
)

const (
	groundVegetationCC = 0.02

	fieldCapacityPsiKPa = -15.0
	pwpPsiMPa           = -4.0
)

// SoilTexture is the percent sand/silt/clay composition of a resource
// unit's soil, used to derive its water-holding properties.
type SoilTexture struct {
	Sand, Silt, Clay float64 // percent, must sum to ~100
}

// Validate reports an error if the texture fractions do not sum to
// approximately 100 percent.
func (t SoilTexture) Validate() error {
	sum := t.Sand + t.Silt + t.Clay
	if math.Abs(sum-100) > 0.01 {
		return fmt.Errorf("iland/watercycle: soil texture sums to %v, want 100", sum)
	}
	return nil
}

// soilProperties holds the Schwalm & Ek (2004) pedotransfer outputs derived
// once from a SoilTexture, plus the field capacity / permanent wilting
// point this resource unit's available water is bounded by.
type soilProperties struct {
	psiSat   float64 // kPa
	bCoeff   float64
	thetaSat float64 // volumetric fraction

	fieldCapacity float64 // mm
	pwp           float64 // mm
}

// heightFromPsi converts a soil water potential (kPa, negative) to a
// volumetric water content fraction via the Campbell retention curve.
func heightFromPsi(p soilProperties, psiKPa float64) float64 {
	if psiKPa >= 0 {
		return p.thetaSat
	}
	return p.thetaSat * math.Pow(psiKPa/p.psiSat, 1/p.bCoeff)
}

// psiFromHeight is the inverse of heightFromPsi: volumetric content
// fraction to soil water potential, kPa.
func psiFromHeight(p soilProperties, theta float64) float64 {
	if theta >= p.thetaSat {
		return 0
	}
	return p.psiSat * math.Pow(theta/p.thetaSat, p.bCoeff)
}

func newSoilProperties(texture SoilTexture, depthMm float64, useSaturationForFieldCapacity bool) soilProperties {
	sand, silt, clay := texture.Sand, texture.Silt, texture.Clay
	p := soilProperties{
		psiSat:   -math.Exp((1.54-0.0095*sand+0.0063*silt)*math.Log(10)) * 0.000098,
		bCoeff:   -(3.1 + 0.157*clay - 0.003*sand),
		thetaSat: 0.01 * (50.5 - 0.142*sand - 0.037*clay),
	}
	fcTheta := heightFromPsi(p, fieldCapacityPsiKPa)
	if useSaturationForFieldCapacity {
		fcTheta = p.thetaSat
	}
	p.fieldCapacity = fcTheta * depthMm
	p.pwp = heightFromPsi(p, pwpPsiMPa*1000) * depthMm
	return p
}

// WaterCycle is the daily soil water balance for a single resource unit.
// A fresh instance is built once per resource unit by Setup and then
// stepped one day at a time, either directly via Step or for a whole
// year via Run.
type WaterCycle struct {
	soil   soilProperties
	depth  float64 // mm, rootable soil depth
	canopy *Canopy
	snow   *SnowPack

	boundaryLayerConductance float64
	laiThresholdClosedStands float64

	content float64 // current plant-available soil water, mm

	psi                    float64 // current soil water potential, kPa
	soilAtmosphereResponse float64

	annualRunoff float64
}

// Params collects the per-resource-unit configuration of a WaterCycle,
// mirroring the water option group of the configuration surface. The zero
// value is not usable; DefaultParams supplies reference values a caller
// overrides as needed.
type Params struct {
	SoilDepth                    float64 // mm, rootable depth
	InterceptionStorageNeedle    float64 // mm at infinite conifer LAI
	InterceptionStorageBroadleaf float64 // mm at infinite broadleaf LAI
	AirDensity                   float64 // kg/m3
	SnowMeltTemperature          float64 // degC
	BoundaryLayerConductance     float64 // m/s, aerodynamic conductance above a closed canopy
	LAIThresholdClosedStands     float64 // total LAI below which conductance scales down
	UseSoilSaturation            bool    // pin field capacity to saturation instead of -15 kPa
}

// DefaultParams returns the reference parameterization used when a host has
// no site-specific overrides.
func DefaultParams() Params {
	return Params{
		SoilDepth:                    1000,
		InterceptionStorageNeedle:    4,
		InterceptionStorageBroadleaf: 2,
		AirDensity:                   1.2,
		SnowMeltTemperature:          0,
		BoundaryLayerConductance:     0.2,
		LAIThresholdClosedStands:     3,
	}
}

// Setup constructs a WaterCycle for a resource unit with the given soil
// texture and parameters. Field capacity and permanent wilting point are
// derived once here from the texture via the pedotransfer functions; the
// bucket starts full.
func Setup(texture SoilTexture, p Params) (*WaterCycle, error) {
	if err := texture.Validate(); err != nil {
		return nil, err
	}
	if p.SoilDepth <= 0 {
		return nil, fmt.Errorf("iland/watercycle: soil depth %v must be positive", p.SoilDepth)
	}
	if p.BoundaryLayerConductance <= 0 {
		return nil, fmt.Errorf("iland/watercycle: boundary layer conductance %v must be positive", p.BoundaryLayerConductance)
	}
	if p.LAIThresholdClosedStands <= 0 {
		return nil, fmt.Errorf("iland/watercycle: lai threshold for closed stands %v must be positive", p.LAIThresholdClosedStands)
	}
	soil := newSoilProperties(texture, p.SoilDepth, p.UseSoilSaturation)
	w := &WaterCycle{
		soil:                     soil,
		depth:                    p.SoilDepth,
		canopy:                   NewCanopy(p.InterceptionStorageNeedle, p.InterceptionStorageBroadleaf, p.AirDensity),
		snow:                     NewSnowPack(p.SnowMeltTemperature),
		boundaryLayerConductance: p.BoundaryLayerConductance,
		laiThresholdClosedStands: p.LAIThresholdClosedStands,
		content:                  soil.fieldCapacity,
	}
	w.psi = psiFromHeight(w.soil, w.content/w.depth)
	return w, nil
}

// FieldCapacity returns the maximum plant-available water content, mm.
func (w *WaterCycle) FieldCapacity() float64 { return w.soil.fieldCapacity }

// PermanentWiltingPoint returns the water content below which plants can
// no longer extract water, mm.
func (w *WaterCycle) PermanentWiltingPoint() float64 { return w.soil.pwp }

// Content returns the current plant-available soil water, mm.
func (w *WaterCycle) Content() float64 { return w.content }

// SoilWaterPotential returns the current matric potential, kPa.
func (w *WaterCycle) SoilWaterPotential() float64 { return w.psi }

// SoilAtmosphereResponse returns the combined VPD/soil-water response of
// the most recent Step, the growth modifier the stand-level physiology
// reads after a year has run.
func (w *WaterCycle) SoilAtmosphereResponse() float64 { return w.soilAtmosphereResponse }

// Canopy exposes the canopy interception model for stand parameter
// updates ahead of a year's simulation.
func (w *WaterCycle) Canopy() *Canopy { return w.canopy }

// AnnualRunoff returns the water lost to drainage since the last
// ResetAnnualRunoff call, mm.
func (w *WaterCycle) AnnualRunoff() float64 { return w.annualRunoff }

// ResetAnnualRunoff zeroes the runoff accumulator at the start of a year.
func (w *WaterCycle) ResetAnnualRunoff() { w.annualRunoff = 0 }

// vpdResponse and waterResponse are the two independent stress curves the
// combined response takes the minimum of. Both are fixed linear ramps
// clamped to [0,1]: over soil psi (1 at saturation, 0 at the wilting
// point) and over VPD (1 at 0 kPa, 0 at 3 kPa and above).
func waterResponse(psiKPa, pwpKPa float64) float64 {
	if psiKPa >= 0 {
		return 1
	}
	r := psiKPa / pwpKPa
	if r > 1 {
		r = 1
	}
	return 1 - r
}

func vpdResponse(vpdKPa float64) float64 {
	r := 1 - vpdKPa/3
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// StandInputs are the per-day, caller-supplied stand properties the water
// cycle needs beyond climate: the LAI-weighted canopy conductance and
// total LAI, used both for interception capacity and to scale the ground
// vegetation response below canopy closure.
type StandInputs struct {
	LAINeedle, LAIBroadleaf float64
	MaxCanopyConductance    float64
	AgingFactor             float64 // 0..1, reduces conductance for senescing stands
}

// Step advances the water balance by one day, returning the day's
// transpiration (mm) and combined soil-atmosphere response used by
// growth for that day.
func (w *WaterCycle) Step(day climate.Day, daylengthHours float64, stand StandInputs) (transpiration, response float64, err error) {
	if stand.LAINeedle < 0 || stand.LAIBroadleaf < 0 {
		return 0, 0, fmt.Errorf("iland/watercycle: negative LAI in stand inputs")
	}
	w.canopy.SetStandParameters(stand.LAINeedle, stand.LAIBroadleaf, stand.MaxCanopyConductance)

	throughfall := w.canopy.Flow(day.Precip)
	groundwater := w.snow.Flow(throughfall, day.MeanTemperature())

	totalLAI := stand.LAINeedle + stand.LAIBroadleaf
	response = math.Min(waterResponse(w.psi, pwpPsiMPa*1000), vpdResponse(day.VPD))
	if totalLAI < 1 {
		response = response*totalLAI + groundVegetationCC*(1-totalLAI)
	}
	// Landsberg & Waring ramp below canopy closure. The LAI is clamped to
	// at least 1 first: the gaps of a sparse stand are already accounted
	// for by the ground-vegetation blend above, and the ramp must not
	// crush that contribution back toward zero on nearly bare ground.
	if effectiveLAI := math.Max(totalLAI, 1); effectiveLAI < w.laiThresholdClosedStands {
		response *= effectiveLAI / w.laiThresholdClosedStands
	}
	response *= clamp01(stand.AgingFactor)
	w.soilAtmosphereResponse = response

	transpiration = w.canopy.EvapotranspirationPM(day, daylengthHours, response, w.boundaryLayerConductance)

	// Non-evaporated intercepted water returns to the bucket, or to the
	// snow pack on a sub-threshold day, rather than vanishing from the
	// balance: the annual water budget must conserve exactly.
	leftover := w.canopy.DrainInterception()
	groundwater += w.snow.Add(leftover, day.MeanTemperature())

	w.content += groundwater
	w.content -= transpiration
	if w.content > w.soil.fieldCapacity {
		w.annualRunoff += w.content - w.soil.fieldCapacity
		w.content = w.soil.fieldCapacity
	}
	if w.content < w.soil.pwp {
		// Transpiration is capped at the permanent wilting point: refund the
		// portion that would have pushed content below it.
		transpiration -= w.soil.pwp - w.content
		if transpiration < 0 {
			transpiration = 0
		}
		w.content = w.soil.pwp
	}
	w.psi = psiFromHeight(w.soil, w.content/w.depth)
	return transpiration, response, nil
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

// Run steps the water balance across every day of year via tbl, calling
// standAt once per day-of-year to fetch that day's stand inputs (the
// caller's growth module may update LAI and conductance as the season
// progresses). It returns the year's total transpiration, mm.
func (w *WaterCycle) Run(tbl climate.Table, year int, standAt func(doy int) StandInputs) (float64, error) {
	n := tbl.DaysInYear(year)
	var total float64
	for doy := 0; doy < n; doy++ {
		day, err := tbl.Day(year, doy)
		if err != nil {
			return total, err
		}
		t, _, err := w.Step(day, tbl.DaylengthHours(doy), standAt(doy))
		if err != nil {
			return total, err
		}
		total += t
	}
	return total, nil
}
