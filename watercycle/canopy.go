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

package watercycle

import (
	"math"

	"github.com/iland-go/iland/climate"
)

// Canopy simulates precipitation interception, its evaporation, and
// transpiration through the Penman-Monteith (3-PG form) equation. All LAI
// inputs are stand-level, species-weighted aggregates supplied by the caller
// through SetStandParameters, which WaterCycle.Step calls every day (the
// species-specific weighting happens in the root package, which owns the
// per-RU species list).
type Canopy struct {
	needleFactor   float64
	decidousFactor float64
	airDensity     float64

	laiNeedle      float64
	laiBroadleaf   float64
	lai            float64
	maxConductance float64

	interception float64
	evaporation  float64

	et0 [12]float64 // monthly-aggregated reference evapotranspiration, mm
}

// NewCanopy returns a Canopy with the given interception-storage factors
// (mm at LAI->infinity, needle vs broadleaf) and air density (kg/m3).
func NewCanopy(needleFactor, decidousFactor, airDensity float64) *Canopy {
	return &Canopy{needleFactor: needleFactor, decidousFactor: decidousFactor, airDensity: airDensity}
}

// SetStandParameters assigns the stand-level LAI split and the
// LAI-weighted maximum canopy conductance, resetting the monthly ET0
// accumulators.
func (c *Canopy) SetStandParameters(laiNeedle, laiBroadleaf, maxCanopyConductance float64) {
	c.laiNeedle = laiNeedle
	c.laiBroadleaf = laiBroadleaf
	c.lai = laiNeedle + laiBroadleaf
	c.maxConductance = maxCanopyConductance
	c.et0 = [12]float64{}
}

// Interception returns the water currently held in the canopy, mm.
func (c *Canopy) Interception() float64 { return c.interception }

// Evaporation returns the most recent day's canopy evaporation, mm.
func (c *Canopy) Evaporation() float64 { return c.evaporation }

// DrainInterception returns whatever water remains held in the canopy
// after evaporation and zeroes it, so the caller can route it back into
// the bucket or the snow pack.
func (c *Canopy) DrainInterception() float64 {
	leftover := c.interception
	c.interception = 0
	return leftover
}

// ET0Month returns the accumulated reference evapotranspiration for month
// (1-12) so far this year.
func (c *Canopy) ET0Month(month int) float64 { return c.et0[month-1] }

// Flow intercepts precipMm in the canopy using the needle/broadleaf
// saturation-curve model, returning the amount that passes through to the
// snow pack / soil.
func (c *Canopy) Flow(precipMm float64) float64 {
	c.interception = 0
	c.evaporation = 0
	if c.lai == 0 || precipMm == 0 {
		return precipMm
	}

	var maxInterception, maxStorage float64
	if c.laiNeedle > 0 {
		maxFlowNeedle := 0.9 * math.Sqrt(1.03-math.Exp(-0.055*precipMm))
		maxInterception += precipMm * (1 - maxFlowNeedle*c.laiNeedle/c.lai)
		maxStorage += c.needleFactor * (1 - math.Exp(-0.55*c.laiNeedle))
	}
	if c.laiBroadleaf > 0 {
		maxFlowBroad := 0.9 * math.Pow(1.22-math.Exp(-0.055*precipMm), 0.35)
		maxInterception += precipMm * (1 - maxFlowBroad*c.laiBroadleaf/c.lai)
		maxStorage += c.decidousFactor * (1 - math.Exp(-0.5*c.laiBroadleaf))
	}

	c.interception = math.Min(maxStorage, maxInterception)
	c.interception = math.Min(c.interception, precipMm)
	return precipMm - c.interception
}

// Fixed 3-PG-form constants for the Penman-Monteith transpiration formula.
const (
	netRadQa        = -90.0
	netRadQb        = 0.8
	vpdConv         = 0.000622           // converts mbar VPD to a saturation deficit
	latentHeat      = 2460000.0          // J/kg
	svpSlope        = 2.2                // mbar/degC, fixed per the 3-PG simplification
	psychrometric   = 0.0672718682328237 // kPa/degC
	referenceWindMs = 2.0
)

// EvapotranspirationPM returns the day's canopy transpiration (mm) via the
// Penman-Monteith equation in its 3-PG form, given the boundary-layer
// conductance (m/s) and the day's combined VPD/soil-water response. When
// water is intercepted it partitions between evaporation of that water and
// transpiration using the Wigmosta ratio, draining interception
// accordingly; the evaporated amount is not part of the return value and is
// reported by Evaporation.
func (c *Canopy) EvapotranspirationPM(day climate.Day, daylengthHours, combinedResponse, boundaryLayerConductance float64) float64 {
	vpdMbar := day.VPD * 10
	temperature := day.MeanTemperature()
	daylengthSec := daylengthHours * 3600
	radWm2 := day.Rad / daylengthSec * 1000000

	netRad := netRadQa + netRadQb*radWm2
	defTerm := c.airDensity * latentHeat * (vpdMbar * vpdConv) * boundaryLayerConductance

	gC := c.maxConductance * combinedResponse
	var canopyTranspiration float64
	if gC > 0 {
		div := 1 + svpSlope + boundaryLayerConductance/gC
		etransp := (svpSlope*netRad + defTerm) / div
		canopyTranspiration = etransp / latentHeat * daylengthSec
	}

	netRadMJDay := netRad * daylengthSec / 1000000
	et0Num := 0.408*svpSlope*netRadMJDay + psychrometric*900/(temperature+273)*referenceWindMs*day.VPD
	et0Den := svpSlope + psychrometric*(1+0.34*referenceWindMs)
	c.et0[day.Month-1] += et0Num / et0Den

	if c.interception > 0 {
		divEvap := 1 + svpSlope
		evapCanopyPotential := (svpSlope*netRad + defTerm) / divEvap / latentHeat * daylengthSec
		ratioTE := canopyTranspiration / evapCanopyPotential
		evapCanopy := math.Min(evapCanopyPotential, c.interception)
		canopyTranspiration = (evapCanopyPotential - evapCanopy) * ratioTE
		c.interception -= evapCanopy
		c.evaporation = evapCanopy
	}
	return canopyTranspiration
}
