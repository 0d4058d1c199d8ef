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

// SnowPack accumulates precipitation below a threshold temperature and
// releases it (plus melt) above that threshold. The melt model follows the
// approach used by Picus 1.3 and ForestBGC (Running 1988): a fixed melt
// coefficient per degree above the threshold, capped at the pack size.
type SnowPack struct {
	temperature float64 // threshold, degC
	pack        float64 // mm
}

const snowMeltCoefficient = 0.7 // mm per degC per day

// NewSnowPack returns an empty snow pack with the given melt threshold
// temperature.
func NewSnowPack(thresholdTemp float64) *SnowPack {
	return &SnowPack{temperature: thresholdTemp}
}

// Pack returns the current snow water equivalent, mm.
func (s *SnowPack) Pack() float64 { return s.pack }

// SetPack overrides the current pack, used to seed test scenarios.
func (s *SnowPack) SetPack(mm float64) { s.pack = mm }

// Flow routes precipMm through the pack for a day at the given temperature,
// returning the amount of water that reaches the ground: the day's
// precipitation unchanged if the pack is empty and above threshold, the
// day's precipitation plus melt if the pack has accumulated snow, or zero
// (fully retained as new snow) if below threshold.
func (s *SnowPack) Flow(precipMm, temperature float64) float64 {
	if temperature > s.temperature {
		if s.pack == 0 {
			return precipMm
		}
		melt := (temperature - s.temperature) * snowMeltCoefficient
		if melt > s.pack {
			melt = s.pack
		}
		s.pack -= melt
		return precipMm + melt
	}
	s.pack += precipMm
	return 0
}

// Add routes non-evaporated intercepted canopy water back into the pack on
// sub-threshold days, returning the unconsumed amount (which the bucket
// should receive directly) on above-threshold days.
func (s *SnowPack) Add(precipMm, temperature float64) float64 {
	if temperature > s.temperature {
		return precipMm
	}
	s.pack += precipMm
	return 0
}
