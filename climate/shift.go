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

package climate

// ShiftedTable wraps a base Table, applying a fixed temperature offset
// (degC, added to both TMin and TMax) and a multiplicative precipitation
// factor to every day it serves. It implements the climate-manipulation
// options of the configuration surface (temperatureShift,
// precipitationShift) without touching the underlying data.
type ShiftedTable struct {
	Base             Table
	TemperatureShift float64
	PrecipFactor     float64 // 1.0 means unchanged
}

// Day implements Table.
func (t *ShiftedTable) Day(year, doy int) (Day, error) {
	d, err := t.Base.Day(year, doy)
	if err != nil {
		return Day{}, err
	}
	d.TMin += t.TemperatureShift
	d.TMax += t.TemperatureShift
	if t.PrecipFactor != 0 {
		d.Precip *= t.PrecipFactor
	}
	return d, nil
}

// DaysInYear implements Table.
func (t *ShiftedTable) DaysInYear(year int) int { return t.Base.DaysInYear(year) }

// DaylengthHours implements Table.
func (t *ShiftedTable) DaylengthHours(doy int) float64 { return t.Base.DaylengthHours(doy) }

// SampledTable wraps a base Table and serves each requested simulation year
// from a caller-chosen data year, implementing the random-sampling option of
// the configuration surface: the host draws (or fixes) the year sequence and
// the table replays it. Requested years beyond the sequence wrap around.
type SampledTable struct {
	Base  Table
	Years []int // data years, indexed by (requested year - FirstYear)

	// FirstYear anchors the mapping: requested year FirstYear serves
	// Years[0].
	FirstYear int
}

func (t *SampledTable) dataYear(year int) int {
	if len(t.Years) == 0 {
		return year
	}
	i := (year - t.FirstYear) % len(t.Years)
	if i < 0 {
		i += len(t.Years)
	}
	return t.Years[i]
}

// Day implements Table.
func (t *SampledTable) Day(year, doy int) (Day, error) {
	return t.Base.Day(t.dataYear(year), doy)
}

// DaysInYear implements Table.
func (t *SampledTable) DaysInYear(year int) int {
	return t.Base.DaysInYear(t.dataYear(year))
}

// DaylengthHours implements Table.
func (t *SampledTable) DaylengthHours(doy int) float64 { return t.Base.DaylengthHours(doy) }

// Smoother is a first-order exponential memory over a daily input series,
// used for the delayed tissue-temperature of the numerics option group: the
// smoothed value follows the input with a time constant of tau days.
type Smoother struct {
	tau     float64
	value   float64
	started bool
}

// NewSmoother returns a Smoother with the given time constant in days. A
// tau <= 1 follows the input immediately.
func NewSmoother(tau float64) *Smoother {
	return &Smoother{tau: tau}
}

// Reset re-seeds the smoother at v.
func (s *Smoother) Reset(v float64) {
	s.value = v
	s.started = true
}

// Add advances the smoother by one day of input and returns the updated
// smoothed value. The first call seeds the memory at the input itself.
func (s *Smoother) Add(v float64) float64 {
	if !s.started || s.tau <= 1 {
		s.value = v
		s.started = true
		return s.value
	}
	s.value += (v - s.value) / s.tau
	return s.value
}

// Value returns the current smoothed value.
func (s *Smoother) Value() float64 { return s.value }
