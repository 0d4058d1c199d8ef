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

import (
	"fmt"
	"math"
)

// SliceTable is an in-memory Table backed by a flat, already-validated slice
// of Days, indexed by year then doy for O(1) lookup. It is the fixture used
// by the core's own tests and a reasonable starting point for a host binary
// that has already parsed a CSV or database extract into memory.
type SliceTable struct {
	latitude float64
	byYear   map[int][]Day
}

// NewSliceTable builds a SliceTable from days, which must already satisfy
// ValidateContiguous. latitude (degrees) is used for the daylength formula.
func NewSliceTable(latitude float64, days []Day) (*SliceTable, error) {
	if err := ValidateContiguous(days); err != nil {
		return nil, err
	}
	for _, d := range days {
		if err := Validate(d); err != nil {
			return nil, err
		}
	}
	t := &SliceTable{latitude: latitude, byYear: make(map[int][]Day)}
	for _, d := range days {
		t.byYear[d.Year] = append(t.byYear[d.Year], d)
	}
	return t, nil
}

// Day implements Table.
func (t *SliceTable) Day(year, doy int) (Day, error) {
	ys, ok := t.byYear[year]
	if !ok || doy < 0 || doy >= len(ys) {
		return Day{}, fmt.Errorf("iland/climate: no record for year %d doy %d", year, doy)
	}
	return ys[doy], nil
}

// DaysInYear implements Table.
func (t *SliceTable) DaysInYear(year int) int {
	return len(t.byYear[year])
}

// DaylengthHours implements Table using the standard astronomical
// approximation (solar declination from day-of-year, hour-angle from
// latitude), the same formula 3-PG-derived water balance models use for
// daily Penman-Monteith integration.
func (t *SliceTable) DaylengthHours(doy int) float64 {
	latRad := t.latitude * math.Pi / 180
	decl := 0.409 * math.Sin(2*math.Pi/365*float64(doy)-1.39)
	cosH := -math.Tan(latRad) * math.Tan(decl)
	cosH = math.Max(-1, math.Min(1, cosH))
	hourAngle := math.Acos(cosH)
	return 24 / math.Pi * hourAngle
}
