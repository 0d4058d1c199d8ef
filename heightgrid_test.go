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

import "testing"

func TestHeightGridUpdateTracksMax(t *testing.T) {
	hg := NewHeightGrid(0, 0, 5, 5)
	hg.Update(2, 2, 15)
	hg.Update(2, 2, 10)
	if c := hg.At(2, 2); c.MaxHeight != 15 {
		t.Fatalf("MaxHeight = %v, want 15", c.MaxHeight)
	}
}

func TestHeightGridInvalidCellIgnoresUpdate(t *testing.T) {
	hg := NewHeightGrid(0, 0, 5, 5)
	hg.MarkInvalid(1, 1)
	hg.Update(1, 1, 30)
	c := hg.At(1, 1)
	if c.Valid {
		t.Fatal("expected cell to remain invalid")
	}
	if c.MaxHeight != 0 {
		t.Fatalf("MaxHeight = %v, want 0 on invalid cell", c.MaxHeight)
	}
}

func TestHeightGridIndexAt(t *testing.T) {
	hg := NewHeightGrid(0, 0, 5, 5)
	ix, iy, ok := hg.IndexAt(Point{25, 35})
	if !ok {
		t.Fatal("expected point within grid")
	}
	if ix != 2 || iy != 3 {
		t.Fatalf("coord = (%d,%d), want (2,3)", ix, iy)
	}
}
