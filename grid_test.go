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

func TestGridIndexing(t *testing.T) {
	g := NewGrid[float64](0, 0, 2, 5, 5)
	if g.Count() != 25 {
		t.Fatalf("count = %d, want 25", g.Count())
	}
	g.Set(2, 2, 42)
	if v := g.At(2, 2); v != 42 {
		t.Fatalf("At(2,2) = %v, want 42", v)
	}
	idx, ok := g.IndexAt(Point{5, 5})
	if !ok {
		t.Fatal("expected point (5,5) to be in grid")
	}
	if v := g.AtIndex(idx); v != 42 {
		t.Fatalf("AtIndex = %v, want 42", v)
	}
}

func TestGridOutOfRange(t *testing.T) {
	g := NewGrid[float64](0, 0, 1, 3, 3)
	if _, ok := g.IndexAt(Point{-1, 0}); ok {
		t.Fatal("expected out-of-range point to map to invalid index")
	}
	if _, ok := g.IndexAt(Point{3, 3}); ok {
		t.Fatal("expected max-exclusive edge to map to invalid index")
	}
}

func TestGridLowerLeftInclusion(t *testing.T) {
	g := NewGrid[int](0, 0, 10, 2, 2)
	idx, ok := g.IndexAt(Point{10, 10})
	if !ok {
		t.Fatal("point at tile boundary should be owned by the upper-right tile")
	}
	ix, iy := g.CoordOf(idx)
	if ix != 1 || iy != 1 {
		t.Fatalf("coord = (%d,%d), want (1,1)", ix, iy)
	}
}

func TestRunnerSubRect(t *testing.T) {
	g := NewGrid[float64](0, 0, 1, 10, 10)
	g.Fill(1)
	r := NewRunner(g, Rect{Point{2, 2}, Point{5, 5}})
	count := 0
	for r.Next() {
		r.SetValue(0.5)
		count++
	}
	if count != 9 {
		t.Fatalf("runner visited %d cells, want 9", count)
	}
	if v := g.At(2, 2); v != 0.5 {
		t.Fatalf("cell (2,2) = %v, want 0.5", v)
	}
	if v := g.At(6, 6); v != 1 {
		t.Fatalf("cell (6,6) outside sub-rect changed to %v", v)
	}
}

func TestRunnerNeighbors8Edge(t *testing.T) {
	g := NewGrid[int](0, 0, 1, 3, 3)
	r := NewRunner(g, g.Rect())
	for r.Next() {
		if r.X() == 0 && r.Y() == 0 {
			n := r.Neighbors8()
			// west (index 6) and several others should be nil at the corner.
			if n[6] != nil {
				t.Fatal("expected west neighbor of corner cell to be nil")
			}
			if n[4] != nil {
				t.Fatal("expected south neighbor of corner cell to be nil")
			}
		}
	}
}

func TestGridClone(t *testing.T) {
	g := NewGrid[float64](0, 0, 1, 2, 2)
	g.Set(0, 0, 9)
	c := g.Clone()
	c.Set(0, 0, -1)
	if g.At(0, 0) != 9 {
		t.Fatal("clone mutation leaked back into original grid")
	}
}
