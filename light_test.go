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
	"testing"
)

func constantStamp(size int, value float32) *Stamp {
	s := NewStamp(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			s.SetAt(x, y, value)
		}
	}
	return s
}

func treeWithStamp(id int, pos Point, writer, reader *Stamp) *Tree {
	t := NewTree(id, pos, 0, 0, 20, 20)
	container := NewStampContainer()
	if err := container.AddStamp(writer, float32(t.DBH), float32(100*t.Height/t.DBH), 5); err != nil {
		panic(err)
	}
	if err := container.AddReaderStamp(reader, 5); err != nil {
		panic(err)
	}
	container.finalizeSetup()
	if found, _ := container.AttachReaderStamps(container); found == 0 {
		panic("no reader stamp attached")
	}
	if err := t.ResolveStamps(container); err != nil {
		panic(err)
	}
	return t
}

func TestLightGridEmptyLandscapeStaysOne(t *testing.T) {
	lg := NewLightGrid(0, 0, 50, 50)
	for i := 0; i < lg.Grid().Count(); i++ {
		if lg.Grid().AtIndex(i) != 1 {
			t.Fatalf("cell %d = %v, want 1.0", i, lg.Grid().AtIndex(i))
		}
	}
}

func TestLightGridSingleTreeIsolated(t *testing.T) {
	lg := NewLightGrid(0, 0, 50, 50)
	writer := constantStamp(5, 0.8)
	reader := constantStamp(5, 1.0)
	tr := treeWithStamp(1, Point{50, 50}, writer, reader)

	if err := lg.ApplyStamp(tr); err != nil {
		t.Fatalf("ApplyStamp: %v", err)
	}
	if err := lg.ReadStamp(tr); err != nil {
		t.Fatalf("ReadStamp: %v", err)
	}
	if tr.LightIndex < 0.79 || tr.LightIndex > 0.81 {
		t.Fatalf("LightIndex = %v, want ~0.8", tr.LightIndex)
	}

	cix, ciy, _ := lg.centerCoord(tr.Position)
	if v := lg.Grid().At(cix, ciy); v < 0.79 || v > 0.81 {
		t.Fatalf("cell under stamp = %v, want ~0.8", v)
	}
	if v := lg.Grid().At(0, 0); v != 1 {
		t.Fatalf("cell far from any tree = %v, want 1.0", v)
	}
}

func TestLightGridTwoNonOverlappingTreesEqualIndices(t *testing.T) {
	lg := NewLightGrid(0, 0, 100, 100)
	w1, r1 := constantStamp(5, 0.8), constantStamp(5, 1.0)
	w2, r2 := constantStamp(5, 0.8), constantStamp(5, 1.0)
	t1 := treeWithStamp(1, Point{20, 20}, w1, r1)
	t2 := treeWithStamp(2, Point{80, 80}, w2, r2)

	for _, tr := range []*Tree{t1, t2} {
		if err := lg.ApplyStamp(tr); err != nil {
			t.Fatalf("ApplyStamp: %v", err)
		}
	}
	for _, tr := range []*Tree{t1, t2} {
		if err := lg.ReadStamp(tr); err != nil {
			t.Fatalf("ReadStamp: %v", err)
		}
	}
	if t1.LightIndex != t2.LightIndex {
		t.Fatalf("non-overlapping trees: %v != %v", t1.LightIndex, t2.LightIndex)
	}
}

func TestLightGridOverlappingTreesLowerIndex(t *testing.T) {
	isolated := NewLightGrid(0, 0, 100, 100)
	wI, rI := constantStamp(5, 0.8), constantStamp(5, 1.0)
	ti := treeWithStamp(1, Point{50, 50}, wI, rI)
	isolated.ApplyStamp(ti)
	isolated.ReadStamp(ti)

	overlap := NewLightGrid(0, 0, 100, 100)
	w1, r1 := constantStamp(5, 0.8), constantStamp(5, 1.0)
	w2, r2 := constantStamp(5, 0.8), constantStamp(5, 1.0)
	t1 := treeWithStamp(1, Point{50, 50}, w1, r1)
	t2 := treeWithStamp(2, Point{51, 50}, w2, r2)
	for _, tr := range []*Tree{t1, t2} {
		overlap.ApplyStamp(tr)
	}
	for _, tr := range []*Tree{t1, t2} {
		overlap.ReadStamp(tr)
	}

	if t1.LightIndex >= ti.LightIndex {
		t.Fatalf("overlapping tree index %v should be lower than isolated %v", t1.LightIndex, ti.LightIndex)
	}
	if t1.LightIndex != t2.LightIndex {
		t.Fatalf("two identical overlapping trees: %v != %v", t1.LightIndex, t2.LightIndex)
	}
}

func TestLightGridClipsAtEdge(t *testing.T) {
	lg := NewLightGrid(0, 0, 10, 10)
	writer := constantStamp(5, 0.5)
	reader := constantStamp(5, 1.0)
	tr := treeWithStamp(1, Point{1, 1}, writer, reader)
	if err := lg.ApplyStamp(tr); err != nil {
		t.Fatalf("ApplyStamp near edge: %v", err)
	}
	if err := lg.ReadStamp(tr); err != nil {
		t.Fatalf("ReadStamp near edge: %v", err)
	}
	for i := 0; i < lg.Grid().Count(); i++ {
		if v := lg.Grid().AtIndex(i); v < 0 || v > 1 {
			t.Fatalf("cell %d = %v escapes [0,1]", i, v)
		}
	}
}

func TestLightGridInvalidHeightCellsAreNeverWritten(t *testing.T) {
	lg := NewLightGrid(0, 0, 50, 50)
	hg := NewHeightGrid(0, 0, 10, 10)
	// Invalidate the 10m cell covering LIF cells x in [30,35), y in [20,25).
	hg.MarkInvalid(6, 4)
	lg.SetHeightGrid(hg)

	writer := constantStamp(9, 0.5)
	reader := constantStamp(9, 1.0)
	// Tree at (60, 40): its 9-cell stamp spans LIF x in [26,35), y in [16,25),
	// straddling the invalid height cell.
	tr := treeWithStamp(1, Point{60, 40}, writer, reader)
	if err := lg.ApplyStamp(tr); err != nil {
		t.Fatalf("ApplyStamp: %v", err)
	}

	if v := lg.Grid().At(31, 21); v != 1 {
		t.Fatalf("cell in invalid height cell = %v, want untouched 1.0", v)
	}
	if v := lg.Grid().At(27, 17); v != 0.5 {
		t.Fatalf("cell in valid height cell = %v, want 0.5", v)
	}

	if err := lg.ReadStamp(tr); err != nil {
		t.Fatalf("ReadStamp: %v", err)
	}
	// Reads exclude invalid cells entirely, so the index reflects only the
	// shaded valid cells.
	if tr.LightIndex != 0.5 {
		t.Fatalf("LightIndex = %v, want 0.5 over valid cells only", tr.LightIndex)
	}
}

func TestLightGridRejectsUnresolvedStamps(t *testing.T) {
	lg := NewLightGrid(0, 0, 10, 10)
	tr := NewTree(1, Point{5, 5}, 0, 0, 20, 20)
	if err := lg.ApplyStamp(tr); err == nil {
		t.Fatal("expected error applying a tree with no resolved writer stamp")
	}
	if err := lg.ReadStamp(tr); err == nil {
		t.Fatal("expected error reading a tree with no resolved reader stamp")
	}
}

func TestApplyOrderWithinCheckerboardSetCommutes(t *testing.T) {
	build := func(order []int) *LightGrid {
		lg := NewLightGrid(0, 0, 100, 100)
		trees := []*Tree{
			treeWithStamp(1, Point{20, 20}, constantStamp(5, 0.8), constantStamp(5, 1.0)),
			treeWithStamp(2, Point{80, 80}, constantStamp(5, 0.7), constantStamp(5, 1.0)),
			treeWithStamp(3, Point{20, 80}, constantStamp(5, 0.6), constantStamp(5, 1.0)),
		}
		for _, i := range order {
			if err := lg.ApplyStamp(trees[i]); err != nil {
				t.Fatalf("ApplyStamp: %v", err)
			}
		}
		return lg
	}

	a := build([]int{0, 1, 2})
	b := build([]int{2, 0, 1})
	ea, eb := a.Grid().Elements(), b.Grid().Elements()
	for i := range ea {
		if ea[i] != eb[i] {
			t.Fatalf("cell %d differs across apply orders: %v vs %v", i, ea[i], eb[i])
		}
	}
}

func TestLightGridResetIsIdempotent(t *testing.T) {
	lg := NewLightGrid(0, 0, 20, 20)
	tr := treeWithStamp(1, Point{20, 20}, constantStamp(5, 0.8), constantStamp(5, 1.0))
	if err := lg.ApplyStamp(tr); err != nil {
		t.Fatalf("ApplyStamp: %v", err)
	}
	lg.Reset()
	once := lg.Grid().Clone()
	lg.Reset()
	ea, eb := once.Elements(), lg.Grid().Elements()
	for i := range ea {
		if ea[i] != eb[i] {
			t.Fatalf("double reset diverged from single reset at cell %d", i)
		}
	}
	if eb[0] != 1 {
		t.Fatalf("reset cell = %v, want 1.0", eb[0])
	}
}
