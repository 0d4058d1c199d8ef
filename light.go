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

import "fmt"

// LightGrid is the global light-influence field (LIF): a 2 m-resolution
// grid whose cell values are the product of every overlapping tree's
// writer-stamp contribution. A freshly built grid is 1.0 everywhere,
// meaning "no competition"; lower values mean progressively more shading.
const LightGridCellSize = 2.0

type LightGrid struct {
	grid *Grid[float32]

	// height, when set, gates both passes at 10 m cell validity: cells of
	// the LIF lying in an invalid height cell are never written during
	// apply and never contribute during read.
	height *HeightGrid
}

// NewLightGrid allocates a LightGrid covering sizeX by sizeY cells at 2 m
// resolution, anchored at (originX, originY), initialized to 1.0.
func NewLightGrid(originX, originY float64, sizeX, sizeY int) *LightGrid {
	g := NewGrid[float32](originX, originY, LightGridCellSize, sizeX, sizeY)
	g.Fill(1.0)
	return &LightGrid{grid: g}
}

// Grid exposes the backing Grid for height-grid validity cross-checks and
// statistics.
func (l *LightGrid) Grid() *Grid[float32] { return l.grid }

// Reset restores every cell to 1.0, done once per year before pass A.
func (l *LightGrid) Reset() { l.grid.Fill(1.0) }

// SetHeightGrid attaches the 10 m height grid whose per-cell validity flag
// gates stamp application and reads. Passing nil disables gating (every
// cell is treated as stockable).
func (l *LightGrid) SetHeightGrid(h *HeightGrid) { l.height = h }

// cellStockable reports whether LIF cell (gx, gy) lies in a valid height
// cell. With no height grid attached every cell is stockable.
func (l *LightGrid) cellStockable(gx, gy int) bool {
	if l.height == nil {
		return true
	}
	hix, hiy, ok := l.height.IndexAt(l.grid.CellCenter(gx, gy))
	if !ok {
		return false
	}
	return l.height.At(hix, hiy).Valid
}

// ApplyStamp is light engine pass A for one tree: it multiplies the tree's
// writer stamp into the LIF, anchored at the tree's position, clamping
// each stamp value to [0,1] and clipping cells that fall outside the
// grid. It must only be called for trees whose writer-stamp footprints
// cannot overlap a footprint being applied concurrently (the checkerboard
// partition the dispatcher is responsible for).
func (l *LightGrid) ApplyStamp(t *Tree) error {
	stamp := t.WriterStamp()
	if stamp == nil {
		return fmt.Errorf("iland: tree %d: ApplyStamp called before ResolveStamps", t.ID)
	}
	cix, ciy, ok := l.centerCoord(t.Position)
	if !ok {
		return fmt.Errorf("iland: tree %d: position %v outside light grid", t.ID, t.Position)
	}
	size, offset := stamp.Size(), stamp.Offset()
	for dy := 0; dy < size; dy++ {
		gy := ciy - offset + dy
		for dx := 0; dx < size; dx++ {
			gx := cix - offset + dx
			idx, ok := l.grid.IndexOf(gx, gy)
			if !ok {
				continue // clipped: outside the project extent
			}
			if !l.cellStockable(gx, gy) {
				continue
			}
			v := stamp.At(dx, dy)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			l.grid.SetIndex(idx, l.grid.AtIndex(idx)*v)
		}
	}
	return nil
}

// ReadStamp is light engine pass B for one tree: it sums the LIF cell
// values under the tree's reader-stamp footprint, weighted by the reader
// stamp, normalizes by the total weight actually found in-bounds, and
// stores the result as the tree's light-resource index. It is a pure
// read over the LIF and is safe to call concurrently for every tree.
func (l *LightGrid) ReadStamp(t *Tree) error {
	stamp := t.ReaderStamp()
	if stamp == nil {
		return fmt.Errorf("iland: tree %d: ReadStamp called before ResolveStamps", t.ID)
	}
	cix, ciy, ok := l.centerCoord(t.Position)
	if !ok {
		return fmt.Errorf("iland: tree %d: position %v outside light grid", t.ID, t.Position)
	}
	size, offset := stamp.Size(), stamp.Offset()
	var sum, weight float64
	for dy := 0; dy < size; dy++ {
		gy := ciy - offset + dy
		for dx := 0; dx < size; dx++ {
			gx := cix - offset + dx
			idx, ok := l.grid.IndexOf(gx, gy)
			if !ok {
				continue
			}
			if !l.cellStockable(gx, gy) {
				continue
			}
			w := float64(stamp.At(dx, dy))
			sum += w * float64(l.grid.AtIndex(idx))
			weight += w
		}
	}
	if weight == 0 {
		t.LightIndex = 1
		return nil
	}
	t.LightIndex = sum / weight
	return nil
}

func (l *LightGrid) centerCoord(p Point) (ix, iy int, ok bool) {
	idx, ok := l.grid.IndexAt(p)
	if !ok {
		return 0, 0, false
	}
	ix, iy = l.grid.CoordOf(idx)
	return ix, iy, true
}
