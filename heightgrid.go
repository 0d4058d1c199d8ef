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

// HeightCell is one cell of the height grid: the height of the tallest tree
// whose stem position lies in this cell, and whether the cell lies within the project extent at
// all. Invalid cells gate both writes during light pass A and reads during
// pass B.
type HeightCell struct {
	MaxHeight float64
	Valid     bool
}

// HeightGrid is the 10 m resolution companion to the LIF grid: coarser, and
// carrying per-cell validity instead of a light value.
type HeightGrid struct {
	grid *Grid[HeightCell]
}

// NewHeightGrid allocates a height grid covering the same project extent as
// the LIF grid, at 10 m cell size, with every cell initially valid and at
// zero height. Callers that need to carve out non-stockable area call
// MarkInvalid afterward.
func NewHeightGrid(originX, originY float64, sizeX, sizeY int) *HeightGrid {
	g := NewGrid[HeightCell](originX, originY, 10, sizeX, sizeY)
	g.Fill(HeightCell{Valid: true})
	return &HeightGrid{grid: g}
}

// Grid exposes the backing Grid[HeightCell] for runner-based iteration.
func (h *HeightGrid) Grid() *Grid[HeightCell] { return h.grid }

// MarkInvalid flags a cell as outside the stockable project area.
func (h *HeightGrid) MarkInvalid(ix, iy int) {
	h.grid.Set(ix, iy, HeightCell{Valid: false})
}

// Update records that a tree of the given height occupies cell (ix, iy),
// raising the cell's max height if needed. Invalid cells are left untouched.
func (h *HeightGrid) Update(ix, iy int, treeHeight float64) {
	idx, ok := h.grid.IndexOf(ix, iy)
	if !ok {
		return
	}
	c := h.grid.AtIndex(idx)
	if !c.Valid {
		return
	}
	if treeHeight > c.MaxHeight {
		c.MaxHeight = treeHeight
		h.grid.SetIndex(idx, c)
	}
}

// At returns the cell at grid coordinates (ix, iy).
func (h *HeightGrid) At(ix, iy int) HeightCell { return h.grid.At(ix, iy) }

// IndexAt translates a world point into the cell containing it.
func (h *HeightGrid) IndexAt(p Point) (ix, iy int, ok bool) {
	idx, ok := h.grid.IndexAt(p)
	if !ok {
		return 0, 0, false
	}
	ix, iy = h.grid.CoordOf(idx)
	return ix, iy, true
}
