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
	"fmt"
	"math"
)

// Point is a metric (world) coordinate.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned metric rectangle, min-inclusive and max-exclusive,
// so adjacent tiles partition the plane without overlap.
type Rect struct {
	Min, Max Point
}

// Contains reports whether p lies within r (lower-left inclusive, as required
// by the boundary-ownership rule for resource units).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Grid is a rectangular, row-major array of T with a metric origin and cell
// size. It is the uniform spatial primitive shared by the light-influence
// grid, the height grid, and any other fine-grained raster used by the
// simulation. Grid is intentionally dependency-free so that it specializes
// cleanly to float32 (the LIF grid), a small struct (the height grid), or a
// pointer type (the stamp container's lookup grid).
type Grid[T any] struct {
	data     []T
	sizeX    int
	sizeY    int
	cellSize float64
	originX  float64
	originY  float64
}

// NewGrid allocates a grid of sizeX by sizeY cells of cellSize world units,
// anchored at (originX, originY).
func NewGrid[T any](originX, originY, cellSize float64, sizeX, sizeY int) *Grid[T] {
	if sizeX <= 0 || sizeY <= 0 {
		panic(fmt.Sprintf("iland: invalid grid dimensions %dx%d", sizeX, sizeY))
	}
	return &Grid[T]{
		data:     make([]T, sizeX*sizeY),
		sizeX:    sizeX,
		sizeY:    sizeY,
		cellSize: cellSize,
		originX:  originX,
		originY:  originY,
	}
}

// SizeX returns the number of cells in the x direction.
func (g *Grid[T]) SizeX() int { return g.sizeX }

// SizeY returns the number of cells in the y direction.
func (g *Grid[T]) SizeY() int { return g.sizeY }

// CellSize returns the metric width/height of one cell.
func (g *Grid[T]) CellSize() float64 { return g.cellSize }

// Count returns the total number of cells (sizeX * sizeY).
func (g *Grid[T]) Count() int { return len(g.data) }

// Rect returns the metric bounding rectangle of the grid.
func (g *Grid[T]) Rect() Rect {
	return Rect{
		Min: Point{g.originX, g.originY},
		Max: Point{g.originX + float64(g.sizeX)*g.cellSize, g.originY + float64(g.sizeY)*g.cellSize},
	}
}

// IndexOf returns the flat index for grid coordinates (ix, iy), and whether
// that index is in range.
func (g *Grid[T]) IndexOf(ix, iy int) (int, bool) {
	if ix < 0 || ix >= g.sizeX || iy < 0 || iy >= g.sizeY {
		return 0, false
	}
	return iy*g.sizeX + ix, true
}

// CoordOf returns the (ix, iy) grid coordinates of a flat index.
func (g *Grid[T]) CoordOf(index int) (ix, iy int) {
	return index % g.sizeX, index / g.sizeX
}

// CellCenter returns the metric coordinate of the center of cell (ix, iy).
func (g *Grid[T]) CellCenter(ix, iy int) Point {
	return Point{
		g.originX + (float64(ix)+0.5)*g.cellSize,
		g.originY + (float64(iy)+0.5)*g.cellSize,
	}
}

// IndexAt returns the flat index of the cell containing world point p, and
// whether p lies within the grid. Points outside the grid never materialize
// an index (the edge policy required by the grid primitive).
func (g *Grid[T]) IndexAt(p Point) (int, bool) {
	if !g.Rect().Contains(p) {
		return 0, false
	}
	ix := int((p.X - g.originX) / g.cellSize)
	iy := int((p.Y - g.originY) / g.cellSize)
	return g.IndexOf(ix, iy)
}

// At returns the value at grid coordinates (ix, iy). It panics if the
// coordinates are out of range; callers that need a clipping read should use
// IndexOf first.
func (g *Grid[T]) At(ix, iy int) T {
	idx, ok := g.IndexOf(ix, iy)
	if !ok {
		panic(fmt.Sprintf("iland: grid index (%d,%d) out of range %dx%d", ix, iy, g.sizeX, g.sizeY))
	}
	return g.data[idx]
}

// Set assigns the value at grid coordinates (ix, iy). It panics if the
// coordinates are out of range.
func (g *Grid[T]) Set(ix, iy int, v T) {
	idx, ok := g.IndexOf(ix, iy)
	if !ok {
		panic(fmt.Sprintf("iland: grid index (%d,%d) out of range %dx%d", ix, iy, g.sizeX, g.sizeY))
	}
	g.data[idx] = v
}

// ValueAt returns the value of the cell containing world point p and
// whether p was within the grid.
func (g *Grid[T]) ValueAt(p Point) (T, bool) {
	idx, ok := g.IndexAt(p)
	if !ok {
		var zero T
		return zero, false
	}
	return g.data[idx], true
}

// AtIndex returns the value at a flat index without bounds checking beyond
// what a slice access gives; used by the linear walker.
func (g *Grid[T]) AtIndex(index int) T { return g.data[index] }

// SetIndex assigns the value at a flat index.
func (g *Grid[T]) SetIndex(index int, v T) { g.data[index] = v }

// Elements returns the flat backing slice, in row-major order. Mutating the
// returned slice mutates the grid.
func (g *Grid[T]) Elements() []T { return g.data }

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns a deep (value) copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	o := &Grid[T]{
		data:     make([]T, len(g.data)),
		sizeX:    g.sizeX,
		sizeY:    g.sizeY,
		cellSize: g.cellSize,
		originX:  g.originX,
		originY:  g.originY,
	}
	copy(o.data, g.data)
	return o
}

// Runner walks every cell whose center lies within a metric rectangle,
// exposing the 8 neighbors of the current cell. ResourceUnit's stocked-area
// walk uses it; the light engine's stamp application/read loops index the
// grid directly and do not. It is allocation-free once constructed: Next
// reuses the same Runner value.
type Runner[T any] struct {
	g       *Grid[T]
	x0, x1  int
	y0, y1  int
	x, y    int
	started bool
}

// NewRunner builds a Runner over the cells of g whose centers lie within
// rect (min-inclusive, max-exclusive), clamped to the grid's extent.
func NewRunner[T any](g *Grid[T], rect Rect) *Runner[T] {
	x0 := int(math.Ceil((rect.Min.X-g.originX)/g.cellSize - 0.5))
	y0 := int(math.Ceil((rect.Min.Y-g.originY)/g.cellSize - 0.5))
	x1 := int(math.Ceil((rect.Max.X-g.originX)/g.cellSize - 0.5))
	y1 := int(math.Ceil((rect.Max.Y-g.originY)/g.cellSize - 0.5))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > g.sizeX {
		x1 = g.sizeX
	}
	if y1 > g.sizeY {
		y1 = g.sizeY
	}
	return &Runner[T]{g: g, x0: x0, x1: x1, y0: y0, y1: y1, x: x0, y: y0}
}

// Next advances to the next cell in the sub-rectangle and reports whether one
// was available.
func (r *Runner[T]) Next() bool {
	if r.x1 <= r.x0 || r.y1 <= r.y0 {
		return false
	}
	if !r.started {
		r.started = true
		return r.x < r.x1 && r.y < r.y1
	}
	r.x++
	if r.x >= r.x1 {
		r.x = r.x0
		r.y++
	}
	return r.y < r.y1
}

// X and Y return the current cell's grid coordinates.
func (r *Runner[T]) X() int { return r.x }
func (r *Runner[T]) Y() int { return r.y }

// Value returns the current cell's value.
func (r *Runner[T]) Value() T { return r.g.At(r.x, r.y) }

// SetValue assigns the current cell's value.
func (r *Runner[T]) SetValue(v T) { r.g.Set(r.x, r.y, v) }

// Neighbors8 returns pointers to the up-to-8 neighbors of the current cell,
// in N, NE, E, SE, S, SW, W, NW order. A nil entry means that neighbor is
// outside the grid.
func (r *Runner[T]) Neighbors8() [8]*T {
	var out [8]*T
	offsets := [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	for i, o := range offsets {
		idx, ok := r.g.IndexOf(r.x+o[0], r.y+o[1])
		if ok {
			out[i] = &r.g.data[idx]
		}
	}
	return out
}
