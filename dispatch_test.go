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
	"sync"
	"sync/atomic"
	"testing"
)

func testRUGrid(nx, ny int) []*ResourceUnit {
	var rus []*ResourceUnit
	id := 0
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			bounds := Rect{Min: Point{float64(ix * 100), float64(iy * 100)}, Max: Point{float64((ix + 1) * 100), float64((iy + 1) * 100)}}
			rus = append(rus, NewResourceUnit(id, bounds, ix, iy))
			id++
		}
	}
	return rus
}

func TestBuildCheckerboardPartitionsByParity(t *testing.T) {
	rus := testRUGrid(4, 4)
	cb := BuildCheckerboard(rus)
	if len(cb.S1)+len(cb.S2) != len(rus) {
		t.Fatalf("checkerboard lost RUs: %d + %d != %d", len(cb.S1), len(cb.S2), len(rus))
	}
	for _, ru := range cb.S1 {
		if ru.Parity() != 0 {
			t.Fatalf("RU %d in S1 has parity %d", ru.ID, ru.Parity())
		}
	}
	for _, ru := range cb.S2 {
		if ru.Parity() != 1 {
			t.Fatalf("RU %d in S2 has parity %d", ru.ID, ru.Parity())
		}
	}
}

func TestRunRUsVisitsEveryRU(t *testing.T) {
	rus := testRUGrid(5, 5)
	var mu sync.Mutex
	seen := make(map[int]bool)
	err := RunRUs(rus, nil, func(ru *ResourceUnit) error {
		mu.Lock()
		seen[ru.ID] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("RunRUs: %v", err)
	}
	if len(seen) != len(rus) {
		t.Fatalf("visited %d RUs, want %d", len(seen), len(rus))
	}
}

func TestRunRUsCapturesFirstError(t *testing.T) {
	rus := testRUGrid(3, 3)
	err := RunRUs(rus, nil, func(ru *ResourceUnit) error {
		return fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatal("expected a captured error")
	}
	var re *RunError
	if !asRunError(err, &re) {
		t.Fatalf("error %v is not a *RunError", err)
	}
}

func asRunError(err error, out **RunError) bool {
	re, ok := err.(*RunError)
	if ok {
		*out = re
	}
	return ok
}

func TestRunRUsHonorsCancel(t *testing.T) {
	rus := testRUGrid(50, 50)
	var cancel Cancel
	cancel.Request()
	var calls int64
	err := RunRUs(rus, &cancel, func(ru *ResourceUnit) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("RunRUs: %v", err)
	}
	if calls == int64(len(rus)) {
		t.Fatal("expected cancellation to skip at least some RUs")
	}
}

func TestRunLightPassABarriersBetweenSets(t *testing.T) {
	rus := testRUGrid(4, 4)
	cb := BuildCheckerboard(rus)
	var s1Done, s2Started int32
	err := RunLightPassA(cb, nil, func(ru *ResourceUnit) error {
		if ru.Parity() == 0 {
			atomic.AddInt32(&s1Done, 1)
		} else {
			if atomic.LoadInt32(&s1Done) != int32(len(cb.S1)) {
				atomic.AddInt32(&s2Started, 1)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunLightPassA: %v", err)
	}
	if s2Started != 0 {
		t.Fatalf("%d S2 tasks started before all S1 tasks finished", s2Started)
	}
}

func TestSplitRangeRespectsMinSizeAndMaxChunks(t *testing.T) {
	ranges := SplitRange(100, 10, 4)
	if len(ranges) > 4 {
		t.Fatalf("got %d chunks, want <= 4", len(ranges))
	}
	var total int
	for _, r := range ranges {
		if r.End <= r.Begin {
			t.Fatalf("empty or inverted range %v", r)
		}
		total += r.End - r.Begin
	}
	if total != 100 {
		t.Fatalf("ranges cover %d elements, want 100", total)
	}
}

func TestSplitRangeSmallN(t *testing.T) {
	ranges := SplitRange(3, 10, 8)
	total := 0
	for _, r := range ranges {
		total += r.End - r.Begin
	}
	if total != 3 {
		t.Fatalf("ranges cover %d elements, want 3", total)
	}
}

func TestRunRangesVisitsEveryElement(t *testing.T) {
	var mu sync.Mutex
	covered := make([]bool, 97)
	err := RunRanges(97, 5, 6, nil, func(r Range) error {
		mu.Lock()
		for i := r.Begin; i < r.End; i++ {
			covered[i] = true
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("RunRanges: %v", err)
	}
	for i, ok := range covered {
		if !ok {
			t.Fatalf("index %d not covered", i)
		}
	}
}
