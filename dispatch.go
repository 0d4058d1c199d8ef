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
	"log"
	"runtime"
	"sync"
)

// RunError is the error the dispatcher returns after a parallel phase: the
// first error any worker raised, tagged with the resource unit (and tree,
// when known) it came from. Later errors from other workers in the same
// phase are logged, not swallowed, but only the first is returned to the
// caller.
type RunError struct {
	RUID   int
	TreeID *int
	Cause  error
}

func (e *RunError) Error() string {
	if e.TreeID != nil {
		return fmt.Sprintf("iland: RU %d tree %d: %v", e.RUID, *e.TreeID, e.Cause)
	}
	return fmt.Sprintf("iland: RU %d: %v", e.RUID, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }

// Checkerboard splits a slice of resource units into the two sets S1 and S2
// required by the light engine's pass A: RUs whose (ix+iy) grid parity is
// even land in S1, odd in S2. Construction is the only place parity is
// consulted; the two lists are first-class data handed to dispatcher calls.
type Checkerboard struct {
	S1, S2 []*ResourceUnit
}

// BuildCheckerboard partitions rus by ResourceUnit.Parity().
func BuildCheckerboard(rus []*ResourceUnit) Checkerboard {
	var cb Checkerboard
	for _, ru := range rus {
		if ru.Parity() == 0 {
			cb.S1 = append(cb.S1, ru)
		} else {
			cb.S2 = append(cb.S2, ru)
		}
	}
	return cb
}

// Cancel is a single atomic-by-convention flag dispatcher calls poll between
// resource units. It is a plain bool guarded by a mutex rather than
// sync/atomic.Bool: the dispatcher only checks it at RU boundaries, never in
// a hot inner loop, so the extra indirection doesn't matter and the mutex
// makes Request/Requested trivially safe to call from any goroutine.
type Cancel struct {
	mu        sync.Mutex
	requested bool
}

// Request flags the simulation for cancellation. Safe to call from any
// goroutine, including from outside the dispatcher.
func (c *Cancel) Request() {
	c.mu.Lock()
	c.requested = true
	c.mu.Unlock()
}

// Requested reports whether cancellation has been requested.
func (c *Cancel) Requested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requested
}

// RunRUs runs fn once per resource unit in rus, fanned across
// runtime.GOMAXPROCS(0) goroutines in a fixed worker-pool shape: each
// worker claims RUs by striding through the slice rather than via a
// channel, and a sync.WaitGroup forms the barrier the caller waits on
// before touching any result. The cancellation flag is polled once per RU
// claimed by a worker; workers past the flag's setting return early
// without running fn on their remaining RUs. The first error any worker
// returns is captured and returned once all workers finish; later errors
// are logged.
func RunRUs(rus []*ResourceUnit, cancel *Cancel, fn func(*ResourceUnit) error) error {
	if len(rus) == 0 {
		return nil
	}
	nprocs := runtime.GOMAXPROCS(0)
	if nprocs > len(rus) {
		nprocs = len(rus)
	}
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(rus); ii += nprocs {
				if cancel != nil && cancel.Requested() {
					return
				}
				ru := rus[ii]
				if err := fn(ru); err != nil {
					wrapped := &RunError{RUID: ru.ID, Cause: err}
					once.Do(func() { firstErr = wrapped })
					log.Printf("%v", wrapped)
				}
			}
		}(pp)
	}
	wg.Wait()
	return firstErr
}

// RunLightPassA runs the light engine's pass A over a Checkerboard,
// applying apply to every resource unit in S1, waiting for all of S1 to
// finish (the barrier that guarantees no S1 footprint can still be writing
// when S2 starts), then doing the same for S2. Within a resource unit trees
// are processed by apply in whatever order the caller iterates them; the
// dispatcher itself makes no ordering promise across resource units, only
// between the two sets.
func RunLightPassA(cb Checkerboard, cancel *Cancel, apply func(*ResourceUnit) error) error {
	if err := RunRUs(cb.S1, cancel, apply); err != nil {
		return err
	}
	return RunRUs(cb.S2, cancel, apply)
}

// Range is a half-open [Begin, End) index range submitted to the grid-range
// splitter.
type Range struct {
	Begin, End int
}

// SplitRange divides [0, n) into n/minSize chunks (at least one, at most
// maxChunks) of equal size; the last chunk may be shorter, and when n is
// below minSize the single chunk holds all n elements. Grounded on the original engine's
// ThreadRunner::runGrid chunking scheme: grid-range work (as opposed to
// per-RU work) doesn't have a natural partition, so the splitter picks a
// chunk size that respects both a floor (workers shouldn't be handed
// slivers too small to amortize goroutine overhead) and a ceiling (no more
// concurrency than the pool can use).
func SplitRange(n, minSize, maxChunks int) []Range {
	if n <= 0 {
		return nil
	}
	if minSize < 1 {
		minSize = 1
	}
	chunks := n / minSize
	if chunks < 1 {
		chunks = 1
	}
	if chunks > maxChunks {
		chunks = maxChunks
	}
	size := (n + chunks - 1) / chunks
	var ranges []Range
	for begin := 0; begin < n; begin += size {
		end := begin + size
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Begin: begin, End: end})
	}
	return ranges
}

// RunRanges runs fn once per Range produced by SplitRange(n, minSize,
// maxChunks), fanned across goroutines with a WaitGroup barrier, mirroring
// RunRUs's error-capture behavior.
func RunRanges(n, minSize, maxChunks int, cancel *Cancel, fn func(Range) error) error {
	ranges := SplitRange(n, minSize, maxChunks)
	if len(ranges) == 0 {
		return nil
	}
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	wg.Add(len(ranges))
	for _, r := range ranges {
		go func(r Range) {
			defer wg.Done()
			if cancel != nil && cancel.Requested() {
				return
			}
			if err := fn(r); err != nil {
				once.Do(func() { firstErr = err })
				log.Printf("iland: range [%d,%d): %v", r.Begin, r.End, err)
			}
		}(r)
	}
	wg.Wait()
	return firstErr
}
