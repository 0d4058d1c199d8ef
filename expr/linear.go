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

package expr

import "fmt"

// lookupTable is the post-parse linearisation of an Expression: N equally
// spaced samples over [low, high] of one free variable, connected by linear
// interpolation. It is used heavily for HD curves and aging functions, which
// are expensive to evaluate exactly but tolerate small interpolation error.
type lookupTable struct {
	varName   string
	low, high float64
	step      float64
	values    []float64
}

// Linearize samples e at steps+1 equally spaced points of varName over
// [low, high] and replaces future single-variable Eval calls within that
// domain with linear interpolation. Values outside the domain still fall
// back to a full expression evaluation, so Linearize never changes the
// expression's semantics, only its cost.
func (e *Expression) Linearize(varName string, low, high float64, steps int) error {
	if steps < 1 {
		return fmt.Errorf("iland/expr: linearize %q: steps must be >= 1", e.src)
	}
	if high <= low {
		return fmt.Errorf("iland/expr: linearize %q: high must be > low", e.src)
	}
	values := make([]float64, steps+1)
	step := (high - low) / float64(steps)
	for i := 0; i <= steps; i++ {
		x := low + float64(i)*step
		v, err := e.Eval1(varName, x)
		if err != nil {
			return fmt.Errorf("iland/expr: linearize %q at %s=%v: %w", e.src, varName, x, err)
		}
		values[i] = v
	}
	e.linear = &lookupTable{varName: varName, low: low, high: high, step: step, values: values}
	return nil
}

// tryEval returns the interpolated value for vars if a linearisation is
// active, vars binds only the linearised variable, and that value falls
// within the sampled domain.
func (t *lookupTable) tryEval(vars map[string]float64) (float64, bool) {
	if len(vars) != 1 {
		return 0, false
	}
	x, ok := vars[t.varName]
	if !ok || x < t.low || x > t.high {
		return 0, false
	}
	pos := (x - t.low) / t.step
	i := int(pos)
	if i >= len(t.values)-1 {
		return t.values[len(t.values)-1], true
	}
	frac := pos - float64(i)
	return t.values[i] + frac*(t.values[i+1]-t.values[i]), true
}
