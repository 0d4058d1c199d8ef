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

// VariableSpace is an external name-to-slot table an Expression can be bound
// against instead of building a fresh map on every Eval call. Callers
// register the variables they intend to update repeatedly (e.g. a tree's
// dbh during a growth loop) and receive a stable pointer to the slot.
type VariableSpace struct {
	index map[string]int
	slots []float64
}

// NewVariableSpace returns an empty variable space.
func NewVariableSpace() *VariableSpace {
	return &VariableSpace{index: make(map[string]int)}
}

// Register returns a pointer to the slot for name, creating it on first use.
// The pointer remains valid for the lifetime of the VariableSpace; repeated
// calls with the same name return the same slot.
func (vs *VariableSpace) Register(name string) *float64 {
	if i, ok := vs.index[name]; ok {
		return &vs.slots[i]
	}
	vs.slots = append(vs.slots, 0)
	vs.index[name] = len(vs.slots) - 1
	return &vs.slots[len(vs.slots)-1]
}

// Snapshot returns the current bindings as a map suitable for Expression.Eval.
func (vs *VariableSpace) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(vs.index))
	for name, i := range vs.index {
		out[name] = vs.slots[i]
	}
	return out
}

// EvalIn evaluates e against the current contents of vs, failing in strict
// mode if e references a name vs has never registered.
func (e *Expression) EvalIn(vs *VariableSpace) (float64, error) {
	if e.strict {
		for _, name := range e.vars {
			if _, ok := vs.index[name]; !ok {
				return 0, fmt.Errorf("iland/expr: %q: unbound variable %q in strict mode", e.src, name)
			}
		}
	}
	return e.Eval(vs.Snapshot())
}
