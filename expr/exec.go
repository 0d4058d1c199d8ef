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

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Knetic/govaluate"
)

// builtinFunctions are the named functions available to every parsed
// expression beyond govaluate's native operators: a small default function
// table registered up front, with room for callers to extend it.
var builtinFunctions = map[string]govaluate.ExpressionFunction{
	"sin":  unaryMath(math.Sin),
	"cos":  unaryMath(math.Cos),
	"tan":  unaryMath(math.Tan),
	"exp":  unaryMath(math.Exp),
	"ln":   unaryMath(math.Log),
	"sqrt": unaryMath(math.Sqrt),

	"min": func(args ...interface{}) (interface{}, error) {
		return minmax(args, false)
	},
	"max": func(args ...interface{}) (interface{}, error) {
		return minmax(args, true)
	},
	"mod": func(args ...interface{}) (interface{}, error) {
		a, b, err := twoFloats("mod", args)
		if err != nil {
			return nil, err
		}
		return math.Mod(a, b), nil
	},
	"if": func(args ...interface{}) (interface{}, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("if: got %d arguments, need 3", len(args))
		}
		cond, ok := args[0].(bool)
		if !ok {
			n, ok := args[0].(float64)
			if !ok {
				return nil, fmt.Errorf("if: first argument must be boolean or numeric")
			}
			cond = n != 0
		}
		if cond {
			return args[1], nil
		}
		return args[2], nil
	},
	"rnd": func(args ...interface{}) (interface{}, error) {
		a, b, err := twoFloats("rnd", args)
		if err != nil {
			return nil, err
		}
		return a + rand.Float64()*(b-a), nil
	},
	"sigmoid": sigmoidFunc,
	"polygon": polygonFunc,
}

func unaryMath(f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("got %d arguments, need 1", len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("argument must be numeric")
		}
		return f(x), nil
	}
}

func minmax(args []interface{}, wantMax bool) (float64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("min/max: need at least 1 argument")
	}
	best, ok := args[0].(float64)
	if !ok {
		return 0, fmt.Errorf("min/max: arguments must be numeric")
	}
	for _, a := range args[1:] {
		v, ok := a.(float64)
		if !ok {
			return 0, fmt.Errorf("min/max: arguments must be numeric")
		}
		if (wantMax && v > best) || (!wantMax && v < best) {
			best = v
		}
	}
	return best, nil
}

func twoFloats(name string, args []interface{}) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s: got %d arguments, need 2", name, len(args))
	}
	a, ok := args[0].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("%s: arguments must be numeric", name)
	}
	b, ok := args[1].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("%s: arguments must be numeric", name)
	}
	return a, b, nil
}

// sigmoidFunc implements sigmoid(x, type, p1, p2): x scaled into [0,1] by p1
// (inflection) and p2 (steepness), with type selecting among the few curve
// shapes iLand uses for aging and response functions. type 0 is logistic,
// type 1 is its complement (descending), matching the two curve families
// the allometric and response expressions in the source data need.
func sigmoidFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("sigmoid: got %d arguments, need 4", len(args))
	}
	x, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("sigmoid: x must be numeric")
	}
	kind, ok := args[1].(float64)
	if !ok {
		return nil, fmt.Errorf("sigmoid: type must be numeric")
	}
	p1, ok := args[2].(float64)
	if !ok {
		return nil, fmt.Errorf("sigmoid: p1 must be numeric")
	}
	p2, ok := args[3].(float64)
	if !ok {
		return nil, fmt.Errorf("sigmoid: p2 must be numeric")
	}
	v := 1 / (1 + math.Exp(-(x-p1)/p2))
	if int(kind) == 1 {
		return 1 - v, nil
	}
	return v, nil
}

// polygonFunc implements polygon(x, x1,y1, ..., xn,yn): piecewise-linear
// interpolation over the (xi,yi) control points, clamped to the first/last y
// outside the domain.
func polygonFunc(args ...interface{}) (interface{}, error) {
	if len(args) < 5 || len(args)%2 != 1 {
		return nil, fmt.Errorf("polygon: need x plus an even number of point arguments >= 4")
	}
	x, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("polygon: x must be numeric")
	}
	pts := args[1:]
	n := len(pts) / 2
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xv, ok := pts[2*i].(float64)
		if !ok {
			return nil, fmt.Errorf("polygon: control points must be numeric")
		}
		yv, ok := pts[2*i+1].(float64)
		if !ok {
			return nil, fmt.Errorf("polygon: control points must be numeric")
		}
		xs[i] = xv
		ys[i] = yv
	}
	if x <= xs[0] {
		return ys[0], nil
	}
	if x >= xs[n-1] {
		return ys[n-1], nil
	}
	for i := 0; i < n-1; i++ {
		if x >= xs[i] && x <= xs[i+1] {
			t := (x - xs[i]) / (xs[i+1] - xs[i])
			return ys[i] + t*(ys[i+1]-ys[i]), nil
		}
	}
	return ys[n-1], nil
}
