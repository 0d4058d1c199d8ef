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

// Package expr implements the small compiled expression language used
// throughout the core for allometries, mortality curves, response functions,
// and user filters. It wraps github.com/Knetic/govaluate, which already
// compiles an expression into the postfix program this kind of evaluator
// needs and re-executes it against fresh variable bindings on every call.
package expr

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// Expression is a parsed, reusable arithmetic/logical formula. Parsing is the
// only step that can fail on malformed syntax; Eval only fails if a strict
// Expression is evaluated with missing variables or a registered function
// rejects its arguments.
type Expression struct {
	src    string
	expr   *govaluate.EvaluableExpression
	vars   []string
	strict bool
	linear *lookupTable
	incsum float64
}

// Mode controls how unknown variables are treated at Eval time.
type Mode int

const (
	// Strict rejects evaluation against a variable set missing any name the
	// expression references.
	Strict Mode = iota
	// NonStrict treats a missing variable as zero.
	NonStrict
)

// Parse compiles src into an Expression using the builtin function table
// (builtinFunctions) plus any caller-supplied extras, which take precedence over
// same-named builtins.
func Parse(src string, mode Mode, extra map[string]govaluate.ExpressionFunction) (*Expression, error) {
	e := &Expression{src: src, strict: mode == Strict}

	fns := make(map[string]govaluate.ExpressionFunction, len(builtinFunctions)+len(extra)+1)
	for k, v := range builtinFunctions {
		fns[k] = v
	}
	fns["incsum"] = func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("incsum: got %d arguments, need 1", len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("incsum: argument must be numeric")
		}
		e.incsum += x
		return e.incsum, nil
	}
	for k, v := range extra {
		fns[k] = v
	}

	ge, err := govaluate.NewEvaluableExpressionWithFunctions(src, fns)
	if err != nil {
		return nil, fmt.Errorf("iland/expr: parsing %q: %w", src, err)
	}
	e.expr = ge
	e.vars = ge.Vars()
	return e, nil
}

// ResetIncSum zeroes this expression's running incsum() accumulator. Each
// Expression instance owns an independent accumulator even when two
// instances share the same source text.
func (e *Expression) ResetIncSum() { e.incsum = 0 }

// MustParse is Parse but panics on error; useful for fixed, known-good
// expressions baked into species parameter tables.
func MustParse(src string) *Expression {
	e, err := Parse(src, NonStrict, nil)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the original expression source.
func (e *Expression) String() string { return e.src }

// Vars returns the variable names referenced by the expression.
func (e *Expression) Vars() []string { return e.vars }

// Eval evaluates the expression against vars. If a Linearize table has been
// built and the lone free variable falls inside its sampled domain, the
// interpolated value is returned instead of a full re-evaluation.
func (e *Expression) Eval(vars map[string]float64) (float64, error) {
	if e.linear != nil {
		if v, ok := e.linear.tryEval(vars); ok {
			return v, nil
		}
	}
	params := make(map[string]interface{}, len(e.vars))
	for _, name := range e.vars {
		v, ok := vars[name]
		if !ok {
			if e.strict {
				return 0, fmt.Errorf("iland/expr: %q: unbound variable %q in strict mode", e.src, name)
			}
			v = 0 // non-strict: an unregistered variable reads as zero
		}
		params[name] = v
	}
	result, err := e.expr.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("iland/expr: evaluating %q: %w", e.src, err)
	}
	switch v := result.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("iland/expr: %q produced non-numeric result %v", e.src, result)
	}
}

// Eval1 is a convenience for single-variable expressions, the common case for
// allometries keyed on dbh alone.
func (e *Expression) Eval1(name string, x float64) (float64, error) {
	return e.Eval(map[string]float64{name: x})
}
