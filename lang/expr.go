/*
This file is part of hfcsim.

hfcsim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

hfcsim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with hfcsim.  If not, see <http://www.gnu.org/licenses/>.
*/

package lang

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/hfcsim"
)

// compiledExpr adapts a govaluate.EvaluableExpression, plus the statically
// parsed destination unit, to hfcsim.Expr. Magnitudes are computed by
// govaluate (arithmetic, comparisons, the `if/else/endif` ternary, and the
// `sample`/`limit` functions registered in functions()); the unit is fixed
// at parse time, mirroring how the teacher's Outputter in io.go compiles a
// govaluate.EvaluableExpression once per output variable and re-evaluates
// it against fresh parameters every grid cell.
type compiledExpr struct {
	expr *govaluate.EvaluableExpression
	unit string
}

// compileExpr parses src (the magnitude-only portion of an operand, with
// `if`/`else`/`endif` already rewritten to `?`/`:` by the parser's
// collectExpressionSource)
// into a compiledExpr targeting unit.
func compileExpr(src, unit string) (*compiledExpr, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, functions())
	if err != nil {
		return nil, fmt.Errorf("lang: %v", err)
	}
	return &compiledExpr{expr: expr, unit: unit}, nil
}

// Eval implements hfcsim.Expr.
func (c *compiledExpr) Eval(ctx hfcsim.EvalContext) (hfcsim.Value, error) {
	params := map[string]interface{}{
		hfcsim.ReservedYearsElapsed: ctx.YearsElapsed(),
		hfcsim.ReservedYearAbsolute: float64(ctx.YearAbsolute()),
	}
	for _, name := range c.expr.Vars() {
		if name == hfcsim.ReservedYearsElapsed || name == hfcsim.ReservedYearAbsolute {
			continue
		}
		v, err := ctx.Variables().Get(name)
		if err != nil {
			return hfcsim.Value{}, err
		}
		params[name] = v.Magnitude
	}

	// The sample* functions need the EvalContext's PRNG; stash it in a
	// package-level slot for the duration of this Eval call rather than
	// threading it through govaluate's parameter map, since govaluate
	// functions only receive ...interface{} arguments.
	prevRand := currentRand
	currentRand = ctx.Rand()
	defer func() { currentRand = prevRand }()

	result, err := c.expr.Evaluate(params)
	if err != nil {
		return hfcsim.Value{}, &hfcsim.ArithmeticError{Reason: err.Error()}
	}
	mag, ok := result.(float64)
	if !ok {
		if b, ok2 := result.(bool); ok2 {
			if b {
				mag = 1
			} else {
				mag = 0
			}
		} else {
			return hfcsim.Value{}, &hfcsim.ArithmeticError{Reason: "expression did not evaluate to a number"}
		}
	}
	if math.IsNaN(mag) || math.IsInf(mag, 0) {
		return hfcsim.Value{}, &hfcsim.ArithmeticError{Reason: "expression evaluated to NaN or Inf"}
	}
	return hfcsim.NewValue(mag, c.unit), nil
}

// currentRand is the PRNG the in-flight Eval call should use for sample*
// functions. Single-threaded by design (§5: the engine never evaluates two
// expressions concurrently), so a package-level slot is sufficient and
// avoids plumbing *rand.Rand through govaluate's untyped function args.
var currentRand interface {
	Float64() float64
	NormFloat64() float64
}

// functions returns the custom govaluate functions the language exposes
// beyond arithmetic/comparison, grounded on the teacher's
// NewOutputter default function map in io.go (exp/log/log10/sum), adapted to
// this language's own vocabulary (sample normally/uniformly, limit).
func functions() map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"exp": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("exp expects 1 argument, got %d", len(args))
			}
			return math.Exp(args[0].(float64)), nil
		},
		"log": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("log expects 1 argument, got %d", len(args))
			}
			return math.Log(args[0].(float64)), nil
		},
		"sampleNormally": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("sampleNormally expects (mean, std)")
			}
			if currentRand == nil {
				return nil, fmt.Errorf("no random source available")
			}
			mean, std := args[0].(float64), args[1].(float64)
			return mean + std*currentRand.NormFloat64(), nil
		},
		"sampleUniformly": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("sampleUniformly expects (low, high)")
			}
			if currentRand == nil {
				return nil, fmt.Errorf("no random source available")
			}
			low, high := args[0].(float64), args[1].(float64)
			return low + currentRand.Float64()*(high-low), nil
		},
		"limit": func(args ...interface{}) (interface{}, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("limit expects (operand, lo, hi)")
			}
			v, lo, hi := args[0].(float64), args[1].(float64), args[2].(float64)
			if v < lo {
				return lo, nil
			}
			if v > hi {
				return hi, nil
			}
			return v, nil
		},
	}
}
