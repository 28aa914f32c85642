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

package hfcsim

import "math/rand/v2"

// EvalContext is what an Expr needs in order to resolve to a concrete
// Value: the current variable scope, the two reserved names the engine
// serves directly, and a deterministic source of randomness for the
// `sample` expression forms (see SPEC_FULL.md's "Deterministic trial
// indexing" supplement).
type EvalContext interface {
	Variables() *VariableManager
	YearsElapsed() float64
	YearAbsolute() int
	Rand() *rand.Rand
}

// Expr is anything a command operand can be: a literal value, a variable
// reference, or a compiled arithmetic/conditional/sampling expression
// from the hfcsim/lang package. Keeping this as an interface in the core
// package (rather than importing the parser) lets the engine interpret
// command operands without depending on how they were produced.
type Expr interface {
	Eval(ctx EvalContext) (Value, error)
}

// Literal is an Expr that always evaluates to the same Value, used for
// command operands that are a bare number+unit with no arithmetic.
type Literal Value

// Eval implements Expr.
func (l Literal) Eval(EvalContext) (Value, error) {
	return Value(l), nil
}
