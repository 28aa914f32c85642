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

import "fmt"

// ParseError reports a lexical or grammar failure while translating source
// text into a Program.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IncompatibleProgram reports that a program parsed successfully but uses a
// construct the simplified object model cannot round-trip or execute, such
// as a trial count or a command placed in the wrong stanza class.
type IncompatibleProgram struct {
	Reason string
}

func (e *IncompatibleProgram) Error() string {
	return fmt.Sprintf("incompatible program: %s", e.Reason)
}

// UnknownName reports a reference to an undeclared variable, stream,
// application, or substance.
type UnknownName struct {
	Kind string // "variable", "stream", "application", "substance"
	Name string
}

func (e *UnknownName) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Name)
}

// PlacementError reports a command used in a stanza where its class
// (definition/policy) is not legal.
type PlacementError struct {
	Command string
	Stanza  string
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("command %q is not allowed in %q stanza", e.Command, e.Stanza)
}

// UnitConversionError reports that no conversion rule exists between two
// units.
type UnitConversionError struct {
	From, To string
}

func (e *UnitConversionError) Error() string {
	return fmt.Sprintf("no conversion rule from %q to %q", e.From, e.To)
}

// ArithmeticError reports a NaN written to a stream, or a division by zero
// such as converting units to mass via a zero initial charge.
type ArithmeticError struct {
	Reason string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic error: %s", e.Reason)
}

// RangeViolation reports a negative stream magnitude after conversion, when
// the non-negative guard is enabled.
type RangeViolation struct {
	Stream string
}

func (e *RangeViolation) Error() string {
	return fmt.Sprintf("stream %q would become negative", e.Stream)
}

// LifecycleError reports a violation of the engine's lifecycle contract:
// incrementing past the end year, referencing a substance without an
// enclosing application, and similar.
type LifecycleError struct {
	Reason string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("lifecycle error: %s", e.Reason)
}
