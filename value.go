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

import (
	"fmt"
	"strings"
)

// Primitive unit names recognized throughout the core. A unit string is
// either one of these, or a ratio "A / B" of two primitives.
const (
	UnitKg     = "kg"
	UnitMt     = "mt"
	UnitTCO2e  = "tCO2e"
	UnitUnit   = "unit"
	UnitUnits  = "units"
	UnitKwh    = "kwh"
	UnitYear   = "year"
	UnitYears  = "years"
	UnitPercent = "%"
)

var primitiveUnits = map[string]bool{
	UnitKg: true, UnitMt: true, UnitTCO2e: true, UnitUnit: true, UnitUnits: true,
	UnitKwh: true, UnitYear: true, UnitYears: true, UnitPercent: true,
}

// IsPrimitiveUnit reports whether u is one of the recognized primitive unit
// strings (not a ratio).
func IsPrimitiveUnit(u string) bool {
	return primitiveUnits[u]
}

// IsRatioUnit reports whether u has the form "A / B".
func IsRatioUnit(u string) bool {
	_, _, ok := SplitRatio(u)
	return ok
}

// SplitRatio splits a ratio unit string "A / B" into its numerator and
// denominator. ok is false if u is not a well-formed ratio of two
// primitives.
func SplitRatio(u string) (numerator, denominator string, ok bool) {
	idx := strings.Index(u, "/")
	if idx < 0 {
		return "", "", false
	}
	num := strings.TrimSpace(u[:idx])
	den := strings.TrimSpace(u[idx+1:])
	if num == "" || den == "" {
		return "", "", false
	}
	return num, den, true
}

// normalizeForm collapses the "unit"/"units" and "year"/"years" aliases for
// the purposes of equality and lookup while leaving all other unit strings
// untouched.
func normalizeForm(u string) string {
	switch u {
	case UnitUnits:
		return UnitUnit
	case UnitYears:
		return UnitYear
	default:
		return u
	}
}

// sameUnitFamily reports whether a and b refer to the same primitive,
// treating "unit" and "units" as identical.
func sameUnitFamily(a, b string) bool {
	return normalizeForm(a) == normalizeForm(b)
}

// Value is an immutable pair of a numeric magnitude and a unit string.
// Equality is structural: the same magnitude and the same unit string
// (modulo the unit/units alias).
type Value struct {
	Magnitude float64
	Unit      string
}

// NewValue constructs a Value.
func NewValue(magnitude float64, unit string) Value {
	return Value{Magnitude: magnitude, Unit: unit}
}

// Equal reports whether v and o have the same magnitude and unit, treating
// "unit" and "units" as the same unit.
func (v Value) Equal(o Value) bool {
	return v.Magnitude == o.Magnitude && sameUnitFamily(v.Unit, o.Unit)
}

// String renders the value the way it is serialized in a CSV cell:
// "<magnitude> <unit>".
func (v Value) String() string {
	return fmt.Sprintf("%v %s", v.Magnitude, v.Unit)
}

// WithMagnitude returns a copy of v with a different magnitude.
func (v Value) WithMagnitude(m float64) Value {
	return Value{Magnitude: m, Unit: v.Unit}
}
