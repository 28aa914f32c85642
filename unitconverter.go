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

// UnitConverter converts Values between units using a StateProvider for
// the context-sensitive quantities (population, current sales volume,
// consumption, and so on) that a bare magnitude+unit pair can't carry on
// its own. See §4.2 of the design notes for the algorithm this
// implements.
type UnitConverter struct {
	sp StateProvider
}

// NewUnitConverter returns a converter backed by sp.
func NewUnitConverter(sp StateProvider) *UnitConverter {
	return &UnitConverter{sp: sp}
}

// WithState returns a converter that uses a different StateProvider,
// without modifying c. Callers needing a transient, hypothetical state for
// one computation build one of these over an overridingStateProvider
// rather than mutating the engine's real state.
func (c *UnitConverter) WithState(sp StateProvider) *UnitConverter {
	return &UnitConverter{sp: sp}
}

// Convert converts source into destUnit, which may be a primitive unit or
// a ratio "A / B" of two primitives.
func (c *UnitConverter) Convert(source Value, destUnit string) (Value, error) {
	// Step 1 / tie-break: identical strings, or the unit/units and
	// year/years aliases, need no conversion at all. The source's own
	// spelling is preserved.
	if sameUnitFamily(source.Unit, destUnit) {
		return Value{Magnitude: source.Magnitude, Unit: source.Unit}, nil
	}

	if numA, denB, ok := SplitRatio(destUnit); ok {
		return c.convertToRatio(source, numA, denB, destUnit)
	}

	normalized, err := cancelDenominator(source, c.sp)
	if err != nil {
		return Value{}, err
	}
	return c.convertPrimitive(normalized, destUnit)
}

func (c *UnitConverter) convertToRatio(source Value, numA, denB, destUnit string) (Value, error) {
	inA, err := c.Convert(source, numA)
	if err != nil {
		return Value{}, err
	}
	total, err := totalFor(denB, c.sp)
	if err != nil {
		return Value{}, err
	}
	if total.Magnitude == 0 {
		return Value{}, &ArithmeticError{Reason: "division by zero converting to " + destUnit}
	}
	return Value{Magnitude: inA.Magnitude / total.Magnitude, Unit: destUnit}, nil
}

// convertPrimitive converts v, whose unit must already be a bare
// primitive (any ratio denominator has been cancelled by the caller),
// into destUnit.
func (c *UnitConverter) convertPrimitive(v Value, destUnit string) (Value, error) {
	switch destUnit {
	case UnitKg, UnitMt:
		kg, err := reduceToKg(v, c.sp)
		if err != nil {
			return Value{}, err
		}
		if destUnit == UnitMt {
			return Value{Magnitude: kg / 1000, Unit: destUnit}, nil
		}
		return Value{Magnitude: kg, Unit: destUnit}, nil
	}
	switch normalizeForm(destUnit) {
	case UnitUnit:
		u, err := reduceToUnits(v, c.sp)
		if err != nil {
			return Value{}, err
		}
		return Value{Magnitude: u, Unit: destUnit}, nil
	case UnitTCO2e:
		t, err := reduceToTCO2e(v, c.sp)
		if err != nil {
			return Value{}, err
		}
		return Value{Magnitude: t, Unit: destUnit}, nil
	case UnitYear:
		y, err := reduceToYears(v, c.sp)
		if err != nil {
			return Value{}, err
		}
		return Value{Magnitude: y, Unit: destUnit}, nil
	case UnitPercent:
		p, err := reduceToPercent(v, c.sp)
		if err != nil {
			return Value{}, err
		}
		return Value{Magnitude: p, Unit: destUnit}, nil
	default:
		return Value{}, &UnitConversionError{From: v.Unit, To: destUnit}
	}
}

// cancelDenominator normalises a ratio Value ("A / B") by multiplying
// through by the state provider's total for B, yielding a plain Value in
// unit A. Non-ratio values pass through unchanged.
func cancelDenominator(v Value, sp StateProvider) (Value, error) {
	num, den, ok := SplitRatio(v.Unit)
	if !ok {
		return v, nil
	}
	total, err := totalFor(den, sp)
	if err != nil {
		return Value{}, err
	}
	return Value{Magnitude: v.Magnitude * total.Magnitude, Unit: num}, nil
}

// totalFor returns the state provider's quantity that corresponds to
// cancelling (or dividing by) the given primitive unit as a ratio
// denominator.
func totalFor(primitiveUnit string, sp StateProvider) (Value, error) {
	switch primitiveUnit {
	case UnitUnit, UnitUnits:
		return sp.Population(), nil
	case UnitYear, UnitYears:
		return sp.YearsElapsed(), nil
	case UnitTCO2e:
		return sp.Consumption(), nil
	case UnitKg:
		return sp.Volume(), nil
	case UnitMt:
		v := sp.Volume()
		return Value{Magnitude: v.Magnitude / 1000, Unit: UnitMt}, nil
	default:
		return Value{}, &UnitConversionError{From: "(ratio denominator)", To: primitiveUnit}
	}
}

func reduceToKg(v Value, sp StateProvider) (float64, error) {
	switch v.Unit {
	case UnitKg:
		return v.Magnitude, nil
	case UnitMt:
		return v.Magnitude * 1000, nil
	case UnitTCO2e:
		sc := sp.SubstanceConsumption()
		if sc.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "substance consumption intensity is zero"}
		}
		return v.Magnitude / sc.Magnitude, nil
	case UnitUnit, UnitUnits:
		auv := sp.AmortizedUnitVolume()
		return v.Magnitude * auv.Magnitude, nil
	case UnitPercent:
		vol := sp.Volume()
		return v.Magnitude / 100 * vol.Magnitude, nil
	default:
		return 0, &UnitConversionError{From: v.Unit, To: UnitKg}
	}
}

func reduceToUnits(v Value, sp StateProvider) (float64, error) {
	switch v.Unit {
	case UnitKg, UnitMt:
		kg, err := reduceToKg(v, sp)
		if err != nil {
			return 0, err
		}
		auv := sp.AmortizedUnitVolume()
		if auv.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "initial charge (amortized unit volume) is zero"}
		}
		return kg / auv.Magnitude, nil
	case UnitTCO2e:
		auc := sp.AmortizedUnitConsumption()
		if auc.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "amortized unit consumption is zero"}
		}
		return v.Magnitude / auc.Magnitude, nil
	case UnitPercent:
		pop := sp.Population()
		return v.Magnitude / 100 * pop.Magnitude, nil
	case UnitUnit, UnitUnits:
		return v.Magnitude, nil
	default:
		return 0, &UnitConversionError{From: v.Unit, To: UnitUnit}
	}
}

// reduceToTCO2e resolves Open Question §9(b): converting units to tCO2e is
// implemented as a mass-proxy composition (units -> kg via
// amortizedUnitVolume, then kg -> tCO2e via substanceConsumption) rather
// than multiplying by amortizedUnitConsumption directly.
func reduceToTCO2e(v Value, sp StateProvider) (float64, error) {
	switch v.Unit {
	case UnitKg, UnitMt:
		kg, err := reduceToKg(v, sp)
		if err != nil {
			return 0, err
		}
		sc := sp.SubstanceConsumption()
		return kg * sc.Magnitude, nil
	case UnitUnit, UnitUnits:
		auv := sp.AmortizedUnitVolume()
		kg := v.Magnitude * auv.Magnitude
		sc := sp.SubstanceConsumption()
		return kg * sc.Magnitude, nil
	case UnitPercent:
		cons := sp.Consumption()
		return v.Magnitude / 100 * cons.Magnitude, nil
	case UnitTCO2e:
		return v.Magnitude, nil
	default:
		return 0, &UnitConversionError{From: v.Unit, To: UnitTCO2e}
	}
}

func reduceToYears(v Value, sp StateProvider) (float64, error) {
	switch v.Unit {
	case UnitTCO2e:
		cons := sp.Consumption()
		if cons.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "consumption is zero"}
		}
		return v.Magnitude / cons.Magnitude, nil
	case UnitKg, UnitMt:
		kg, err := reduceToKg(v, sp)
		if err != nil {
			return 0, err
		}
		vol := sp.Volume()
		if vol.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "volume is zero"}
		}
		return kg / vol.Magnitude, nil
	case UnitUnit, UnitUnits:
		pc := sp.PopulationChange()
		if pc.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "population change is zero"}
		}
		return v.Magnitude / pc.Magnitude, nil
	case UnitPercent:
		ye := sp.YearsElapsed()
		return v.Magnitude / 100 * ye.Magnitude, nil
	case UnitYear, UnitYears:
		return v.Magnitude, nil
	default:
		return 0, &UnitConversionError{From: v.Unit, To: UnitYear}
	}
}

func reduceToPercent(v Value, sp StateProvider) (float64, error) {
	var total Value
	switch v.Unit {
	case UnitTCO2e:
		total = sp.Consumption()
	case UnitKg, UnitMt:
		kg, err := reduceToKg(v, sp)
		if err != nil {
			return 0, err
		}
		total = sp.Volume()
		if total.Magnitude == 0 {
			return 0, &ArithmeticError{Reason: "volume is zero"}
		}
		return kg / total.Magnitude * 100, nil
	case UnitUnit, UnitUnits:
		total = sp.Population()
	case UnitYear, UnitYears:
		total = sp.YearsElapsed()
	default:
		return 0, &UnitConversionError{From: v.Unit, To: UnitPercent}
	}
	if total.Magnitude == 0 {
		return 0, &ArithmeticError{Reason: "division by zero converting to %"}
	}
	return v.Magnitude / total.Magnitude * 100, nil
}
