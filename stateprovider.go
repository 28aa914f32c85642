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

// StateProvider supplies the contextual quantities the UnitConverter needs
// in order to resolve context-sensitive conversions (a ratio denominator,
// or a destination unit reachable only through some other quantity).
//
// All methods return a Value in a fixed base unit for that quantity:
//
//	Population               units
//	Volume (current sales)   kg
//	Consumption               tCO2e
//	SubstanceConsumption      tCO2e / kg
//	AmortizedUnitVolume       kg / unit
//	AmortizedUnitConsumption  tCO2e / unit
//	YearsElapsed              years
//	PopulationChange          units
type StateProvider interface {
	Population() Value
	Volume() Value
	Consumption() Value
	SubstanceConsumption() Value
	AmortizedUnitVolume() Value
	AmortizedUnitConsumption() Value
	YearsElapsed() Value
	PopulationChange() Value
}

// overridingStateProvider decorates an inner StateProvider with optional
// per-field overrides, so a recalculation can reason about a hypothetical
// state ("assume volume = X") without mutating the engine's real state.
// Unset fields fall through to the inner provider, the same way a layered
// configuration falls through to its next layer when a key isn't set at
// the current one.
type overridingStateProvider struct {
	inner StateProvider

	population               *Value
	volume                   *Value
	consumption              *Value
	substanceConsumption     *Value
	amortizedUnitVolume      *Value
	amortizedUnitConsumption *Value
	yearsElapsed             *Value
	populationChange         *Value
}

// newOverridingStateProvider returns a decorator over inner with no
// overrides set; call the With* methods to configure overrides before use.
func newOverridingStateProvider(inner StateProvider) *overridingStateProvider {
	return &overridingStateProvider{inner: inner}
}

func (o *overridingStateProvider) WithPopulation(v Value) *overridingStateProvider {
	o.population = &v
	return o
}

func (o *overridingStateProvider) WithVolume(v Value) *overridingStateProvider {
	o.volume = &v
	return o
}

func (o *overridingStateProvider) WithConsumption(v Value) *overridingStateProvider {
	o.consumption = &v
	return o
}

func (o *overridingStateProvider) WithSubstanceConsumption(v Value) *overridingStateProvider {
	o.substanceConsumption = &v
	return o
}

func (o *overridingStateProvider) WithAmortizedUnitVolume(v Value) *overridingStateProvider {
	o.amortizedUnitVolume = &v
	return o
}

func (o *overridingStateProvider) WithAmortizedUnitConsumption(v Value) *overridingStateProvider {
	o.amortizedUnitConsumption = &v
	return o
}

func (o *overridingStateProvider) WithYearsElapsed(v Value) *overridingStateProvider {
	o.yearsElapsed = &v
	return o
}

func (o *overridingStateProvider) WithPopulationChange(v Value) *overridingStateProvider {
	o.populationChange = &v
	return o
}

func (o *overridingStateProvider) Population() Value {
	if o.population != nil {
		return *o.population
	}
	return o.inner.Population()
}

func (o *overridingStateProvider) Volume() Value {
	if o.volume != nil {
		return *o.volume
	}
	return o.inner.Volume()
}

func (o *overridingStateProvider) Consumption() Value {
	if o.consumption != nil {
		return *o.consumption
	}
	return o.inner.Consumption()
}

func (o *overridingStateProvider) SubstanceConsumption() Value {
	if o.substanceConsumption != nil {
		return *o.substanceConsumption
	}
	return o.inner.SubstanceConsumption()
}

func (o *overridingStateProvider) AmortizedUnitVolume() Value {
	if o.amortizedUnitVolume != nil {
		return *o.amortizedUnitVolume
	}
	return o.inner.AmortizedUnitVolume()
}

func (o *overridingStateProvider) AmortizedUnitConsumption() Value {
	if o.amortizedUnitConsumption != nil {
		return *o.amortizedUnitConsumption
	}
	return o.inner.AmortizedUnitConsumption()
}

func (o *overridingStateProvider) YearsElapsed() Value {
	if o.yearsElapsed != nil {
		return *o.yearsElapsed
	}
	return o.inner.YearsElapsed()
}

func (o *overridingStateProvider) PopulationChange() Value {
	if o.populationChange != nil {
		return *o.populationChange
	}
	return o.inner.PopulationChange()
}
