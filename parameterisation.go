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

// StreamParameterisation holds the per-(application, substance)
// coefficients that drive recalculation: intensities, initial charges,
// and rates. All default to zero except Displacement, which defaults to
// 100%, matching the "fully displace virgin sales" default recycling
// policy.
type StreamParameterisation struct {
	GHGIntensity    Value // tCO2e / kg
	EnergyIntensity Value // kwh / kg

	// InitialCharge is keyed by sales substream ("domestic", "import"),
	// each in kg / unit.
	InitialCharge map[string]Value

	RechargePopulation Value // %
	RechargeIntensity  Value // kg / unit
	RecoveryRate       Value // %
	YieldRate          Value // %
	RetirementRate     Value // %
	DisplacementRate   Value // %
}

// DefaultParameterisation returns a StreamParameterisation with every
// field at its documented default (zero, except Displacement which
// defaults to 100%).
func DefaultParameterisation() StreamParameterisation {
	return StreamParameterisation{
		GHGIntensity:       NewValue(0, UnitTCO2e+" / "+UnitKg),
		EnergyIntensity:    NewValue(0, UnitKwh+" / "+UnitKg),
		InitialCharge: map[string]Value{
			SubstreamDomestic: NewValue(0, UnitKg+" / "+UnitUnit),
			SubstreamImport:   NewValue(0, UnitKg+" / "+UnitUnit),
		},
		RechargePopulation: NewValue(0, UnitPercent),
		RechargeIntensity:  NewValue(0, UnitKg+" / "+UnitUnit),
		RecoveryRate:       NewValue(0, UnitPercent),
		YieldRate:          NewValue(0, UnitPercent),
		RetirementRate:     NewValue(0, UnitPercent),
		DisplacementRate:   NewValue(100, UnitPercent),
	}
}

// Clone returns a deep-enough copy of p (the InitialCharge map is copied
// so mutating the clone never mutates p).
func (p StreamParameterisation) Clone() StreamParameterisation {
	out := p
	out.InitialCharge = make(map[string]Value, len(p.InitialCharge))
	for k, v := range p.InitialCharge {
		out.InitialCharge[k] = v
	}
	return out
}

// Sales substream names, also used as keys into StreamParameterisation's
// InitialCharge map.
const (
	SubstreamDomestic = "domestic"
	SubstreamImport   = "import"
)
