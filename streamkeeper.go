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
	"math"
)

// Stream names. "sales" is virtual: it is never stored directly, but
// reads as domestic+import and writes split proportionally between them.
const (
	StreamDomestic          = "domestic"
	StreamImport            = "import"
	StreamSales             = "sales"
	StreamRecycle           = "recycle"
	StreamConsumption       = "consumption"
	StreamEquipment         = "equipment"
	StreamPriorEquipment    = "priorEquipment"
	StreamNewEquipment      = "newEquipment"
	StreamRechargeEmissions = "rechargeEmissions"
	StreamEOLEmissions      = "eolEmissions"
	StreamEnergyConsumption = "energyConsumption"
)

// baseUnits gives the fixed base unit each stored stream is kept in.
var baseUnits = map[string]string{
	StreamDomestic:          UnitKg,
	StreamImport:            UnitKg,
	StreamRecycle:           UnitKg,
	StreamConsumption:       UnitTCO2e,
	StreamEquipment:         UnitUnit,
	StreamPriorEquipment:    UnitUnit,
	StreamNewEquipment:      UnitUnit,
	StreamRechargeEmissions: UnitTCO2e,
	StreamEOLEmissions:      UnitTCO2e,
	StreamEnergyConsumption: UnitKwh,
}

// streamBaseUnit resolves the fixed base unit a stream is kept in,
// including the virtual "sales" stream, which has no entry of its own in
// baseUnits because it is never stored directly (see setSales/GetStream)
// but is still a valid target for ChangeStream/Cap/Floor/Replace.
func streamBaseUnit(stream string) string {
	if stream == StreamSales {
		return UnitKg
	}
	return baseUnits[stream]
}

// substanceKey identifies a per-(application, substance) record.
type substanceKey struct {
	application string
	substance   string
}

type substanceEntry struct {
	streams map[string]Value
	param   StreamParameterisation
}

func newSubstanceEntry() *substanceEntry {
	e := &substanceEntry{streams: map[string]Value{}, param: DefaultParameterisation()}
	for name, unit := range baseUnits {
		e.streams[name] = NewValue(0, unit)
	}
	return e
}

// StreamKeeper holds every per-(application, substance) stream and
// parameterisation in the program. Substance entries are created on
// first reference (ensureSubstance) and reset at each year boundary
// (incrementYear).
type StreamKeeper struct {
	entries map[substanceKey]*substanceEntry
	// order preserves first-ensured order so result emission is
	// deterministic regardless of Go's map iteration order.
	order []substanceKey

	CheckNaN              bool
	CheckNonNegative      bool
}

// NewStreamKeeper returns an empty keeper with both safety guards
// enabled, matching the §6 configuration defaults.
func NewStreamKeeper() *StreamKeeper {
	return &StreamKeeper{
		entries:          map[substanceKey]*substanceEntry{},
		CheckNaN:         true,
		CheckNonNegative: true,
	}
}

// EnsureSubstance idempotently initializes app/sub's streams (all zero, in
// their base units) and default parameterisation if this is the first
// reference to it.
func (sk *StreamKeeper) EnsureSubstance(app, sub string) {
	k := substanceKey{app, sub}
	if _, ok := sk.entries[k]; ok {
		return
	}
	sk.entries[k] = newSubstanceEntry()
	sk.order = append(sk.order, k)
}

// HasSubstance reports whether app/sub has been ensured.
func (sk *StreamKeeper) HasSubstance(app, sub string) bool {
	_, ok := sk.entries[substanceKey{app, sub}]
	return ok
}

// Substances returns every (application, substance) pair known to the
// keeper, in the order they were first ensured.
func (sk *StreamKeeper) Substances() [][2]string {
	out := make([][2]string, 0, len(sk.order))
	for _, k := range sk.order {
		out = append(out, [2]string{k.application, k.substance})
	}
	return out
}

func (sk *StreamKeeper) entry(app, sub string) (*substanceEntry, error) {
	e, ok := sk.entries[substanceKey{app, sub}]
	if !ok {
		return nil, &UnknownName{Kind: "substance", Name: fmt.Sprintf("%s/%s", app, sub)}
	}
	return e, nil
}

// Parameterisation returns app/sub's current parameterisation.
func (sk *StreamKeeper) Parameterisation(app, sub string) (StreamParameterisation, error) {
	e, err := sk.entry(app, sub)
	if err != nil {
		return StreamParameterisation{}, err
	}
	return e.param, nil
}

// SetParameterisation replaces app/sub's parameterisation wholesale. The
// engine mutates a clone via the accessors in parameterisation.go-level
// code and writes it back here.
func (sk *StreamKeeper) SetParameterisation(app, sub string, p StreamParameterisation) error {
	e, err := sk.entry(app, sub)
	if err != nil {
		return err
	}
	e.param = p
	return nil
}

// rawStream returns the stored Value for a concrete (non-virtual) stream
// name, in its base unit.
func (sk *StreamKeeper) rawStream(app, sub, name string) (Value, error) {
	e, err := sk.entry(app, sub)
	if err != nil {
		return Value{}, err
	}
	v, ok := e.streams[name]
	if !ok {
		return Value{}, &UnknownName{Kind: "stream", Name: name}
	}
	return v, nil
}

// GetStream reads app/sub's stream by name. "sales" is the virtual sum of
// domestic+import in kg.
func (sk *StreamKeeper) GetStream(app, sub, name string) (Value, error) {
	if name == StreamSales {
		dom, err := sk.rawStream(app, sub, StreamDomestic)
		if err != nil {
			return Value{}, err
		}
		imp, err := sk.rawStream(app, sub, StreamImport)
		if err != nil {
			return Value{}, err
		}
		return NewValue(dom.Magnitude+imp.Magnitude, UnitKg), nil
	}
	return sk.rawStream(app, sub, name)
}

// SetStream writes value to app/sub's stream, converting it to the
// stream's base unit via conv first. It implements the special cases for
// "sales" (proportional split across domestic/import) and for writing a
// unit-denominated value into domestic/import (resolved against that
// substream's own initial charge rather than the pooled one).
func (sk *StreamKeeper) SetStream(conv *UnitConverter, app, sub, name string, value Value) error {
	e, err := sk.entry(app, sub)
	if err != nil {
		return err
	}

	switch name {
	case StreamSales:
		return sk.setSales(conv, e, value)
	case StreamDomestic, StreamImport:
		if IsPrimitiveUnit(value.Unit) && normalizeForm(value.Unit) == UnitUnit {
			return sk.setSubstreamFromUnits(conv, e, name, value)
		}
	}

	converted, err := conv.Convert(value, baseUnits[name])
	if err != nil {
		return err
	}
	return sk.store(e, name, converted)
}

func (sk *StreamKeeper) setSales(conv *UnitConverter, e *substanceEntry, value Value) error {
	dom := e.streams[StreamDomestic]
	imp := e.streams[StreamImport]
	total := dom.Magnitude + imp.Magnitude

	converted, err := conv.Convert(value, UnitKg)
	if err != nil {
		return err
	}

	var domShare, impShare float64
	if total == 0 {
		domShare, impShare = 0.5, 0.5
	} else {
		domShare = dom.Magnitude / total
		impShare = imp.Magnitude / total
	}
	if err := sk.store(e, StreamDomestic, NewValue(converted.Magnitude*domShare, UnitKg)); err != nil {
		return err
	}
	return sk.store(e, StreamImport, NewValue(converted.Magnitude*impShare, UnitKg))
}

func (sk *StreamKeeper) setSubstreamFromUnits(conv *UnitConverter, e *substanceEntry, name string, value Value) error {
	charge, ok := e.param.InitialCharge[name]
	if !ok || charge.Magnitude == 0 {
		return &ArithmeticError{Reason: fmt.Sprintf("initial charge for %q is zero or undefined", name)}
	}
	sub := newOverridingStateProvider(nopStateProvider{}).WithAmortizedUnitVolume(charge)
	local := conv.WithState(sub)
	converted, err := local.Convert(value, UnitKg)
	if err != nil {
		return err
	}
	return sk.store(e, name, converted)
}

func (sk *StreamKeeper) store(e *substanceEntry, name string, v Value) error {
	if sk.CheckNaN && math.IsNaN(v.Magnitude) {
		return &ArithmeticError{Reason: "NaN written to stream " + name}
	}
	if sk.CheckNonNegative && v.Magnitude < 0 {
		return &RangeViolation{Stream: name}
	}
	e.streams[name] = v
	return nil
}

// IncrementYear advances every known substance to the next year boundary:
// priorEquipment <- equipment, and parameterisations reset to default.
// Other streams retain their prior-year values unless overwritten by
// commands in the new year.
func (sk *StreamKeeper) IncrementYear() {
	for _, k := range sk.order {
		e := sk.entries[k]
		e.streams[StreamPriorEquipment] = e.streams[StreamEquipment]
		e.param = DefaultParameterisation()
	}
}

// nopStateProvider answers zero for every quantity. It backs the
// overriding provider used to resolve a unit-denominated domestic/import
// write, where only AmortizedUnitVolume is actually consulted.
type nopStateProvider struct{}

func (nopStateProvider) Population() Value               { return NewValue(0, UnitUnit) }
func (nopStateProvider) Volume() Value                   { return NewValue(0, UnitKg) }
func (nopStateProvider) Consumption() Value               { return NewValue(0, UnitTCO2e) }
func (nopStateProvider) SubstanceConsumption() Value      { return NewValue(0, UnitTCO2e+" / "+UnitKg) }
func (nopStateProvider) AmortizedUnitVolume() Value       { return NewValue(0, UnitKg+" / "+UnitUnit) }
func (nopStateProvider) AmortizedUnitConsumption() Value  { return NewValue(0, UnitTCO2e+" / "+UnitUnit) }
func (nopStateProvider) YearsElapsed() Value              { return NewValue(0, UnitYear) }
func (nopStateProvider) PopulationChange() Value          { return NewValue(0, UnitUnit) }
