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
	"context"
	"fmt"
	mathrand "math/rand/v2"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hfcsim/internal/hash"
)

// Config holds the engine-level settings enumerated in §6.
type Config struct {
	StartYear               int
	EndYear                 int
	CheckNaN                bool
	CheckNonNegativeStreams bool
}

// DefaultConfig returns a Config with both safety guards enabled, per §6.
func DefaultConfig(startYear, endYear int) Config {
	return Config{StartYear: startYear, EndYear: endYear, CheckNaN: true, CheckNonNegativeStreams: true}
}

// Engine executes a Program year by year over a StreamKeeper, interpreting
// commands through the scoped variable stack and unit converter. One
// Engine belongs to exactly one (scenario, trial) run: per §5, parallel
// trials/scenarios each get their own fresh Engine and share no state but
// the immutable Program.
type Engine struct {
	startYear, endYear, currentYear int
	scope                           Scope
	sk                              *StreamKeeper
	converter                       *UnitConverter
	logger                          logrus.FieldLogger
	rnd                             *mathrand.Rand

	scenario string
	trial    int

	resultCache *requestcache.Cache
}

// NewEngine constructs an engine positioned at cfg.StartYear with an empty
// StreamKeeper and global scope. scenario/trial identify this run for the
// Result rows it emits and for seeding the deterministic sampling PRNG
// (see SPEC_FULL.md).
func NewEngine(cfg Config, scenario string, trial int, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &Engine{
		startYear:   cfg.StartYear,
		endYear:     cfg.EndYear,
		currentYear: cfg.StartYear,
		scope:       NewGlobalScope(),
		sk:          NewStreamKeeper(),
		logger:      logger,
		scenario:    scenario,
		trial:       trial,
		rnd:         mathrand.New(mathrand.NewPCG(uint64(trial)+1, 0x9e3779b97f4a7c15)),
	}
	e.sk.CheckNaN = cfg.CheckNaN
	e.sk.CheckNonNegative = cfg.CheckNonNegativeStreams
	e.converter = NewUnitConverter(engineStateAdapter{e}) // adapts Engine's EvalContext-shaped YearsElapsed to StateProvider's.
	e.resultCache = requestcache.NewCache(e.processResultRequest, 1, requestcache.Memory(4096))
	return e
}

// CurrentYear returns the year the engine is currently executing.
func (e *Engine) CurrentYear() int { return e.currentYear }

// Scope returns the engine's current scope.
func (e *Engine) Scope() Scope { return e.scope }

// StreamKeeper exposes the engine's underlying keeper, mainly for tests.
func (e *Engine) StreamKeeper() *StreamKeeper { return e.sk }

// --- EvalContext -----------------------------------------------------

// Variables implements EvalContext.
func (e *Engine) Variables() *VariableManager { return e.scope.Variables() }

// YearsElapsed implements EvalContext, serving the reserved "yearsElapsed"
// name: current year minus start year.
func (e *Engine) YearsElapsed() float64 { return float64(e.currentYear - e.startYear) }

// YearAbsolute implements EvalContext, serving the reserved "yearAbsolute"
// name: the current year itself.
func (e *Engine) YearAbsolute() int { return e.currentYear }

// Rand implements EvalContext.
func (e *Engine) Rand() *mathrand.Rand { return e.rnd }

// --- StateProvider (for the "current" application/substance scope) ---

func (e *Engine) currentAppSub() (string, string, error) {
	if !e.scope.HasSubstance() {
		return "", "", &LifecycleError{Reason: "no substance selected"}
	}
	return e.scope.Application, e.scope.Substance, nil
}

func (e *Engine) Population() Value {
	app, sub, err := e.currentAppSub()
	if err != nil {
		return NewValue(0, UnitUnit)
	}
	v, _ := e.sk.GetStream(app, sub, StreamEquipment)
	return v
}

func (e *Engine) Volume() Value {
	app, sub, err := e.currentAppSub()
	if err != nil {
		return NewValue(0, UnitKg)
	}
	v, _ := e.sk.GetStream(app, sub, StreamSales)
	return v
}

func (e *Engine) Consumption() Value {
	app, sub, err := e.currentAppSub()
	if err != nil {
		return NewValue(0, UnitTCO2e)
	}
	v, _ := e.sk.GetStream(app, sub, StreamConsumption)
	return v
}

func (e *Engine) SubstanceConsumption() Value {
	app, sub, err := e.currentAppSub()
	if err != nil {
		return NewValue(0, UnitTCO2e+" / "+UnitKg)
	}
	p, _ := e.sk.Parameterisation(app, sub)
	return p.GHGIntensity
}

func (e *Engine) AmortizedUnitVolume() Value {
	v, _ := e.GetInitialCharge(StreamSales)
	return v
}

func (e *Engine) AmortizedUnitConsumption() Value {
	auv := e.AmortizedUnitVolume()
	sc := e.SubstanceConsumption()
	return NewValue(auv.Magnitude*sc.Magnitude, UnitTCO2e+" / "+UnitUnit)
}

func (e *Engine) YearsElapsedValue() Value { return NewValue(e.YearsElapsed(), UnitYear) }

func (e *Engine) PopulationChange() Value {
	app, sub, err := e.currentAppSub()
	if err != nil {
		return NewValue(0, UnitUnit)
	}
	eq, _ := e.sk.GetStream(app, sub, StreamEquipment)
	pe, _ := e.sk.GetStream(app, sub, StreamPriorEquipment)
	return NewValue(eq.Magnitude-pe.Magnitude, UnitUnit)
}

// the StateProvider interface spells this YearsElapsed() Value; Engine
// already has a float64-returning YearsElapsed() for EvalContext, so the
// Value-returning one is exposed under its interface name via an
// adapter type below.
type engineStateAdapter struct{ e *Engine }

func (a engineStateAdapter) Population() Value               { return a.e.Population() }
func (a engineStateAdapter) Volume() Value                   { return a.e.Volume() }
func (a engineStateAdapter) Consumption() Value               { return a.e.Consumption() }
func (a engineStateAdapter) SubstanceConsumption() Value      { return a.e.SubstanceConsumption() }
func (a engineStateAdapter) AmortizedUnitVolume() Value       { return a.e.AmortizedUnitVolume() }
func (a engineStateAdapter) AmortizedUnitConsumption() Value  { return a.e.AmortizedUnitConsumption() }
func (a engineStateAdapter) YearsElapsed() Value              { return a.e.YearsElapsedValue() }
func (a engineStateAdapter) PopulationChange() Value          { return a.e.PopulationChange() }

// --- Scope management --------------------------------------------------

// SetStanza updates the scope to the named stanza.
func (e *Engine) SetStanza(name string) {
	e.scope = e.scope.WithStanza(name)
}

// SetApplication updates the scope to the named application within the
// current stanza.
func (e *Engine) SetApplication(name string) error {
	s, err := e.scope.WithApplication(name)
	if err != nil {
		return err
	}
	e.scope = s
	return nil
}

// SetSubstance updates the scope to the named substance within the
// current application. Unless checkValid is set, the substance is
// auto-ensured (created with zeroed streams/default parameterisation) if
// this is its first reference.
func (e *Engine) SetSubstance(name string, checkValid bool) error {
	s, err := e.scope.WithSubstance(name)
	if err != nil {
		return err
	}
	if !checkValid {
		e.sk.EnsureSubstance(s.Application, name)
	} else if !e.sk.HasSubstance(s.Application, name) {
		return &UnknownName{Kind: "substance", Name: name}
	}
	e.scope = s
	return nil
}

func (e *Engine) resolveScope(scope *Scope) (string, string, error) {
	target := e.scope
	if scope != nil {
		target = *scope
	}
	if !target.HasSubstance() {
		return "", "", &LifecycleError{Reason: "no substance selected"}
	}
	return target.Application, target.Substance, nil
}

// --- Stream access -------------------------------------------------

// GetStream reads a stream, optionally under a different scope than the
// engine's current one, optionally converting the result to convertTo
// (a primitive or ratio unit). An empty convertTo returns the stream in
// its base unit.
func (e *Engine) GetStream(name string, scope *Scope, convertTo string) (Value, error) {
	app, sub, err := e.resolveScope(scope)
	if err != nil {
		return Value{}, err
	}
	v, err := e.sk.GetStream(app, sub, name)
	if err != nil {
		return Value{}, err
	}
	if convertTo == "" {
		return v, nil
	}
	return e.converterFor(app, sub).Convert(v, convertTo)
}

// converterFor returns a converter whose StateProvider reflects app/sub
// rather than the engine's current scope, used when an operation targets
// a scope other than the one currently selected (e.g. cap's displacement
// target).
func (e *Engine) converterFor(app, sub string) *UnitConverter {
	if app == e.scope.Application && sub == e.scope.Substance && e.scope.HasSubstance() {
		return e.converter
	}
	return NewUnitConverter(&scopedStateProvider{e: e, app: app, sub: sub})
}

type scopedStateProvider struct {
	e        *Engine
	app, sub string
}

func (p *scopedStateProvider) Population() Value {
	v, _ := p.e.sk.GetStream(p.app, p.sub, StreamEquipment)
	return v
}
func (p *scopedStateProvider) Volume() Value {
	v, _ := p.e.sk.GetStream(p.app, p.sub, StreamSales)
	return v
}
func (p *scopedStateProvider) Consumption() Value {
	v, _ := p.e.sk.GetStream(p.app, p.sub, StreamConsumption)
	return v
}
func (p *scopedStateProvider) SubstanceConsumption() Value {
	pm, _ := p.e.sk.Parameterisation(p.app, p.sub)
	return pm.GHGIntensity
}
func (p *scopedStateProvider) AmortizedUnitVolume() Value {
	v, _ := p.e.getInitialChargeFor(p.app, p.sub, StreamSales)
	return v
}
func (p *scopedStateProvider) AmortizedUnitConsumption() Value {
	auv := p.AmortizedUnitVolume()
	sc := p.SubstanceConsumption()
	return NewValue(auv.Magnitude*sc.Magnitude, UnitTCO2e+" / "+UnitUnit)
}
func (p *scopedStateProvider) YearsElapsed() Value {
	return NewValue(float64(p.e.currentYear-p.e.startYear), UnitYear)
}
func (p *scopedStateProvider) PopulationChange() Value {
	eq, _ := p.e.sk.GetStream(p.app, p.sub, StreamEquipment)
	pe, _ := p.e.sk.GetStream(p.app, p.sub, StreamPriorEquipment)
	return NewValue(eq.Magnitude-pe.Magnitude, UnitUnit)
}

// SetStream writes value (converted to the stream's base unit) if year is
// within yearRange, then, if propagate, dispatches the recalculation the
// §4.6 propagation table assigns to this stream name.
func (e *Engine) SetStream(name string, value Value, yr YearRange, scope *Scope, propagate bool) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.resolveScope(scope)
	if err != nil {
		return err
	}
	if err := e.sk.SetStream(e.converterFor(app, sub), app, sub, name, value); err != nil {
		return err
	}
	if !propagate {
		return nil
	}
	switch name {
	case StreamSales, StreamDomestic, StreamImport:
		if err := e.recalcPopulation(app, sub); err != nil {
			return err
		}
		return e.recalcConsumption(app, sub)
	case StreamConsumption:
		if err := e.recalcSales(app, sub); err != nil {
			return err
		}
		return e.recalcPopulation(app, sub)
	case StreamEquipment:
		if err := e.recalcSales(app, sub); err != nil {
			return err
		}
		return e.recalcConsumption(app, sub)
	case StreamPriorEquipment:
		return e.recalcRetirement(app, sub)
	}
	return nil
}

// --- Initial charge --------------------------------------------------

// GetInitialCharge returns the kg/unit initial charge for stream. For
// "sales" it is the pooled charge across domestic/import, weighted by
// their current mass shares (using 1 kg placeholders for both if they are
// both currently zero, so the pooled average is well-defined).
func (e *Engine) GetInitialCharge(stream string) (Value, error) {
	app, sub, err := e.currentAppSub()
	if err != nil {
		return Value{}, err
	}
	return e.getInitialChargeFor(app, sub, stream)
}

func (e *Engine) getInitialChargeFor(app, sub, stream string) (Value, error) {
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return Value{}, err
	}
	if stream != StreamSales {
		c, ok := p.InitialCharge[stream]
		if !ok {
			return Value{}, &UnknownName{Kind: "stream", Name: stream}
		}
		return c, nil
	}
	dom, err := e.sk.GetStream(app, sub, StreamDomestic)
	if err != nil {
		return Value{}, err
	}
	imp, err := e.sk.GetStream(app, sub, StreamImport)
	if err != nil {
		return Value{}, err
	}
	domMass, impMass := dom.Magnitude, imp.Magnitude
	if domMass == 0 && impMass == 0 {
		domMass, impMass = 1, 1
	}
	total := domMass + impMass
	domCharge := p.InitialCharge[SubstreamDomestic]
	impCharge := p.InitialCharge[SubstreamImport]
	pooled := (domCharge.Magnitude*domMass + impCharge.Magnitude*impMass) / total
	return NewValue(pooled, UnitKg+" / "+UnitUnit), nil
}

// SetInitialCharge writes stream's initial charge. If stream is "sales",
// both domestic and import are set to the same value.
func (e *Engine) SetInitialCharge(value Value, stream string, yr YearRange) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.currentAppSub()
	if err != nil {
		return err
	}
	converted, err := e.converter.Convert(value, UnitKg+" / "+UnitUnit)
	if err != nil {
		return err
	}
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	p = p.Clone()
	if stream == StreamSales {
		p.InitialCharge[SubstreamDomestic] = converted
		p.InitialCharge[SubstreamImport] = converted
	} else {
		p.InitialCharge[stream] = converted
	}
	return e.sk.SetParameterisation(app, sub, p)
}

// --- Definition/policy operations --------------------------------------

// Recharge sets the recharge parameterisation then recalculates
// population, sales, and consumption, in that order, per §4.6.
func (e *Engine) Recharge(populationPct, intensity Value, yr YearRange) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.currentAppSub()
	if err != nil {
		return err
	}
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	p = p.Clone()
	pct, err := e.converter.Convert(populationPct, UnitPercent)
	if err != nil {
		return err
	}
	kgPerUnit, err := e.converter.Convert(intensity, UnitKg+" / "+UnitUnit)
	if err != nil {
		return err
	}
	p.RechargePopulation = pct
	p.RechargeIntensity = kgPerUnit
	if err := e.sk.SetParameterisation(app, sub, p); err != nil {
		return err
	}
	if err := e.recalcPopulation(app, sub); err != nil {
		return err
	}
	if err := e.recalcSales(app, sub); err != nil {
		return err
	}
	return e.recalcConsumption(app, sub)
}

// Equals sets the substance's GHG intensity, then recalculates
// consumption.
func (e *Engine) Equals(ghgIntensity Value, yr YearRange) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.currentAppSub()
	if err != nil {
		return err
	}
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	p = p.Clone()
	intensity, err := e.converter.Convert(ghgIntensity, UnitTCO2e+" / "+UnitKg)
	if err != nil {
		return err
	}
	p.GHGIntensity = intensity
	if err := e.sk.SetParameterisation(app, sub, p); err != nil {
		return err
	}
	return e.recalcConsumption(app, sub)
}

// Recycle sets the recovery/yield/displacement parameterisation, then
// recalculates population, sales, and consumption so the recycled volume
// is reflected this year. displacement is optional (nil keeps the
// current/default 100%).
func (e *Engine) Recycle(recoveryPct, yieldPct Value, displacement *Value, yr YearRange) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.currentAppSub()
	if err != nil {
		return err
	}
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	p = p.Clone()
	rec, err := e.converter.Convert(recoveryPct, UnitPercent)
	if err != nil {
		return err
	}
	yld, err := e.converter.Convert(yieldPct, UnitPercent)
	if err != nil {
		return err
	}
	p.RecoveryRate = rec
	p.YieldRate = yld
	if displacement != nil {
		d, err := e.converter.Convert(*displacement, UnitPercent)
		if err != nil {
			return err
		}
		p.DisplacementRate = d
	}
	if err := e.sk.SetParameterisation(app, sub, p); err != nil {
		return err
	}
	if err := e.recalcPopulation(app, sub); err != nil {
		return err
	}
	if err := e.recalcSales(app, sub); err != nil {
		return err
	}
	return e.recalcConsumption(app, sub)
}

// Retire immediately retires retirementRate of priorEquipment: it
// decrements priorEquipment and equipment by that amount, sets the
// retirement-rate parameterisation, and re-triggers the
// population/sales/consumption recalculation.
func (e *Engine) Retire(rate Value, yr YearRange) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.currentAppSub()
	if err != nil {
		return err
	}
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	pct, err := e.converter.Convert(rate, UnitPercent)
	if err != nil {
		return err
	}
	p = p.Clone()
	p.RetirementRate = pct
	if err := e.sk.SetParameterisation(app, sub, p); err != nil {
		return err
	}

	prior, err := e.sk.GetStream(app, sub, StreamPriorEquipment)
	if err != nil {
		return err
	}
	eq, err := e.sk.GetStream(app, sub, StreamEquipment)
	if err != nil {
		return err
	}
	amount := prior.Magnitude * pct.Magnitude / 100
	conv := e.converterFor(app, sub)
	if err := e.sk.SetStream(conv, app, sub, StreamPriorEquipment, NewValue(prior.Magnitude-amount, UnitUnit)); err != nil {
		return err
	}
	if err := e.sk.SetStream(conv, app, sub, StreamEquipment, NewValue(eq.Magnitude-amount, UnitUnit)); err != nil {
		return err
	}

	initCharge, err := e.getInitialChargeFor(app, sub, StreamSales)
	if err != nil {
		return err
	}
	retiredKg := amount * initCharge.Magnitude
	recovered := retiredKg * p.RecoveryRate.Magnitude / 100 * p.YieldRate.Magnitude / 100
	ghg := p.GHGIntensity.Magnitude
	eolEmissions := (retiredKg - recovered) * ghg
	if eolEmissions < 0 {
		eolEmissions = 0
	}
	if err := e.sk.SetStream(conv, app, sub, StreamEOLEmissions, NewValue(eolEmissions, UnitTCO2e)); err != nil {
		return err
	}

	if err := e.recalcPopulation(app, sub); err != nil {
		return err
	}
	if err := e.recalcSales(app, sub); err != nil {
		return err
	}
	return e.recalcConsumption(app, sub)
}

// ChangeStream reads stream's current value, converts delta against a
// state provider whose "total" for this stream's category is overridden
// to the current value (so "%" and "/year" deltas resolve relative to it),
// and writes the sum back.
func (e *Engine) ChangeStream(stream string, delta Value, yr YearRange, scope *Scope) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.resolveScope(scope)
	if err != nil {
		return err
	}
	cur, err := e.sk.GetStream(app, sub, stream)
	if err != nil {
		return err
	}
	ov := newOverridingStateProvider(&scopedStateProvider{e: e, app: app, sub: sub})
	overrideTotalForStream(ov, stream, cur)
	local := NewUnitConverter(ov)
	convertedDelta, err := local.Convert(delta, streamBaseUnit(stream))
	if err != nil {
		return err
	}
	sum := NewValue(cur.Magnitude+convertedDelta.Magnitude, streamBaseUnit(stream))
	s := e.scope
	if scope != nil {
		s = *scope
	}
	return e.SetStream(stream, sum, AllYears, &s, true)
}

func overrideTotalForStream(ov *overridingStateProvider, stream string, cur Value) {
	switch streamBaseUnit(stream) {
	case UnitKg:
		ov.WithVolume(cur)
	case UnitTCO2e:
		ov.WithConsumption(cur)
	case UnitUnit:
		ov.WithPopulation(cur)
	case UnitYear:
		ov.WithYearsElapsed(cur)
	}
}

// Cap clamps stream to at most max. If displaceTo is non-nil, the clipped
// amount is pushed into the named target (a different stream in the same
// substance, or the same stream in a different substance of the same
// application).
func (e *Engine) Cap(stream string, max Value, yr YearRange, scope *Scope, displaceTo *DisplaceTarget) error {
	return e.clamp(stream, max, yr, scope, displaceTo, true)
}

// Floor clamps stream to at least min. Displacement direction is the
// mirror of Cap's: the target loses what this substance gains.
func (e *Engine) Floor(stream string, min Value, yr YearRange, scope *Scope, displaceTo *DisplaceTarget) error {
	return e.clamp(stream, min, yr, scope, displaceTo, false)
}

func (e *Engine) clamp(stream string, bound Value, yr YearRange, scope *Scope, displaceTo *DisplaceTarget, isCap bool) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.resolveScope(scope)
	if err != nil {
		return err
	}
	cur, err := e.sk.GetStream(app, sub, stream)
	if err != nil {
		return err
	}
	boundConv, err := e.converterFor(app, sub).Convert(bound, streamBaseUnit(stream))
	if err != nil {
		return err
	}

	var clipped float64
	var newVal float64
	if isCap {
		if cur.Magnitude <= boundConv.Magnitude {
			return nil
		}
		clipped = cur.Magnitude - boundConv.Magnitude
		newVal = boundConv.Magnitude
	} else {
		if cur.Magnitude >= boundConv.Magnitude {
			return nil
		}
		clipped = boundConv.Magnitude - cur.Magnitude
		newVal = boundConv.Magnitude
	}

	s := Scope{Stanza: e.scope.Stanza, Application: app, Substance: sub, hasStanza: true, hasApplication: true, hasSubstance: true}
	if scope != nil {
		s = *scope
	}
	if err := e.SetStream(stream, NewValue(newVal, streamBaseUnit(stream)), AllYears, &s, true); err != nil {
		return err
	}
	if displaceTo == nil {
		return nil
	}

	targetApp, targetSub, targetStream := app, sub, stream
	if displaceTo.Stream != "" {
		targetStream = displaceTo.Stream
	}
	if displaceTo.Substance != "" {
		targetSub = displaceTo.Substance
		e.sk.EnsureSubstance(targetApp, targetSub)
	}
	targetCur, err := e.sk.GetStream(targetApp, targetSub, targetStream)
	if err != nil {
		return err
	}
	delta := clipped
	if !isCap {
		delta = -clipped
	}
	targetScope := Scope{Stanza: e.scope.Stanza, Application: targetApp, Substance: targetSub, hasStanza: true, hasApplication: true, hasSubstance: true}
	return e.SetStream(targetStream, NewValue(targetCur.Magnitude+delta, streamBaseUnit(targetStream)), AllYears, &targetScope, true)
}

// Replace moves amount of stream from the current substance to
// destSubstance within the same application.
func (e *Engine) Replace(amount Value, stream, destSubstance string, yr YearRange) error {
	if !yr.Contains(e.currentYear) {
		return nil
	}
	app, sub, err := e.currentAppSub()
	if err != nil {
		return err
	}
	conv := e.converterFor(app, sub)
	amt, err := conv.Convert(amount, streamBaseUnit(stream))
	if err != nil {
		return err
	}
	cur, err := e.sk.GetStream(app, sub, stream)
	if err != nil {
		return err
	}
	srcScope := Scope{Stanza: e.scope.Stanza, Application: app, Substance: sub, hasStanza: true, hasApplication: true, hasSubstance: true}
	if err := e.SetStream(stream, NewValue(cur.Magnitude-amt.Magnitude, streamBaseUnit(stream)), AllYears, &srcScope, true); err != nil {
		return err
	}

	e.sk.EnsureSubstance(app, destSubstance)
	dst, err := e.sk.GetStream(app, destSubstance, stream)
	if err != nil {
		return err
	}
	dstScope := Scope{Stanza: e.scope.Stanza, Application: app, Substance: destSubstance, hasStanza: true, hasApplication: true, hasSubstance: true}
	return e.SetStream(stream, NewValue(dst.Magnitude+amt.Magnitude, streamBaseUnit(stream)), AllYears, &dstScope, true)
}

// --- Recalculation algorithms (§4.6) -----------------------------------
//
// Every recalc writes with propagate=false and builds a fresh overriding
// state provider, so hypothetical intermediate quantities never leak into
// the engine's persistent state or trigger another round of propagation.

func (e *Engine) recalcPopulation(app, sub string) error {
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	prior, err := e.sk.GetStream(app, sub, StreamPriorEquipment)
	if err != nil {
		return err
	}
	salesKg, err := e.sk.GetStream(app, sub, StreamSales)
	if err != nil {
		return err
	}
	initCharge, err := e.getInitialChargeFor(app, sub, StreamSales)
	if err != nil {
		return err
	}

	rechargePop := prior.Magnitude * p.RechargePopulation.Magnitude / 100
	rechargeVolume := rechargePop * p.RechargeIntensity.Magnitude
	recoveryVolume := rechargeVolume * p.RecoveryRate.Magnitude / 100
	recycledVolume := recoveryVolume * p.YieldRate.Magnitude / 100
	nonDisplaced := recycledVolume * (1 - p.DisplacementRate.Magnitude/100)

	kgAvailableForNew := salesKg.Magnitude + nonDisplaced - rechargeVolume
	if initCharge.Magnitude == 0 {
		return &ArithmeticError{Reason: "initial charge is zero, cannot compute new equipment"}
	}
	deltaUnits := kgAvailableForNew / initCharge.Magnitude
	newEquipment := prior.Magnitude + deltaUnits
	if newEquipment < 0 {
		newEquipment = 0
	}

	conv := e.converterFor(app, sub)
	if err := e.sk.SetStream(conv, app, sub, StreamEquipment, NewValue(newEquipment, UnitUnit)); err != nil {
		return err
	}
	if deltaUnits < 0 {
		deltaUnits = 0
	}
	if err := e.sk.SetStream(conv, app, sub, StreamNewEquipment, NewValue(deltaUnits, UnitUnit)); err != nil {
		return err
	}
	rechargeEmissions := rechargeVolume * p.GHGIntensity.Magnitude
	return e.sk.SetStream(conv, app, sub, StreamRechargeEmissions, NewValue(rechargeEmissions, UnitTCO2e))
}

func (e *Engine) recalcConsumption(app, sub string) error {
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	dom, err := e.sk.GetStream(app, sub, StreamDomestic)
	if err != nil {
		return err
	}
	consumption := dom.Magnitude * p.GHGIntensity.Magnitude
	if consumption < 0 {
		consumption = 0
	}
	conv := e.converterFor(app, sub)
	if err := e.sk.SetStream(conv, app, sub, StreamConsumption, NewValue(consumption, UnitTCO2e)); err != nil {
		return err
	}
	energy := dom.Magnitude * p.EnergyIntensity.Magnitude
	if energy < 0 {
		energy = 0
	}
	return e.sk.SetStream(conv, app, sub, StreamEnergyConsumption, NewValue(energy, UnitKwh))
}

func (e *Engine) recalcSales(app, sub string) error {
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return err
	}
	prior, err := e.sk.GetStream(app, sub, StreamPriorEquipment)
	if err != nil {
		return err
	}
	eq, err := e.sk.GetStream(app, sub, StreamEquipment)
	if err != nil {
		return err
	}
	initCharge, err := e.getInitialChargeFor(app, sub, StreamSales)
	if err != nil {
		return err
	}

	populationChange := eq.Magnitude - prior.Magnitude
	kgForNew := populationChange * initCharge.Magnitude

	rechargePop := prior.Magnitude * p.RechargePopulation.Magnitude / 100
	rechargeKg := rechargePop * p.RechargeIntensity.Magnitude
	recoveryVolume := rechargeKg * p.RecoveryRate.Magnitude / 100
	recycledVolume := recoveryVolume * p.YieldRate.Magnitude / 100
	displaced := recycledVolume * (p.DisplacementRate.Magnitude / 100)

	kgNoRecycling := rechargeKg + kgForNew
	kgWithRecycling := kgNoRecycling - displaced
	if kgWithRecycling < 0 {
		kgWithRecycling = 0
	}

	conv := e.converterFor(app, sub)
	return e.sk.SetStream(conv, app, sub, StreamSales, NewValue(kgWithRecycling, UnitKg))
}

func (e *Engine) recalcRetirement(app, sub string) error {
	if err := e.recalcPopulation(app, sub); err != nil {
		return err
	}
	if err := e.recalcSales(app, sub); err != nil {
		return err
	}
	return e.recalcConsumption(app, sub)
}

// --- Year lifecycle ------------------------------------------------

// IncrementYear advances the engine to the next simulated year: it resets
// every substance's priorEquipment/parameterisation via the
// StreamKeeper, then advances currentYear. It fails if the engine is
// already at or past endYear.
func (e *Engine) IncrementYear() error {
	if e.currentYear >= e.endYear {
		return &LifecycleError{Reason: "cannot increment year past end year"}
	}
	e.sk.IncrementYear()
	e.currentYear++
	return nil
}

// --- Result emission -------------------------------------------------

type resultRequest struct {
	app, sub string
}

// String makes resultRequest satisfy fmt.Stringer so hash.Hash keys off its
// field values rather than gob-encoding a struct with no exported fields.
func (r resultRequest) String() string {
	return r.app + "\x00" + r.sub
}

func (e *Engine) processResultRequest(_ context.Context, payload interface{}) (interface{}, error) {
	req := payload.(resultRequest)
	return e.buildResult(req.app, req.sub)
}

func (e *Engine) buildResult(app, sub string) (Result, error) {
	get := func(name string) (Value, error) { return e.sk.GetStream(app, sub, name) }

	dom, err := get(StreamDomestic)
	if err != nil {
		return Result{}, err
	}
	imp, err := get(StreamImport)
	if err != nil {
		return Result{}, err
	}
	recycle, err := get(StreamRecycle)
	if err != nil {
		return Result{}, err
	}
	equipment, err := get(StreamEquipment)
	if err != nil {
		return Result{}, err
	}
	newEquipment, err := get(StreamNewEquipment)
	if err != nil {
		return Result{}, err
	}
	rechargeEmissions, err := get(StreamRechargeEmissions)
	if err != nil {
		return Result{}, err
	}
	eolEmissions, err := get(StreamEOLEmissions)
	if err != nil {
		return Result{}, err
	}
	energy, err := get(StreamEnergyConsumption)
	if err != nil {
		return Result{}, err
	}
	p, err := e.sk.Parameterisation(app, sub)
	if err != nil {
		return Result{}, err
	}
	initCharge, err := e.getInitialChargeFor(app, sub, StreamImport)
	if err != nil {
		return Result{}, err
	}

	domCons := dom.Magnitude * p.GHGIntensity.Magnitude
	impCons := imp.Magnitude * p.GHGIntensity.Magnitude
	recycleCons := recycle.Magnitude * p.GHGIntensity.Magnitude
	impInitChargeCons := imp.Magnitude * p.GHGIntensity.Magnitude

	return Result{
		Application:              app,
		Substance:                sub,
		Year:                     e.currentYear,
		Scenario:                 e.scenario,
		Trial:                    e.trial,
		Domestic:                 dom,
		Import:                   imp,
		Recycle:                  recycle,
		DomesticConsumption:      NewValue(domCons, UnitTCO2e),
		ImportConsumption:        NewValue(impCons, UnitTCO2e),
		RecycleConsumption:       NewValue(recycleCons, UnitTCO2e),
		Population:               equipment,
		PopulationNew:            newEquipment,
		RechargeEmissions:        rechargeEmissions,
		EOLEmissions:             eolEmissions,
		EnergyConsumption:        energy,
		InitialChargeValue:       initCharge,
		InitialChargeConsumption: NewValue(impInitChargeCons, UnitTCO2e),
		ImportNewPopulation:      newEquipment,
	}, nil
}

// ResultFor returns the Result row for (app, sub) at the engine's current
// year, memoized per (scenario, trial, year, app, sub) so repeated reads
// within the same year don't redo the work.
func (e *Engine) ResultFor(app, sub string) (Result, error) {
	key := fmt.Sprintf("%s_%d_%d_%s", e.scenario, e.trial, e.currentYear, hash.Hash(resultRequest{app: app, sub: sub}))
	req := e.resultCache.NewRequest(context.Background(), resultRequest{app: app, sub: sub}, key)
	res, err := req.Result()
	if err != nil {
		return Result{}, err
	}
	return res.(Result), nil
}

// Results returns one Result per substance known to the keeper, in the
// order they were first ensured.
func (e *Engine) Results() ([]Result, error) {
	var out []Result
	for _, as := range e.sk.Substances() {
		r, err := e.ResultFor(as[0], as[1])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

var _ StateProvider = engineStateAdapter{}
