package hfcsim

import "testing"

func newTestEngine(startYear, endYear int) *Engine {
	return NewEngine(DefaultConfig(startYear, endYear), "test-scenario", 0, nil)
}

func TestEngineGetInitialChargePoolsAcrossSubstreams(t *testing.T) {
	eng := newTestEngine(2025, 2025)
	eng.SetStanza("default")
	eng.SetApplication("App")
	if err := eng.SetSubstance("Sub", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	got, err := eng.GetInitialCharge(StreamSales)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewValue(1, "kg / unit")) {
		t.Errorf("pooled initial charge = %v, want 1 kg/unit", got)
	}
}

func TestEngineSetStreamPropagatesPopulationAndConsumption(t *testing.T) {
	eng := newTestEngine(2025, 2025)
	eng.SetStanza("default")
	eng.SetApplication("App")
	if err := eng.SetSubstance("Sub", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(2, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetStream(StreamDomestic, NewValue(100, UnitKg), AllYears, nil, true); err != nil {
		t.Fatal(err)
	}

	eq, err := eng.GetStream(StreamEquipment, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !eq.Equal(NewValue(100, UnitUnit)) {
		t.Errorf("equipment = %v, want 100 units", eq)
	}
	cons, err := eng.GetStream(StreamConsumption, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !cons.Equal(NewValue(200, UnitTCO2e)) {
		t.Errorf("consumption = %v, want 200 tCO2e (100 kg * 2 tCO2e/kg)", cons)
	}
}

func TestEngineRechargeAcrossAYearBoundary(t *testing.T) {
	eng := newTestEngine(2025, 2026)
	eng.SetStanza("default")
	eng.SetApplication("App")
	if err := eng.SetSubstance("Sub", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(2, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}
	// Seed year-one equipment directly; recalcSales derives domestic/import
	// as a 50/50 split since both are still zero.
	if err := eng.SetStream(StreamEquipment, NewValue(1000, UnitUnit), AllYears, nil, true); err != nil {
		t.Fatal(err)
	}

	if err := eng.IncrementYear(); err != nil {
		t.Fatal(err)
	}
	// Parameterisation resets every year boundary; the "default" stanza
	// would re-issue these commands, so the test does too.
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(2, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Recharge(NewValue(10, UnitPercent), NewValue(0.5, "kg / unit"), AllYears); err != nil {
		t.Fatal(err)
	}

	eq, _ := eng.GetStream(StreamEquipment, nil, "")
	if !eq.Equal(NewValue(1950, UnitUnit)) {
		t.Errorf("equipment after recharge = %v, want 1950 units", eq)
	}
	recharged, _ := eng.GetStream(StreamRechargeEmissions, nil, "")
	if !recharged.Equal(NewValue(100, UnitTCO2e)) {
		t.Errorf("recharge emissions = %v, want 100 tCO2e", recharged)
	}
	cons, _ := eng.GetStream(StreamConsumption, nil, "")
	if !cons.Equal(NewValue(1000, UnitTCO2e)) {
		t.Errorf("consumption after recharge = %v, want 1000 tCO2e", cons)
	}
}

func TestEngineRetireDecrementsPopulationAndEmitsEOL(t *testing.T) {
	eng := newTestEngine(2025, 2025)
	eng.SetStanza("default")
	eng.SetApplication("App")
	if err := eng.SetSubstance("Sub", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(2, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetStream(StreamPriorEquipment, NewValue(1000, UnitUnit), AllYears, nil, false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetStream(StreamEquipment, NewValue(1000, UnitUnit), AllYears, nil, false); err != nil {
		t.Fatal(err)
	}

	if err := eng.Retire(NewValue(5, UnitPercent), AllYears); err != nil {
		t.Fatal(err)
	}

	eq, _ := eng.GetStream(StreamEquipment, nil, "")
	if !eq.Equal(NewValue(950, UnitUnit)) {
		t.Errorf("equipment after retire = %v, want 950 units", eq)
	}
	eol, _ := eng.GetStream(StreamEOLEmissions, nil, "")
	if !eol.Equal(NewValue(100, UnitTCO2e)) {
		t.Errorf("eol emissions = %v, want 100 tCO2e (50 kg retired * 2 tCO2e/kg, no recovery)", eol)
	}
}

func TestEngineCapDisplacesClippedVolumeToAnotherSubstance(t *testing.T) {
	eng := newTestEngine(2025, 2025)
	eng.SetStanza("default")
	eng.SetApplication("App")

	if err := eng.SetSubstance("Primary", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(1, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}

	if err := eng.SetSubstance("Secondary", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(1, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}

	if err := eng.SetSubstance("Primary", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetStream(StreamDomestic, NewValue(1000, UnitKg), AllYears, nil, true); err != nil {
		t.Fatal(err)
	}

	if err := eng.Cap(StreamSales, NewValue(600, UnitKg), AllYears, nil, &DisplaceTarget{Substance: "Secondary"}); err != nil {
		t.Fatal(err)
	}

	primarySales, _ := eng.GetStream(StreamSales, nil, "")
	if !primarySales.Equal(NewValue(600, UnitKg)) {
		t.Errorf("primary sales after cap = %v, want 600 kg", primarySales)
	}
	primaryEq, _ := eng.GetStream(StreamEquipment, nil, "")
	if !primaryEq.Equal(NewValue(600, UnitUnit)) {
		t.Errorf("primary equipment after cap = %v, want 600 units", primaryEq)
	}

	secScope := Scope{Stanza: "default", Application: "App", Substance: "Secondary", hasStanza: true, hasApplication: true, hasSubstance: true}
	secSales, err := eng.GetStream(StreamSales, &secScope, "")
	if err != nil {
		t.Fatal(err)
	}
	if !secSales.Equal(NewValue(400, UnitKg)) {
		t.Errorf("secondary sales after displacement = %v, want 400 kg (the 1000-600 clipped from primary)", secSales)
	}
	secEq, err := eng.GetStream(StreamEquipment, &secScope, "")
	if err != nil {
		t.Fatal(err)
	}
	if !secEq.Equal(NewValue(400, UnitUnit)) {
		t.Errorf("secondary equipment after displacement = %v, want 400 units", secEq)
	}
}

func TestEngineReplaceMovesStreamBetweenSubstances(t *testing.T) {
	eng := newTestEngine(2025, 2025)
	eng.SetStanza("default")
	eng.SetApplication("App")

	if err := eng.SetSubstance("A", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(1, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetStream(StreamDomestic, NewValue(1000, UnitKg), AllYears, nil, true); err != nil {
		t.Fatal(err)
	}

	if err := eng.SetSubstance("B", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetInitialCharge(NewValue(1, "kg / unit"), StreamSales, AllYears); err != nil {
		t.Fatal(err)
	}
	if err := eng.Equals(NewValue(2, "tCO2e / kg"), AllYears); err != nil {
		t.Fatal(err)
	}

	if err := eng.SetSubstance("A", false); err != nil {
		t.Fatal(err)
	}
	if err := eng.Replace(NewValue(300, UnitKg), StreamDomestic, "B", AllYears); err != nil {
		t.Fatal(err)
	}

	aDom, _ := eng.GetStream(StreamDomestic, nil, "")
	if !aDom.Equal(NewValue(700, UnitKg)) {
		t.Errorf("A domestic after replace = %v, want 700 kg", aDom)
	}
	aCons, _ := eng.GetStream(StreamConsumption, nil, "")
	if !aCons.Equal(NewValue(700, UnitTCO2e)) {
		t.Errorf("A consumption after replace = %v, want 700 tCO2e", aCons)
	}

	bScope := Scope{Stanza: "default", Application: "App", Substance: "B", hasStanza: true, hasApplication: true, hasSubstance: true}
	bDom, err := eng.GetStream(StreamDomestic, &bScope, "")
	if err != nil {
		t.Fatal(err)
	}
	if !bDom.Equal(NewValue(300, UnitKg)) {
		t.Errorf("B domestic after replace = %v, want 300 kg", bDom)
	}
	bCons, err := eng.GetStream(StreamConsumption, &bScope, "")
	if err != nil {
		t.Fatal(err)
	}
	if !bCons.Equal(NewValue(600, UnitTCO2e)) {
		t.Errorf("B consumption after replace = %v, want 600 tCO2e (300 kg * 2 tCO2e/kg)", bCons)
	}
}

func TestEngineIncrementYearFailsPastEndYear(t *testing.T) {
	eng := newTestEngine(2025, 2025)
	if err := eng.IncrementYear(); err == nil {
		t.Error("expected an error incrementing past the configured end year")
	}
}

func buildSingleSubstanceProgram() *Program {
	b := NewProgramBuilder()
	b.BeginStanza(StanzaDefault, "")
	b.BeginApplication("Domestic Refrigeration")
	b.BeginSubstance("HFC-134a")
	b.AddCommand(Command{Kind: CmdInitialCharge, Stream: StreamSales, Value: Literal(NewValue(1, "kg / unit")), YearRange: AllYears}, 1, 1)
	b.AddCommand(Command{Kind: CmdEmit, Value: Literal(NewValue(1, "tCO2e / kg")), YearRange: AllYears}, 2, 1)
	b.AddCommand(Command{Kind: CmdSet, Stream: StreamDomestic, Value: Literal(NewValue(100, UnitKg)), YearRange: AllYears}, 3, 1)

	b.BeginStanza(StanzaSimulations, "")
	b.AddScenario(Scenario{Name: "baseline", Years: NewYearRange(2025, 2026), Trials: 1})
	return b.Build()
}

func TestRunExecutesEveryYearAndCarriesPopulationForward(t *testing.T) {
	prog := buildSingleSubstanceProgram()
	if !prog.Compatible {
		t.Fatalf("expected a compatible program, diagnostics: %+v", prog.Diagnostics)
	}

	results, err := Run(prog, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected one result row per simulated year, got %d: %+v", len(results), results)
	}

	y2025, y2026 := results[0], results[1]
	if y2025.Year != 2025 || y2026.Year != 2026 {
		t.Fatalf("result years = %d, %d, want 2025, 2026", y2025.Year, y2026.Year)
	}
	if !y2025.Population.Equal(NewValue(100, UnitUnit)) {
		t.Errorf("2025 population = %v, want 100 units", y2025.Population)
	}
	if !y2026.Population.Equal(NewValue(200, UnitUnit)) {
		t.Errorf("2026 population = %v, want 200 units (100 carried forward + 100 new)", y2026.Population)
	}
	if !y2025.DomesticConsumption.Equal(NewValue(100, UnitTCO2e)) {
		t.Errorf("2025 domestic consumption = %v, want 100 tCO2e", y2025.DomesticConsumption)
	}
	if !y2026.DomesticConsumption.Equal(NewValue(100, UnitTCO2e)) {
		t.Errorf("2026 domestic consumption = %v, want 100 tCO2e (the 'set' command reissues 100 kg each year)", y2026.DomesticConsumption)
	}
}

func TestRunRejectsIncompatibleProgram(t *testing.T) {
	b := NewProgramBuilder()
	b.BeginStanza(StanzaDefault, "")
	b.BeginApplication("A")
	b.BeginSubstance("S")
	// replace is policy-class; placing it in the default stanza flags it
	// incompatible and marks the whole program incompatible.
	b.AddCommand(Command{Kind: CmdReplace, Stream: StreamDomestic, Value: Literal(NewValue(1, UnitKg)), DestSubstance: "T", YearRange: AllYears}, 1, 1)
	b.BeginStanza(StanzaSimulations, "")
	b.AddScenario(Scenario{Name: "x", Years: NewYearRange(2025, 2025), Trials: 1})
	prog := b.Build()

	if _, err := Run(prog, nil); err == nil {
		t.Error("expected Run to reject an incompatible program")
	}
}
