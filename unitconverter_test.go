package hfcsim

import "testing"

func fakeState() *overridingStateProvider {
	return newOverridingStateProvider(nopStateProvider{}).
		WithPopulation(NewValue(1000, UnitUnit)).
		WithVolume(NewValue(500, UnitKg)).
		WithConsumption(NewValue(2000, UnitTCO2e)).
		WithSubstanceConsumption(NewValue(4, UnitTCO2e+" / "+UnitKg)).
		WithAmortizedUnitVolume(NewValue(0.5, UnitKg+" / "+UnitUnit)).
		WithAmortizedUnitConsumption(NewValue(2, UnitTCO2e+" / "+UnitUnit)).
		WithYearsElapsed(NewValue(5, UnitYear)).
		WithPopulationChange(NewValue(100, UnitUnit))
}

func TestConvertIdentity(t *testing.T) {
	c := NewUnitConverter(fakeState())
	got, err := c.Convert(NewValue(10, UnitKg), UnitKg)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewValue(10, UnitKg)) {
		t.Errorf("got %v, want 10 kg", got)
	}
}

func TestConvertKgToMt(t *testing.T) {
	c := NewUnitConverter(fakeState())
	got, err := c.Convert(NewValue(2000, UnitKg), UnitMt)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewValue(2, UnitMt)) {
		t.Errorf("got %v, want 2 mt", got)
	}
}

func TestConvertKgToTCO2e(t *testing.T) {
	c := NewUnitConverter(fakeState())
	got, err := c.Convert(NewValue(10, UnitKg), UnitTCO2e)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewValue(40, UnitTCO2e)) {
		t.Errorf("got %v, want 40 tCO2e (10kg * 4 tCO2e/kg)", got)
	}
}

func TestConvertUnitsToKg(t *testing.T) {
	c := NewUnitConverter(fakeState())
	got, err := c.Convert(NewValue(10, UnitUnit), UnitKg)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewValue(5, UnitKg)) {
		t.Errorf("got %v, want 5 kg (10 units * 0.5 kg/unit)", got)
	}
}

func TestConvertRatio(t *testing.T) {
	c := NewUnitConverter(fakeState())
	got, err := c.Convert(NewValue(10, UnitKg), "kg / unit")
	if err != nil {
		t.Fatal(err)
	}
	want := 10.0 / 1000 // 10 kg total / 1000 units population
	if !got.Equal(NewValue(want, "kg / unit")) {
		t.Errorf("got %v, want %v kg/unit", got, want)
	}
}

func TestConvertRatioDivisionByZero(t *testing.T) {
	c := NewUnitConverter(newOverridingStateProvider(nopStateProvider{}))
	if _, err := c.Convert(NewValue(10, UnitKg), "kg / unit"); err == nil {
		t.Error("expected division-by-zero error when population is 0")
	}
}

func TestConvertPercentOfVolume(t *testing.T) {
	c := NewUnitConverter(fakeState())
	got, err := c.Convert(NewValue(10, UnitPercent), UnitKg)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewValue(50, UnitKg)) {
		t.Errorf("got %v, want 50 kg (10%% of 500 kg volume)", got)
	}
}

func TestConvertUnknownUnitErrors(t *testing.T) {
	c := NewUnitConverter(fakeState())
	if _, err := c.Convert(NewValue(10, UnitKg), "bogus"); err == nil {
		t.Error("expected an error converting to an unrecognized unit")
	}
}
