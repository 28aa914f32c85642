package hfcsim

import "testing"

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"identical", NewValue(1, UnitKg), NewValue(1, UnitKg), true},
		{"units alias", NewValue(5, UnitUnit), NewValue(5, UnitUnits), true},
		{"different magnitude", NewValue(1, UnitKg), NewValue(2, UnitKg), false},
		{"different unit", NewValue(1, UnitKg), NewValue(1, UnitMt), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestSplitRatio(t *testing.T) {
	num, den, ok := SplitRatio("tCO2e / kg")
	if !ok || num != "tCO2e" || den != "kg" {
		t.Errorf("SplitRatio(\"tCO2e / kg\") = %q, %q, %v", num, den, ok)
	}
	if _, _, ok := SplitRatio("kg"); ok {
		t.Error("SplitRatio(\"kg\") should not be a ratio")
	}
	if _, _, ok := SplitRatio("/kg"); ok {
		t.Error("SplitRatio(\"/kg\") should be rejected: empty numerator")
	}
}

func TestIsPrimitiveUnit(t *testing.T) {
	for _, u := range []string{UnitKg, UnitMt, UnitTCO2e, UnitUnit, UnitUnits, UnitKwh, UnitYear, UnitYears, UnitPercent} {
		if !IsPrimitiveUnit(u) {
			t.Errorf("IsPrimitiveUnit(%q) = false, want true", u)
		}
	}
	if IsPrimitiveUnit("tCO2e / kg") {
		t.Error("ratio unit should not be reported as primitive")
	}
}

func TestWithMagnitude(t *testing.T) {
	v := NewValue(3, UnitKg).WithMagnitude(9)
	if v.Magnitude != 9 || v.Unit != UnitKg {
		t.Errorf("WithMagnitude result = %+v", v)
	}
}
