package hfcsim

import "testing"

func TestNewYearRangeOrdering(t *testing.T) {
	r := NewYearRange(2030, 2020)
	if r.Start != 2020 || r.End != 2030 {
		t.Errorf("NewYearRange(2030, 2020) = %+v, want swapped bounds", r)
	}
}

func TestNewYearRangeSentinels(t *testing.T) {
	r := NewYearRange(YearBeginning, 2020)
	if r.Start != YearBeginning || r.End != 2020 {
		t.Errorf("sentinel bound should not be swapped: %+v", r)
	}
}

func TestYearRangeContains(t *testing.T) {
	r := NewYearRange(2020, 2025)
	cases := []struct {
		year int
		want bool
	}{
		{2019, false},
		{2020, true},
		{2022, true},
		{2025, true},
		{2026, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.year); got != c.want {
			t.Errorf("Contains(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestAllYearsContainsEverything(t *testing.T) {
	if !AllYears.Contains(1900) || !AllYears.Contains(3000) {
		t.Error("AllYears should contain any year")
	}
}
