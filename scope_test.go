package hfcsim

import "testing"

func TestVariableManagerDefineSetGet(t *testing.T) {
	vm := NewVariableManager()
	if err := vm.Define("x"); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := vm.Set("x", NewValue(5, UnitKg)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := vm.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(NewValue(5, UnitKg)) {
		t.Errorf("Get(x) = %v, want 5 kg", got)
	}
}

func TestVariableManagerDefineTwiceFails(t *testing.T) {
	vm := NewVariableManager()
	if err := vm.Define("x"); err != nil {
		t.Fatal(err)
	}
	if err := vm.Define("x"); err == nil {
		t.Error("redefining x at the same level should fail")
	}
}

func TestVariableManagerReservedNames(t *testing.T) {
	vm := NewVariableManager()
	if err := vm.Define(ReservedYearsElapsed); err == nil {
		t.Error("defining a reserved name should fail")
	}
}

func TestVariableManagerInheritsFromOuterLevel(t *testing.T) {
	vm := NewVariableManager()
	if err := vm.Define("g"); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set("g", NewValue(1, UnitKg)); err != nil {
		t.Fatal(err)
	}
	inner := vm.WithLevel(LevelApplication)
	got, err := inner.Get("g")
	if err != nil {
		t.Fatalf("inner scope should see global variable: %v", err)
	}
	if !got.Equal(NewValue(1, UnitKg)) {
		t.Errorf("got %v, want 1 kg", got)
	}
}

func TestVariableManagerWithLevelClearsDeeperContexts(t *testing.T) {
	vm := NewVariableManager()
	app := vm.WithLevel(LevelApplication)
	if err := app.Define("a"); err != nil {
		t.Fatal(err)
	}
	sub := app.WithLevel(LevelSubstance)
	if _, err := sub.Get("a"); err != nil {
		t.Fatalf("substance level should still see application variable: %v", err)
	}

	reentered := vm.WithLevel(LevelApplication)
	if _, err := reentered.Get("a"); err == nil {
		t.Error("re-entering the application level should start with a fresh context")
	}
}

func TestScopeHierarchy(t *testing.T) {
	g := NewGlobalScope()
	if g.Level() != LevelGlobal {
		t.Fatalf("global scope level = %v", g.Level())
	}

	s := g.WithStanza("policy-a")
	if s.Level() != LevelStanza || s.Stanza != "policy-a" {
		t.Fatalf("WithStanza result = %+v", s)
	}

	if _, err := g.WithApplication("domestic AC"); err == nil {
		t.Error("selecting an application without a stanza should fail")
	}

	a, err := s.WithApplication("domestic AC")
	if err != nil {
		t.Fatalf("WithApplication: %v", err)
	}
	if !a.HasApplication() || a.Application != "domestic AC" {
		t.Fatalf("WithApplication result = %+v", a)
	}

	if _, err := s.WithSubstance("HFC-134a"); err == nil {
		t.Error("selecting a substance without an application should fail")
	}

	sub, err := a.WithSubstance("HFC-134a")
	if err != nil {
		t.Fatalf("WithSubstance: %v", err)
	}
	if !sub.HasSubstance() || sub.Level() != LevelSubstance {
		t.Fatalf("WithSubstance result = %+v", sub)
	}
}
