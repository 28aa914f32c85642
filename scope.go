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

// Level identifies the depth of a Scope/VariableManager context.
type Level int

const (
	LevelGlobal Level = iota
	LevelStanza
	LevelApplication
	LevelSubstance
)

// Reserved names that the engine serves directly and that can never be
// defined, set, or shadowed by a program.
const (
	ReservedYearsElapsed = "yearsElapsed"
	ReservedYearAbsolute = "yearAbsolute"
)

func isReserved(name string) bool {
	return name == ReservedYearsElapsed || name == ReservedYearAbsolute
}

// VariableManager is a four-level lexical variable stack: one independent
// name->value mapping per Level. Descending to a shallower level (towards
// global) is not meaningful; moving to a level clears every context deeper
// than that level and keeps the context at the level itself, the way
// re-entering a stanza starts that stanza's application/substance contexts
// fresh.
type VariableManager struct {
	level     Level
	contexts  [4]map[string]*Value // nil entries mean "not yet allocated"
}

// NewVariableManager returns a manager positioned at the global level with
// an empty global context.
func NewVariableManager() *VariableManager {
	vm := &VariableManager{level: LevelGlobal}
	vm.contexts[LevelGlobal] = map[string]*Value{}
	return vm
}

// Level returns the manager's current context level.
func (vm *VariableManager) Level() Level {
	return vm.level
}

// WithLevel returns a new manager positioned at newLevel. Every context
// strictly below newLevel is cleared (fresh empty maps); global and any
// context at or above newLevel are retained from vm. Contexts between
// vm.level and newLevel that didn't exist yet are allocated empty.
func (vm *VariableManager) WithLevel(newLevel Level) *VariableManager {
	out := &VariableManager{level: newLevel}
	for l := LevelGlobal; l <= LevelSubstance; l++ {
		if l <= newLevel && vm.contexts[l] != nil {
			out.contexts[l] = vm.contexts[l]
		} else {
			out.contexts[l] = map[string]*Value{}
		}
	}
	return out
}

// Define inserts name -> nil at the current level. It fails if name is
// already bound at the current level, or if name is reserved.
func (vm *VariableManager) Define(name string) error {
	if isReserved(name) {
		return &LifecycleError{Reason: "cannot define reserved name " + name}
	}
	ctx := vm.contexts[vm.level]
	if _, ok := ctx[name]; ok {
		return &LifecycleError{Reason: "variable already defined at this level: " + name}
	}
	ctx[name] = nil
	return nil
}

// Set walks from the current level outward to global, updating the first
// level that defines name. It fails if no level defines name.
func (vm *VariableManager) Set(name string, v Value) error {
	if isReserved(name) {
		return &LifecycleError{Reason: "cannot set reserved name " + name}
	}
	for l := vm.level; l >= LevelGlobal; l-- {
		if ctx := vm.contexts[l]; ctx != nil {
			if _, ok := ctx[name]; ok {
				val := v
				ctx[name] = &val
				return nil
			}
		}
	}
	return &UnknownName{Kind: "variable", Name: name}
}

// Get walks from the current level outward to global and returns the
// first defined value for name. A name that is defined but not yet set
// reads as the zero Value. It fails if no level defines name.
func (vm *VariableManager) Get(name string) (Value, error) {
	for l := vm.level; l >= LevelGlobal; l-- {
		if ctx := vm.contexts[l]; ctx != nil {
			if v, ok := ctx[name]; ok {
				if v == nil {
					return Value{}, nil
				}
				return *v, nil
			}
		}
	}
	return Value{}, &UnknownName{Kind: "variable", Name: name}
}

// Scope identifies where in the program the engine is currently reading
// or writing: a (stanza?, application?, substance?) triple forming a
// strict hierarchy (a substance requires an application; an application
// requires a stanza).
type Scope struct {
	Stanza      string
	Application string
	Substance   string
	hasStanza, hasApplication, hasSubstance bool

	vars *VariableManager
}

// NewGlobalScope returns the scope with no stanza/application/substance
// selected, i.e. context level 0.
func NewGlobalScope() Scope {
	return Scope{vars: NewVariableManager()}
}

// Level reports the depth of this scope's non-null components.
func (s Scope) Level() Level {
	switch {
	case s.hasSubstance:
		return LevelSubstance
	case s.hasApplication:
		return LevelApplication
	case s.hasStanza:
		return LevelStanza
	default:
		return LevelGlobal
	}
}

// Variables returns the VariableManager associated with this scope.
func (s Scope) Variables() *VariableManager {
	return s.vars
}

// WithStanza returns a new scope selecting stanza, clearing any
// application/substance selection and their variable contexts.
func (s Scope) WithStanza(stanza string) Scope {
	return Scope{
		Stanza: stanza, hasStanza: true,
		vars: s.vars.WithLevel(LevelStanza),
	}
}

// WithApplication returns a new scope selecting application within the
// current stanza. It requires a stanza to already be selected.
func (s Scope) WithApplication(application string) (Scope, error) {
	if !s.hasStanza {
		return Scope{}, &LifecycleError{Reason: "cannot select an application without a stanza"}
	}
	return Scope{
		Stanza: s.Stanza, hasStanza: true,
		Application: application, hasApplication: true,
		vars: s.vars.WithLevel(LevelApplication),
	}, nil
}

// WithSubstance returns a new scope selecting substance within the
// current application. It requires an application to already be
// selected.
func (s Scope) WithSubstance(substance string) (Scope, error) {
	if !s.hasApplication {
		return Scope{}, &LifecycleError{Reason: "cannot select a substance without an application"}
	}
	return Scope{
		Stanza: s.Stanza, hasStanza: true,
		Application: s.Application, hasApplication: true,
		Substance: substance, hasSubstance: true,
		vars: s.vars.WithLevel(LevelSubstance),
	}, nil
}

// HasApplication reports whether this scope has an application selected.
func (s Scope) HasApplication() bool { return s.hasApplication }

// HasSubstance reports whether this scope has a substance selected.
func (s Scope) HasSubstance() bool { return s.hasSubstance }
