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

// StanzaKind identifies one of the four top-level program sections.
type StanzaKind int

const (
	StanzaAbout StanzaKind = iota
	StanzaDefault
	StanzaPolicy
	StanzaSimulations
)

// Diagnostic reports a problem found while translating source text,
// independent of whether it aborted translation (ParseError-class) or
// merely marked a command/stanza incompatible.
type Diagnostic struct {
	Line, Col int
	Msg       string
}

// SubstanceDef is a named list of commands, either a `default` stanza
// substance definition or a `policy` stanza substance modification.
type SubstanceDef struct {
	Name     string
	Commands []Command
}

// ApplicationDef groups substances under a named application, inside one
// stanza.
type ApplicationDef struct {
	Name       string
	Substances []SubstanceDef
}

// Stanza is one `start ... end` section of a program. About stanzas carry
// no structured content (Raw holds the opaque source text); default and
// policy stanzas carry Applications; simulations stanzas carry Scenarios.
type Stanza struct {
	Kind         StanzaKind
	PolicyName   string // set when Kind == StanzaPolicy
	Raw          string // set when Kind == StanzaAbout
	Applications []ApplicationDef
	Scenarios    []Scenario
}

// Scenario binds a simulation run to a year range, an ordered list of
// policies, and a trial count.
type Scenario struct {
	Name     string
	Policies []string
	Years    YearRange
	Trials   int
}

// Program is the immutable, parsed representation of a DSL source file.
// Diagnostics collects every incompatibility found while building it;
// Compatible is false if the program (or any part of it) cannot be
// executed through this object model.
type Program struct {
	Stanzas     []Stanza
	Diagnostics []Diagnostic
	Compatible  bool
}

// DefaultStanza returns the program's single `default` stanza, if any.
func (p *Program) DefaultStanza() (*Stanza, bool) {
	for i := range p.Stanzas {
		if p.Stanzas[i].Kind == StanzaDefault {
			return &p.Stanzas[i], true
		}
	}
	return nil, false
}

// Policy returns the named `policy` stanza, if any.
func (p *Program) Policy(name string) (*Stanza, bool) {
	for i := range p.Stanzas {
		if p.Stanzas[i].Kind == StanzaPolicy && p.Stanzas[i].PolicyName == name {
			return &p.Stanzas[i], true
		}
	}
	return nil, false
}

// Simulations returns every scenario declared across all `simulations`
// stanzas, in declaration order.
func (p *Program) Simulations() []Scenario {
	var out []Scenario
	for _, s := range p.Stanzas {
		if s.Kind == StanzaSimulations {
			out = append(out, s.Scenarios...)
		}
	}
	return out
}

// ProgramBuilder incrementally assembles a Program, enforcing command
// placement rules (§4.5) and collecting diagnostics rather than aborting
// on a recoverable violation. One builder constructs one Program.
type ProgramBuilder struct {
	prog       Program
	stanza     *Stanza
	app        *ApplicationDef
	sub        *SubstanceDef
	seenOnce   map[string]bool // per-substance guard against duplicate "only one instance" commands
}

// NewProgramBuilder returns an empty builder.
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{prog: Program{Compatible: true}}
}

// BeginStanza starts a new top-level stanza.
func (b *ProgramBuilder) BeginStanza(kind StanzaKind, policyName string) {
	b.prog.Stanzas = append(b.prog.Stanzas, Stanza{Kind: kind, PolicyName: policyName})
	b.stanza = &b.prog.Stanzas[len(b.prog.Stanzas)-1]
	b.app = nil
	b.sub = nil
}

// SetAboutRaw records the opaque text of an `about` stanza.
func (b *ProgramBuilder) SetAboutRaw(raw string) {
	if b.stanza != nil {
		b.stanza.Raw = raw
	}
}

// BeginApplication starts a new application within the current stanza.
func (b *ProgramBuilder) BeginApplication(name string) {
	b.stanza.Applications = append(b.stanza.Applications, ApplicationDef{Name: name})
	b.app = &b.stanza.Applications[len(b.stanza.Applications)-1]
	b.sub = nil
}

// BeginSubstance starts a new substance within the current application.
func (b *ProgramBuilder) BeginSubstance(name string) {
	b.app.Substances = append(b.app.Substances, SubstanceDef{Name: name})
	b.sub = &b.app.Substances[len(b.app.Substances)-1]
	b.seenOnce = map[string]bool{}
}

// onceOnly names commands that the spec permits only a single instance of
// per substance body (duplicates are rejected, not executed twice).
var onceOnly = map[CommandKind]bool{
	CmdInitialCharge: false, // initial charge may be given per-substream, so not a hard single-instance rule
	CmdRecharge:      true,
	CmdRetire:        false,
}

// AddCommand appends cmd to the current substance, enforcing §4.5
// placement rules: a definition-class command is only legal in the
// default stanza, a policy-class command only in a policy stanza.
// Violations don't abort the build; they flag the command incompatible
// and record a Diagnostic, and mark the whole Program incompatible, so a
// caller can still inspect/round-trip the source.
func (b *ProgramBuilder) AddCommand(cmd Command, line, col int) {
	class := cmd.Kind.Class()
	switch {
	case class == ClassDefinition && b.stanza.Kind != StanzaDefault:
		cmd.Incompatible = cmd.Kind.String() + " is a definition-class command, not legal outside default"
	case class == ClassPolicy && b.stanza.Kind != StanzaPolicy:
		cmd.Incompatible = cmd.Kind.String() + " is a policy-class command, not legal outside policy"
	}
	if cmd.Incompatible == "" && onceOnly[cmd.Kind] {
		key := cmd.Kind.String()
		if b.seenOnce[key] {
			cmd.Incompatible = cmd.Kind.String() + " may only appear once per substance"
		}
		b.seenOnce[key] = true
	}
	if cmd.Incompatible != "" {
		b.prog.Compatible = false
		b.prog.Diagnostics = append(b.prog.Diagnostics, Diagnostic{Line: line, Col: col, Msg: cmd.Incompatible})
	}
	b.sub.Commands = append(b.sub.Commands, cmd)
}

// AddScenario appends a scenario to the current (simulations) stanza.
func (b *ProgramBuilder) AddScenario(s Scenario) {
	b.stanza.Scenarios = append(b.stanza.Scenarios, s)
}

// Flag marks the program incompatible for a reason not tied to a single
// command (e.g. a trial count the object model can't represent).
func (b *ProgramBuilder) Flag(line, col int, reason string) {
	b.prog.Compatible = false
	b.prog.Diagnostics = append(b.prog.Diagnostics, Diagnostic{Line: line, Col: col, Msg: reason})
}

// Build returns the assembled Program.
func (b *ProgramBuilder) Build() *Program {
	return &b.prog
}
