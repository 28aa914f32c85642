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

package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spatialmodel/hfcsim"
)

// streamAliases maps a grammar stream keyword to its StreamKeeper name.
// "export" has no dedicated stream in the core data model; it is a plain
// alias that resolves to StreamImport here, so a command on "export" reads
// and writes the import stream itself (nothing is netted or negated).
// See DESIGN.md's Open Questions log for the reasoning.
var streamAliases = map[string]string{
	"domestic":       hfcsim.StreamDomestic,
	"import":         hfcsim.StreamImport,
	"export":         hfcsim.StreamImport,
	"sales":          hfcsim.StreamSales,
	"recycle":        hfcsim.StreamRecycle,
	"consumption":    hfcsim.StreamConsumption,
	"equipment":      hfcsim.StreamEquipment,
	"priorequipment": hfcsim.StreamPriorEquipment,
	"newequipment":   hfcsim.StreamNewEquipment,
}

func resolveStream(name string) (string, bool) {
	s, ok := streamAliases[strings.ToLower(name)]
	return s, ok
}

// Parser builds an hfcsim.Program from a token stream produced by Lexer,
// collecting Diagnostics rather than aborting on most grammar violations —
// grounded on the teacher's ProgramBuilder-facing translation style
// (io.go's config-driven Outputter construction tolerates partial input
// and reports problems per-field rather than all-or-nothing).
type Parser struct {
	lex   *Lexer
	buf   []Token
	diags []Diagnostic
	fatal bool
	b     *hfcsim.ProgramBuilder
}

// Translate lexes and parses src, returning the resulting Program (always
// non-nil, though Program.Compatible may be false) and any diagnostics
// collected along the way.
func Translate(src string) (*hfcsim.Program, []Diagnostic) {
	p := &Parser{lex: NewLexer(src), b: hfcsim.NewProgramBuilder()}
	p.parseProgram()
	return p.b.Build(), p.diags
}

func (p *Parser) fill(n int) {
	for len(p.buf) <= n {
		tok, err := p.lex.Next()
		if err != nil {
			if le, ok := err.(*LexError); ok {
				p.diags = append(p.diags, Diagnostic{Line: le.Line, Col: le.Col, Msg: le.Msg, Fatal: true})
			}
			p.fatal = true
			tok = Token{Kind: TokEOF}
		}
		p.buf = append(p.buf, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
}

func (p *Parser) cur() Token {
	p.fill(0)
	return p.buf[0]
}

func (p *Parser) peekAt(n int) Token {
	p.fill(n)
	if n >= len(p.buf) {
		return p.buf[len(p.buf)-1]
	}
	return p.buf[n]
}

func (p *Parser) advance() Token {
	t := p.cur()
	if len(p.buf) > 0 {
		p.buf = p.buf[1:]
	}
	return t
}

func (p *Parser) errf(tok Token, format string, args ...interface{}) {
	p.diags = append(p.diags, Diagnostic{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...), Fatal: true})
	p.fatal = true
}

func (p *Parser) isIdent(word string) bool {
	t := p.cur()
	return t.Kind == TokIdent && strings.EqualFold(t.Text, word)
}

func (p *Parser) peekIsIdent(n int, word string) bool {
	t := p.peekAt(n)
	return t.Kind == TokIdent && strings.EqualFold(t.Text, word)
}

// expectIdent consumes the current token if it is the identifier word
// (case-insensitive), else records a diagnostic.
func (p *Parser) expectIdent(word string) bool {
	if p.isIdent(word) {
		p.advance()
		return true
	}
	p.errf(p.cur(), "expected %q, got %q", word, p.cur().Text)
	return false
}

func (p *Parser) expectString() (string, bool) {
	if p.cur().Kind == TokString {
		t := p.advance()
		return t.Text, true
	}
	p.errf(p.cur(), "expected a quoted string, got %q", p.cur().Text)
	return "", false
}

// parseProgram is the top-level stanza loop.
func (p *Parser) parseProgram() {
	for p.cur().Kind != TokEOF && !p.fatal {
		if !p.expectIdent("start") {
			return
		}
		kindTok := p.cur()
		switch strings.ToLower(kindTok.Text) {
		case "about":
			p.advance()
			p.parseAbout()
		case "default":
			p.advance()
			p.b.BeginStanza(hfcsim.StanzaDefault, "")
			p.parseApplications()
			p.expectIdent("end")
			p.expectIdent("default")
		case "policy":
			p.advance()
			name, ok := p.expectString()
			if !ok {
				return
			}
			p.b.BeginStanza(hfcsim.StanzaPolicy, name)
			p.parseApplications()
			p.expectIdent("end")
			p.expectIdent("policy")
		case "simulations":
			p.advance()
			p.b.BeginStanza(hfcsim.StanzaSimulations, "")
			p.parseScenarios()
			p.expectIdent("end")
			p.expectIdent("simulations")
		default:
			p.errf(kindTok, "unknown stanza kind %q", kindTok.Text)
			return
		}
	}
}

// parseAbout captures the raw source text of an about stanza verbatim,
// without interpreting it, up to (not including) its matching "end about".
// The body is scanned line by line straight from the lexer's source, so it
// may hold any characters; it ends at the first line holding only "end about".
func (p *Parser) parseAbout() {
	rawStart := p.lex.pos
	for p.lex.pos < len(p.lex.src) {
		lineStart, lineCol := p.lex.pos, p.lex.col
		for p.lex.pos < len(p.lex.src) && p.lex.peek() != '\n' {
			p.lex.advance()
		}
		if strings.EqualFold(strings.Join(strings.Fields(p.lex.Slice(lineStart, p.lex.pos)), " "), "end about") {
			p.lex.pos, p.lex.col = lineStart, lineCol // "end about" is lexed as tokens below
			break
		}
		if p.lex.pos < len(p.lex.src) {
			p.lex.advance()
		}
	}
	if p.lex.pos >= len(p.lex.src) {
		p.errf(p.cur(), "unterminated about stanza")
		return
	}
	rawEnd := p.lex.pos
	raw := strings.TrimSpace(p.lex.Slice(rawStart, rawEnd))
	p.b.BeginStanza(hfcsim.StanzaAbout, "")
	p.b.SetAboutRaw(raw)
	p.expectIdent("end")
	p.expectIdent("about")
}

// parseApplications parses zero or more `define|modify application "Name"
// ... end application` blocks, stopping once the next token is `end`.
func (p *Parser) parseApplications() {
	for !p.isIdent("end") && !p.fatal && p.cur().Kind != TokEOF {
		if !p.isIdent("define") && !p.isIdent("modify") {
			p.errf(p.cur(), "expected 'define application' or 'modify application', got %q", p.cur().Text)
			return
		}
		p.advance()
		if !p.expectIdent("application") {
			return
		}
		name, ok := p.expectString()
		if !ok {
			return
		}
		p.b.BeginApplication(name)
		p.parseSubstances()
		p.expectIdent("end")
		p.expectIdent("application")
	}
}

// parseSubstances parses zero or more `define|modify substance "Name" ...
// end substance` blocks.
func (p *Parser) parseSubstances() {
	for !p.isIdent("end") && !p.fatal && p.cur().Kind != TokEOF {
		if !p.isIdent("define") && !p.isIdent("modify") {
			p.errf(p.cur(), "expected 'define substance' or 'modify substance', got %q", p.cur().Text)
			return
		}
		p.advance()
		if !p.expectIdent("substance") {
			return
		}
		name, ok := p.expectString()
		if !ok {
			return
		}
		p.b.BeginSubstance(name)
		p.parseCommands()
		p.expectIdent("end")
		p.expectIdent("substance")
	}
}

var commandKeywords = map[string]bool{
	"initial": true, "emit": true, "equals": true, "recharge": true,
	"set": true, "change": true, "retire": true, "cap": true, "floor": true,
	"recover": true, "replace": true, "define": true,
}

// parseCommands parses a substance body: a sequence of commands until
// `end substance`.
func (p *Parser) parseCommands() {
	for !p.fatal && p.cur().Kind != TokEOF {
		t := p.cur()
		if t.Kind != TokIdent || !commandKeywords[strings.ToLower(t.Text)] {
			break
		}
		cmd, line, col, ok := p.parseCommand()
		if !ok {
			return
		}
		p.b.AddCommand(cmd, line, col)
	}
}

func (p *Parser) parseCommand() (hfcsim.Command, int, int, bool) {
	tok := p.cur()
	line, col := tok.Line, tok.Col
	word := strings.ToLower(tok.Text)
	p.advance()

	var cmd hfcsim.Command
	switch word {
	case "initial":
		if !p.expectIdent("charge") || !p.expectIdent("with") {
			return cmd, line, col, false
		}
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		if !p.expectIdent("for") {
			return cmd, line, col, false
		}
		streamTok := p.cur()
		stream, ok := resolveStream(streamTok.Text)
		if !ok {
			p.errf(streamTok, "unknown stream %q", streamTok.Text)
			return cmd, line, col, false
		}
		p.advance()
		cmd = hfcsim.Command{Kind: hfcsim.CmdInitialCharge, Stream: stream, Value: val}

	case "emit", "equals":
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdEmit, Value: val}

	case "recharge":
		pop, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		if !p.expectIdent("with") {
			return cmd, line, col, false
		}
		intensity, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdRecharge, Value: pop, Value2: intensity}

	case "set":
		streamTok := p.cur()
		stream, ok := resolveStream(streamTok.Text)
		if !ok {
			p.errf(streamTok, "unknown stream %q", streamTok.Text)
			return cmd, line, col, false
		}
		p.advance()
		if !p.expectIdent("to") {
			return cmd, line, col, false
		}
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdSet, Stream: stream, Value: val}

	case "change":
		streamTok := p.cur()
		stream, ok := resolveStream(streamTok.Text)
		if !ok {
			p.errf(streamTok, "unknown stream %q", streamTok.Text)
			return cmd, line, col, false
		}
		p.advance()
		if !p.expectIdent("by") {
			return cmd, line, col, false
		}
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdChange, Stream: stream, Value: val}

	case "retire":
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdRetire, Value: val}

	case "cap", "floor":
		streamTok := p.cur()
		stream, ok := resolveStream(streamTok.Text)
		if !ok {
			p.errf(streamTok, "unknown stream %q", streamTok.Text)
			return cmd, line, col, false
		}
		p.advance()
		if !p.expectIdent("to") {
			return cmd, line, col, false
		}
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		kind := hfcsim.CmdCap
		if word == "floor" {
			kind = hfcsim.CmdFloor
		}
		cmd = hfcsim.Command{Kind: kind, Stream: stream, Value: val}
		if p.isIdent("displacing") {
			p.advance()
			target, ok := p.parseDisplaceTarget()
			if !ok {
				return cmd, line, col, false
			}
			cmd.DisplaceTarget = target
		}

	case "recover":
		recovery, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		if !p.expectIdent("with") {
			return cmd, line, col, false
		}
		yield, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		if !p.expectIdent("reuse") {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdRecycle, Value: recovery, Value2: yield}
		if p.isIdent("displacing") {
			p.advance()
			disp, ok := p.parseQuantity()
			if !ok {
				return cmd, line, col, false
			}
			cmd.Displacement = disp
		}

	case "replace":
		amount, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		if !p.expectIdent("of") {
			return cmd, line, col, false
		}
		streamTok := p.cur()
		stream, ok := resolveStream(streamTok.Text)
		if !ok {
			p.errf(streamTok, "unknown stream %q", streamTok.Text)
			return cmd, line, col, false
		}
		p.advance()
		if !p.expectIdent("with") {
			return cmd, line, col, false
		}
		dest, ok := p.expectString()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdReplace, Stream: stream, Value: amount, DestSubstance: dest}

	case "define":
		if !p.expectIdent("variable") {
			return cmd, line, col, false
		}
		nameTok := p.cur()
		if nameTok.Kind != TokIdent {
			p.errf(nameTok, "expected a variable name, got %q", nameTok.Text)
			return cmd, line, col, false
		}
		p.advance()
		if !p.expectIdent("as") {
			return cmd, line, col, false
		}
		val, ok := p.parseQuantity()
		if !ok {
			return cmd, line, col, false
		}
		cmd = hfcsim.Command{Kind: hfcsim.CmdDefineVar, VarName: nameTok.Text, Value: val}

	default:
		p.errf(tok, "unknown command %q", tok.Text)
		return cmd, line, col, false
	}

	yr, ok := p.parseOptionalDuring()
	if !ok {
		return cmd, line, col, false
	}
	cmd.YearRange = yr
	return cmd, line, col, true
}

func (p *Parser) parseDisplaceTarget() (*hfcsim.DisplaceTarget, bool) {
	if p.cur().Kind == TokString {
		sub, _ := p.expectString()
		return &hfcsim.DisplaceTarget{Substance: sub}, true
	}
	if stream, ok := resolveStream(p.cur().Text); ok {
		p.advance()
		return &hfcsim.DisplaceTarget{Stream: stream}, true
	}
	p.errf(p.cur(), "expected a stream name or quoted substance name after 'displacing'")
	return nil, false
}

// parseOptionalDuring parses `during year N`, `during years A to B`, with
// either bound optionally `beginning`/`onwards`. Absent a during clause,
// the command applies every year (hfcsim.AllYears).
func (p *Parser) parseOptionalDuring() (hfcsim.YearRange, bool) {
	if !p.isIdent("during") {
		return hfcsim.AllYears, true
	}
	p.advance()
	if p.isIdent("year") {
		p.advance()
		n, ok := p.parseIntYear()
		if !ok {
			return hfcsim.YearRange{}, false
		}
		return hfcsim.NewYearRange(n, n), true
	}
	if !p.expectIdent("years") {
		return hfcsim.YearRange{}, false
	}
	a, ok := p.parseIntYear()
	if !ok {
		return hfcsim.YearRange{}, false
	}
	if !p.expectIdent("to") {
		return hfcsim.YearRange{}, false
	}
	b, ok := p.parseIntYear()
	if !ok {
		return hfcsim.YearRange{}, false
	}
	return hfcsim.NewYearRange(a, b), true
}

func (p *Parser) parseIntYear() (int, bool) {
	if p.isIdent("beginning") {
		p.advance()
		return hfcsim.YearBeginning, true
	}
	if p.isIdent("onwards") {
		p.advance()
		return hfcsim.YearOnwards, true
	}
	if p.cur().Kind == TokNumber {
		n := p.cur().Num
		p.advance()
		return int(n), true
	}
	p.errf(p.cur(), "expected a year, 'beginning', or 'onwards', got %q", p.cur().Text)
	return 0, false
}

// parseScenarios parses `simulate "name" [using "p" [then "q" ...]] from
// years A to B [across N trials]` entries until `end`.
func (p *Parser) parseScenarios() {
	for p.isIdent("simulate") && !p.fatal {
		p.advance()
		name, ok := p.expectString()
		if !ok {
			return
		}
		var policies []string
		if p.isIdent("using") {
			p.advance()
			pol, ok := p.expectString()
			if !ok {
				return
			}
			policies = append(policies, pol)
			for p.isIdent("then") {
				p.advance()
				pol, ok := p.expectString()
				if !ok {
					return
				}
				policies = append(policies, pol)
			}
		}
		if !p.expectIdent("from") || !p.expectIdent("years") {
			return
		}
		a, ok := p.parseIntYear()
		if !ok {
			return
		}
		if !p.expectIdent("to") {
			return
		}
		b, ok := p.parseIntYear()
		if !ok {
			return
		}
		trials := 1
		if p.isIdent("across") {
			p.advance()
			if p.cur().Kind != TokNumber {
				p.errf(p.cur(), "expected a trial count, got %q", p.cur().Text)
				return
			}
			trials = int(p.cur().Num)
			p.advance()
			if !p.expectIdent("trials") {
				return
			}
		}
		p.b.AddScenario(hfcsim.Scenario{Name: name, Policies: policies, Years: hfcsim.NewYearRange(a, b), Trials: trials})
	}
}

// parseQuantity parses a magnitude expression (arithmetic over numbers,
// variables, parenthesization, `if/else/endif`, and function calls)
// followed by a unit — a primitive or `A / B` ratio — compiling it into an
// hfcsim.Expr via govaluate.
func (p *Parser) parseQuantity() (hfcsim.Expr, bool) {
	magSrc, ok := p.collectExpressionSource()
	if !ok {
		return nil, false
	}
	unit, ok := p.parseUnit()
	if !ok {
		return nil, false
	}
	if magSrc == "" {
		magSrc = "1"
	}
	ce, err := compileExpr(magSrc, unit)
	if err != nil {
		p.errf(p.cur(), "%v", err)
		return nil, false
	}
	return ce, true
}

// collectExpressionSource greedily consumes tokens that make up the
// arithmetic/conditional portion of an operand, translating them into
// govaluate syntax, and stops at the first token that starts a unit.
// `X if C else Y endif` lowers to govaluate's ternary `(C) ? (X) : (Y)`; the
// lowering expects the conditional to span the whole operand (or the whole
// argument of sample/limit), and conditionals nested inside parentheses or
// inside another conditional are not supported.
func (p *Parser) collectExpressionSource() (string, bool) {
	var sb strings.Builder
	var thenSrc string
	depth := 0
	for {
		t := p.cur()
		switch t.Kind {
		case TokNumber:
			sb.WriteString(strconv.FormatFloat(t.Num, 'f', -1, 64))
			p.advance()
			continue
		case TokPercentSign:
			// '%' always closes the magnitude expression: it is the unit.
			return sb.String(), true
		case TokPlus, TokMinus, TokStar, TokSlash, TokCaret,
			TokEq, TokNeq, TokLt, TokGt, TokLe, TokGe:
			if t.Kind == TokSlash && depth == 0 && !p.looksLikeOperator() {
				// a bare '/' at depth 0 that isn't between two operands
				// starts the unit clause (e.g. "2 tCO2e / kg").
				return sb.String(), true
			}
			op := t.Text
			if t.Kind == TokCaret {
				op = "**" // govaluate's power operator; its '^' is bitwise xor
			}
			sb.WriteString(" " + op + " ")
			p.advance()
			continue
		case TokLParen:
			depth++
			sb.WriteString("(")
			p.advance()
			continue
		case TokRParen:
			if depth == 0 {
				return sb.String(), true
			}
			depth--
			sb.WriteString(")")
			p.advance()
			continue
		case TokComma:
			sb.WriteString(",")
			p.advance()
			continue
		case TokIdent:
			low := strings.ToLower(t.Text)
			switch low {
			case "if":
				thenSrc = sb.String()
				sb.Reset()
				p.advance()
				continue
			case "else":
				condSrc := sb.String()
				sb.Reset()
				sb.WriteString("(" + condSrc + ") ? (" + thenSrc + ") : (")
				p.advance()
				continue
			case "endif":
				sb.WriteString(")")
				p.advance()
				continue
			case "sample":
				fn, ok := p.parseSample()
				if !ok {
					return "", false
				}
				sb.WriteString(fn)
				continue
			case "limit":
				fn, ok := p.parseLimit()
				if !ok {
					return "", false
				}
				sb.WriteString(fn)
				continue
			}
			if unitWords[low] || low == "%" {
				return sb.String(), true
			}
			// Otherwise this identifier is a variable reference, or the
			// start of a following keyword (for/to/by/during/...), which
			// also ends the expression.
			if isOperandVariable(low) {
				sb.WriteString(t.Text)
				p.advance()
				continue
			}
			return sb.String(), true
		default:
			return sb.String(), true
		}
	}
}

// looksLikeOperator reports whether the '/' at the cursor is most likely
// a division operator (preceded by a closing paren/number/ident and
// followed by another numeric/paren/ident token) as opposed to the start
// of a ratio unit. In this grammar a '/' always starts the unit clause
// once the magnitude expression is syntactically complete, which is every
// call site in practice, so this conservatively always returns false;
// kept as a named hook in case the grammar grows infix division.
func (p *Parser) looksLikeOperator() bool {
	return false
}

// isOperandVariable reports whether low is a variable identifier rather
// than a reserved keyword that terminates an expression. It excludes the
// the grammar's structural keywords so the parser doesn't swallow them as
// phantom variable references.
func isOperandVariable(low string) bool {
	switch low {
	case "for", "to", "by", "during", "with", "of", "displacing", "reuse",
		"then", "from", "using", "across", "trials", "year", "years",
		"beginning", "onwards", "end":
		return false
	}
	return true
}

func (p *Parser) parseSample() (string, bool) {
	p.advance() // "sample"
	if p.isIdent("normally") {
		p.advance()
		if !p.expectIdent("from") || !p.expectIdent("mean") || !p.expectIdent("of") {
			return "", false
		}
		mean, ok := p.collectExpressionSource()
		if !ok {
			return "", false
		}
		if !p.expectIdent("std") || !p.expectIdent("of") {
			return "", false
		}
		std, ok := p.collectExpressionSource()
		if !ok {
			return "", false
		}
		return fmt.Sprintf("sampleNormally(%s, %s)", mean, std), true
	}
	if p.isIdent("uniformly") {
		p.advance()
		if !p.expectIdent("from") {
			return "", false
		}
		lo, ok := p.collectExpressionSource()
		if !ok {
			return "", false
		}
		if !p.expectIdent("to") {
			return "", false
		}
		hi, ok := p.collectExpressionSource()
		if !ok {
			return "", false
		}
		return fmt.Sprintf("sampleUniformly(%s, %s)", lo, hi), true
	}
	p.errf(p.cur(), "expected 'normally' or 'uniformly' after 'sample', got %q", p.cur().Text)
	return "", false
}

func (p *Parser) parseLimit() (string, bool) {
	p.advance() // "limit"
	operand, ok := p.collectExpressionSource()
	if !ok {
		return "", false
	}
	if !p.expectIdent("to") {
		return "", false
	}
	lo, ok := p.collectExpressionSource()
	if !ok {
		return "", false
	}
	if !p.expectIdent("to") {
		return "", false
	}
	hi, ok := p.collectExpressionSource()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("limit(%s, %s, %s)", operand, lo, hi), true
}

// parseUnit parses a primitive unit or an `A / B` ratio, where A and B are
// each primitive unit words, or a trailing '%'.
func (p *Parser) parseUnit() (string, bool) {
	if p.cur().Kind == TokPercentSign {
		p.advance()
		return hfcsim.UnitPercent, true
	}
	a, ok := p.parseUnitWord()
	if !ok {
		return "", false
	}
	if p.cur().Kind == TokSlash {
		p.advance()
		b, ok := p.parseUnitWord()
		if !ok {
			return "", false
		}
		return a + " / " + b, true
	}
	return a, true
}

func (p *Parser) parseUnitWord() (string, bool) {
	t := p.cur()
	if t.Kind == TokPercentSign {
		p.advance()
		return hfcsim.UnitPercent, true
	}
	if t.Kind != TokIdent || !unitWords[strings.ToLower(t.Text)] {
		p.errf(t, "expected a unit, got %q", t.Text)
		return "", false
	}
	p.advance()
	switch strings.ToLower(t.Text) {
	case "kg":
		return hfcsim.UnitKg, true
	case "mt":
		return hfcsim.UnitMt, true
	case "tco2e":
		return hfcsim.UnitTCO2e, true
	case "unit":
		return hfcsim.UnitUnit, true
	case "units":
		return hfcsim.UnitUnits, true
	case "kwh":
		return hfcsim.UnitKwh, true
	case "year":
		return hfcsim.UnitYear, true
	case "years":
		return hfcsim.UnitYears, true
	}
	return t.Text, true
}
