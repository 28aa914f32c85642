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

// Package lang implements the lexer, parser, and expression translator for
// the modelling language: source text in, an hfcsim.Program out.
package lang

import "fmt"

// TokenKind classifies a lexeme.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokString
	TokNumber
	TokPercentSign // the bare '%' character, always a unit terminator

	// Punctuation/operators
	TokLParen
	TokRParen
	TokComma
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokCaret
	TokEq
	TokNeq
	TokLt
	TokGt
	TokLe
	TokGe
)

// Token is one lexeme with its source position (1-based line/column) and
// its rune offset range in the original source, so the parser can recover
// verbatim spans (used for the opaque `about` stanza body).
type Token struct {
	Kind     TokenKind
	Text     string
	Num      float64
	Line     int
	Col      int
	Start    int
	End      int
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Col)
}

// unitWords lists the unit names that end an operand's magnitude expression,
// recognized case-insensitively. The lexer emits these (and all keywords) as
// TokIdent; the parser matches on the lower-cased text. Keeping word
// matching in the parser rather than the lexer mirrors the teacher's
// line-oriented readers (ida.go, orl.go), which dispatch on field text
// rather than a separate keyword-token set.
var unitWords = map[string]bool{
	"kg": true, "mt": true, "tco2e": true, "unit": true, "units": true,
	"kwh": true, "year": true, "years": true,
}
