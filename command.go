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

// CommandKind tags the variant held by a Command. Each variant carries
// only the fields it needs; Engine.Execute switches on Kind exhaustively.
type CommandKind int

const (
	CmdInitialCharge CommandKind = iota
	CmdEmit
	CmdRecharge
	CmdRecycle
	CmdReplace
	CmdSet
	CmdChange
	CmdRetire
	CmdCap
	CmdFloor
	CmdDefineVar
)

func (k CommandKind) String() string {
	switch k {
	case CmdInitialCharge:
		return "initial charge"
	case CmdEmit:
		return "emit"
	case CmdRecharge:
		return "recharge"
	case CmdRecycle:
		return "recycle"
	case CmdReplace:
		return "replace"
	case CmdSet:
		return "set"
	case CmdChange:
		return "change"
	case CmdRetire:
		return "retire"
	case CmdCap:
		return "cap"
	case CmdFloor:
		return "floor"
	case CmdDefineVar:
		return "define variable"
	default:
		return "unknown"
	}
}

// PlacementClass says where a command may legally appear.
type PlacementClass int

const (
	// ClassDefinition commands are legal only in the default stanza:
	// initial charge, emit, recharge.
	ClassDefinition PlacementClass = iota
	// ClassPolicy commands are legal only in policy stanzas: recycle,
	// replace, cap, floor.
	ClassPolicy
	// ClassAny commands are legal in either: change, retire, set, define
	// variable. There is no limit command; limit is an expression function.
	ClassAny
)

// Class returns k's placement class per the §4.5 table.
func (k CommandKind) Class() PlacementClass {
	switch k {
	case CmdInitialCharge, CmdEmit, CmdRecharge:
		return ClassDefinition
	case CmdRecycle, CmdReplace, CmdCap, CmdFloor:
		return ClassPolicy
	default:
		return ClassAny
	}
}

// DisplaceTarget names where a cap/floor's clipped amount is pushed.
// Exactly one of Stream or Substance should be set: Stream displaces
// into a different stream of the same substance; Substance displaces
// into the same stream of a different substance in the same
// application.
type DisplaceTarget struct {
	Stream    string
	Substance string
}

// Command is a single, optionally year-ranged, operation inside a
// substance body.
type Command struct {
	Kind CommandKind

	// Stream is the target stream name for commands that operate on a
	// stream (initial charge, emit/set/change/cap/floor/replace). Emit
	// always targets "consumption" via GHG intensity; recharge/retire/
	// recycle don't target a single named stream.
	Stream string

	// Value is the command's primary operand.
	Value Expr
	// Value2 is a secondary operand: recharge's intensity, recycle's
	// yield rate.
	Value2 Expr
	// Displacement is recycle's optional displacement rate override, or
	// cap/floor's clipped-amount target.
	Displacement     Expr
	DisplaceTarget   *DisplaceTarget
	DestSubstance    string // replace
	VarName          string // define variable

	YearRange YearRange

	// Incompatible, when non-empty, means this command was accepted by
	// the lexer/parser but cannot be executed through this object model
	// (e.g. stochastic sampling syntax the spec flags incompatible, or
	// a misplaced command). The reason is surfaced as an
	// IncompatibleProgram diagnostic rather than failing the parse.
	Incompatible string
}
