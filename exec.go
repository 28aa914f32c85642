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

// Execute interprets a single command against the engine's current scope,
// evaluating its operand Exprs and dispatching to the matching public
// engine operation. It is the bridge between the immutable Program/Command
// model built by hfcsim/lang and the engine's mutation API described in
// §4.6; Run calls it once per command, in lexical order, for every
// substance body reached while walking a stanza.
func (e *Engine) Execute(cmd Command) error {
	yr := cmd.YearRange
	if cmd.Incompatible != "" {
		return &IncompatibleProgram{Reason: cmd.Incompatible}
	}

	switch cmd.Kind {
	case CmdInitialCharge:
		v, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.SetInitialCharge(v, cmd.Stream, yr)

	case CmdEmit:
		v, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Equals(v, yr)

	case CmdRecharge:
		pop, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		intensity, err := cmd.Value2.Eval(e)
		if err != nil {
			return err
		}
		return e.Recharge(pop, intensity, yr)

	case CmdRecycle:
		recovery, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		yield, err := cmd.Value2.Eval(e)
		if err != nil {
			return err
		}
		var displacement *Value
		if cmd.Displacement != nil {
			d, err := cmd.Displacement.Eval(e)
			if err != nil {
				return err
			}
			displacement = &d
		}
		return e.Recycle(recovery, yield, displacement, yr)

	case CmdReplace:
		amount, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Replace(amount, cmd.Stream, cmd.DestSubstance, yr)

	case CmdSet:
		v, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.SetStream(cmd.Stream, v, yr, nil, true)

	case CmdChange:
		delta, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.ChangeStream(cmd.Stream, delta, yr, nil)

	case CmdRetire:
		rate, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Retire(rate, yr)

	case CmdCap:
		max, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Cap(cmd.Stream, max, yr, nil, cmd.DisplaceTarget)

	case CmdFloor:
		min, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Floor(cmd.Stream, min, yr, nil, cmd.DisplaceTarget)

	case CmdDefineVar:
		if !yr.Contains(e.currentYear) {
			return nil
		}
		if err := e.Variables().Define(cmd.VarName); err != nil {
			return err
		}
		v, err := cmd.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Variables().Set(cmd.VarName, v)
	}

	return &LifecycleError{Reason: "unhandled command kind"}
}

// ExecuteSubstance runs every command of a substance body in lexical
// order, selecting the substance scope first.
func (e *Engine) ExecuteSubstance(appName string, sub SubstanceDef, checkValid bool) error {
	if err := e.SetSubstance(sub.Name, checkValid); err != nil {
		return err
	}
	for _, cmd := range sub.Commands {
		if err := e.Execute(cmd); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteStanza walks every application/substance of a default or policy
// stanza, in declaration order.
func (e *Engine) ExecuteStanza(stanza *Stanza) error {
	checkValid := stanza.Kind == StanzaPolicy
	for _, app := range stanza.Applications {
		if err := e.SetApplication(app.Name); err != nil {
			return err
		}
		for _, sub := range app.Substances {
			if err := e.ExecuteSubstance(app.Name, sub, checkValid); err != nil {
				return err
			}
		}
	}
	return nil
}
