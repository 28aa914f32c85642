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

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Run executes every scenario declared in prog's simulations stanzas,
// returning every Result row produced across all scenarios and trials, in
// (scenario, trial, year, application, substance) order. Per §5, each
// (scenario, trial) pair gets an independently constructed Engine sharing
// no mutable state with any other; the only shared input is prog itself,
// which Run never mutates. Grounded on the teacher's Calculations/
// SteadyStateConvergenceCheck/Log loop in this file: a driver that walks a
// fixed sequence of per-step operations and collects output, generalized
// here from "per-timestep cell calculations" to "per-year command
// execution".
func Run(prog *Program, logger logrus.FieldLogger) ([]Result, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if !prog.Compatible {
		return nil, &IncompatibleProgram{Reason: "program has unresolved placement/compatibility diagnostics"}
	}

	defaultStanza, hasDefault := prog.DefaultStanza()
	var results []Result

	for _, scenario := range prog.Simulations() {
		var policies []*Stanza
		for _, name := range scenario.Policies {
			p, ok := prog.Policy(name)
			if !ok {
				return nil, &UnknownName{Kind: "policy", Name: name}
			}
			policies = append(policies, p)
		}

		trials := scenario.Trials
		if trials < 1 {
			trials = 1
		}

		for trial := 0; trial < trials; trial++ {
			cfg := DefaultConfig(scenario.Years.Start, scenario.Years.End)
			eng := NewEngine(cfg, scenario.Name, trial, logger.WithFields(logrus.Fields{
				"scenario": scenario.Name, "trial": trial,
			}))

			for year := cfg.StartYear; year <= cfg.EndYear; year++ {
				eng.SetStanza("default")
				if hasDefault {
					if err := eng.ExecuteStanza(defaultStanza); err != nil {
						return nil, fmt.Errorf("scenario %q trial %d year %d: %w", scenario.Name, trial, year, err)
					}
				}
				for _, p := range policies {
					eng.SetStanza(p.PolicyName)
					if err := eng.ExecuteStanza(p); err != nil {
						return nil, fmt.Errorf("scenario %q trial %d year %d policy %q: %w", scenario.Name, trial, year, p.PolicyName, err)
					}
				}

				rows, err := eng.Results()
				if err != nil {
					return nil, err
				}
				results = append(results, rows...)

				if year < cfg.EndYear {
					if err := eng.IncrementYear(); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return results, nil
}
