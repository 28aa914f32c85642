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

// Command hfcsim is the command-line interface for the refrigerant
// substance-flow modelling language: it parses a program file, optionally
// reports diagnostics, and runs every declared simulation to a result CSV.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hfcsim"
	"github.com/spatialmodel/hfcsim/internal/config"
	"github.com/spatialmodel/hfcsim/lang"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

func main() {
	cfg := config.Initialize()

	cfg.ValidateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runValidate(cfg, args[0])
	}
	cfg.RunCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runRun(cfg, args[0])
	}

	if err := cfg.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{})
	lvl, err := logrus.ParseLevel(cfg.GetString("logLevel"))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func parseProgramFile(path string) (*hfcsim.Program, []lang.Diagnostic, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("hfcsim: reading %s: %w", path, err)
	}
	prog, diags := lang.Translate(string(src))
	return prog, diags, nil
}

func runValidate(cfg *config.Config, path string) error {
	prog, diags, err := parseProgramFile(path)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Printf("%s\n", d.String())
	}
	for _, d := range prog.Diagnostics {
		fmt.Printf("%d:%d: %s\n", d.Line, d.Col, d.Msg)
	}
	if !prog.Compatible {
		return fmt.Errorf("hfcsim: program has incompatible command placements")
	}
	fmt.Println("ok")
	return nil
}

func runRun(cfg *config.Config, path string) error {
	prog, diags, err := parseProgramFile(path)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	for _, d := range diags {
		logger.Warnf("%s", d.String())
	}
	for _, d := range prog.Diagnostics {
		logger.Warnf("%d:%d: %s", d.Line, d.Col, d.Msg)
	}
	if !prog.Compatible {
		return fmt.Errorf("hfcsim: program has incompatible command placements")
	}

	results, err := hfcsim.Run(prog, logger)
	if err != nil {
		return err
	}

	outPath := cfg.GetString("outputFile")
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("hfcsim: creating %s: %w", outPath, err)
	}
	defer f.Close()

	w := hfcsim.NewResultWriter(f)
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("hfcsim: writing result: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("hfcsim: flushing %s: %w", outPath, err)
	}
	logger.Infof("wrote %d result rows to %s", len(results), outPath)
	logSummary(logger, results)
	return nil
}

// logSummary reports total and peak consumption across every result row,
// the way inmaputil's run command logs a one-line total-emissions summary
// after writing its output file.
func logSummary(logger logrus.FieldLogger, results []hfcsim.Result) {
	if len(results) == 0 {
		return
	}
	totals := make([]float64, len(results))
	for i, r := range results {
		totals[i] = r.DomesticConsumption.Magnitude + r.ImportConsumption.Magnitude
	}
	logger.Infof("total consumption across all rows: %.2f tCO2e (peak row: %.2f tCO2e)",
		floats.Sum(totals), floats.Max(totals))
}
