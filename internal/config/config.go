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

// Package config builds the layered configuration surface for the hfcsim
// CLI: command-line flags, environment variables (prefixed HFCSIM_), and an
// optional TOML configuration file, following the *viper.Viper-embedding
// pattern of the teacher's inmaputil/cmd.go and inmaputil/config.go.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every configuration value the CLI needs, bound to a set of
// Cobra commands the way inmaputil.Cfg binds cfg.Root/cfg.runCmd.
type Config struct {
	*viper.Viper

	Root, RunCmd, ValidateCmd *cobra.Command
}

type option struct {
	name, usage string
	defaultVal  interface{}
	flagsets    []*pflag.FlagSet
}

// Initialize constructs the command tree and binds every flag onto a fresh
// viper instance, mirroring inmaputil.InitializeConfig.
func Initialize() *Config {
	cfg := &Config{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "hfcsim",
		Short: "A DSL interpreter for refrigerant substance flow projections.",
		Long: `hfcsim parses and runs programs written in the refrigerant
substance-flow modelling language, projecting equipment populations and GHG
consumption across simulated years under policy scenarios.

Configuration can be set via command-line flags, environment variables
prefixed HFCSIM_, or a TOML file passed with --config.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return readConfigFile(cfg)
		},
	}

	cfg.RunCmd = &cobra.Command{
		Use:               "run [program file]",
		Short:             "Parse and execute a program, writing a result CSV.",
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
	}

	cfg.ValidateCmd = &cobra.Command{
		Use:               "validate [program file]",
		Short:             "Parse a program and report diagnostics without executing it.",
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.RunCmd, cfg.ValidateCmd)

	options := []option{
		{
			name:       "config",
			usage:      "path to a TOML configuration file",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "startYear",
			usage:      "simulation start year; read into the configuration only, run uses each scenario's declared years",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.RunCmd.Flags()},
		},
		{
			name:       "endYear",
			usage:      "simulation end year; read into the configuration only, run uses each scenario's declared years",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.RunCmd.Flags()},
		},
		{
			name:       "checkNaN",
			usage:      "NaN guard setting; read into the configuration only, run always fails on a NaN stream value",
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.RunCmd.Flags()},
		},
		{
			name:       "checkNonNegativeStreams",
			usage:      "negative-stream guard setting; read into the configuration only, run always fails when any stream is set negative",
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.RunCmd.Flags()},
		},
		{
			name:       "policies",
			usage:      "names of policy stanzas; read into the configuration only, run applies just the policies each scenario names",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.RunCmd.Flags()},
		},
		{
			name:       "outputFile",
			usage:      "path to write the result CSV to",
			defaultVal: "results.csv",
			flagsets:   []*pflag.FlagSet{cfg.RunCmd.Flags()},
		},
		{
			name:       "logLevel",
			usage:      "logrus level: panic, fatal, error, warn, info, debug, or trace",
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
	}

	cfg.SetEnvPrefix("HFCSIM")
	cfg.AutomaticEnv()
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, opt := range options {
		set := opt.flagsets[0]
		switch v := opt.defaultVal.(type) {
		case string:
			set.String(opt.name, v, opt.usage)
		case bool:
			set.Bool(opt.name, v, opt.usage)
		case int:
			set.Int(opt.name, v, opt.usage)
		case []string:
			set.StringSlice(opt.name, v, opt.usage)
		default:
			panic(fmt.Errorf("config: unsupported default type %T for %s", v, opt.name))
		}
		if err := cfg.BindPFlag(opt.name, set.Lookup(opt.name)); err != nil {
			panic(err)
		}
	}

	return cfg
}

// readConfigFile loads the TOML file named by the "config" key, if set.
func readConfigFile(cfg *Config) error {
	path := cfg.GetString("config")
	if path == "" {
		return nil
	}
	cfg.SetConfigFile(path)
	cfg.SetConfigType("toml")
	if err := cfg.ReadInConfig(); err != nil {
		return fmt.Errorf("hfcsim: problem reading configuration file: %w", err)
	}
	return nil
}

// Policies returns the configured policy-stanza names as a string slice,
// using cast for the loose string/[]interface{} coercion viper can return
// depending on whether the value came from a flag, env var, or TOML array —
// the same coercion inmaputil/config.go applies via GetStringMapString.
func (cfg *Config) Policies() []string {
	raw := cfg.Get("policies")
	ss, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil
	}
	return ss
}

// WriteExample writes a minimal starter TOML config to path, for `hfcsim
// validate --config` users bootstrapping a new file.
func WriteExample(path string) error {
	example := struct {
		StartYear               int      `toml:"startYear"`
		EndYear                 int      `toml:"endYear"`
		CheckNaN                bool     `toml:"checkNaN"`
		CheckNonNegativeStreams bool     `toml:"checkNonNegativeStreams"`
		Policies                []string `toml:"policies"`
		OutputFile              string   `toml:"outputFile"`
		LogLevel                string   `toml:"logLevel"`
	}{
		StartYear:               2020,
		EndYear:                 2050,
		CheckNaN:                true,
		CheckNonNegativeStreams: true,
		OutputFile:              "results.csv",
		LogLevel:                "info",
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(example)
}
