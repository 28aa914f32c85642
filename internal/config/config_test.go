package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeBindsDefaults(t *testing.T) {
	cfg := Initialize()

	if got, want := cfg.GetString("logLevel"), "info"; got != want {
		t.Errorf("logLevel default = %q, want %q", got, want)
	}
	if got, want := cfg.GetString("outputFile"), "results.csv"; got != want {
		t.Errorf("outputFile default = %q, want %q", got, want)
	}
	if got := cfg.GetBool("checkNaN"); !got {
		t.Error("checkNaN default = false, want true")
	}
	if got := cfg.GetBool("checkNonNegativeStreams"); !got {
		t.Error("checkNonNegativeStreams default = false, want true")
	}
	if cfg.Root == nil || cfg.RunCmd == nil || cfg.ValidateCmd == nil {
		t.Fatal("Initialize did not build the run/validate command tree")
	}
	found := false
	for _, c := range cfg.Root.Commands() {
		if c == cfg.RunCmd {
			found = true
		}
	}
	if !found {
		t.Error("RunCmd was not registered under Root")
	}
}

func TestPoliciesCoercesStringSlice(t *testing.T) {
	cfg := Initialize()
	if err := cfg.RunCmd.Flags().Set("policies", "fastPhaseDown"); err != nil {
		t.Fatalf("setting policies flag: %v", err)
	}
	if err := cfg.RunCmd.Flags().Set("policies", "lowGWPSubstitution"); err != nil {
		t.Fatalf("setting policies flag: %v", err)
	}

	got := cfg.Policies()
	want := []string{"fastPhaseDown", "lowGWPSubstitution"}
	if len(got) != len(want) {
		t.Fatalf("Policies() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Policies()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadConfigFileIsANoOpWithoutAPath(t *testing.T) {
	cfg := Initialize()
	if err := readConfigFile(cfg); err != nil {
		t.Fatalf("readConfigFile with no path set: %v", err)
	}
}

func TestReadConfigFileLoadsTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hfcsim.toml")
	if err := os.WriteFile(path, []byte("startYear = 2030\nlogLevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	cfg := Initialize()
	if err := cfg.Root.PersistentFlags().Set("config", path); err != nil {
		t.Fatalf("setting config flag: %v", err)
	}
	if err := readConfigFile(cfg); err != nil {
		t.Fatalf("readConfigFile: %v", err)
	}
	if got, want := cfg.GetInt("startYear"), 2030; got != want {
		t.Errorf("startYear = %d, want %d", got, want)
	}
	if got, want := cfg.GetString("logLevel"), "debug"; got != want {
		t.Errorf("logLevel = %q, want %q", got, want)
	}
}

func TestWriteExampleProducesReadableTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.toml")
	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample: %v", err)
	}

	cfg := Initialize()
	if err := cfg.Root.PersistentFlags().Set("config", path); err != nil {
		t.Fatalf("setting config flag: %v", err)
	}
	if err := readConfigFile(cfg); err != nil {
		t.Fatalf("readConfigFile on WriteExample output: %v", err)
	}
	if got, want := cfg.GetInt("startYear"), 2020; got != want {
		t.Errorf("startYear = %d, want %d", got, want)
	}
	if got, want := cfg.GetInt("endYear"), 2050; got != want {
		t.Errorf("endYear = %d, want %d", got, want)
	}
}
