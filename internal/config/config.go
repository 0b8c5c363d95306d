// Package config loads the optional CUE run configuration. Every field has
// a default so the tool works with no config file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Settings holds the validated run configuration.
type Settings struct {
	ConfigVersion string
	InputDir      string
	OutputDir     string
	ArchiveDir    string
	LogsDir       string
	Engine        EngineSettings
	FilterInline  string
	Report        ReportSettings
}

// EngineSettings configures the out-of-process office engine bridge.
type EngineSettings struct {
	// Program overrides the soffice binary name or path.
	Program string
	// Unoconv enables the unoconv front-end when present.
	Unoconv bool
	// TimeoutMs bounds one engine invocation.
	TimeoutMs int
	// TermGraceMs is the SIGTERM-to-SIGKILL grace period.
	TermGraceMs int
}

// ReportSettings configures the durable report.
type ReportSettings struct {
	Format string // "csv" or "yaml"
}

// Default returns the settings used when no config file is given.
func Default() Settings {
	return Settings{
		ConfigVersion: CurrentConfigVersion,
		InputDir:      "input",
		OutputDir:     "output",
		ArchiveDir:    "archive",
		LogsDir:       "logs",
		Engine: EngineSettings{
			Unoconv:     true,
			TimeoutMs:   120000,
			TermGraceMs: 500,
		},
		Report: ReportSettings{Format: "csv"},
	}
}

// Load parses and validates a CUE config file, overlaying it on the
// defaults.
func Load(path string) (Settings, error) {
	if filepath.Ext(path) != ".cue" {
		return Settings{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %v", err)
	}

	s := Default()
	if err := requireStringField(v, "configVersion"); err != nil {
		return Settings{}, err
	}
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&s.ConfigVersion); err != nil {
		return Settings{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if !IsSupportedConfigVersion(s.ConfigVersion) {
		return Settings{}, fmt.Errorf("unsupported configVersion %q (supported: %s)", s.ConfigVersion, SupportedConfigVersionsCSV())
	}

	optionalString(v, "input", &s.InputDir)
	optionalString(v, "output", &s.OutputDir)
	optionalString(v, "archive", &s.ArchiveDir)
	optionalString(v, "logs", &s.LogsDir)

	if ev := v.LookupPath(cue.ParsePath("engine")); ev.Exists() {
		optionalString(ev, "program", &s.Engine.Program)
		optionalBool(ev, "unoconv", &s.Engine.Unoconv)
		optionalInt(ev, "timeoutMs", &s.Engine.TimeoutMs)
		optionalInt(ev, "termGraceMs", &s.Engine.TermGraceMs)
	}
	if fv := v.LookupPath(cue.ParsePath("filter")); fv.Exists() {
		optionalString(fv, "inline", &s.FilterInline)
	}
	if rv := v.LookupPath(cue.ParsePath("report")); rv.Exists() {
		optionalString(rv, "format", &s.Report.Format)
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Engine.TimeoutMs <= 0 {
		return errors.New("engine.timeoutMs must be positive")
	}
	if s.Engine.TermGraceMs <= 0 {
		return errors.New("engine.termGraceMs must be positive")
	}
	switch s.Report.Format {
	case "csv", "yaml":
	default:
		return fmt.Errorf("invalid report.format %q (expected csv or yaml)", s.Report.Format)
	}
	return nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

func optionalString(v cue.Value, name string, dst *string) {
	f := v.LookupPath(cue.ParsePath(name))
	if f.Exists() && f.Kind() == cue.StringKind {
		_ = f.Decode(dst)
	}
}

func optionalBool(v cue.Value, name string, dst *bool) {
	f := v.LookupPath(cue.ParsePath(name))
	if f.Exists() && f.Kind() == cue.BoolKind {
		_ = f.Decode(dst)
	}
}

func optionalInt(v cue.Value, name string, dst *int) {
	f := v.LookupPath(cue.ParsePath(name))
	if f.Exists() && f.Kind() == cue.IntKind {
		_ = f.Decode(dst)
	}
}
