package run

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/samlyndon/vdxconvert/internal/batch"
	"github.com/samlyndon/vdxconvert/internal/config"
	"github.com/samlyndon/vdxconvert/internal/convert"
	"github.com/samlyndon/vdxconvert/internal/report"
)

var (
	flagConfig   string
	flagInput    string
	flagOutput   string
	flagArchive  string
	flagVerbose  bool
	flagNoReport bool
	flagProgress bool
)

// Cmd represents the `vdxconvert run` command.
var Cmd = &cobra.Command{
	Use:           "run",
	Short:         "Convert every Visio file in the input directory to VDX",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := resolveSettings()
		if err != nil {
			return fatalRunError(err)
		}
		return executeBatch(cmd, settings)
	},
}

func init() {
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().StringVar(&flagInput, "input", "", "Input directory (overrides config)")
	Cmd.Flags().StringVar(&flagOutput, "output", "", "Output directory (overrides config)")
	Cmd.Flags().StringVar(&flagArchive, "archive", "", "Archive directory (overrides config)")
	Cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")
	Cmd.Flags().BoolVar(&flagNoReport, "no-report", false, "Do not write the durable conversion report")
	Cmd.Flags().BoolVar(&flagProgress, "progress", false, "Emit per-file progress lines to stderr")
}

// resolveSettings loads the config (when given) and applies flag overrides.
func resolveSettings() (config.Settings, error) {
	settings := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return config.Settings{}, err
		}
		settings = loaded
	}
	if flagInput != "" {
		settings.InputDir = flagInput
	}
	if flagOutput != "" {
		settings.OutputDir = flagOutput
	}
	if flagArchive != "" {
		settings.ArchiveDir = flagArchive
	}
	return settings, nil
}

func executeBatch(cmd *cobra.Command, settings config.Settings) error {
	for _, dir := range []string{settings.InputDir, settings.OutputDir, settings.ArchiveDir, settings.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fatalRunError(fmt.Errorf("cannot create directory %s: %v", dir, err))
		}
	}

	logger, closeLog := newLogger(settings.LogsDir, flagVerbose)
	defer closeLog()

	filter, err := batch.NewFilter(settings.FilterInline, 0)
	if err != nil {
		return fatalRunError(err)
	}

	office := convert.NewOffice(
		settings.Engine.Program,
		settings.Engine.Unoconv,
		time.Duration(settings.Engine.TimeoutMs)*time.Millisecond,
		time.Duration(settings.Engine.TermGraceMs)*time.Millisecond,
		logger.Named("office"),
	)

	orch := &batch.Orchestrator{
		Converters: map[batch.Capability]convert.Converter{
			batch.CapabilityXMLNative: convert.NewXMLNative(logger.Named("vsdx")),
			batch.CapabilityOffice:    office,
		},
		OutputDir:  settings.OutputDir,
		ArchiveDir: settings.ArchiveDir,
		Filter:     filter,
		Log:        logger,
	}
	if flagProgress {
		orch.OnOutcome = newProgressEmitter(os.Stderr).emit
	}

	outcomes, err := orch.Run(cmd.Context(), settings.InputDir)
	if err != nil {
		logger.Error("batch aborted", "error", err)
		return fatalRunError(err)
	}

	runReport := report.Summarize(outcomes)
	report.Render(os.Stdout, runReport)

	if !flagNoReport {
		path := report.Path(settings.LogsDir, settings.Report.Format, time.Now())
		if err := report.Write(path, settings.Report.Format, runReport); err != nil {
			// The run itself completed; a report write failure is not fatal.
			logger.Error("writing durable report failed", "path", path, "error", err)
		} else {
			logger.Info("durable report written", "path", path)
		}
	}

	// Per-file failures are the normal outcome of a batch; only an aborted
	// run exits non-zero.
	return nil
}
