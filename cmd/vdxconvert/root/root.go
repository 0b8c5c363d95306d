package root

import (
	"github.com/samlyndon/vdxconvert/cmd/vdxconvert/diagnose"
	"github.com/samlyndon/vdxconvert/cmd/vdxconvert/run"
	"github.com/samlyndon/vdxconvert/cmd/vdxconvert/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for vdxconvert.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vdxconvert",
		Short: "CLI: Batch converter for Visio files to the VDX format",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.Cmd)
	cmd.AddCommand(diagnose.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
