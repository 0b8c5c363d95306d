// Package diagnose implements the `vdxconvert diagnose` command, which
// reports which conversion engines are usable on this machine.
package diagnose

import (
	"encoding/json"
	"os/exec"

	"github.com/spf13/cobra"
)

// lookPath is a seam for tests.
var lookPath = exec.LookPath

type engineStatus struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

type diagnosis struct {
	Unoconv   engineStatus `json:"unoconv"`
	Soffice   engineStatus `json:"soffice"`
	XMLNative bool         `json:"xmlNative"`
}

// Cmd represents the `vdxconvert diagnose` command.
var Cmd = &cobra.Command{
	Use:           "diagnose",
	Short:         "Check which conversion engines are available",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(probe())
	},
}

// probe checks each engine. The XML-native path has no external
// dependency so it is always available.
func probe() diagnosis {
	return diagnosis{
		Unoconv:   probeBinary("unoconv"),
		Soffice:   probeBinary("soffice"),
		XMLNative: true,
	}
}

func probeBinary(name string) engineStatus {
	path, err := lookPath(name)
	if err != nil {
		return engineStatus{}
	}
	return engineStatus{Found: true, Path: path}
}
