package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Render prints the human summary: counts per status, total time and the
// failure list with enough detail to diagnose without the durable report.
func Render(w io.Writer, r RunReport) {
	divider := strings.Repeat("=", 60)
	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, headerStyle.Render("vdxconvert summary"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files processed: %d\n", r.Total)
	fmt.Fprintf(w, "Succeeded: %s\n", okStyle.Render(fmt.Sprintf("%d", r.Succeeded)))
	fmt.Fprintf(w, "Skipped:   %s\n", skipStyle.Render(fmt.Sprintf("%d", r.Skipped)))
	failed := fmt.Sprintf("%d", r.Failed)
	if r.Failed > 0 {
		failed = failStyle.Render(failed)
	}
	fmt.Fprintf(w, "Failed:    %s\n", failed)
	fmt.Fprintf(w, "Total time: %.2fs\n", r.TotalDuration.Seconds())

	if len(r.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failures:")
		for _, o := range r.Failures {
			fmt.Fprintf(w, "  %s\n", failStyle.Render(fmt.Sprintf("✖ %s [%s]: %s", o.Name, o.Kind, o.Detail)))
		}
	}
	fmt.Fprintln(w, divider)
}
