package cli

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/samber/lo"
)

func okMark() string   { return color.New(color.FgGreen).Sprint("✓") }
func warnMark() string { return color.New(color.FgYellow).Sprint("!") }

func dim(s string) string  { return color.New(color.Faint).Sprint(s) }
func bold(s string) string { return color.New(color.Bold).Sprint(s) }

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printDiagnostics(w io.Writer, diags []error) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s %s\n", warnMark(), color.YellowString(d.Error()))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
