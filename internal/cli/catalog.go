package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoobzio/shroud"
)

func kindsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List record kinds, their fields and current assignments",
		Args:  cobra.NoArgs,
		RunE: e.run(func(_ context.Context, _ []string) error {
			cat := e.proc.Catalog()
			w := newTable(e.out)
			fmt.Fprintln(w, "KIND\tFIELD\tLABEL\tOPTIONS\tCURRENT")
			for _, kind := range cat.Kinds() {
				schema, _ := cat.Schema(kind)
				for _, f := range schema.Fields {
					if !f.Settable() {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", kind, f.Name, f.Label(), dim("computed"))
						continue
					}
					current := shroud.NoneOption
					if t := e.proc.Registry().Lookup(shroud.Ref(kind, f.Name)); t != nil {
						current = t.Name()
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", kind, f.Name, f.Label(), len(f.Transforms)+1, current)
				}
			}
			return w.Flush()
		}),
	}
}

func optionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "options <Kind-Field>",
		Short: "List the selectable transforms of a field",
		Long: `List the selectable transforms of a field in selection order.
Index 0 is always None. The current selection is marked.`,
		Args: cobra.ExactArgs(1),
		RunE: e.run(func(_ context.Context, args []string) error {
			ref, err := shroud.ParseRef(args[0])
			if err != nil {
				return err
			}
			opts, err := e.proc.Options(ref)
			if err != nil {
				return err
			}
			current, err := e.proc.CurrentIndex(ref)
			if err != nil {
				return err
			}

			fmt.Fprintln(e.out, bold(ref.String()))
			for i, name := range opts {
				mark := " "
				if i == current {
					mark = okMark()
				}
				fmt.Fprintf(e.out, "  %s %d  %s\n", mark, i, name)
			}
			return nil
		}),
	}
}
