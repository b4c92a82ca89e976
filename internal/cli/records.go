package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoobzio/shroud"
)

// readInput reads a payload from path, or from stdin when path is "-".
func (e *env) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(e.in)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func auditCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <file|->",
		Short: "Show how a payload would be anonymized, field by field",
		Long: `Decode a record payload in the configured codec and show, for every
stored field, the assigned transform, the input value and the value that
export would emit. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: e.run(func(ctx context.Context, args []string) error {
			data, err := e.readInput(args[0])
			if err != nil {
				return err
			}

			var input map[string]any
			if err := e.codec.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}
			rec, err := e.proc.Load(ctx, data)
			if err != nil {
				return err
			}
			doc, err := e.proc.Document(ctx, rec)
			if err != nil {
				return err
			}

			fmt.Fprintln(e.out, bold(rec.Kind().String()))
			if rec.Transformed() {
				fmt.Fprintf(e.out, "%s payload is already transformed; values pass through\n", warnMark())
			}

			w := newTable(e.out)
			fmt.Fprintln(w, "FIELD\tTRANSFORM\tINPUT\tOUTPUT")
			for _, entry := range doc.Entries {
				if entry.Key == shroud.MarkerField {
					continue
				}
				name := shroud.NoneOption
				if t := e.proc.Registry().Lookup(shroud.Ref(rec.Kind(), entry.Key)); t != nil && !rec.Transformed() {
					name = t.Name()
				}
				fmt.Fprintf(w, "%s\t%s\t%v\t%v\n", entry.Key, name, input[entry.Key], entry.Value)
			}
			return w.Flush()
		}),
	}
}

func exportCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file|->...",
		Short: "Anonymize payloads with the session's assignments",
		Long: `Decode each record payload in the configured codec, apply the session's
assignments and write the result. Payloads that are already transformed
are written back unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: e.run(func(ctx context.Context, args []string) error {
			var buf bytes.Buffer
			for _, path := range args {
				data, err := e.readInput(path)
				if err != nil {
					return err
				}
				rec, err := e.proc.Load(ctx, data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				out, err := e.proc.Store(ctx, rec)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				buf.Write(out)
				if e.codec.ContentType() == "application/json" {
					buf.WriteByte('\n')
				}
				e.log.WithField("kind", rec.Kind()).Debugf("exported %s", path)
			}

			if output == "" {
				_, err := e.out.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(e.out, "%s Exported %d record(s) to %s\n", okMark(), len(args), output)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
