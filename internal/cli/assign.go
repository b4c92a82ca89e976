package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zoobzio/shroud"
)

func assignCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <Kind-Field> <transform|index>",
		Short: "Select the transform applied to a field",
		Long: `Select the transform applied to a field for the current session.

The selection is either a transform name or its index as listed by
"shroud options". "None" or 0 clears the assignment.`,
		Example: `  shroud assign GpsDatum-Location RoundToNearestCity
  shroud assign AccelerometerDatum-X 1
  shroud assign GpsDatum-Location None`,
		Args: cobra.ExactArgs(2),
		RunE: e.run(func(ctx context.Context, args []string) error {
			ref, err := shroud.ParseRef(args[0])
			if err != nil {
				return err
			}
			if index, convErr := strconv.Atoi(args[1]); convErr == nil {
				err = e.proc.Select(ref, index)
			} else {
				err = e.proc.SelectByName(ref, args[1])
			}
			if err != nil {
				return err
			}
			if err := e.save(ctx); err != nil {
				return err
			}

			current := shroud.NoneOption
			if t := e.proc.Registry().Lookup(ref); t != nil {
				current = t.Name()
			}
			fmt.Fprintf(e.out, "%s %s → %s\n", okMark(), ref, current)
			return nil
		}),
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <entry>...",
		Short: "Import assignments from the legacy Kind-Field:Transform encoding",
		Long: `Import assignments written in the legacy "Kind-Field:TransformName"
encoding into the current session. Entries never overwrite an existing
assignment, so running the same migration twice changes nothing. Malformed
entries are reported and skipped.`,
		Example: `  shroud migrate GpsDatum-Location:RoundToNearestCity Datum-DeviceId:MaskUUID`,
		Args:    cobra.MinimumNArgs(1),
		RunE: e.run(func(ctx context.Context, args []string) error {
			applied, diags := shroud.MigrateLegacy(ctx, e.proc.Catalog(), e.proc.Registry(), args)
			if applied > 0 {
				if err := e.save(ctx); err != nil {
					return err
				}
			}
			e.log.WithFields(logrus.Fields{"applied": applied, "skipped": len(diags)}).Info("legacy migration finished")

			fmt.Fprintf(e.out, "%s Migrated %d assignment(s)\n", okMark(), applied)
			printDiagnostics(e.out, diags)
			return nil
		}),
	}
}
