package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func sessionsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions with stored state",
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, _ []string) error {
			all, err := e.store.List(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(e.out, "No sessions stored.")
				return nil
			}

			w := newTable(e.out)
			fmt.Fprintln(w, "SESSION\tCODEC\tUPDATED")
			for _, s := range all {
				id := s.ID
				if id == e.cfg.Session {
					id = bold(id)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, s.ContentType, s.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session>",
		Short: "Delete a session's stored state",
		Args:  cobra.ExactArgs(1),
		RunE: e.run(func(ctx context.Context, args []string) error {
			if err := e.store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s Deleted session %s\n", okMark(), args[0])
			return nil
		}),
	})
	return cmd
}
