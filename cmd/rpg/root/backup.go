package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/storage"
	"adhdrpg/internal/ui"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the saved game as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, cleanup, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := storage.NewStore(db).Export(ctx, w); err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Good.Render(ui.IconDone+" Exported to "+args[0]))
			}
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the saved game with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("import replaces your current game; re-run with --yes")
			}
			ctx := context.Background()
			db, cleanup, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := storage.NewStore(db).Import(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Imported")+" "+
				ui.Muted.Render(fmt.Sprintf("(level %d, %d quests)", st.Player.Level, len(st.Quests))))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing the current game")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes, wipe bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Start a new game (your streak goal is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset erases your progress; re-run with --yes")
			}
			ctx := context.Background()
			if wipe {
				db, cleanup, err := openDB(ctx)
				if err != nil {
					return err
				}
				defer cleanup()
				if err := storage.NewStore(db).Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconLoop+" Save and history wiped."))
				return nil
			}
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.ResetGame{}, nil
			}, func(engine.Outcome) string {
				return ui.Warn.Render(ui.IconLoop + " A new adventure begins.")
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	cmd.Flags().BoolVar(&wipe, "wipe", false, "Also delete the action history and streak goal")
	return cmd
}
