package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/timer"
	"adhdrpg/internal/ui"
)

func newFocusCmd() *cobra.Command {
	var minutes int
	var isBreak bool

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Run a focus (or break) countdown; finishing it earns XP or energy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := engine.FocusWork
			if minutes <= 0 {
				minutes = cfg.Focus.Minutes
			}
			if isBreak {
				kind = engine.FocusBreak
				if !cmd.Flags().Changed("minutes") {
					minutes = cfg.Focus.BreakMinutes
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			total := int64(minutes * 60)
			bar := progressbar.Default(total, fmt.Sprintf("%s %s %dm", ui.IconTimer, kind, minutes))

			var outcome engine.Outcome
			countdown := timer.FocusCountdown(a.svc, kind, minutes,
				func(left time.Duration) { _ = bar.Set64(total - int64(left.Seconds())) },
				func(out engine.Outcome) { outcome = out },
			)
			task := timer.Start(ctx, countdown)
			if err := task.Wait(); err != nil {
				_ = bar.Exit()
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(fmt.Sprintf("%s Session stopped with %s left; nothing recorded.", ui.IconWarn, task.Remaining().Round(time.Second))))
				return nil
			}
			_ = bar.Finish()
			fmt.Fprintln(cmd.OutOrStdout())

			headline := ui.Good.Render(fmt.Sprintf("%s Focus session complete: %d minutes", ui.IconDone, minutes))
			if kind == engine.FocusBreak {
				headline = ui.Good.Render(fmt.Sprintf("%s Break over. Energy %d", ui.IconBolt, outcome.State.Player.Energy))
			}
			return report(cmd.OutOrStdout(), headline, outcome)
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Session length in minutes (default from config)")
	cmd.Flags().BoolVarP(&isBreak, "break", "b", false, "Run a break instead of a focus session")
	return cmd
}
