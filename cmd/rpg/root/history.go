package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/storage"
	"adhdrpg/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var journal bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the adventure log (or the raw action journal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w := cmd.OutOrStdout()
			if journal {
				db, cleanup, err := openDB(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				entries, err := storage.NewStore(db).Journal().ListRecent(ctx, limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Action journal"))
				for _, e := range entries {
					fmt.Fprintf(w, "%s %s %s\n", ui.Muted.Render(e.DispatchedAt.Local().Format("Jan 2 15:04")), ui.Key.Render(e.Action), ui.Muted.Render(e.Payload))
				}
				return nil
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			log := a.svc.State().Log
			start := max(len(log)-limit, 0)
			fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Adventure log"))
			for _, e := range log[start:] {
				fmt.Fprintf(w, "%s %s\n", ui.Muted.Render(e.At.Local().Format("Jan 2 15:04")), logText(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	cmd.Flags().BoolVar(&journal, "journal", false, "Show persisted actions instead of the game log")
	return cmd
}

func logText(e engine.LogEntry) string {
	switch e.Kind {
	case engine.LogLevelUp, engine.LogMilestone, engine.LogAchievement:
		return ui.Gold.Render(e.Message)
	case engine.LogStreakBroken:
		return ui.Warn.Render(e.Message)
	case engine.LogQuest, engine.LogReward:
		return ui.Good.Render(e.Message)
	default:
		return e.Message
	}
}

func newStatsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Daily analytics for the last few days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sum := a.svc.Analytics(days)
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconSparkle, fmt.Sprintf("Last %d days", days)))
			best := 0
			for _, d := range sum.Days {
				best = max(best, d.Tally.XPEarned)
			}
			for _, d := range sum.Days {
				fmt.Fprintf(w, "%s %s %4d XP  %d quests  %d focus min\n", d.Date, ui.Meter(d.Tally.XPEarned, best, 16),
					d.Tally.XPEarned, d.Tally.QuestsCompleted, d.Tally.FocusMinutes)
			}
			fmt.Fprintln(w, "")
			fmt.Fprintln(w, ui.LabelValue("Active days", fmt.Sprintf("%d/%d", sum.ActiveDays, days)))
			fmt.Fprintln(w, ui.LabelValue("Average XP", fmt.Sprintf("%.1f", sum.AverageXP)))
			fmt.Fprintln(w, ui.LabelValue("Completion", fmt.Sprintf("%.0f%%", sum.Completion*100)))
			if sum.BestDay != "" {
				fmt.Fprintln(w, ui.LabelValue("Best day", sum.BestDay))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days")
	return cmd
}
