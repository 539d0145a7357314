package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/ui"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Log health activities that refill your gauges",
	}

	var minutes int
	var notes string
	logCmd := &cobra.Command{
		Use:   "log <type>",
		Short: "Log a health activity (see `rpg health types`)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.LogHealthActivity{TypeID: args[0], DurationMinutes: minutes, Notes: notes}, nil
			}, func(out engine.Outcome) string {
				rec := out.State.HealthActivities[len(out.State.HealthActivities)-1]
				return fmt.Sprintf("%s %s %s", ui.IconHeart, ui.Good.Render("Logged "+rec.Name),
					ui.Muted.Render(fmt.Sprintf("(health %+d, energy %+d, +%d XP)", rec.HealthDelta, rec.EnergyDelta, rec.XPGained)))
			})
		},
	}
	logCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Duration in minutes")
	logCmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")

	types := &cobra.Command{
		Use:   "types",
		Short: "List health activity types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconHeart, "Health activities"))
			for _, h := range cat.HealthActivities {
				fmt.Fprintf(w, "- %s %s %s\n", ui.Key.Render(h.ID), h.Name,
					ui.Muted.Render(fmt.Sprintf("[%s] health %+d, energy %+d, %d XP", h.Category, h.Health, h.Energy, h.XP)))
			}
			return nil
		},
	}

	cmd.AddCommand(logCmd, types)
	return cmd
}

func newRepeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repeat [action]",
		Short: "Perform a repeatable micro-action, or list them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return dispatchCmd(cmd, func(*app) (engine.Action, error) {
					return engine.PerformRepeatableAction{ActionID: args[0]}, nil
				}, func(out engine.Outcome) string {
					return fmt.Sprintf("%s %s %s", ui.IconLoop, ui.Good.Render(args[0]),
						ui.Muted.Render(fmt.Sprintf("(x%d)", out.State.Repeatables[args[0]].Count)))
				})
			}

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st := a.svc.State()
			now := a.svc.Now()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconLoop, "Repeatable actions"))
			for _, r := range a.catalog.RepeatableActions {
				ready := ui.Good.Render("ready")
				if left := engine.CooldownRemaining(st, r.Cooldown, r.ID, now); left > 0 {
					ready = ui.Warn.Render("in " + left.Round(time.Minute).String())
				}
				fmt.Fprintf(w, "- %s %s %s %s\n", ui.Key.Render(r.ID), r.Name,
					ui.Muted.Render(fmt.Sprintf("(%d XP, %d gold, x%d)", r.XP, r.Gold, st.Repeatables[r.ID].Count)), ready)
			}
			return nil
		},
	}
}
