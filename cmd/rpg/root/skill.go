package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/ui"
)

func newSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Skill chart and skill tree",
	}

	chart := &cobra.Command{
		Use:   "chart",
		Short: "Show skill levels and your class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c := a.svc.SkillChart()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconSparkle, "Skills"))
			fmt.Fprintln(w, ui.LabelValue("Class", c.Class))
			for _, s := range c.Skills {
				marker := "  "
				if s.ID == c.Dominant {
					marker = ui.Gold.Render("★ ")
				}
				fmt.Fprintf(w, "%s%s %-12s L%-2d %s %s\n", marker, s.Icon, s.Name, s.Level,
					ui.Meter(int(s.Progress*100), 100, 16), ui.Muted.Render(fmt.Sprintf("%d XP", s.XP)))
			}
			return nil
		},
	}

	tree := &cobra.Command{
		Use:   "tree",
		Short: "List unlockable skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st := a.svc.State()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Skill tree"))
			fmt.Fprintln(w, ui.LabelValue("Skill points", st.Player.SkillPoints))
			for _, n := range a.catalog.SkillTree {
				state := ui.Muted.Render("locked")
				if st.HasSkill(n.ID) {
					state = ui.Good.Render("unlocked")
				}
				req := ""
				if len(n.Requires) > 0 {
					req = ui.Muted.Render(" requires " + strings.Join(n.Requires, ", "))
				}
				fmt.Fprintf(w, "- %s %s (%d pt) %s%s\n  %s\n", ui.Key.Render(n.ID), n.Name, n.Cost, state, req, ui.Muted.Render(n.Description))
			}
			return nil
		},
	}

	unlock := &cobra.Command{
		Use:   "unlock <skill>",
		Short: "Spend skill points on a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.UnlockSkill{SkillID: args[0]}, nil
			}, func(out engine.Outcome) string {
				return ui.Good.Render(fmt.Sprintf("%s Unlocked %s", ui.IconSparkle, args[0])) +
					ui.Muted.Render(fmt.Sprintf(" (%d points left)", out.State.Player.SkillPoints))
			})
		},
	}

	cmd.AddCommand(chart, tree, unlock)
	return cmd
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st := a.svc.State()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconTrophy, "Achievements"))
			for _, ach := range a.catalog.Achievements {
				icon := "🔒"
				name := ui.Muted.Render(ach.Name)
				if st.HasAchievement(ach.ID) {
					icon = ui.IconTrophy
					name = ui.Gold.Render(ach.Name)
				}
				fmt.Fprintf(w, "%s %s %s\n", icon, name, ui.Muted.Render(fmt.Sprintf("%s (+%d gold)", ach.Description, ach.Gold)))
			}
			return nil
		},
	}
}
