package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show player stats, gauges and streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st := a.svc.State()
			p := st.Player
			chart := a.svc.SkillChart()
			w := cmd.OutOrStdout()

			title := "Player Status"
			if st.SeasonName != "" {
				title += " · " + st.SeasonName
			}
			fmt.Fprintln(w, ui.Heading(ui.IconSparkle, title))
			fmt.Fprintln(w, ui.LabelValue("Class", chart.Class))
			fmt.Fprintln(w, ui.LabelValue("Level", fmt.Sprintf("%d %s %d/%d XP", p.Level, ui.Meter(p.XP, p.XPToNextLevel, 20), p.XP, p.XPToNextLevel)))
			fmt.Fprintln(w, ui.LabelValue("Gold", ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, p.Gold))))
			fmt.Fprintln(w, ui.LabelValue("Health", fmt.Sprintf("%s %d", ui.Meter(p.Health, engine.GaugeMax, 20), p.Health)))
			fmt.Fprintln(w, ui.LabelValue("Energy", fmt.Sprintf("%s %d", ui.Meter(p.Energy, engine.GaugeMax, 20), p.Energy)))
			fmt.Fprintln(w, ui.LabelValue("Streak", fmt.Sprintf("%s %d days (best %d, goal %d)", ui.IconFire, p.CurrentStreak, p.LongestStreak, p.StreakGoal)))
			if p.SkillPoints > 0 {
				fmt.Fprintln(w, ui.LabelValue("Skill points", ui.Good.Render(fmt.Sprint(p.SkillPoints))))
			}
			if st.MainQuest != "" {
				fmt.Fprintln(w, ui.LabelValue("Main quest", st.MainQuest))
			}
			if st.CurrentRealm != "" {
				fmt.Fprintln(w, ui.LabelValue("Realm", st.CurrentRealm))
			}
			fmt.Fprintln(w, "")

			fmt.Fprintln(w, ui.H2.Render("📊 Quests"))
			fmt.Fprintf(w, "- %s %d\n", ui.Key.Render("Open:"), len(st.ActiveQuests()))
			fmt.Fprintf(w, "- %s %d %s\n", ui.Key.Render("Completed:"), st.Totals.QuestsCompleted, ui.Muted.Render(fmt.Sprintf("(%d failed)", st.Totals.QuestsFailed)))
			fmt.Fprintf(w, "- %s %d/%d\n", ui.Key.Render("Achievements:"), len(st.Achievements), len(a.catalog.Achievements))
			fmt.Fprintf(w, "- %s %d\n", ui.Key.Render("Collectibles:"), len(st.Collectibles))
			return nil
		},
	}
	return cmd
}
