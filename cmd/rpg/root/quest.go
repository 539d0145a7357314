package root

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/ui"
)

func newQuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quest",
		Aliases: []string{"q"},
		Short:   "Manage quests",
	}
	cmd.AddCommand(
		newQuestAddCmd(),
		newQuestListCmd(),
		newQuestEditCmd(),
		newQuestStatusCmd("done <id|title>", "Complete a quest", "Quest complete!", func(id string) engine.Action { return engine.CompleteQuest{ID: id} }),
		newQuestStatusCmd("fail <id|title>", "Mark a quest as failed", "Quest failed.", func(id string) engine.Action { return engine.FailQuest{ID: id} }),
		newQuestStatusCmd("pause <id|title>", "Pause a quest", "Quest paused.", func(id string) engine.Action { return engine.PauseQuest{ID: id} }),
		newQuestStatusCmd("resume <id|title>", "Resume a paused quest", "Quest resumed.", func(id string) engine.Action { return engine.ResumeQuest{ID: id} }),
		newQuestStatusCmd("rm <id|title>", "Delete a quest", "Quest deleted.", func(id string) engine.Action { return engine.DeleteQuest{ID: id} }),
		newQuestNextCmd(),
	)
	return cmd
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, errors.New("due must be YYYY-MM-DD")
	}
	return &t, nil
}

func newQuestAddCmd() *cobra.Command {
	var (
		desc, category, qtype, priority, difficulty string
		energy, anxiety, due                       string
		xp, gold                                   int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			act := engine.AddQuest{
				Title:       strings.Join(args, " "),
				Description: desc,
				XPReward:    xp,
				GoldReward:  gold,
			}
			var err error
			if act.Category, err = engine.ParseCategory(category); err != nil {
				return err
			}
			if act.QuestType, err = engine.ParseQuestType(qtype); err != nil {
				return err
			}
			if act.Priority, err = engine.ParsePriority(priority); err != nil {
				return err
			}
			if act.Difficulty, err = engine.ParseDifficulty(difficulty); err != nil {
				return err
			}
			if act.Energy, err = engine.ParseLevel(energy, engine.LevelMedium); err != nil {
				return err
			}
			if act.Anxiety, err = engine.ParseLevel(anxiety, engine.LevelLow); err != nil {
				return err
			}
			if act.DueDate, err = parseDue(due); err != nil {
				return err
			}

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := a.svc.Dispatch(ctx, act)
			if err != nil {
				return err
			}
			if err := out.Rejection(); err != nil {
				return err
			}
			q := out.State.Quests[len(out.State.Quests)-1]
			line := fmt.Sprintf("%s %s %s %s", ui.Good.Render(ui.IconPlus+" Added"), ui.Muted.Render(shortID(q.ID)), q.Title,
				ui.Muted.Render(fmt.Sprintf("(%s, %d XP, %d gold)", q.Difficulty, q.XPReward, q.GoldReward)))
			return report(cmd.OutOrStdout(), line, out)
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (work|health|personal|learning|social|creative|chores)")
	cmd.Flags().StringVarP(&qtype, "type", "t", "", "Quest type (daily|weekly|main|side)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty (easy|medium|hard|epic or 1-4)")
	cmd.Flags().StringVar(&energy, "energy", "", "Energy required (low|medium|high)")
	cmd.Flags().StringVar(&anxiety, "anxiety", "", "Anxiety level (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&xp, "xp", 0, "XP reward (default from difficulty)")
	cmd.Flags().IntVar(&gold, "gold", 0, "Gold reward (default XP/5)")
	return cmd
}

func newQuestEditCmd() *cobra.Command {
	var title, desc, priority, difficulty, due string
	var xp int

	cmd := &cobra.Command{
		Use:   "edit <id|title>",
		Short: "Edit a quest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(a.svc, args[0])
			if err != nil {
				return err
			}
			act := engine.UpdateQuest{ID: q.ID}
			flags := cmd.Flags()
			if flags.Changed("title") {
				act.Title = &title
			}
			if flags.Changed("desc") {
				act.Description = &desc
			}
			if flags.Changed("priority") {
				p, err := engine.ParsePriority(priority)
				if err != nil {
					return err
				}
				act.Priority = &p
			}
			if flags.Changed("difficulty") {
				d, err := engine.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				act.Difficulty = &d
			}
			if flags.Changed("xp") {
				act.XPReward = &xp
			}
			if flags.Changed("due") {
				if act.DueDate, err = parseDue(due); err != nil {
					return err
				}
			}

			out, err := a.svc.Dispatch(ctx, act)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), ui.Good.Render(ui.IconSparkle+" Updated ")+q.Title, out)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty (easy|medium|hard|epic)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&xp, "xp", 0, "XP reward")
	return cmd
}

func newQuestStatusCmd(use, short, headline string, build func(id string) engine.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("quest id or title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(a.svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out, err := a.svc.Dispatch(ctx, build(q.ID))
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s %s", ui.StatusIcon(statusAfter(out, q)), ui.H2.Render(headline)+" "+q.Title)
			if out.Action == engine.ActionCompleteQuest && out.Changed {
				p := out.State.Player
				line += ui.Muted.Render(fmt.Sprintf(" (level %d, %d/%d XP, %d gold)", p.Level, p.XP, p.XPToNextLevel, p.Gold))
			}
			return report(cmd.OutOrStdout(), line, out)
		},
	}
}

func statusAfter(out engine.Outcome, q engine.Quest) engine.QuestStatus {
	if after, _, ok := out.State.Quest(q.ID); ok {
		return after.Status
	}
	return q.Status
}

func newQuestListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st := a.svc.State()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Quest Log"))
			shown := 0
			for _, q := range st.Quests {
				if !all && !q.Status.Open() {
					continue
				}
				shown++
				main := ""
				if st.MainQuest != "" && strings.EqualFold(q.Title, st.MainQuest) {
					main = ui.Gold.Render(" ★")
				}
				fmt.Fprintf(w, "%s %s %s%s %s %s\n", ui.StatusIcon(q.Status), ui.Muted.Render(shortID(q.ID)), q.Title, main,
					ui.DifficultyText(q.Difficulty), ui.Muted.Render(fmt.Sprintf("[%s · %s · %d XP]", q.Category, q.Priority, q.XPReward)))
			}
			if shown == 0 {
				fmt.Fprintln(w, ui.Muted.Render("(no quests; add one with `rpg quest add`)"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed and failed quests")
	return cmd
}

func newQuestNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Suggest the next quest for your current energy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, ok := a.svc.SuggestNextQuest()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No open quests. Take a break!"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.IconSparkle, q.Title,
				ui.Muted.Render(fmt.Sprintf("(%s, %s priority, energy %s)", q.Difficulty, q.Priority, q.Energy)))
			return nil
		},
	}
}
