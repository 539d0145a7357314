package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/ui"
)

// dispatchCmd opens the game, dispatches the action built by build and
// prints headline with any notices.
func dispatchCmd(cmd *cobra.Command, build func(a *app) (engine.Action, error), headline func(out engine.Outcome) string) error {
	ctx := context.Background()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	act, err := build(a)
	if err != nil {
		return err
	}
	out, err := a.svc.Dispatch(ctx, act)
	if err != nil {
		return err
	}
	if err := out.Rejection(); err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), headline(out), out)
}

func positiveArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func newGoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gold",
		Short: "Earn or spend gold",
	}

	var reason string
	add := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add gold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := positiveArg(args, "amount")
			if err != nil {
				return err
			}
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.AddGold{Amount: n, Reason: reason}, nil
			}, func(out engine.Outcome) string {
				return ui.Gold.Render(fmt.Sprintf("%s +%d gold", ui.IconCoin, n)) + ui.Muted.Render(fmt.Sprintf(" (balance %d)", out.State.Player.Gold))
			})
		},
	}
	add.Flags().StringVar(&reason, "reason", "", "Why you earned it")

	var item string
	spend := &cobra.Command{
		Use:   "spend <amount>",
		Short: "Spend gold on a reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := positiveArg(args, "amount")
			if err != nil {
				return err
			}
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.SpendGold{Amount: n, Item: item}, nil
			}, func(out engine.Outcome) string {
				what := ""
				if item != "" {
					what = " on " + item
				}
				return ui.Warn.Render(fmt.Sprintf("%s -%d gold%s", ui.IconCoin, n, what)) + ui.Muted.Render(fmt.Sprintf(" (balance %d)", out.State.Player.Gold))
			})
		},
	}
	spend.Flags().StringVar(&item, "item", "", "What you bought")

	cmd.AddCommand(add, spend)
	return cmd
}

func newStreakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Daily streak",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Check in for today",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := context.Background()
				a, cleanup, err := openApp(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				before := a.svc.State().Player
				change := engine.CheckStreak(before, a.svc.Now())
				out, err := a.svc.CheckIn(ctx)
				if err != nil {
					return err
				}
				p := out.State.Player
				line := fmt.Sprintf("%s %s: %d days %s", ui.IconFire, change, p.CurrentStreak, ui.Muted.Render(fmt.Sprintf("(best %d)", p.LongestStreak)))
				return report(cmd.OutOrStdout(), line, out)
			},
		},
		&cobra.Command{
			Use:   "goal <days>",
			Short: "Set the streak goal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := positiveArg(args, "days")
				if err != nil {
					return err
				}
				return dispatchCmd(cmd, func(*app) (engine.Action, error) {
					return engine.SetStreakGoal{Goal: n}, nil
				}, func(engine.Outcome) string {
					return ui.Good.Render(fmt.Sprintf("Streak goal set to %d days", n))
				})
			},
		},
		&cobra.Command{
			Use:   "claim",
			Short: "Claim the reward for reaching your streak goal",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return dispatchCmd(cmd, func(*app) (engine.Action, error) {
					return engine.ClaimStreakReward{}, nil
				}, func(out engine.Outcome) string {
					return ui.Gold.Render(fmt.Sprintf("%s Streak reward claimed! Balance %d", ui.IconTrophy, out.State.Player.Gold))
				})
			},
		},
	)
	return cmd
}

func newMainQuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "main-quest <title>",
		Short: "Set the main quest; matching quests earn bonus XP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.SetMainQuest{Title: title}, nil
			}, func(engine.Outcome) string {
				return ui.Gold.Render("★ Main quest: ") + title
			})
		},
	}
}

func newSeasonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "season <name>",
		Short: "Name the current season",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.SetSeasonName{Name: name}, nil
			}, func(engine.Outcome) string {
				return ui.Title.Render("Welcome to " + name)
			})
		},
	}
}

func newMoodCmd() *cobra.Command {
	var intensity int
	var note string
	cmd := &cobra.Command{
		Use:   "mood <mood>",
		Short: "Record how you feel; your mood picks the realm you are in",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("mood is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchCmd(cmd, func(*app) (engine.Action, error) {
				return engine.UpdateMood{Mood: args[0], Intensity: intensity, Note: note}, nil
			}, func(out engine.Outcome) string {
				return fmt.Sprintf("Mood %s recorded %s", ui.H2.Render(strings.ToLower(args[0])), ui.Muted.Render("(realm: "+out.State.CurrentRealm+")"))
			})
		},
	}
	cmd.Flags().IntVarP(&intensity, "intensity", "i", 0, "Intensity 1-5 (default 3)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note")
	return cmd
}
