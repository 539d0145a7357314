package rules

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"adhdrpg/internal/catalog"
	"adhdrpg/internal/engine"
)

// NewEnv declares the variables achievement conditions can read:
//
//	player.level, player.xp, player.gold, player.current_streak,
//	player.longest_streak, player.skill_points, player.health, player.energy
//	stats.quests_completed, stats.quests_failed, stats.collectibles,
//	stats.health_logged, stats.mood_entries, stats.focus_minutes,
//	stats.repeatables, stats.xp_earned, stats.gold_earned
//	skills: unlocked skill node ids, e.g. 'momentum' in skills
func NewEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("player", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("stats", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("skills", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return env, nil
}

type achievement struct {
	id   string
	prog cel.Program
}

// Achievements evaluates the catalog's achievement conditions.
type Achievements struct {
	list []achievement
}

// NewAchievements compiles every condition up front so a typo in the
// catalog fails at startup.
func NewAchievements(c *catalog.Catalog) (*Achievements, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}
	out := &Achievements{}
	for _, a := range c.Achievements {
		ast, iss := env.Compile(a.Condition)
		if iss.Err() != nil {
			return nil, fmt.Errorf("achievement %s: %w", a.ID, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("achievement %s: condition must be boolean, got %s", a.ID, ast.OutputType())
		}
		prog, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", a.ID, err)
		}
		out.list = append(out.list, achievement{id: a.ID, prog: prog})
	}
	return out, nil
}

// Earned returns the ids whose condition holds for s, in catalog order.
func (a *Achievements) Earned(s engine.GameState) ([]string, error) {
	vars := Context(s)
	var ids []string
	for _, ach := range a.list {
		out, _, err := ach.prog.Eval(vars)
		if err != nil {
			return ids, fmt.Errorf("achievement %s: %w", ach.id, err)
		}
		if ok, _ := out.Value().(bool); ok {
			ids = append(ids, ach.id)
		}
	}
	return ids, nil
}

// Context builds the CEL activation for s.
func Context(s engine.GameState) map[string]any {
	p := s.Player
	skills := append([]string{}, p.UnlockedSkills...)
	sort.Strings(skills)
	return map[string]any{
		"player": map[string]int64{
			"level":          int64(p.Level),
			"xp":             int64(p.XP),
			"gold":           int64(p.Gold),
			"current_streak": int64(p.CurrentStreak),
			"longest_streak": int64(p.LongestStreak),
			"skill_points":   int64(p.SkillPoints),
			"health":         int64(p.Health),
			"energy":         int64(p.Energy),
		},
		"stats": map[string]int64{
			"quests_completed": int64(s.Totals.QuestsCompleted),
			"quests_failed":    int64(s.Totals.QuestsFailed),
			"collectibles":     int64(len(s.Collectibles)),
			"health_logged":    int64(s.Totals.HealthLogged),
			"mood_entries":     int64(s.Totals.MoodEntries),
			"focus_minutes":    int64(s.Totals.FocusMinutes),
			"repeatables":      int64(s.Totals.Repeatables),
			"xp_earned":        int64(s.Totals.XPEarned),
			"gold_earned":      int64(s.Totals.GoldEarned),
		},
		"skills": skills,
	}
}
