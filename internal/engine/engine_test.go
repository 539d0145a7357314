package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"adhdrpg/internal/catalog"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func testEnv(now time.Time) Env {
	n := 0
	return Env{
		Now:     now,
		Rand:    rand.New(rand.NewPCG(1, 2)),
		Catalog: catalog.MustDefault(),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func mustReduce(t *testing.T, env Env, s GameState, a Action) (GameState, Update) {
	t.Helper()
	next, u, err := Reduce(env, s, a)
	if err != nil {
		t.Fatalf("Reduce(%s): %v", a.Type(), err)
	}
	return next, u
}

func addTestQuest(t *testing.T, env Env, s GameState, title string, xp int) (GameState, string) {
	t.Helper()
	next, u := mustReduce(t, env, s, AddQuest{Title: title, XPReward: xp, Difficulty: DifficultyEasy})
	if u.Empty() {
		t.Fatalf("AddQuest rejected: %s", u.Reason)
	}
	return next, next.Quests[len(next.Quests)-1].ID
}

func TestXPForLevel(t *testing.T) {
	cases := map[int]int{1: 100, 2: 150, 3: 225, 4: 337, 5: 506}
	for level, want := range cases {
		if got := XPForLevel(level); got != want {
			t.Fatalf("XPForLevel(%d)=%d, want %d", level, got, want)
		}
	}
	prev := 0
	for level := 1; level <= 40; level++ {
		got := XPForLevel(level)
		want := int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
		if got != want {
			t.Fatalf("XPForLevel(%d)=%d, want %d", level, got, want)
		}
		if got <= prev {
			t.Fatalf("XPForLevel not increasing at %d: %d <= %d", level, got, prev)
		}
		prev = got
	}
}

func TestCreditedXPMultipliers(t *testing.T) {
	cases := []struct {
		reward, streak int
		bonus          float64
		want           int
	}{
		{10, 0, 1, 10},
		{10, 2, 1, 10},
		{10, 3, 1, 20},
		{10, 6, 1, 20},
		{10, 7, 1, 30},
		{10, 30, 1, 30},
		{10, 3, 1.5, 30},
		{7, 0, 1.5, 10},
		{0, 7, 2, 0},
	}
	for _, c := range cases {
		if got := CreditedXP(c.reward, c.streak, c.bonus, nil); got != c.want {
			t.Fatalf("CreditedXP(%d, %d, %v)=%d, want %d", c.reward, c.streak, c.bonus, got, c.want)
		}
	}
}

func TestSkillEffects(t *testing.T) {
	if got := CreditedXP(10, 0, 1, []string{"quick_start"}); got != 15 {
		t.Fatalf("quick_start: got %d, want 15", got)
	}
	if got := CreditedXP(100, 0, 1, []string{"momentum"}); got != 110 {
		t.Fatalf("momentum: got %d, want 110", got)
	}
	if got := CreditedXP(100, 0, 1, []string{"hyperfocus"}); got != 125 {
		t.Fatalf("hyperfocus: got %d, want 125", got)
	}
	if got := CreditedXP(3, 0, 1, []string{"iron_will"}); got != 10 {
		t.Fatalf("iron_will: got %d, want 10", got)
	}
	if got := CreditedXP(10, 0, 1, []string{"not_a_skill"}); got != 10 {
		t.Fatalf("unknown skill should not change XP, got %d", got)
	}
}

func TestCalculateXPGainScenarios(t *testing.T) {
	g := CalculateXPGain(0, 1, 50, 0, 1, nil)
	if g.ActualXPGained != 50 || g.NewXP != 50 || g.NewLevel != 1 || g.LevelUp.LeveledUp {
		t.Fatalf("streak 0: %+v", g)
	}

	g = CalculateXPGain(0, 1, 50, 3, 1, nil)
	if g.ActualXPGained != 100 || g.NewXP != 0 || g.NewLevel != 2 || !g.LevelUp.LeveledUp {
		t.Fatalf("streak 3: %+v", g)
	}
	if g.LevelUp.SkillPointsEarned != 0 {
		t.Fatalf("level 2 should not grant a skill point")
	}
}

func TestCalculateXPGainSkillPoint(t *testing.T) {
	g := CalculateXPGain(149, 2, 1, 0, 1, nil)
	if g.NewLevel != 3 || g.NewXP != 0 {
		t.Fatalf("got %+v", g)
	}
	if g.LevelUp.SkillPointsEarned != 1 {
		t.Fatalf("level 3 should grant a skill point, got %d", g.LevelUp.SkillPointsEarned)
	}
}

func TestCalculateXPGainSingleStep(t *testing.T) {
	g := CalculateXPGain(0, 1, 1000, 0, 1, nil)
	if g.NewLevel != 2 {
		t.Fatalf("NewLevel=%d, want 2 (one level per call)", g.NewLevel)
	}
	if g.NewXP != 900 {
		t.Fatalf("NewXP=%d, want 900 carried over", g.NewXP)
	}
}

func TestCompareDays(t *testing.T) {
	late := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 10, 19, 0, 1, 0, 0, time.UTC)
	if got := CompareDays(late, early); got != 1 {
		t.Fatalf("across midnight=%d, want 1", got)
	}
	if got := CompareDays(early, early.Add(20*time.Hour)); got != 0 {
		t.Fatalf("same day=%d, want 0", got)
	}
	if got := CompareDays(early, early.AddDate(0, 0, 3)); got != 3 {
		t.Fatalf("three days=%d, want 3", got)
	}
	if got := CompareDays(early, late); got != -1 {
		t.Fatalf("backwards=%d, want -1", got)
	}
}

func TestStreakSameDay(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 4
	s.Player.LastActiveDate = testNow.Add(-3 * time.Hour)

	next, _ := mustReduce(t, env, s, UpdateStreak{})
	if next.Player.CurrentStreak != 4 {
		t.Fatalf("streak=%d, want 4", next.Player.CurrentStreak)
	}
	if !next.Player.LastActiveDate.Equal(testNow) {
		t.Fatalf("lastActiveDate not stamped: %v", next.Player.LastActiveDate)
	}
}

func TestStreakNextDayMilestone(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 2
	s.Player.LastActiveDate = testNow.AddDate(0, 0, -1)

	next, u := mustReduce(t, env, s, UpdateStreak{})
	if next.Player.CurrentStreak != 3 {
		t.Fatalf("streak=%d, want 3", next.Player.CurrentStreak)
	}
	if len(u.Log) != 1 || u.Log[0].Kind != LogMilestone {
		t.Fatalf("expected one milestone entry, got %+v", u.Log)
	}

	s.Player.CurrentStreak = 3
	next, u = mustReduce(t, env, s, UpdateStreak{})
	if next.Player.CurrentStreak != 4 {
		t.Fatalf("streak=%d, want 4", next.Player.CurrentStreak)
	}
	if len(u.Log) != 0 {
		t.Fatalf("4 is not a milestone, got %+v", u.Log)
	}

	s.Player.CurrentStreak = 6
	next, u = mustReduce(t, env, s, UpdateStreak{})
	if next.Player.CurrentStreak != 7 || len(u.Log) != 1 {
		t.Fatalf("reaching the goal should log a milestone: streak=%d log=%+v", next.Player.CurrentStreak, u.Log)
	}
	if next.Player.LongestStreak != 7 {
		t.Fatalf("longest=%d, want 7", next.Player.LongestStreak)
	}
}

func TestStreakBroken(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 9
	s.Player.LongestStreak = 9
	s.Player.StreakRewardClaimed = true
	s.Player.LastActiveDate = testNow.AddDate(0, 0, -3)

	next, u := mustReduce(t, env, s, UpdateStreak{})
	if next.Player.CurrentStreak != 1 {
		t.Fatalf("streak=%d, want 1", next.Player.CurrentStreak)
	}
	if next.Player.LongestStreak != 9 {
		t.Fatalf("longest=%d, want 9", next.Player.LongestStreak)
	}
	if next.Player.StreakRewardClaimed {
		t.Fatalf("reward claim should reset with the streak")
	}
	if len(u.Log) != 1 || u.Log[0].Kind != LogStreakBroken {
		t.Fatalf("expected streak broken entry, got %+v", u.Log)
	}
}

func TestStreakClockSkew(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 5
	s.Player.LastActiveDate = testNow.AddDate(0, 0, 2)

	next, u := mustReduce(t, env, s, UpdateStreak{})
	if next.Player.CurrentStreak != 5 {
		t.Fatalf("skewed clock should keep streak, got %d", next.Player.CurrentStreak)
	}
	if len(u.Log) != 0 {
		t.Fatalf("skew should not log to the adventure log")
	}
}

func TestCompleteQuestCreditsOnce(t *testing.T) {
	env := testEnv(testNow)
	s, id := addTestQuest(t, env, NewGameState(7), "Dishes", 50)

	s, u := mustReduce(t, env, s, CompleteQuest{ID: id})
	if u.Empty() {
		t.Fatalf("complete rejected: %s", u.Reason)
	}
	if s.Player.XP != 50 || s.Player.Level != 1 {
		t.Fatalf("after first completion: level=%d xp=%d", s.Player.Level, s.Player.XP)
	}
	if s.Player.Gold != 10 {
		t.Fatalf("gold=%d, want 10", s.Player.Gold)
	}

	again, u := mustReduce(t, env, s, CompleteQuest{ID: id})
	if !u.Empty() {
		t.Fatalf("second completion should be rejected")
	}
	if again.Player.XP != 50 || again.Player.Gold != 10 {
		t.Fatalf("second completion credited: xp=%d gold=%d", again.Player.XP, again.Player.Gold)
	}
	if again.Totals.QuestsCompleted != 1 {
		t.Fatalf("completed=%d, want 1", again.Totals.QuestsCompleted)
	}
}

func TestCompleteQuestWithStreakLevelsUp(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 3
	s.Player.LastActiveDate = testNow
	s, id := addTestQuest(t, env, s, "Taxes", 50)

	s, u := mustReduce(t, env, s, CompleteQuest{ID: id})
	if s.Player.Level != 2 || s.Player.XP != 0 {
		t.Fatalf("level=%d xp=%d, want level 2 xp 0", s.Player.Level, s.Player.XP)
	}
	if s.Player.XPToNextLevel != 150 {
		t.Fatalf("xpToNextLevel=%d, want 150", s.Player.XPToNextLevel)
	}
	var leveled bool
	for _, n := range u.Notices {
		if n.Kind == NoticeLevelUp {
			leveled = true
		}
	}
	if !leveled {
		t.Fatalf("expected a level-up notice, got %+v", u.Notices)
	}
	q, _, _ := s.Quest(id)
	if q.Status != StatusCompleted || q.CompletedAt == nil {
		t.Fatalf("quest not completed: %+v", q)
	}
}

func TestCompleteMainQuestBonus(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.LastActiveDate = testNow
	s.Player.CurrentStreak = 1
	s, id := addTestQuest(t, env, s, "Write thesis", 40)
	s, _ = mustReduce(t, env, s, SetMainQuest{Title: "write thesis"})

	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})
	if s.Player.XP != 60 {
		t.Fatalf("xp=%d, want 60 with main quest bonus", s.Player.XP)
	}
}

func TestCompleteQuestTrainsSkill(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s, u := mustReduce(t, env, s, AddQuest{Title: "Ship feature", Category: CategoryWork, XPReward: 30})
	if u.Empty() {
		t.Fatalf("add rejected")
	}
	id := s.Quests[0].ID
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})

	chart := BuildSkillChart(s, env.Catalog)
	if chart.Dominant != "focus" {
		t.Fatalf("dominant=%q, want focus", chart.Dominant)
	}
	if chart.Class != env.Catalog.ClassFor("focus") {
		t.Fatalf("class=%q", chart.Class)
	}
}

func TestPauseResumeFail(t *testing.T) {
	env := testEnv(testNow)
	s, id := addTestQuest(t, env, NewGameState(7), "Gym", 25)

	s, _ = mustReduce(t, env, s, PauseQuest{ID: id})
	if q, _, _ := s.Quest(id); q.Status != StatusPaused {
		t.Fatalf("status=%s, want paused", q.Status)
	}
	if _, u := mustReduce(t, env, s, PauseQuest{ID: id}); !u.Empty() {
		t.Fatalf("pausing a paused quest should be rejected")
	}
	s, _ = mustReduce(t, env, s, ResumeQuest{ID: id})
	s, _ = mustReduce(t, env, s, FailQuest{ID: id})
	if q, _, _ := s.Quest(id); q.Status != StatusFailed {
		t.Fatalf("status=%s, want failed", q.Status)
	}
	if s.Player.XP != 0 {
		t.Fatalf("failing should not credit XP")
	}
	if _, u := mustReduce(t, env, s, CompleteQuest{ID: id}); !u.Empty() {
		t.Fatalf("failed quest should not complete")
	}
}

func TestAddQuestValidation(t *testing.T) {
	env := testEnv(testNow)
	_, _, err := Reduce(env, NewGameState(7), AddQuest{Title: "  "})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	_, _, err = Reduce(env, NewGameState(7), AddQuest{Title: "x", Category: "fun"})
	if !errors.As(err, &verr) || verr.Field != "category" {
		t.Fatalf("expected category ValidationError, got %v", err)
	}
}

func TestSpendGoldAboveBalance(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.Gold = 20

	next, u := mustReduce(t, env, s, SpendGold{Amount: 21})
	if !u.Empty() {
		t.Fatalf("overspend should be rejected")
	}
	if u.Reason == "" {
		t.Fatalf("rejection should carry a reason")
	}
	if next.Player.Gold != 20 || !next.LastSaved.Equal(s.LastSaved) || len(next.Log) != len(s.Log) {
		t.Fatalf("state changed on rejection: %+v", next.Player)
	}

	next, u = mustReduce(t, env, s, SpendGold{Amount: 20, Item: "boba"})
	if u.Empty() || next.Player.Gold != 0 {
		t.Fatalf("spend all: gold=%d", next.Player.Gold)
	}
	if !next.LastSaved.Equal(testNow) {
		t.Fatalf("lastSaved not stamped")
	}
}

func TestUndoCompleteQuest(t *testing.T) {
	env := testEnv(testNow)
	s, id := addTestQuest(t, env, NewGameState(7), "Dishes", 50)
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})
	if len(s.Undo) != 1 {
		t.Fatalf("undo entries=%d, want 1", len(s.Undo))
	}

	later := testEnv(testNow.Add(10 * time.Second))
	undone, u := mustReduce(t, later, s, Undo{})
	if u.Empty() {
		t.Fatalf("undo rejected: %s", u.Reason)
	}
	q, _, _ := undone.Quest(id)
	if q.Status != StatusActive || q.CompletedAt != nil {
		t.Fatalf("quest not restored: %+v", q)
	}
	if undone.Player.XP != 0 || undone.Player.Gold != 0 {
		t.Fatalf("rewards not reverted: xp=%d gold=%d", undone.Player.XP, undone.Player.Gold)
	}
	if undone.Totals.QuestsCompleted != 0 {
		t.Fatalf("analytics not reverted: %+v", undone.Totals)
	}
	if len(undone.Undo) != 0 {
		t.Fatalf("undo entry should be consumed")
	}
	if len(undone.Collectibles) != len(s.Collectibles)-countFrom(s.Collectibles, id) {
		t.Fatalf("dropped collectible not removed")
	}
}

func countFrom(cs []Collectible, questID string) int {
	n := 0
	for _, c := range cs {
		if c.SourceQuestID == questID {
			n++
		}
	}
	return n
}

func TestUndoExpires(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.Gold = 30
	s, _ = mustReduce(t, env, s, SpendGold{Amount: 10})

	late := testEnv(testNow.Add(DefaultUndoWindow))
	next, u := mustReduce(t, late, s, Undo{})
	if !u.Empty() {
		t.Fatalf("expired undo should be rejected")
	}
	if next.Player.Gold != 20 {
		t.Fatalf("gold=%d, want 20", next.Player.Gold)
	}
	if len(next.Undo) != 0 {
		t.Fatalf("expired entries should be pruned")
	}
}

func TestUndoKeepsLaterXP(t *testing.T) {
	env := testEnv(testNow)
	s, a := addTestQuest(t, env, NewGameState(7), "Water plants", 30)
	s, b := addTestQuest(t, env, s, "Call dentist", 40)
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: a})
	undoA := s.Undo[0].ID
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: b})
	if s.Player.XP != 70 {
		t.Fatalf("xp=%d, want 70", s.Player.XP)
	}

	s, u := mustReduce(t, env, s, Undo{ID: undoA})
	if u.Empty() {
		t.Fatalf("undo rejected: %s", u.Reason)
	}
	if s.Player.XP != 40 {
		t.Fatalf("undoing one quest should keep the other's 40 XP, got xp=%d", s.Player.XP)
	}
	if q, _, _ := s.Quest(b); q.Status != StatusCompleted {
		t.Fatalf("other quest status=%s", q.Status)
	}
	if q, _, _ := s.Quest(a); q.Status != StatusActive {
		t.Fatalf("undone quest status=%s", q.Status)
	}
}

func TestUndoDropsLevelGainedByQuest(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 3
	s.Player.LastActiveDate = testNow
	s, a := addTestQuest(t, env, s, "Taxes", 50)
	s, b := addTestQuest(t, env, s, "Email", 20)

	s, _ = mustReduce(t, env, s, CompleteQuest{ID: a})
	undoA := s.Undo[0].ID
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: b})
	if s.Player.Level != 2 || s.Player.XP != 40 {
		t.Fatalf("before undo: level=%d xp=%d", s.Player.Level, s.Player.XP)
	}

	s, _ = mustReduce(t, env, s, Undo{ID: undoA})
	if s.Player.Level != 1 || s.Player.XP != 40 || s.Player.XPToNextLevel != 100 {
		t.Fatalf("after undo: level=%d xp=%d next=%d, want level 1 xp 40 next 100",
			s.Player.Level, s.Player.XP, s.Player.XPToNextLevel)
	}
}

func TestUndoHealthLogKeepsLaterXP(t *testing.T) {
	env := testEnv(testNow)
	s, _ := mustReduce(t, env, NewGameState(7), LogHealthActivity{TypeID: "walk", DurationMinutes: 20})
	s, _ = mustReduce(t, env, s, GainXP{Amount: 40, Source: "focus"})
	if s.Player.XP != 55 {
		t.Fatalf("xp=%d, want 55", s.Player.XP)
	}
	s, _ = mustReduce(t, env, s, Undo{})
	if s.Player.XP != 40 || len(s.HealthActivities) != 0 {
		t.Fatalf("after undo: xp=%d activities=%d, want 40 and 0", s.Player.XP, len(s.HealthActivities))
	}
}

func TestRevokeXPReturnsSkillPoint(t *testing.T) {
	p := Player{Level: 3, XP: 10, XPToNextLevel: XPForLevel(3), SkillPoints: 1}
	revokeXP(&p, 50)
	if p.Level != 2 || p.XP != 110 || p.SkillPoints != 0 || p.XPToNextLevel != 150 {
		t.Fatalf("got level=%d xp=%d points=%d next=%d", p.Level, p.XP, p.SkillPoints, p.XPToNextLevel)
	}

	p = Player{Level: 1, XP: 5, XPToNextLevel: 100}
	revokeXP(&p, 50)
	if p.Level != 1 || p.XP != 0 {
		t.Fatalf("xp should floor at zero on level 1, got level=%d xp=%d", p.Level, p.XP)
	}
}

func TestUndoCompleteQuestRestoresStreak(t *testing.T) {
	env := testEnv(testNow)
	s, id := addTestQuest(t, env, NewGameState(7), "Dishes", 20)
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})
	if s.Player.CurrentStreak != 1 {
		t.Fatalf("streak=%d, want 1", s.Player.CurrentStreak)
	}
	s, _ = mustReduce(t, env, s, Undo{})
	if s.Player.CurrentStreak != 0 || s.Player.LongestStreak != 0 || !s.Player.LastActiveDate.IsZero() {
		t.Fatalf("undo left streak=%d longest=%d lastActive=%v",
			s.Player.CurrentStreak, s.Player.LongestStreak, s.Player.LastActiveDate)
	}
}

func TestUndoCompleteQuestRestoresBrokenStreak(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 9
	s.Player.LongestStreak = 9
	s.Player.StreakRewardClaimed = true
	last := testNow.AddDate(0, 0, -3)
	s.Player.LastActiveDate = last
	s, id := addTestQuest(t, env, s, "Dishes", 20)

	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})
	if s.Player.CurrentStreak != 1 {
		t.Fatalf("streak=%d, want 1 after a gap", s.Player.CurrentStreak)
	}
	s, _ = mustReduce(t, env, s, Undo{})
	if s.Player.CurrentStreak != 9 || !s.Player.StreakRewardClaimed || !s.Player.LastActiveDate.Equal(last) {
		t.Fatalf("undo left streak=%d claimed=%v lastActive=%v",
			s.Player.CurrentStreak, s.Player.StreakRewardClaimed, s.Player.LastActiveDate)
	}
}

func TestUndoKeepsStreakAfterLaterActivity(t *testing.T) {
	env := testEnv(testNow)
	s, id := addTestQuest(t, env, NewGameState(7), "Dishes", 20)
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})

	later := testEnv(testNow.Add(5 * time.Second))
	s, _ = mustReduce(t, later, s, UpdateStreak{})
	s, _ = mustReduce(t, later, s, Undo{})
	if s.Player.CurrentStreak != 1 || !s.Player.LastActiveDate.Equal(later.Now) {
		t.Fatalf("later check-in should keep the day: streak=%d lastActive=%v",
			s.Player.CurrentStreak, s.Player.LastActiveDate)
	}
}

// Completion records today's activity first, so the multiplier sees the
// extended streak.
func TestCompleteQuestUsesExtendedStreak(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.CurrentStreak = 2
	s.Player.LastActiveDate = testNow.AddDate(0, 0, -1)
	s, id := addTestQuest(t, env, s, "Laundry", 20)

	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})
	if s.Player.CurrentStreak != 3 {
		t.Fatalf("streak=%d, want 3", s.Player.CurrentStreak)
	}
	if s.Player.XP != 40 {
		t.Fatalf("xp=%d, want 40 at the x2 multiplier", s.Player.XP)
	}
}

func TestHealthActivityClampsGauges(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.Health = 98

	next, u := mustReduce(t, env, s, LogHealthActivity{TypeID: "walk", DurationMinutes: 20})
	if u.Empty() {
		t.Fatalf("log rejected: %s", u.Reason)
	}
	if next.Player.Health != GaugeMax {
		t.Fatalf("health=%d, want clamp at %d", next.Player.Health, GaugeMax)
	}
	rec := next.HealthActivities[0]
	if rec.HealthDelta != 2 {
		t.Fatalf("recorded delta=%d, want 2", rec.HealthDelta)
	}
	if rec.XPGained != 15 || next.Player.XP != 15 {
		t.Fatalf("xp=%d gained=%d, want 15", next.Player.XP, rec.XPGained)
	}

	s.Player.Health = 2
	next, _ = mustReduce(t, env, s, LogHealthActivity{TypeID: "junk_food"})
	if next.Player.Health != 0 {
		t.Fatalf("health=%d, want 0", next.Player.Health)
	}

	if _, _, err := Reduce(env, s, LogHealthActivity{TypeID: "skydiving"}); err == nil {
		t.Fatalf("unknown activity should fail validation")
	}
}

func TestRepeatableCooldown(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)

	s, u := mustReduce(t, env, s, PerformRepeatableAction{ActionID: "drink_water"})
	if u.Empty() {
		t.Fatalf("first perform rejected: %s", u.Reason)
	}
	if s.Repeatables["drink_water"].Count != 1 {
		t.Fatalf("count=%d", s.Repeatables["drink_water"].Count)
	}

	soon := testEnv(testNow.Add(10 * time.Minute))
	if _, u := mustReduce(t, soon, s, PerformRepeatableAction{ActionID: "drink_water"}); !u.Empty() {
		t.Fatalf("cooldown not enforced")
	}

	later := testEnv(testNow.Add(31 * time.Minute))
	s, u = mustReduce(t, later, s, PerformRepeatableAction{ActionID: "drink_water"})
	if u.Empty() || s.Repeatables["drink_water"].Count != 2 {
		t.Fatalf("perform after cooldown: %+v", s.Repeatables["drink_water"])
	}
}

func TestFocusSession(t *testing.T) {
	env := testEnv(testNow)
	s, _ := mustReduce(t, env, NewGameState(7), CompleteFocusSession{Minutes: 25})
	if s.Player.XP != 50 {
		t.Fatalf("xp=%d, want 50", s.Player.XP)
	}
	if s.Totals.FocusMinutes != 25 {
		t.Fatalf("focus minutes=%d", s.Totals.FocusMinutes)
	}
	s.Player.Energy = 50
	s, _ = mustReduce(t, env, s, CompleteFocusSession{Kind: FocusBreak, Minutes: 5})
	if s.Player.Energy != 55 || s.Player.XP != 50 {
		t.Fatalf("break: energy=%d xp=%d", s.Player.Energy, s.Player.XP)
	}
}

func TestUpdateMoodMovesRealm(t *testing.T) {
	env := testEnv(testNow)
	s, u := mustReduce(t, env, NewGameState(7), UpdateMood{Mood: "Anxious", Intensity: 4})
	if s.CurrentRealm != "whispering_woods" {
		t.Fatalf("realm=%q", s.CurrentRealm)
	}
	if len(u.Notices) == 0 || u.Notices[len(u.Notices)-1].Kind != NoticeRealm {
		t.Fatalf("expected realm notice, got %+v", u.Notices)
	}
	if s.Moods[0].Intensity != 4 {
		t.Fatalf("intensity=%d", s.Moods[0].Intensity)
	}

	s, _ = mustReduce(t, env, s, UpdateMood{Mood: "tired"})
	if s.Moods[1].Intensity != 3 {
		t.Fatalf("default intensity=%d, want 3", s.Moods[1].Intensity)
	}
	if _, _, err := Reduce(env, s, UpdateMood{Mood: "ok", Intensity: 9}); err == nil {
		t.Fatalf("intensity 9 should fail validation")
	}
}

func TestUnlockSkill(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s.Player.SkillPoints = 3

	if _, u := mustReduce(t, env, s, UnlockSkill{SkillID: "hyperfocus"}); !u.Empty() {
		t.Fatalf("hyperfocus requires momentum")
	}
	s, _ = mustReduce(t, env, s, UnlockSkill{SkillID: "momentum"})
	s, u := mustReduce(t, env, s, UnlockSkill{SkillID: "hyperfocus"})
	if u.Empty() {
		t.Fatalf("unlock rejected: %s", u.Reason)
	}
	if s.Player.SkillPoints != 0 {
		t.Fatalf("skill points=%d, want 0", s.Player.SkillPoints)
	}
	if !s.HasSkill("hyperfocus") || !s.HasSkill("momentum") {
		t.Fatalf("unlocked=%v", s.Player.UnlockedSkills)
	}
	if _, u := mustReduce(t, env, s, UnlockSkill{SkillID: "iron_will"}); !u.Empty() {
		t.Fatalf("unlock without points should be rejected")
	}
}

func TestClaimStreakReward(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(3)
	s.Player.CurrentStreak = 2

	if _, u := mustReduce(t, env, s, ClaimStreakReward{}); !u.Empty() {
		t.Fatalf("claim below goal should be rejected")
	}
	s.Player.CurrentStreak = 3
	s, _ = mustReduce(t, env, s, ClaimStreakReward{})
	if s.Player.Gold != 30 || !s.Player.StreakRewardClaimed {
		t.Fatalf("gold=%d claimed=%v", s.Player.Gold, s.Player.StreakRewardClaimed)
	}
	if _, u := mustReduce(t, env, s, ClaimStreakReward{}); !u.Empty() {
		t.Fatalf("second claim should be rejected")
	}
}

func TestUnlockAchievementOnce(t *testing.T) {
	env := testEnv(testNow)
	s, _ := mustReduce(t, env, NewGameState(7), UnlockAchievement{ID: "first_quest"})
	if !s.HasAchievement("first_quest") || s.Player.Gold != 10 {
		t.Fatalf("achievement not applied: gold=%d", s.Player.Gold)
	}
	if _, u := mustReduce(t, env, s, UnlockAchievement{ID: "first_quest"}); !u.Empty() {
		t.Fatalf("achievement unlocked twice")
	}
}

func TestLogIsCapped(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	for i := 0; i < maxLogEntries+25; i++ {
		s, _ = mustReduce(t, env, s, AddLogEntry{Message: fmt.Sprintf("entry %d", i)})
	}
	if len(s.Log) != maxLogEntries {
		t.Fatalf("log=%d, want %d", len(s.Log), maxLogEntries)
	}
	if last := s.Log[len(s.Log)-1].Message; last != fmt.Sprintf("entry %d", maxLogEntries+24) {
		t.Fatalf("newest entry=%q", last)
	}
}

func TestResetGameKeepsGoal(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(10)
	s.Player.Gold = 99
	s, _ = addTestQuest(t, env, s, "x", 10)

	s, _ = mustReduce(t, env, s, ResetGame{})
	if s.Player.Gold != 0 || len(s.Quests) != 0 {
		t.Fatalf("reset left data behind: %+v", s.Player)
	}
	if s.Player.StreakGoal != 10 {
		t.Fatalf("goal=%d, want 10", s.Player.StreakGoal)
	}
}

func TestCollectibleDrops(t *testing.T) {
	c := catalog.MustDefault()
	drops := 0
	for seed := uint64(0); seed < 200; seed++ {
		env := Env{Now: testNow, Rand: rand.New(rand.NewPCG(seed, seed)), Catalog: c, NewID: func() string { return "c" }}
		col, ok := rollCollectible(env, Quest{ID: "q", Difficulty: DifficultyEpic})
		if !ok {
			continue
		}
		drops++
		if !col.Rarity.IsValid() || col.SourceQuestID != "q" || col.Name == "" {
			t.Fatalf("bad collectible: %+v", col)
		}
	}
	if drops < 80 || drops > 160 {
		t.Fatalf("epic drops=%d out of 200, expected around 120", drops)
	}
}

func TestDecodeAction(t *testing.T) {
	a, err := DecodeAction("spend_gold", json.RawMessage(`{"amount": 5, "item": "tea"}`))
	if err != nil {
		t.Fatalf("DecodeAction: %v", err)
	}
	sg, ok := a.(SpendGold)
	if !ok || sg.Amount != 5 || sg.Item != "tea" {
		t.Fatalf("decoded %#v", a)
	}

	if _, err := DecodeAction("RESET_GAME", nil); err != nil {
		t.Fatalf("empty payload: %v", err)
	}
	if _, err := DecodeAction("TELEPORT", nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := DecodeAction("GAIN_XP", json.RawMessage(`{"amount": "lots"}`)); err == nil {
		t.Fatalf("expected payload error")
	}

	for _, tag := range ActionTypes() {
		a, err := DecodeAction(string(tag), json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("DecodeAction(%s): %v", tag, err)
		}
		if a.Type() != tag {
			t.Fatalf("round trip %s -> %s", tag, a.Type())
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	env := testEnv(testNow)
	s, id := addTestQuest(t, env, NewGameState(7), "Dishes", 50)
	s, _ = mustReduce(t, env, s, CompleteQuest{ID: id})
	s, _ = mustReduce(t, env, s, UpdateMood{Mood: "calm"})

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "Revert") {
		t.Fatalf("undo entries must not be serialized")
	}
	got, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if !got.Player.LastActiveDate.Equal(s.Player.LastActiveDate) || !got.LastSaved.Equal(s.LastSaved) {
		t.Fatalf("times lost in round trip")
	}
	q, _, _ := got.Quest(id)
	if q.CompletedAt == nil || !q.CompletedAt.Equal(testNow) {
		t.Fatalf("completedAt=%v", q.CompletedAt)
	}
	if got.CurrentRealm != "crystal_lake" || got.Player.XP != s.Player.XP {
		t.Fatalf("round trip mismatch: realm=%q xp=%d", got.CurrentRealm, got.Player.XP)
	}
}

func TestDecodeStateDefaults(t *testing.T) {
	got, err := DecodeState([]byte(`{"player":{"level":3,"xp":10}}`))
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if got.Player.XPToNextLevel != XPForLevel(3) {
		t.Fatalf("xpToNextLevel=%d", got.Player.XPToNextLevel)
	}
	if got.Quests == nil || got.Repeatables == nil || got.Analytics == nil {
		t.Fatalf("collections not defaulted")
	}
	if got.Player.StreakGoal != DefaultStreakGoal {
		t.Fatalf("goal=%d", got.Player.StreakGoal)
	}
}

func TestSummarize(t *testing.T) {
	s := NewGameState(7)
	s.Analytics[dayKey(testNow)] = Tally{QuestsCompleted: 2, QuestsFailed: 2, XPEarned: 70}
	s.Analytics[dayKey(testNow.AddDate(0, 0, -1))] = Tally{XPEarned: 30}
	s.Analytics[dayKey(testNow.AddDate(0, 0, -30))] = Tally{XPEarned: 999}

	sum := Summarize(s, testNow, 7)
	if len(sum.Days) != 7 {
		t.Fatalf("days=%d", len(sum.Days))
	}
	if sum.Total.XPEarned != 100 {
		t.Fatalf("xp=%d, want 100", sum.Total.XPEarned)
	}
	if sum.ActiveDays != 2 || sum.BestDay != dayKey(testNow) {
		t.Fatalf("active=%d best=%s", sum.ActiveDays, sum.BestDay)
	}
	if sum.Completion != 0.5 {
		t.Fatalf("completion=%v", sum.Completion)
	}
	if sum.Days[6].Date != dayKey(testNow) {
		t.Fatalf("days should end today, got %s", sum.Days[6].Date)
	}
}

func TestSuggestNextQuest(t *testing.T) {
	env := testEnv(testNow)
	s := NewGameState(7)
	s, _ = mustReduce(t, env, s, AddQuest{Title: "Big scary report", Priority: PriorityUrgent, Energy: LevelHigh, Anxiety: LevelHigh})
	s, _ = mustReduce(t, env, s, AddQuest{Title: "Water plants", Priority: PriorityLow, Energy: LevelLow, Anxiety: LevelLow})

	q, ok := SuggestNextQuest(s)
	if !ok || q.Title != "Big scary report" {
		t.Fatalf("rested suggestion=%q", q.Title)
	}
	s.Player.Energy = 20
	q, _ = SuggestNextQuest(s)
	if q.Title != "Water plants" {
		t.Fatalf("tired suggestion=%q", q.Title)
	}
}
