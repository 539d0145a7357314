package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adhdrpg/internal/catalog"
	"adhdrpg/internal/engine"
)

func TestDefaultAchievementsCompile(t *testing.T) {
	_, err := NewAchievements(catalog.MustDefault())
	require.NoError(t, err)
}

func TestEarned(t *testing.T) {
	ach, err := NewAchievements(catalog.MustDefault())
	require.NoError(t, err)

	s := engine.NewGameState(7)
	ids, err := ach.Earned(s)
	require.NoError(t, err)
	assert.Empty(t, ids)

	s.Totals.QuestsCompleted = 1
	s.Player.CurrentStreak = 3
	s.Player.Level = 5
	ids, err = ach.Earned(s)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first_quest", "streak_3", "level_5"}, ids)
}

func TestConditionsCanReadSkills(t *testing.T) {
	c := catalog.MustDefault()
	c.Achievements = []catalog.Achievement{
		{ID: "momentous", Name: "Momentous", Condition: "'momentum' in skills && player.level >= 2"},
	}
	ach, err := NewAchievements(c)
	require.NoError(t, err)

	s := engine.NewGameState(7)
	s.Player.Level = 2
	ids, err := ach.Earned(s)
	require.NoError(t, err)
	assert.Empty(t, ids)

	s.Player.UnlockedSkills = []string{"momentum"}
	ids, err = ach.Earned(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"momentous"}, ids)
}

func TestBadConditionsFailAtCompile(t *testing.T) {
	c := catalog.MustDefault()

	c.Achievements = []catalog.Achievement{{ID: "typo", Condition: "player.level >="}}
	_, err := NewAchievements(c)
	assert.Error(t, err)

	c.Achievements = []catalog.Achievement{{ID: "not_bool", Condition: "player.level + 1"}}
	_, err = NewAchievements(c)
	assert.Error(t, err)

	c.Achievements = []catalog.Achievement{{ID: "unknown_var", Condition: "wallet.gold > 1"}}
	_, err = NewAchievements(c)
	assert.Error(t, err)
}

func TestContextUsesTotals(t *testing.T) {
	s := engine.NewGameState(7)
	s.Totals.FocusMinutes = 90
	s.Collectibles = append(s.Collectibles, engine.Collectible{ID: "a"}, engine.Collectible{ID: "b"})

	ctx := Context(s)
	stats := ctx["stats"].(map[string]int64)
	assert.Equal(t, int64(90), stats["focus_minutes"])
	assert.Equal(t, int64(2), stats["collectibles"])
}
