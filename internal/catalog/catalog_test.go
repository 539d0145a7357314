package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Skills, 7)
	walk, ok := c.HealthActivity("walk")
	require.True(t, ok)
	assert.Equal(t, 15, walk.XP)
	assert.Equal(t, "vitality", walk.Skill)

	water, ok := c.RepeatableAction("drink_water")
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, water.Cooldown)

	assert.NotEmpty(t, c.CollectiblesOf(RarityCommon))
	assert.Len(t, c.CollectiblesOf(RarityLegendary), 1)
}

func TestRealmFor(t *testing.T) {
	c := MustDefault()

	assert.Equal(t, "whispering_woods", c.RealmFor("Anxious").ID)
	assert.Equal(t, "sunlit_meadows", c.RealmFor(" happy ").ID)
	assert.Equal(t, "village_square", c.RealmFor("something-else").ID)
}

func TestClassFor(t *testing.T) {
	c := MustDefault()
	assert.Equal(t, "Calm Monk", c.ClassFor("mindfulness"))
	assert.Equal(t, "Adventurer", c.ClassFor("nope"))
}

func TestLoadOverridesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
health_activities:
  - id: swim
    name: Swim
    category: exercise
    health: 6
    energy: -2
    xp: 30
    skill: vitality
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	require.Len(t, c.HealthActivities, 1)
	_, ok := c.HealthActivity("walk")
	assert.False(t, ok)
	swim, ok := c.HealthActivity("swim")
	require.True(t, ok)
	assert.Equal(t, 30, swim.XP)

	// untouched sections keep the defaults
	assert.Len(t, c.Skills, 7)
}

func TestValidateRejectsBadReferences(t *testing.T) {
	_, err := Parse([]byte(`
skills:
  - id: focus
    name: Focus
health_activities:
  - id: walk
    name: Walk
    skill: cardio
`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
skills:
  - id: focus
    name: Focus
skill_tree:
  - id: a
    cost: 1
    requires: [b]
`))
	assert.Error(t, err)
}
