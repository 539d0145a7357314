package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) IsValid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}

// Skill is one meter of the skill chart.
type Skill struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

// Class is the character class shown when Skill dominates the chart.
type Class struct {
	Skill string `yaml:"skill"`
	Name  string `yaml:"name"`
}

// SkillNode is an unlockable perk bought with skill points.
type SkillNode struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Cost        int      `yaml:"cost"`
	Requires    []string `yaml:"requires"`
}

type HealthActivityType struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
	Health   int    `yaml:"health" json:"health"`
	Energy   int    `yaml:"energy" json:"energy"`
	XP       int    `yaml:"xp" json:"xp"`
	Skill    string `yaml:"skill" json:"skill,omitempty"`
}

type RepeatableAction struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	XP       int           `yaml:"xp"`
	Gold     int           `yaml:"gold"`
	Cooldown time.Duration `yaml:"cooldown"`
	Skill    string        `yaml:"skill"`
}

type CollectibleTemplate struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Rarity Rarity `yaml:"rarity"`
}

// Realm is an inner world the player visits depending on their mood.
type Realm struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Moods   []string `yaml:"moods"`
	Default bool     `yaml:"default"`
}

// Achievement unlocks once its CEL condition evaluates to true.
type Achievement struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Condition   string `yaml:"condition"`
	Gold        int    `yaml:"gold"`
}

type Catalog struct {
	Skills            []Skill               `yaml:"skills"`
	Classes           []Class               `yaml:"classes"`
	SkillTree         []SkillNode           `yaml:"skill_tree"`
	HealthActivities  []HealthActivityType  `yaml:"health_activities"`
	RepeatableActions []RepeatableAction    `yaml:"repeatable_actions"`
	Collectibles      []CollectibleTemplate `yaml:"collectibles"`
	Realms            []Realm               `yaml:"realms"`
	Achievements      []Achievement         `yaml:"achievements"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// MustDefault is Default for package-level wiring and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog file. Sections missing from the file keep the
// embedded defaults. An empty path returns the defaults.
func Load(path string) (*Catalog, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var over Catalog
	if err := yaml.NewDecoder(f).Decode(&over); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	if len(over.Skills) > 0 {
		base.Skills = over.Skills
	}
	if len(over.Classes) > 0 {
		base.Classes = over.Classes
	}
	if len(over.SkillTree) > 0 {
		base.SkillTree = over.SkillTree
	}
	if len(over.HealthActivities) > 0 {
		base.HealthActivities = over.HealthActivities
	}
	if len(over.RepeatableActions) > 0 {
		base.RepeatableActions = over.RepeatableActions
	}
	if len(over.Collectibles) > 0 {
		base.Collectibles = over.Collectibles
	}
	if len(over.Realms) > 0 {
		base.Realms = over.Realms
	}
	if len(over.Achievements) > 0 {
		base.Achievements = over.Achievements
	}

	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return base, nil
}

// Validate checks id uniqueness and cross references.
func (c *Catalog) Validate() error {
	if len(c.Skills) == 0 {
		return fmt.Errorf("catalog: at least one skill is required")
	}
	skills := map[string]bool{}
	for _, s := range c.Skills {
		if s.ID == "" {
			return fmt.Errorf("catalog: skill with empty id")
		}
		if skills[s.ID] {
			return fmt.Errorf("catalog: duplicate skill %q", s.ID)
		}
		skills[s.ID] = true
	}

	nodes := map[string]bool{}
	for _, n := range c.SkillTree {
		if n.ID == "" || nodes[n.ID] {
			return fmt.Errorf("catalog: invalid or duplicate skill node %q", n.ID)
		}
		if n.Cost < 0 {
			return fmt.Errorf("catalog: skill node %q has negative cost", n.ID)
		}
		nodes[n.ID] = true
	}
	for _, n := range c.SkillTree {
		for _, req := range n.Requires {
			if !nodes[req] {
				return fmt.Errorf("catalog: skill node %q requires unknown node %q", n.ID, req)
			}
		}
	}

	seen := map[string]bool{}
	for _, h := range c.HealthActivities {
		if h.ID == "" || seen[h.ID] {
			return fmt.Errorf("catalog: invalid or duplicate health activity %q", h.ID)
		}
		if h.Skill != "" && !skills[h.Skill] {
			return fmt.Errorf("catalog: health activity %q references unknown skill %q", h.ID, h.Skill)
		}
		seen[h.ID] = true
	}

	seen = map[string]bool{}
	for _, r := range c.RepeatableActions {
		if r.ID == "" || seen[r.ID] {
			return fmt.Errorf("catalog: invalid or duplicate repeatable action %q", r.ID)
		}
		if r.Skill != "" && !skills[r.Skill] {
			return fmt.Errorf("catalog: repeatable action %q references unknown skill %q", r.ID, r.Skill)
		}
		seen[r.ID] = true
	}

	for _, t := range c.Collectibles {
		if !t.Rarity.IsValid() {
			return fmt.Errorf("catalog: collectible %q has invalid rarity %q", t.Name, t.Rarity)
		}
	}

	defaults := 0
	for _, r := range c.Realms {
		if r.Default {
			defaults++
		}
	}
	if len(c.Realms) > 0 && defaults != 1 {
		return fmt.Errorf("catalog: exactly one default realm is required, got %d", defaults)
	}

	seen = map[string]bool{}
	for _, a := range c.Achievements {
		if a.ID == "" || seen[a.ID] {
			return fmt.Errorf("catalog: invalid or duplicate achievement %q", a.ID)
		}
		if strings.TrimSpace(a.Condition) == "" {
			return fmt.Errorf("catalog: achievement %q has no condition", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

func (c *Catalog) Skill(id string) (Skill, bool) {
	for _, s := range c.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

func (c *Catalog) ClassFor(skillID string) string {
	for _, cl := range c.Classes {
		if cl.Skill == skillID {
			return cl.Name
		}
	}
	return "Adventurer"
}

func (c *Catalog) SkillNode(id string) (SkillNode, bool) {
	for _, n := range c.SkillTree {
		if n.ID == id {
			return n, true
		}
	}
	return SkillNode{}, false
}

func (c *Catalog) HealthActivity(id string) (HealthActivityType, bool) {
	for _, h := range c.HealthActivities {
		if h.ID == id {
			return h, true
		}
	}
	return HealthActivityType{}, false
}

func (c *Catalog) RepeatableAction(id string) (RepeatableAction, bool) {
	for _, r := range c.RepeatableActions {
		if r.ID == id {
			return r, true
		}
	}
	return RepeatableAction{}, false
}

// CollectiblesOf returns the templates of the given rarity, in catalog order.
func (c *Catalog) CollectiblesOf(r Rarity) []CollectibleTemplate {
	var out []CollectibleTemplate
	for _, t := range c.Collectibles {
		if t.Rarity == r {
			out = append(out, t)
		}
	}
	return out
}

// RealmFor maps a mood to its realm, falling back to the default realm.
func (c *Catalog) RealmFor(mood string) Realm {
	mood = strings.ToLower(strings.TrimSpace(mood))
	var fallback Realm
	for _, r := range c.Realms {
		if r.Default {
			fallback = r
		}
		for _, m := range r.Moods {
			if m == mood {
				return r
			}
		}
	}
	return fallback
}
