package engine

import (
	"sort"

	"adhdrpg/internal/catalog"
)

// addSkillXP returns a copy of skills with xp added to id. Skill XP never
// goes below zero.
func addSkillXP(skills []PlayerSkill, id string, xp int) []PlayerSkill {
	out := append([]PlayerSkill{}, skills...)
	for i := range out {
		if out[i].ID == id {
			out[i].XP = max(out[i].XP+xp, 0)
			return out
		}
	}
	if xp > 0 {
		out = append(out, PlayerSkill{ID: id, XP: xp})
	}
	return out
}

// SkillMeter is one derived row of the skill chart.
type SkillMeter struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Icon     string  `json:"icon,omitempty"`
	XP       int     `json:"xp"`
	Level    int     `json:"level"`
	Progress float64 `json:"progress"`
}

type SkillChart struct {
	Skills   []SkillMeter `json:"skills"`
	Dominant string       `json:"dominant,omitempty"`
	Class    string       `json:"class"`
}

// SkillLevel walks the player level curve with skill XP.
func SkillLevel(xp int) (level int, progress float64) {
	level = 1
	for xp >= XPForLevel(level) {
		xp -= XPForLevel(level)
		level++
	}
	return level, float64(xp) / float64(XPForLevel(level))
}

// BuildSkillChart derives the chart for every catalog skill. The dominant
// skill is the one with the most XP; ties go to catalog order.
func BuildSkillChart(s GameState, c *catalog.Catalog) SkillChart {
	xp := map[string]int{}
	for _, sk := range s.Skills {
		xp[sk.ID] += sk.XP
	}

	chart := SkillChart{}
	best := 0
	for _, sk := range c.Skills {
		lvl, prog := SkillLevel(xp[sk.ID])
		chart.Skills = append(chart.Skills, SkillMeter{
			ID:       sk.ID,
			Name:     sk.Name,
			Icon:     sk.Icon,
			XP:       xp[sk.ID],
			Level:    lvl,
			Progress: prog,
		})
		if xp[sk.ID] > best {
			best = xp[sk.ID]
			chart.Dominant = sk.ID
		}
	}
	chart.Class = c.ClassFor(chart.Dominant)
	return chart
}

// SuggestNextQuest picks an active quest that fits the player's energy.
// Low energy prefers low-energy, low-anxiety quests; otherwise the most
// urgent quest wins. Due dates and age break ties.
func SuggestNextQuest(s GameState) (Quest, bool) {
	active := s.ActiveQuests()
	if len(active) == 0 {
		return Quest{}, false
	}
	tired := s.Player.Energy < 40

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if tired {
			if ea, eb := levelRank(a.Energy), levelRank(b.Energy); ea != eb {
				return ea < eb
			}
			if xa, xb := levelRank(a.Anxiety), levelRank(b.Anxiety); xa != xb {
				return xa < xb
			}
		}
		if s.MainQuest != "" && (a.Title == s.MainQuest) != (b.Title == s.MainQuest) {
			return a.Title == s.MainQuest
		}
		if a.Priority.rank() != b.Priority.rank() {
			return a.Priority.rank() > b.Priority.rank()
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return active[0], true
}

func levelRank(l Level) int {
	switch l {
	case LevelLow:
		return 0
	case LevelHigh:
		return 2
	default:
		return 1
	}
}
