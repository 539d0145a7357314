package engine

import (
	"math"
)

const (
	// BaseLevelXP is the XP needed to leave level 1.
	BaseLevelXP = 100.0

	// LevelGrowth scales the threshold of each following level.
	LevelGrowth = 1.5

	// MainQuestBonus applies to the quest marked as the season's main quest.
	MainQuestBonus = 1.5

	skillPointEvery = 3
)

// XPForLevel returns the XP needed to advance from level N to N+1.
// Levels below 1 are treated as level 1.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	req := BaseLevelXP * math.Pow(LevelGrowth, float64(level-1))
	return int(math.Floor(req))
}

// StreakMultiplier returns the XP multiplier for a streak length.
func StreakMultiplier(streak int) int {
	switch {
	case streak >= 7:
		return 3
	case streak >= 3:
		return 2
	default:
		return 1
	}
}

// SkillEffect transforms credited XP for an unlocked skill node.
type SkillEffect func(xp int) int

// SkillEffects is looked up by unlocked skill id. Ids without an entry have
// no XP effect.
var SkillEffects = map[string]SkillEffect{
	"quick_start": func(xp int) int {
		if xp > 0 {
			return xp + 5
		}
		return xp
	},
	"momentum": func(xp int) int {
		return int(math.Floor(float64(xp) * 1.10))
	},
	"hyperfocus": func(xp int) int {
		return int(math.Floor(float64(xp) * 1.25))
	},
	"iron_will": func(xp int) int {
		if xp > 0 && xp < 10 {
			return 10
		}
		return xp
	},
}

type LevelUpResult struct {
	LeveledUp         bool
	NewLevel          int
	SkillPointsEarned int
}

type XPGain struct {
	NewXP          int
	NewLevel       int
	ActualXPGained int
	LevelUp        LevelUpResult
}

// CreditedXP applies the streak multiplier and bonus to a base reward, then
// the effects of every unlocked skill in order.
func CreditedXP(reward, streak int, bonus float64, unlocked []string) int {
	if reward <= 0 {
		return 0
	}
	if bonus <= 0 {
		bonus = 1
	}
	xp := int(math.Floor(float64(reward*StreakMultiplier(streak)) * bonus))
	for _, id := range unlocked {
		if effect, ok := SkillEffects[id]; ok {
			xp = effect(xp)
		}
	}
	return xp
}

// CalculateXPGain credits a reward against the current progress. At most one
// level is gained per call; excess XP carries over into the new level.
func CalculateXPGain(currentXP, level, reward, streak int, bonus float64, unlocked []string) XPGain {
	if level < 1 {
		level = 1
	}
	gained := CreditedXP(reward, streak, bonus, unlocked)
	out := XPGain{
		NewXP:          currentXP + gained,
		NewLevel:       level,
		ActualXPGained: gained,
		LevelUp:        LevelUpResult{NewLevel: level},
	}

	threshold := XPForLevel(level)
	if out.NewXP >= threshold {
		out.NewXP -= threshold
		out.NewLevel = level + 1
		out.LevelUp.LeveledUp = true
		out.LevelUp.NewLevel = out.NewLevel
		if out.NewLevel%skillPointEvery == 0 {
			out.LevelUp.SkillPointsEarned = 1
		}
	}
	return out
}

// grantXP credits reward to the player and reports the gain.
func grantXP(p *Player, reward int, bonus float64) XPGain {
	g := CalculateXPGain(p.XP, p.Level, reward, p.CurrentStreak, bonus, p.UnlockedSkills)
	p.XP = g.NewXP
	p.Level = g.NewLevel
	p.XPToNextLevel = XPForLevel(p.Level)
	p.SkillPoints += g.LevelUp.SkillPointsEarned
	return g
}

// revokeXP takes xp back from the player, dropping levels as needed. Each
// level lost returns the skill point it granted, so later gains are kept.
func revokeXP(p *Player, xp int) {
	if xp <= 0 {
		return
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP -= xp
	for p.XP < 0 && p.Level > 1 {
		if p.Level%skillPointEvery == 0 && p.SkillPoints > 0 {
			p.SkillPoints--
		}
		p.Level--
		p.XP += XPForLevel(p.Level)
	}
	if p.XP < 0 {
		p.XP = 0
	}
	p.XPToNextLevel = XPForLevel(p.Level)
}
