package engine

import (
	"fmt"
	"strings"
)

const streakRewardPerDay = 10

func reducePlayer(env Env, s GameState, a Action) (Update, error) {
	p := s.Player
	p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)
	now := env.Now

	switch act := a.(type) {
	case GainXP:
		if act.Amount < 0 {
			return Update{}, ValidationError{Field: "amount", Reason: "XP cannot be negative"}
		}
		if act.Amount == 0 {
			return reject("nothing to gain"), nil
		}
		gain := grantXP(&p, act.Amount, act.Bonus)
		source := act.Source
		if source == "" {
			source = "bonus"
		}
		u := Update{
			Player: &p,
			Log: append([]LogEntry{{
				At:      now,
				Kind:    LogInfo,
				Message: fmt.Sprintf("+%d XP (%s)", gain.ActualXPGained, source),
			}}, levelUpLog(gain, now)...),
		}
		u.Analytics, u.Totals = recordTally(s, now, Tally{XPEarned: gain.ActualXPGained})
		return u, nil

	case AddGold:
		if act.Amount <= 0 {
			return Update{}, ValidationError{Field: "amount", Reason: "gold must be positive"}
		}
		p.Gold += act.Amount
		u := Update{Player: &p}
		u.Analytics, u.Totals = recordTally(s, now, Tally{GoldEarned: act.Amount})
		if act.Reason != "" {
			u.Log = []LogEntry{{At: now, Kind: LogReward, Message: fmt.Sprintf("+%d gold (%s)", act.Amount, act.Reason)}}
		}
		return u, nil

	case SpendGold:
		if act.Amount <= 0 {
			return reject("amount must be positive"), nil
		}
		if act.Amount > p.Gold {
			return reject("not enough gold: have %d, need %d", p.Gold, act.Amount), nil
		}
		p.Gold -= act.Amount
		item := strings.TrimSpace(act.Item)
		if item == "" {
			item = "a treat"
		}
		amount := act.Amount
		return Update{
			Player: &p,
			Log:    []LogEntry{{At: now, Kind: LogInfo, Message: fmt.Sprintf("Spent %d gold on %s", amount, item)}},
			PushUndo: []UndoAction{{
				ID:          env.NewID(),
				Description: fmt.Sprintf("spend %d gold", amount),
				ExpiresAt:   now.Add(env.UndoWindow),
				Revert: func(st *GameState) {
					st.Player.Gold += amount
				},
			}},
		}, nil

	case UpdateStreak:
		entries := applyStreak(&p, now)
		return Update{Player: &p, Log: entries}, nil

	case SetStreakGoal:
		if act.Goal <= 0 {
			return Update{}, ValidationError{Field: "goal", Reason: "streak goal must be positive"}
		}
		if act.Goal == p.StreakGoal {
			return reject("streak goal is already %d", act.Goal), nil
		}
		p.StreakGoal = act.Goal
		p.StreakRewardClaimed = false
		return Update{
			Player: &p,
			Log:    []LogEntry{{At: now, Kind: LogInfo, Message: fmt.Sprintf("New streak goal: %d days", act.Goal)}},
		}, nil

	case ClaimStreakReward:
		if p.StreakRewardClaimed {
			return reject("streak reward already claimed"), nil
		}
		if p.CurrentStreak < p.StreakGoal {
			return reject("streak %d has not reached goal %d", p.CurrentStreak, p.StreakGoal), nil
		}
		reward := p.StreakGoal * streakRewardPerDay
		p.Gold += reward
		p.StreakRewardClaimed = true
		u := Update{
			Player: &p,
			Log: []LogEntry{{
				At:      now,
				Kind:    LogReward,
				Message: fmt.Sprintf("Streak goal of %d days reached! +%d gold", p.StreakGoal, reward),
			}},
		}
		u.Analytics, u.Totals = recordTally(s, now, Tally{GoldEarned: reward})
		return u, nil

	case UnlockSkill:
		node, ok := env.Catalog.SkillNode(act.SkillID)
		if !ok {
			return Update{}, ValidationError{Field: "skillId", Reason: fmt.Sprintf("unknown skill %q", act.SkillID)}
		}
		if s.HasSkill(node.ID) {
			return reject("%s is already unlocked", node.Name), nil
		}
		for _, req := range node.Requires {
			if !s.HasSkill(req) {
				return reject("%s requires %s", node.Name, req), nil
			}
		}
		if p.SkillPoints < node.Cost {
			return reject("%s costs %d skill points, have %d", node.Name, node.Cost, p.SkillPoints), nil
		}
		p.SkillPoints -= node.Cost
		p.UnlockedSkills = append(p.UnlockedSkills, node.ID)
		return Update{
			Player: &p,
			Log:    []LogEntry{{At: now, Kind: LogReward, Message: fmt.Sprintf("Unlocked skill: %s", node.Name)}},
		}, nil
	}
	return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}
