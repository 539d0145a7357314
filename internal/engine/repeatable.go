package engine

import (
	"fmt"
	"strings"
	"time"
)

const focusXPPerMinute = 2

func reduceRepeatable(env Env, s GameState, a Action) (Update, error) {
	switch act := a.(type) {
	case PerformRepeatableAction:
		return performRepeatable(env, s, act)
	case CompleteFocusSession:
		return completeFocus(env, s, act)
	}
	return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

// CooldownRemaining reports how long until id can be performed again.
func CooldownRemaining(s GameState, cooldown time.Duration, id string, now time.Time) time.Duration {
	st, ok := s.Repeatables[id]
	if !ok || st.LastPerformed.IsZero() {
		return 0
	}
	left := st.LastPerformed.Add(cooldown).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func performRepeatable(env Env, s GameState, act PerformRepeatableAction) (Update, error) {
	def, ok := env.Catalog.RepeatableAction(strings.TrimSpace(act.ActionID))
	if !ok {
		return Update{}, ValidationError{Field: "actionId", Reason: fmt.Sprintf("unknown repeatable action %q", act.ActionID)}
	}
	now := env.Now
	if left := CooldownRemaining(s, def.Cooldown, def.ID, now); left > 0 {
		return reject("%s is cooling down for %s", def.Name, left.Round(time.Second)), nil
	}

	p := s.Player
	p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)
	gain := XPGain{}
	if def.XP > 0 {
		gain = grantXP(&p, def.XP, 1)
	}
	p.Gold += def.Gold

	reps := make(map[string]RepeatableState, len(s.Repeatables)+1)
	for k, v := range s.Repeatables {
		reps[k] = v
	}
	st := reps[def.ID]
	st.Count++
	st.LastPerformed = now
	reps[def.ID] = st

	u := Update{
		Player:      &p,
		Repeatables: reps,
		Log: append([]LogEntry{{
			At:      now,
			Kind:    LogInfo,
			Message: fmt.Sprintf("%s (+%d XP, +%d gold)", def.Name, gain.ActualXPGained, def.Gold),
		}}, levelUpLog(gain, now)...),
	}
	if def.Skill != "" && gain.ActualXPGained > 0 {
		u.Skills = addSkillXP(s.Skills, def.Skill, gain.ActualXPGained)
	}
	u.Analytics, u.Totals = recordTally(s, now, Tally{
		Repeatables: 1,
		XPEarned:    gain.ActualXPGained,
		GoldEarned:  def.Gold,
	})
	return u, nil
}

func completeFocus(env Env, s GameState, act CompleteFocusSession) (Update, error) {
	if act.Minutes <= 0 {
		return Update{}, ValidationError{Field: "minutes", Reason: "session length must be positive"}
	}
	kind := act.Kind
	if kind == "" {
		kind = FocusWork
	}
	if kind != FocusWork && kind != FocusBreak {
		return Update{}, ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown session kind %q", act.Kind)}
	}

	now := env.Now
	session := FocusSession{Kind: kind, Minutes: act.Minutes, CompletedAt: now}
	u := Update{FocusSessions: append(append([]FocusSession{}, s.FocusSessions...), session)}

	if kind == FocusBreak {
		p := s.Player
		p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)
		p.Energy = clampGauge(p.Energy + act.Minutes)
		u.Player = &p
		u.Log = []LogEntry{{At: now, Kind: LogInfo, Message: fmt.Sprintf("Took a %d minute break", act.Minutes)}}
		return u, nil
	}

	p := s.Player
	p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)
	gain := grantXP(&p, act.Minutes*focusXPPerMinute, 1)
	u.Player = &p
	u.Skills = addSkillXP(s.Skills, "focus", gain.ActualXPGained)
	u.Log = append([]LogEntry{{
		At:      now,
		Kind:    LogInfo,
		Message: fmt.Sprintf("Focus session complete: %d minutes (+%d XP)", act.Minutes, gain.ActualXPGained),
	}}, levelUpLog(gain, now)...)
	u.Analytics, u.Totals = recordTally(s, now, Tally{FocusMinutes: act.Minutes, XPEarned: gain.ActualXPGained})
	return u, nil
}
