package engine

import (
	"fmt"
	"strings"
)

func reduceHealth(env Env, s GameState, a Action) (Update, error) {
	act, ok := a.(LogHealthActivity)
	if !ok {
		return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	typ, ok := env.Catalog.HealthActivity(strings.TrimSpace(act.TypeID))
	if !ok {
		return Update{}, ValidationError{Field: "typeId", Reason: fmt.Sprintf("unknown health activity %q", act.TypeID)}
	}
	if act.DurationMinutes < 0 {
		return Update{}, ValidationError{Field: "durationMinutes", Reason: "cannot be negative"}
	}

	now := env.Now
	p := s.Player
	p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)

	prevHealth, prevEnergy := p.Health, p.Energy
	p.Health = clampGauge(p.Health + typ.Health)
	p.Energy = clampGauge(p.Energy + typ.Energy)

	entries := []LogEntry{}
	gain := XPGain{}
	if typ.XP > 0 {
		gain = grantXP(&p, typ.XP, 1)
	}

	rec := HealthActivity{
		ID:              env.NewID(),
		TypeID:          typ.ID,
		Name:            typ.Name,
		DurationMinutes: act.DurationMinutes,
		Notes:           strings.TrimSpace(act.Notes),
		HealthDelta:     p.Health - prevHealth,
		EnergyDelta:     p.Energy - prevEnergy,
		XPGained:        gain.ActualXPGained,
		LoggedAt:        now,
	}

	entries = append(entries, LogEntry{
		At:      now,
		Kind:    LogHealth,
		Message: fmt.Sprintf("Logged %s (health %+d, energy %+d, +%d XP)", typ.Name, rec.HealthDelta, rec.EnergyDelta, rec.XPGained),
	})
	entries = append(entries, levelUpLog(gain, now)...)

	u := Update{
		Player:           &p,
		HealthActivities: append(append([]HealthActivity{}, s.HealthActivities...), rec),
		Log:              entries,
	}
	if typ.Skill != "" && gain.ActualXPGained > 0 {
		u.Skills = addSkillXP(s.Skills, typ.Skill, gain.ActualXPGained)
	}
	u.Analytics, u.Totals = recordTally(s, now, Tally{HealthLogged: 1, XPEarned: gain.ActualXPGained})

	skill := typ.Skill
	u.PushUndo = []UndoAction{{
		ID:          env.NewID(),
		Description: fmt.Sprintf("log %s", typ.Name),
		ExpiresAt:   now.Add(env.UndoWindow),
		Revert: func(st *GameState) {
			st.Player.Health = clampGauge(st.Player.Health - rec.HealthDelta)
			st.Player.Energy = clampGauge(st.Player.Energy - rec.EnergyDelta)
			revokeXP(&st.Player, rec.XPGained)
			kept := make([]HealthActivity, 0, len(st.HealthActivities))
			for _, h := range st.HealthActivities {
				if h.ID != rec.ID {
					kept = append(kept, h)
				}
			}
			st.HealthActivities = kept
			if skill != "" {
				st.Skills = addSkillXP(st.Skills, skill, -rec.XPGained)
			}
			st.Analytics, st.Totals = subtractTally(*st, now, Tally{HealthLogged: 1, XPEarned: rec.XPGained})
		},
	}}
	return u, nil
}
