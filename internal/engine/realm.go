package engine

import (
	"fmt"
	"strings"
)

const defaultMoodIntensity = 3

func reduceRealm(env Env, s GameState, a Action) (Update, error) {
	act, ok := a.(UpdateMood)
	if !ok {
		return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	mood := strings.ToLower(strings.TrimSpace(act.Mood))
	if mood == "" {
		return Update{}, ValidationError{Field: "mood", Reason: "mood is required"}
	}
	intensity := act.Intensity
	if intensity == 0 {
		intensity = defaultMoodIntensity
	}
	if intensity < 1 || intensity > 5 {
		return Update{}, ValidationError{Field: "intensity", Reason: "must be between 1 and 5"}
	}

	realm := env.Catalog.RealmFor(mood)
	entry := MoodEntry{
		Mood:      mood,
		Intensity: intensity,
		Note:      strings.TrimSpace(act.Note),
		Realm:     realm.ID,
		At:        env.Now,
	}
	u := Update{
		Moods: append(append([]MoodEntry{}, s.Moods...), entry),
		Log:   []LogEntry{{At: env.Now, Kind: LogInfo, Message: fmt.Sprintf("Feeling %s (%d/5)", mood, intensity)}},
	}
	if realm.ID != "" && realm.ID != s.CurrentRealm {
		u.CurrentRealm = ptr(realm.ID)
		u.Log = append(u.Log, LogEntry{At: env.Now, Kind: LogRealm, Message: fmt.Sprintf("You drift into %s", realm.Name)})
	}
	u.Analytics, u.Totals = recordTally(s, env.Now, Tally{MoodEntries: 1})
	return u, nil
}
