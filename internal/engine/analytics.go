package engine

import (
	"fmt"
	"time"
)

func reduceAnalytics(env Env, s GameState, a Action) (Update, error) {
	if _, ok := a.(ResetAnalytics); !ok {
		return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	if len(s.Analytics) == 0 && s.Totals == (Tally{}) {
		return reject("analytics already empty"), nil
	}
	return Update{
		Analytics: map[string]Tally{},
		Totals:    &Tally{},
		Log:       []LogEntry{{At: env.Now, Kind: LogInfo, Message: "Analytics reset"}},
	}, nil
}

// recordTally returns copies of the daily analytics and totals with delta
// added to the day of now.
func recordTally(s GameState, now time.Time, delta Tally) (map[string]Tally, *Tally) {
	days := make(map[string]Tally, len(s.Analytics)+1)
	for k, v := range s.Analytics {
		days[k] = v
	}
	key := dayKey(now)
	days[key] = days[key].add(delta)
	totals := s.Totals.add(delta)
	return days, &totals
}

// subtractTally undoes recordTally for the same day. Counters never go
// below zero.
func subtractTally(s GameState, at time.Time, delta Tally) (map[string]Tally, Tally) {
	neg := Tally{
		QuestsCompleted: -delta.QuestsCompleted,
		QuestsFailed:    -delta.QuestsFailed,
		XPEarned:        -delta.XPEarned,
		GoldEarned:      -delta.GoldEarned,
		HealthLogged:    -delta.HealthLogged,
		MoodEntries:     -delta.MoodEntries,
		FocusMinutes:    -delta.FocusMinutes,
		Repeatables:     -delta.Repeatables,
	}
	days, totals := recordTally(s, at, neg)
	key := dayKey(at)
	days[key] = days[key].floor()
	return days, totals.floor()
}

func (t Tally) floor() Tally {
	t.QuestsCompleted = max(t.QuestsCompleted, 0)
	t.QuestsFailed = max(t.QuestsFailed, 0)
	t.XPEarned = max(t.XPEarned, 0)
	t.GoldEarned = max(t.GoldEarned, 0)
	t.HealthLogged = max(t.HealthLogged, 0)
	t.MoodEntries = max(t.MoodEntries, 0)
	t.FocusMinutes = max(t.FocusMinutes, 0)
	t.Repeatables = max(t.Repeatables, 0)
	return t
}

// DayStats is one calendar day of a Summary.
type DayStats struct {
	Date  string `json:"date"`
	Tally Tally  `json:"tally"`
}

type Summary struct {
	Days        []DayStats `json:"days"`
	Total       Tally      `json:"total"`
	ActiveDays  int        `json:"activeDays"`
	BestDay     string     `json:"bestDay,omitempty"`
	AverageXP   float64    `json:"averageXp"`
	Completion  float64    `json:"completionRate"`
	AllTime     Tally      `json:"allTime"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// Summarize reports the last days calendar days ending at now, oldest first.
func Summarize(s GameState, now time.Time, days int) Summary {
	if days <= 0 {
		days = 7
	}
	out := Summary{AllTime: s.Totals, GeneratedAt: now}
	bestXP := -1
	for i := days - 1; i >= 0; i-- {
		key := dayKey(now.AddDate(0, 0, -i))
		t := s.Analytics[key]
		out.Days = append(out.Days, DayStats{Date: key, Tally: t})
		out.Total = out.Total.add(t)
		if t != (Tally{}) {
			out.ActiveDays++
		}
		if t.XPEarned > bestXP && t.XPEarned > 0 {
			bestXP = t.XPEarned
			out.BestDay = key
		}
	}
	out.AverageXP = float64(out.Total.XPEarned) / float64(days)
	if finished := out.Total.QuestsCompleted + out.Total.QuestsFailed; finished > 0 {
		out.Completion = float64(out.Total.QuestsCompleted) / float64(finished)
	}
	return out
}
