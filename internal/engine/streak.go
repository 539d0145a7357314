package engine

import (
	"fmt"
	"log"
	"time"
)

// CompareDays returns the number of calendar days from last to today, using
// the local calendar of each time. It is the only day arithmetic used for
// streaks.
func CompareDays(last, today time.Time) int {
	a := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

type StreakChange int

const (
	StreakStarted StreakChange = iota
	StreakUnchanged
	StreakExtended
	StreakBroken
)

func (c StreakChange) String() string {
	switch c {
	case StreakStarted:
		return "started"
	case StreakExtended:
		return "extended"
	case StreakBroken:
		return "broken"
	default:
		return "unchanged"
	}
}

// CheckStreak reports what recording activity at now would do to the streak.
func CheckStreak(p Player, now time.Time) StreakChange {
	if p.LastActiveDate.IsZero() {
		return StreakStarted
	}
	switch diff := CompareDays(p.LastActiveDate, now); {
	case diff == 1:
		return StreakExtended
	case diff > 1:
		return StreakBroken
	default:
		return StreakUnchanged
	}
}

// applyStreak records activity at now and returns the log entries it
// produced. lastActiveDate is always stamped.
func applyStreak(p *Player, now time.Time) []LogEntry {
	var entries []LogEntry
	switch CheckStreak(*p, now) {
	case StreakStarted:
		p.CurrentStreak = 1
	case StreakExtended:
		p.CurrentStreak++
		if p.CurrentStreak%3 == 0 || p.CurrentStreak == p.StreakGoal {
			entries = append(entries, LogEntry{
				At:      now,
				Kind:    LogMilestone,
				Message: fmt.Sprintf("%d day streak!", p.CurrentStreak),
			})
		}
	case StreakBroken:
		entries = append(entries, LogEntry{
			At:      now,
			Kind:    LogStreakBroken,
			Message: fmt.Sprintf("Streak broken after %d days. Starting fresh.", p.CurrentStreak),
		})
		p.CurrentStreak = 1
		p.StreakRewardClaimed = false
	case StreakUnchanged:
		if CompareDays(p.LastActiveDate, now) < 0 {
			log.Printf("[engine] last active date %s is after %s; treating as same day",
				p.LastActiveDate.Format(time.RFC3339), now.Format(time.RFC3339))
		}
		if p.CurrentStreak == 0 {
			p.CurrentStreak = 1
		}
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActiveDate = now
	return entries
}

// streakMark holds the streak fields an activity may change.
type streakMark struct {
	current, longest int
	lastActive       time.Time
	claimed          bool
}

func markStreak(p Player) streakMark {
	return streakMark{
		current:    p.CurrentStreak,
		longest:    p.LongestStreak,
		lastActive: p.LastActiveDate,
		claimed:    p.StreakRewardClaimed,
	}
}

// restoreStreak puts back the streak fields saved in before, unless activity
// was recorded after stamped.
func restoreStreak(p *Player, before streakMark, stamped time.Time) {
	if !p.LastActiveDate.Equal(stamped) {
		return
	}
	p.CurrentStreak = before.current
	p.LongestStreak = before.longest
	p.LastActiveDate = before.lastActive
	p.StreakRewardClaimed = before.claimed
}
