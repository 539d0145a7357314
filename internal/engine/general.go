package engine

import (
	"fmt"
	"strings"
)

func reduceGeneral(env Env, s GameState, a Action) (Update, error) {
	now := env.Now
	switch act := a.(type) {
	case SetMainQuest:
		title := strings.TrimSpace(act.Title)
		if title == s.MainQuest {
			return reject("main quest unchanged"), nil
		}
		msg := "Main quest cleared"
		if title != "" {
			msg = fmt.Sprintf("Main quest: %s", title)
		}
		return Update{
			MainQuest: ptr(title),
			Log:       []LogEntry{{At: now, Kind: LogInfo, Message: msg}},
		}, nil

	case SetSeasonName:
		name := strings.TrimSpace(act.Name)
		if name == s.SeasonName {
			return reject("season name unchanged"), nil
		}
		return Update{
			SeasonName: ptr(name),
			Log:        []LogEntry{{At: now, Kind: LogInfo, Message: fmt.Sprintf("A new season begins: %s", name)}},
		}, nil

	case AddLogEntry:
		msg := strings.TrimSpace(act.Message)
		if msg == "" {
			return Update{}, ValidationError{Field: "message", Reason: "message is required"}
		}
		kind := act.Kind
		if kind == "" {
			kind = LogInfo
		}
		return Update{Log: []LogEntry{{At: now, Kind: kind, Message: msg}}}, nil

	case UnlockAchievement:
		var found bool
		var name string
		var gold int
		for _, ach := range env.Catalog.Achievements {
			if ach.ID == act.ID {
				found, name, gold = true, ach.Name, ach.Gold
				break
			}
		}
		if !found {
			return Update{}, ValidationError{Field: "id", Reason: fmt.Sprintf("unknown achievement %q", act.ID)}
		}
		if s.HasAchievement(act.ID) {
			return reject("achievement %q already unlocked", act.ID), nil
		}
		u := Update{
			Achievements: append(append([]UnlockedAchievement{}, s.Achievements...), UnlockedAchievement{ID: act.ID, UnlockedAt: now}),
		}
		msg := fmt.Sprintf("Achievement unlocked: %s", name)
		if gold > 0 {
			p := s.Player
			p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)
			p.Gold += gold
			u.Player = &p
			u.Analytics, u.Totals = recordTally(s, now, Tally{GoldEarned: gold})
			msg += fmt.Sprintf(" (+%d gold)", gold)
		}
		u.Log = []LogEntry{{At: now, Kind: LogAchievement, Message: msg}}
		return u, nil

	case Undo:
		entry, ok := findUndo(s, act.ID)
		if !ok {
			return reject("nothing to undo"), nil
		}
		next := s.Clone()
		entry.Revert(&next)
		return Update{
			Replace:  &next,
			DropUndo: []string{entry.ID},
			Log:      []LogEntry{{At: now, Kind: LogInfo, Message: fmt.Sprintf("Undid %s", entry.Description)}},
			Notices:  []Notice{{Kind: NoticeUndo, Message: fmt.Sprintf("Undid %s", entry.Description)}},
		}, nil

	case PruneUndo:
		// Expired entries were already dropped by Reduce; the undo stack is
		// not persisted, so there is nothing left to change.
		return reject("undo entries pruned"), nil

	case ResetGame:
		fresh := NewGameState(s.Player.StreakGoal)
		return Update{
			Replace: &fresh,
			Log:     []LogEntry{{At: now, Kind: LogInfo, Message: "A new adventure begins"}},
		}, nil
	}
	return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

// findUndo returns the live entry with id, or the most recent one when id is
// empty.
func findUndo(s GameState, id string) (UndoAction, bool) {
	for i := len(s.Undo) - 1; i >= 0; i-- {
		if id == "" || s.Undo[i].ID == id {
			return s.Undo[i], true
		}
	}
	return UndoAction{}, false
}

// PendingUndo lists live undo entries, most recent first.
func PendingUndo(s GameState) []UndoAction {
	out := make([]UndoAction, 0, len(s.Undo))
	for i := len(s.Undo) - 1; i >= 0; i-- {
		out = append(out, s.Undo[i])
	}
	return out
}
