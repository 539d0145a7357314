package engine

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"adhdrpg/internal/catalog"
)

const DefaultUndoWindow = 30 * time.Second

// Env carries everything a reducer needs from outside the state tree.
type Env struct {
	Now        time.Time
	Rand       *rand.Rand
	Catalog    *catalog.Catalog
	UndoWindow time.Duration
	NewID      func() string
}

func (e Env) withDefaults() Env {
	if e.Now.IsZero() {
		e.Now = time.Now()
	}
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(uint64(e.Now.UnixNano()), 0x9e3779b97f4a7c15))
	}
	if e.Catalog == nil {
		e.Catalog = catalog.MustDefault()
	}
	if e.UndoWindow <= 0 {
		e.UndoWindow = DefaultUndoWindow
	}
	if e.NewID == nil {
		e.NewID = uuid.NewString
	}
	return e
}

type NoticeKind string

const (
	NoticeLevelUp      NoticeKind = "level_up"
	NoticeCollectible  NoticeKind = "collectible"
	NoticeMilestone    NoticeKind = "milestone"
	NoticeStreakBroken NoticeKind = "streak_broken"
	NoticeReward       NoticeKind = "reward"
	NoticeAchievement  NoticeKind = "achievement"
	NoticeRealm        NoticeKind = "realm"
	NoticeUndo         NoticeKind = "undo"
)

// Notice is a user-facing event produced by an action, such as a level-up.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Update is the partial result of a sub-reducer. Nil fields are unchanged.
// Slices and maps that are set replace the previous value, except Log and
// PushUndo which are appended. An update with no fields set means the action
// was rejected; Reason says why.
type Update struct {
	Player           *Player
	Quests           []Quest
	HealthActivities []HealthActivity
	Collectibles     []Collectible
	Skills           []PlayerSkill
	Moods            []MoodEntry
	FocusSessions    []FocusSession
	Achievements     []UnlockedAchievement
	Repeatables      map[string]RepeatableState
	Analytics        map[string]Tally
	Totals           *Tally
	CurrentRealm     *string
	MainQuest        *string
	SeasonName       *string
	Log              []LogEntry
	PushUndo         []UndoAction
	DropUndo         []string
	Replace          *GameState

	Notices []Notice
	Reason  string
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Player == nil && u.Quests == nil && u.HealthActivities == nil &&
		u.Collectibles == nil && u.Skills == nil && u.Moods == nil &&
		u.FocusSessions == nil && u.Achievements == nil && u.Repeatables == nil &&
		u.Analytics == nil && u.Totals == nil && u.CurrentRealm == nil &&
		u.MainQuest == nil && u.SeasonName == nil && len(u.Log) == 0 &&
		len(u.PushUndo) == 0 && len(u.DropUndo) == 0 && u.Replace == nil
}

func reject(format string, args ...any) Update {
	return Update{Reason: fmt.Sprintf(format, args...)}
}

// Reduce applies a to s. It never mutates s. Expired undo entries are pruned
// first. A rejected action returns s unchanged with an empty update; only
// malformed input and unknown actions return an error.
func Reduce(env Env, s GameState, a Action) (GameState, Update, error) {
	env = env.withDefaults()
	s = pruneExpiredUndo(s, env.Now)

	var (
		u   Update
		err error
	)
	switch a.(type) {
	case AddQuest, UpdateQuest, DeleteQuest, CompleteQuest, FailQuest, PauseQuest, ResumeQuest:
		u, err = reduceQuest(env, s, a)
	case GainXP, AddGold, SpendGold, UpdateStreak, SetStreakGoal, ClaimStreakReward, UnlockSkill:
		u, err = reducePlayer(env, s, a)
	case LogHealthActivity:
		u, err = reduceHealth(env, s, a)
	case AddCollectible:
		u, err = reduceCollectibles(env, s, a)
	case PerformRepeatableAction, CompleteFocusSession:
		u, err = reduceRepeatable(env, s, a)
	case UpdateMood:
		u, err = reduceRealm(env, s, a)
	case ResetAnalytics:
		u, err = reduceAnalytics(env, s, a)
	case SetMainQuest, SetSeasonName, AddLogEntry, UnlockAchievement, Undo, PruneUndo, ResetGame:
		u, err = reduceGeneral(env, s, a)
	default:
		return s, Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	if err != nil {
		return s, Update{}, err
	}
	if u.Empty() {
		return s, u, nil
	}
	u.Notices = append(noticesFor(u.Log), u.Notices...)

	next := merge(s, u)
	next.LastSaved = env.Now
	return next, u, nil
}

func merge(s GameState, u Update) GameState {
	if u.Replace != nil {
		s = u.Replace.Clone()
	} else {
		s = s.Clone()
	}
	if u.Player != nil {
		s.Player = *u.Player
	}
	if u.Quests != nil {
		s.Quests = u.Quests
	}
	if u.HealthActivities != nil {
		s.HealthActivities = u.HealthActivities
	}
	if u.Collectibles != nil {
		s.Collectibles = u.Collectibles
	}
	if u.Skills != nil {
		s.Skills = u.Skills
	}
	if u.Moods != nil {
		s.Moods = u.Moods
	}
	if u.FocusSessions != nil {
		s.FocusSessions = u.FocusSessions
	}
	if u.Achievements != nil {
		s.Achievements = u.Achievements
	}
	if u.Repeatables != nil {
		s.Repeatables = u.Repeatables
	}
	if u.Analytics != nil {
		s.Analytics = u.Analytics
	}
	if u.Totals != nil {
		s.Totals = *u.Totals
	}
	if u.CurrentRealm != nil {
		s.CurrentRealm = *u.CurrentRealm
	}
	if u.MainQuest != nil {
		s.MainQuest = *u.MainQuest
	}
	if u.SeasonName != nil {
		s.SeasonName = *u.SeasonName
	}
	if len(u.DropUndo) > 0 {
		drop := map[string]bool{}
		for _, id := range u.DropUndo {
			drop[id] = true
		}
		kept := make([]UndoAction, 0, len(s.Undo))
		for _, e := range s.Undo {
			if !drop[e.ID] {
				kept = append(kept, e)
			}
		}
		s.Undo = kept
	}
	s.Undo = append(s.Undo, u.PushUndo...)
	s.Log = appendLog(s.Log, u.Log...)
	return s
}

// appendLog keeps only the most recent maxLogEntries entries.
func appendLog(log []LogEntry, entries ...LogEntry) []LogEntry {
	log = append(log, entries...)
	if len(log) > maxLogEntries {
		log = append([]LogEntry{}, log[len(log)-maxLogEntries:]...)
	}
	return log
}

func pruneExpiredUndo(s GameState, now time.Time) GameState {
	if len(s.Undo) == 0 {
		return s
	}
	live := make([]UndoAction, 0, len(s.Undo))
	for _, e := range s.Undo {
		if !e.Expired(now) {
			live = append(live, e)
		}
	}
	s.Undo = live
	return s
}

func ptr[T any](v T) *T { return &v }

// noticesFor converts log entries that deserve a toast into notices.
func noticesFor(entries []LogEntry) []Notice {
	var out []Notice
	for _, e := range entries {
		switch e.Kind {
		case LogLevelUp:
			out = append(out, Notice{Kind: NoticeLevelUp, Message: e.Message})
		case LogMilestone:
			out = append(out, Notice{Kind: NoticeMilestone, Message: e.Message})
		case LogStreakBroken:
			out = append(out, Notice{Kind: NoticeStreakBroken, Message: e.Message})
		case LogReward:
			out = append(out, Notice{Kind: NoticeReward, Message: e.Message})
		case LogAchievement:
			out = append(out, Notice{Kind: NoticeAchievement, Message: e.Message})
		case LogRealm:
			out = append(out, Notice{Kind: NoticeRealm, Message: e.Message})
		}
	}
	return out
}

// levelUpLog returns the log entry for a gain, if it leveled the player.
func levelUpLog(g XPGain, now time.Time) []LogEntry {
	if !g.LevelUp.LeveledUp {
		return nil
	}
	msg := fmt.Sprintf("Level up! You reached level %d.", g.LevelUp.NewLevel)
	if g.LevelUp.SkillPointsEarned > 0 {
		msg += fmt.Sprintf(" +%d skill point.", g.LevelUp.SkillPointsEarned)
	}
	return []LogEntry{{At: now, Kind: LogLevelUp, Message: msg}}
}
