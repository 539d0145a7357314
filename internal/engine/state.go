package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"adhdrpg/internal/catalog"
)

const (
	DefaultStreakGoal = 7
	GaugeMax          = 100
	maxLogEntries     = 200
	dayLayout         = "2006-01-02"
)

type Player struct {
	Level               int       `json:"level"`
	XP                  int       `json:"xp"`
	XPToNextLevel       int       `json:"xpToNextLevel"`
	CurrentStreak       int       `json:"currentStreak"`
	LongestStreak       int       `json:"longestStreak"`
	LastActiveDate      time.Time `json:"lastActiveDate"`
	Gold                int       `json:"gold"`
	StreakGoal          int       `json:"streakGoal"`
	StreakRewardClaimed bool      `json:"streakRewardClaimed"`
	SkillPoints         int       `json:"skillPoints"`
	Health              int       `json:"health"`
	Energy              int       `json:"energy"`
	UnlockedSkills      []string  `json:"unlockedSkills"`
}

type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Category    Category    `json:"category"`
	Type        QuestType   `json:"type"`
	Priority    Priority    `json:"priority"`
	Status      QuestStatus `json:"status"`
	Difficulty  Difficulty  `json:"difficulty"`
	Energy      Level       `json:"energyRequired"`
	Anxiety     Level       `json:"anxietyLevel"`
	XPReward    int         `json:"xpReward"`
	GoldReward  int         `json:"goldReward"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
}

// HealthActivity is a logged instance of a catalog HealthActivityType.
type HealthActivity struct {
	ID              string    `json:"id"`
	TypeID          string    `json:"typeId"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	HealthDelta     int       `json:"healthDelta"`
	EnergyDelta     int       `json:"energyDelta"`
	XPGained        int       `json:"xpGained"`
	LoggedAt        time.Time `json:"loggedAt"`
}

type Collectible struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Kind          string         `json:"kind"`
	Rarity        catalog.Rarity `json:"rarity"`
	SourceQuestID string         `json:"sourceQuestId,omitempty"`
	AcquiredAt    time.Time      `json:"acquiredAt"`
}

type PlayerSkill struct {
	ID string `json:"id"`
	XP int    `json:"xp"`
}

type LogKind string

const (
	LogInfo         LogKind = "info"
	LogQuest        LogKind = "quest"
	LogLevelUp      LogKind = "level_up"
	LogMilestone    LogKind = "milestone"
	LogStreakBroken LogKind = "streak_broken"
	LogReward       LogKind = "reward"
	LogHealth       LogKind = "health"
	LogRealm        LogKind = "realm"
	LogAchievement  LogKind = "achievement"
)

type LogEntry struct {
	At      time.Time `json:"at"`
	Kind    LogKind   `json:"kind"`
	Message string    `json:"message"`
}

type MoodEntry struct {
	Mood      string    `json:"mood"`
	Intensity int       `json:"intensity"`
	Note      string    `json:"note,omitempty"`
	Realm     string    `json:"realm"`
	At        time.Time `json:"at"`
}

type RepeatableState struct {
	Count         int       `json:"count"`
	LastPerformed time.Time `json:"lastPerformed"`
}

type FocusKind string

const (
	FocusWork  FocusKind = "focus"
	FocusBreak FocusKind = "break"
)

type FocusSession struct {
	Kind        FocusKind `json:"kind"`
	Minutes     int       `json:"minutes"`
	CompletedAt time.Time `json:"completedAt"`
}

// Tally counts progress. It is kept per calendar day and as lifetime totals.
type Tally struct {
	QuestsCompleted int `json:"questsCompleted"`
	QuestsFailed    int `json:"questsFailed"`
	XPEarned        int `json:"xpEarned"`
	GoldEarned      int `json:"goldEarned"`
	HealthLogged    int `json:"healthLogged"`
	MoodEntries     int `json:"moodEntries"`
	FocusMinutes    int `json:"focusMinutes"`
	Repeatables     int `json:"repeatables"`
}

func (t Tally) add(o Tally) Tally {
	t.QuestsCompleted += o.QuestsCompleted
	t.QuestsFailed += o.QuestsFailed
	t.XPEarned += o.XPEarned
	t.GoldEarned += o.GoldEarned
	t.HealthLogged += o.HealthLogged
	t.MoodEntries += o.MoodEntries
	t.FocusMinutes += o.FocusMinutes
	t.Repeatables += o.Repeatables
	return t
}

type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// UndoAction reverts one earlier mutation while it is still fresh.
type UndoAction struct {
	ID          string
	Description string
	ExpiresAt   time.Time
	Revert      func(s *GameState)
}

func (u UndoAction) Expired(now time.Time) bool {
	return !now.Before(u.ExpiresAt)
}

// GameState is the whole persisted tree.
type GameState struct {
	Player           Player                     `json:"player"`
	Quests           []Quest                    `json:"quests"`
	HealthActivities []HealthActivity           `json:"healthActivities"`
	Collectibles     []Collectible              `json:"collectibles"`
	Skills           []PlayerSkill              `json:"skills"`
	Log              []LogEntry                 `json:"log"`
	Moods            []MoodEntry                `json:"moods"`
	CurrentRealm     string                     `json:"currentRealm"`
	Repeatables      map[string]RepeatableState `json:"repeatables"`
	FocusSessions    []FocusSession             `json:"focusSessions"`
	Analytics        map[string]Tally           `json:"analytics"`
	Totals           Tally                      `json:"totals"`
	Achievements     []UnlockedAchievement      `json:"achievements"`
	MainQuest        string                     `json:"mainQuest,omitempty"`
	SeasonName       string                     `json:"seasonName,omitempty"`
	LastSaved        time.Time                  `json:"lastSaved"`

	Undo []UndoAction `json:"-"`
}

func NewPlayer(streakGoal int) Player {
	if streakGoal <= 0 {
		streakGoal = DefaultStreakGoal
	}
	return Player{
		Level:          1,
		XPToNextLevel:  XPForLevel(1),
		StreakGoal:     streakGoal,
		Health:         GaugeMax,
		Energy:         GaugeMax,
		UnlockedSkills: []string{},
	}
}

// NewGameState returns the initial state of a fresh game.
func NewGameState(streakGoal int) GameState {
	s := GameState{Player: NewPlayer(streakGoal)}
	s.Normalize()
	return s
}

// Normalize defaults missing collections and derived fields so saves from
// older versions load cleanly.
func (s *GameState) Normalize() {
	if s.Player.Level <= 0 {
		s.Player.Level = 1
	}
	if s.Player.XPToNextLevel <= 0 {
		s.Player.XPToNextLevel = XPForLevel(s.Player.Level)
	}
	if s.Player.StreakGoal <= 0 {
		s.Player.StreakGoal = DefaultStreakGoal
	}
	s.Player.Health = clampGauge(s.Player.Health)
	s.Player.Energy = clampGauge(s.Player.Energy)
	if s.Player.Gold < 0 {
		s.Player.Gold = 0
	}
	if s.Player.UnlockedSkills == nil {
		s.Player.UnlockedSkills = []string{}
	}
	if s.Quests == nil {
		s.Quests = []Quest{}
	}
	if s.HealthActivities == nil {
		s.HealthActivities = []HealthActivity{}
	}
	if s.Collectibles == nil {
		s.Collectibles = []Collectible{}
	}
	if s.Skills == nil {
		s.Skills = []PlayerSkill{}
	}
	if s.Log == nil {
		s.Log = []LogEntry{}
	}
	if s.Moods == nil {
		s.Moods = []MoodEntry{}
	}
	if s.Repeatables == nil {
		s.Repeatables = map[string]RepeatableState{}
	}
	if s.FocusSessions == nil {
		s.FocusSessions = []FocusSession{}
	}
	if s.Analytics == nil {
		s.Analytics = map[string]Tally{}
	}
	if s.Achievements == nil {
		s.Achievements = []UnlockedAchievement{}
	}
}

// Clone returns a deep copy. Undo closures are shared.
func (s GameState) Clone() GameState {
	out := s
	out.Player.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)
	out.Quests = cloneQuests(s.Quests)
	out.HealthActivities = append([]HealthActivity{}, s.HealthActivities...)
	out.Collectibles = append([]Collectible{}, s.Collectibles...)
	out.Skills = append([]PlayerSkill{}, s.Skills...)
	out.Log = append([]LogEntry{}, s.Log...)
	out.Moods = append([]MoodEntry{}, s.Moods...)
	out.FocusSessions = append([]FocusSession{}, s.FocusSessions...)
	out.Achievements = append([]UnlockedAchievement{}, s.Achievements...)
	out.Undo = append([]UndoAction{}, s.Undo...)
	out.Repeatables = make(map[string]RepeatableState, len(s.Repeatables))
	for k, v := range s.Repeatables {
		out.Repeatables[k] = v
	}
	out.Analytics = make(map[string]Tally, len(s.Analytics))
	for k, v := range s.Analytics {
		out.Analytics[k] = v
	}
	return out
}

func cloneQuests(in []Quest) []Quest {
	out := make([]Quest, len(in))
	for i, q := range in {
		if q.CompletedAt != nil {
			t := *q.CompletedAt
			q.CompletedAt = &t
		}
		if q.DueDate != nil {
			t := *q.DueDate
			q.DueDate = &t
		}
		out[i] = q
	}
	return out
}

func (s GameState) Quest(id string) (Quest, int, bool) {
	for i, q := range s.Quests {
		if q.ID == id {
			return q, i, true
		}
	}
	return Quest{}, -1, false
}

func (s GameState) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s GameState) HasSkill(id string) bool {
	for _, sk := range s.Player.UnlockedSkills {
		if sk == id {
			return true
		}
	}
	return false
}

// ActiveQuests returns open quests that are not paused.
func (s GameState) ActiveQuests() []Quest {
	var out []Quest
	for _, q := range s.Quests {
		if q.Status == StatusActive {
			out = append(out, q)
		}
	}
	return out
}

// Marshal serializes the whole tree.
func (s GameState) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal game state: %w", err)
	}
	return data, nil
}

// DecodeState parses a saved tree and normalizes it.
func DecodeState(data []byte) (GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	s.Normalize()
	return s, nil
}

func clampGauge(v int) int {
	if v < 0 {
		return 0
	}
	if v > GaugeMax {
		return GaugeMax
	}
	return v
}

func dayKey(t time.Time) string {
	return t.Format(dayLayout)
}
