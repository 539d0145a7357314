package engine

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryHealth   Category = "health"
	CategoryPersonal Category = "personal"
	CategoryLearning Category = "learning"
	CategorySocial   Category = "social"
	CategoryCreative Category = "creative"
	CategoryChores   Category = "chores"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryHealth, CategoryPersonal, CategoryLearning, CategorySocial, CategoryCreative, CategoryChores:
		return true
	default:
		return false
	}
}

// Skill returns the skill-chart meter a quest of this category trains.
func (c Category) Skill() string {
	switch c {
	case CategoryWork:
		return "focus"
	case CategoryHealth:
		return "vitality"
	case CategoryLearning:
		return "knowledge"
	case CategorySocial:
		return "social"
	case CategoryCreative:
		return "creativity"
	case CategoryPersonal, CategoryChores:
		fallthrough
	default:
		return "discipline"
	}
}

type QuestType string

const (
	QuestDaily  QuestType = "daily"
	QuestWeekly QuestType = "weekly"
	QuestMain   QuestType = "main"
	QuestSide   QuestType = "side"
)

func (t QuestType) IsValid() bool {
	switch t {
	case QuestDaily, QuestWeekly, QuestMain, QuestSide:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	return p.rank() > 0
}

func (p Priority) rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	default:
		return 0
	}
}

type QuestStatus string

const (
	StatusActive    QuestStatus = "active"
	StatusCompleted QuestStatus = "completed"
	StatusFailed    QuestStatus = "failed"
	StatusPaused    QuestStatus = "paused"
)

// Open reports whether the quest can still be completed or failed.
func (s QuestStatus) Open() bool {
	return s == StatusActive || s == StatusPaused
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyEpic   Difficulty = "epic"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic:
		return true
	default:
		return false
	}
}

// BaseXP is the reward used when a quest is created without an explicit one.
func (d Difficulty) BaseXP() int {
	switch d {
	case DifficultyEasy:
		return 25
	case DifficultyHard:
		return 100
	case DifficultyEpic:
		return 200
	case DifficultyMedium:
		fallthrough
	default:
		return 50
	}
}

// Level is used for both the energy a quest needs and the anxiety it causes.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	default:
		return false
	}
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// ParseCategory parses user input. Empty input returns the default.
func ParseCategory(input string) (Category, error) {
	s := normalize(input)
	if s == "" {
		return CategoryPersonal, nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %q", input)
	}
	return c, nil
}

func ParseQuestType(input string) (QuestType, error) {
	s := normalize(input)
	if s == "" {
		return QuestSide, nil
	}
	t := QuestType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid quest type: %q", input)
	}
	return t, nil
}

func ParsePriority(input string) (Priority, error) {
	s := normalize(input)
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %q", input)
	}
	return p, nil
}

func ParseDifficulty(input string) (Difficulty, error) {
	s := normalize(input)
	switch s {
	case "":
		return DifficultyMedium, nil
	case "1":
		return DifficultyEasy, nil
	case "2":
		return DifficultyMedium, nil
	case "3":
		return DifficultyHard, nil
	case "4":
		return DifficultyEpic, nil
	}
	d := Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid difficulty: %q", input)
	}
	return d, nil
}

func ParseLevel(input string, def Level) (Level, error) {
	s := normalize(input)
	if s == "" {
		return def, nil
	}
	l := Level(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid level: %q", input)
	}
	return l, nil
}
