package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"adhdrpg/internal/catalog"
)

type ActionType string

const (
	ActionAddQuest                ActionType = "ADD_QUEST"
	ActionUpdateQuest             ActionType = "UPDATE_QUEST"
	ActionDeleteQuest             ActionType = "DELETE_QUEST"
	ActionCompleteQuest           ActionType = "COMPLETE_QUEST"
	ActionFailQuest               ActionType = "FAIL_QUEST"
	ActionPauseQuest              ActionType = "PAUSE_QUEST"
	ActionResumeQuest             ActionType = "RESUME_QUEST"
	ActionGainXP                  ActionType = "GAIN_XP"
	ActionAddGold                 ActionType = "ADD_GOLD"
	ActionSpendGold               ActionType = "SPEND_GOLD"
	ActionUpdateStreak            ActionType = "UPDATE_STREAK"
	ActionSetStreakGoal           ActionType = "SET_STREAK_GOAL"
	ActionClaimStreakReward       ActionType = "CLAIM_STREAK_REWARD"
	ActionUnlockSkill             ActionType = "UNLOCK_SKILL"
	ActionLogHealthActivity       ActionType = "LOG_HEALTH_ACTIVITY"
	ActionAddCollectible          ActionType = "ADD_COLLECTIBLE"
	ActionPerformRepeatableAction ActionType = "PERFORM_REPEATABLE_ACTION"
	ActionCompleteFocusSession    ActionType = "COMPLETE_FOCUS_SESSION"
	ActionUpdateMood              ActionType = "UPDATE_MOOD"
	ActionSetMainQuest            ActionType = "SET_MAIN_QUEST"
	ActionSetSeasonName           ActionType = "SET_SEASON_NAME"
	ActionAddLogEntry             ActionType = "ADD_LOG_ENTRY"
	ActionUnlockAchievement       ActionType = "UNLOCK_ACHIEVEMENT"
	ActionResetAnalytics          ActionType = "RESET_ANALYTICS"
	ActionUndo                    ActionType = "UNDO"
	ActionPruneUndo               ActionType = "PRUNE_UNDO"
	ActionResetGame               ActionType = "RESET_GAME"
)

// Action is a request to change the game state. The set of actions is closed.
type Action interface {
	Type() ActionType
	isAction()
}

type AddQuest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category,omitempty"`
	QuestType   QuestType  `json:"questType,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Energy      Level      `json:"energyRequired,omitempty"`
	Anxiety     Level      `json:"anxietyLevel,omitempty"`
	XPReward    int        `json:"xpReward,omitempty"`
	GoldReward  int        `json:"goldReward,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateQuest edits the non-nil fields of an open quest.
type UpdateQuest struct {
	ID          string      `json:"id"`
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
	XPReward    *int        `json:"xpReward,omitempty"`
	GoldReward  *int        `json:"goldReward,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
}

type DeleteQuest struct {
	ID string `json:"id"`
}

type CompleteQuest struct {
	ID string `json:"id"`
}

type FailQuest struct {
	ID string `json:"id"`
}

type PauseQuest struct {
	ID string `json:"id"`
}

type ResumeQuest struct {
	ID string `json:"id"`
}

type GainXP struct {
	Amount int     `json:"amount"`
	Bonus  float64 `json:"bonus,omitempty"`
	Source string  `json:"source,omitempty"`
}

type AddGold struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

type SpendGold struct {
	Amount int    `json:"amount"`
	Item   string `json:"item,omitempty"`
}

type UpdateStreak struct{}

type SetStreakGoal struct {
	Goal int `json:"goal"`
}

type ClaimStreakReward struct{}

type UnlockSkill struct {
	SkillID string `json:"skillId"`
}

type LogHealthActivity struct {
	TypeID          string `json:"typeId"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type AddCollectible struct {
	Name   string         `json:"name"`
	Kind   string         `json:"kind,omitempty"`
	Rarity catalog.Rarity `json:"rarity"`
}

type PerformRepeatableAction struct {
	ActionID string `json:"actionId"`
}

type CompleteFocusSession struct {
	Kind    FocusKind `json:"kind,omitempty"`
	Minutes int       `json:"minutes"`
}

type UpdateMood struct {
	Mood      string `json:"mood"`
	Intensity int    `json:"intensity,omitempty"`
	Note      string `json:"note,omitempty"`
}

type SetMainQuest struct {
	Title string `json:"title"`
}

type SetSeasonName struct {
	Name string `json:"name"`
}

type AddLogEntry struct {
	Kind    LogKind `json:"kind,omitempty"`
	Message string  `json:"message"`
}

type UnlockAchievement struct {
	ID string `json:"id"`
}

type ResetAnalytics struct{}

// Undo reverts the undo entry with ID, or the most recent live entry when ID
// is empty.
type Undo struct {
	ID string `json:"id,omitempty"`
}

type PruneUndo struct{}

type ResetGame struct{}

func (AddQuest) Type() ActionType                { return ActionAddQuest }
func (UpdateQuest) Type() ActionType             { return ActionUpdateQuest }
func (DeleteQuest) Type() ActionType             { return ActionDeleteQuest }
func (CompleteQuest) Type() ActionType           { return ActionCompleteQuest }
func (FailQuest) Type() ActionType               { return ActionFailQuest }
func (PauseQuest) Type() ActionType              { return ActionPauseQuest }
func (ResumeQuest) Type() ActionType             { return ActionResumeQuest }
func (GainXP) Type() ActionType                  { return ActionGainXP }
func (AddGold) Type() ActionType                 { return ActionAddGold }
func (SpendGold) Type() ActionType               { return ActionSpendGold }
func (UpdateStreak) Type() ActionType            { return ActionUpdateStreak }
func (SetStreakGoal) Type() ActionType           { return ActionSetStreakGoal }
func (ClaimStreakReward) Type() ActionType       { return ActionClaimStreakReward }
func (UnlockSkill) Type() ActionType             { return ActionUnlockSkill }
func (LogHealthActivity) Type() ActionType       { return ActionLogHealthActivity }
func (AddCollectible) Type() ActionType          { return ActionAddCollectible }
func (PerformRepeatableAction) Type() ActionType { return ActionPerformRepeatableAction }
func (CompleteFocusSession) Type() ActionType    { return ActionCompleteFocusSession }
func (UpdateMood) Type() ActionType              { return ActionUpdateMood }
func (SetMainQuest) Type() ActionType            { return ActionSetMainQuest }
func (SetSeasonName) Type() ActionType           { return ActionSetSeasonName }
func (AddLogEntry) Type() ActionType             { return ActionAddLogEntry }
func (UnlockAchievement) Type() ActionType       { return ActionUnlockAchievement }
func (ResetAnalytics) Type() ActionType          { return ActionResetAnalytics }
func (Undo) Type() ActionType                    { return ActionUndo }
func (PruneUndo) Type() ActionType               { return ActionPruneUndo }
func (ResetGame) Type() ActionType               { return ActionResetGame }

func (AddQuest) isAction()                {}
func (UpdateQuest) isAction()             {}
func (DeleteQuest) isAction()             {}
func (CompleteQuest) isAction()           {}
func (FailQuest) isAction()               {}
func (PauseQuest) isAction()              {}
func (ResumeQuest) isAction()             {}
func (GainXP) isAction()                  {}
func (AddGold) isAction()                 {}
func (SpendGold) isAction()               {}
func (UpdateStreak) isAction()            {}
func (SetStreakGoal) isAction()           {}
func (ClaimStreakReward) isAction()       {}
func (UnlockSkill) isAction()             {}
func (LogHealthActivity) isAction()       {}
func (AddCollectible) isAction()          {}
func (PerformRepeatableAction) isAction() {}
func (CompleteFocusSession) isAction()    {}
func (UpdateMood) isAction()              {}
func (SetMainQuest) isAction()            {}
func (SetSeasonName) isAction()           {}
func (AddLogEntry) isAction()             {}
func (UnlockAchievement) isAction()       {}
func (ResetAnalytics) isAction()          {}
func (Undo) isAction()                    {}
func (PruneUndo) isAction()               {}
func (ResetGame) isAction()               {}

// ActionTypes lists every tag accepted by DecodeAction.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionAddQuest, ActionUpdateQuest, ActionDeleteQuest, ActionCompleteQuest,
		ActionFailQuest, ActionPauseQuest, ActionResumeQuest, ActionGainXP,
		ActionAddGold, ActionSpendGold, ActionUpdateStreak, ActionSetStreakGoal,
		ActionClaimStreakReward, ActionUnlockSkill, ActionLogHealthActivity,
		ActionAddCollectible, ActionPerformRepeatableAction, ActionCompleteFocusSession,
		ActionUpdateMood, ActionSetMainQuest, ActionSetSeasonName, ActionAddLogEntry,
		ActionUnlockAchievement, ActionResetAnalytics, ActionUndo, ActionPruneUndo,
		ActionResetGame,
	}
}

func decodeInto[T Action](data json.RawMessage) (Action, error) {
	var a T
	if len(data) == 0 || string(data) == "null" {
		return a, nil
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// DecodeAction builds an action from its wire tag and JSON payload.
func DecodeAction(tag string, payload json.RawMessage) (Action, error) {
	var (
		a   Action
		err error
	)
	switch ActionType(strings.ToUpper(strings.TrimSpace(tag))) {
	case ActionAddQuest:
		a, err = decodeInto[AddQuest](payload)
	case ActionUpdateQuest:
		a, err = decodeInto[UpdateQuest](payload)
	case ActionDeleteQuest:
		a, err = decodeInto[DeleteQuest](payload)
	case ActionCompleteQuest:
		a, err = decodeInto[CompleteQuest](payload)
	case ActionFailQuest:
		a, err = decodeInto[FailQuest](payload)
	case ActionPauseQuest:
		a, err = decodeInto[PauseQuest](payload)
	case ActionResumeQuest:
		a, err = decodeInto[ResumeQuest](payload)
	case ActionGainXP:
		a, err = decodeInto[GainXP](payload)
	case ActionAddGold:
		a, err = decodeInto[AddGold](payload)
	case ActionSpendGold:
		a, err = decodeInto[SpendGold](payload)
	case ActionUpdateStreak:
		a, err = decodeInto[UpdateStreak](payload)
	case ActionSetStreakGoal:
		a, err = decodeInto[SetStreakGoal](payload)
	case ActionClaimStreakReward:
		a, err = decodeInto[ClaimStreakReward](payload)
	case ActionUnlockSkill:
		a, err = decodeInto[UnlockSkill](payload)
	case ActionLogHealthActivity:
		a, err = decodeInto[LogHealthActivity](payload)
	case ActionAddCollectible:
		a, err = decodeInto[AddCollectible](payload)
	case ActionPerformRepeatableAction:
		a, err = decodeInto[PerformRepeatableAction](payload)
	case ActionCompleteFocusSession:
		a, err = decodeInto[CompleteFocusSession](payload)
	case ActionUpdateMood:
		a, err = decodeInto[UpdateMood](payload)
	case ActionSetMainQuest:
		a, err = decodeInto[SetMainQuest](payload)
	case ActionSetSeasonName:
		a, err = decodeInto[SetSeasonName](payload)
	case ActionAddLogEntry:
		a, err = decodeInto[AddLogEntry](payload)
	case ActionUnlockAchievement:
		a, err = decodeInto[UnlockAchievement](payload)
	case ActionResetAnalytics:
		a, err = decodeInto[ResetAnalytics](payload)
	case ActionUndo:
		a, err = decodeInto[Undo](payload)
	case ActionPruneUndo:
		a, err = decodeInto[PruneUndo](payload)
	case ActionResetGame:
		a, err = decodeInto[ResetGame](payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, tag)
	}
	if err != nil {
		return nil, ValidationError{Field: "payload", Reason: fmt.Sprintf("decode %s: %v", tag, err)}
	}
	return a, nil
}

// EncodeAction returns the JSON payload of a for journaling.
func EncodeAction(a Action) (json.RawMessage, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", a.Type(), err)
	}
	return data, nil
}
