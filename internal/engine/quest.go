package engine

import (
	"fmt"
	"strings"

	"adhdrpg/internal/catalog"
)

// dropChance is the probability that completing a quest of a difficulty
// yields a collectible.
var dropChance = map[Difficulty]float64{
	DifficultyEasy:   0.10,
	DifficultyMedium: 0.20,
	DifficultyHard:   0.35,
	DifficultyEpic:   0.60,
}

// rarityWeights are relative odds for a dropped collectible, in order.
var rarityWeights = []struct {
	Rarity catalog.Rarity
	Weight int
}{
	{catalog.RarityCommon, 60},
	{catalog.RarityUncommon, 25},
	{catalog.RarityRare, 10},
	{catalog.RarityEpic, 4},
	{catalog.RarityLegendary, 1},
}

func reduceQuest(env Env, s GameState, a Action) (Update, error) {
	switch act := a.(type) {
	case AddQuest:
		return addQuest(env, s, act)
	case UpdateQuest:
		return updateQuest(s, act)
	case DeleteQuest:
		_, idx, ok := s.Quest(act.ID)
		if !ok {
			return reject("quest %q not found", act.ID), nil
		}
		quests := cloneQuests(s.Quests)
		quests = append(quests[:idx], quests[idx+1:]...)
		return Update{Quests: quests}, nil
	case CompleteQuest:
		return completeQuest(env, s, act.ID), nil
	case FailQuest:
		return failQuest(env, s, act.ID), nil
	case PauseQuest:
		return setQuestStatus(s, act.ID, StatusActive, StatusPaused), nil
	case ResumeQuest:
		return setQuestStatus(s, act.ID, StatusPaused, StatusActive), nil
	}
	return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

func addQuest(env Env, s GameState, act AddQuest) (Update, error) {
	title := strings.TrimSpace(act.Title)
	if title == "" {
		return Update{}, ValidationError{Field: "title", Reason: "title is required"}
	}

	q := Quest{
		ID:          env.NewID(),
		Title:       title,
		Description: strings.TrimSpace(act.Description),
		Category:    act.Category,
		Type:        act.QuestType,
		Priority:    act.Priority,
		Difficulty:  act.Difficulty,
		Energy:      act.Energy,
		Anxiety:     act.Anxiety,
		XPReward:    act.XPReward,
		GoldReward:  act.GoldReward,
		Status:      StatusActive,
		CreatedAt:   env.Now,
		DueDate:     act.DueDate,
	}
	if q.Category == "" {
		q.Category = CategoryPersonal
	}
	if q.Type == "" {
		q.Type = QuestSide
	}
	if q.Priority == "" {
		q.Priority = PriorityMedium
	}
	if q.Difficulty == "" {
		q.Difficulty = DifficultyMedium
	}
	if q.Energy == "" {
		q.Energy = LevelMedium
	}
	if q.Anxiety == "" {
		q.Anxiety = LevelLow
	}
	switch {
	case !q.Category.IsValid():
		return Update{}, ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", q.Category)}
	case !q.Type.IsValid():
		return Update{}, ValidationError{Field: "questType", Reason: fmt.Sprintf("unknown quest type %q", q.Type)}
	case !q.Priority.IsValid():
		return Update{}, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", q.Priority)}
	case !q.Difficulty.IsValid():
		return Update{}, ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q", q.Difficulty)}
	case !q.Energy.IsValid() || !q.Anxiety.IsValid():
		return Update{}, ValidationError{Field: "level", Reason: "energy and anxiety must be low, medium or high"}
	case q.XPReward < 0 || q.GoldReward < 0:
		return Update{}, ValidationError{Field: "reward", Reason: "rewards cannot be negative"}
	}
	if q.XPReward == 0 {
		q.XPReward = q.Difficulty.BaseXP()
	}
	if q.GoldReward == 0 {
		q.GoldReward = q.XPReward / 5
	}

	quests := append(cloneQuests(s.Quests), q)
	return Update{
		Quests: quests,
		Log:    []LogEntry{{At: env.Now, Kind: LogQuest, Message: fmt.Sprintf("New quest: %s", q.Title)}},
	}, nil
}

func updateQuest(s GameState, act UpdateQuest) (Update, error) {
	q, idx, ok := s.Quest(act.ID)
	if !ok {
		return reject("quest %q not found", act.ID), nil
	}
	if !q.Status.Open() {
		return reject("quest %q is %s", q.Title, q.Status), nil
	}
	if act.Title != nil {
		t := strings.TrimSpace(*act.Title)
		if t == "" {
			return Update{}, ValidationError{Field: "title", Reason: "title is required"}
		}
		q.Title = t
	}
	if act.Description != nil {
		q.Description = strings.TrimSpace(*act.Description)
	}
	if act.Category != nil {
		if !act.Category.IsValid() {
			return Update{}, ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", *act.Category)}
		}
		q.Category = *act.Category
	}
	if act.Priority != nil {
		if !act.Priority.IsValid() {
			return Update{}, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", *act.Priority)}
		}
		q.Priority = *act.Priority
	}
	if act.Difficulty != nil {
		if !act.Difficulty.IsValid() {
			return Update{}, ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q", *act.Difficulty)}
		}
		q.Difficulty = *act.Difficulty
	}
	if act.XPReward != nil {
		if *act.XPReward < 0 {
			return Update{}, ValidationError{Field: "xpReward", Reason: "cannot be negative"}
		}
		q.XPReward = *act.XPReward
	}
	if act.GoldReward != nil {
		if *act.GoldReward < 0 {
			return Update{}, ValidationError{Field: "goldReward", Reason: "cannot be negative"}
		}
		q.GoldReward = *act.GoldReward
	}
	if act.DueDate != nil {
		d := *act.DueDate
		q.DueDate = &d
	}

	quests := cloneQuests(s.Quests)
	quests[idx] = q
	return Update{Quests: quests}, nil
}

func setQuestStatus(s GameState, id string, from, to QuestStatus) Update {
	q, idx, ok := s.Quest(id)
	if !ok {
		return reject("quest %q not found", id)
	}
	if q.Status != from {
		return reject("quest %q is %s", q.Title, q.Status)
	}
	quests := cloneQuests(s.Quests)
	quests[idx].Status = to
	return Update{Quests: quests}
}

// completeQuest credits XP and gold, trains the category skill, records the
// day, may drop a collectible and registers an undo entry. Only open quests
// can be completed, so a quest is never credited twice.
func completeQuest(env Env, s GameState, id string) Update {
	q, idx, ok := s.Quest(id)
	if !ok {
		return reject("quest %q not found", id)
	}
	if !q.Status.Open() {
		return reject("quest %q is already %s", q.Title, q.Status)
	}

	now := env.Now
	streakBefore := markStreak(s.Player)
	p := s.Player
	p.UnlockedSkills = append([]string{}, s.Player.UnlockedSkills...)

	entries := applyStreak(&p, now)

	bonus := 1.0
	if s.MainQuest != "" && strings.EqualFold(strings.TrimSpace(s.MainQuest), q.Title) {
		bonus = MainQuestBonus
	}
	gain := grantXP(&p, q.XPReward, bonus)
	p.Gold += q.GoldReward

	quests := cloneQuests(s.Quests)
	completedAt := now
	quests[idx].Status = StatusCompleted
	quests[idx].CompletedAt = &completedAt

	skillID := q.Category.Skill()
	skills := addSkillXP(s.Skills, skillID, gain.ActualXPGained)

	entries = append(entries, LogEntry{
		At:      now,
		Kind:    LogQuest,
		Message: fmt.Sprintf("Quest complete: %s (+%d XP, +%d gold)", q.Title, gain.ActualXPGained, q.GoldReward),
	})
	entries = append(entries, levelUpLog(gain, now)...)

	u := Update{
		Player: &p,
		Quests: quests,
		Skills: skills,
	}
	u.Analytics, u.Totals = recordTally(s, now, Tally{
		QuestsCompleted: 1,
		XPEarned:        gain.ActualXPGained,
		GoldEarned:      q.GoldReward,
	})

	var dropID string
	if c, ok := rollCollectible(env, q); ok {
		dropID = c.ID
		u.Collectibles = append(append([]Collectible{}, s.Collectibles...), c)
		u.Notices = append(u.Notices, Notice{
			Kind:    NoticeCollectible,
			Message: fmt.Sprintf("Found %s (%s)!", c.Name, c.Rarity),
		})
		entries = append(entries, LogEntry{At: now, Kind: LogReward, Message: fmt.Sprintf("Loot: %s (%s)", c.Name, c.Rarity)})
	}
	u.Log = entries

	prevStatus := q.Status
	gold := q.GoldReward
	xpGained := gain.ActualXPGained
	u.PushUndo = []UndoAction{{
		ID:          env.NewID(),
		Description: fmt.Sprintf("complete %q", q.Title),
		ExpiresAt:   now.Add(env.UndoWindow),
		Revert: func(st *GameState) {
			revokeXP(&st.Player, xpGained)
			restoreStreak(&st.Player, streakBefore, now)
			st.Player.Gold = max(st.Player.Gold-gold, 0)
			if _, i, ok := st.Quest(q.ID); ok {
				st.Quests[i].Status = prevStatus
				st.Quests[i].CompletedAt = nil
			}
			st.Skills = addSkillXP(st.Skills, skillID, -xpGained)
			if dropID != "" {
				st.Collectibles = removeCollectible(st.Collectibles, dropID)
			}
			st.Analytics, st.Totals = subtractTally(*st, now, Tally{
				QuestsCompleted: 1,
				XPEarned:        xpGained,
				GoldEarned:      gold,
			})
		},
	}}
	return u
}

func failQuest(env Env, s GameState, id string) Update {
	q, idx, ok := s.Quest(id)
	if !ok {
		return reject("quest %q not found", id)
	}
	if !q.Status.Open() {
		return reject("quest %q is already %s", q.Title, q.Status)
	}
	quests := cloneQuests(s.Quests)
	quests[idx].Status = StatusFailed

	u := Update{
		Quests: quests,
		Log: []LogEntry{{
			At:      env.Now,
			Kind:    LogQuest,
			Message: fmt.Sprintf("Quest failed: %s. Rest up and try again.", q.Title),
		}},
	}
	u.Analytics, u.Totals = recordTally(s, env.Now, Tally{QuestsFailed: 1})
	return u
}

// rollCollectible decides whether q drops loot and picks it from the catalog.
func rollCollectible(env Env, q Quest) (Collectible, bool) {
	chance, ok := dropChance[q.Difficulty]
	if !ok || env.Rand.Float64() >= chance {
		return Collectible{}, false
	}
	rarity := rollRarity(env)
	pool := env.Catalog.CollectiblesOf(rarity)
	if len(pool) == 0 {
		pool = env.Catalog.CollectiblesOf(catalog.RarityCommon)
	}
	if len(pool) == 0 {
		return Collectible{}, false
	}
	t := pool[env.Rand.IntN(len(pool))]
	return Collectible{
		ID:            env.NewID(),
		Name:          t.Name,
		Kind:          t.Kind,
		Rarity:        t.Rarity,
		SourceQuestID: q.ID,
		AcquiredAt:    env.Now,
	}, true
}

func rollRarity(env Env) catalog.Rarity {
	total := 0
	for _, w := range rarityWeights {
		total += w.Weight
	}
	n := env.Rand.IntN(total)
	for _, w := range rarityWeights {
		if n < w.Weight {
			return w.Rarity
		}
		n -= w.Weight
	}
	return catalog.RarityCommon
}

// findQuestByTitle matches an open quest by id prefix or case-insensitive
// title. Ambiguous prefixes match nothing.
func findQuestByTitle(s GameState, ref string) (Quest, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Quest{}, false
	}
	var byPrefix []Quest
	for _, q := range s.Quests {
		if strings.HasPrefix(q.ID, ref) {
			byPrefix = append(byPrefix, q)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], true
	}
	for _, q := range s.Quests {
		if q.Status.Open() && strings.EqualFold(q.Title, ref) {
			return q, true
		}
	}
	return Quest{}, false
}
