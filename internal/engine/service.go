package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"adhdrpg/internal/catalog"
)

// StateStore persists the whole game tree. SaveState receives the action
// that produced the state so stores can journal it.
type StateStore interface {
	LoadState(ctx context.Context) (GameState, bool, error)
	SaveState(ctx context.Context, s GameState, cause Action) error
}

// AchievementChecker returns the ids of achievements whose conditions hold
// for s, whether or not they are already unlocked.
type AchievementChecker interface {
	Earned(s GameState) ([]string, error)
}

// Outcome describes the result of one dispatch.
type Outcome struct {
	Action  ActionType
	Changed bool
	Reason  string
	Notices []Notice
	State   GameState
}

// Rejection returns why the action changed nothing, or nil.
func (o Outcome) Rejection() error {
	if o.Changed || o.Reason == "" {
		return nil
	}
	return RejectedError{Action: o.Action, Reason: o.Reason}
}

// Service owns the game state. Every change goes through Dispatch, which is
// serialized; reads return copies.
type Service struct {
	mu    sync.Mutex
	state GameState

	store        StateStore
	clock        Clock
	rng          *rand.Rand
	catalog      *catalog.Catalog
	achievements AchievementChecker
	undoWindow   time.Duration
	newID        func() string
	streakGoal   int
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

// WithSeed makes collectible drops reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Service) { s.rng = rand.New(rand.NewPCG(seed, seed^0x5deece66d)) }
}

func WithCatalog(c *catalog.Catalog) Option { return func(s *Service) { s.catalog = c } }

func WithAchievements(a AchievementChecker) Option {
	return func(s *Service) { s.achievements = a }
}

func WithUndoWindow(d time.Duration) Option { return func(s *Service) { s.undoWindow = d } }

func WithIDs(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// WithStreakGoal sets the goal used when no saved game exists.
func WithStreakGoal(goal int) Option { return func(s *Service) { s.streakGoal = goal } }

// NewService loads the saved game from store. A missing or unreadable save
// starts a new game; read failures are logged, not returned. store may be nil
// for an in-memory game.
func NewService(ctx context.Context, store StateStore, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		clock:      RealClock{},
		undoWindow: DefaultUndoWindow,
		newID:      uuid.NewString,
		streakGoal: DefaultStreakGoal,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.rng == nil {
		now := uint64(svc.clock.Now().UnixNano())
		svc.rng = rand.New(rand.NewPCG(now, now>>7))
	}
	if svc.catalog == nil {
		svc.catalog = catalog.MustDefault()
	}

	svc.state = NewGameState(svc.streakGoal)
	if store == nil {
		return svc
	}
	st, found, err := store.LoadState(ctx)
	switch {
	case err != nil:
		log.Printf("[engine] load saved game: %v; starting a new game", err)
	case found:
		svc.state = st
	}
	return svc
}

func (s *Service) env() Env {
	return Env{
		Now:        s.clock.Now(),
		Rand:       s.rng,
		Catalog:    s.catalog,
		UndoWindow: s.undoWindow,
		NewID:      s.newID,
	}
}

// Dispatch reduces a against the current state, unlocks any newly earned
// achievements and persists the result when something changed.
func (s *Service) Dispatch(ctx context.Context, a Action) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.env()
	next, u, err := Reduce(env, s.state, a)
	if err != nil {
		return Outcome{Action: a.Type()}, err
	}
	out := Outcome{
		Action:  a.Type(),
		Changed: !u.Empty(),
		Reason:  u.Reason,
		Notices: u.Notices,
	}
	if out.Changed {
		next, out.Notices = s.unlockEarned(env, next, out.Notices)
	}

	// the in-memory state only moves once the change is on disk
	if out.Changed && s.store != nil {
		if err := s.store.SaveState(ctx, next, a); err != nil {
			out.Changed = false
			out.Notices = nil
			out.State = s.state.Clone()
			return out, fmt.Errorf("save state after %s: %w", a.Type(), err)
		}
	}
	s.state = next
	out.State = next.Clone()
	return out, nil
}

func (s *Service) unlockEarned(env Env, st GameState, notices []Notice) (GameState, []Notice) {
	if s.achievements == nil {
		return st, notices
	}
	ids, err := s.achievements.Earned(st)
	if err != nil {
		log.Printf("[engine] evaluate achievements: %v", err)
		return st, notices
	}
	for _, id := range ids {
		if st.HasAchievement(id) {
			continue
		}
		next, u, err := Reduce(env, st, UnlockAchievement{ID: id})
		if err != nil {
			log.Printf("[engine] unlock achievement %s: %v", id, err)
			continue
		}
		st = next
		notices = append(notices, u.Notices...)
	}
	return st, notices
}

// State returns a copy of the current state.
func (s *Service) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

func (s *Service) Now() time.Time { return s.clock.Now() }

// CheckIn records today's activity for the streak.
func (s *Service) CheckIn(ctx context.Context) (Outcome, error) {
	return s.Dispatch(ctx, UpdateStreak{})
}

// Undo reverts the most recent action that is still inside the undo window.
func (s *Service) Undo(ctx context.Context) (Outcome, error) {
	return s.Dispatch(ctx, Undo{})
}

func (s *Service) SkillChart() SkillChart {
	return BuildSkillChart(s.State(), s.catalog)
}

func (s *Service) Analytics(days int) Summary {
	return Summarize(s.State(), s.clock.Now(), days)
}

func (s *Service) SuggestNextQuest() (Quest, bool) {
	return SuggestNextQuest(s.State())
}

// FindQuest resolves a quest by id or, failing that, by case-insensitive
// title among open quests.
func (s *Service) FindQuest(ref string) (Quest, bool) {
	st := s.State()
	if q, _, ok := st.Quest(ref); ok {
		return q, true
	}
	return findQuestByTitle(st, ref)
}
