package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"time"

	"adhdrpg/internal/engine"
)

// Store keeps the whole game tree in the gameState slot and journals every
// action that changed it.
type Store struct {
	db      *sql.DB
	kv      *KVRepo
	journal *JournalRepo
	now     func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		kv:      NewKVRepo(db),
		journal: NewJournalRepo(db),
		now:     time.Now,
	}
}

func (s *Store) Journal() *JournalRepo { return s.journal }

// LoadState returns found=false when nothing has been saved yet. A slot that
// does not parse is reported as an error so the caller can fall back to a
// new game.
func (s *Store) LoadState(ctx context.Context) (engine.GameState, bool, error) {
	slot, err := s.kv.Get(ctx, GameStateKey)
	if err != nil {
		return engine.GameState{}, false, err
	}
	if slot == nil {
		return engine.GameState{}, false, nil
	}
	st, err := engine.DecodeState(slot.Value)
	if err != nil {
		return engine.GameState{}, false, err
	}
	return st, true, nil
}

// SaveState writes the full tree and the journal row in one transaction.
func (s *Store) SaveState(ctx context.Context, st engine.GameState, cause engine.Action) error {
	data, err := st.Marshal()
	if err != nil {
		return err
	}
	at := st.LastSaved
	if at.IsZero() {
		at = s.now()
	}

	var payload []byte
	if cause != nil {
		payload, err = engine.EncodeAction(cause)
		if err != nil {
			log.Printf("[storage] journal payload for %s: %v", cause.Type(), err)
			payload = nil
		}
	}

	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := NewKVRepo(tx).Put(ctx, GameStateKey, data, at); err != nil {
			return err
		}
		if cause == nil {
			return nil
		}
		if _, err := NewJournalRepo(tx).Insert(ctx, string(cause.Type()), payload, at); err != nil {
			return err
		}
		return nil
	})
}

// Export writes the saved tree as JSON.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	slot, err := s.kv.Get(ctx, GameStateKey)
	if err != nil {
		return err
	}
	data := []byte("{}")
	if slot != nil {
		data = slot.Value
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the saved tree with the JSON read from r. The data is
// validated and normalized before it is written.
func (s *Store) Import(ctx context.Context, r io.Reader) (engine.GameState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return engine.GameState{}, fmt.Errorf("import: read: %w", err)
	}
	st, err := engine.DecodeState(data)
	if err != nil {
		return engine.GameState{}, fmt.Errorf("import: %w", err)
	}
	if err := s.SaveState(ctx, st, nil); err != nil {
		return engine.GameState{}, fmt.Errorf("import: %w", err)
	}
	log.Printf("[storage] imported game state (level %d, %d quests)", st.Player.Level, len(st.Quests))
	return st, nil
}

// Reset deletes the saved tree and the journal.
func (s *Store) Reset(ctx context.Context) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := NewKVRepo(tx).Delete(ctx, GameStateKey); err != nil {
			return err
		}
		return NewJournalRepo(tx).Clear(ctx)
	})
}
