package storage

import "time"

// GameStateKey is the kv slot holding the serialized game tree.
const GameStateKey = "gameState"

type Slot struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type JournalEntry struct {
	ID           int64
	Action       string
	Payload      string
	DispatchedAt time.Time
}
