package engine

import (
	"fmt"
	"strings"

	"adhdrpg/internal/catalog"
)

func reduceCollectibles(env Env, s GameState, a Action) (Update, error) {
	act, ok := a.(AddCollectible)
	if !ok {
		return Update{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	name := strings.TrimSpace(act.Name)
	if name == "" {
		return Update{}, ValidationError{Field: "name", Reason: "name is required"}
	}
	rarity := act.Rarity
	if rarity == "" {
		rarity = catalog.RarityCommon
	}
	if !rarity.IsValid() {
		return Update{}, ValidationError{Field: "rarity", Reason: fmt.Sprintf("unknown rarity %q", act.Rarity)}
	}
	kind := strings.TrimSpace(act.Kind)
	if kind == "" {
		kind = "trinket"
	}

	c := Collectible{
		ID:         env.NewID(),
		Name:       name,
		Kind:       kind,
		Rarity:     rarity,
		AcquiredAt: env.Now,
	}
	return Update{
		Collectibles: append(append([]Collectible{}, s.Collectibles...), c),
		Log:          []LogEntry{{At: env.Now, Kind: LogReward, Message: fmt.Sprintf("Collected %s (%s)", c.Name, c.Rarity)}},
		Notices:      []Notice{{Kind: NoticeCollectible, Message: fmt.Sprintf("Found %s (%s)!", c.Name, c.Rarity)}},
	}, nil
}

func removeCollectible(in []Collectible, id string) []Collectible {
	out := make([]Collectible, 0, len(in))
	for _, c := range in {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// CollectionSummary counts collectibles by rarity.
func CollectionSummary(s GameState) map[catalog.Rarity]int {
	out := map[catalog.Rarity]int{}
	for _, c := range s.Collectibles {
		out[c.Rarity]++
	}
	return out
}
