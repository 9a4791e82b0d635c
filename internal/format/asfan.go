package format

import "github.com/malexanderboyd/pwr9-cubeflow/internal/game"

// Asfans writes to every pool card the expected number of copies a single
// seat opens over the format. Pool membership is never changed; only the
// Asfan fields are.
func (c *Compiler) Asfans(f game.DraftFormat, pool []game.Card) {
	for i := range pool {
		pool[i].Asfan = 0
	}
	for _, pack := range f.Packs {
		for _, slot := range pack.Slots {
			duplicates := c.DuplicatesAllowed || f.Multiples || slot.DuplicatesAllowed
			filters := slot.Filters
			if !f.Custom || len(filters) == 0 {
				filters = []game.Filter{nil}
			}
			for _, filter := range filters {
				addAsfan(pool, filter, len(filters), duplicates)
			}
		}
	}
}

// addAsfan spreads one filter alternative's share of a slot over the cards
// it can still produce. Without duplicates, cards that are more likely to
// be gone already get a smaller share.
func addAsfan(pool []game.Card, filter game.Filter, alternatives int, duplicates bool) {
	var group []int
	for i, card := range pool {
		if card.Asfan < 1 && filter.Matches(card) {
			group = append(group, i)
		}
	}
	if len(group) == 0 {
		return
	}
	share := 1 / float64(alternatives)
	if duplicates {
		for _, i := range group {
			pool[i].Asfan += share / float64(len(group))
		}
		return
	}
	remaining := 0.0
	for _, i := range group {
		remaining += 1 - pool[i].Asfan
	}
	for _, i := range group {
		pool[i].Asfan += share * (1 - pool[i].Asfan) / remaining
	}
}
