package director

import (
	"math/rand"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// fetchLands maps each fetch land to the colors it can find.
var fetchLands = map[string]game.ColorPair{
	"Arid Mesa":            {"R", "W"},
	"Bloodstained Mire":    {"B", "R"},
	"Flooded Strand":       {"W", "U"},
	"Marsh Flats":          {"W", "B"},
	"Misty Rainforest":     {"G", "U"},
	"Polluted Delta":       {"U", "B"},
	"Scalding Tarn":        {"U", "R"},
	"Verdant Catacombs":    {"B", "G"},
	"Windswept Heath":      {"G", "W"},
	"Wooded Foothills":     {"R", "G"},
	"Prismatic Vista":      {"W", "U", "B", "R", "G"},
	"Fabled Passage":       {"W", "U", "B", "R", "G"},
	"Evolving Wilds":       {"W", "U", "B", "R", "G"},
	"Terramorphic Expanse": {"W", "U", "B", "R", "G"},
}

// botScore is the card's rating lowered by how well it fits the bot's
// colors. Lower is better. It returns false for unrated cards.
func botScore(colors game.ColorPair, card game.Card, ratings game.RatingProvider) (float64, bool) {
	if ratings == nil {
		return 0, false
	}
	rating, ok := ratings.Rating(card.Name)
	if !ok {
		return 0, false
	}
	cardColors := card.CardColors()
	subset := len(cardColors) > 0 && colors.Contains(cardColors)
	overlap := colors.Overlaps(cardColors)
	fetch, isFetch := fetchLands[card.Name]

	switch {
	case subset || (isFetch && colors.Overlaps(fetch)):
		rating -= 0.4
	case card.IsLand() && overlap:
		rating -= 0.3
	case overlap:
		rating -= 0.2
	}
	return rating, true
}

// botChoice returns the index in pack the bot resolves for action. Picks
// take the best card and trashes the worst; unrated cards rank below every
// rated card and are ordered randomly among themselves.
func botChoice(colors game.ColorPair, action game.Action, pack []game.CardRef, cards []game.Card, ratings game.RatingProvider, rng *rand.Rand) int {
	if len(pack) == 0 {
		return -1
	}
	if action.IsRandom() {
		return rng.Intn(len(pack))
	}

	best, bestScore := -1, 0.0
	var unrated []int
	for i, ref := range pack {
		if ref < 0 || int(ref) >= len(cards) {
			unrated = append(unrated, i)
			continue
		}
		score, ok := botScore(colors, cards[ref], ratings)
		if !ok {
			unrated = append(unrated, i)
			continue
		}
		better := score < bestScore
		if action.IsTrash() {
			better = score > bestScore
		}
		if best < 0 || better {
			best, bestScore = i, score
		}
	}

	if action.IsTrash() && len(unrated) > 0 {
		return unrated[rng.Intn(len(unrated))]
	}
	if best >= 0 {
		return best
	}
	return unrated[rng.Intn(len(unrated))]
}
