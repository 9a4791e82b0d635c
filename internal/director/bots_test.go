package director

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

func TestBotScore(t *testing.T) {
	azorius := game.ColorPair{"W", "U"}
	ratings := game.Ratings{
		"Swords":           1,
		"Counterspell":     1,
		"Izzet Charm":      1,
		"Steam Vents":      1,
		"Lightning Bolt":   1,
		"Flooded Strand":   1,
		"Wooded Foothills": 1,
		"Sol Ring":         1,
	}

	tests := []struct {
		card game.Card
		want float64
	}{
		{game.Card{Name: "Swords", Colors: []string{"W"}, Type: "Instant"}, 0.6},
		{game.Card{Name: "Counterspell", Colors: []string{"W", "U"}, Type: "Instant"}, 0.6},
		{game.Card{Name: "Izzet Charm", Colors: []string{"U", "R"}, Type: "Instant"}, 0.8},
		{game.Card{Name: "Steam Vents", ColorIdentity: []string{"U", "R"}, Type: "Land"}, 0.7},
		{game.Card{Name: "Lightning Bolt", Colors: []string{"R"}, Type: "Instant"}, 1},
		{game.Card{Name: "Flooded Strand", Colors: []string{}, Type: "Land"}, 0.6},
		{game.Card{Name: "Wooded Foothills", Colors: []string{}, Type: "Land"}, 1},
		{game.Card{Name: "Sol Ring", Colors: []string{}, Type: "Artifact"}, 1},
	}
	for _, tt := range tests {
		got, ok := botScore(azorius, tt.card, ratings)
		assert.True(t, ok, tt.card.Name)
		assert.InDelta(t, tt.want, got, 1e-9, tt.card.Name)
	}

	_, ok := botScore(azorius, game.Card{Name: "Unknown"}, ratings)
	assert.False(t, ok)
	_, ok = botScore(azorius, game.Card{Name: "Swords"}, nil)
	assert.False(t, ok)
}

func TestBotChoice(t *testing.T) {
	cards := []game.Card{
		{Name: "Strong", Colors: []string{"R"}},
		{Name: "Weak", Colors: []string{"R"}},
		{Name: "Mid", Colors: []string{"W"}},
		{Name: "Unrated", Colors: []string{"G"}},
	}
	ratings := game.Ratings{"Strong": 0.1, "Weak": 0.9, "Mid": 0.6}
	colors := game.ColorPair{"W", "U"}
	rng := rand.New(rand.NewSource(1))

	// Mid scores 0.2 in colors, Strong 0.1 off colors.
	assert.Equal(t, 1, botChoice(colors, game.Pick, []game.CardRef{2, 0, 1}, cards, ratings, rng))
	assert.Equal(t, 1, botChoice(colors, game.Pick, []game.CardRef{1, 2, 3}, cards, ratings, rng))
	assert.Equal(t, 1, botChoice(colors, game.Pick, []game.CardRef{3, 1}, cards, ratings, rng), "rated cards beat unrated ones")

	assert.Equal(t, 1, botChoice(colors, game.Trash, []game.CardRef{0, 1, 2}, cards, ratings, rng))
	assert.Equal(t, 2, botChoice(colors, game.Trash, []game.CardRef{0, 1, 3}, cards, ratings, rng))
	assert.Equal(t, 0, botChoice(colors, game.Pick, []game.CardRef{3}, cards, ratings, rng))
	assert.Equal(t, -1, botChoice(colors, game.Pick, nil, cards, ratings, rng))

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		idx := botChoice(colors, game.PickRandom, []game.CardRef{0, 1, 2, 3}, cards, ratings, rng)
		assert.True(t, idx >= 0 && idx < 4)
		seen[idx] = true
	}
	assert.Len(t, seen, 4)
}
