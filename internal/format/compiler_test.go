package format_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/format"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

var colorsByIndex = []string{"W", "U", "B", "R", "G"}

func makePool(n int) []game.Card {
	pool := make([]game.Card, n)
	for i := range pool {
		pool[i] = game.Card{
			Name:   fmt.Sprintf("Card %03d", i),
			CMC:    float64(i % 7),
			Colors: []string{colorsByIndex[i%5]},
			Type:   "Creature",
		}
	}
	return pool
}

func colorFilter(color string) game.Filter {
	return func(c game.Card) bool {
		for _, col := range c.Colors {
			if col == color {
				return true
			}
		}
		return false
	}
}

func never(game.Card) bool { return false }

func customFormat(packs, slots int, slot game.SlotSpec) game.DraftFormat {
	f := game.DraftFormat{Custom: true}
	for p := 0; p < packs; p++ {
		spec := game.PackSpec{}
		for s := 0; s < slots; s++ {
			spec.Slots = append(spec.Slots, slot)
		}
		f.Packs = append(f.Packs, spec)
	}
	return f
}

func allPoolIndexes(res *format.Result) []int {
	var idx []int
	for _, seat := range res.InitialState {
		for _, pack := range seat {
			for _, ref := range pack.Cards {
				idx = append(idx, res.Cards[ref].Index)
			}
		}
	}
	return idx
}

func TestCompileStandardDealsWithoutRepeats(t *testing.T) {
	pool := makePool(100)
	c := &format.Compiler{Rand: rand.New(rand.NewSource(1))}

	res, err := c.Compile(format.DefaultFormat(3, 5), pool, 4)
	require.NoError(t, err)
	require.Len(t, res.InitialState, 4)
	for _, seat := range res.InitialState {
		require.Len(t, seat, 3)
		for _, pack := range seat {
			assert.Len(t, pack.Cards, 5)
			assert.Nil(t, pack.Steps)
		}
	}

	seen := map[int]bool{}
	for _, idx := range allPoolIndexes(res) {
		assert.False(t, seen[idx], "pool index %d dealt twice", idx)
		seen[idx] = true
		assert.Equal(t, pool[idx].Name, res.Cards[len(seen)-1].Name)
	}
	assert.Len(t, seen, 60)
}

func TestCompileStandardNotEnoughCards(t *testing.T) {
	c := &format.Compiler{Rand: rand.New(rand.NewSource(1))}
	_, err := c.Compile(format.DefaultFormat(3, 15), makePool(100), 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, format.ErrNotEnoughCards))
	assert.Contains(t, err.Error(), "not enough cards")
}

func TestCompileCustomNoRepeatWithoutDuplicates(t *testing.T) {
	pool := makePool(60)
	f := customFormat(3, 5, game.SlotSpec{})
	for seed := int64(0); seed < 20; seed++ {
		c := &format.Compiler{Rand: rand.New(rand.NewSource(seed))}
		res, err := c.Compile(f, pool, 4)
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, idx := range allPoolIndexes(res) {
			require.False(t, seen[idx], "seed %d: pool index %d dealt twice", seed, idx)
			seen[idx] = true
		}
		assert.Len(t, seen, 60)
	}
}

func TestCompileCustomRespectsFilters(t *testing.T) {
	pool := makePool(50)
	f := customFormat(1, 3, game.SlotSpec{Filters: []game.Filter{colorFilter("U")}, Text: []string{"c:u"}})
	c := &format.Compiler{Rand: rand.New(rand.NewSource(3))}

	res, err := c.Compile(f, pool, 2)
	require.NoError(t, err)
	for _, card := range res.Cards {
		assert.Equal(t, []string{"U"}, card.Colors)
	}
	assert.Empty(t, res.Warnings)
}

func TestCompileCustomFallsBackAndWarns(t *testing.T) {
	pool := makePool(20)
	slot := game.SlotSpec{
		Filters: []game.Filter{never, colorFilter("G")},
		Text:    []string{"t:planeswalker", "c:g"},
	}
	c := &format.Compiler{Rand: rand.New(rand.NewSource(7)), Deterministic: true}

	res, err := c.Compile(customFormat(1, 1, slot), pool, 2)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "no cards matching filter: t:planeswalker", res.Warnings[0])
	for _, card := range res.Cards {
		assert.Equal(t, []string{"G"}, card.Colors)
	}
}

func TestCompileCustomExhaustedChain(t *testing.T) {
	pool := makePool(20)
	slot := game.SlotSpec{Filters: []game.Filter{colorFilter("W")}, Text: []string{"c:w"}}
	c := &format.Compiler{Rand: rand.New(rand.NewSource(7))}

	// 4 white cards in the pool, 6 white slots.
	_, err := c.Compile(customFormat(1, 3, slot), pool, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, format.ErrNoMatchingCards))
	assert.True(t, strings.Contains(err.Error(), "c:w"))
}

func TestCompileCustomDuplicatesAllowed(t *testing.T) {
	pool := makePool(3)
	c := &format.Compiler{Rand: rand.New(rand.NewSource(11)), DuplicatesAllowed: true}

	res, err := c.Compile(customFormat(2, 5, game.SlotSpec{}), pool, 3)
	require.NoError(t, err)
	assert.Len(t, res.Cards, 30)
	for _, idx := range allPoolIndexes(res) {
		assert.True(t, idx >= 0 && idx < 3)
	}
}

func TestCompileKeepsStepsPerPack(t *testing.T) {
	f := customFormat(1, 3, game.SlotSpec{})
	f.Packs[0].Steps = []game.Step{{Action: game.Pick}, {Action: game.Pass}, {Action: game.Trash, Amount: 2}, {Action: game.Pass}}
	c := &format.Compiler{Rand: rand.New(rand.NewSource(1))}

	res, err := c.Compile(f, makePool(10), 2)
	require.NoError(t, err)
	for _, seat := range res.InitialState {
		assert.Len(t, seat[0].Steps, 3)
	}
	assert.Len(t, f.Packs[0].Steps, 4, "the caller's format is left alone")
}

func TestCompileSharedFormatConcurrently(t *testing.T) {
	f := customFormat(2, 3, game.SlotSpec{})
	for i := range f.Packs {
		f.Packs[i].Steps = []game.Step{{Action: game.Pick}, {Action: game.Pass}, {Action: game.Pick}, {Action: game.Pass}}
	}
	pool := makePool(30)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &format.Compiler{Rand: rand.New(rand.NewSource(int64(i)))}
			_, errs[i] = c.Compile(f, pool, 2)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	for _, p := range f.Packs {
		assert.Len(t, p.Steps, 4)
	}
}

func TestCompileRejectsStepsLongerThanPack(t *testing.T) {
	f := customFormat(2, 2, game.SlotSpec{})
	f.Packs[1].Steps = []game.Step{{Action: game.Pick, Amount: 2}, {Action: game.Pass}, {Action: game.Trash}}
	c := &format.Compiler{Rand: rand.New(rand.NewSource(1))}

	_, err := c.Compile(f, makePool(20), 2)
	require.ErrorIs(t, err, game.ErrInvalidDraft)
	assert.Contains(t, err.Error(), "pack 1 steps take 3 cards but it has 2 slots")

	f.Packs[1].Steps = []game.Step{{Action: game.Pick}, {Action: game.Pass}, {Action: game.Pass}}
	_, err = c.Compile(f, makePool(20), 2)
	assert.NoError(t, err, "passes take no cards")
}

func TestAsfansStandard(t *testing.T) {
	pool := makePool(40)
	c := &format.Compiler{}
	c.Asfans(format.DefaultFormat(3, 10), pool)

	total := 0.0
	for _, card := range pool {
		total += card.Asfan
	}
	assert.InDelta(t, 30, total, 1e-9)
	assert.Len(t, pool, 40)
}

func TestAsfansSplitsAlternatives(t *testing.T) {
	pool := makePool(10)
	slot := game.SlotSpec{Filters: []game.Filter{colorFilter("W"), colorFilter("U")}}
	f := customFormat(1, 1, slot)

	c := &format.Compiler{DuplicatesAllowed: true}
	c.Asfans(f, pool)
	for _, card := range pool {
		switch card.Colors[0] {
		case "W", "U":
			assert.InDelta(t, 0.25, card.Asfan, 1e-9, card.Name)
		default:
			assert.Zero(t, card.Asfan, card.Name)
		}
	}
}

func TestAsfansWithoutDuplicatesNeverExceedsOne(t *testing.T) {
	pool := makePool(4)
	c := &format.Compiler{}
	c.Asfans(customFormat(1, 4, game.SlotSpec{}), pool)
	total := 0.0
	for _, card := range pool {
		assert.True(t, card.Asfan <= 1+1e-9, "%s has asfan %f", card.Name, card.Asfan)
		total += card.Asfan
	}
	assert.True(t, math.Abs(total-4) < 1e-9)
}
