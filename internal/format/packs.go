package format

import (
	"fmt"
	"math/rand"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// DefaultFormat is a standard draft of packs packs with cardsPerPack cards.
func DefaultFormat(packs, cardsPerPack int) game.DraftFormat {
	f := game.DraftFormat{Title: "Standard Draft", Packs: make([]game.PackSpec, packs)}
	for i := range f.Packs {
		f.Packs[i].Slots = make([]game.SlotSpec, cardsPerPack)
	}
	return f
}

// SamplePack deals the first pack of the format for a single seat.
func SamplePack(f game.DraftFormat, pool []game.Card, rng *rand.Rand) ([]game.Card, error) {
	if len(f.Packs) == 0 {
		return nil, fmt.Errorf("format has no packs")
	}
	single := f
	single.Packs = f.Packs[:1]
	c := &Compiler{Rand: rng}
	res, err := c.Compile(single, pool, 1)
	if err != nil {
		return nil, err
	}
	pack := make([]game.Card, 0, len(res.InitialState[0][0].Cards))
	for _, ref := range res.InitialState[0][0].Cards {
		pack = append(pack, res.Cards[ref])
	}
	return pack, nil
}

// SealedPools deals each seat a flat pool of cardsPerSeat cards from one
// shared shuffle.
func SealedPools(pool []game.Card, seats, cardsPerSeat int, rng *rand.Rand) ([][]game.Card, error) {
	c := &Compiler{Rand: rng}
	res, err := c.Compile(DefaultFormat(1, cardsPerSeat), pool, seats)
	if err != nil {
		return nil, err
	}
	pools := make([][]game.Card, seats)
	for s := range pools {
		for _, ref := range res.InitialState[s][0].Cards {
			pools[s] = append(pools[s], res.Cards[ref])
		}
	}
	return pools, nil
}

// GridPack lays a 9-card pack out as a 3x3 grid and returns its rows then
// its columns, the six lines a grid drafter chooses between.
func GridPack(cards []game.CardRef) ([][]game.CardRef, error) {
	const side = 3
	if len(cards) != side*side {
		return nil, fmt.Errorf("grid pack needs %d cards, have %d", side*side, len(cards))
	}
	lines := make([][]game.CardRef, 0, 2*side)
	for r := 0; r < side; r++ {
		lines = append(lines, append([]game.CardRef{}, cards[r*side:(r+1)*side]...))
	}
	for c := 0; c < side; c++ {
		col := make([]game.CardRef, side)
		for r := 0; r < side; r++ {
			col[r] = cards[r*side+c]
		}
		lines = append(lines, col)
	}
	return lines, nil
}
