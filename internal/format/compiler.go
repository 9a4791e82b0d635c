// Package format deals concrete packs from a draft format and a card pool.
package format

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

var (
	ErrNotEnoughCards  = errors.New("not enough cards")
	ErrNoMatchingCards = errors.New("not enough cards matching filter")
)

// Compiler deals packs. The zero value draws with a time-seeded source and
// picks filter alternatives at random.
type Compiler struct {
	Rand *rand.Rand
	// Deterministic makes every slot try its filter alternatives in order
	// instead of choosing one at random.
	Deterministic bool
	// DuplicatesAllowed leaves drawn cards in the pool for every slot.
	DuplicatesAllowed bool
}

type Result struct {
	Cards        []game.Card
	InitialState [][]game.PackState
	Warnings     []string
}

func (c *Compiler) rng() *rand.Rand {
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c.Rand
}

// Compile deals every pack of the format to every seat.
func (c *Compiler) Compile(f game.DraftFormat, pool []game.Card, seats int) (*Result, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("cannot deal to %d seats", seats)
	}
	// f shares its pack specs with the caller.
	f.Packs = append([]game.PackSpec(nil), f.Packs...)
	f.Normalize()
	for i, p := range f.Packs {
		if p.Steps == nil {
			continue
		}
		if need := game.ResolvedCards(p.Steps); need > len(p.Slots) {
			return nil, fmt.Errorf("%w: pack %d steps take %d cards but it has %d slots", game.ErrInvalidDraft, i, need, len(p.Slots))
		}
	}
	if !f.Custom {
		return c.compileStandard(f, pool, seats)
	}
	return c.compileCustom(f, pool, seats)
}

func newResult(f game.DraftFormat, seats int) *Result {
	res := &Result{InitialState: make([][]game.PackState, seats)}
	for s := range res.InitialState {
		res.InitialState[s] = make([]game.PackState, len(f.Packs))
		for p, spec := range f.Packs {
			res.InitialState[s][p] = game.PackState{
				Cards: make([]game.CardRef, 0, len(spec.Slots)),
				Steps: copySteps(spec.Steps),
			}
		}
	}
	return res
}

func copySteps(steps []game.Step) []game.Step {
	if steps == nil {
		return nil
	}
	return append([]game.Step{}, steps...)
}

func (r *Result) deal(seat, pack int, card game.Card, poolIndex int) {
	card.Index = poolIndex
	card.Asfan = 0
	r.Cards = append(r.Cards, card)
	ps := &r.InitialState[seat][pack]
	ps.Cards = append(ps.Cards, game.CardRef(len(r.Cards)-1))
}

// compileStandard ignores filters: one shuffle, then every slot takes the
// next card of the shared pool.
func (c *Compiler) compileStandard(f game.DraftFormat, pool []game.Card, seats int) (*Result, error) {
	needed := seats * f.SlotCount()
	if len(pool) < needed {
		return nil, fmt.Errorf("%w: need %d, pool has %d", ErrNotEnoughCards, needed, len(pool))
	}
	order := c.rng().Perm(len(pool))
	res := newResult(f, seats)
	next := 0
	for s := 0; s < seats; s++ {
		for p, spec := range f.Packs {
			for range spec.Slots {
				idx := order[next]
				next++
				res.deal(s, p, pool[idx], idx)
			}
		}
	}
	return res, nil
}

func (c *Compiler) compileCustom(f game.DraftFormat, pool []game.Card, seats int) (*Result, error) {
	res := newResult(f, seats)
	live := make([]int, len(pool))
	for i := range live {
		live[i] = i
	}
	for s := 0; s < seats; s++ {
		for p, spec := range f.Packs {
			for slotIdx, slot := range spec.Slots {
				idx, warnings, err := c.drawSlot(slot, pool, live)
				res.Warnings = append(res.Warnings, warnings...)
				if err != nil {
					return nil, fmt.Errorf("seat %d pack %d slot %d: %w", s+1, p+1, slotIdx+1, err)
				}
				res.deal(s, p, pool[idx], idx)
				if !c.DuplicatesAllowed && !f.Multiples && !slot.DuplicatesAllowed {
					live = removeValue(live, idx)
				}
			}
		}
	}
	return res, nil
}

type alternative struct {
	filter game.Filter
	text   string
}

func alternatives(slot game.SlotSpec) []alternative {
	alts := make([]alternative, len(slot.Filters))
	for i, f := range slot.Filters {
		alts[i] = alternative{filter: f}
		if i < len(slot.Text) {
			alts[i].text = slot.Text[i]
		}
	}
	return alts
}

// drawSlot walks the slot's fallback chain until an alternative matches a
// live card, then returns the pool index of a uniformly chosen match.
func (c *Compiler) drawSlot(slot game.SlotSpec, pool []game.Card, live []int) (int, []string, error) {
	rng := c.rng()
	alts := alternatives(slot)
	if len(alts) == 0 {
		alts = []alternative{{}}
	}
	var warnings []string
	var last string
	for len(alts) > 0 {
		choice := 0
		if !c.Deterministic {
			choice = rng.Intn(len(alts))
		}
		alt := alts[choice]
		last = alt.text
		group := matching(pool, live, alt.filter)
		if len(group) > 0 {
			return group[rng.Intn(len(group))], warnings, nil
		}
		warnings = append(warnings, fmt.Sprintf("no cards matching filter: %s", alt.text))
		alts = append(alts[:choice], alts[choice+1:]...)
	}
	return -1, warnings, fmt.Errorf("%w: %s", ErrNoMatchingCards, last)
}

func matching(pool []game.Card, live []int, f game.Filter) []int {
	var group []int
	for _, idx := range live {
		if f.Matches(pool[idx]) {
			group = append(group, idx)
		}
	}
	return group
}

func removeValue(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
