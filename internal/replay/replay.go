// Package replay reconstructs what every seat saw and chose at each pick of a
// recorded draft from the dealt packs and each seat's final pick and trash
// order.
package replay

import (
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/packflow"
)

// DrafterState is one seat's view of the draft at one pick. Callers own it.
type DrafterState struct {
	Seat    int            `json:"seat"`
	Picked  []game.CardRef `json:"picked"`
	Trashed []game.CardRef `json:"trashed"`
	// CardsInPack is the pack as the seat saw it before choosing.
	CardsInPack []game.CardRef     `json:"cardsInPack"`
	Selection   game.CardRef       `json:"selection"`
	Action      game.Action        `json:"action"`
	Pick        int                `json:"pick"`
	Pack        int                `json:"pack"`
	Step        game.FlattenedStep `json:"step"`
	// StepsConsumed counts the entries of the step list walked to answer.
	StepsConsumed int `json:"stepsConsumed"`
}

// Resolved is the number of cards the seat has picked or trashed.
func (s DrafterState) Resolved() int {
	return len(s.Picked) + len(s.Trashed)
}

func emptyState(seat int) DrafterState {
	return DrafterState{
		Seat:        seat,
		Picked:      []game.CardRef{},
		Trashed:     []game.CardRef{},
		CardsInPack: []game.CardRef{},
		Selection:   game.NoCard,
	}
}

// seatCursor walks one seat's recorded orders without consuming them.
type seatCursor struct {
	state       DrafterState
	picks       []game.CardRef
	trashes     []game.CardRef
	pickCursor  int
	trashCursor int
}

func (c *seatCursor) next(trash bool) game.CardRef {
	if trash {
		if c.trashCursor >= len(c.trashes) {
			return game.NoCard
		}
		ref := c.trashes[c.trashCursor]
		c.trashCursor++
		return ref
	}
	if c.pickCursor >= len(c.picks) {
		return game.NoCard
	}
	ref := c.picks[c.pickCursor]
	c.pickCursor++
	return ref
}

// GetDrafterState replays the draft for all seats in lockstep and returns
// seat's state at the step where it resolved its pickIndex'th card (zero
// based). It never modifies draft and walks no further than needed. A
// pickIndex past the end returns the state after the last step.
func GetDrafterState(draft *game.Draft, seat, pickIndex int) DrafterState {
	if draft == nil || len(draft.InitialState) == 0 || seat < 0 || seat >= len(draft.InitialState) {
		return emptyState(seat)
	}
	numSeats := len(draft.InitialState)
	steps := packflow.StepList(draft.InitialState)

	cursors := make([]*seatCursor, numSeats)
	for i := range cursors {
		c := &seatCursor{state: emptyState(i)}
		if i < len(draft.Seats) {
			c.picks = draft.Seats[i].PickOrder
			c.trashes = draft.Seats[i].TrashOrder
		}
		cursors[i] = c
	}
	target := cursors[seat]

	var packs [][]game.CardRef
	offset := 0
	for _, step := range steps {
		if target.state.Resolved() > pickIndex {
			break
		}
		target.state.StepsConsumed++
		for _, c := range cursors {
			c.state.Step = step
			c.state.Pack = step.Pack
			c.state.Pick = step.Pick
		}

		switch {
		case step.Action == game.Pass:
			offset = packflow.NextOffset(offset, step.Pack, numSeats)
		case step.Action.Resolves():
			if step.Pick == 1 {
				packs = dealtPacks(draft, step.Pack)
				offset = 0
			}
			for i, c := range cursors {
				visible := packflow.SourceSeat(i, offset, numSeats)
				if visible >= len(packs) {
					continue
				}
				resolve(draft, c, step.Action, &packs[visible])
			}
		}
	}
	return target.state
}

// dealtPacks copies every seat's pack as dealt. Seats missing the pack get
// an empty one.
func dealtPacks(draft *game.Draft, pack int) [][]game.CardRef {
	packs := make([][]game.CardRef, len(draft.InitialState))
	for i, seatPacks := range draft.InitialState {
		if pack < len(seatPacks) {
			packs[i] = append([]game.CardRef{}, seatPacks[pack].Cards...)
		} else {
			packs[i] = []game.CardRef{}
		}
	}
	return packs
}

func resolve(draft *game.Draft, c *seatCursor, action game.Action, pack *[]game.CardRef) {
	c.state.Action = action
	c.state.CardsInPack = append([]game.CardRef{}, *pack...)
	ref := c.next(action.IsTrash())
	c.state.Selection = ref
	if ref == game.NoCard || !draft.ValidRef(ref) {
		c.state.Selection = game.NoCard
		return
	}
	if action.IsTrash() {
		c.state.Trashed = append(c.state.Trashed, ref)
	} else {
		c.state.Picked = append(c.state.Picked, ref)
	}
	*pack = removeRef(*pack, ref)
}

func removeRef(pack []game.CardRef, ref game.CardRef) []game.CardRef {
	for i, r := range pack {
		if r == ref {
			return append(pack[:i], pack[i+1:]...)
		}
	}
	return pack
}
