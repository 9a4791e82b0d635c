package game

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDraft = errors.New("invalid draft")

type PackState struct {
	Cards []CardRef `json:"cards"`
	// Steps is nil for the default alternating pick/pass order.
	Steps []Step `json:"steps"`
}

type Seat struct {
	Owner      string    `json:"owner"`
	Bot        bool      `json:"bot"`
	PickOrder  []CardRef `json:"pickorder"`
	TrashOrder []CardRef `json:"trashorder"`
	Mainboard  []CardRef `json:"mainboard"`
	Sideboard  []CardRef `json:"sideboard"`
}

type Draft struct {
	ID    string `json:"id"`
	Cards []Card `json:"cards"`
	// InitialState is indexed [seat][pack] and never changes once dealt.
	InitialState [][]PackState `json:"InitialState"`
	Seats        []Seat        `json:"seats"`
	// Bots holds one color pair per bot seat, bots[i-1] for seat i.
	Bots       []ColorPair `json:"bots"`
	PackNumber int         `json:"packNumber"`
	PickNumber int         `json:"pickNumber"`
	Complete   bool        `json:"complete"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// ValidRef reports whether ref points into Cards.
func (d *Draft) ValidRef(ref CardRef) bool {
	return ref >= 0 && int(ref) < len(d.Cards)
}

// CardName returns the card's name, or "" for stale references.
func (d *Draft) CardName(ref CardRef) string {
	if !d.ValidRef(ref) {
		return ""
	}
	return d.Cards[ref].Name
}

// NumPacks is the number of packs dealt to each seat.
func (d *Draft) NumPacks() int {
	if len(d.InitialState) == 0 {
		return 0
	}
	return len(d.InitialState[0])
}

// BotColors returns the color pair of a bot seat.
func (d *Draft) BotColors(seat int) ColorPair {
	if seat < 1 || seat-1 >= len(d.Bots) {
		return nil
	}
	return d.Bots[seat-1]
}

// Validate checks the invariants a draft needs before it can be run.
func (d *Draft) Validate() error {
	if len(d.Seats) < 2 {
		return fmt.Errorf("%w: need at least 2 seats, have %d", ErrInvalidDraft, len(d.Seats))
	}
	if len(d.Cards) == 0 {
		return fmt.Errorf("%w: no cards", ErrInvalidDraft)
	}
	if len(d.InitialState) != len(d.Seats) {
		return fmt.Errorf("%w: %d seats but %d dealt pack lists", ErrInvalidDraft, len(d.Seats), len(d.InitialState))
	}
	packs := len(d.InitialState[0])
	for i, seatPacks := range d.InitialState {
		if len(seatPacks) != packs {
			return fmt.Errorf("%w: seat %d has %d packs, seat 0 has %d", ErrInvalidDraft, i, len(seatPacks), packs)
		}
	}
	if packs == 0 {
		return fmt.Errorf("%w: no packs", ErrInvalidDraft)
	}
	// Every seat follows seat 0's steps, so each pack must hold enough cards
	// for them. Without explicit steps the pack is drafted until empty.
	for p := 0; p < packs; p++ {
		lead := d.InitialState[0][p]
		need := len(lead.Cards)
		if lead.Steps != nil {
			need = ResolvedCards(lead.Steps)
		}
		for seat, seatPacks := range d.InitialState {
			if have := len(seatPacks[p].Cards); need > have {
				return fmt.Errorf("%w: seat %d pack %d steps take %d cards but it holds %d", ErrInvalidDraft, seat, p, need, have)
			}
		}
	}
	bots := 0
	for _, s := range d.Seats {
		if s.Bot {
			bots++
		}
	}
	if bots == 0 || len(d.Bots) < bots {
		return fmt.Errorf("%w: %d bot seats but %d bot color pairs", ErrInvalidDraft, bots, len(d.Bots))
	}
	return nil
}
