package game

import "strings"

// CardRef indexes Draft.Cards.
type CardRef int

// NoCard marks the absence of a selection.
const NoCard CardRef = -1

type CardDetails struct {
	ScryfallID string `json:"scryfall_id,omitempty"`
	Set        string `json:"set,omitempty"`
	Rarity     string `json:"rarity,omitempty"`
	ImageURL   string `json:"image_normal,omitempty"`
}

type Card struct {
	// Index is the position of the source card in the pool it was drawn from.
	Index         int          `json:"index"`
	Name          string       `json:"name"`
	CMC           float64      `json:"cmc"`
	Colors        []string     `json:"colors"`
	ColorIdentity []string     `json:"color_identity"`
	Type          string       `json:"type"`
	Tags          []string     `json:"tags,omitempty"`
	OracleText    string       `json:"oracle_text,omitempty"`
	Asfan         float64      `json:"asfan,omitempty"`
	Details       *CardDetails `json:"details,omitempty"`
}

// CardColors prefers the card's own colors and falls back to its identity.
func (c Card) CardColors() []string {
	if c.Colors != nil {
		return c.Colors
	}
	return c.ColorIdentity
}

func (c Card) IsLand() bool {
	return strings.Contains(c.Type, "Land")
}

// Filter is a compiled card predicate. A nil Filter matches every card.
type Filter func(Card) bool

func (f Filter) Matches(c Card) bool {
	return f == nil || f(c)
}

// FilterFunction compiles filter text into a Filter.
type FilterFunction func(text string) (Filter, error)

// ColorPair holds the colors a bot drafts.
type ColorPair []string

func (cp ColorPair) Overlaps(colors []string) bool {
	for _, c := range colors {
		if cp.Has(c) {
			return true
		}
	}
	return false
}

func (cp ColorPair) Has(color string) bool {
	for _, own := range cp {
		if own == color {
			return true
		}
	}
	return false
}

// Contains reports whether every color is one of the pair's colors.
func (cp ColorPair) Contains(colors []string) bool {
	for _, c := range colors {
		if !cp.Has(c) {
			return false
		}
	}
	return true
}

type RatingProvider interface {
	Rating(name string) (float64, bool)
}

// Ratings maps card names to pick ratings. Lower is stronger.
type Ratings map[string]float64

func (r Ratings) Rating(name string) (float64, bool) {
	v, ok := r[name]
	return v, ok
}
