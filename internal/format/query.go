package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// Query compiles a small card search language. Terms are separated by
// spaces and a card must match all of them; a leading "-" negates a term.
//
//	name:bolt  n:bolt   name contains "bolt"
//	t:creature type:elf type line contains the word
//	c:wu                card has every listed color, "c:c" for colorless
//	tag:removal         card carries the tag
//	cmc:3               mana value is exactly 3
//	bolt                bare words match the name
//
// Matching is case-insensitive.
func Query(text string) (game.Filter, error) {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty query")
	}
	filters := make([]game.Filter, 0, len(terms))
	for _, term := range terms {
		f, err := queryTerm(term)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return func(c game.Card) bool {
		for _, f := range filters {
			if !f(c) {
				return false
			}
		}
		return true
	}, nil
}

func queryTerm(term string) (game.Filter, error) {
	if strings.HasPrefix(term, "-") && len(term) > 1 {
		f, err := queryTerm(term[1:])
		if err != nil {
			return nil, err
		}
		return func(c game.Card) bool { return !f(c) }, nil
	}
	key, value, ok := strings.Cut(term, ":")
	if !ok {
		key, value = "name", term
	}
	if value == "" {
		return nil, fmt.Errorf("term %q has no value", term)
	}
	value = strings.ToLower(value)

	switch strings.ToLower(key) {
	case "name", "n":
		return func(c game.Card) bool {
			return strings.Contains(strings.ToLower(c.Name), value)
		}, nil
	case "type", "t":
		return func(c game.Card) bool {
			return strings.Contains(strings.ToLower(c.Type), value)
		}, nil
	case "tag":
		return func(c game.Card) bool {
			for _, tag := range c.Tags {
				if strings.ToLower(tag) == value {
					return true
				}
			}
			return false
		}, nil
	case "color", "c":
		return colorTerm(term, value)
	case "cmc", "mv":
		cmc, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}
		return func(c game.Card) bool { return c.CMC == cmc }, nil
	}
	return nil, fmt.Errorf("unknown query key %q", key)
}

func colorTerm(term, value string) (game.Filter, error) {
	if value == "c" {
		return func(c game.Card) bool { return len(c.CardColors()) == 0 }, nil
	}
	want := make(game.ColorPair, 0, len(value))
	for _, r := range strings.ToUpper(value) {
		if !strings.ContainsRune("WUBRG", r) {
			return nil, fmt.Errorf("term %q: unknown color %q", term, r)
		}
		want = append(want, string(r))
	}
	return func(c game.Card) bool {
		return game.ColorPair(c.CardColors()).Contains(want)
	}, nil
}
