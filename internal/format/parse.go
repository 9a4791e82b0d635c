package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// Source is a format as authored: filter text instead of compiled filters.
type Source struct {
	Title     string       `json:"title"`
	Multiples bool         `json:"multiples"`
	Packs     []PackSource `json:"packs"`
}

type PackSource struct {
	// Slots holds one fallback chain per slot. Alternatives within a chain
	// may also be written as a single comma-separated string.
	Slots []SlotSource `json:"slots"`
	Steps []game.Step  `json:"steps"`
}

type SlotSource []string

// UnmarshalJSON accepts either "a,b" or ["a","b"].
func (s *SlotSource) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = SplitAlternatives(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("slot must be a string or a list of strings: %w", err)
	}
	*s = list
	return nil
}

func SplitAlternatives(text string) []string {
	var alts []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			alts = append(alts, part)
		}
	}
	return alts
}

// Parse compiles every filter of the source. All compile failures are
// returned together so the author can fix them in one pass.
func Parse(src Source, compile game.FilterFunction) (game.DraftFormat, error) {
	f := game.DraftFormat{
		Title:     src.Title,
		Multiples: src.Multiples,
		Custom:    true,
		Packs:     make([]game.PackSpec, len(src.Packs)),
	}
	var errs error
	for p, pack := range src.Packs {
		for _, step := range pack.Steps {
			if !step.Action.Valid() {
				errs = multierr.Append(errs, fmt.Errorf("pack %d: unknown step action %q", p+1, step.Action))
			}
		}
		spec := game.PackSpec{
			Slots: make([]game.SlotSpec, len(pack.Slots)),
			Steps: game.StripTrailingPasses(pack.Steps),
		}
		for s, slot := range pack.Slots {
			compiled := game.SlotSpec{Text: []string(slot)}
			for _, text := range slot {
				if text == "*" {
					compiled.Filters = append(compiled.Filters, nil)
					continue
				}
				filter, err := compile(text)
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("pack %d slot %d: filter %q: %w", p+1, s+1, text, err))
					continue
				}
				compiled.Filters = append(compiled.Filters, filter)
			}
			spec.Slots[s] = compiled
		}
		f.Packs[p] = spec
	}
	if errs != nil {
		return game.DraftFormat{}, errs
	}
	return f, nil
}

// ParseJSON decodes and compiles a format document.
func ParseJSON(data []byte, compile game.FilterFunction) (game.DraftFormat, error) {
	var src Source
	if err := json.Unmarshal(data, &src); err != nil {
		return game.DraftFormat{}, fmt.Errorf("decode format: %w", err)
	}
	return Parse(src, compile)
}
