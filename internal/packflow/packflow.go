// Package packflow expands pack step lists into unit steps and owns the rule
// for which way packs travel around the table.
package packflow

import "github.com/malexanderboyd/pwr9-cubeflow/internal/game"

// DefaultStepsForLength returns n picks separated by n-1 passes.
func DefaultStepsForLength(n int) []game.Step {
	if n <= 0 {
		return []game.Step{}
	}
	steps := make([]game.Step, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			steps = append(steps, game.Step{Action: game.Pass, Amount: 1})
		}
		steps = append(steps, game.Step{Action: game.Pick, Amount: 1})
	}
	return steps
}

// FlattenSteps expands batched steps into unit steps for one pack. Passing
// removes no card, so a pass reports one fewer card than the counter without
// changing it.
func FlattenSteps(steps []game.Step, pack int) []game.FlattenedStep {
	cardsInPack := game.ResolvedCards(steps) + 1

	var flat []game.FlattenedStep
	pick := 0
	for _, s := range steps {
		for j := 0; j < s.Count(); j++ {
			if s.Action == game.Pass {
				flat = append(flat, game.FlattenedStep{
					Action:      s.Action,
					Pack:        pack,
					Pick:        pick,
					CardsInPack: cardsInPack - 1,
				})
				continue
			}
			pick++
			cardsInPack--
			flat = append(flat, game.FlattenedStep{
				Action:      s.Action,
				Pack:        pack,
				Pick:        pick,
				CardsInPack: cardsInPack,
			})
		}
	}
	return flat
}

// PackSteps returns the explicit steps of a pack, or the default order for
// its card count.
func PackSteps(p game.PackState) []game.Step {
	if p.Steps == nil {
		return DefaultStepsForLength(len(p.Cards))
	}
	return game.StripTrailingPasses(p.Steps)
}

// StepList flattens every pack of seat 0, following each pack with an
// endpack marker. All seats share seat 0's step shape.
func StepList(initialState [][]game.PackState) []game.FlattenedStep {
	if len(initialState) == 0 {
		return nil
	}
	var list []game.FlattenedStep
	for i, p := range initialState[0] {
		list = append(list, FlattenSteps(PackSteps(p), i)...)
		list = append(list, game.FlattenedStep{Action: game.EndPack, Pack: i + 1})
	}
	return list
}

func resolves(s game.FlattenedStep) bool {
	return s.Action != game.Pass && s.Action != game.EndPack
}

// TotalActions counts the steps that consume a card.
func TotalActions(list []game.FlattenedStep) int {
	n := 0
	for _, s := range list {
		if resolves(s) {
			n++
		}
	}
	return n
}

// NextStep returns the action required once resolved cards have already
// been picked or trashed. It returns false past the end of the draft.
func NextStep(initialState [][]game.PackState, resolved int) (game.Action, bool) {
	count := 0
	for _, s := range StepList(initialState) {
		if !resolves(s) {
			continue
		}
		if count == resolved {
			return s.Action, true
		}
		count++
	}
	return "", false
}
