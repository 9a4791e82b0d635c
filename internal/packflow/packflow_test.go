package packflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/packflow"
)

func TestDefaultStepsForLength(t *testing.T) {
	steps := packflow.DefaultStepsForLength(3)
	require.Len(t, steps, 5)
	want := []game.Action{game.Pick, game.Pass, game.Pick, game.Pass, game.Pick}
	for i, s := range steps {
		assert.Equal(t, want[i], s.Action, "step %d", i)
		assert.Equal(t, 1, s.Count())
	}

	assert.Empty(t, packflow.DefaultStepsForLength(0))
	assert.Len(t, packflow.DefaultStepsForLength(15), 29)
}

func TestFlattenDefaultThreeCardPack(t *testing.T) {
	got := packflow.FlattenSteps(packflow.DefaultStepsForLength(3), 0)
	want := []game.FlattenedStep{
		{Action: game.Pick, Pack: 0, Pick: 1, CardsInPack: 3},
		{Action: game.Pass, Pack: 0, Pick: 1, CardsInPack: 2},
		{Action: game.Pick, Pack: 0, Pick: 2, CardsInPack: 2},
		{Action: game.Pass, Pack: 0, Pick: 2, CardsInPack: 1},
		{Action: game.Pick, Pack: 0, Pick: 3, CardsInPack: 1},
	}
	assert.Equal(t, want, got)
}

func TestFlattenBatchedSteps(t *testing.T) {
	steps := []game.Step{
		{Action: game.Pick, Amount: 2},
		{Action: game.Pass},
		{Action: game.Trash},
		{Action: game.PickRandom, Amount: 1},
	}
	got := packflow.FlattenSteps(steps, 2)
	want := []game.FlattenedStep{
		{Action: game.Pick, Pack: 2, Pick: 1, CardsInPack: 4},
		{Action: game.Pick, Pack: 2, Pick: 2, CardsInPack: 3},
		{Action: game.Pass, Pack: 2, Pick: 2, CardsInPack: 2},
		{Action: game.Trash, Pack: 2, Pick: 3, CardsInPack: 2},
		{Action: game.PickRandom, Pack: 2, Pick: 4, CardsInPack: 1},
	}
	assert.Equal(t, want, got)
}

func dealt(seats int, packSizes ...int) [][]game.PackState {
	state := make([][]game.PackState, seats)
	next := 0
	for s := range state {
		for _, size := range packSizes {
			ps := game.PackState{}
			for i := 0; i < size; i++ {
				ps.Cards = append(ps.Cards, game.CardRef(next))
				next++
			}
			state[s] = append(state[s], ps)
		}
	}
	return state
}

func TestStepListInsertsEndPackMarkers(t *testing.T) {
	list := packflow.StepList(dealt(2, 2, 3))

	require.Len(t, list, 3+1+5+1)
	assert.Equal(t, game.FlattenedStep{Action: game.EndPack, Pack: 1}, list[3])
	assert.Equal(t, game.FlattenedStep{Action: game.EndPack, Pack: 2}, list[9])
	assert.Equal(t, 1, list[4].Pack)
	assert.Equal(t, 1, list[4].Pick)
	assert.Equal(t, 5, packflow.TotalActions(list))
}

func TestStepListUsesExplicitStepsAndStripsTrailingPass(t *testing.T) {
	state := dealt(2, 3)
	for s := range state {
		state[s][0].Steps = []game.Step{
			{Action: game.Pick},
			{Action: game.Pass},
			{Action: game.Trash, Amount: 2},
			{Action: game.Pass},
		}
	}
	list := packflow.StepList(state)
	require.Len(t, list, 5)
	assert.Equal(t, game.Trash, list[3].Action)
	assert.Equal(t, game.EndPack, list[4].Action)
}

func TestStepListEmpty(t *testing.T) {
	assert.Nil(t, packflow.StepList(nil))
}

func TestNextStep(t *testing.T) {
	state := dealt(2, 2, 2)
	state[0][1].Steps = []game.Step{{Action: game.Trash}, {Action: game.Pass}, {Action: game.PickRandom}}

	tests := []struct {
		resolved int
		want     game.Action
		ok       bool
	}{
		{0, game.Pick, true},
		{1, game.Pick, true},
		{2, game.Trash, true},
		{3, game.PickRandom, true},
		{4, "", false},
	}
	for _, tt := range tests {
		got, ok := packflow.NextStep(state, tt.resolved)
		assert.Equal(t, tt.ok, ok, "resolved %d", tt.resolved)
		assert.Equal(t, tt.want, got, "resolved %d", tt.resolved)
	}
}
