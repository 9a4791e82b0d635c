package format_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/format"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// colorQuery understands "c:<color>" only.
func colorQuery(text string) (game.Filter, error) {
	if !strings.HasPrefix(text, "c:") {
		return nil, fmt.Errorf("unsupported query")
	}
	return colorFilter(strings.ToUpper(strings.TrimPrefix(text, "c:"))), nil
}

func TestParseJSONAcceptsStringAndListSlots(t *testing.T) {
	doc := `{
		"title": "Two colors",
		"packs": [{
			"slots": ["c:w, c:u", ["c:b", "*"], "*"],
			"steps": [{"action": "pick", "amount": 2}, {"action": "pass"}, {"action": "trash"}, {"action": "pass"}]
		}]
	}`
	f, err := format.ParseJSON([]byte(doc), colorQuery)
	require.NoError(t, err)

	assert.True(t, f.Custom)
	assert.Equal(t, "Two colors", f.Title)
	require.Len(t, f.Packs, 1)
	slots := f.Packs[0].Slots
	require.Len(t, slots, 3)
	assert.Equal(t, []string{"c:w", "c:u"}, slots[0].Text)
	assert.Len(t, slots[0].Filters, 2)
	assert.Equal(t, []string{"c:b", "*"}, slots[1].Text)
	require.Len(t, slots[1].Filters, 2)
	assert.Nil(t, slots[1].Filters[1])
	assert.True(t, slots[1].Filters[1].Matches(game.Card{Name: "anything"}))

	require.Len(t, f.Packs[0].Steps, 3)
	assert.Equal(t, game.Trash, f.Packs[0].Steps[2].Action)
}

func TestParseCollectsEveryError(t *testing.T) {
	src := format.Source{Packs: []format.PackSource{
		{
			Slots: []format.SlotSource{{"t:creature"}, {"c:r"}, {"o:draw"}},
			Steps: []game.Step{{Action: "steal"}},
		},
	}}
	_, err := format.Parse(src, colorQuery)
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 3)
	assert.Contains(t, err.Error(), `unknown step action "steal"`)
	assert.Contains(t, err.Error(), `filter "t:creature"`)
	assert.Contains(t, err.Error(), `filter "o:draw"`)
}

func TestParseJSONRejectsBadSlot(t *testing.T) {
	_, err := format.ParseJSON([]byte(`{"packs":[{"slots":[42]}]}`), colorQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode format")
}

func TestSplitAlternatives(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, format.SplitAlternatives(" a, ,b c,"))
	assert.Nil(t, format.SplitAlternatives(""))
}

func TestParsedFormatCompiles(t *testing.T) {
	doc := `{"packs":[{"slots":["c:w","c:u","*"]},{"slots":["c:g","c:r","*"]}]}`
	f, err := format.ParseJSON([]byte(doc), colorQuery)
	require.NoError(t, err)

	c := &format.Compiler{Rand: rand.New(rand.NewSource(5))}
	res, err := c.Compile(f, makePool(100), 3)
	require.NoError(t, err)
	for _, seat := range res.InitialState {
		assert.Equal(t, []string{"W"}, res.Cards[seat[0].Cards[0]].Colors)
		assert.Equal(t, []string{"U"}, res.Cards[seat[0].Cards[1]].Colors)
		assert.Equal(t, []string{"G"}, res.Cards[seat[1].Cards[0]].Colors)
		assert.Equal(t, []string{"R"}, res.Cards[seat[1].Cards[1]].Colors)
	}
}
