package director

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/malexanderboyd/pwr9-cubeflow/internal"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/format"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

var colorPairs = []game.ColorPair{
	{"W", "U"}, {"U", "B"}, {"B", "R"}, {"R", "G"}, {"G", "W"},
	{"W", "B"}, {"U", "R"}, {"B", "G"}, {"R", "W"}, {"G", "U"},
}

type DraftOptions struct {
	Format game.DraftFormat
	Pool   []game.Card
	Seats  int
	// Owner is the human drafter in seat 0.
	Owner string
	// Multiples lets a card be dealt more than once.
	Multiples bool
	Rand      *rand.Rand
}

// NewDraft deals a draft with the human in seat 0 and bots elsewhere. The
// returned warnings name filters that matched nothing and were skipped.
func NewDraft(opts DraftOptions) (*game.Draft, []string, error) {
	logger := internal.GetLogger()
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Seats < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 seats, have %d", game.ErrInvalidDraft, opts.Seats)
	}

	compiler := &format.Compiler{Rand: rng, DuplicatesAllowed: opts.Multiples}
	res, err := compiler.Compile(opts.Format, opts.Pool, opts.Seats)
	if err != nil {
		return nil, nil, fmt.Errorf("deal packs: %w", err)
	}

	draft := &game.Draft{
		ID:           uuid.New().String(),
		Cards:        res.Cards,
		InitialState: res.InitialState,
		Seats:        make([]game.Seat, opts.Seats),
		Bots:         botColors(opts.Seats-1, rng),
	}
	for i := range draft.Seats {
		draft.Seats[i] = game.Seat{
			Bot:        i != 0,
			PickOrder:  []game.CardRef{},
			TrashOrder: []game.CardRef{},
		}
		if i == 0 {
			draft.Seats[i].Owner = opts.Owner
		} else {
			draft.Seats[i].Owner = fmt.Sprintf("Bot %d", i)
		}
	}
	if err := draft.Validate(); err != nil {
		return nil, nil, err
	}
	logger.Infow("created draft", "draft", draft.ID, "seats", opts.Seats, "cards", len(draft.Cards), "warnings", len(res.Warnings))
	return draft, res.Warnings, nil
}

func botColors(n int, rng *rand.Rand) []game.ColorPair {
	order := rng.Perm(len(colorPairs))
	bots := make([]game.ColorPair, n)
	for i := range bots {
		bots[i] = append(game.ColorPair{}, colorPairs[order[i%len(order)]]...)
	}
	return bots
}
