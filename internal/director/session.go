package director

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/malexanderboyd/pwr9-cubeflow/internal"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/packflow"
)

var (
	ErrDraftComplete    = errors.New("draft is complete")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrEmptyPack        = errors.New("pack is empty")
)

// DraftStore persists a draft after every change.
type DraftStore interface {
	Put(ctx context.Context, draft *game.Draft) error
}

// PickRecord is what a seat saw and chose at one step of a live draft.
type PickRecord struct {
	Pack        int
	Pick        int
	Action      game.Action
	CardsInPack []game.CardRef
	Selection   game.CardRef
}

// PackView is the pack a seat currently holds.
type PackView struct {
	PackNumber int            `json:"packNumber"`
	PickNumber int            `json:"pickNumber"`
	Action     game.Action    `json:"action"`
	Refs       []game.CardRef `json:"refs"`
	Cards      []game.Card    `json:"cards"`
}

// Session runs one live draft: seat 0 is the human, every other seat is a
// bot that resolves the same step right after the human does.
type Session struct {
	draft   *game.Draft
	store   DraftStore
	ratings game.RatingProvider
	rng     *rand.Rand

	steps  []game.FlattenedStep
	cursor int
	// packs is indexed [seat][pack queue][card]; the head of each queue is
	// the pack the seat holds now.
	packs   [][][]game.CardRef
	history [][]PickRecord
}

// NewSession prepares a session for a dealt draft. Picks already recorded
// on the draft are applied again so a stored draft resumes where it
// stopped.
func NewSession(draft *game.Draft, store DraftStore, ratings game.RatingProvider, rng *rand.Rand) (*Session, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	for i := 1; i < len(draft.Seats); i++ {
		if !draft.Seats[i].Bot {
			return nil, fmt.Errorf("%w: seat %d is not a bot, only seat 0 may be human", game.ErrInvalidDraft, i)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{
		draft:   draft,
		store:   store,
		ratings: ratings,
		rng:     rng,
		steps:   packflow.StepList(draft.InitialState),
		packs:   make([][][]game.CardRef, len(draft.Seats)),
		history: make([][]PickRecord, len(draft.Seats)),
	}
	for seat, dealt := range draft.InitialState {
		s.packs[seat] = make([][]game.CardRef, len(dealt))
		for p, ps := range dealt {
			s.packs[seat][p] = append([]game.CardRef{}, ps.Cards...)
		}
	}
	s.cursor = -1
	s.passPack()
	if err := s.resume(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Draft() *game.Draft {
	return s.draft
}

// History returns what each seat saw and chose, in order.
func (s *Session) History(seat int) []PickRecord {
	if seat < 0 || seat >= len(s.history) {
		return nil
	}
	return s.history[seat]
}

func (s *Session) Done() bool {
	return s.cursor >= len(s.steps)
}

// CurrentPack describes the pack seat holds and the action it owes.
func (s *Session) CurrentPack(seat int) PackView {
	view := PackView{PackNumber: s.draft.PackNumber, PickNumber: s.draft.PickNumber}
	if s.Done() || seat < 0 || seat >= len(s.packs) || len(s.packs[seat]) == 0 {
		return view
	}
	view.Action = s.steps[s.cursor].Action
	view.Refs = append([]game.CardRef{}, s.packs[seat][0]...)
	for _, ref := range view.Refs {
		if s.draft.ValidRef(ref) {
			view.Cards = append(view.Cards, s.draft.Cards[ref])
		}
	}
	return view
}

// ApplyPick resolves the current step: the human takes the card at
// cardIndex of their pack (ignored for random steps), every bot takes its
// card, and the packs move on. The draft is persisted afterwards.
func (s *Session) ApplyPick(ctx context.Context, cardIndex int) error {
	if s.Done() || s.draft.Complete {
		return ErrDraftComplete
	}
	step := s.steps[s.cursor]
	pack := s.packs[0][0]
	if len(pack) == 0 {
		return ErrEmptyPack
	}
	if step.Action.IsRandom() {
		cardIndex = s.rng.Intn(len(pack))
	} else if cardIndex < 0 || cardIndex >= len(pack) {
		return fmt.Errorf("%w: %d not in pack of %d", ErrInvalidCardIndex, cardIndex, len(pack))
	}

	s.take(0, step, cardIndex)
	s.botPicks(step)
	s.passPack()

	if s.Done() {
		return s.Finish(ctx)
	}
	return s.persist(ctx)
}

func (s *Session) take(seat int, step game.FlattenedStep, index int) game.CardRef {
	pack := s.packs[seat][0]
	ref := pack[index]
	s.history[seat] = append(s.history[seat], PickRecord{
		Pack:        step.Pack,
		Pick:        step.Pick,
		Action:      step.Action,
		CardsInPack: append([]game.CardRef{}, pack...),
		Selection:   ref,
	})
	s.packs[seat][0] = append(pack[:index], pack[index+1:]...)

	st := &s.draft.Seats[seat]
	if step.Action.IsTrash() {
		st.TrashOrder = append(st.TrashOrder, ref)
	} else {
		st.PickOrder = append(st.PickOrder, ref)
	}
	return ref
}

// botPicks resolves the step for every bot seat.
func (s *Session) botPicks(step game.FlattenedStep) {
	for seat := 1; seat < len(s.packs); seat++ {
		pack := s.packs[seat][0]
		idx := botChoice(s.draft.BotColors(seat), step.Action, pack, s.draft.Cards, s.ratings, s.rng)
		if idx < 0 {
			continue
		}
		s.take(seat, step, idx)
	}
}

// passPack moves the cursor to the next step that needs a card, rotating
// packs on passes and opening the next pack at each pack boundary.
func (s *Session) passPack() {
	logger := internal.GetLogger()
	for s.cursor++; s.cursor < len(s.steps); s.cursor++ {
		step := s.steps[s.cursor]
		switch step.Action {
		case game.Pass:
			// A pass before the pack's first pick moves nothing: every
			// pack opens in the seat it was dealt to.
			if step.Pick > 0 {
				s.rotate(step.Pack)
			}
		case game.EndPack:
			s.draft.PackNumber = step.Pack
			for seat := range s.packs {
				if len(s.packs[seat]) == 0 {
					continue
				}
				if left := len(s.packs[seat][0]); left > 0 {
					logger.Debugw("discarding leftover cards", "draft", s.draft.ID, "seat", seat, "cards", left)
				}
				s.packs[seat] = s.packs[seat][1:]
			}
		default:
			s.draft.PickNumber = step.Pick
			return
		}
	}
}

func (s *Session) rotate(pack int) {
	heads := make([][]game.CardRef, len(s.packs))
	for seat := range s.packs {
		heads[seat] = s.packs[seat][0]
	}
	for seat, p := range packflow.RotatePacks(heads, pack) {
		s.packs[seat][0] = p
	}
}

// Finish strips catalog details, files every pick to the sideboard and
// persists the completed draft.
func (s *Session) Finish(ctx context.Context) error {
	logger := internal.GetLogger()
	for i := range s.draft.Cards {
		s.draft.Cards[i].Details = nil
	}
	for i := range s.draft.Seats {
		seat := &s.draft.Seats[i]
		seat.Mainboard = []game.CardRef{}
		seat.Sideboard = append([]game.CardRef{}, seat.PickOrder...)
	}
	s.draft.Complete = true
	s.cursor = len(s.steps)
	logger.Infow("draft finished", "draft", s.draft.ID, "picks", len(s.draft.Seats[0].PickOrder))
	return s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Put(ctx, s.draft); err != nil {
		return fmt.Errorf("persist draft %s: %w", s.draft.ID, err)
	}
	return nil
}

// resume replays orders already recorded on the draft.
func (s *Session) resume() error {
	if s.draft.Complete {
		s.cursor = len(s.steps)
		return nil
	}
	picks := make([][]game.CardRef, len(s.draft.Seats))
	trashes := make([][]game.CardRef, len(s.draft.Seats))
	for i := range s.draft.Seats {
		picks[i] = s.draft.Seats[i].PickOrder
		trashes[i] = s.draft.Seats[i].TrashOrder
		s.draft.Seats[i].PickOrder = []game.CardRef{}
		s.draft.Seats[i].TrashOrder = []game.CardRef{}
	}
	recorded := func(seat int) int { return len(picks[seat]) + len(trashes[seat]) }
	pos := func(seat int) int { return len(s.draft.Seats[seat].PickOrder) + len(s.draft.Seats[seat].TrashOrder) }

	for !s.Done() && pos(0) < recorded(0) {
		step := s.steps[s.cursor]
		for seat := range s.packs {
			order := picks[seat]
			done := len(s.draft.Seats[seat].PickOrder)
			if step.Action.IsTrash() {
				order = trashes[seat]
				done = len(s.draft.Seats[seat].TrashOrder)
			}
			if done >= len(order) {
				return fmt.Errorf("%w: seat %d ran out of recorded cards", game.ErrInvalidDraft, seat)
			}
			idx := indexOf(s.packs[seat][0], order[done])
			if idx < 0 {
				return fmt.Errorf("%w: seat %d recorded card %d is not in its pack", game.ErrInvalidDraft, seat, order[done])
			}
			s.take(seat, step, idx)
		}
		s.passPack()
	}
	return nil
}

func indexOf(pack []game.CardRef, ref game.CardRef) int {
	for i, r := range pack {
		if r == ref {
			return i
		}
	}
	return -1
}
