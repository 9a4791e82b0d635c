package game

type Action string

const (
	Pick        Action = "pick"
	Trash       Action = "trash"
	PickRandom  Action = "pickrandom"
	TrashRandom Action = "trashrandom"
	Pass        Action = "pass"
	// EndPack never appears in a format; the step list inserts it after each pack.
	EndPack Action = "endpack"
)

// IsPick reports whether the action adds a card to the seat's pick order.
func (a Action) IsPick() bool {
	return a == Pick || a == PickRandom
}

// IsTrash reports whether the action adds a card to the seat's trash order.
func (a Action) IsTrash() bool {
	return a == Trash || a == TrashRandom
}

// IsRandom reports whether the server chooses the card instead of the drafter.
func (a Action) IsRandom() bool {
	return a == PickRandom || a == TrashRandom
}

// Resolves reports whether the action consumes a card from the pack.
func (a Action) Resolves() bool {
	return a.IsPick() || a.IsTrash()
}

func (a Action) Valid() bool {
	switch a {
	case Pick, Trash, PickRandom, TrashRandom, Pass:
		return true
	}
	return false
}

type Step struct {
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Count is the number of unit actions in the batch.
func (s Step) Count() int {
	if s.Amount <= 0 {
		return 1
	}
	return s.Amount
}

type FlattenedStep struct {
	Action      Action `json:"action"`
	Pack        int    `json:"pack"`
	Pick        int    `json:"pick"`
	CardsInPack int    `json:"cardsInPack"`
}

type SlotSpec struct {
	// Filters is a fallback chain of alternatives. An empty chain or a nil
	// entry matches every card.
	Filters           []Filter `json:"-"`
	Text              []string `json:"filters"`
	DuplicatesAllowed bool     `json:"duplicatesAllowed"`
}

type PackSpec struct {
	Slots []SlotSpec `json:"slots"`
	Steps []Step     `json:"steps"`
}

type DraftFormat struct {
	Title     string     `json:"title"`
	Packs     []PackSpec `json:"packs"`
	Multiples bool       `json:"multiples"`
	// Custom is false for a standard draft, where every slot draws the next
	// card of a shuffled pool and filters are ignored.
	Custom bool `json:"custom"`
}

// Normalize strips trailing passes from every explicit step list.
func (f *DraftFormat) Normalize() {
	for i := range f.Packs {
		f.Packs[i].Steps = StripTrailingPasses(f.Packs[i].Steps)
	}
}

func StripTrailingPasses(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	end := len(steps)
	for end > 0 && steps[end-1].Action == Pass {
		end--
	}
	return steps[:end]
}

// ResolvedCards is the number of cards a step list takes out of a pack.
func ResolvedCards(steps []Step) int {
	n := 0
	for _, s := range steps {
		if s.Action != Pass {
			n += s.Count()
		}
	}
	return n
}

// SlotCount is the number of cards dealt per seat over the whole format.
func (f DraftFormat) SlotCount() int {
	total := 0
	for _, p := range f.Packs {
		total += len(p.Slots)
	}
	return total
}
