package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/malexanderboyd/pwr9-cubeflow/internal"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// DraftSource pages through stored drafts. An empty next cursor ends the scan.
type DraftSource interface {
	Scan(ctx context.Context, limit int, cursor string) (drafts []*game.Draft, next string, err error)
}

// Row is one "pack as seen, card chosen" training example.
type Row struct {
	DraftID   string      `json:"draft_id"`
	Seat      int         `json:"seat"`
	Pack      int         `json:"pack"`
	Pick      int         `json:"pick"`
	Action    game.Action `json:"action"`
	PackCards []string    `json:"pack_cards"`
	Picked    []string    `json:"picked"`
	Selection string      `json:"selection"`
}

type Stats struct {
	Drafts  int64
	Rows    int64
	Skipped int64
}

type Exporter struct {
	Source      DraftSource
	Concurrency int
	PageSize    int
	// Limiter paces page fetches. Nil means unlimited.
	Limiter *rate.Limiter
	// IncludeIncomplete also exports drafts that never finished.
	IncludeIncomplete bool

	drafts  *atomic.Int64
	rows    *atomic.Int64
	skipped *atomic.Int64
}

// Run replays every draft of the source and writes one JSON line per row.
// A draft that fails is skipped and reported in the returned error; the
// batch stops only on a write failure or when ctx is done.
func (e *Exporter) Run(ctx context.Context, w io.Writer) (Stats, error) {
	logger := internal.GetLogger()
	e.drafts, e.rows, e.skipped = atomic.NewInt64(0), atomic.NewInt64(0), atomic.NewInt64(0)

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	pageSize := e.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var (
		mu       sync.Mutex
		failures error
	)
	enc := json.NewEncoder(w)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	cursor := ""
	for {
		if e.Limiter != nil {
			if err := e.Limiter.Wait(gctx); err != nil {
				break
			}
		}
		page, next, err := e.Source.Scan(gctx, pageSize, cursor)
		if err != nil {
			mu.Lock()
			failures = multierr.Append(failures, fmt.Errorf("scan after %q: %w", cursor, err))
			mu.Unlock()
			break
		}
		logger.Debugw("export page", "drafts", len(page), "cursor", cursor)

		for _, draft := range page {
			if !draft.Complete && !e.IncludeIncomplete {
				e.skipped.Inc()
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rows, err := DraftRows(draft)
				if err != nil {
					e.skipped.Inc()
					mu.Lock()
					failures = multierr.Append(failures, fmt.Errorf("draft %s: %w", draft.ID, err))
					mu.Unlock()
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				for _, row := range rows {
					if err := enc.Encode(row); err != nil {
						return fmt.Errorf("write row for draft %s: %w", draft.ID, err)
					}
				}
				e.drafts.Inc()
				e.rows.Add(int64(len(rows)))
				return nil
			})
		}

		if next == "" || gctx.Err() != nil {
			break
		}
		cursor = next
	}

	err := g.Wait()
	stats := Stats{Drafts: e.drafts.Load(), Rows: e.rows.Load(), Skipped: e.skipped.Load()}
	if err == nil {
		err = ctx.Err()
	}
	logger.Infow("export finished", "drafts", stats.Drafts, "rows", stats.Rows, "skipped", stats.Skipped)
	return stats, multierr.Append(err, failures)
}

// DraftRows replays every pick of every seat of one draft.
func DraftRows(draft *game.Draft) ([]Row, error) {
	if len(draft.InitialState) == 0 {
		return nil, fmt.Errorf("draft has no dealt packs")
	}
	var rows []Row
	for seat := range draft.Seats {
		total := len(draft.Seats[seat].PickOrder) + len(draft.Seats[seat].TrashOrder)
		for p := 0; p < total; p++ {
			st := GetDrafterState(draft, seat, p)
			if st.Resolved() <= p {
				// The rest of this seat's order references cards the
				// dealt packs no longer explain.
				break
			}
			prior := st.Picked
			if st.Action.IsPick() {
				prior = prior[:len(prior)-1]
			}
			rows = append(rows, Row{
				DraftID:   draft.ID,
				Seat:      seat,
				Pack:      st.Pack,
				Pick:      st.Pick,
				Action:    st.Action,
				PackCards: names(draft, st.CardsInPack),
				Picked:    names(draft, prior),
				Selection: draft.CardName(st.Selection),
			})
		}
	}
	return rows, nil
}

func names(draft *game.Draft, refs []game.CardRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if draft.ValidRef(ref) {
			out = append(out, draft.CardName(ref))
		}
	}
	return out
}
