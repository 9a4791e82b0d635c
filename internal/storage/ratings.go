package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

// RatingRepository stores the pick rating of each card name.
type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Save upserts ratings in a single transaction.
func (r *RatingRepository) Save(ctx context.Context, ratings game.Ratings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ratings transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO card_ratings (name, rating, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare rating upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for name, rating := range ratings {
		if _, err := stmt.ExecContext(ctx, name, rating, now); err != nil {
			return fmt.Errorf("save rating for %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// Load returns the ratings known for names. Unknown names are absent from
// the result.
func (r *RatingRepository) Load(ctx context.Context, names []string) (game.Ratings, error) {
	ratings := game.Ratings{}
	if len(names) == 0 {
		return ratings, nil
	}
	seen := make(map[string]bool, len(names))
	args := make([]interface{}, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			args = append(args, n)
		}
	}
	query := `SELECT name, rating FROM card_ratings WHERE name IN (?` + strings.Repeat(", ?", len(args)-1) + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var rating float64
		if err := rows.Scan(&name, &rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings[name] = rating
	}
	return ratings, rows.Err()
}

// ForDraft loads the ratings of every card in the draft.
func (r *RatingRepository) ForDraft(ctx context.Context, draft *game.Draft) (game.Ratings, error) {
	names := make([]string, len(draft.Cards))
	for i, c := range draft.Cards {
		names[i] = c.Name
	}
	return r.Load(ctx, names)
}
