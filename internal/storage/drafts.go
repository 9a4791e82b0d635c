package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
)

var ErrNotFound = errors.New("draft not found")

// DraftRepository stores each draft as one JSON document keyed by id.
type DraftRepository struct {
	db *sql.DB
}

func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Put inserts or replaces the draft.
func (r *DraftRepository) Put(ctx context.Context, draft *game.Draft) error {
	if draft.ID == "" {
		return fmt.Errorf("draft id cannot be empty")
	}
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	query := `
		INSERT INTO drafts (id, complete, pack_number, pick_number, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			complete = excluded.complete,
			pack_number = excluded.pack_number,
			pick_number = excluded.pick_number,
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		draft.ID,
		draft.Complete,
		draft.PackNumber,
		draft.PickNumber,
		string(data),
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save draft %s: %w", draft.ID, err)
	}
	return nil
}

// GetByID returns ErrNotFound when no draft has the id.
func (r *DraftRepository) GetByID(ctx context.Context, id string) (*game.Draft, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM drafts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", id, err)
	}
	return decodeDraft(data)
}

// BatchGet returns the drafts that exist among ids, in id order.
func (r *DraftRepository) BatchGet(ctx context.Context, ids []string) ([]*game.Draft, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT data FROM drafts WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch load drafts: %w", err)
	}
	defer rows.Close()
	return scanDrafts(rows)
}

// Scan pages through drafts in id order. cursor is the last id of the
// previous page; next is empty after the final page.
func (r *DraftRepository) Scan(ctx context.Context, limit int, cursor string) ([]*game.Draft, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM drafts WHERE id > ? ORDER BY id LIMIT ?`, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("scan drafts: %w", err)
	}
	defer rows.Close()

	drafts, err := scanDrafts(rows)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(drafts) == limit {
		next = drafts[len(drafts)-1].ID
	}
	return drafts, next, nil
}

// Count returns the number of stored drafts.
func (r *DraftRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return n, nil
}

func scanDrafts(rows *sql.Rows) ([]*game.Draft, error) {
	var drafts []*game.Draft
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan draft row: %w", err)
		}
		d, err := decodeDraft(data)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func decodeDraft(data string) (*game.Draft, error) {
	var d game.Draft
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}
