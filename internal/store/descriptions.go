package store

import (
	"context"
	"fmt"
	"strings"
)

// SetDescription attaches text to a slice, replacing any previous text.
// Empty (or whitespace-only) text removes the description.
func (s *Store) SetDescription(ctx context.Context, sliceID int64, text string) error {
	if err := setDescription(ctx, s.db, sliceID, text); err != nil {
		return storageErr("set description", err)
	}
	return nil
}

// UpdateSliceDescription is SetDescription for an existing slice, checked
// inside one transaction. Returns ErrNotFound for an unknown slice.
func (s *Store) UpdateSliceDescription(ctx context.Context, sliceID int64, text string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("update description: begin tx", err)
	}
	defer tx.Rollback()

	exists, err := sliceExists(ctx, tx, sliceID)
	if err != nil {
		return storageErr("update description", err)
	}
	if !exists {
		return fmt.Errorf("update description %d: %w", sliceID, ErrNotFound)
	}

	if err := setDescription(ctx, tx, sliceID, text); err != nil {
		return storageErr("update description", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("update description: commit", err)
	}
	return nil
}

// DescriptionsBySlice returns every stored description keyed by slice ID.
func (s *Store) DescriptionsBySlice(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time_slice_id, description FROM time_slice_descriptions
	`)
	if err != nil {
		return nil, storageErr("query descriptions", err)
	}
	defer rows.Close()

	bySlice := make(map[int64]string)
	for rows.Next() {
		var (
			sliceID int64
			text    string
		)
		if err := rows.Scan(&sliceID, &text); err != nil {
			return nil, storageErr("scan description", err)
		}
		bySlice[sliceID] = text
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate descriptions", err)
	}
	return bySlice, nil
}

func setDescription(ctx context.Context, q queryer, sliceID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		_, err := q.ExecContext(ctx, `DELETE FROM time_slice_descriptions WHERE time_slice_id = ?`, sliceID)
		return err
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO time_slice_descriptions (time_slice_id, description) VALUES (?, ?)
		ON CONFLICT(time_slice_id) DO UPDATE SET description = excluded.description
	`, sliceID, text)
	return err
}
