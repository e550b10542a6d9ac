package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/akashic/internal/clock"
)

// InsertSlice writes a single slice and returns its autoincrement ID.
// A zero end inserts an open slice; only one open slice may exist.
func (s *Store) InsertSlice(ctx context.Context, start, end time.Time) (int64, error) {
	if err := validateInterval(start, end); err != nil {
		return 0, err
	}

	id, err := insertSlice(ctx, s.db, start, end)
	if err != nil {
		return 0, storageErr("insert slice", err)
	}
	return id, nil
}

// Slice retrieves a single slice by ID.
// Returns ErrNotFound if no such slice exists.
func (s *Store) Slice(ctx context.Context, id int64) (Slice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time
		FROM time_slices
		WHERE id = ?
	`, id)

	slice, err := scanSlice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Slice{}, fmt.Errorf("slice %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Slice{}, storageErr("read slice", err)
	}
	return slice, nil
}

// RemoveSlice deletes a slice. Its tag associations and description are
// removed by ON DELETE CASCADE.
// Returns ErrNotFound if no such slice exists; nothing is changed in that case.
func (s *Store) RemoveSlice(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM time_slices WHERE id = ?`, id)
	if err != nil {
		return storageErr("remove slice", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return storageErr("remove slice: rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("remove slice %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateSlice rewrites the start and end of an existing slice.
// Returns ErrNotFound for an unknown ID and ErrInvalidSlice when the new
// interval is not well-formed.
func (s *Store) UpdateSlice(ctx context.Context, slice Slice) error {
	if err := validateInterval(slice.Start, slice.End); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE time_slices SET start_time = ?, end_time = ? WHERE id = ?
	`, slice.Start.UnixMilli(), nullableMillis(slice.End), slice.ID)
	if err != nil {
		return storageErr("update slice", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return storageErr("update slice: rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("update slice %d: %w", slice.ID, ErrNotFound)
	}
	return nil
}

// AllSlices returns every slice ordered by start time, then ID.
// Returns an empty slice (not nil) when the ledger is empty.
func (s *Store) AllSlices(ctx context.Context) ([]Slice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_time, end_time
		FROM time_slices
		ORDER BY start_time ASC, id ASC
	`)
	if err != nil {
		return nil, storageErr("query slices", err)
	}
	defer rows.Close()

	slices := []Slice{}
	for rows.Next() {
		slice, err := scanSlice(rows)
		if err != nil {
			return nil, storageErr("scan slice", err)
		}
		slices = append(slices, slice)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate slices", err)
	}

	return slices, nil
}

func insertSlice(ctx context.Context, q queryer, start, end time.Time) (int64, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO time_slices (start_time, end_time) VALUES (?, ?)
	`, start.UnixMilli(), nullableMillis(end))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// sliceExists reports whether a slice row with id exists.
func sliceExists(ctx context.Context, q queryer, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM time_slices WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidSlice)
	}
	if !end.IsZero() && end.UnixMilli() <= start.UnixMilli() {
		return fmt.Errorf("%w: start=%d end=%d", ErrInvalidSlice, start.UnixMilli(), end.UnixMilli())
	}
	return nil
}

func nullableMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlice(row rowScanner) (Slice, error) {
	var (
		slice Slice
		start int64
		end   sql.NullInt64
	)
	if err := row.Scan(&slice.ID, &start, &end); err != nil {
		return Slice{}, err
	}
	slice.Start = clock.FromMillis(start)
	if end.Valid {
		slice.End = clock.FromMillis(end.Int64)
	}
	return slice, nil
}
