package store

import (
	"context"
)

// InsertSliceWithContext persists a stopped timer: the slice row, its tag
// associations and its description, in a single transaction.
//
// Either everything is written or nothing is. If linking a tag fails after
// the slice row was inserted (for example a tag ID that no longer exists),
// the transaction is rolled back and no orphan slice remains.
//
// Tags are linked whether or not a description is present.
func (s *Store) InsertSliceWithContext(ctx context.Context, sc SliceContext) (int64, error) {
	if err := validateInterval(sc.Start, sc.End); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("insert slice with context: begin tx", err)
	}
	defer tx.Rollback()

	id, err := insertSlice(ctx, tx, sc.Start, sc.End)
	if err != nil {
		return 0, storageErr("insert slice with context: insert slice", err)
	}

	if err := associateTags(ctx, tx, id, sc.TagIDs); err != nil {
		return 0, storageErr("insert slice with context: associate tags", err)
	}

	if err := setDescription(ctx, tx, id, sc.Description); err != nil {
		return 0, storageErr("insert slice with context: set description", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("insert slice with context: commit", err)
	}
	return id, nil
}
