package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTagName canonicalises a tag name before it reaches the registry.
//
// Surrounding whitespace and a single leading '#' are removed and the result
// is NFC-normalised, so visually identical names written with different
// Unicode compositions resolve to the same tag.
//
// Returns ErrInvalidTag if nothing is left.
func NormalizeTagName(name string) (string, error) {
	n := strings.TrimSpace(name)
	n = strings.TrimPrefix(n, "#")
	n = strings.TrimSpace(norm.NFC.String(n))
	if n == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, name)
	}
	return n, nil
}

// FindOrCreateTag returns the tag with the given name, creating it if needed.
//
// Idempotent: concurrent callers with the same name get the same ID. The
// UNIQUE constraint on tags.name plus ON CONFLICT DO NOTHING claims the row
// atomically; there is no read-then-write window.
func (s *Store) FindOrCreateTag(ctx context.Context, name string) (Tag, error) {
	n, err := NormalizeTagName(name)
	if err != nil {
		return Tag{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Tag{}, storageErr("find or create tag: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	tag, err := findOrCreateTag(ctx, tx, n)
	if err != nil {
		return Tag{}, storageErr("find or create tag", err)
	}

	if err := tx.Commit(); err != nil {
		return Tag{}, storageErr("find or create tag: commit", err)
	}
	return tag, nil
}

// SetTagColor sets the display colour of a tag, creating the tag if needed.
// An empty colour clears the hint.
func (s *Store) SetTagColor(ctx context.Context, name, color string) (Tag, error) {
	n, err := NormalizeTagName(name)
	if err != nil {
		return Tag{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Tag{}, storageErr("set tag color: begin tx", err)
	}
	defer tx.Rollback()

	tag, err := findOrCreateTag(ctx, tx, n)
	if err != nil {
		return Tag{}, storageErr("set tag color", err)
	}

	color = strings.TrimSpace(color)
	if _, err := tx.ExecContext(ctx, `UPDATE tags SET color = ? WHERE id = ?`, nullableString(color), tag.ID); err != nil {
		return Tag{}, storageErr("set tag color", err)
	}

	if err := tx.Commit(); err != nil {
		return Tag{}, storageErr("set tag color: commit", err)
	}

	tag.Color = color
	return tag, nil
}

// AssociateTags links tags to a slice. Duplicate pairs are ignored.
func (s *Store) AssociateTags(ctx context.Context, sliceID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("associate tags: begin tx", err)
	}
	defer tx.Rollback()

	if err := associateTags(ctx, tx, sliceID, tagIDs); err != nil {
		return storageErr("associate tags", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("associate tags: commit", err)
	}
	return nil
}

// UpdateSliceTags replaces the tag set of a slice in one transaction.
// Names are normalised and found or created; an invalid name aborts the
// update with ErrInvalidTag before anything is written.
// Returns ErrNotFound for an unknown slice.
func (s *Store) UpdateSliceTags(ctx context.Context, sliceID int64, names []string) error {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		n, err := NormalizeTagName(name)
		if err != nil {
			return err
		}
		normalized = append(normalized, n)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("update slice tags: begin tx", err)
	}
	defer tx.Rollback()

	exists, err := sliceExists(ctx, tx, sliceID)
	if err != nil {
		return storageErr("update slice tags", err)
	}
	if !exists {
		return fmt.Errorf("update slice tags %d: %w", sliceID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slice_tags WHERE time_slice_id = ?`, sliceID); err != nil {
		return storageErr("update slice tags: clear", err)
	}

	tagIDs := make([]int64, 0, len(normalized))
	for _, n := range normalized {
		tag, err := findOrCreateTag(ctx, tx, n)
		if err != nil {
			return storageErr("update slice tags", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := associateTags(ctx, tx, sliceID, tagIDs); err != nil {
		return storageErr("update slice tags", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("update slice tags: commit", err)
	}
	return nil
}

// AllTags returns every registered tag ordered by name.
func (s *Store) AllTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color FROM tags ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, storageErr("query tags", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, storageErr("scan tag", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate tags", err)
	}
	return tags, nil
}

// TagsBySlice returns the tags of every tagged slice, keyed by slice ID.
// Each slice's tags are ordered by name. Untagged slices have no entry.
func (s *Store) TagsBySlice(ctx context.Context) (map[int64][]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT st.time_slice_id, t.id, t.name, t.color
		FROM time_slice_tags st
		JOIN tags t ON t.id = st.tag_id
		ORDER BY st.time_slice_id ASC, t.name ASC
	`)
	if err != nil {
		return nil, storageErr("query slice tags", err)
	}
	defer rows.Close()

	bySlice := make(map[int64][]Tag)
	for rows.Next() {
		var (
			sliceID int64
			tag     Tag
			color   sql.NullString
		)
		if err := rows.Scan(&sliceID, &tag.ID, &tag.Name, &color); err != nil {
			return nil, storageErr("scan slice tag", err)
		}
		tag.Color = color.String
		bySlice[sliceID] = append(bySlice[sliceID], tag)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate slice tags", err)
	}
	return bySlice, nil
}

func findOrCreateTag(ctx context.Context, q queryer, name string) (Tag, error) {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO tags (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return Tag{}, fmt.Errorf("insert tag %q: %w", name, err)
	}

	row := q.QueryRowContext(ctx, `SELECT id, name, color FROM tags WHERE name = ?`, name)
	tag, err := scanTag(row)
	if err != nil {
		return Tag{}, fmt.Errorf("select tag %q: %w", name, err)
	}
	return tag, nil
}

func associateTags(ctx context.Context, q queryer, sliceID int64, tagIDs []int64) error {
	ids := dedupeIDs(tagIDs)
	for _, tagID := range ids {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO time_slice_tags (time_slice_id, tag_id) VALUES (?, ?)
			ON CONFLICT(time_slice_id, tag_id) DO NOTHING
		`, sliceID, tagID); err != nil {
			return fmt.Errorf("link tag %d to slice %d: %w", tagID, sliceID, err)
		}
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func scanTag(row rowScanner) (Tag, error) {
	var (
		tag   Tag
		color sql.NullString
	)
	if err := row.Scan(&tag.ID, &tag.Name, &color); err != nil {
		return Tag{}, err
	}
	tag.Color = color.String
	return tag, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
