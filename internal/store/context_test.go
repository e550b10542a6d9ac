package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSliceWithContext_PersistsEverything(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a, err := s.FindOrCreateTag(ctx, "a")
	require.NoError(t, err)
	b, err := s.FindOrCreateTag(ctx, "b")
	require.NoError(t, err)

	id, err := s.InsertSliceWithContext(ctx, SliceContext{
		Start:       at(0),
		End:         at(25),
		TagIDs:      []int64{a.ID, b.ID},
		Description: "write report",
	})
	require.NoError(t, err)

	slice, err := s.Slice(ctx, id)
	require.NoError(t, err)
	assert.True(t, at(25).Equal(slice.End))

	tags, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	assert.Len(t, tags[id], 2)

	descs, err := s.DescriptionsBySlice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "write report", descs[id])
}

func TestInsertSliceWithContext_TagsWithoutDescription(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tag, err := s.FindOrCreateTag(ctx, "solo")
	require.NoError(t, err)

	id, err := s.InsertSliceWithContext(ctx, SliceContext{Start: at(0), End: at(5), TagIDs: []int64{tag.ID}})
	require.NoError(t, err)

	tags, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	require.Len(t, tags[id], 1)
	assert.Equal(t, "solo", tags[id][0].Name)
	assert.Equal(t, 0, countRows(t, s, "time_slice_descriptions"))
}

func TestInsertSliceWithContext_RollsBackOnTagFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	good, err := s.FindOrCreateTag(ctx, "good")
	require.NoError(t, err)

	// Tag 404 does not exist: linking fails after the slice row was written.
	_, err = s.InsertSliceWithContext(ctx, SliceContext{
		Start:       at(0),
		End:         at(30),
		TagIDs:      []int64{good.ID, 404},
		Description: "should vanish",
	})
	require.Error(t, err)
	assert.True(t, IsStorageError(err))

	assert.Equal(t, 0, countRows(t, s, "time_slices"), "no orphan slice")
	assert.Equal(t, 0, countRows(t, s, "time_slice_tags"))
	assert.Equal(t, 0, countRows(t, s, "time_slice_descriptions"))
}

func TestInsertSliceWithContext_RejectsInvalidInterval(t *testing.T) {
	s := createTestStore(t)

	_, err := s.InsertSliceWithContext(context.Background(), SliceContext{Start: at(10), End: at(10)})
	assert.ErrorIs(t, err, ErrInvalidSlice)
	assert.Equal(t, 0, countRows(t, s, "time_slices"))
}

func TestInsertSliceWithContext_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.InsertSliceWithContext(ctx, SliceContext{Start: at(0), End: at(1)})
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, s, "time_slices"))
}
