package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTagName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"code", "code"},
		{"  code  ", "code"},
		{"#code", "code"},
		{" #deep work ", "deep work"},
		{"学习", "学习"},
		// "e" + combining acute composes to "é"
		{"cafe\u0301", "caf\u00e9"},
	}

	for _, tc := range cases {
		got, err := NormalizeTagName(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeTagName_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "#", " # "} {
		_, err := NormalizeTagName(in)
		assert.ErrorIs(t, err, ErrInvalidTag, "input %q", in)
	}
}

func TestFindOrCreateTag_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.FindOrCreateTag(ctx, "x")
	require.NoError(t, err)
	second, err := s.FindOrCreateTag(ctx, "x")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "x", second.Name)
	assert.Equal(t, 1, countRows(t, s, "tags"))
}

func TestFindOrCreateTag_NormalisedNamesShareID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a, err := s.FindOrCreateTag(ctx, "#code")
	require.NoError(t, err)
	b, err := s.FindOrCreateTag(ctx, " code ")
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 1, countRows(t, s, "tags"))
}

func TestFindOrCreateTag_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	const goroutines = 20

	ids := make([]int64, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			tag, err := s.FindOrCreateTag(ctx, "shared")
			ids[idx], errs[idx] = tag.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, countRows(t, s, "tags"))
}

func TestFindOrCreateTag_InvalidName(t *testing.T) {
	s := createTestStore(t)

	_, err := s.FindOrCreateTag(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidTag)
	assert.Equal(t, 0, countRows(t, s, "tags"))
}

func TestSetTagColor(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tag, err := s.SetTagColor(ctx, "work", "#0ea5e9")
	require.NoError(t, err)
	assert.Equal(t, "#0ea5e9", tag.Color)

	again, err := s.FindOrCreateTag(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)
	assert.Equal(t, "#0ea5e9", again.Color)

	cleared, err := s.SetTagColor(ctx, "work", "")
	require.NoError(t, err)
	assert.Empty(t, cleared.Color)
}

func TestAllTags_OrderedByName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"study", "exercise", "work"} {
		_, err := s.FindOrCreateTag(ctx, name)
		require.NoError(t, err)
	}

	tags, err := s.AllTags(ctx)
	require.NoError(t, err)
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"exercise", "study", "work"}, names)
}

func TestAssociateTags(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.InsertSlice(ctx, at(0), at(30))
	require.NoError(t, err)
	a, err := s.FindOrCreateTag(ctx, "a")
	require.NoError(t, err)
	b, err := s.FindOrCreateTag(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, s.AssociateTags(ctx, id, []int64{a.ID, b.ID, a.ID}))
	require.NoError(t, s.AssociateTags(ctx, id, []int64{b.ID}))
	require.NoError(t, s.AssociateTags(ctx, id, nil))

	bySlice, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	require.Len(t, bySlice[id], 2)
	assert.Equal(t, "a", bySlice[id][0].Name)
	assert.Equal(t, "b", bySlice[id][1].Name)
}

func TestAssociateTags_UnknownTagFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.InsertSlice(ctx, at(0), at(30))
	require.NoError(t, err)

	err = s.AssociateTags(ctx, id, []int64{404})
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.Equal(t, 0, countRows(t, s, "time_slice_tags"))
}

func TestUpdateSliceTags_ReplacesSet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	old, err := s.FindOrCreateTag(ctx, "old")
	require.NoError(t, err)
	id, err := s.InsertSliceWithContext(ctx, SliceContext{Start: at(0), End: at(30), TagIDs: []int64{old.ID}})
	require.NoError(t, err)

	require.NoError(t, s.UpdateSliceTags(ctx, id, []string{"new", "#other"}))

	bySlice, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, tag := range bySlice[id] {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"new", "other"}, names)
}

func TestUpdateSliceTags_EmptyClears(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.InsertSlice(ctx, at(0), at(30))
	require.NoError(t, err)
	require.NoError(t, s.UpdateSliceTags(ctx, id, []string{"a"}))
	require.NoError(t, s.UpdateSliceTags(ctx, id, nil))

	bySlice, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	assert.NotContains(t, bySlice, id)
}

func TestUpdateSliceTags_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.UpdateSliceTags(ctx, 999, []string{"a"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, countRows(t, s, "tags"), "unknown slice must not create tags")

	id, err := s.InsertSlice(ctx, at(0), at(30))
	require.NoError(t, err)
	require.NoError(t, s.UpdateSliceTags(ctx, id, []string{"keep"}))

	err = s.UpdateSliceTags(ctx, id, []string{"fine", "  "})
	assert.ErrorIs(t, err, ErrInvalidTag)

	bySlice, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	require.Len(t, bySlice[id], 1)
	assert.Equal(t, "keep", bySlice[id][0].Name)
}
