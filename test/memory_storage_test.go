package test

import (
	"context"
	"testing"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/storage"
	"github.com/stretchr/testify/assert"
)

// We want to make sure our test fixture logic is accurate too

func TestMemoryStorageReturnsErrorForCategory(t *testing.T) {
	s := NewMemoryStorage(t)
	res, err := s.GetKeywordList(context.Background(), ErrorCategory)
	assert.Nil(t, res)
	assert.Equal(t, SimulatedError, err)
}

func TestMemoryStorageFailAll(t *testing.T) {
	s := NewMemoryStorageWithDocument(t, KeywordDocument())
	s.SetFailAll(true)

	_, err := s.GetAllKeywordLists(context.Background())
	assert.Equal(t, SimulatedError, err)
	err = s.ReplaceKeywordLists(context.Background(), KeywordDocument())
	assert.Equal(t, SimulatedError, err)

	s.SetFailAll(false)
	lists, err := s.GetAllKeywordLists(context.Background())
	assert.NoError(t, err)
	assert.Len(t, lists, len(config.KeywordFieldNames))
}

func TestMemoryStorageKeywordLists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorageWithDocument(t, KeywordDocument())

	lists, err := s.GetAllKeywordLists(ctx)
	assert.NoError(t, err)
	assert.Len(t, lists, len(config.KeywordFieldNames))
	for i, name := range config.KeywordFieldNames {
		assert.Equal(t, name, lists[i].Category)
	}

	err = s.UpsertKeywordList(ctx, &storage.StoredKeywordList{Category: "badwords", Entries: []string{"meanie"}})
	assert.NoError(t, err)
	list, err := s.GetKeywordList(ctx, "badwords")
	assert.NoError(t, err)
	assert.Equal(t, []string{"meanie"}, list.Entries)

	// Mutating the returned list must not change what's stored
	list.Entries[0] = "changed"
	list, err = s.GetKeywordList(ctx, "badwords")
	assert.NoError(t, err)
	assert.Equal(t, []string{"meanie"}, list.Entries)

	err = s.UpsertKeywordList(ctx, &storage.StoredKeywordList{Category: "not_a_field", Entries: []string{}})
	assert.ErrorIs(t, err, storage.ErrUnknownCategory)

	list, err = s.GetKeywordList(ctx, "not_a_field")
	assert.NoError(t, err)
	assert.Nil(t, list)
}

func TestMemoryStorageReplaceRejectsIncompleteDocument(t *testing.T) {
	s := NewMemoryStorageWithDocument(t, KeywordDocument())
	err := s.ReplaceKeywordLists(context.Background(), &config.KeywordDocument{})
	assert.ErrorIs(t, err, config.ErrMissingKeywordField)

	// The original lists survive
	lists, err := s.GetAllKeywordLists(context.Background())
	assert.NoError(t, err)
	assert.Len(t, lists, len(config.KeywordFieldNames))
}
