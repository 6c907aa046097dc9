package test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/storage"
	"github.com/stretchr/testify/assert"
)

var SimulatedError = errors.New("simulated error")

// ErrorCategory - Reading this keyword category from a MemoryStorage returns SimulatedError.
const ErrorCategory = "$ERROR"

type MemoryStorage struct {
	t            *testing.T
	lock         sync.Mutex
	keywordLists map[string]*storage.StoredKeywordList
	failAll      bool
}

func NewMemoryStorage(t *testing.T) *MemoryStorage {
	return &MemoryStorage{
		t:            t,
		keywordLists: make(map[string]*storage.StoredKeywordList),
	}
}

// NewMemoryStorageWithDocument - Creates a MemoryStorage seeded with the lists of the given document.
func NewMemoryStorageWithDocument(t *testing.T, doc *config.KeywordDocument) *MemoryStorage {
	m := NewMemoryStorage(t)
	assert.NoError(t, m.ReplaceKeywordLists(context.Background(), doc))
	return m
}

// SetFailAll - When true, every call returns SimulatedError.
func (m *MemoryStorage) SetFailAll(fail bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.failAll = fail
}

func (m *MemoryStorage) Close() error {
	// no-op
	return nil
}

func (m *MemoryStorage) GetAllKeywordLists(ctx context.Context) ([]*storage.StoredKeywordList, error) {
	assert.NotNil(m.t, ctx, "context is required")

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.failAll {
		return nil, SimulatedError
	}

	lists := make([]*storage.StoredKeywordList, 0, len(m.keywordLists))
	for _, list := range m.keywordLists {
		lists = append(lists, cloneList(list))
	}
	slices.SortFunc(lists, func(a, b *storage.StoredKeywordList) int {
		return slices.Index(config.KeywordFieldNames, a.Category) - slices.Index(config.KeywordFieldNames, b.Category)
	})
	return lists, nil
}

func (m *MemoryStorage) GetKeywordList(ctx context.Context, category string) (*storage.StoredKeywordList, error) {
	assert.NotNil(m.t, ctx, "context is required")

	if category == ErrorCategory {
		return nil, SimulatedError
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.failAll {
		return nil, SimulatedError
	}

	list, ok := m.keywordLists[category]
	if !ok {
		return nil, nil
	}
	return cloneList(list), nil
}

func (m *MemoryStorage) UpsertKeywordList(ctx context.Context, list *storage.StoredKeywordList) error {
	assert.NotNil(m.t, ctx, "context is required")

	if !slices.Contains(config.KeywordFieldNames, list.Category) {
		return fmt.Errorf("%w: %s", storage.ErrUnknownCategory, list.Category)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.failAll {
		return SimulatedError
	}

	m.keywordLists[list.Category] = cloneList(list)
	return nil
}

func (m *MemoryStorage) ReplaceKeywordLists(ctx context.Context, doc *config.KeywordDocument) error {
	assert.NotNil(m.t, ctx, "context is required")

	if err := doc.Validate(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.failAll {
		return SimulatedError
	}

	m.keywordLists = make(map[string]*storage.StoredKeywordList)
	for _, list := range storage.ListsFromKeywordDocument(doc) {
		m.keywordLists[list.Category] = cloneList(list)
	}
	return nil
}

func cloneList(list *storage.StoredKeywordList) *storage.StoredKeywordList {
	return &storage.StoredKeywordList{
		Category: list.Category,
		Entries:  slices.Clone(list.Entries),
	}
}
