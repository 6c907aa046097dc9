package storage

import (
	"context"
	"errors"

	"github.com/matrix-org/postguard/config"
)

var ErrUnknownCategory = errors.New("unknown keyword category")

type StoredKeywordList struct {
	Category string   `json:"category"` // a config.KeywordFieldNames value
	Entries  []string `json:"entries"`
}

type PersistentStorage interface {
	Close() error

	GetAllKeywordLists(ctx context.Context) ([]*StoredKeywordList, error)
	GetKeywordList(ctx context.Context, category string) (*StoredKeywordList, error)
	UpsertKeywordList(ctx context.Context, list *StoredKeywordList) error

	// ReplaceKeywordLists - atomically replaces every stored keyword list with the lists of the given document.
	ReplaceKeywordLists(ctx context.Context, doc *config.KeywordDocument) error
}

// KeywordDocumentFromLists - assembles a keyword document from stored lists. Categories without a stored list
// are left missing, so config.KeywordDocument.Validate reports them.
func KeywordDocumentFromLists(lists []*StoredKeywordList) (*config.KeywordDocument, error) {
	doc := &config.KeywordDocument{}
	for _, l := range lists {
		entries := l.Entries
		if entries == nil {
			entries = make([]string, 0)
		}
		if err := doc.SetField(l.Category, entries); err != nil {
			return nil, errors.Join(ErrUnknownCategory, err)
		}
	}
	return doc, nil
}

// ListsFromKeywordDocument - the inverse of KeywordDocumentFromLists. Missing fields are skipped.
func ListsFromKeywordDocument(doc *config.KeywordDocument) []*StoredKeywordList {
	lists := make([]*StoredKeywordList, 0, len(config.KeywordFieldNames))
	fields := doc.Fields()
	for _, name := range config.KeywordFieldNames {
		if fields[name] == nil {
			continue
		}
		lists = append(lists, &StoredKeywordList{
			Category: name,
			Entries:  *fields[name],
		})
	}
	return lists
}
