package keywords

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/metrics/dbmetrics"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/storage"
	"github.com/matrix-org/postguard/tokenizer"
	typedsf "github.com/t2bot/go-typed-singleflight"
)

var ErrNoStorage = errors.New("keyword storage is not configured")

const reloadKey = "reload"

// Manager - Owns the Tokenizer (and so the Lexicon) built from the configured keyword source. The Tokenizer is
// swapped wholesale on reload; callers holding the previous one keep a complete, consistent view.
type Manager struct {
	instanceConfig *config.InstanceConfig
	storage        storage.PersistentStorage
	pubsubClient   pubsub.Client
	current        atomic.Pointer[tokenizer.Tokenizer]
	sf             *typedsf.Group[*tokenizer.Tokenizer]
}

// NewManager - Loads the keyword document and builds the first Tokenizer. Any error here should be fatal.
// storage may be nil when the keyword source is a file. pubsubClient may be nil to disable reloads.
func NewManager(instanceConfig *config.InstanceConfig, storage storage.PersistentStorage, pubsubClient pubsub.Client) (*Manager, error) {
	if instanceConfig.KeywordSource == config.KeywordSourcePostgres && storage == nil {
		return nil, errors.Join(fmt.Errorf("keyword source is '%s'", instanceConfig.KeywordSource), ErrNoStorage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	m := &Manager{
		instanceConfig: instanceConfig,
		storage:        storage,
		pubsubClient:   pubsubClient,
		sf:             new(typedsf.Group[*tokenizer.Tokenizer]),
	}
	if _, err := m.Reload(ctx); err != nil {
		return nil, err
	}

	if pubsubClient != nil {
		ch, err := pubsubClient.Subscribe(ctx, pubsub.TopicKeywordsUpdated)
		if err != nil {
			return nil, err
		}
		go m.reloadOnChannel(ch)
	}

	return m, nil
}

func (m *Manager) reloadOnChannel(ch <-chan string) {
	for val := range ch {
		if val == pubsub.ClosingValue {
			return // stop getting values
		}

		log.Printf("Reloading keywords given change from '%s'", val)
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		if _, err := m.Reload(ctx); err != nil {
			// Keep serving the previous keywords
			log.Printf("Error reloading keywords: %v", err)
		}
		cancel()
	}
}

// Tokenizer - The current Tokenizer. Never nil once NewManager has returned.
func (m *Manager) Tokenizer() *tokenizer.Tokenizer {
	return m.current.Load()
}

// Lexicon - Shorthand for m.Tokenizer().Lexicon().
func (m *Manager) Lexicon() *lexicon.Lexicon {
	return m.Tokenizer().Lexicon()
}

// Reload - Reads the keyword source again and swaps in a new Tokenizer. Concurrent reloads are collapsed.
// On error, the previous Tokenizer stays in place.
func (m *Manager) Reload(ctx context.Context) (*tokenizer.Tokenizer, error) {
	tok, err, _ := m.sf.Do(reloadKey, func() (*tokenizer.Tokenizer, error) {
		source := string(m.instanceConfig.KeywordSource)
		doc, err := m.loadDocument(ctx)
		if err != nil {
			dbmetrics.RecordKeywordReload(source, false)
			return nil, err
		}
		lex, err := lexicon.New(doc)
		if err != nil {
			dbmetrics.RecordKeywordReload(source, false)
			return nil, err
		}

		tok := tokenizer.New(lex)
		m.current.Store(tok)
		dbmetrics.RecordKeywordReload(source, true)
		log.Printf("Loaded keywords from %s: %v", source, lex.Counts())
		return tok, nil
	})
	return tok, err
}

func (m *Manager) loadDocument(ctx context.Context) (*config.KeywordDocument, error) {
	if m.instanceConfig.KeywordSource != config.KeywordSourcePostgres {
		return config.LoadKeywordFile(m.instanceConfig.KeywordsFile)
	}

	lists, err := m.storage.GetAllKeywordLists(ctx)
	if err != nil {
		return nil, errors.Join(errors.New("reading keyword lists"), err)
	}
	if len(lists) == 0 && m.instanceConfig.KeywordsFile != "" {
		// Fresh database: seed it from the file so the first boot works without a manual import
		log.Printf("No keyword lists stored, seeding from %s", m.instanceConfig.KeywordsFile)
		doc, err := config.LoadKeywordFile(m.instanceConfig.KeywordsFile)
		if err != nil {
			return nil, err
		}
		if err = m.storage.ReplaceKeywordLists(ctx, doc); err != nil {
			return nil, errors.Join(errors.New("seeding keyword lists"), err)
		}
		return doc, nil
	}

	doc, err := storage.KeywordDocumentFromLists(lists)
	if err != nil {
		return nil, err
	}
	if err = doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Import - Validates the document, stores it, and tells every subscribed process to reload.
func (m *Manager) Import(ctx context.Context, doc *config.KeywordDocument) error {
	return Import(ctx, m.storage, m.pubsubClient, doc)
}

// Import - Replaces the stored keyword lists and announces the change. pubsubClient may be nil, in which case
// only processes that reload on their own will notice.
func Import(ctx context.Context, db storage.PersistentStorage, pubsubClient pubsub.Client, doc *config.KeywordDocument) error {
	if db == nil {
		return ErrNoStorage
	}
	if _, err := lexicon.New(doc); err != nil {
		return err
	}
	if err := db.ReplaceKeywordLists(ctx, doc); err != nil {
		return err
	}
	if pubsubClient != nil {
		return pubsubClient.Publish(ctx, pubsub.TopicKeywordsUpdated, string(config.KeywordSourcePostgres))
	}
	return nil
}

// ReloadNow - Reload without the result, for scheduled tasks.
func (m *Manager) ReloadNow(ctx context.Context) error {
	_, err := m.Reload(ctx)
	return err
}
