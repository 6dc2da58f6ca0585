package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/model"

	"github.com/dgraph-io/badger/v4"
)

const (
	badgerPrefix   = "news:"
	badgerSequence = "seq:news"
	gcInterval     = 5 * time.Minute
	maxTxnRetries  = 5
)

// BadgerStore keeps articles as JSON values in an embedded Badger database.
// Useful for single-binary deployments and tests.
type BadgerStore struct {
	db   *badger.DB
	seq  *badger.Sequence
	done chan struct{}
	wg   sync.WaitGroup

	// writeMu serializes read-modify-write transactions on existing keys.
	writeMu sync.Mutex
}

// NewBadgerStore opens (or creates) a Badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Silence default logger
	return openBadger(opts, true)
}

// NewMemoryStore opens a Badger database that lives only in memory.
func NewMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts, false)
}

func openBadger(opts badger.Options, gc bool) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	seq, err := db.GetSequence([]byte(badgerSequence), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open id sequence: %w", err)
	}

	s := &BadgerStore{db: db, seq: seq, done: make(chan struct{})}
	if gc {
		s.wg.Add(1)
		go s.collectGarbage()
	}
	return s, nil
}

// collectGarbage reclaims value log space until Close is called.
func (s *BadgerStore) collectGarbage() {
	defer s.wg.Done()
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for s.db.RunValueLogGC(0.7) == nil {
			}
		case <-s.done:
			return
		}
	}
}

// Close releases the sequence and closes the database.
func (s *BadgerStore) Close() {
	close(s.done)
	s.wg.Wait()
	if s.seq != nil {
		s.seq.Release()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger is closed")
	}
	return nil
}

func badgerKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgerPrefix, id))
}

func (s *BadgerStore) Create(ctx context.Context, article *model.Article) error {
	next, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next id: %w", err)
	}
	article.ID = int64(next) + 1

	data, err := json.Marshal(article)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(article.ID), data)
	})
}

func (s *BadgerStore) Get(ctx context.Context, id int64) (*model.Article, error) {
	var article model.Article
	err := s.db.View(func(txn *badger.Txn) error {
		return readArticle(txn, id, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func readArticle(txn *badger.Txn, id int64, dst *model.Article) error {
	item, err := txn.Get(badgerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

// each calls fn for every stored article in key order.
func (s *BadgerStore) each(fn func(model.Article) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var a model.Article
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			})
			if err != nil {
				return err
			}
			if err := fn(a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) List(ctx context.Context, filter model.ListFilter) ([]model.Article, error) {
	articles := []model.Article{}
	err := s.each(func(a model.Article) error {
		if filter.Match(a) {
			articles = append(articles, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].CreatedAt.Equal(articles[j].CreatedAt) {
			return articles[i].CreatedAt.After(articles[j].CreatedAt)
		}
		return articles[i].ID > articles[j].ID
	})
	return articles, nil
}

// retry runs fn in a read-write transaction, retrying on conflicts so the
// last writer wins. Writers take writeMu, so conflicts only come from outside
// this store.
func (s *BadgerStore) retry(ctx context.Context, fn func(txn *badger.Txn) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var err error
	for i := 0; i < maxTxnRetries; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) Update(ctx context.Context, article *model.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return err
	}
	return s.retry(ctx, func(txn *badger.Txn) error {
		var existing model.Article
		if err := readArticle(txn, article.ID, &existing); err != nil {
			return err
		}
		return txn.Set(badgerKey(article.ID), data)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, id int64) error {
	return s.retry(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(badgerKey(id))
	})
}

func (s *BadgerStore) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	err := s.each(func(a model.Article) error {
		if a.Category != "" {
			seen[a.Category] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *BadgerStore) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := s.each(func(a model.Article) error {
		if a.ImageURL != "" {
			urls = append(urls, a.ImageURL)
		}
		return nil
	})
	return urls, err
}
