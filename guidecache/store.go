// Package guidecache persists generated tracing guides in a bbolt
// key-value store keyed by (character, size, font).
package guidecache

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/drawscore/drawscore"
)

var bucketGuides = []byte("guides")

// Generator produces a guide on cache miss. The core's
// FontCache.GenerateAllGuides satisfies this.
type Generator func(character string, size int, fontName string) (*drawscore.Guide, error)

// Store is a bbolt-backed guide cache. Writes replace the whole entry for
// a key, so concurrent regeneration can never produce duplicate rows.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketGuides)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// key builds the invariant cache key. A new font or size never collides
// with other entries.
func key(character string, size int, fontName string) []byte {
	if fontName == "" {
		fontName = drawscore.DefaultFontName
	}
	return []byte(fmt.Sprintf("%s|%d|%s", character, size, fontName))
}

// Get returns the cached guide, or (nil, nil) on a miss.
func (s *Store) Get(character string, size int, fontName string) (*drawscore.Guide, error) {
	var guide *drawscore.Guide
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketGuides).Get(key(character, size, fontName))
		if data == nil {
			return nil
		}
		guide = new(drawscore.Guide)
		return json.Unmarshal(data, guide)
	})
	if err != nil {
		return nil, err
	}
	return guide, nil
}

// Put stores a guide, replacing any existing entry under the same key.
func (s *Store) Put(guide *drawscore.Guide) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(guide)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketGuides).Put(key(guide.Character, guide.Size, guide.FontName), data)
	})
}

// GetOrGenerate returns the cached guide or generates and stores a fresh
// one.
func (s *Store) GetOrGenerate(character string, size int, fontName string, gen Generator) (*drawscore.Guide, error) {
	cached, err := s.Get(character, size, fontName)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	guide, err := gen(character, size, fontName)
	if err != nil {
		return nil, err
	}
	if err := s.Put(guide); err != nil {
		return nil, err
	}
	return guide, nil
}

// PregenerateAll generates and caches guides for A-Z, a-z and 0-9,
// continuing past per-character failures. Returns the number generated
// and the first error encountered, if any.
func (s *Store) PregenerateAll(size int, fontName string, gen Generator) (int, error) {
	var chars []string
	for c := 'A'; c <= 'Z'; c++ {
		chars = append(chars, string(c))
	}
	for c := 'a'; c <= 'z'; c++ {
		chars = append(chars, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		chars = append(chars, string(c))
	}

	generated := 0
	var firstErr error
	for _, ch := range chars {
		if _, err := s.GetOrGenerate(ch, size, fontName, gen); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("generating guide for %q: %w", ch, err)
			}
			continue
		}
		generated++
	}
	return generated, firstErr
}

// Clear removes all cached guides. Useful when fonts change.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketGuides); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketGuides)
		return err
	})
}

// Stats summarizes cache contents.
type Stats struct {
	CachedCount int            `json:"cached_count"`
	Fonts       []string       `json:"fonts_cached"`
	ByFont      map[string]int `json:"by_font"`
}

// Stats reports the number of cached guides and their font breakdown.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{ByFont: make(map[string]int)}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketGuides).ForEach(func(k, v []byte) error {
			stats.CachedCount++
			var guide drawscore.Guide
			if err := json.Unmarshal(v, &guide); err != nil {
				return err
			}
			stats.ByFont[guide.FontName]++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for font := range stats.ByFont {
		stats.Fonts = append(stats.Fonts, font)
	}
	sort.Strings(stats.Fonts)
	return stats, nil
}
