package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/playlist-manager/internal/port/driven"
)

const sourcesBucket = "sources"

// SourceCacheBoltDB implements the SourceCache port using BoltDB.
// Entries are keyed by URL.
type SourceCacheBoltDB struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewSourceCacheBoltDB creates a new BoltDB-backed source cache.
// It initializes the required bucket if it doesn't exist.
func NewSourceCacheBoltDB(db *bbolt.DB) (*SourceCacheBoltDB, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sourcesBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sources bucket: %w", err)
	}

	return &SourceCacheBoltDB{db: db, now: time.Now}, nil
}

// sourceDTO is the JSON serialization format for a cached source.
type sourceDTO struct {
	Content   string `json:"content"`
	FetchedAt int64  `json:"fetched_at"`
}

// Get returns the cached copy for url.
func (c *SourceCacheBoltDB) Get(ctx context.Context, url string) (driven.CachedSource, error) {
	if err := ctx.Err(); err != nil {
		return driven.CachedSource{}, err
	}

	var dto sourceDTO
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sourcesBucket))
		if b == nil {
			return errors.New("sources bucket not found")
		}

		data := b.Get([]byte(url))
		if data == nil {
			return driven.ErrCacheMiss
		}
		return json.Unmarshal(data, &dto)
	})
	if err != nil {
		return driven.CachedSource{}, err
	}

	return driven.CachedSource{
		Content:   dto.Content,
		FetchedAt: time.Unix(0, dto.FetchedAt),
	}, nil
}

// Set stores content as the latest copy for url.
func (c *SourceCacheBoltDB) Set(ctx context.Context, url string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if url == "" {
		return errors.New("cache key cannot be empty")
	}

	data, err := json.Marshal(sourceDTO{Content: content, FetchedAt: c.now().UnixNano()})
	if err != nil {
		return fmt.Errorf("failed to marshal cached source: %w", err)
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sourcesBucket))
		if b == nil {
			return errors.New("sources bucket not found")
		}
		return b.Put([]byte(url), data)
	})
}

// Delete removes the cached copy for url.
func (c *SourceCacheBoltDB) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sourcesBucket))
		if b == nil {
			return errors.New("sources bucket not found")
		}
		return b.Delete([]byte(url))
	})
}

// Ping checks if the BoltDB database is accessible and operational.
func (c *SourceCacheBoltDB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(sourcesBucket)) == nil {
			return errors.New("sources bucket not found")
		}
		return nil
	})
}
