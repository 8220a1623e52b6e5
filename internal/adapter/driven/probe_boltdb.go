package driven

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/probe"
)

const probesBucket = "probes"

// ProbeBoltDBRepository implements the ProbeRepository port using BoltDB.
// It uses nested buckets: probes/<url> with timestamp-keyed entries.
type ProbeBoltDBRepository struct {
	db *bbolt.DB
}

// NewProbeBoltDBRepository creates a new BoltDB-backed probe repository.
// It initializes the required top-level bucket if it doesn't exist.
func NewProbeBoltDBRepository(db *bbolt.DB) (*ProbeBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(probesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ProbeBoltDBRepository{db: db}, nil
}

// probeDTO is the JSON serialization format for a probe result.
type probeDTO struct {
	ChannelID    string `json:"channel_id"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	Method       string `json:"method"`
	CheckedAt    int64  `json:"checked_at"`
	Duration     int64  `json:"duration"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Save persists a probe result to BoltDB.
func (r *ProbeBoltDBRepository) Save(ctx context.Context, result probe.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result.URL() == "" {
		return errors.New("probe result has no url")
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(probesBucket))
		if top == nil {
			return errors.New("probes bucket not found")
		}

		sub, err := top.CreateBucketIfNotExists([]byte(result.URL()))
		if err != nil {
			return err
		}

		dto := probeDTO{
			ChannelID:    result.ChannelID(),
			URL:          result.URL(),
			Status:       string(result.Status()),
			Method:       string(result.Method()),
			CheckedAt:    result.CheckedAt().UnixNano(),
			Duration:     result.Duration().Nanoseconds(),
			ErrorMessage: result.ErrorMessage(),
		}

		data, err := json.Marshal(dto)
		if err != nil {
			return err
		}

		return sub.Put(timestampToKey(result.CheckedAt()), data)
	})
}

// FindByURL retrieves all probe results for a URL,
// ordered by check time descending (most recent first).
func (r *ProbeBoltDBRepository) FindByURL(ctx context.Context, url string) ([]probe.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := []probe.Result{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(probesBucket))
		if top == nil {
			return errors.New("probes bucket not found")
		}

		sub := top.Bucket([]byte(url))
		if sub == nil {
			return nil
		}

		c := sub.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			result, err := dtoToResult(v)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// DeleteBefore removes all probe results older than the given time.
// URLs left without results are dropped.
func (r *ProbeBoltDBRepository) DeleteBefore(ctx context.Context, before time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(probesBucket))
		if top == nil {
			return errors.New("probes bucket not found")
		}

		beforeKey := timestampToKey(before)
		var emptied [][]byte

		err := top.ForEach(func(k, v []byte) error {
			// v is nil for nested buckets
			if v != nil {
				return nil
			}
			sub := top.Bucket(k)
			if sub == nil {
				return nil
			}

			// Collect keys to delete (can't delete during iteration)
			var keysToDelete [][]byte
			c := sub.Cursor()
			for ck, _ := c.First(); ck != nil && compareKeys(ck, beforeKey) < 0; ck, _ = c.Next() {
				keysToDelete = append(keysToDelete, append([]byte(nil), ck...))
			}
			for _, dk := range keysToDelete {
				if err := sub.Delete(dk); err != nil {
					return err
				}
			}

			if first, _ := sub.Cursor().First(); first == nil {
				emptied = append(emptied, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range emptied {
			if err := top.DeleteBucket(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// timestampToKey converts a time.Time to an 8-byte big-endian key.
// This ensures chronological ordering in BoltDB's byte-sorted keys.
func timestampToKey(t time.Time) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(t.UnixNano()))
	return key
}

// compareKeys compares two 8-byte big-endian keys.
func compareKeys(a, b []byte) int {
	va := binary.BigEndian.Uint64(a)
	vb := binary.BigEndian.Uint64(b)
	switch {
	case va < vb:
		return -1
	case va > vb:
		return 1
	}
	return 0
}

// dtoToResult deserializes a JSON value into a probe.Result.
func dtoToResult(data []byte) (probe.Result, error) {
	var dto probeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return probe.Result{}, err
	}

	status, err := channel.ParseStatus(dto.Status)
	if err != nil {
		return probe.Result{}, err
	}

	return probe.NewResult(
		dto.ChannelID,
		dto.URL,
		status,
		probe.Method(dto.Method),
		time.Unix(0, dto.CheckedAt),
		time.Duration(dto.Duration),
		dto.ErrorMessage,
	)
}
