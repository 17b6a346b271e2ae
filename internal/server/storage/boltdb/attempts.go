package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cvvault/internal/server/storage"
)

var _ storage.AttemptStorage = (*Storage)(nil)

// RecordFailure counts one failed attempt for key inside a single transaction
func (s *Storage) RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*storage.AttemptRecord, error) {
	if key == "" {
		return nil, storage.ErrInvalidKey
	}

	var record *storage.AttemptRecord

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAttempts)
		if bucket == nil {
			return fmt.Errorf("attempts bucket not found")
		}

		rec, err := decodeRecord(bucket.Get([]byte(key)))
		if err != nil {
			return err
		}

		// Окно истекло или записи нет: начинаем отсчет заново
		if rec == nil || rec.Expired(now, window) {
			rec = &storage.AttemptRecord{Key: key, FirstFailure: now}
		}
		rec.Count++
		rec.LastFailure = now

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal attempt record: %w", err)
		}
		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save attempt record: %w", err)
		}

		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetAttempts retrieves the record for key
func (s *Storage) GetAttempts(ctx context.Context, key string) (*storage.AttemptRecord, error) {
	if key == "" {
		return nil, storage.ErrInvalidKey
	}

	var record *storage.AttemptRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAttempts)
		if bucket == nil {
			return fmt.Errorf("attempts bucket not found")
		}

		rec, err := decodeRecord(bucket.Get([]byte(key)))
		if err != nil {
			return err
		}
		if rec == nil {
			return storage.ErrAttemptsNotFound
		}

		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// DeleteExpired removes records whose window has passed
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAttempts)
		if bucket == nil {
			return fmt.Errorf("attempts bucket not found")
		}

		// Удалять ключи во время ForEach нельзя, поэтому сначала собираем их
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil || rec == nil || rec.Expired(now, window) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete attempt record: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func decodeRecord(data []byte) (*storage.AttemptRecord, error) {
	if data == nil {
		return nil, nil
	}

	rec := &storage.AttemptRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempt record: %w", err)
	}
	return rec, nil
}
