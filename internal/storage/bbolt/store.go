// Package bbolt provides a BoltDB-backed asset registry.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/crowdvault/internal/asset"
	"github.com/louisbranch/crowdvault/internal/storage"
	"go.etcd.io/bbolt"
)

const assetBucket = "asset"

// Store provides a BoltDB-backed asset registry store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutAsset persists an asset registry record keyed by campaign ID.
func (s *Store) PutAsset(ctx context.Context, a asset.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(a.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal asset: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(assetBucket))
		if bucket == nil {
			return fmt.Errorf("asset bucket is missing")
		}
		return bucket.Put(assetKey(a.CampaignID), payload)
	})
}

// GetAsset fetches an asset record by campaign ID.
func (s *Store) GetAsset(ctx context.Context, campaignID string) (asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return asset.Asset{}, err
	}
	if s == nil || s.db == nil {
		return asset.Asset{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return asset.Asset{}, fmt.Errorf("campaign id is required")
	}

	var record asset.Asset
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(assetBucket))
		if bucket == nil {
			return fmt.Errorf("asset bucket is missing")
		}
		payload := bucket.Get(assetKey(campaignID))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &record); err != nil {
			return fmt.Errorf("unmarshal asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return asset.Asset{}, err
	}

	return record, nil
}

// DeleteAsset removes an asset record by campaign ID.
func (s *Store) DeleteAsset(ctx context.Context, campaignID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(assetBucket))
		if bucket == nil {
			return fmt.Errorf("asset bucket is missing")
		}
		return bucket.Delete(assetKey(campaignID))
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(assetBucket))
		if err != nil {
			return fmt.Errorf("create asset bucket: %w", err)
		}
		return nil
	})
}

func assetKey(campaignID string) []byte {
	return []byte(campaignID)
}

var _ storage.AssetStore = (*Store)(nil)
