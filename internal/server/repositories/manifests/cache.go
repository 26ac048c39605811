package manifests

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/filedo/internal/logging"
	"github.com/dmitrijs2005/filedo/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces cache keys in a shared Redis.
const DefaultKeyPrefix = "filedo:"

// Cache is the subset of *redis.Client the cached repository needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedRepository is a read-through Redis cache in front of another
// Repository. Redis failures are logged and the call falls through to the
// wrapped store; they never fail a request. Misses are not cached.
type CachedRepository struct {
	next   Repository
	cache  Cache
	ttl    time.Duration
	prefix string
	logger logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewCachedRepository(next Repository, cache Cache, ttl time.Duration, logger logging.Logger) *CachedRepository {
	return &CachedRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		prefix: DefaultKeyPrefix,
		logger: logger.With("module", "manifest-cache"),
	}
}

// Stats returns hit and miss counters since construction.
func (r *CachedRepository) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}

func (r *CachedRepository) refKey(ref string) string {
	return r.prefix + "manifest:ref:" + ref
}

// Tokens can be long; key them by digest.
func (r *CachedRepository) tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + "manifest:tok:" + hex.EncodeToString(sum[:])
}

func (r *CachedRepository) Insert(ctx context.Context, rec *models.ManifestRecord) error {
	if err := r.next.Insert(ctx, rec); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, r.refKey(rec.ReferenceNumber)).Err(); err != nil {
		r.logger.Warn(ctx, "cache invalidation failed", "error", err)
	}
	return nil
}

func (r *CachedRepository) FindByReferenceNumber(ctx context.Context, ref string) (*models.ManifestRecord, error) {
	return r.readThrough(ctx, r.refKey(ref), func() (*models.ManifestRecord, error) {
		return r.next.FindByReferenceNumber(ctx, ref)
	})
}

func (r *CachedRepository) FindByEncryptedManifest(ctx context.Context, token string) (*models.ManifestRecord, error) {
	return r.readThrough(ctx, r.tokenKey(token), func() (*models.ManifestRecord, error) {
		return r.next.FindByEncryptedManifest(ctx, token)
	})
}

// cachedRecord is the JSON form kept in Redis.
type cachedRecord struct {
	ID                int64     `json:"id"`
	ReferenceNumber   string    `json:"reference_number"`
	StorageRoot       *string   `json:"storage_root,omitempty"`
	EncryptedManifest string    `json:"encrypted_manifest"`
	CreatedAt         time.Time `json:"created_at"`
}

func toCached(rec *models.ManifestRecord) cachedRecord {
	c := cachedRecord{
		ID:                rec.ID,
		ReferenceNumber:   rec.ReferenceNumber,
		EncryptedManifest: rec.EncryptedManifest,
		CreatedAt:         rec.CreatedAt,
	}
	if rec.StorageRoot.Valid {
		root := rec.StorageRoot.String
		c.StorageRoot = &root
	}
	return c
}

func (c cachedRecord) record() *models.ManifestRecord {
	rec := &models.ManifestRecord{
		ID:                c.ID,
		ReferenceNumber:   c.ReferenceNumber,
		EncryptedManifest: c.EncryptedManifest,
		CreatedAt:         c.CreatedAt,
	}
	if c.StorageRoot != nil {
		rec.StorageRoot.String = *c.StorageRoot
		rec.StorageRoot.Valid = true
	}
	return rec
}

func (r *CachedRepository) readThrough(ctx context.Context, key string, load func() (*models.ManifestRecord, error)) (*models.ManifestRecord, error) {
	raw, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var c cachedRecord
		if jerr := json.Unmarshal(raw, &c); jerr == nil {
			r.hits.Add(1)
			return c.record(), nil
		}
		r.logger.Warn(ctx, "dropping undecodable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn(ctx, "cache read failed", "error", err)
	}
	r.misses.Add(1)

	rec, err := load()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(toCached(rec))
	if err == nil {
		err = r.cache.Set(ctx, key, payload, r.ttl).Err()
	}
	if err != nil {
		r.logger.Warn(ctx, "cache write failed", "error", err)
	}
	return rec, nil
}
