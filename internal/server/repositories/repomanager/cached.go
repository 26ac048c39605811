package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/logging"
	"github.com/dmitrijs2005/filedo/internal/server/repositories/manifests"
)

// CachedRepositoryManager wraps every manifest repository of another manager
// in a read-through cache.
type CachedRepositoryManager struct {
	next   RepositoryManager
	cache  manifests.Cache
	ttl    time.Duration
	logger logging.Logger
}

func WithCache(next RepositoryManager, cache manifests.Cache, ttl time.Duration, logger logging.Logger) *CachedRepositoryManager {
	return &CachedRepositoryManager{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (m *CachedRepositoryManager) Manifests(db dbx.DBTX) manifests.Repository {
	return manifests.NewCachedRepository(m.next.Manifests(db), m.cache, m.ttl, m.logger)
}

func (m *CachedRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return m.next.RunMigrations(ctx, db)
}
