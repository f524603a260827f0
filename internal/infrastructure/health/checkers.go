package health

import (
	"context"

	"github.com/avatarctic/article-cache-api/internal/core/ports"
	infraDB "github.com/avatarctic/article-cache-api/internal/infrastructure/db"
)

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Critical() bool                  { return true }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// cacheHealthChecker probes whichever cache backend is configured.
type cacheHealthChecker struct {
	name  string
	cache ports.CacheStore
}

func (c *cacheHealthChecker) Name() string                    { return c.name }
func (c *cacheHealthChecker) Critical() bool                  { return false }
func (c *cacheHealthChecker) Check(ctx context.Context) error { return c.cache.Ping(ctx) }

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewCacheHealthChecker creates a health checker for the article cache.
// name identifies the backend, e.g. "redis".
func NewCacheHealthChecker(name string, cache ports.CacheStore) ports.HealthChecker {
	return &cacheHealthChecker{name: name, cache: cache}
}
