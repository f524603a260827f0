package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/cachekey"
	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultArticleCacheTTL = 60 * time.Second
	DefaultCacheOpTimeout  = 250 * time.Millisecond

	resourceArticle  = "article"
	resourceArticles = "articles"
)

// ArticleCacheConfig controls freshness and cache call budgets.
type ArticleCacheConfig struct {
	TTL time.Duration
	// OpTimeout bounds every single cache call. It must stay below the
	// repository timeout.
	OpTimeout time.Duration
}

// ArticleService serves articles cache-aside: reads go through the cache and
// fall back to the repository, writes go to the repository first and then
// invalidate the affected item key and the whole collection namespace.
type ArticleService struct {
	repo    ports.ArticleRepository
	authors ports.AuthorResolver
	cache   ports.CacheStore
	cfg     ArticleCacheConfig
	metrics ports.CacheMetrics
	logger  *logrus.Logger

	// coalesces concurrent misses for the same key in this process
	sf singleflight.Group
	// bumped after every committed write; loads that straddle one skip their write-back
	gen atomic.Uint64
}

func NewArticleService(repo ports.ArticleRepository, authors ports.AuthorResolver, cache ports.CacheStore, cfg ArticleCacheConfig, metrics ports.CacheMetrics, logger *logrus.Logger) ports.ArticleService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultArticleCacheTTL
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultCacheOpTimeout
	}
	if metrics == nil {
		metrics = noopCacheMetrics{}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &ArticleService{
		repo:    repo,
		authors: authors,
		cache:   cache,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *ArticleService) FindMany(ctx context.Context, q article.Query) (*article.List, error) {
	q = q.Normalize()
	key := cachekey.Collection(cachekey.KindArticle, q)
	if v, ok := cacheGet[article.List](s, ctx, resourceArticles, key); ok {
		return v, nil
	}

	res, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		gen := s.gen.Load()
		items, total, err := s.repo.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*article.Article{}
		}
		list := &article.List{Data: items, Count: total}
		s.fill(ctx, key, list, gen)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	list, ok := res.(*article.List)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return list, nil
}

func (s *ArticleService) FindOne(ctx context.Context, id int64) (*article.Article, error) {
	key := cachekey.Item(cachekey.KindArticle, id)
	if v, ok := cacheGet[article.Article](s, ctx, resourceArticle, key); ok {
		return v, nil
	}

	res, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		return s.load(ctx, key, id)
	})
	if err != nil {
		return nil, err
	}
	a, ok := res.(*article.Article)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return a, nil
}

// shared runs fn once for all concurrent callers of key. fn is detached from
// the cancellation of whichever caller started it, and is bounded by the
// repository timeout instead; each caller still gives up on its own ctx.
func (s *ArticleService) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.sf.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

// load reads id from the repository and repopulates key. Absence is not cached.
func (s *ArticleService) load(ctx context.Context, key string, id int64) (*article.Article, error) {
	gen := s.gen.Load()
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, a, gen)
	return a, nil
}

// fill caches v unless a write committed after gen was taken. The check and
// the Set are not atomic, so a load finishing in that gap can still leave a
// stale entry behind; the TTL bounds it.
func (s *ArticleService) fill(ctx context.Context, key string, v any, gen uint64) {
	if s.gen.Load() != gen {
		s.logger.WithFields(logrus.Fields{"cache_key": key}).Debug("cache: write-back skipped, a write landed during the load")
		return
	}
	s.cacheSet(ctx, key, v)
}

func (s *ArticleService) Create(ctx context.Context, req *article.CreateArticleRequest, authorID int64) (*article.Article, error) {
	pub, err := article.ParsePublicationDate(req.PublicationDate)
	if err != nil {
		return nil, err
	}

	author, err := s.authors.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, article.ErrAuthorNotFound
		}
		return nil, err
	}

	a := &article.Article{
		Title:           req.Title,
		Description:     req.Description,
		PublicationDate: pub,
		Author:          author.AsAuthor(),
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}

	// A new article can appear in any listing. Its item key was never cached.
	s.gen.Add(1)
	s.invalidateCollections(ctx)

	s.logger.WithFields(logrus.Fields{"article_id": a.ID, "author_id": authorID}).Info("article created")
	return a, nil
}

func (s *ArticleService) Update(ctx context.Context, id int64, req *article.UpdateArticleRequest) (*article.Article, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateByID(ctx, id, patch); err != nil {
		return nil, err
	}

	key := cachekey.Item(cachekey.KindArticle, id)
	s.gen.Add(1)
	s.invalidateItem(ctx, key)
	s.invalidateCollections(ctx)

	// Read straight from the repository, never joining a load that may have
	// started before the update committed. Such a load can still finish
	// later; fill drops its write-back because gen has moved on.
	return s.load(ctx, key, id)
}

func (s *ArticleService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.gen.Add(1)
	s.invalidateItem(ctx, cachekey.Item(cachekey.KindArticle, id))
	s.invalidateCollections(ctx)

	s.logger.WithFields(logrus.Fields{"article_id": id}).Info("article removed")
	return nil
}

func (s *ArticleService) invalidateItem(ctx context.Context, key string) {
	s.sf.Forget(key)
	if s.cache == nil {
		return
	}
	cctx, cancel := s.cacheCtx(ctx)
	defer cancel()
	if err := s.cache.Delete(cctx, key); err != nil {
		s.cacheFailed("delete", key, err)
	}
}

// invalidateCollections drops every cached listing under the article
// collection prefix. Keys outside that namespace are never touched.
func (s *ArticleService) invalidateCollections(ctx context.Context) {
	if s.cache == nil {
		return
	}
	prefix := cachekey.CollectionPrefix(cachekey.KindArticle)

	scanCtx, cancel := s.cacheCtx(ctx)
	keys, err := s.cache.ScanPrefix(scanCtx, prefix)
	cancel()
	if err != nil {
		s.cacheFailed("scan", prefix, err)
		return
	}
	if len(keys) == 0 {
		return
	}

	delCtx, cancel := s.cacheCtx(ctx)
	defer cancel()
	if err := s.cache.Delete(delCtx, keys...); err != nil {
		s.cacheFailed("delete", prefix, err)
		return
	}
	s.logger.WithFields(logrus.Fields{"prefix": prefix, "keys": len(keys)}).Debug("cache: collection keys invalidated")
}

func (s *ArticleService) cacheCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

func (s *ArticleService) cacheFailed(op, key string, err error) {
	s.metrics.Error(op)
	s.logger.WithFields(logrus.Fields{"op": op, "cache_key": key}).WithError(err).Warn("cache: operation failed, continuing without cache")
}

// cacheSet stores v best-effort: failures are logged, never returned.
func (s *ArticleService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"cache_key": key}).WithError(err).Warn("cache: failed to encode payload")
		return
	}
	cctx, cancel := s.cacheCtx(ctx)
	defer cancel()
	if err := s.cache.Set(cctx, key, b, s.cfg.TTL); err != nil {
		s.cacheFailed("set", key, err)
	}
}

func cacheGet[T any](s *ArticleService, ctx context.Context, resource, key string) (*T, bool) {
	if s.cache == nil {
		return nil, false
	}
	cctx, cancel := s.cacheCtx(ctx)
	defer cancel()

	b, ok, err := s.cache.Get(cctx, key)
	if err != nil {
		s.cacheFailed("get", key, err)
		s.metrics.Miss(resource)
		return nil, false
	}
	if !ok {
		s.metrics.Miss(resource)
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		s.logger.WithFields(logrus.Fields{"cache_key": key}).WithError(err).Warn("cache: discarding undecodable entry")
		s.metrics.Miss(resource)
		return nil, false
	}
	s.metrics.Hit(resource)
	return &v, true
}

type noopCacheMetrics struct{}

func (noopCacheMetrics) Hit(string)   {}
func (noopCacheMetrics) Miss(string)  {}
func (noopCacheMetrics) Error(string) {}

var _ ports.ArticleService = (*ArticleService)(nil)
