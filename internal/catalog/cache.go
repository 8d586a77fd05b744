package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/merrymatch/membership-backend/pkg/logger"
	"github.com/merrymatch/membership-backend/pkg/redis"
)

// cachedService serves the package list from Redis. The catalog changes only
// through migrations or manual edits, so a short TTL is the whole invalidation
// story. Cache failures fall through to the database.
type cachedService struct {
	Service
	cache redis.Cache
	key   string
	ttl   time.Duration
	logg  *logger.Logger
}

// WithCache wraps inner so List is read through cache. A nil cache or a
// non-positive ttl returns inner unchanged.
func WithCache(inner Service, cache redis.Cache, ttl time.Duration, logg *logger.Logger) Service {
	if cache == nil || ttl <= 0 {
		return inner
	}
	return &cachedService{
		Service: inner,
		cache:   cache,
		key:     cache.CacheKey("catalog", "packages"),
		ttl:     ttl,
		logg:    logg,
	}
}

func (s *cachedService) List(ctx context.Context) ([]PackageDTO, error) {
	raw, err := s.cache.Get(ctx, s.key)
	switch {
	case err == nil:
		var pkgs []PackageDTO
		jsonErr := json.Unmarshal([]byte(raw), &pkgs)
		if jsonErr == nil {
			return pkgs, nil
		}
		s.warn(ctx, "catalog.cache.decode_failed", jsonErr)
	case !redis.IsMiss(err):
		s.warn(ctx, "catalog.cache.read_failed", err)
	}

	pkgs, err := s.Service.List(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(pkgs); err == nil {
		if err := s.cache.Set(ctx, s.key, b, s.ttl); err != nil {
			s.warn(ctx, "catalog.cache.write_failed", err)
		}
	}
	return pkgs, nil
}

func (s *cachedService) warn(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.WarnErr(ctx, msg, err)
	}
}
