package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/catalog"
	"marketplace-api/internal/errs"
	"marketplace-api/internal/models"
	"marketplace-api/internal/util"

	"go.uber.org/zap"
)

const msgFetchGames = "Failed to fetch games"

// GameService proxies the external games catalog
type GameService struct {
	catalog  GameCatalog
	cache    CatalogCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewGameService creates a game service. cache may be nil; a zero cacheTTL disables caching.
func NewGameService(catalog GameCatalog, cache CatalogCache, cacheTTL time.Duration) *GameService {
	return &GameService{
		catalog:  catalog,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ListGames lists catalog games matching f
func (s *GameService) ListGames(ctx context.Context, f catalog.Filter) ([]models.Game, error) {
	games, err := s.fetch(ctx, f)
	if err != nil {
		return nil, errs.NewUpstreamError(msgFetchGames, err.Error()).WithCause(err)
	}
	return games, nil
}

// GetGame fetches one game. rawID is either the catalog id or the prefixed game id.
func (s *GameService) GetGame(ctx context.Context, rawID string) (*models.Game, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(rawID, models.GameIDPrefix), 10, 64)
	if err != nil || id <= 0 {
		return nil, errs.NewBadRequestError("Invalid game ID")
	}

	game, err := s.catalog.GetGame(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, errs.NewNotFoundError("Game not found")
	}
	if err != nil {
		return nil, errs.NewUpstreamError(msgFetchGames, err.Error()).WithCause(err)
	}
	return game, nil
}

// allGames returns the unfiltered catalog with catalog errors unmapped
func (s *GameService) allGames(ctx context.Context) ([]models.Game, error) {
	return s.fetch(ctx, catalog.Filter{})
}

func (s *GameService) fetch(ctx context.Context, f catalog.Filter) ([]models.Game, error) {
	key := cacheKey(f)
	if games, ok := s.cached(ctx, key); ok {
		return games, nil
	}

	games, err := s.catalog.ListGames(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		data, err := json.Marshal(games)
		if err == nil {
			err = s.cache.SetCachedCatalog(ctx, key, data, s.cacheTTL)
		}
		if err != nil {
			s.logger.Warn("Failed to cache catalog response", zap.String("key", key), zap.Error(err))
		}
	}
	return games, nil
}

func (s *GameService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *GameService) cached(ctx context.Context, key string) ([]models.Game, bool) {
	if !s.cacheEnabled() {
		return nil, false
	}

	data, ok, err := s.cache.GetCachedCatalog(ctx, key)
	if err != nil {
		s.logger.Warn("Catalog cache lookup failed", zap.String("key", key), zap.Error(err))
		util.CatalogCacheHitsTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok {
		util.CatalogCacheHitsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var games []models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		s.logger.Warn("Discarding unreadable catalog cache entry", zap.String("key", key), zap.Error(err))
		util.CatalogCacheHitsTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	util.CatalogCacheHitsTotal.WithLabelValues("hit").Inc()
	return games, true
}

func cacheKey(f catalog.Filter) string {
	return "games:" + strings.Join([]string{f.Platform, f.Category, f.SortBy, f.Tag}, "|")
}
