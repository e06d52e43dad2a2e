package status

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
)

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = time.Minute
)

// Service is the status catalog: a read-mostly lookup over the global set
// of lifecycle statuses. Code lookups are cached because the transition
// engine resolves a code on every transition; the contract tolerates cold
// lookups, so the cache is purely an optimization.
type Service struct {
	repo   repository.StatusRepository
	cache  *gocache.Cache
	logger zerolog.Logger
}

func NewService(repo repository.StatusRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  gocache.New(cacheTTL, cacheCleanup),
		logger: logger.With().Str("component", "status_catalog").Logger(),
	}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.GlobalStatus, error) {
	statuses, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.Transient("failed to list statuses", err)
	}
	return statuses, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.GlobalStatus, error) {
	status, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("status", err)
		}
		return nil, apperrors.Transient("failed to get status", err)
	}
	return status, nil
}

// GetByCode resolves a status by its code, serving repeated lookups from
// cache. Deactivated statuses are still returned; callers decide whether
// inactivity matters.
func (s *Service) GetByCode(ctx context.Context, code string) (*model.GlobalStatus, error) {
	if cached, ok := s.cache.Get(code); ok {
		return cached.(*model.GlobalStatus), nil
	}

	status, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("status", err)
		}
		return nil, apperrors.Transient("failed to get status", err)
	}

	s.cache.Set(code, status, cacheTTL)
	return status, nil
}

func (s *Service) Create(ctx context.Context, status *model.GlobalStatus) error {
	if !status.Phase.Valid() {
		return apperrors.BadRequest("invalid status phase", nil)
	}
	status.IsActive = true
	if err := s.repo.Create(ctx, status); err != nil {
		return apperrors.Transient("failed to create status", err)
	}
	s.logger.Info().Str("code", status.Code).Msg("status created")
	return nil
}

func (s *Service) Update(ctx context.Context, status *model.GlobalStatus) error {
	if !status.Phase.Valid() {
		return apperrors.BadRequest("invalid status phase", nil)
	}
	if err := s.repo.Update(ctx, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("status", err)
		}
		return apperrors.Transient("failed to update status", err)
	}
	s.cache.Delete(status.Code)
	return nil
}

// Deactivate blocks new transitions into the status. It never cascades:
// communications and history already referencing the code stay readable.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	status, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("status", err)
		}
		return apperrors.Transient("failed to deactivate status", err)
	}
	s.cache.Delete(status.Code)
	s.logger.Info().Str("code", status.Code).Msg("status deactivated")
	return nil
}
