package member

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
)

// Service wraps member CRUD with error mapping.
type Service struct {
	repo   repository.MemberRepository
	logger zerolog.Logger
}

func NewService(repo repository.MemberRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "member_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, member *model.Member) error {
	now := time.Now().UTC()
	member.IsActive = true
	member.CreatedUTC = now
	member.LastUpdatedUTC = now
	if member.EnrollmentDate.IsZero() {
		member.EnrollmentDate = now
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return apperrors.Transient("failed to create member", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Member, error) {
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("member", err)
		}
		return nil, apperrors.Transient("failed to get member", err)
	}
	return member, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Member, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Transient("failed to list members", err)
	}
	return members, nil
}

func (s *Service) Update(ctx context.Context, member *model.Member) error {
	member.LastUpdatedUTC = time.Now().UTC()
	if err := s.repo.Update(ctx, member); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("member", err)
		}
		return apperrors.Transient("failed to update member", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("member", err)
		}
		return apperrors.Transient("failed to delete member", err)
	}
	return nil
}
