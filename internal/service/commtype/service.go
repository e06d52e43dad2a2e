package commtype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
)

// Service owns communication types and their status policy: the per-type
// allow-list of catalog statuses.
type Service struct {
	typeRepo   repository.CommunicationTypeRepository
	tsRepo     repository.TypeStatusRepository
	statusRepo repository.StatusRepository
	logger     zerolog.Logger
}

func NewService(
	typeRepo repository.CommunicationTypeRepository,
	tsRepo repository.TypeStatusRepository,
	statusRepo repository.StatusRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		typeRepo:   typeRepo,
		tsRepo:     tsRepo,
		statusRepo: statusRepo,
		logger:     logger.With().Str("component", "type_status_policy").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, ct *model.CommunicationType) error {
	ct.IsActive = true
	if err := s.typeRepo.Create(ctx, ct); err != nil {
		return apperrors.Transient("failed to create communication type", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.CommunicationType, error) {
	ct, err := s.typeRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("communication type", err)
		}
		return nil, apperrors.Transient("failed to get communication type", err)
	}
	return ct, nil
}

func (s *Service) List(ctx context.Context) ([]*model.CommunicationType, error) {
	types, err := s.typeRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Transient("failed to list communication types", err)
	}
	return types, nil
}

func (s *Service) Update(ctx context.Context, ct *model.CommunicationType) error {
	if err := s.typeRepo.Update(ctx, ct); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("communication type", err)
		}
		return apperrors.Transient("failed to update communication type", err)
	}
	return nil
}

// GetValidStatuses returns the active status allow-list for a type, ordered
// by phase then display name.
func (s *Service) GetValidStatuses(ctx context.Context, typeID int64) ([]*model.TypeStatusView, error) {
	if _, err := s.Get(ctx, typeID); err != nil {
		return nil, err
	}
	views, err := s.tsRepo.GetValidStatuses(ctx, typeID)
	if err != nil {
		return nil, apperrors.Transient("failed to list valid statuses", err)
	}
	return views, nil
}

// IsStatusValidForType reports whether the status is an active mapping for
// the type. The transition engine treats this as a hard invariant.
func (s *Service) IsStatusValidForType(ctx context.Context, typeID, statusID int64) (bool, error) {
	ok, err := s.tsRepo.IsActiveMapping(ctx, typeID, statusID)
	if err != nil {
		return false, apperrors.Transient("failed to check status mapping", err)
	}
	return ok, nil
}

// SetMappings replaces the type's allow-list via diff-and-reconcile: rows
// are deactivated or reactivated in place, never deleted, and the whole
// operation commits atomically. Every requested status id must exist in the
// catalog and be active.
func (s *Service) SetMappings(ctx context.Context, typeID int64, statusIDs []int64) error {
	if _, err := s.Get(ctx, typeID); err != nil {
		return err
	}

	for _, statusID := range statusIDs {
		status, err := s.statusRepo.Get(ctx, statusID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.BadRequest(fmt.Sprintf("unknown status id %d", statusID), err)
			}
			return apperrors.Transient("failed to resolve status", err)
		}
		if !status.IsActive {
			return apperrors.BadRequest(fmt.Sprintf("status %s is deactivated", status.Code), nil)
		}
	}

	if err := s.tsRepo.Reconcile(ctx, typeID, statusIDs); err != nil {
		return apperrors.Transient("failed to reconcile status mappings", err)
	}

	s.logger.Info().
		Int64("type_id", typeID).
		Int("statuses", len(statusIDs)).
		Msg("status mappings reconciled")
	return nil
}
