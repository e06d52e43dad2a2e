package communication

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
	"github.com/commexhq/comms-api/pkg/metrics"
)

// StatusCatalog resolves status codes against the global catalog.
type StatusCatalog interface {
	GetByCode(ctx context.Context, code string) (*model.GlobalStatus, error)
}

// StatusPolicy answers whether a status is an active mapping for a type.
type StatusPolicy interface {
	IsStatusValidForType(ctx context.Context, typeID, statusID int64) (bool, error)
}

// Notifier is told when a communication reaches a terminal-phase status.
// Failures are logged, never surfaced: notification is best-effort and must
// not fail a committed transition.
type Notifier interface {
	NotifyTerminal(ctx context.Context, comm *model.Communication, member *model.Member, status *model.GlobalStatus) error
}

// CreateParams carries the fields accepted when creating a communication.
type CreateParams struct {
	Title             string
	TypeID            int64
	MemberID          int64
	SourceFileURL     *string
	InitialStatusCode string
	CreatedBy         *uuid.UUID
}

// UpdateParams carries the mutable metadata fields. Status is not among
// them; status changes go through Transition.
type UpdateParams struct {
	Title         *string
	MemberID      *int64
	SourceFileURL *string
	UpdatedBy     *uuid.UUID
}

// Service is the status transition engine plus communication CRUD.
type Service struct {
	repo       repository.CommunicationRepository
	typeRepo   repository.CommunicationTypeRepository
	memberRepo repository.MemberRepository
	catalog    StatusCatalog
	policy     StatusPolicy
	notifier   Notifier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewService(
	repo repository.CommunicationRepository,
	typeRepo repository.CommunicationTypeRepository,
	memberRepo repository.MemberRepository,
	catalog StatusCatalog,
	policy StatusPolicy,
	notifier Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		typeRepo:   typeRepo,
		memberRepo: memberRepo,
		catalog:    catalog,
		policy:     policy,
		notifier:   notifier,
		metrics:    m,
		logger:     logger.With().Str("component", "transition_engine").Logger(),
	}
}

// Create validates the type, member, and initial status, then inserts the
// communication together with its first history row. The initial status
// defaults to ReadyForRelease and must be an active mapping for the type,
// same as any transition.
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Communication, error) {
	ct, err := s.typeRepo.Get(ctx, params.TypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("communication type", err)
		}
		return nil, apperrors.Transient("failed to resolve communication type", err)
	}
	if !ct.IsActive {
		return nil, apperrors.BadRequest(fmt.Sprintf("communication type %s is deactivated", ct.Code), nil)
	}

	if _, err := s.memberRepo.Get(ctx, params.MemberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("member", err)
		}
		return nil, apperrors.Transient("failed to resolve member", err)
	}

	code := params.InitialStatusCode
	if code == "" {
		code = model.DefaultInitialStatus
	}
	status, err := s.resolveValidStatus(ctx, ct.ID, ct.Code, code)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comm := &model.Communication{
		Title:           params.Title,
		TypeID:          ct.ID,
		MemberID:        params.MemberID,
		CurrentStatusID: status.ID,
		SourceFileURL:   params.SourceFileURL,
		IsActive:        true,
		CreatedUTC:      now,
		LastUpdatedUTC:  now,
		CreatedBy:       params.CreatedBy,
		LastUpdatedBy:   params.CreatedBy,
	}
	initial := &model.CommunicationStatusHistory{
		StatusID:    status.ID,
		OccurredUTC: now,
		Notes:       fmt.Sprintf("Created with status %s", status.Code),
		EventSource: model.SourceManual,
		UpdatedBy:   params.CreatedBy,
	}

	if err := s.repo.Create(ctx, comm, initial); err != nil {
		return nil, apperrors.Transient("failed to create communication", err)
	}

	s.logger.Info().
		Int64("communication_id", comm.ID).
		Str("type", ct.Code).
		Str("status", status.Code).
		Msg("communication created")
	return comm, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Communication, error) {
	comm, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("communication", err)
		}
		return nil, apperrors.Transient("failed to get communication", err)
	}
	return comm, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Communication, error) {
	comms, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Transient("failed to list communications", err)
	}
	return comms, nil
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*model.Communication, error) {
	comm, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		comm.Title = *params.Title
	}
	if params.MemberID != nil {
		if _, err := s.memberRepo.Get(ctx, *params.MemberID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NotFound("member", err)
			}
			return nil, apperrors.Transient("failed to resolve member", err)
		}
		comm.MemberID = *params.MemberID
	}
	if params.SourceFileURL != nil {
		comm.SourceFileURL = params.SourceFileURL
	}
	comm.LastUpdatedUTC = time.Now().UTC()
	comm.LastUpdatedBy = params.UpdatedBy

	if err := s.repo.Update(ctx, comm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("communication", err)
		}
		return nil, apperrors.Transient("failed to update communication", err)
	}
	return comm, nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("communication", err)
		}
		return apperrors.Transient("failed to delete communication", err)
	}
	return nil
}

// HardDelete physically removes a communication and its history. The
// handler restricts this path to admin callers.
func (s *Service) HardDelete(ctx context.Context, id int64) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("communication", err)
		}
		return apperrors.Transient("failed to hard delete communication", err)
	}
	s.logger.Warn().Int64("communication_id", id).Msg("communication hard deleted")
	return nil
}

// Transition moves a communication to a new status. The target must resolve
// in the catalog, be active, and be an active mapping for the
// communication's type. On success the current status and one history row
// are committed atomically; on any failure nothing is written.
func (s *Service) Transition(ctx context.Context, id int64, statusCode, source string, notes *string, userID *uuid.UUID) (*model.Communication, error) {
	timer := prometheus.NewTimer(s.metrics.TransitionLatency)
	defer timer.ObserveDuration()

	comm, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.TransitionsTotal.WithLabelValues(source, "not_found").Inc()
			return nil, apperrors.NotFound("communication", err)
		}
		s.metrics.TransitionsTotal.WithLabelValues(source, "error").Inc()
		return nil, apperrors.Transient("failed to load communication", err)
	}

	ct, err := s.typeRepo.Get(ctx, comm.TypeID)
	if err != nil {
		s.metrics.TransitionsTotal.WithLabelValues(source, "error").Inc()
		return nil, apperrors.Transient("failed to resolve communication type", err)
	}

	status, err := s.resolveValidStatus(ctx, ct.ID, ct.Code, statusCode)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidTransition) {
			s.metrics.TransitionsTotal.WithLabelValues(source, "invalid").Inc()
		} else {
			s.metrics.TransitionsTotal.WithLabelValues(source, "error").Inc()
		}
		return nil, err
	}

	now := time.Now().UTC()
	noteText := fmt.Sprintf("Status changed to %s", status.Code)
	if notes != nil && *notes != "" {
		noteText = *notes
	}
	hist := &model.CommunicationStatusHistory{
		OccurredUTC: now,
		Notes:       noteText,
		EventSource: source,
		UpdatedBy:   userID,
	}

	if err := s.repo.Transition(ctx, id, status.ID, userID, hist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted between the read and the write.
			s.metrics.TransitionsTotal.WithLabelValues(source, "not_found").Inc()
			return nil, apperrors.NotFound("communication", err)
		}
		s.metrics.TransitionsTotal.WithLabelValues(source, "error").Inc()
		return nil, apperrors.Transient("failed to apply transition", err)
	}

	s.metrics.TransitionsTotal.WithLabelValues(source, "success").Inc()
	s.logger.Info().
		Int64("communication_id", id).
		Str("status", status.Code).
		Str("source", source).
		Msg("status transition applied")

	comm.CurrentStatusID = status.ID
	comm.LastUpdatedUTC = now
	if userID != nil {
		comm.LastUpdatedBy = userID
	}

	if status.Phase == model.PhaseTerminal && s.notifier != nil {
		// Member enriches the message only; a lookup failure must not block
		// the notification, let alone the committed transition.
		member, err := s.memberRepo.Get(ctx, comm.MemberID)
		if err != nil {
			member = nil
		}
		if err := s.notifier.NotifyTerminal(ctx, comm, member, status); err != nil {
			s.metrics.NotificationFailures.Inc()
			s.logger.Error().Err(err).
				Int64("communication_id", id).
				Str("status", status.Code).
				Msg("terminal status notification failed")
		}
	}

	return comm, nil
}

// History lists the communication's status history, newest first.
func (s *Service) History(ctx context.Context, id int64) ([]*model.StatusHistoryView, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	views, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, apperrors.Transient("failed to list status history", err)
	}
	return views, nil
}

// resolveValidStatus maps a code to a catalog status and enforces the
// type-status policy. Unknown codes, deactivated statuses, and unmapped
// statuses are all invalid transitions.
func (s *Service) resolveValidStatus(ctx context.Context, typeID int64, typeCode, statusCode string) (*model.GlobalStatus, error) {
	status, err := s.catalog.GetByCode(ctx, statusCode)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidTransition(fmt.Sprintf("unknown status %q", statusCode), err)
		}
		return nil, err
	}
	if !status.IsActive {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("status %s is deactivated", status.Code), nil)
	}

	valid, err := s.policy.IsStatusValidForType(ctx, typeID, status.ID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("status %s is not valid for type %s", status.Code, typeCode), nil)
	}
	return status, nil
}
