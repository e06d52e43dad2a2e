package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/commexhq/comms-api/internal/model"
)

// All repository interfaces in one file
type (
	// StatusRepository handles the global status catalog. Reads exclude
	// nothing by default: deactivated statuses stay readable because
	// history references them.
	StatusRepository interface {
		Create(ctx context.Context, status *model.GlobalStatus) error
		Get(ctx context.Context, id int64) (*model.GlobalStatus, error)
		GetByCode(ctx context.Context, code string) (*model.GlobalStatus, error)
		Update(ctx context.Context, status *model.GlobalStatus) error
		Deactivate(ctx context.Context, id int64) error
		List(ctx context.Context, activeOnly bool) ([]*model.GlobalStatus, error)
	}

	CommunicationTypeRepository interface {
		Create(ctx context.Context, ct *model.CommunicationType) error
		Get(ctx context.Context, id int64) (*model.CommunicationType, error)
		Update(ctx context.Context, ct *model.CommunicationType) error
		List(ctx context.Context) ([]*model.CommunicationType, error)
	}

	// TypeStatusRepository owns the per-type status allow-list.
	TypeStatusRepository interface {
		GetValidStatuses(ctx context.Context, typeID int64) ([]*model.TypeStatusView, error)
		IsActiveMapping(ctx context.Context, typeID, statusID int64) (bool, error)
		// Reconcile applies a new status set atomically: absent mappings are
		// deactivated, previously deactivated ones reactivated in place, and
		// missing ones inserted. Never deletes rows.
		Reconcile(ctx context.Context, typeID int64, statusIDs []int64) error
	}

	// CommunicationRepository reads exclude soft-deleted rows everywhere.
	CommunicationRepository interface {
		Create(ctx context.Context, comm *model.Communication, initial *model.CommunicationStatusHistory) error
		Get(ctx context.Context, id int64) (*model.Communication, error)
		List(ctx context.Context) ([]*model.Communication, error)
		Update(ctx context.Context, comm *model.Communication) error
		SoftDelete(ctx context.Context, id int64) error
		HardDelete(ctx context.Context, id int64) error
		// Transition updates the current status and appends the history row
		// in a single transaction. Returns sql.ErrNoRows (wrapped) if the
		// communication is missing or soft-deleted.
		Transition(ctx context.Context, id, statusID int64, updatedBy *uuid.UUID, hist *model.CommunicationStatusHistory) error
		ListHistory(ctx context.Context, communicationID int64) ([]*model.StatusHistoryView, error)
	}

	MemberRepository interface {
		Create(ctx context.Context, member *model.Member) error
		Get(ctx context.Context, id int64) (*model.Member, error)
		Update(ctx context.Context, member *model.Member) error
		SoftDelete(ctx context.Context, id int64) error
		List(ctx context.Context) ([]*model.Member, error)
	}
)
