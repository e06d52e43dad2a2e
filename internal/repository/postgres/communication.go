package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
)

type communicationRepository struct {
	BaseRepository
}

func NewCommunicationRepository(base BaseRepository) repository.CommunicationRepository {
	return &communicationRepository{base}
}

// Create inserts the communication and its initial history row in one
// transaction, so the current-status/last-history invariant holds from the
// first moment the row exists.
func (r *communicationRepository) Create(ctx context.Context, comm *model.Communication, initial *model.CommunicationStatusHistory) error {
	return r.WithTx(ctx, "communication_create", func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO communications (
				title, type_id, member_id, current_status_id, source_file_url,
				is_active, created_utc, last_updated_utc, created_by, last_updated_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		if err := tx.QueryRowxContext(ctx, query,
			comm.Title,
			comm.TypeID,
			comm.MemberID,
			comm.CurrentStatusID,
			comm.SourceFileURL,
			comm.IsActive,
			comm.CreatedUTC,
			comm.LastUpdatedUTC,
			comm.CreatedBy,
			comm.LastUpdatedBy,
		).Scan(&comm.ID); err != nil {
			return fmt.Errorf("failed to create communication: %w", err)
		}

		initial.CommunicationID = comm.ID
		return insertHistory(ctx, tx, initial)
	})
}

func (r *communicationRepository) Get(ctx context.Context, id int64) (*model.Communication, error) {
	var comm model.Communication
	query := `SELECT * FROM communications WHERE id = $1 AND is_active`
	if err := r.db.GetContext(ctx, &comm, query, id); err != nil {
		return nil, fmt.Errorf("failed to get communication %d: %w", id, err)
	}
	return &comm, nil
}

func (r *communicationRepository) List(ctx context.Context) ([]*model.Communication, error) {
	var comms []*model.Communication
	query := `SELECT * FROM communications WHERE is_active ORDER BY created_utc DESC`
	if err := r.db.SelectContext(ctx, &comms, query); err != nil {
		return nil, fmt.Errorf("failed to list communications: %w", err)
	}
	return comms, nil
}

// Update touches mutable metadata only. Status fields go through Transition.
func (r *communicationRepository) Update(ctx context.Context, comm *model.Communication) error {
	query := `
		UPDATE communications
		SET title = $1, source_file_url = $2, member_id = $3,
		    last_updated_utc = $4, last_updated_by = $5
		WHERE id = $6 AND is_active
	`
	res, err := r.db.ExecContext(ctx, query,
		comm.Title,
		comm.SourceFileURL,
		comm.MemberID,
		comm.LastUpdatedUTC,
		comm.LastUpdatedBy,
		comm.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update communication %d: %w", comm.ID, err)
	}
	return requireRow(res)
}

func (r *communicationRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE communications SET is_active = false, last_updated_utc = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete communication %d: %w", id, err)
	}
	return requireRow(res)
}

// HardDelete physically removes the row and its history. Reserved for the
// separately authorized admin path.
func (r *communicationRepository) HardDelete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, "communication_hard_delete", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM communication_status_history WHERE communication_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete history for communication %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM communications WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete communication %d: %w", id, err)
		}
		return requireRow(res)
	})
}

// Transition applies the current-status update and the history append in a
// single transaction. The UPDATE carries the soft-delete guard, so a
// concurrent delete surfaces as not-found rather than a write to a dead
// row. Last-writer-wins on current_status_id; every successful call leaves
// exactly one history row.
func (r *communicationRepository) Transition(ctx context.Context, id, statusID int64, updatedBy *uuid.UUID, hist *model.CommunicationStatusHistory) error {
	return r.WithTx(ctx, "communication_transition", func(tx *sqlx.Tx) error {
		query := `
			UPDATE communications
			SET current_status_id = $1,
			    last_updated_utc = $2,
			    last_updated_by = COALESCE($3, last_updated_by)
			WHERE id = $4 AND is_active
		`
		res, err := tx.ExecContext(ctx, query, statusID, hist.OccurredUTC, updatedBy, id)
		if err != nil {
			return fmt.Errorf("failed to transition communication %d: %w", id, err)
		}
		if err := requireRow(res); err != nil {
			return err
		}

		hist.CommunicationID = id
		hist.StatusID = statusID
		return insertHistory(ctx, tx, hist)
	})
}

func (r *communicationRepository) ListHistory(ctx context.Context, communicationID int64) ([]*model.StatusHistoryView, error) {
	query := `
		SELECT gs.code AS status_code, gs.display_name, h.occurred_utc,
		       h.notes, h.event_source, h.updated_by
		FROM communication_status_history h
		JOIN global_statuses gs ON gs.id = h.status_id
		WHERE h.communication_id = $1
		ORDER BY h.occurred_utc DESC, h.id DESC
	`
	var views []*model.StatusHistoryView
	if err := r.db.SelectContext(ctx, &views, query, communicationID); err != nil {
		return nil, fmt.Errorf("failed to list history for communication %d: %w", communicationID, err)
	}
	return views, nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, hist *model.CommunicationStatusHistory) error {
	query := `
		INSERT INTO communication_status_history (
			communication_id, status_id, occurred_utc, notes, event_source, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRowxContext(ctx, query,
		hist.CommunicationID,
		hist.StatusID,
		hist.OccurredUTC,
		hist.Notes,
		hist.EventSource,
		hist.UpdatedBy,
	).Scan(&hist.ID); err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}
