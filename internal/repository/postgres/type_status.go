package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
)

type typeStatusRepository struct {
	BaseRepository
}

func NewTypeStatusRepository(base BaseRepository) repository.TypeStatusRepository {
	return &typeStatusRepository{base}
}

func (r *typeStatusRepository) GetValidStatuses(ctx context.Context, typeID int64) ([]*model.TypeStatusView, error) {
	query := `
		SELECT gs.id AS status_id, gs.code, gs.display_name, gs.description,
		       gs.phase, cts.description AS type_note
		FROM communication_type_statuses cts
		JOIN global_statuses gs ON gs.id = cts.status_id
		WHERE cts.type_id = $1 AND cts.is_active AND gs.is_active
		ORDER BY ` + phaseOrderClause + `, gs.display_name
	`
	var views []*model.TypeStatusView
	if err := r.db.SelectContext(ctx, &views, query, typeID); err != nil {
		return nil, fmt.Errorf("failed to list valid statuses for type %d: %w", typeID, err)
	}
	return views, nil
}

func (r *typeStatusRepository) IsActiveMapping(ctx context.Context, typeID, statusID int64) (bool, error) {
	var active bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM communication_type_statuses
			WHERE type_id = $1 AND status_id = $2 AND is_active
		)
	`
	if err := r.db.GetContext(ctx, &active, query, typeID, statusID); err != nil {
		return false, fmt.Errorf("failed to check mapping (%d,%d): %w", typeID, statusID, err)
	}
	return active, nil
}

// Reconcile diffs the requested set against existing rows inside one
// transaction. Absent mappings are deactivated, existing inactive ones
// reactivated in place, missing ones inserted. Rows are never deleted, so
// (type, status) uniqueness holds across repeated policy changes and the
// call is idempotent for identical input.
func (r *typeStatusRepository) Reconcile(ctx context.Context, typeID int64, statusIDs []int64) error {
	return r.WithTx(ctx, "type_status_reconcile", func(tx *sqlx.Tx) error {
		var existing []model.TypeStatusMapping
		query := `
			SELECT status_id, is_active FROM communication_type_statuses
			WHERE type_id = $1
			FOR UPDATE
		`
		if err := tx.SelectContext(ctx, &existing, query, typeID); err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to load mappings for type %d: %w", typeID, err)
		}

		requested := make(map[int64]bool, len(statusIDs))
		for _, id := range statusIDs {
			requested[id] = true
		}

		known := make(map[int64]bool, len(existing))
		for _, row := range existing {
			known[row.StatusID] = true

			switch {
			case row.IsActive && !requested[row.StatusID]:
				if _, err := tx.ExecContext(ctx,
					`UPDATE communication_type_statuses SET is_active = false WHERE type_id = $1 AND status_id = $2`,
					typeID, row.StatusID); err != nil {
					return fmt.Errorf("failed to deactivate mapping (%d,%d): %w", typeID, row.StatusID, err)
				}
			case !row.IsActive && requested[row.StatusID]:
				if _, err := tx.ExecContext(ctx,
					`UPDATE communication_type_statuses SET is_active = true WHERE type_id = $1 AND status_id = $2`,
					typeID, row.StatusID); err != nil {
					return fmt.Errorf("failed to reactivate mapping (%d,%d): %w", typeID, row.StatusID, err)
				}
			}
		}

		for _, statusID := range statusIDs {
			if known[statusID] {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO communication_type_statuses (type_id, status_id, is_active) VALUES ($1, $2, true)`,
				typeID, statusID); err != nil {
				return fmt.Errorf("failed to insert mapping (%d,%d): %w", typeID, statusID, err)
			}
		}

		return nil
	})
}
