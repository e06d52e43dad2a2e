package postgres

import (
	"context"
	"fmt"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
)

type statusRepository struct {
	BaseRepository
}

func NewStatusRepository(base BaseRepository) repository.StatusRepository {
	return &statusRepository{base}
}

func (r *statusRepository) Create(ctx context.Context, status *model.GlobalStatus) error {
	query := `
		INSERT INTO global_statuses (code, display_name, description, phase, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query,
		status.Code,
		status.DisplayName,
		status.Description,
		status.Phase,
		status.IsActive,
	).Scan(&status.ID); err != nil {
		return fmt.Errorf("failed to create status: %w", err)
	}
	return nil
}

func (r *statusRepository) Get(ctx context.Context, id int64) (*model.GlobalStatus, error) {
	var status model.GlobalStatus
	query := `SELECT * FROM global_statuses WHERE id = $1`
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return nil, fmt.Errorf("failed to get status %d: %w", id, err)
	}
	return &status, nil
}

func (r *statusRepository) GetByCode(ctx context.Context, code string) (*model.GlobalStatus, error) {
	var status model.GlobalStatus
	query := `SELECT * FROM global_statuses WHERE code = $1`
	if err := r.db.GetContext(ctx, &status, query, code); err != nil {
		return nil, fmt.Errorf("failed to get status %q: %w", code, err)
	}
	return &status, nil
}

func (r *statusRepository) Update(ctx context.Context, status *model.GlobalStatus) error {
	query := `
		UPDATE global_statuses
		SET display_name = $1, description = $2, phase = $3, is_active = $4
		WHERE id = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		status.DisplayName,
		status.Description,
		status.Phase,
		status.IsActive,
		status.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status %d: %w", status.ID, err)
	}
	return requireRow(res)
}

func (r *statusRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE global_statuses SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate status %d: %w", id, err)
	}
	return requireRow(res)
}

// List orders by phase then display name for stable presentation.
func (r *statusRepository) List(ctx context.Context, activeOnly bool) ([]*model.GlobalStatus, error) {
	query := `
		SELECT * FROM global_statuses
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY ` + phaseOrderClause + `, display_name`

	var statuses []*model.GlobalStatus
	if err := r.db.SelectContext(ctx, &statuses, query); err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}
