package postgres

import (
	"context"
	"fmt"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
)

type communicationTypeRepository struct {
	BaseRepository
}

func NewCommunicationTypeRepository(base BaseRepository) repository.CommunicationTypeRepository {
	return &communicationTypeRepository{base}
}

func (r *communicationTypeRepository) Create(ctx context.Context, ct *model.CommunicationType) error {
	query := `
		INSERT INTO communication_types (code, display_name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query,
		ct.Code,
		ct.DisplayName,
		ct.Description,
		ct.IsActive,
	).Scan(&ct.ID); err != nil {
		return fmt.Errorf("failed to create communication type: %w", err)
	}
	return nil
}

func (r *communicationTypeRepository) Get(ctx context.Context, id int64) (*model.CommunicationType, error) {
	var ct model.CommunicationType
	query := `SELECT * FROM communication_types WHERE id = $1`
	if err := r.db.GetContext(ctx, &ct, query, id); err != nil {
		return nil, fmt.Errorf("failed to get communication type %d: %w", id, err)
	}
	return &ct, nil
}

func (r *communicationTypeRepository) Update(ctx context.Context, ct *model.CommunicationType) error {
	query := `
		UPDATE communication_types
		SET display_name = $1, description = $2, is_active = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, ct.DisplayName, ct.Description, ct.IsActive, ct.ID)
	if err != nil {
		return fmt.Errorf("failed to update communication type %d: %w", ct.ID, err)
	}
	return requireRow(res)
}

func (r *communicationTypeRepository) List(ctx context.Context) ([]*model.CommunicationType, error) {
	var types []*model.CommunicationType
	query := `SELECT * FROM communication_types ORDER BY code`
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list communication types: %w", err)
	}
	return types, nil
}
