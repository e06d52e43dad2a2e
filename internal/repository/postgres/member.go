package postgres

import (
	"context"
	"fmt"

	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/repository"
)

type memberRepository struct {
	BaseRepository
}

func NewMemberRepository(base BaseRepository) repository.MemberRepository {
	return &memberRepository{base}
}

func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (
			member_number, first_name, last_name, email, phone_number,
			address, city, state, zip_code, enrollment_date,
			is_active, created_utc, last_updated_utc
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query,
		member.MemberNumber,
		member.FirstName,
		member.LastName,
		member.Email,
		member.PhoneNumber,
		member.Address,
		member.City,
		member.State,
		member.ZipCode,
		member.EnrollmentDate,
		member.IsActive,
		member.CreatedUTC,
		member.LastUpdatedUTC,
	).Scan(&member.ID); err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *memberRepository) Get(ctx context.Context, id int64) (*model.Member, error) {
	var member model.Member
	query := `SELECT * FROM members WHERE id = $1 AND is_active`
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, fmt.Errorf("failed to get member %d: %w", id, err)
	}
	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *model.Member) error {
	query := `
		UPDATE members
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4,
		    address = $5, city = $6, state = $7, zip_code = $8,
		    last_updated_utc = $9
		WHERE id = $10 AND is_active
	`
	res, err := r.db.ExecContext(ctx, query,
		member.FirstName,
		member.LastName,
		member.Email,
		member.PhoneNumber,
		member.Address,
		member.City,
		member.State,
		member.ZipCode,
		member.LastUpdatedUTC,
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member %d: %w", member.ID, err)
	}
	return requireRow(res)
}

func (r *memberRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET is_active = false, last_updated_utc = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete member %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *memberRepository) List(ctx context.Context) ([]*model.Member, error) {
	var members []*model.Member
	query := `SELECT * FROM members WHERE is_active ORDER BY last_name, first_name`
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
