package status

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commexhq/comms-api/internal/model"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
)

type fakeStatusRepo struct {
	statuses    map[string]*model.GlobalStatus
	byCodeCalls int
}

func (f *fakeStatusRepo) Create(ctx context.Context, status *model.GlobalStatus) error {
	status.ID = 1
	f.statuses[status.Code] = status
	return nil
}

func (f *fakeStatusRepo) Get(ctx context.Context, id int64) (*model.GlobalStatus, error) {
	for _, st := range f.statuses {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, fmt.Errorf("get status %d: %w", id, sql.ErrNoRows)
}

func (f *fakeStatusRepo) GetByCode(ctx context.Context, code string) (*model.GlobalStatus, error) {
	f.byCodeCalls++
	st, ok := f.statuses[code]
	if !ok {
		return nil, fmt.Errorf("get status %q: %w", code, sql.ErrNoRows)
	}
	return st, nil
}

func (f *fakeStatusRepo) Update(ctx context.Context, status *model.GlobalStatus) error {
	if _, ok := f.statuses[status.Code]; !ok {
		return sql.ErrNoRows
	}
	f.statuses[status.Code] = status
	return nil
}

func (f *fakeStatusRepo) Deactivate(ctx context.Context, id int64) error {
	for _, st := range f.statuses {
		if st.ID == id {
			st.IsActive = false
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStatusRepo) List(ctx context.Context, activeOnly bool) ([]*model.GlobalStatus, error) {
	var out []*model.GlobalStatus
	for _, st := range f.statuses {
		if activeOnly && !st.IsActive {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func newFixture() (*Service, *fakeStatusRepo) {
	repo := &fakeStatusRepo{
		statuses: map[string]*model.GlobalStatus{
			"Printed": {ID: 102, Code: "Printed", Phase: model.PhaseProduction, IsActive: true},
		},
	}
	return NewService(repo, zerolog.Nop()), repo
}

func TestGetByCodeCachesLookups(t *testing.T) {
	svc, repo := newFixture()

	for i := 0; i < 3; i++ {
		st, err := svc.GetByCode(context.Background(), "Printed")
		require.NoError(t, err)
		assert.Equal(t, int64(102), st.ID)
	}
	assert.Equal(t, 1, repo.byCodeCalls, "repeat lookups must hit the cache")
}

func TestGetByCodeUnknown(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.GetByCode(context.Background(), "Vanished")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCreateRejectsInvalidPhase(t *testing.T) {
	svc, _ := newFixture()

	err := svc.Create(context.Background(), &model.GlobalStatus{
		Code:        "Weird",
		DisplayName: "Weird",
		Phase:       "Limbo",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDeactivateInvalidatesCache(t *testing.T) {
	svc, repo := newFixture()

	_, err := svc.GetByCode(context.Background(), "Printed")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), 102))

	st, err := svc.GetByCode(context.Background(), "Printed")
	require.NoError(t, err)
	assert.False(t, st.IsActive, "stale active copy must not be served after deactivation")
	assert.Equal(t, 2, repo.byCodeCalls)
}

func TestListActiveOnly(t *testing.T) {
	svc, repo := newFixture()
	repo.statuses["Retired"] = &model.GlobalStatus{ID: 105, Code: "Retired", Phase: model.PhaseTerminal, IsActive: false}

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
