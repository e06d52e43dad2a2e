package communication

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commexhq/comms-api/internal/handler"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/service/commtype"
	"github.com/commexhq/comms-api/internal/service/communication"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
	"github.com/commexhq/comms-api/pkg/metrics"
)

type stubCommRepo struct {
	comms       map[int64]*model.Communication
	createCalls int
	transitions int
}

func (s *stubCommRepo) Create(ctx context.Context, comm *model.Communication, initial *model.CommunicationStatusHistory) error {
	s.createCalls++
	comm.ID = 77
	return nil
}

func (s *stubCommRepo) Get(ctx context.Context, id int64) (*model.Communication, error) {
	comm, ok := s.comms[id]
	if !ok {
		return nil, fmt.Errorf("get %d: %w", id, sql.ErrNoRows)
	}
	cp := *comm
	return &cp, nil
}

func (s *stubCommRepo) List(ctx context.Context) ([]*model.Communication, error) { return nil, nil }
func (s *stubCommRepo) Update(ctx context.Context, comm *model.Communication) error {
	return nil
}
func (s *stubCommRepo) SoftDelete(ctx context.Context, id int64) error { return nil }
func (s *stubCommRepo) HardDelete(ctx context.Context, id int64) error { return nil }

func (s *stubCommRepo) Transition(ctx context.Context, id, statusID int64, updatedBy *uuid.UUID, hist *model.CommunicationStatusHistory) error {
	s.transitions++
	return nil
}

func (s *stubCommRepo) ListHistory(ctx context.Context, communicationID int64) ([]*model.StatusHistoryView, error) {
	return nil, nil
}

type stubTypeRepo struct {
	types map[int64]*model.CommunicationType
}

func (s *stubTypeRepo) Create(ctx context.Context, ct *model.CommunicationType) error { return nil }
func (s *stubTypeRepo) Get(ctx context.Context, id int64) (*model.CommunicationType, error) {
	ct, ok := s.types[id]
	if !ok {
		return nil, fmt.Errorf("get type %d: %w", id, sql.ErrNoRows)
	}
	return ct, nil
}
func (s *stubTypeRepo) Update(ctx context.Context, ct *model.CommunicationType) error { return nil }
func (s *stubTypeRepo) List(ctx context.Context) ([]*model.CommunicationType, error) {
	return nil, nil
}

type stubMemberRepo struct{}

func (stubMemberRepo) Create(ctx context.Context, m *model.Member) error { return nil }
func (stubMemberRepo) Get(ctx context.Context, id int64) (*model.Member, error) {
	return &model.Member{ID: id, FirstName: "Ada", LastName: "Okafor"}, nil
}
func (stubMemberRepo) Update(ctx context.Context, m *model.Member) error { return nil }
func (stubMemberRepo) SoftDelete(ctx context.Context, id int64) error    { return nil }
func (stubMemberRepo) List(ctx context.Context) ([]*model.Member, error) { return nil, nil }

type stubCatalog struct {
	statuses map[string]*model.GlobalStatus
}

func (s *stubCatalog) GetByCode(ctx context.Context, code string) (*model.GlobalStatus, error) {
	st, ok := s.statuses[code]
	if !ok {
		return nil, apperrors.NotFound("status", nil)
	}
	return st, nil
}

type stubPolicy struct{}

func (stubPolicy) IsStatusValidForType(ctx context.Context, typeID, statusID int64) (bool, error) {
	return true, nil
}

type recordingPublisher struct {
	created int
}

func (p *recordingPublisher) PublishCreated(ctx context.Context, comm *model.Communication, typeCode, source string) error {
	p.created++
	return nil
}

type handlerFixture struct {
	engine    *gin.Engine
	repo      *stubCommRepo
	publisher *recordingPublisher
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterValidations()

	repo := &stubCommRepo{
		comms: map[int64]*model.Communication{
			10: {
				ID:              10,
				Title:           "ID card reissue",
				TypeID:          2,
				MemberID:        5,
				CurrentStatusID: 100,
				IsActive:        true,
				CreatedUTC:      time.Now().UTC(),
			},
		},
	}
	typeRepo := &stubTypeRepo{
		types: map[int64]*model.CommunicationType{
			2: {ID: 2, Code: "ID_CARD", DisplayName: "Member ID Card", IsActive: true},
		},
	}
	catalog := &stubCatalog{
		statuses: map[string]*model.GlobalStatus{
			"ReadyForRelease": {ID: 101, Code: "ReadyForRelease", Phase: model.PhaseCreation, IsActive: true},
			"Printed":         {ID: 102, Code: "Printed", Phase: model.PhaseProduction, IsActive: true},
		},
	}

	svc := communication.NewService(repo, typeRepo, stubMemberRepo{}, catalog, stubPolicy{}, nil, metrics.NewForTesting(), zerolog.Nop())
	typeSvc := commtype.NewService(typeRepo, nil, nil, zerolog.Nop())
	pub := &recordingPublisher{}

	h := NewHandler(svc, typeSvc, pub, zerolog.Nop())
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))

	return &handlerFixture{engine: engine, repo: repo, publisher: pub}
}

// A manual status change must write exactly once and stay off the broker:
// the consumer subscribes to communication.*, so an outbound change event
// would come straight back and apply the transition a second time.
func TestChangeStatusDoesNotPublish(t *testing.T) {
	f := newHandlerFixture(t)

	body := strings.NewReader(`{"newStatus": "Printed"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/communications/10/status", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.repo.transitions, "exactly one transition per request")
	assert.Equal(t, 0, f.publisher.created, "manual changes stay off the broker")
}

func TestCreateCommunicationPublishesCreatedOnce(t *testing.T) {
	f := newHandlerFixture(t)

	body := strings.NewReader(`{"title": "ID card reissue", "type_id": 2, "member_id": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/communications", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.repo.createCalls)
	assert.Equal(t, 1, f.publisher.created)
}
