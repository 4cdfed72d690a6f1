package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caseworks/servicedesk/internal/domain"
	"github.com/caseworks/servicedesk/internal/events"
	"github.com/caseworks/servicedesk/internal/repository"
	"github.com/caseworks/servicedesk/internal/service"
	"github.com/caseworks/servicedesk/pkg/apperrors"
)

type caseRepoMock struct {
	mock.Mock
}

func (m *caseRepoMock) Create(ctx context.Context, sc *domain.ServiceCase) error {
	args := m.Called(ctx, sc)
	return args.Error(0)
}

func (m *caseRepoMock) Update(ctx context.Context, sc *domain.ServiceCase) error {
	args := m.Called(ctx, sc)
	return args.Error(0)
}

func (m *caseRepoMock) GetByID(ctx context.Context, id int64) (*domain.ServiceCase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceCase), args.Error(1)
}

func (m *caseRepoMock) ListByOwner(ctx context.Context, ownerID int64) ([]domain.ServiceCase, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceCase), args.Error(1)
}

func (m *caseRepoMock) ListAll(ctx context.Context) ([]domain.ServiceCase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceCase), args.Error(1)
}

func (m *caseRepoMock) ListWithFilter(ctx context.Context, filter repository.CaseFilter) ([]domain.ServiceCase, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceCase), args.Error(1)
}

type commentRepoMock struct {
	mock.Mock
}

func (m *commentRepoMock) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *commentRepoMock) ListByCase(ctx context.Context, caseID int64) ([]domain.Comment, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func newCaseService(cases *caseRepoMock, comments *commentRepoMock, dispatcher events.Dispatcher) *service.CaseService {
	return service.NewCaseService(service.CaseDependencies{
		CaseRepo:    cases,
		CommentRepo: comments,
		Dispatcher:  dispatcher,
	})
}

func TestCaseService_Create(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: 1, Username: "alice"}

	t.Run("rejects unknown priority", func(t *testing.T) {
		cases := &caseRepoMock{}
		svc := newCaseService(cases, &commentRepoMock{}, nil)

		_, err := svc.Create(ctx, owner, service.CaseCreateInput{
			Title:       "Login broken",
			Description: "Cannot sign in",
			Priority:    domain.CasePriority("URGENT"),
		})
		assertCode(t, err, apperrors.CodeInvalidPriority)
		cases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("opens the case for the caller", func(t *testing.T) {
		cases := &caseRepoMock{}
		cases.On("Create", mock.Anything, mock.MatchedBy(func(sc *domain.ServiceCase) bool {
			return sc.Title == "Login broken" && sc.State == domain.CaseStateOpen && sc.OwnerID == owner.ID
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.ServiceCase).ID = 10
		}).Return(nil).Once()

		dispatcher := events.NewInMemoryDispatcher()
		var published []events.Event
		dispatcher.Subscribe(events.EventCaseCreated, func(_ context.Context, e events.Event) error {
			published = append(published, e)
			return nil
		})

		svc := newCaseService(cases, &commentRepoMock{}, dispatcher)

		sc, err := svc.Create(ctx, owner, service.CaseCreateInput{
			Title:       "  Login broken  ",
			Description: "Cannot sign in",
			Priority:    domain.CasePriorityHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), sc.ID)
		assert.Equal(t, domain.CaseStateOpen, sc.State)
		assert.Equal(t, "Login broken", sc.Title)

		require.Len(t, published, 1)
		assert.Equal(t, int64(10), published[0].CaseID)
		cases.AssertExpectations(t)
	})
}

func TestCaseService_Transition(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: 1, Username: "alice"}
	stranger := &domain.User{ID: 2, Username: "bob"}

	existing := func(state domain.CaseState) *domain.ServiceCase {
		return &domain.ServiceCase{ID: 10, Title: "Login broken", State: state, OwnerID: owner.ID}
	}

	t.Run("unknown case", func(t *testing.T) {
		cases := &caseRepoMock{}
		cases.On("GetByID", mock.Anything, int64(99)).Return(nil, pgx.ErrNoRows).Once()
		svc := newCaseService(cases, &commentRepoMock{}, nil)

		_, err := svc.Transition(ctx, owner, 99, domain.CaseStateClosed)
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("non-owner is forbidden regardless of target state", func(t *testing.T) {
		for _, target := range []domain.CaseState{
			domain.CaseStateOpen, domain.CaseStateInProgress, domain.CaseStateTest, domain.CaseStateClosed,
		} {
			cases := &caseRepoMock{}
			cases.On("GetByID", mock.Anything, int64(10)).Return(existing(domain.CaseStateOpen), nil).Once()
			svc := newCaseService(cases, &commentRepoMock{}, nil)

			_, err := svc.Transition(ctx, stranger, 10, target)
			assertCode(t, err, apperrors.CodeForbidden)
			cases.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		}
	})

	t.Run("rejects undeclared state", func(t *testing.T) {
		cases := &caseRepoMock{}
		cases.On("GetByID", mock.Anything, int64(10)).Return(existing(domain.CaseStateOpen), nil).Once()
		svc := newCaseService(cases, &commentRepoMock{}, nil)

		_, err := svc.Transition(ctx, owner, 10, domain.CaseState("ARCHIVED"))
		assertCode(t, err, apperrors.CodeInvalidState)
		cases.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("owner may move between any declared states", func(t *testing.T) {
		// deliberately permissive: even CLOSED back to OPEN is accepted
		transitions := []struct {
			from, to domain.CaseState
		}{
			{domain.CaseStateOpen, domain.CaseStateClosed},
			{domain.CaseStateClosed, domain.CaseStateOpen},
			{domain.CaseStateTest, domain.CaseStateInProgress},
		}
		for _, tr := range transitions {
			cases := &caseRepoMock{}
			comments := &commentRepoMock{}
			cases.On("GetByID", mock.Anything, int64(10)).Return(existing(tr.from), nil).Once()
			cases.On("Update", mock.Anything, mock.MatchedBy(func(sc *domain.ServiceCase) bool {
				return sc.State == tr.to
			})).Return(nil).Once()
			comments.On("ListByCase", mock.Anything, int64(10)).Return([]domain.Comment{}, nil).Once()
			svc := newCaseService(cases, comments, nil)

			sc, err := svc.Transition(ctx, owner, 10, tr.to)
			require.NoError(t, err, "%s -> %s", tr.from, tr.to)
			assert.Equal(t, tr.to, sc.State)
			cases.AssertExpectations(t)
		}
	})

	t.Run("publishes state change event", func(t *testing.T) {
		cases := &caseRepoMock{}
		comments := &commentRepoMock{}
		cases.On("GetByID", mock.Anything, int64(10)).Return(existing(domain.CaseStateOpen), nil).Once()
		cases.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		comments.On("ListByCase", mock.Anything, int64(10)).Return([]domain.Comment{}, nil).Once()

		dispatcher := events.NewInMemoryDispatcher()
		var published []events.Event
		dispatcher.Subscribe(events.EventCaseStateChanged, func(_ context.Context, e events.Event) error {
			published = append(published, e)
			return nil
		})
		svc := newCaseService(cases, comments, dispatcher)

		_, err := svc.Transition(ctx, owner, 10, domain.CaseStateClosed)
		require.NoError(t, err)
		require.Len(t, published, 1)
		payload, ok := published[0].Payload.(events.CaseStateChangedPayload)
		require.True(t, ok)
		assert.Equal(t, domain.CaseStateOpen, payload.OldState)
		assert.Equal(t, domain.CaseStateClosed, payload.NewState)
	})
}

func TestCaseService_AddComment(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: 1, Username: "alice"}
	stranger := &domain.User{ID: 2, Username: "bob"}

	t.Run("unknown case", func(t *testing.T) {
		cases := &caseRepoMock{}
		cases.On("GetByID", mock.Anything, int64(99)).Return(nil, pgx.ErrNoRows).Once()
		svc := newCaseService(cases, &commentRepoMock{}, nil)

		_, err := svc.AddComment(ctx, owner, 99, "hello")
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("any authenticated caller may comment", func(t *testing.T) {
		cases := &caseRepoMock{}
		comments := &commentRepoMock{}
		cases.On("GetByID", mock.Anything, int64(10)).
			Return(&domain.ServiceCase{ID: 10, OwnerID: owner.ID}, nil).Once()
		comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.CaseID == 10 && c.AuthorID == stranger.ID && c.Text == "looking into this"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Comment).ID = 5
		}).Return(nil).Once()
		svc := newCaseService(cases, comments, nil)

		comment, err := svc.AddComment(ctx, stranger, 10, "  looking into this  ")
		require.NoError(t, err)
		assert.Equal(t, int64(5), comment.ID)
		assert.Equal(t, stranger.ID, comment.AuthorID)
		comments.AssertExpectations(t)
	})
}

func TestCaseService_Listings(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: 1, Username: "alice"}

	t.Run("list own scopes to the caller and attaches comments", func(t *testing.T) {
		cases := &caseRepoMock{}
		comments := &commentRepoMock{}
		cases.On("ListByOwner", mock.Anything, owner.ID).
			Return([]domain.ServiceCase{{ID: 10, OwnerID: owner.ID}}, nil).Once()
		comments.On("ListByCase", mock.Anything, int64(10)).
			Return([]domain.Comment{{ID: 1, CaseID: 10, Text: "first"}}, nil).Once()
		svc := newCaseService(cases, comments, nil)

		result, err := svc.ListOwn(ctx, owner)
		require.NoError(t, err)
		require.Len(t, result, 1)
		require.Len(t, result[0].Comments, 1)
		assert.Equal(t, "first", result[0].Comments[0].Text)
	})

	t.Run("list all returns other owners' cases", func(t *testing.T) {
		cases := &caseRepoMock{}
		comments := &commentRepoMock{}
		cases.On("ListAll", mock.Anything).
			Return([]domain.ServiceCase{{ID: 10, OwnerID: 1}, {ID: 11, OwnerID: 2}}, nil).Once()
		comments.On("ListByCase", mock.Anything, mock.Anything).Return([]domain.Comment{}, nil)
		svc := newCaseService(cases, comments, nil)

		result, err := svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("get unknown case", func(t *testing.T) {
		cases := &caseRepoMock{}
		cases.On("GetByID", mock.Anything, int64(99)).Return(nil, pgx.ErrNoRows).Once()
		svc := newCaseService(cases, &commentRepoMock{}, nil)

		_, err := svc.Get(ctx, 99)
		assertCode(t, err, apperrors.CodeNotFound)
	})
}

func TestCaseService_Search(t *testing.T) {
	ctx := context.Background()
	term := "login"

	cases := &caseRepoMock{}
	comments := &commentRepoMock{}
	cases.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.CaseFilter) bool {
		return f.OwnerID == nil && f.SearchTerm != nil && *f.SearchTerm == term &&
			len(f.States) == 1 && f.States[0] == domain.CaseStateOpen && len(f.Priorities) == 0
	})).Return([]domain.ServiceCase{{ID: 10, Title: "Login broken", State: domain.CaseStateOpen}}, nil).Once()
	comments.On("ListByCase", mock.Anything, int64(10)).Return([]domain.Comment{}, nil).Once()
	svc := newCaseService(cases, comments, nil)

	result, err := svc.Search(ctx, service.SearchInput{
		Term:   &term,
		States: []domain.CaseState{domain.CaseStateOpen},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Login broken", result[0].Title)
	cases.AssertExpectations(t)
}

func TestAuthorizationPredicates(t *testing.T) {
	owner := &domain.User{ID: 1}
	stranger := &domain.User{ID: 2}
	sc := &domain.ServiceCase{ID: 10, OwnerID: 1}

	assert.True(t, service.CanModify(owner, sc))
	assert.False(t, service.CanModify(stranger, sc))
	assert.False(t, service.CanModify(nil, sc))

	assert.True(t, service.CanView(owner, sc))
	assert.True(t, service.CanView(stranger, sc))
	assert.False(t, service.CanView(nil, sc))
}
