package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseworks/servicedesk/internal/domain"
	"github.com/caseworks/servicedesk/internal/events"
	"github.com/caseworks/servicedesk/internal/repository"
	"github.com/caseworks/servicedesk/pkg/apperrors"
)

// CaseService coordinates the service case lifecycle. State mutation is
// owner-exclusive; reads and commenting are open to any authenticated
// caller. The two predicates are kept distinct on purpose.
type CaseService struct {
	cases      repository.CaseRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	CaseRepo    repository.CaseRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
}

// CaseCreateInput describes case creation payload.
type CaseCreateInput struct {
	Title       string
	Description string
	Priority    domain.CasePriority
}

// SearchInput describes backlog search parameters. Absent groups impose no
// restriction; present groups are AND-combined.
type SearchInput struct {
	Term       *string
	States     []domain.CaseState
	Priorities []domain.CasePriority
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	return &CaseService{
		cases:      deps.CaseRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CanModify is the ownership predicate gating state mutation.
func CanModify(caller *domain.User, sc *domain.ServiceCase) bool {
	return caller != nil && sc != nil && sc.OwnerID == caller.ID
}

// CanView is the read predicate: any authenticated caller may read any case.
func CanView(caller *domain.User, _ *domain.ServiceCase) bool {
	return caller != nil
}

// Create opens a new case owned by the caller.
func (s *CaseService) Create(ctx context.Context, owner *domain.User, input CaseCreateInput) (*domain.ServiceCase, error) {
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewInvalidPriority()
	}

	sc := &domain.ServiceCase{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		State:       domain.CaseStateOpen,
		OwnerID:     owner.ID,
	}
	if err := s.cases.Create(ctx, sc); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseCreated,
		CaseID:  sc.ID,
		ActorID: owner.ID,
		Payload: events.CaseCreatedPayload{
			Title:    sc.Title,
			Priority: sc.Priority,
		},
	})
	return sc, nil
}

// Transition overwrites the case state. Any declared target state is
// accepted regardless of the current state; only the owner may transition.
func (s *CaseService) Transition(ctx context.Context, caller *domain.User, caseID int64, newState domain.CaseState) (*domain.ServiceCase, error) {
	sc, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !CanModify(caller, sc) {
		return nil, apperrors.NewForbidden("only the case owner may change its state")
	}
	if !domain.ValidState(newState) {
		return nil, apperrors.NewInvalidState()
	}

	oldState := sc.State
	sc.State = newState
	if err := s.cases.Update(ctx, sc); err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, sc); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseStateChanged,
		CaseID:  sc.ID,
		ActorID: caller.ID,
		Payload: events.CaseStateChangedPayload{
			OldState: oldState,
			NewState: newState,
		},
	})
	return sc, nil
}

// AddComment appends a comment to an existing case. Deliberately no
// ownership check: commenting is open to any authenticated caller.
func (s *CaseService) AddComment(ctx context.Context, author *domain.User, caseID int64, text string) (*domain.Comment, error) {
	sc, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		CaseID:   sc.ID,
		AuthorID: author.ID,
		Text:     strings.TrimSpace(text),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseCommentAdded,
		CaseID:  sc.ID,
		ActorID: author.ID,
		Payload: events.CaseCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			TextPreview: textPreview(comment.Text, 120),
		},
	})
	return comment, nil
}

// ListOwn returns the caller's cases with comments attached.
func (s *CaseService) ListOwn(ctx context.Context, owner *domain.User) ([]domain.ServiceCase, error) {
	cases, err := s.cases.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	return s.attachCommentsAll(ctx, cases)
}

// ListAll returns every case regardless of owner, comments attached.
func (s *CaseService) ListAll(ctx context.Context) ([]domain.ServiceCase, error) {
	cases, err := s.cases.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachCommentsAll(ctx, cases)
}

// Get returns a single case with comments, visible to any caller.
func (s *CaseService) Get(ctx context.Context, caseID int64) (*domain.ServiceCase, error) {
	sc, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Search evaluates the combined filter over the full backlog. Visibility
// matches ListAll, not ListOwn.
func (s *CaseService) Search(ctx context.Context, input SearchInput) ([]domain.ServiceCase, error) {
	filter := repository.CaseFilter{
		SearchTerm: input.Term,
		States:     input.States,
		Priorities: input.Priorities,
	}
	cases, err := s.cases.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.attachCommentsAll(ctx, cases)
}

func (s *CaseService) getCase(ctx context.Context, caseID int64) (*domain.ServiceCase, error) {
	sc, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service case")
		}
		return nil, err
	}
	return sc, nil
}

func (s *CaseService) attachComments(ctx context.Context, sc *domain.ServiceCase) error {
	comments, err := s.comments.ListByCase(ctx, sc.ID)
	if err != nil {
		return err
	}
	sc.Comments = comments
	return nil
}

func (s *CaseService) attachCommentsAll(ctx context.Context, cases []domain.ServiceCase) ([]domain.ServiceCase, error) {
	for i := range cases {
		if err := s.attachComments(ctx, &cases[i]); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func textPreview(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}
