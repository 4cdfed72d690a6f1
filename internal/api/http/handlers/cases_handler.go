package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/caseworks/servicedesk/internal/api/dto"
	"github.com/caseworks/servicedesk/internal/auth"
	"github.com/caseworks/servicedesk/internal/domain"
	"github.com/caseworks/servicedesk/internal/service"
	"github.com/caseworks/servicedesk/pkg/apperrors"
)

// CasesHandler manages service case endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// Create POST /cases.
func (h *CasesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}

	sc, err := h.service.Create(c.Context(), user, service.CaseCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": caseResponse(sc)})
}

// ListMine GET /cases/mine.
func (h *CasesHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	cases, err := h.service.ListOwn(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponses(cases)})
}

// ListAll GET /cases.
func (h *CasesHandler) ListAll(c *fiber.Ctx) error {
	cases, err := h.service.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponses(cases)})
}

// Search GET /cases/search.
func (h *CasesHandler) Search(c *fiber.Ctx) error {
	input := service.SearchInput{}
	if term := c.Query("q"); term != "" {
		input.Term = &term
	}
	if stateStr := c.Query("state"); stateStr != "" {
		for _, part := range strings.Split(stateStr, ",") {
			input.States = append(input.States, domain.CaseState(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			input.Priorities = append(input.Priorities, domain.CasePriority(strings.TrimSpace(part)))
		}
	}

	cases, err := h.service.Search(c.Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponses(cases)})
}

// Get GET /cases/:id.
func (h *CasesHandler) Get(c *fiber.Ctx) error {
	caseID, err := parseCaseID(c)
	if err != nil {
		return err
	}
	sc, err := h.service.Get(c.Context(), caseID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(sc)})
}

// UpdateState PUT /cases/:id/state.
func (h *CasesHandler) UpdateState(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	caseID, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sc, err := h.service.Transition(c.Context(), user, caseID, req.State)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(sc)})
}

// AddComment POST /cases/:id/comments.
func (h *CasesHandler) AddComment(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	caseID, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}

	comment, err := h.service.AddComment(c.Context(), user, caseID, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

func parseCaseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid case id", nil)
	}
	return id, nil
}

func caseResponse(sc *domain.ServiceCase) dto.CaseResponse {
	comments := make([]dto.CommentResponse, 0, len(sc.Comments))
	for i := range sc.Comments {
		comments = append(comments, commentResponse(&sc.Comments[i]))
	}
	return dto.CaseResponse{
		ID:          sc.ID,
		Title:       sc.Title,
		Description: sc.Description,
		Priority:    sc.Priority,
		State:       sc.State,
		OwnerID:     sc.OwnerID,
		CreatedAt:   sc.CreatedAt,
		Comments:    comments,
	}
}

func caseResponses(cases []domain.ServiceCase) []dto.CaseResponse {
	items := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, caseResponse(&cases[i]))
	}
	return items
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		CaseID:    comment.CaseID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}
