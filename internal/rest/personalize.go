package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stylShop/business/personalize"
	"stylShop/domain"
	"stylShop/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PersonalizeHandler struct {
		validate   *validator.Validate
		service    PersonalizeService
		candidates CandidateSource
		timeout    time.Duration
	}

	PersonalizeService interface {
		Initialize(ctx context.Context, userID uint) error
		GetInitialOrder(ctx context.Context, userID uint, candidates []domain.CandidateItem, allowed []string) []domain.CandidateItem
		Feed(ctx context.Context, userID uint, candidates []domain.CandidateItem, allowed []string) []domain.CandidateItem
		RecordInteraction(ctx context.Context, userID uint, ev domain.InteractionEvent) error
		Rerank(ctx context.Context, userID uint, remaining []domain.CandidateItem) []domain.CandidateItem
		Explain(ctx context.Context, userID uint, candidates []domain.CandidateItem) []domain.ScoreBreakdown
		Profile(ctx context.Context, userID uint) *personalize.AffinityProfile
		ResetProfile(ctx context.Context, userID uint) error
		SetCategoryPreferences(ctx context.Context, userID uint, categories []string) error
	}

	// CandidateSource supplies candidates when a request carries none.
	CandidateSource interface {
		Candidates(ctx context.Context, categories []string) ([]domain.CandidateItem, bool)
	}

	CandidateRequest struct {
		ID        string   `json:"id" validate:"required"`
		Category  string   `json:"category"`
		Brand     string   `json:"brand"`
		Tags      []string `json:"tags"`
		Colors    []string `json:"colors"`
		PriceTier string   `json:"price_tier" validate:"omitempty,oneof=low mid high"`
	}

	// AllowedCategories: absent uses the stored selection, [] disables filtering.
	OrderRequest struct {
		Candidates        []CandidateRequest `json:"candidates" validate:"omitempty,dive"`
		AllowedCategories []string           `json:"allowed_categories"`
	}

	CandidatesRequest struct {
		Candidates []CandidateRequest `json:"candidates" validate:"omitempty,dive"`
	}

	FacetsRequest struct {
		Tags      []string `json:"tags"`
		Category  string   `json:"category"`
		Brand     string   `json:"brand"`
		Colors    []string `json:"colors"`
		PriceTier string   `json:"price_tier" validate:"omitempty,oneof=low mid high"`
	}

	InteractionRequest struct {
		ItemID    string        `json:"item_id" validate:"required"`
		Kind      string        `json:"kind" validate:"required,oneof=view like cart purchase dislike"`
		Timestamp *time.Time    `json:"timestamp"`
		Facets    FacetsRequest `json:"facets"`
	}

	CategoriesRequest struct {
		Categories []string `json:"categories" validate:"dive,oneof=casual formal streetwear seasonal special"`
	}

	OrderResponse struct {
		Items    []domain.CandidateItem `json:"items"`
		Fallback bool                   `json:"fallback"`
	}
)

func NewPersonalizeHandler(svc PersonalizeService, candidates CandidateSource) *PersonalizeHandler {
	return &PersonalizeHandler{
		validate:   validator.New(),
		service:    svc,
		candidates: candidates,
		timeout:    10 * time.Second,
	}
}

func (r CandidateRequest) item() domain.CandidateItem {
	return domain.CandidateItem{
		ID:        r.ID,
		Category:  r.Category,
		Brand:     r.Brand,
		Tags:      r.Tags,
		Colors:    r.Colors,
		PriceTier: domain.PriceTier(r.PriceTier),
	}
}

func toItems(reqs []CandidateRequest) []domain.CandidateItem {
	out := make([]domain.CandidateItem, len(reqs))
	for i, r := range reqs {
		out[i] = r.item()
	}
	return out
}

// resolve returns the request's candidates, or asks the catalog when none were sent.
func (h *PersonalizeHandler) resolve(ctx context.Context, reqs []CandidateRequest, categories []string) ([]domain.CandidateItem, bool) {
	if len(reqs) > 0 || h.candidates == nil {
		return toItems(reqs), false
	}
	return h.candidates.Candidates(ctx, categories)
}

// POST /api/v1/personalize/session
func (h *PersonalizeHandler) StartSession(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.Initialize(ctx, userID); err != nil {
		return c.JSON(http.StatusOK, WarningResponse{
			Message: "session started with an empty profile",
			Warning: "stored profile could not be loaded",
		})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.service.Profile(ctx, userID)))
}

// POST /api/v1/personalize/initial
func (h *PersonalizeHandler) InitialOrder(c echo.Context) error {
	return h.order(c, h.service.GetInitialOrder)
}

// POST /api/v1/personalize/feed
func (h *PersonalizeHandler) Feed(c echo.Context) error {
	return h.order(c, h.service.Feed)
}

func (h *PersonalizeHandler) order(c echo.Context, fn func(context.Context, uint, []domain.CandidateItem, []string) []domain.CandidateItem) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, fallback := h.resolve(ctx, req.Candidates, req.AllowedCategories)
	out := fn(ctx, userID, items, req.AllowedCategories)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(OrderResponse{Items: out, Fallback: fallback}))
}

// POST /api/v1/personalize/interactions
func (h *PersonalizeHandler) RecordInteraction(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req InteractionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ev := domain.InteractionEvent{
		ItemID: req.ItemID,
		Kind:   domain.EventKind(req.Kind),
		Facets: domain.ItemFacets{
			Tags:      req.Facets.Tags,
			Category:  req.Facets.Category,
			Brand:     req.Facets.Brand,
			Colors:    req.Facets.Colors,
			PriceTier: domain.PriceTier(req.Facets.PriceTier),
		},
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.service.RecordInteraction(ctx, userID, ev)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, fres.Response.StatusCreated("interaction recorded"))
	case errors.Is(err, personalize.ErrUnknownEventKind):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, personalize.ErrPersist):
		return c.JSON(http.StatusAccepted, WarningResponse{
			Message: "interaction recorded",
			Warning: "profile not persisted",
		})
	default:
		logger.Error("Failed to record interaction", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
}

// POST /api/v1/personalize/rerank
func (h *PersonalizeHandler) Rerank(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CandidatesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	out := h.service.Rerank(c.Request().Context(), userID, toItems(req.Candidates))

	return c.JSON(http.StatusOK, fres.Response.StatusOK(OrderResponse{Items: out}))
}

// POST /api/v1/personalize/explain
func (h *PersonalizeHandler) Explain(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CandidatesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, _ := h.resolve(ctx, req.Candidates, nil)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.service.Explain(ctx, userID, items)))
}

// GET /api/v1/personalize/profile
func (h *PersonalizeHandler) GetProfile(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.service.Profile(c.Request().Context(), userID)))
}

// DELETE /api/v1/personalize/profile
func (h *PersonalizeHandler) ResetProfile(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.ResetProfile(ctx, userID); err != nil {
		if errors.Is(err, personalize.ErrPersist) {
			return c.JSON(http.StatusAccepted, WarningResponse{
				Message: "profile reset",
				Warning: "profile not persisted",
			})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("profile reset"))
}

// PUT /api/v1/personalize/categories
func (h *PersonalizeHandler) SetCategories(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CategoriesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.SetCategoryPreferences(ctx, userID, req.Categories); err != nil {
		if errors.Is(err, personalize.ErrPersist) {
			return c.JSON(http.StatusAccepted, WarningResponse{
				Message: "categories updated",
				Warning: "profile not persisted",
			})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(req.Categories))
}
