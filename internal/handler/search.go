package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/orchestrator"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type SearchRequest struct {
	models.SearchCriteria
	Airlines []string `json:"airlines"`
}

type SortRequest struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type SearchHandler struct {
	orch   *orchestrator.Orchestrator
	logger zerolog.Logger
}

func NewSearchHandler(orch *orchestrator.Orchestrator, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		orch:   orch,
		logger: logger.With().Str("component", "handler").Logger(),
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	result, err := h.orch.SearchFlights(ctx, req.SearchCriteria, req.Airlines)
	if err != nil {
		return h.searchError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) searchError(c echo.Context, err error) error {
	var vErr models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	case errors.Is(err, errs.ErrConcurrencyLimit):
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "concurrency_limit",
			Message: err.Error(),
			Code:    http.StatusTooManyRequests,
		})
	case errors.Is(err, errs.ErrSearchTimeout):
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error:   "search_timeout",
			Message: err.Error(),
			Code:    http.StatusGatewayTimeout,
		})
	case errors.Is(err, errs.ErrSearchCancelled):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "search_cancelled",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
	case errors.Is(err, errs.ErrAllAirlinesFailed):
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "all_airlines_failed",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})
	default:
		h.logger.Error().Err(err).Msg("search failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}

func (h *SearchHandler) Filter(c echo.Context) error {
	ctx := c.Request().Context()
	searchID := c.Param("id")

	var filters models.SearchFilters
	if err := c.Bind(&filters); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	results, err := h.orch.FilterSearchResults(ctx, searchID, &filters)
	if err != nil {
		return h.resultsError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"search_id":     searchID,
		"total_results": len(results),
		"results":       results,
	})
}

func (h *SearchHandler) Sort(c echo.Context) error {
	ctx := c.Request().Context()
	searchID := c.Param("id")

	var req SortRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	results, err := h.orch.SortSearchResults(ctx, searchID, req.SortBy, req.SortOrder)
	if err != nil {
		return h.resultsError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"search_id":     searchID,
		"total_results": len(results),
		"results":       results,
	})
}

func (h *SearchHandler) resultsError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrSearchNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "search_not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, errs.ErrSearchEmpty):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "search_empty",
			Message: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		})
	default:
		h.logger.Error().Err(err).Msg("results operation failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}

func (h *SearchHandler) GetProgress(c echo.Context) error {
	ctx := c.Request().Context()
	searchID := c.Param("id")

	p, err := h.orch.GetSearchProgress(ctx, searchID)
	if err != nil {
		h.logger.Error().Err(err).Str("search_id", searchID).Msg("progress lookup failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "search_not_found",
			Message: "no search with id " + searchID,
			Code:    http.StatusNotFound,
		})
	}

	return c.JSON(http.StatusOK, p)
}

func (h *SearchHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	searchID := c.Param("id")

	if !h.orch.CancelSearch(ctx, searchID) {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "search_not_found",
			Message: "no active search with id " + searchID,
			Code:    http.StatusNotFound,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"search_id": searchID,
		"status":    "cancelled",
	})
}

func (h *SearchHandler) Health(c echo.Context) error {
	report := h.orch.HealthCheck(c.Request().Context())

	code := http.StatusOK
	if report.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, report)
}
