package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/optimizer"
	"github.com/dharmasatrya/skyfare/internal/store"
)

type OptimizeRequest struct {
	Options optimizer.Options `json:"options"`
}

type MultiCityRequest struct {
	Criteria models.MultiCityCriteria `json:"criteria"`
	Flights  []models.FlightResult    `json:"flights"`
}

// OptimizeHandler exposes route optimization over the stored results of a
// completed search.
type OptimizeHandler struct {
	opt      *optimizer.Optimizer
	searches store.SearchStore
	logger   zerolog.Logger
}

func NewOptimizeHandler(opt *optimizer.Optimizer, searches store.SearchStore, logger zerolog.Logger) *OptimizeHandler {
	return &OptimizeHandler{
		opt:      opt,
		searches: searches,
		logger:   logger.With().Str("component", "handler").Logger(),
	}
}

func (h *OptimizeHandler) Optimize(c echo.Context) error {
	ctx := c.Request().Context()
	searchID := c.Param("id")

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	rec, err := h.searches.GetSearch(ctx, searchID)
	if err != nil {
		h.logger.Error().Err(err).Str("search_id", searchID).Msg("search lookup failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "search_not_found",
			Message: "no search with id " + searchID,
			Code:    http.StatusNotFound,
		})
	}

	result, err := h.opt.OptimizeRoute(rec.Criteria, rec.Results, req.Options)
	if err != nil {
		return h.optimizeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *OptimizeHandler) OptimizeMultiCity(c echo.Context) error {
	var req MultiCityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	result, err := h.opt.OptimizeMultiCityRoute(req.Criteria, req.Flights)
	if err != nil {
		return h.optimizeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *OptimizeHandler) optimizeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrNoResultsToOptimize), errors.Is(err, errs.ErrMalformedFlight):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "optimization_error",
			Message: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		})
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "optimization_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
}
