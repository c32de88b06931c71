package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/trainsearch/internal/command"
	"github.com/dharmasatrya/trainsearch/internal/logging"
	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/parser"
)

type SearchHandler struct {
	service *command.Service
	logger  *slog.Logger
}

func NewSearchHandler(svc *command.Service, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Register mounts the command routes on e.
func (h *SearchHandler) Register(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/journey", h.Journey)
	api.GET("/stations", h.Stations)
	api.GET("/help", HelpHandler)
	e.GET("/health", HealthHandler)
}

func (h *SearchHandler) Journey(c echo.Context) error {
	startTime := time.Now()

	var req models.JourneyCommand
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}

	result, err := h.service.Journey(c.Request().Context(), req.Text)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, models.JourneyResponse{
		Reply:        result.Reply,
		Request:      result.Request,
		Origin:       result.Origin,
		Destination:  result.Destination,
		Provider:     result.Provider,
		Notes:        result.Diagnostics,
		Departures:   result.Departures,
		SearchTimeMs: time.Since(startTime).Milliseconds(),
	})
}

func (h *SearchHandler) Stations(c echo.Context) error {
	startTime := time.Now()

	var req models.StationsCommand
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse query parameters: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}

	result, err := h.service.Stations(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, models.StationsResponse{
		Reply:        result.Reply,
		Provider:     result.Provider,
		Notes:        result.Notes,
		Stations:     result.Stations,
		SearchTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// fail maps command errors to status codes. The message is always the
// reply the user would see.
func (h *SearchHandler) fail(c echo.Context, err error) error {
	var (
		validation models.ValidationError
		notFound   models.NotFoundError
		parseErr   *parser.ParseError
		stageErr   *command.StageError
	)

	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	case errors.As(err, &parseErr):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "parse_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.As(err, &stageErr):
		logging.LogError(h.logger, "all providers failed", err, slog.String("stage", stageErr.Stage))
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "providers_unavailable",
			Message: err.Error(),
			Notes:   stageErr.Notes(),
			Code:    http.StatusBadGateway,
		})
	default:
		logging.LogError(h.logger, "command failed", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search departures: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}

func HelpHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"reply": command.HelpMessage,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
