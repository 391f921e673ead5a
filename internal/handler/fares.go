package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/consolidate"
	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/report"
	"github.com/dharmasatrya/faresweep/internal/search"
	"github.com/dharmasatrya/faresweep/internal/storage"
)

type FareHandler struct {
	orchestrator *search.Orchestrator
	store        *storage.Store
	logger       *zap.Logger
	now          func() time.Time
}

func NewFareHandler(orch *search.Orchestrator, store *storage.Store, logger *zap.Logger) *FareHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FareHandler{
		orchestrator: orch,
		store:        store,
		logger:       logger.Named("handler"),
		now:          time.Now,
	}
}

// Sweep runs a full date-pair sweep. With ?save=true the result is also
// written as a search file that later consolidations pick up.
func (h *FareHandler) Sweep(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var params models.SearchParameters
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	result, err := h.orchestrator.Run(ctx, params)
	if err != nil {
		var setupErr *models.SetupError
		switch {
		case errors.As(err, &setupErr):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "search_canceled",
				Message: "Search was canceled before completion",
				Code:    http.StatusServiceUnavailable,
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "search_error",
				Message: "Failed to search fares: " + err.Error(),
				Code:    http.StatusInternalServerError,
			})
		}
	}

	now := h.now()
	searchID := uuid.NewString()
	consolidated := consolidate.Consolidate(result.Outcomes)
	rep := report.Build(consolidated.All, consolidate.DefaultTopN, result.Params, now)
	rep.Log.FailedPairs = result.Progress.Errored
	rep.Log.NoResult = result.Progress.NoResult

	resp := SweepResponse{
		SearchID: searchID,
		Params:   result.Params,
		State:    result.State,
		Progress: result.Progress,
		Outcomes: result.Outcomes,
		Failures: failures(result.Errors),
		Report:   rep,
	}

	if save, _ := strconv.ParseBool(c.QueryParam("save")); save && h.store != nil {
		path, err := h.store.SaveSearch(result.File(searchID, now), now)
		if err != nil {
			h.logger.Error("failed to save search", zap.String("search_id", searchID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "storage_error",
				Message: "Failed to save search: " + err.Error(),
				Code:    http.StatusInternalServerError,
			})
		}
		resp.SavedTo = path
	}

	resp.SearchTimeMs = time.Since(startTime).Milliseconds()
	return c.JSON(http.StatusOK, resp)
}

// Consolidate merges outcome collections posted by the client.
func (h *FareHandler) Consolidate(c echo.Context) error {
	var req ConsolidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if len(req.Sources) == 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "at least one source is required",
			Code:    http.StatusBadRequest,
		})
	}
	topN := req.TopN
	if topN <= 0 {
		topN = consolidate.DefaultTopN
	}

	res := consolidate.Consolidate(req.Sources...)
	params := models.SearchParameters{
		Origin:      strings.ToUpper(req.Origin),
		Destination: strings.ToUpper(req.Destination),
	}

	return c.JSON(http.StatusOK, ConsolidateResponse{
		Considered: res.Considered,
		Eligible:   res.Eligible,
		Top:        res.Top(topN),
		All:        res.All,
		Report:     report.Build(res.All, topN, params, h.now()),
	})
}

// Report consolidates the search files stored for a route.
func (h *FareHandler) Report(c echo.Context) error {
	origin := strings.ToUpper(c.QueryParam("origin"))
	destination := strings.ToUpper(c.QueryParam("destination"))
	if origin == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "origin and destination are required",
			Code:    http.StatusBadRequest,
		})
	}

	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "md" && format != "html" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "format must be one of json, md, html",
			Code:    http.StatusBadRequest,
		})
	}

	loaded, err := consolidate.LoadFiles(h.store.SearchPattern(origin, destination), h.logger)
	if err != nil {
		if errors.Is(err, consolidate.ErrNoFiles) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "No search files for " + origin + "-" + destination,
				Code:    http.StatusNotFound,
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "load_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	res := consolidate.Consolidate(loaded.Sources()...)
	rep := report.Build(res.All, consolidate.DefaultTopN, loaded.Params(origin, destination), h.now())
	for _, f := range loaded.Failed {
		rep.Log.SkippedFiles = append(rep.Log.SkippedFiles, f.Path)
	}

	switch format {
	case "md":
		return c.Blob(http.StatusOK, "text/markdown; charset=UTF-8", []byte(report.RenderMarkdown(rep)))
	case "html":
		out, err := report.RenderHTML(rep)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "render_error",
				Message: err.Error(),
				Code:    http.StatusInternalServerError,
			})
		}
		return c.HTML(http.StatusOK, out)
	}
	return c.JSON(http.StatusOK, rep)
}

func failures(errs []search.PairError) []PairFailure {
	out := make([]PairFailure, 0, len(errs))
	for _, e := range errs {
		key := e.Pair.Key()
		out = append(out, PairFailure{
			DepartureDate: key.Departure,
			ReturnDate:    key.Return,
			Category:      string(e.Err.Category),
			Message:       e.Err.Error(),
		})
	}
	return out
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
