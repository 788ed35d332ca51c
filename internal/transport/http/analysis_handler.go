package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "marketpulse/internal/errors"
	"marketpulse/internal/services"
)

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/", h.RunAnalysis)
		r.Get("/prices", h.GetPrices)
		r.Get("/returns", h.GetReturns)
		r.Get("/statistics", h.GetStatistics)
		r.Get("/correlation", h.GetCorrelation)
		r.Get("/volatility", h.GetVolatility)
		r.Get("/trends", h.GetTrends)
		r.Get("/risk-return", h.GetRiskReturn)
	})
}

// RunAnalysis executes the full pipeline for a JSON request body and
// returns the complete result bundle.
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.AnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode analysis request",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInvalidRequest)
		return
	}

	result, err := h.run(w, r, req)
	if err != nil {
		return
	}
	render.JSON(w, r, result)
}

// GetPrices returns the aligned price frame in long form.
func (h *AnalysisHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"prices":       result.Prices.ToLong(),
	})
}

// GetReturns returns the period return frame in long form.
func (h *AnalysisHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"returns":      result.Returns.ToLong(),
	})
}

// GetStatistics returns per-ticker descriptive statistics of returns.
func (h *AnalysisHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"statistics":   result.Summaries,
	})
}

// GetCorrelation returns the pairwise return correlation matrix.
func (h *AnalysisHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"correlation":  result.Correlation,
	})
}

// GetVolatility returns the rolling volatility frame in long form.
func (h *AnalysisHandler) GetVolatility(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"volatility":   result.Volatility.ToLong(),
	})
}

// GetTrends returns per-ticker trend, drawdown, and cumulative return.
func (h *AnalysisHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"reports":      result.Reports,
	})
}

// GetRiskReturn returns the risk-return profile.
func (h *AnalysisHandler) GetRiskReturn(w http.ResponseWriter, r *http.Request) {
	result, err := h.runFromQuery(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"profile":      result.Profile,
	})
}

// runFromQuery parses the query parameters and executes the pipeline,
// writing the error response itself on failure so handlers can simply
// return.
func (h *AnalysisHandler) runFromQuery(w http.ResponseWriter, r *http.Request) (*services.AnalysisResult, error) {
	req, err := requestFromQuery(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "bad query parameter",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameter", err.Error()))
		return nil, err
	}
	return h.run(w, r, req)
}

// run executes the pipeline and writes the error response itself on
// failure so handlers can simply return.
func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request, req services.AnalysisRequest) (*services.AnalysisResult, error) {
	ctx := r.Context()

	result, err := h.service.Run(ctx, req)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.Is(err, services.ErrInvalidRequest) {
			apiErr = apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
		} else {
			apiErr = apierrors.FromDomain(err)
		}
		if apiErr.StatusCode >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "analysis run failed",
				slog.String("error", err.Error()))
		} else {
			h.logger.WarnContext(ctx, "analysis request rejected",
				slog.String("error", err.Error()))
		}
		render.Render(w, r, apiErr)
		return nil, err
	}
	return result, nil
}

// requestFromQuery builds an analysis request from GET query
// parameters: tickers is comma separated, the rest map one to one. A
// window value that is not an integer is rejected rather than silently
// falling back to the configured default.
func requestFromQuery(r *http.Request) (services.AnalysisRequest, error) {
	q := r.URL.Query()

	var tickers []string
	for _, part := range strings.Split(q.Get("tickers"), ",") {
		if t := strings.TrimSpace(part); t != "" {
			tickers = append(tickers, strings.ToUpper(t))
		}
	}

	window := 0
	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return services.AnalysisRequest{}, fmt.Errorf("window must be an integer, got %q", v)
		}
		window = n
	}

	return services.AnalysisRequest{
		Tickers:    tickers,
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Align:      q.Get("align"),
		FillPolicy: q.Get("fill_policy"),
		ReturnKind: q.Get("return_kind"),
		Method:     q.Get("method"),
		Window:     window,
	}, nil
}
