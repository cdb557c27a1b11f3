package dashboardhttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/meridian-fin/meridian/internal/dashboard"
	"github.com/meridian-fin/meridian/internal/platform/httpx"
)

// SummaryService defines the aggregation contract used by the handler.
type SummaryService interface {
	Summarize(ctx context.Context, predicate dashboard.FilterPredicate, now time.Time) (dashboard.KpiSummary, error)
}

// Handler serves the dashboard summary endpoint.
type Handler struct {
	logger   *slog.Logger
	service  SummaryService
	validate *validator.Validate
	now      func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service SummaryService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// summaryQuery is the transport shape of a summary request; dates arrive as
// YYYY-MM-DD, ids as positive integers. Semantic range validation stays with
// the filter composer.
type summaryQuery struct {
	Start      string `validate:"required,datetime=2006-01-02"`
	End        string `validate:"required,datetime=2006-01-02"`
	CategoryID string `validate:"omitempty,number"`
	ProductID  string `validate:"omitempty,number"`
	Region     string `validate:"omitempty,max=120"`
	CustomerID string `validate:"omitempty,number"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := summaryQuery{
		Start:      values.Get("start"),
		End:        values.Get("end"),
		CategoryID: values.Get("category_id"),
		ProductID:  values.Get("product_id"),
		Region:     values.Get("region"),
		CustomerID: values.Get("customer_id"),
	}
	if err := h.validate.Struct(q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}

	raw, err := buildRawFilter(q)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	predicate, err := dashboard.ComposeFilter(raw)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), predicate, h.now().UTC())
	if err != nil {
		h.logger.Warn("summarize dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	httpx.JSON(w, http.StatusOK, summary)
}

func buildRawFilter(q summaryQuery) (dashboard.RawFilter, error) {
	start, err := time.Parse(time.DateOnly, q.Start)
	if err != nil {
		return dashboard.RawFilter{}, err
	}
	end, err := time.Parse(time.DateOnly, q.End)
	if err != nil {
		return dashboard.RawFilter{}, err
	}

	raw := dashboard.RawFilter{Start: start, End: end, Region: q.Region}
	if raw.CategoryID, err = parseID(q.CategoryID); err != nil {
		return dashboard.RawFilter{}, err
	}
	if raw.ProductID, err = parseID(q.ProductID); err != nil {
		return dashboard.RawFilter{}, err
	}
	if raw.CustomerID, err = parseID(q.CustomerID); err != nil {
		return dashboard.RawFilter{}, err
	}
	return raw, nil
}

func parseID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
