package optionshttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-fin/meridian/internal/options"
	"github.com/meridian-fin/meridian/internal/platform/httpx"
)

// OptionsService defines the resolver contract used by the handler.
type OptionsService interface {
	Resolve(ctx context.Context, query options.Query) (options.Page, error)
}

// Handler serves the entity options endpoint.
type Handler struct {
	logger   *slog.Logger
	service  OptionsService
	validate *validator.Validate
}

// NewHandler constructs the options HTTP handler.
func NewHandler(logger *slog.Logger, service OptionsService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// optionsQuery is the transport-shape of a resolver request. Semantic
// invariants (kind membership, cursor integrity, limit bounds) stay with the
// core, which re-validates them itself.
type optionsQuery struct {
	Kind   string `validate:"required,max=64"`
	Search string `validate:"omitempty,max=200"`
	Cursor string `validate:"omitempty,max=1024"`
	Limit  int    `validate:"omitempty,gte=0"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := optionsQuery{
		Kind:   chi.URLParam(r, "kind"),
		Search: r.URL.Query().Get("search"),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Limit", "limit must be an integer")
			return
		}
		q.Limit = limit
	}
	if err := h.validate.Struct(q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}

	page, err := h.service.Resolve(r.Context(), options.Query{
		Kind:   options.EntityKind(q.Kind),
		Search: q.Search,
		Cursor: q.Cursor,
		Limit:  q.Limit,
	})
	if err != nil {
		h.logger.Warn("resolve options", slog.String("kind", q.Kind), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=30")
	httpx.JSON(w, http.StatusOK, page)
}
