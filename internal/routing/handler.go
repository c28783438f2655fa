package routing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-mes/meridian-mes/internal/export"
	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Show)
	r.Post("/", h.RegisterBatch)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	steps, total, err := h.service.List(r.Context(), listFilters(r))
	if err != nil {
		h.logger.Error("list routing steps failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListStepsResponse{RoutingSteps: steps, Total: total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	step, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get routing step failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, step)
}

func (h *Handler) RegisterBatch(w http.ResponseWriter, r *http.Request) {
	var req RegisterBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, err := h.service.RegisterBatch(r.Context(), req)
	if err != nil {
		h.logger.Error("register routing batch failed", "error", err)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"routing_steps": created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateStepRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, req); err != nil {
		h.logger.Error("update routing step failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete routing step failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	filters.Limit = 0
	steps, _, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("export routing steps failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	rows := make([]map[string]any, 0, len(steps))
	for _, step := range steps {
		rows = append(rows, map[string]any{
			"code":    step.ProcessCode,
			"name":    step.ProcessName,
			"minutes": step.StandardTime,
			"remark":  step.Remark,
		})
	}
	workbook, err := export.BuildWorkbook(export.Sheet{
		Title: "라우팅_등록현황",
		Columns: []export.Column{
			{Key: "code", Label: "공정코드", Kind: export.KindText},
			{Key: "name", Label: "공정명", Kind: export.KindText},
			{Key: "minutes", Label: "표준시간(분)", Kind: export.KindNumber},
			{Key: "remark", Label: "비고", Kind: export.KindText},
		},
		Rows: rows,
	})
	if err != nil {
		h.logger.Error("build routing workbook failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := export.WriteAttachment(w, "라우팅_등록현황.xlsx", workbook); err != nil {
		h.logger.Error("write routing workbook failed", "error", err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid routing step id")
		return 0, false
	}
	return id, true
}

func listFilters(r *http.Request) shared.ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	return shared.ListFilters{
		Page:     page,
		Limit:    limit,
		Criteria: r.URL.Query().Get("criteria"),
		Query:    r.URL.Query().Get("query"),
	}
}

func respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "routing step not found")
	case errors.Is(err, httpx.ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "routing step is referenced by an order item")
	default:
		httpx.RespondError(w, err)
	}
}
