package materials

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-mes/meridian-mes/internal/export"
	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Show)
	r.Post("/", h.Register)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/trading", h.SetTrading)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	materials, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list materials failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListMaterialsResponse{
		Materials:  materials,
		Total:      total,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	material, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get material failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, material)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterMaterialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.logger.Error("register material failed", "error", err)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateMaterialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), id, req); err != nil {
		h.logger.Error("update material failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) SetTrading(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req SetTradingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.SetTrading(r.Context(), id, req.IsTrading); err != nil {
		h.logger.Error("set material trading failed", "error", err, "id", id)
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
		h.logger.Error("delete material failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	filters.Limit = 0
	materials, _, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("export materials failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	rows := make([]map[string]any, 0, len(materials))
	for _, m := range materials {
		rows = append(rows, map[string]any{
			"code":         m.Code,
			"name":         m.Name,
			"company":      m.CompanyName,
			"category":     m.Category,
			"color":        m.Color,
			"spec":         m.Spec,
			"manufacturer": m.Manufacturer,
		})
	}
	workbook, err := export.BuildWorkbook(export.Sheet{
		Title: "원자재_등록현황",
		Columns: []export.Column{
			{Key: "code", Label: "품목코드", Kind: export.KindText},
			{Key: "name", Label: "품목명", Kind: export.KindText},
			{Key: "company", Label: "공급업체", Kind: export.KindText},
			{Key: "category", Label: "분류", Kind: export.KindText},
			{Key: "color", Label: "색상", Kind: export.KindText},
			{Key: "spec", Label: "규격", Kind: export.KindText},
			{Key: "manufacturer", Label: "제조사", Kind: export.KindText},
		},
		Rows: rows,
	})
	if err != nil {
		h.logger.Error("build material workbook failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := export.WriteAttachment(w, "원자재_등록현황.xlsx", workbook); err != nil {
		h.logger.Error("write material workbook failed", "error", err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid material id")
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
		SortBy:   r.URL.Query().Get("sort"),
		SortDir:  r.URL.Query().Get("dir"),
	}
}

func respond(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "material not found")
		return
	}
	httpx.RespondError(w, err)
}
