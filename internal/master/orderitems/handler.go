package orderitems

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-mes/meridian-mes/internal/export"
	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

const maxImageUploadBytes = 32 << 20

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
	r.Put("/{id}/images", h.UpdateImages)
	r.Patch("/{id}/trading", h.SetTrading)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list order items failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListOrderItemsResponse{
		OrderItems: items,
		Total:      total,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get order item failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterOrderItemRequest
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
		h.logger.Error("register order item failed", "error", err)
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
	var req UpdateOrderItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), id, req); err != nil {
		h.logger.Error("update order item failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// UpdateImages handles the one multipart endpoint: a JSON manifest part plus
// the raw bytes of newly attached files.
func (h *Handler) UpdateImages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed multipart body")
		return
	}
	var manifest []ImageManifestEntry
	if err := json.Unmarshal([]byte(r.FormValue("manifest")), &manifest); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed image manifest")
		return
	}

	uploads := make(map[string]io.Reader)
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	if r.MultipartForm != nil {
		for _, headers := range r.MultipartForm.File {
			for _, header := range headers {
				f, err := header.Open()
				if err != nil {
					httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unreadable file part "+header.Filename)
					return
				}
				closers = append(closers, f)
				uploads[header.Filename] = f
			}
		}
	}

	images, err := h.service.UpdateImages(r.Context(), id, manifest, uploads)
	if err != nil {
		h.logger.Error("update order item images failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"images": images})
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
		h.logger.Error("set order item trading failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	filters.Limit = 0
	items, _, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("export order items failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]any{
			"code":           item.Code,
			"name":           item.Name,
			"company":        item.CompanyName,
			"category":       item.Category,
			"unit_price":     item.UnitPrice,
			"color":          item.Color,
			"coating_method": string(item.CoatingMethod),
		})
	}
	workbook, err := export.BuildWorkbook(export.Sheet{
		Title: "수주대상품목_등록현황",
		Columns: []export.Column{
			{Key: "code", Label: "품목코드", Kind: export.KindText},
			{Key: "name", Label: "품목명", Kind: export.KindText},
			{Key: "company", Label: "발주업체", Kind: export.KindText},
			{Key: "category", Label: "분류", Kind: export.KindText},
			{Key: "unit_price", Label: "단가", Kind: export.KindNumber},
			{Key: "color", Label: "색상", Kind: export.KindText},
			{Key: "coating_method", Label: "도장방식", Kind: export.KindText},
		},
		Rows: rows,
	})
	if err != nil {
		h.logger.Error("build order item workbook failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := export.WriteAttachment(w, "수주대상품목_등록현황.xlsx", workbook); err != nil {
		h.logger.Error("write order item workbook failed", "error", err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order item id")
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order item not found")
		return
	}
	httpx.RespondError(w, err)
}
