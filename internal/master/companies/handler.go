package companies

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
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	companies, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list companies failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListCompaniesResponse{
		Companies:  companies,
		Total:      total,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get company failed", "error", err, "id", id)
		respondShared(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterCompanyRequest
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
		h.logger.Error("register company failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	var req UpdateCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), id, req); err != nil {
		h.logger.Error("update company failed", "error", err, "id", id)
		respondShared(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) SetTrading(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	var req SetTradingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.SetTrading(r.Context(), id, req.IsTrading); err != nil {
		h.logger.Error("set company trading failed", "error", err, "id", id)
		respondShared(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Export downloads the currently filtered listing as a styled worksheet.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	filters.Limit = 0
	companies, _, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("export companies failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	rows := make([]map[string]any, 0, len(companies))
	for _, c := range companies {
		trading := "거래중"
		if !c.IsTrading {
			trading = "거래종료"
		}
		rows = append(rows, map[string]any{
			"name":            c.Name,
			"type":            string(c.Type),
			"registration_no": c.RegistrationNo,
			"ceo_name":        c.CEOName,
			"manager_name":    c.ManagerName,
			"manager_phone":   c.ManagerPhone,
			"address":         c.Address + " " + c.AddressDetail,
			"is_trading":      trading,
		})
	}
	workbook, err := export.BuildWorkbook(export.Sheet{
		Title: "업체_등록현황",
		Columns: []export.Column{
			{Key: "name", Label: "업체명", Kind: export.KindText},
			{Key: "type", Label: "구분", Kind: export.KindText},
			{Key: "registration_no", Label: "사업자번호", Kind: export.KindNumber},
			{Key: "ceo_name", Label: "대표자", Kind: export.KindText},
			{Key: "manager_name", Label: "담당자", Kind: export.KindText},
			{Key: "manager_phone", Label: "연락처", Kind: export.KindNumber},
			{Key: "address", Label: "주소", Kind: export.KindText},
			{Key: "is_trading", Label: "거래상태", Kind: export.KindText},
		},
		Rows: rows,
	})
	if err != nil {
		h.logger.Error("build company workbook failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := export.WriteAttachment(w, "업체_등록현황.xlsx", workbook); err != nil {
		h.logger.Error("write company workbook failed", "error", err)
	}
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

func respondShared(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "company not found")
		return
	}
	httpx.RespondError(w, err)
}
