package movement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-mes/meridian-mes/internal/export"
	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/search"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

// Handler serves one movement screen, fixed to a subject and direction.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	subject   Subject
	direction Direction
	validate  *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, subject Subject, direction Direction) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		subject:   subject,
		direction: direction,
		validate:  validator.New(),
	}
}

// Handlers bundles the four movement screens for mounting.
type Handlers struct {
	MaterialIn   *Handler
	MaterialOut  *Handler
	OrderItemIn  *Handler
	OrderItemOut *Handler
}

func NewHandlers(logger *slog.Logger, service *Service) *Handlers {
	return &Handlers{
		MaterialIn:   NewHandler(logger, service, SubjectMaterial, DirectionIn),
		MaterialOut:  NewHandler(logger, service, SubjectMaterial, DirectionOut),
		OrderItemIn:  NewHandler(logger, service, SubjectOrderItem, DirectionIn),
		OrderItemOut: NewHandler(logger, service, SubjectOrderItem, DirectionOut),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/eligible", h.Eligible)
	r.Get("/export", h.Export)
	r.Post("/", h.Register)
	r.Put("/{id}", h.Amend)
	r.Delete("/{id}", h.Delete)
	if h.subject == SubjectOrderItem && h.direction == DirectionIn {
		r.Patch("/{id}/process-completion", h.SetProcessCompleted)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	criteria := search.Criteria(r.URL.Query().Get("criteria"))
	movements, err := h.service.List(r.Context(), h.subject, h.direction, criteria, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.Error("list movements failed", "error", err, "subject", h.subject, "direction", h.direction)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListMovementsResponse{Movements: movements, Total: len(movements)})
}

func (h *Handler) Eligible(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Eligible(r.Context(), h.subject, h.direction)
	if err != nil {
		h.logger.Error("list eligible rows failed", "error", err, "subject", h.subject, "direction", h.direction)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, err := h.service.Register(r.Context(), h.subject, h.direction, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		h.logger.Error("register movement batch failed", "error", err, "subject", h.subject, "direction", h.direction)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"movements": created})
}

func (h *Handler) Amend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req AmendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Amend(r.Context(), id, req); err != nil {
		h.logger.Error("amend movement failed", "error", err, "id", id)
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
		h.logger.Error("delete movement failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) SetProcessCompleted(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req SetProcessCompletionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.SetProcessCompleted(r.Context(), id, req.Completed); err != nil {
		h.logger.Error("set process completion failed", "error", err, "id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Export writes the currently filtered list as a styled workbook, named per
// screen like the list screens name their downloads.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	criteria := search.Criteria(r.URL.Query().Get("criteria"))
	movements, err := h.service.List(r.Context(), h.subject, h.direction, criteria, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.Error("export movements failed", "error", err, "subject", h.subject, "direction", h.direction)
		httpx.RespondError(w, err)
		return
	}

	columns := []export.Column{
		{Key: "number", Label: h.numberLabel(), Kind: export.KindText},
		{Key: "company", Label: "업체명", Kind: export.KindText},
		{Key: "code", Label: "품목코드", Kind: export.KindText},
		{Key: "name", Label: "품목명", Kind: export.KindText},
		{Key: "quantity", Label: "수량", Kind: export.KindNumber},
		{Key: "date", Label: h.dateLabel(), Kind: export.KindDate},
		{Key: "remark", Label: "비고", Kind: export.KindText},
	}
	if h.subject == SubjectOrderItem && h.direction == DirectionIn {
		columns = append(columns, export.Column{Key: "completed", Label: "공정완료", Kind: export.KindText})
	}

	rows := make([]map[string]any, 0, len(movements))
	for _, mv := range movements {
		row := map[string]any{
			"number":   mv.MovementNo,
			"company":  mv.CompanyName,
			"code":     mv.ItemCode,
			"name":     mv.ItemName,
			"quantity": mv.Quantity,
			"date":     mv.Date,
			"remark":   mv.Remark,
		}
		if h.subject == SubjectOrderItem && h.direction == DirectionIn {
			row["completed"] = mv.IsProcessCompleted
		}
		rows = append(rows, row)
	}

	title := h.screenTitle()
	workbook, err := export.BuildWorkbook(export.Sheet{Title: title, Columns: columns, Rows: rows})
	if err != nil {
		h.logger.Error("build movement workbook failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := export.WriteAttachment(w, title+".xlsx", workbook); err != nil {
		h.logger.Error("write movement workbook failed", "error", err)
	}
}

func (h *Handler) screenTitle() string {
	subject := "원자재"
	if h.subject == SubjectOrderItem {
		subject = "수주대상품목"
	}
	direction := "입고"
	if h.direction == DirectionOut {
		direction = "출고"
	}
	return subject + "_" + direction + "_등록현황"
}

func (h *Handler) numberLabel() string {
	if h.subject == SubjectOrderItem && h.direction == DirectionIn {
		return "LOT번호"
	}
	if h.direction == DirectionOut {
		return "출고번호"
	}
	return "입고번호"
}

func (h *Handler) dateLabel() string {
	if h.direction == DirectionOut {
		return "출고일자"
	}
	return "입고일자"
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid movement id")
		return 0, false
	}
	return id, true
}

func respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "movement not found")
	case errors.Is(err, httpx.ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
