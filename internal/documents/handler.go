package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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
	r.Get("/workorder/{itemID}", h.WorkOrder)
	r.Get("/workorder/{itemID}/pdf", h.WorkOrderPDF)
	r.Get("/invoice/{movementID}", h.ShipmentInvoice)
	r.Get("/invoice/{movementID}/pdf", h.ShipmentInvoicePDF)
}

func (h *Handler) WorkOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := param(w, r, "itemID")
	if !ok {
		return
	}
	wo, err := h.service.WorkOrder(r.Context(), id)
	if err != nil {
		h.logger.Error("build work order failed", "error", err, "item_id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wo)
}

func (h *Handler) WorkOrderPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := param(w, r, "itemID")
	if !ok {
		return
	}
	pdf, err := h.service.WorkOrderPDF(r.Context(), id)
	if err != nil {
		h.logger.Error("render work order failed", "error", err, "item_id", id)
		respond(w, err)
		return
	}
	writePDF(w, "workorder-"+strconv.FormatInt(id, 10)+".pdf", pdf)
}

func (h *Handler) ShipmentInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := param(w, r, "movementID")
	if !ok {
		return
	}
	inv, err := h.service.ShipmentInvoice(r.Context(), id)
	if err != nil {
		h.logger.Error("build shipment invoice failed", "error", err, "movement_id", id)
		respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) ShipmentInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := param(w, r, "movementID")
	if !ok {
		return
	}
	pdf, err := h.service.ShipmentInvoicePDF(r.Context(), id)
	if err != nil {
		h.logger.Error("render shipment invoice failed", "error", err, "movement_id", id)
		respond(w, err)
		return
	}
	writePDF(w, "invoice-"+strconv.FormatInt(id, 10)+".pdf", pdf)
}

func writePDF(w http.ResponseWriter, name string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename=`+name)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return 0, false
	}
	return id, true
}

func respond(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document source not found")
		return
	}
	httpx.RespondError(w, err)
}
