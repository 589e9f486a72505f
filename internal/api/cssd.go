package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/report"
	"github.com/erazemk/cssd/internal/service"
)

// DeskHandler serves the desk operations that are not a plain listing.
type DeskHandler struct {
	Service  *service.Service
	Machines []model.Machine
}

// ListMachines handles GET /cssd/machines.
func (h *DeskHandler) ListMachines(w http.ResponseWriter, r *http.Request) {
	machines := h.Machines
	if machines == nil {
		machines = []model.Machine{}
	}
	jsonResponse(w, http.StatusOK, machines)
}

// DecideRequest returns a handler for POST /cssd/requests/{id}/approve|reject.
func (h *DeskHandler) DecideRequest(d service.Decision) http.HandlerFunc {
	return idHandler(func(ctx context.Context, id string) (model.Request, error) {
		return h.Service.DecideRequest(ctx, id, d)
	})
}

// DecideReceive returns a handler for POST /cssd/receive/{id}/approve|reject.
func (h *DeskHandler) DecideReceive(d service.Decision) http.HandlerFunc {
	return idHandler(func(ctx context.Context, id string) (model.ReceiveItem, error) {
		return h.Service.DecideReceive(ctx, id, d)
	})
}

// EditStock handles PUT /cssd/stock/{id}.
func (h *DeskHandler) EditStock(w http.ResponseWriter, r *http.Request) {
	var in service.StockInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := h.Service.EditStock(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Dashboard handles GET /cssd/dashboard.
func (h *DeskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

// ConsumptionReport handles GET /cssd/reports/consumption. The format query
// parameter selects json (default), csv or xlsx.
func (h *DeskHandler) ConsumptionReport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rep, err := h.Service.ConsumptionReport(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		jsonResponse(w, http.StatusOK, rep)
		return
	case "csv":
		contentType, ext = "text/csv; charset=utf-8", ".csv"
		err = report.WriteCSV(&buf, rep.Records)
	case "xlsx":
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"
		err = report.WriteXLSX(&buf, rep)
	default:
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("unknown report format %q", format))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	name := "consumption_report_" + model.Date(time.Now()) + ext
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
