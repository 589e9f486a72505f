package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/cssd/internal/metrics"
	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/reconcile"
	"github.com/erazemk/cssd/internal/report"
	"github.com/erazemk/cssd/internal/service"
)

// NewStoreRouter creates the collection store router on db.
func NewStoreRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()
	registerStore(mux, &StoreHandler{DB: db})
	return mux
}

func registerStore(mux *http.ServeMux, h *StoreHandler) {
	mux.HandleFunc("GET /api/{collection}", h.List)
	mux.HandleFunc("POST /api/{collection}", h.Create)
	mux.HandleFunc("GET /api/{collection}/{id}", h.Get)
	mux.HandleFunc("PUT /api/{collection}/{id}", h.Replace)
	mux.HandleFunc("PATCH /api/{collection}/{id}", h.Patch)
	mux.HandleFunc("DELETE /api/{collection}/{id}", h.Delete)
	mux.HandleFunc("PATCH /api/{collection}/{id}/approve", h.SetStatus(model.RequestStatusApproved))
	mux.HandleFunc("PATCH /api/{collection}/{id}/reject", h.SetStatus(model.RequestStatusRejected))
}

// Deps holds what the service router needs.
type Deps struct {
	// DB, when set, also serves the collection store under /api.
	DB       *sql.DB
	Engine   *reconcile.Engine
	Service  *service.Service
	Machines []model.Machine
	Metrics  *metrics.Metrics
}

// NewRouter creates the service router with all endpoints registered and
// wrapped in the request id and logging middleware.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	if d.DB != nil {
		registerStore(mux, &StoreHandler{DB: d.DB})
	}

	e, svc := d.Engine, d.Service
	s := svc.Store()
	desk := &DeskHandler{Service: svc, Machines: d.Machines}

	// Sterilization.
	mux.HandleFunc("GET /cssd/machines", desk.ListMachines)
	mux.HandleFunc("GET /cssd/methods", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, e.Methods())
	})
	mux.HandleFunc("GET /cssd/sterilization", listHandler(s, model.CollectionProcesses, report.ProcessFields, report.ProcessKey))
	mux.HandleFunc("POST /cssd/sterilization", createHandler(e.Start))
	mux.HandleFunc("POST /cssd/sterilization/sweep", runHandler(e.Sweep))
	mux.HandleFunc("POST /cssd/sterilization/{id}/pause", idHandler(e.Pause))
	mux.HandleFunc("POST /cssd/sterilization/{id}/resume", idHandler(e.Resume))
	mux.HandleFunc("POST /cssd/sterilization/{id}/complete", idHandler(e.Complete))

	// Available pool and issuing.
	mux.HandleFunc("GET /cssd/available", listHandler(s, model.CollectionAvailable, report.AvailableFields, report.AvailableKey))
	mux.HandleFunc("PUT /cssd/available", replaceHandler(e.Rewrite))
	mux.HandleFunc("POST /cssd/available/refresh", runHandler(e.Refresh))
	mux.HandleFunc("POST /cssd/available/dedupe", runHandler(e.DedupePool))
	mux.HandleFunc("GET /cssd/issues", listHandler(s, model.CollectionIssues, report.IssueFields, report.IssueKey))
	mux.HandleFunc("POST /cssd/issues", createHandler(e.Issue))

	// Requests, receiving and kits.
	mux.HandleFunc("GET /cssd/requests", listHandler(s, model.CollectionRequests, report.RequestFields, report.RequestKey))
	mux.HandleFunc("POST /cssd/requests", createHandler(svc.CreateRequest))
	mux.HandleFunc("POST /cssd/requests/{id}/approve", desk.DecideRequest(service.Approve))
	mux.HandleFunc("POST /cssd/requests/{id}/reject", desk.DecideRequest(service.Reject))
	mux.HandleFunc("GET /cssd/receive", listHandler(s, model.CollectionReceiveItems, report.ReceiveFields, report.ReceiveKey))
	mux.HandleFunc("POST /cssd/receive/{id}/approve", desk.DecideReceive(service.Approve))
	mux.HandleFunc("POST /cssd/receive/{id}/reject", desk.DecideReceive(service.Reject))
	mux.HandleFunc("GET /cssd/kits", listHandler(s, model.CollectionKits, report.KitFields, report.KitKey))
	mux.HandleFunc("POST /cssd/kits", createHandler(svc.CreateKit))

	// Stock and consumption.
	mux.HandleFunc("GET /cssd/stock", listHandler(s, model.CollectionStock, report.StockFields, report.StockKey))
	mux.HandleFunc("POST /cssd/stock", createHandler(svc.AddStock))
	mux.HandleFunc("PUT /cssd/stock/{id}", desk.EditStock)
	mux.HandleFunc("GET /cssd/consumption", listHandler(s, model.CollectionConsumption, report.ConsumptionFields, report.ConsumptionKey))
	mux.HandleFunc("POST /cssd/consumption", createHandler(svc.AddConsumption))

	// Reports.
	mux.HandleFunc("GET /cssd/reports/consumption", desk.ConsumptionReport)
	mux.HandleFunc("GET /cssd/dashboard", desk.Dashboard)

	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return RequestID(LoggingMiddleware(d.Metrics)(mux))
}
