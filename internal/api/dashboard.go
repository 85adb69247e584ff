package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/plantwatch/telemetry-pipeline/internal/store"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
	"github.com/plantwatch/telemetry-pipeline/pkg/sink"
)

// DashboardHandler hosts the thin, out-of-scope read/CRUD surface
// described in SPEC_FULL §4.7 — plain SQL queries, no business logic.
type DashboardHandler struct {
	State   *store.State
	Ticker  *store.Ticker
	Devices *store.Devices
	CRUD    *store.CRUD
	Sink    sink.WritePoints
}

func (h *DashboardHandler) Register(r *mux.Router) {
	r.HandleFunc("/v1/plants/{id}/state", h.handlePlantState).Methods(http.MethodGet)
	r.HandleFunc("/v1/ticker", h.handleTicker).Methods(http.MethodGet)
	r.HandleFunc("/v1/devices/{device_uid}", h.handleDevice).Methods(http.MethodGet)
	r.HandleFunc("/v1/data/{table}/{id}", h.handleCRUDGet).Methods(http.MethodGet)
	r.HandleFunc("/v1/data/{table}/{id}", h.handleCRUDPut).Methods(http.MethodPut)
}

func (h *DashboardHandler) handlePlantState(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	state, err := h.State.Get(req.Context(), id)
	if err != nil {
		log.Warnf("api: plant state lookup %s: %v", id, err)
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, state)
}

func (h *DashboardHandler) handleTicker(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	events, err := h.Ticker.Recent(req.Context(), limit)
	if err != nil {
		log.Errorf("api: recent ticker events: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (h *DashboardHandler) handleDevice(w http.ResponseWriter, req *http.Request) {
	deviceUID := mux.Vars(req)["device_uid"]
	device, err := h.Devices.Get(req.Context(), deviceUID)
	if err != nil {
		log.Warnf("api: device lookup %s: %v", deviceUID, err)
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, device)
}

func (h *DashboardHandler) handleCRUDGet(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	raw, err := h.CRUD.Get(req.Context(), vars["table"], vars["id"])
	if err != nil {
		status := http.StatusNotFound
		if err == store.ErrTableNotAllowed {
			status = http.StatusForbidden
		}
		log.Warnf("api: crud get %s/%s: %v", vars["table"], vars["id"], err)
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// crudPutBody optionally carries a time-series point alongside the
// structured payload. When present, the structured write and the
// sink write run concurrently (SPEC_FULL §5's "Concurrent fan-out"):
// both complete, or a failure on one side is reported without
// cancelling the other.
type crudPutBody struct {
	Payload json.RawMessage `json:"payload"`
	Point   *sink.Point     `json:"point,omitempty"`
}

func (h *DashboardHandler) handleCRUDPut(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	data, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var body crudPutBody
	if err := json.Unmarshal(data, &body); err != nil {
		http.Error(w, "malformed JSON body", http.StatusBadRequest)
		return
	}
	if body.Payload == nil {
		body.Payload = data
	}

	if body.Point == nil {
		if err := h.CRUD.Put(req.Context(), vars["table"], vars["id"], body.Payload); err != nil {
			status := http.StatusInternalServerError
			if err == store.ErrTableNotAllowed {
				status = http.StatusForbidden
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	g, ctx := errgroup.WithContext(context.Background())
	var structuredErr, sinkErr error

	g.Go(func() error {
		structuredErr = h.CRUD.Put(ctx, vars["table"], vars["id"], body.Payload)
		return nil
	})
	g.Go(func() error {
		sinkErr = h.Sink.WritePoints(ctx, []sink.Point{*body.Point})
		return nil
	})
	_ = g.Wait()

	if structuredErr != nil {
		log.Warnf("api: crud put %s/%s: %v", vars["table"], vars["id"], structuredErr)
		http.Error(w, structuredErr.Error(), http.StatusInternalServerError)
		return
	}
	if sinkErr != nil {
		log.Warnf("api: sink write during crud put %s/%s: %v", vars["table"], vars["id"], sinkErr)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("api: encode response: %v", err)
	}
}
