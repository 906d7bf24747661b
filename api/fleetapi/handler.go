package fleetapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kilianp07/mineguard/core/fleet"
	"github.com/kilianp07/mineguard/core/model"
)

type errorBody struct {
	Error string `json:"error"`
}

// NewRouter registers the read routes for store on a new router.
//
//	GET /healthz
//	GET /api/vehicles
//	GET /api/vehicles/{id}
//	GET /api/alerts
//	GET /api/alerts/history?limit=N
//	GET /api/status
//	GET /api/fleet/stats
//
// Routes are registered on the root router: a known path with the wrong
// method answers 405.
func NewRouter(store fleet.Reader) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	r.HandleFunc("/api/vehicles", vehiclesHandler(store)).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id}", vehicleHandler(store)).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts", activeAlertsHandler(store)).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/history", alertHistoryHandler(store)).Methods(http.MethodGet)
	r.HandleFunc("/api/status", statusHandler(store)).Methods(http.MethodGet)
	r.HandleFunc("/api/fleet/stats", statsHandler(store)).Methods(http.MethodGet)
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func vehiclesHandler(store fleet.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, store.AllVehicles())
	}
}

func vehicleHandler(store fleet.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		v, ok := store.VehicleByID(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("Vehicle '%s' not found", id)})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func activeAlertsHandler(store fleet.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, store.ActiveAlerts())
	}
}

// alertHistoryHandler returns the history oldest first. limit keeps only
// the most recent entries.
func alertHistoryHandler(store fleet.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hist := store.AlertHistory()
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid limit %q", raw)})
				return
			}
			if n < len(hist) {
				hist = hist[len(hist)-n:]
			}
		}
		if hist == nil {
			hist = []model.CollisionAlert{}
		}
		writeJSON(w, http.StatusOK, hist)
	}
}

func statusHandler(store fleet.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, store.Status())
	}
}

func statsHandler(store fleet.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, store.Stats())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
