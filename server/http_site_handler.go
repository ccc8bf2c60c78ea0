package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/core/storage"
	"github.com/dvla-io/dvla/util"
	"github.com/gorilla/mux"
)

func jsonHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		h.ServeHTTP(w, r)
	})
}

func jsonWrite(w http.ResponseWriter, content interface{}) {
	if err := json.NewEncoder(w).Encode(content); err != nil {
		log.ERROR.Printf("httpd: failed to encode JSON: %v", err)
	}
}

func jsonResult(w http.ResponseWriter, res interface{}) {
	jsonWrite(w, map[string]interface{}{"result": res})
}

func jsonError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	jsonWrite(w, map[string]interface{}{"error": err.Error()})
}

// healthHandler returns unavailable if no vehicle has data
func healthHandler(site core.SiteAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, v := range site.Vehicles() {
			if !v.Data().Empty() {
				jsonResult(w, "OK")
				return
			}
		}

		jsonError(w, http.StatusServiceUnavailable, errors.New("no vehicle data available"))
	}
}

// stateHandler returns the combined state
func stateHandler(cache *util.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResult(w, cache.State())
	}
}

type vehicleState struct {
	Registration string          `json:"registration"`
	Updated      *time.Time      `json:"updated,omitempty"`
	Device       core.DeviceInfo `json:"device"`
	Sensors      []core.State    `json:"sensors"`
}

func newVehicleState(v *core.Coordinator) vehicleState {
	res := vehicleState{
		Registration: v.Registration(),
	}

	if updated := v.Updated(); !updated.IsZero() {
		res.Updated = &updated
	}

	for i, s := range v.Sensors() {
		if i == 0 {
			res.Device = s.DeviceInfo()
		}
		res.Sensors = append(res.Sensors, s.State())
	}

	return res
}

func vehiclesHandler(site core.SiteAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := make([]string, 0, len(site.Vehicles()))
		for _, v := range site.Vehicles() {
			res = append(res, v.Registration())
		}
		jsonResult(w, res)
	}
}

func vehicleFromRequest(site core.SiteAPI, w http.ResponseWriter, r *http.Request) (*core.Coordinator, bool) {
	v, err := site.Vehicle(mux.Vars(r)["reg"])
	if err != nil {
		jsonError(w, http.StatusNotFound, err)
		return nil, false
	}
	return v, true
}

func vehicleHandler(site core.SiteAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if v, ok := vehicleFromRequest(site, w, r); ok {
			jsonResult(w, newVehicleState(v))
		}
	}
}

func sensorHandler(site core.SiteAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := vehicleFromRequest(site, w, r)
		if !ok {
			return
		}

		s, err := v.Sensor(mux.Vars(r)["key"])
		if err != nil {
			jsonError(w, http.StatusNotFound, err)
			return
		}

		jsonResult(w, s.State())
	}
}

func historyHandler(site core.SiteAPI, db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := vehicleFromRequest(site, w, r)
		if !ok {
			return
		}

		if db == nil {
			jsonError(w, http.StatusNotFound, errors.New("history not configured"))
			return
		}

		limit := 10
		if s := r.URL.Query().Get("limit"); s != "" {
			var err error
			if limit, err = strconv.Atoi(s); err != nil {
				jsonError(w, http.StatusBadRequest, err)
				return
			}
		}

		res, err := db.History(v.Registration(), limit)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, err)
			return
		}

		jsonResult(w, res)
	}
}

func refreshHandler(site core.SiteAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if v, ok := vehicleFromRequest(site, w, r); ok {
			v.RequestRefresh()
			w.WriteHeader(http.StatusAccepted)
			jsonResult(w, v.Registration())
		}
	}
}
