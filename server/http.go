package server

import (
	"net/http"
	"time"

	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/core/storage"
	"github.com/dvla-io/dvla/util"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

var log = util.NewLogger("httpd")

type route struct {
	Methods     []string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// HTTPd wraps an http.Server and adds the root router
type HTTPd struct {
	*http.Server
}

// NewHTTPd creates HTTP server with configured routes for the site's vehicles
func NewHTTPd(url string, site core.SiteAPI, hub *SocketHub, cache *util.Cache, db *storage.DB) *HTTPd {
	router := mux.NewRouter().StrictSlash(true)

	// websocket
	router.HandleFunc("/ws", socketHandler(hub))

	// api
	api := router.PathPrefix("/api").Subrouter()
	api.Use(jsonHandler)
	api.Use(handlers.CompressHandler)
	api.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Accept", "Accept-Language", "Content-Language", "Content-Type", "Origin",
		}),
	))

	routes := map[string]route{
		"health":   {[]string{"GET"}, "/health", healthHandler(site)},
		"state":    {[]string{"GET"}, "/state", stateHandler(cache)},
		"vehicles": {[]string{"GET"}, "/vehicles", vehiclesHandler(site)},
		"vehicle":  {[]string{"GET"}, "/vehicles/{reg:[a-zA-Z0-9]+}", vehicleHandler(site)},
		"sensor":   {[]string{"GET"}, "/vehicles/{reg:[a-zA-Z0-9]+}/sensors/{key:[a-zA-Z0-9]+}", sensorHandler(site)},
		"history":  {[]string{"GET"}, "/vehicles/{reg:[a-zA-Z0-9]+}/history", historyHandler(site, db)},
		"refresh":  {[]string{"POST", "OPTIONS"}, "/vehicles/{reg:[a-zA-Z0-9]+}/refresh", refreshHandler(site)},
	}

	for _, r := range routes {
		api.Methods(r.Methods...).Path(r.Pattern).Handler(r.HandlerFunc)
	}

	srv := &HTTPd{
		Server: &http.Server{
			Addr:         url,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
			ErrorLog:     log.ERROR,
		},
	}
	srv.SetKeepAlivesEnabled(true)

	return srv
}

// Router returns the main router
func (s *HTTPd) Router() *mux.Router {
	return s.Handler.(*mux.Router)
}
