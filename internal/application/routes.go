package application

import (
	"encoding/json"
	"net/http"

	unleash "github.com/Unleash/unleash-proxy-client-go"
	"github.com/Unleash/unleash-proxy-client-go/internal/logging"
	"github.com/Unleash/unleash-proxy-client-go/internal/util"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/gorilla/mux"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

func (a *Application) makeRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(logging.ContextLoggersMiddleware(a.loggers))
	if a.loggers.GetMinLevel() == ldlog.Debug {
		router.Use(logging.RequestLoggerMiddleware(a.loggers))
	}
	router.Handle("/status", statusHandler(a)).Methods("GET")
	router.Handle("/toggles", allTogglesHandler(a.client)).Methods("GET")
	router.Handle("/toggles/{name}", toggleHandler(a.client)).Methods("GET")
	router.Handle("/context", getContextHandler(a.client)).Methods("GET")
	router.Handle("/context", updateContextHandler(a.client)).Methods("PUT")
	return router
}

func statusHandler(a *Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		state := a.client.State()
		status := statusHealthy
		if state != unleash.StateHealthy {
			status = statusDegraded
		}
		b := ldvalue.ObjectBuild().
			Set("status", ldvalue.String(status)).
			Set("state", ldvalue.String(string(state))).
			Set("ready", ldvalue.Bool(a.client.IsReady())).
			Set("toggles", ldvalue.Int(len(a.client.GetAllToggles()))).
			Set("version", ldvalue.String(a.version))
		if err := a.client.GetError(); err != nil {
			b.Set("lastError", ldvalue.String(err.Error()))
		}
		writeJSONBytes(w, http.StatusOK, []byte(b.Build().JSONString()))
	})
}

func allTogglesHandler(client *unleash.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		toggles := client.GetAllToggles()
		if toggles == nil {
			toggles = []unleash.Toggle{}
		}
		writeJSON(w, req, toggles)
	})
}

type toggleRep struct {
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
	Variant unleash.Variant `json:"variant"`
}

func toggleHandler(client *unleash.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		name := mux.Vars(req)["name"]
		variant := client.GetVariant(name)
		writeJSON(w, req, toggleRep{
			Name:    name,
			Enabled: variant.FeatureEnabled,
			Variant: variant,
		})
	})
}

func getContextHandler(client *unleash.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, req, client.GetContext())
	})
}

func updateContextHandler(client *unleash.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var newContext unleash.Context
		if err := json.NewDecoder(req.Body).Decode(&newContext); err != nil {
			writeJSONBytes(w, http.StatusBadRequest, util.ErrorJSONMsgf("invalid context: %s", err))
			return
		}
		client.UpdateContext(req.Context(), newContext)
		writeJSON(w, req, client.GetContext())
	})
}

func writeJSON(w http.ResponseWriter, req *http.Request, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.GetContextLoggers(req.Context()).Errorf("Error encoding response: %s", err)
		writeJSONBytes(w, http.StatusInternalServerError, util.ErrorJSONMsg("internal error"))
		return
	}
	writeJSONBytes(w, http.StatusOK, data)
}

func writeJSONBytes(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
