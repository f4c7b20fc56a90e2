package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/openroom/roomchat-api/api"
	"github.com/openroom/roomchat-api/api/scheduler"
	"github.com/openroom/roomchat-api/config"
	"github.com/openroom/roomchat-api/databases"
	"github.com/openroom/roomchat-api/models"
	"github.com/openroom/roomchat-api/room"
)

// App stores the router, config, engine, and scheduler so they can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Engine    *room.Engine
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	queryTimeout := a.Config.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = api.QueryTimeout
	}

	r := mux.NewRouter()
	r.Use(api.RequestLogger)
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(2 * queryTimeout))

	p := Participant{Engine: a.Engine, Timeout: queryTimeout}
	m := Message{Engine: a.Engine, Timeout: queryTimeout}
	metrics := MetricsHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", http.HandlerFunc(metrics.GetMetricsHandler)).Methods("GET")

	r.Handle("/participants", http.HandlerFunc(p.JoinHandler)).Methods("POST")
	r.Handle("/participants", http.HandlerFunc(p.ListHandler)).Methods("GET")
	r.Handle("/status", http.HandlerFunc(p.StatusHandler)).Methods("POST")

	r.Handle("/messages", http.HandlerFunc(m.CreateHandler)).Methods("POST")
	r.Handle("/messages", http.HandlerFunc(m.MessagesHandler)).Methods("GET")
	r.Handle("/messages/{message_id}", http.HandlerFunc(m.UpdateHandler)).Methods("PUT")
	r.Handle("/messages/{message_id}", http.HandlerFunc(m.DeleteHandler)).Methods("DELETE")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("roomchat-api has connected to the database")

	a.Engine = room.New(
		databases.NewParticipantDatabase(a.dbHelper),
		databases.NewMessageDatabase(a.dbHelper),
		room.Config{
			Broadcast:           a.Config.Broadcast,
			InactivityThreshold: a.Config.InactivityThreshold,
			NameMinLen:          a.Config.NameMinLen,
			NameMaxLen:          a.Config.NameMaxLen,
		},
	)
	a.Scheduler = scheduler.New(a.Engine, a.Config.SweepInterval, a.Config.QueryTimeout)

	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
