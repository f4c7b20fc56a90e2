package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string `envconfig:"DB_URI" default:"mongodb://127.0.0.1:27017"`
	DatabaseName string `envconfig:"DB_NAME" default:"roomchat"`
	Port         string `envconfig:"PORT" default:"5000"`
	Environment  string `envconfig:"ENVIRONMENT" default:"local"`

	// Broadcast is the reserved recipient that makes a message visible to
	// everyone in the room.
	Broadcast string `envconfig:"BROADCAST_NAME" default:"all"`

	// SweepInterval and InactivityThreshold drive the eviction sweep: the
	// sweep runs every SweepInterval and removes participants whose last
	// activity is older than InactivityThreshold.
	SweepInterval       time.Duration `envconfig:"SWEEP_INTERVAL" default:"15s"`
	InactivityThreshold time.Duration `envconfig:"INACTIVITY_THRESHOLD" default:"10s"`

	// QueryTimeout bounds every store operation; failures are not retried.
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" default:"10s"`

	NameMinLen int `envconfig:"NAME_MIN_LEN" default:"3"`
	NameMaxLen int `envconfig:"NAME_MAX_LEN" default:"30"`
}

// New sets up all config related services
func New() (*Config, error) {
	var conf Config
	if err := envconfig.Process("", &conf); err != nil {
		return nil, err
	}

	logger, err := setLogger(conf.Environment)
	if err != nil {
		return nil, err
	}
	_ = zap.ReplaceGlobals(logger)

	return &conf, nil
}

// setLogger picks the zap core for the given environment and defaults to
// the example logger for local runs.
func setLogger(environment string) (*zap.Logger, error) {
	switch environment {
	case "development":
		return zap.NewDevelopment()
	case "production":
		return zap.NewProduction()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
