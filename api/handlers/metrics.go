package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openroom/roomchat-api/api"
	"github.com/openroom/roomchat-api/config"
)

// MetricsHandler exposes the in-process request metrics
type MetricsHandler struct{}

// GetMetricsHandler returns a summary plus the per-route aggregates
func (m MetricsHandler) GetMetricsHandler(w http.ResponseWriter, r *http.Request) {
	collector := api.GetMetrics()

	b, err := json.Marshal(map[string]interface{}{
		"summary": collector.Summary(),
		"routes":  collector.RouteMetrics(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
