package models

// ErrorMessageResponse is the error body written by config.ErrorStatus
type ErrorMessageResponse struct {
	Response string `json:"response"`
}

// HealthCheckResponse is the response body for the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
