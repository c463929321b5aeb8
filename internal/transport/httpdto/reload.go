package httpdto

import "time"

type ReloadRequest struct {
	Source string `json:"source"`
}

type ReloadResponse struct {
	Clients     int       `json:"clients"`
	Source      string    `json:"source,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Redis   bool   `json:"redis"`
}
