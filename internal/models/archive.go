package models

import (
	"encoding/json"
	"time"
)

// ArchivedContent is one generated story or round set kept for review
type ArchivedContent struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Title     string          `json:"title,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// FetchStats summarises generation attempts for one content kind
type FetchStats struct {
	Kind          string  `json:"kind"`
	Successes     int     `json:"successes"`
	Failures      int     `json:"failures"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}
