package models

import "time"

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// EstimateRun is the operational record of one pipeline execution.
type EstimateRun struct {
	ID           string
	CadastralRef string
	Status       string
	ErrorKind    string

	MinPrice       *float64
	MaxPrice       *float64
	ReferencePrice *float64
	PricePerArea   *float64
	TotalPrice     *float64
	Method         string

	Debug      bool
	StartedAt  time.Time
	FinishedAt time.Time
	DurationMS int64
}

// ProbeResult records one plain-HTTP connectivity check of the target site.
type ProbeResult struct {
	ID         int64
	CheckedAt  time.Time
	OK         bool
	StatusCode int
	BodyBytes  int64
	DurationMS int64
	Error      string
}
