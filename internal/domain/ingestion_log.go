package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionStatus is the outcome of an exchange-rate reload.
type IngestionStatus string

const (
	IngestionStatusSucceeded IngestionStatus = "succeeded"
	IngestionStatusFailed    IngestionStatus = "failed"
)

// IngestionRun captures one execution of the exchange-rate pipeline.
type IngestionRun struct {
	ID           uuid.UUID       `json:"id"`
	SourceURL    string          `json:"source_url"`
	Status       IngestionStatus `json:"status"`
	Stage        *string         `json:"stage,omitempty"`
	RowsScraped  int             `json:"rows_scraped"`
	RowsLoaded   int             `json:"rows_loaded"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}
