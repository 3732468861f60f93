package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type ingestionLogRepository struct {
	gate db.Gate
}

// NewIngestionLogRepository wires a repository backed by the shared gate.
func NewIngestionLogRepository(gate db.Gate) IngestionLogRepository {
	return &ingestionLogRepository{gate: gate}
}

func (r *ingestionLogRepository) Record(ctx context.Context, run domain.IngestionRun) error {
	if r.gate == nil {
		return fmt.Errorf("ingestion log repository not initialized")
	}

	return r.gate.Do(ctx, func(q db.Querier) error {
		_, err := q.Exec(
			ctx,
			`INSERT INTO ingestion_runs (id, source_url, status, stage, rows_scraped, rows_loaded, error_message, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			run.ID,
			run.SourceURL,
			string(run.Status),
			run.Stage,
			run.RowsScraped,
			run.RowsLoaded,
			run.ErrorMessage,
			run.StartedAt,
			run.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record ingestion run: %w", err)
		}
		return nil
	})
}

func (r *ingestionLogRepository) List(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	if r.gate == nil {
		return nil, fmt.Errorf("ingestion log repository not initialized")
	}

	if limit <= 0 {
		limit = 50
	}

	runs := []domain.IngestionRun{}
	err := r.gate.Do(ctx, func(q db.Querier) error {
		rows, err := q.Query(
			ctx,
			`SELECT id, source_url, status, stage, rows_scraped, rows_loaded, error_message, started_at, finished_at
			 FROM ingestion_runs
			 ORDER BY started_at DESC
			 LIMIT $1`,
			limit,
		)
		if err != nil {
			return fmt.Errorf("failed to list ingestion runs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				run        domain.IngestionRun
				status     string
				stage      pgtype.Text
				errMessage pgtype.Text
				startedAt  pgtype.Timestamptz
				finishedAt pgtype.Timestamptz
			)
			if scanErr := rows.Scan(
				&run.ID,
				&run.SourceURL,
				&status,
				&stage,
				&run.RowsScraped,
				&run.RowsLoaded,
				&errMessage,
				&startedAt,
				&finishedAt,
			); scanErr != nil {
				return fmt.Errorf("failed to scan ingestion run: %w", scanErr)
			}

			run.Status = domain.IngestionStatus(status)
			if stage.Valid {
				value := stage.String
				run.Stage = &value
			}
			if errMessage.Valid {
				value := errMessage.String
				run.ErrorMessage = &value
			}
			if startedAt.Valid {
				run.StartedAt = startedAt.Time
			}
			if finishedAt.Valid {
				run.FinishedAt = finishedAt.Time
			}

			runs = append(runs, run)
		}

		if rowsErr := rows.Err(); rowsErr != nil {
			return fmt.Errorf("failed to iterate ingestion runs: %w", rowsErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}
