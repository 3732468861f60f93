package ingestion

import (
	"context"
	"errors"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/domain"
	"github.com/rpattn/nwreports/internal/repository"
)

// Loader replaces the contents of currency_rates with a fresh record set.
type Loader struct {
	gate          db.Gate
	repo          repository.CurrencyRepository
	transactional bool
}

// NewLoader creates a loader. When transactional is set the recreate and
// insert steps commit or roll back together.
func NewLoader(gate db.Gate, repo repository.CurrencyRepository, transactional bool) *Loader {
	return &Loader{gate: gate, repo: repo, transactional: transactional}
}

// Reload drops and recreates the destination table, inserts every record in
// order, then runs the conversion update. The gate is held for all three steps.
// It returns the number of persisted rows and a *ReloadError on failure; a
// rolled-back transaction persists none.
func (l *Loader) Reload(ctx context.Context, records []domain.CurrencyRecord) (int, error) {
	inserted := 0

	err := l.gate.Do(ctx, func(q db.Querier) error {
		written := false
		write := func(w db.Querier) error {
			if err := l.repo.RecreateTable(ctx, w); err != nil {
				return &ReloadError{Stage: StageSchema, Err: err}
			}
			for _, record := range records {
				if err := l.repo.Insert(ctx, w, record); err != nil {
					return &ReloadError{Stage: StageInsert, Err: err, Inserted: inserted}
				}
				inserted++
			}
			written = true
			return nil
		}

		if !l.transactional {
			if err := write(q); err != nil {
				return err
			}
		} else if err := db.WithTx(ctx, q, write); err != nil {
			// Rolled back: nothing from this run was persisted.
			inserted = 0
			var reloadErr *ReloadError
			if errors.As(err, &reloadErr) {
				reloadErr.Inserted = 0
				return err
			}
			// Begin or commit failed.
			stage := StageSchema
			if written {
				stage = StageInsert
			}
			return &ReloadError{Stage: stage, Err: err}
		}

		if err := l.repo.Recalculate(ctx, q); err != nil {
			return &ReloadError{Stage: StageRecalculate, Err: err, Inserted: inserted}
		}
		return nil
	})
	if err != nil {
		var reloadErr *ReloadError
		if errors.As(err, &reloadErr) {
			return inserted, err
		}
		// The gate refused entry, so nothing ran.
		return inserted, &ReloadError{Stage: StageSchema, Err: err, Inserted: inserted}
	}
	return inserted, nil
}
