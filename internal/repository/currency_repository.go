package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

const currencyTable = "currency_rates"

// Current column set of currency_rates, matching the latest migration.
const (
	dropCurrencyTableSQL   = `DROP TABLE IF EXISTS ` + currencyTable
	createCurrencyTableSQL = `CREATE TABLE ` + currencyTable + ` (
    code          VARCHAR(20)      NOT NULL,
    numeric_id    INTEGER          NOT NULL DEFAULT 0,
    country_name  VARCHAR(50)      NOT NULL,
    unit_basis    INTEGER          NOT NULL DEFAULT 0,
    mid_rate      DOUBLE PRECISION NOT NULL,
    rate_date     VARCHAR(20)
)`
	recalculateCurrencySQL = `CALL update_currency_conversion()`
)

type currencyRepository struct {
	builder sq.StatementBuilderType
}

// NewCurrencyRepository returns the statements that rebuild currency_rates.
func NewCurrencyRepository() CurrencyRepository {
	return &currencyRepository{builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *currencyRepository) RecreateTable(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, dropCurrencyTableSQL); err != nil {
		return fmt.Errorf("failed to drop %s: %w", currencyTable, err)
	}
	if _, err := q.Exec(ctx, createCurrencyTableSQL); err != nil {
		return fmt.Errorf("failed to create %s: %w", currencyTable, err)
	}
	return nil
}

func (r *currencyRepository) Insert(ctx context.Context, q db.Querier, record domain.CurrencyRecord) error {
	sqlStr, args, err := r.builder.
		Insert(currencyTable).
		Columns("code", "numeric_id", "country_name", "unit_basis", "mid_rate", "rate_date").
		Values(record.Code, record.NumericID, record.CountryName, record.UnitBasis, record.MidRate, record.Date).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build currency insert: %w", err)
	}

	if _, err := q.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert currency %s: %w", record.Code, err)
	}
	return nil
}

func (r *currencyRepository) Recalculate(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, recalculateCurrencySQL); err != nil {
		return fmt.Errorf("failed to run currency conversion update: %w", err)
	}
	return nil
}
