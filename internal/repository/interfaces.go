package repository

import (
	"context"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/domain"
)

// ReportRepository runs the fixed analytical queries of the reporting gateway.
type ReportRepository interface {
	OrdersReport(ctx context.Context) ([]domain.OrdersReport, error)
	CustomerSalesByYear(ctx context.Context) ([]domain.CustomerByYear, error)
	TopPerformers(ctx context.Context) ([]domain.TopPerformer, error)
	SalesChoropleth(ctx context.Context) ([]domain.SalesChoropleth, error)
	YearBuiltTotal(ctx context.Context) ([]domain.YearBuiltCount, error)
	SalesByBedroom(ctx context.Context) ([]domain.AvgSalesPriceByBedroom, error)
	AvgPricePerAcreage(ctx context.Context) ([]domain.AvgPricePerAcreage, error)
	Currencies(ctx context.Context) ([]domain.CurrencyRecord, error)
	CorrelationTable(ctx context.Context) ([]domain.CorrelationRow, error)
	CorrelationStatsAboveZero(ctx context.Context) ([]domain.CorrelationStats, error)
	CorrelationStatsBelowZero(ctx context.Context) ([]domain.CorrelationStats, error)

	// Table returns any catalogued report as untyped columns and values.
	Table(ctx context.Context, name string) (Table, error)
}

// CurrencyRepository owns the currency_rates destination table. The statement
// level methods run on the querier handed in by the caller so that a reload
// can keep the gate (and optionally a transaction) across all of them.
type CurrencyRepository interface {
	RecreateTable(ctx context.Context, q db.Querier) error
	Insert(ctx context.Context, q db.Querier, record domain.CurrencyRecord) error
	Recalculate(ctx context.Context, q db.Querier) error
}

// EmployeeRepository inserts HR employee rows.
type EmployeeRepository interface {
	Insert(ctx context.Context, employee domain.Employee) error
}

// IngestionLogRepository stores the outcome of every exchange-rate reload.
type IngestionLogRepository interface {
	Record(ctx context.Context, run domain.IngestionRun) error
	List(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}

// Table is an untyped report result used by exports.
type Table struct {
	Columns []string
	Rows    [][]any
}
