package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownReport is returned when a report name is not catalogued.
var ErrUnknownReport = errors.New("unknown report")

// MappingError reports that a result row did not fit the typed record, for
// example because an expected column was absent.
type MappingError struct {
	Report string
	Err    error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("failed to map %s row: %v", e.Report, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

type reportRepository struct {
	gate db.Gate
}

// NewReportRepository wires the fixed report queries to the shared gate.
func NewReportRepository(gate db.Gate) ReportRepository {
	return &reportRepository{gate: gate}
}

func (r *reportRepository) OrdersReport(ctx context.Context) ([]domain.OrdersReport, error) {
	return collectReport[domain.OrdersReport](ctx, r.gate, ReportOrders)
}

func (r *reportRepository) CustomerSalesByYear(ctx context.Context) ([]domain.CustomerByYear, error) {
	return collectReport[domain.CustomerByYear](ctx, r.gate, ReportCustomerSalesByYear)
}

func (r *reportRepository) TopPerformers(ctx context.Context) ([]domain.TopPerformer, error) {
	return collectReport[domain.TopPerformer](ctx, r.gate, ReportTopPerformers)
}

func (r *reportRepository) SalesChoropleth(ctx context.Context) ([]domain.SalesChoropleth, error) {
	return collectReport[domain.SalesChoropleth](ctx, r.gate, ReportSalesChoropleth)
}

func (r *reportRepository) YearBuiltTotal(ctx context.Context) ([]domain.YearBuiltCount, error) {
	rows, err := collectReport[domain.YearBuiltCount](ctx, r.gate, ReportYearBuiltTotal)
	if err != nil {
		return nil, err
	}

	cleaned := rows[:0]
	for _, row := range rows {
		if err := row.Clean(); err != nil {
			log.Printf("[DB] skipping %s row %q: %v", ReportYearBuiltTotal, row.YearBuilt, err)
			continue
		}
		cleaned = append(cleaned, row)
	}
	return cleaned, nil
}

func (r *reportRepository) SalesByBedroom(ctx context.Context) ([]domain.AvgSalesPriceByBedroom, error) {
	rows, err := collectReport[domain.AvgSalesPriceByBedroom](ctx, r.gate, ReportSalesByBedroom)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Clean()
	}
	return rows, nil
}

func (r *reportRepository) AvgPricePerAcreage(ctx context.Context) ([]domain.AvgPricePerAcreage, error) {
	return collectReport[domain.AvgPricePerAcreage](ctx, r.gate, ReportAvgPricePerAcreage)
}

func (r *reportRepository) Currencies(ctx context.Context) ([]domain.CurrencyRecord, error) {
	return collectReport[domain.CurrencyRecord](ctx, r.gate, ReportCurrencies)
}

func (r *reportRepository) CorrelationTable(ctx context.Context) ([]domain.CorrelationRow, error) {
	return collectReport[domain.CorrelationRow](ctx, r.gate, ReportCorrelationTable)
}

func (r *reportRepository) CorrelationStatsAboveZero(ctx context.Context) ([]domain.CorrelationStats, error) {
	return collectReport[domain.CorrelationStats](ctx, r.gate, ReportCorrelationStatsAbove)
}

func (r *reportRepository) CorrelationStatsBelowZero(ctx context.Context) ([]domain.CorrelationStats, error) {
	return collectReport[domain.CorrelationStats](ctx, r.gate, ReportCorrelationStatsBelow)
}

func (r *reportRepository) Table(ctx context.Context, name string) (Table, error) {
	report, ok := LookupReport(name)
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}

	var table Table
	err := r.gate.Do(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, report.SQL)
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", report.Name, err)
		}
		defer rows.Close()

		for _, fd := range rows.FieldDescriptions() {
			table.Columns = append(table.Columns, fd.Name)
		}
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return fmt.Errorf("failed to read %s row: %w", report.Name, err)
			}
			table.Rows = append(table.Rows, values)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate %s: %w", report.Name, err)
		}
		return nil
	})
	if err != nil {
		return Table{}, err
	}
	return table, nil
}

// collectReport runs a catalogued report under the gate and maps each row onto
// T by column name.
func collectReport[T any](ctx context.Context, gate db.Gate, name string) ([]T, error) {
	report, ok := LookupReport(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}

	var out []T
	err := gate.Do(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, report.SQL)
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", report.Name, err)
		}
		defer rows.Close()

		// Decoding a buffered row can only fail on shape or type; transport
		// and server errors surface through rows.Err once iteration stops.
		for rows.Next() {
			row, err := pgx.RowToStructByName[T](rows)
			if err != nil {
				if isQueryFailure(err) {
					return fmt.Errorf("failed to read %s: %w", report.Name, err)
				}
				return &MappingError{Report: report.Name, Err: err}
			}
			out = append(out, row)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read %s: %w", report.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isQueryFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
