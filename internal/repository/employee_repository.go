package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

type employeeRepository struct {
	gate    db.Gate
	builder sq.StatementBuilderType
}

// NewEmployeeRepository wires a repository writing to hr.employees.
func NewEmployeeRepository(gate db.Gate) EmployeeRepository {
	return &employeeRepository{
		gate:    gate,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *employeeRepository) Insert(ctx context.Context, e domain.Employee) error {
	sqlStr, args, err := r.builder.
		Insert("hr.employees").
		Columns(
			"lastname", "firstname", "title", "titleofcourtesy", "birthdate", "hiredate",
			"address", "city", "region", "postalcode", "country", "phone", "mgrid",
		).
		Values(
			e.LastName, e.FirstName, e.Title, e.TitleOfCourtesy,
			sq.Expr("?::date", e.BirthDate), sq.Expr("?::date", e.HireDate),
			e.Address, e.City, e.Region, e.PostalCode, e.Country, e.Phone, e.ManagerID,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build employee insert: %w", err)
	}

	return r.gate.Do(ctx, func(q db.Querier) error {
		if _, err := q.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("failed to insert employee: %w", err)
		}
		return nil
	})
}
