package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rpattn/nwreports/internal/db/dbtest"
	"github.com/rpattn/nwreports/internal/domain"
)

func TestEmployeeInsertUsesPositionalParameters(t *testing.T) {
	gate := &dbtest.Gate{Q: &dbtest.Querier{}}
	repo := NewEmployeeRepository(gate)

	mgr := int32(2)
	err := repo.Insert(context.Background(), domain.Employee{
		LastName: "Davis", FirstName: "Sara", Title: "CEO", TitleOfCourtesy: "Ms.",
		BirthDate: "1958-12-08", HireDate: "2002-05-01", Address: "7890 - 20th Ave. E.",
		City: "Seattle", Region: "WA", PostalCode: "10003", Country: "USA",
		Phone: "(206) 555-0101", ManagerID: &mgr,
	})
	if err != nil {
		t.Fatalf("insert returned error: %v", err)
	}

	if len(gate.Q.Execs) != 1 {
		t.Fatalf("expected one statement, got %d", len(gate.Q.Execs))
	}
	stmt := gate.Q.Execs[0]
	if !strings.HasPrefix(stmt.SQL, "INSERT INTO hr.employees") {
		t.Fatalf("unexpected statement %q", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, "$5::date") || !strings.Contains(stmt.SQL, "$13") {
		t.Fatalf("expected dollar placeholders with date casts, got %q", stmt.SQL)
	}
	if strings.Contains(stmt.SQL, "Davis") {
		t.Fatalf("values must not be inlined: %q", stmt.SQL)
	}
	if len(stmt.Args) != 13 || stmt.Args[0] != "Davis" {
		t.Fatalf("unexpected args %v", stmt.Args)
	}
}

func TestEmployeeInsertFailure(t *testing.T) {
	gate := &dbtest.Gate{Q: &dbtest.Querier{ExecErrors: map[string]error{
		"INSERT": errors.New("duplicate key"),
	}}}

	err := NewEmployeeRepository(gate).Insert(context.Background(), domain.Employee{LastName: "Davis"})
	if err == nil || !strings.Contains(err.Error(), "duplicate key") {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
}
