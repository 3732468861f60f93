package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpattn/nwreports/internal/domain"
	"github.com/rpattn/nwreports/internal/employees"
	"github.com/rpattn/nwreports/internal/export"
	"github.com/rpattn/nwreports/internal/ingestion"
	"github.com/rpattn/nwreports/internal/reports"
	"github.com/rpattn/nwreports/internal/repository"
)

type stubReportRepo struct {
	repository.ReportRepository
}

func (stubReportRepo) Currencies(context.Context) ([]domain.CurrencyRecord, error) {
	return []domain.CurrencyRecord{{Code: "EUR", NumericID: 978, CountryName: "EMU", UnitBasis: 1, MidRate: 117.1753}}, nil
}

func (stubReportRepo) Table(_ context.Context, name string) (repository.Table, error) {
	if name != repository.ReportCurrencies {
		return repository.Table{}, repository.ErrUnknownReport
	}
	return repository.Table{Columns: []string{"code"}, Rows: [][]any{{"EUR"}}}, nil
}

type stubEmployeeRepo struct{}

func (stubEmployeeRepo) Insert(context.Context, domain.Employee) error { return nil }

type stubRunLog struct{}

func (stubRunLog) Record(context.Context, domain.IngestionRun) error { return nil }
func (stubRunLog) List(context.Context, int) ([]domain.IngestionRun, error) {
	return nil, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testRouter(t *testing.T, health error) http.Handler {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>dashboard</h1>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}

	reportRepo := stubReportRepo{}
	return newRouter(routerDeps{
		reports:   reports.NewHTTPHandler(reportRepo),
		employees: employees.NewHTTPHandler(employees.NewService(stubEmployeeRepo{})),
		ingestion: ingestion.NewHTTPHandler(nil, stubRunLog{}),
		export:    export.NewHTTPHandler(export.NewService(reportRepo)),
		health:    stubPinger{err: health},
		staticDir: static,
	}, []string{"http://localhost:3000"})
}

func TestRouterServesRoutes(t *testing.T) {
	router := testRouter(t, nil)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/get_currencies", http.StatusOK},
		{http.MethodGet, "/get_ingestion_runs", http.StatusNotFound},
		{http.MethodGet, "/export/currencies?format=csv", http.StatusOK},
		{http.MethodGet, "/export/unknown", http.StatusNotFound},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodPost, "/get_currencies", http.StatusMethodNotAllowed},
		{http.MethodPost, "/get_ingestion_runs", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterEmployeeInsert(t *testing.T) {
	router := testRouter(t, nil)
	body := `{"lastname":"Davis","firstname":"Sara","title":"CEO","titleofcourtesy":"Ms.",
		"birthdate":"1958-12-08","hiredate":"2002-05-01","address":"7890 - 20th Ave. E., Apt. 2A",
		"city":"Seattle","region":"WA","postalcode":"10003","country":"USA","phone":"(206) 555-0101"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/insert_into_hr_employee_table", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterHealthFailure(t *testing.T) {
	router := testRouter(t, errors.New("connection refused"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouterCORS(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/get_currencies", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
