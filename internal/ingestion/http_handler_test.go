package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpattn/nwreports/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

type slowFetcher struct {
	Fetcher
	delay time.Duration
}

func (f slowFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	time.Sleep(f.delay)
	return f.Fetcher.Fetch(ctx, url)
}

func TestReloadOutlastsServerWriteTimeout(t *testing.T) {
	p := newPipeline(t, fullSite())
	service := NewService(
		p.service.Source(),
		slowFetcher{Fetcher: NewHTTPFetcher(5*time.Second, ""), delay: 150 * time.Millisecond},
		NewLoader(p.gate, p.repo, true),
		p.logRepo,
		WithDeadline(5*time.Second),
	)

	api := httptest.NewUnstartedServer(http.HandlerFunc(NewHTTPHandler(service, p.logRepo).Reload))
	api.Config.WriteTimeout = 100 * time.Millisecond
	api.Start()
	defer api.Close()

	resp, err := http.Post(api.URL+"/reload_currencies", "application/json", nil)
	if err != nil {
		t.Fatalf("client did not receive the reload result: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var summary Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.RowsLoaded != 2 {
		t.Fatalf("expected 2 rows loaded, got %+v", summary)
	}
}

func TestReloadHandlerSuccess(t *testing.T) {
	p := newPipeline(t, fullSite())
	handler := NewHTTPHandler(p.service, p.logRepo)

	rec := httptest.NewRecorder()
	handler.Reload(rec, httptest.NewRequest(http.MethodPost, "/reload_currencies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.RowsLoaded != 2 {
		t.Fatalf("expected 2 rows loaded, got %+v", summary)
	}
}

func TestReloadHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name      string
		pages     map[string]string
		recalcErr error
		status    int
		stage     Stage
		retryable bool
		stale     bool
	}{
		{
			name:   "missing frame",
			pages:  map[string]string{"/kursna-lista/": "<html></html>"},
			status: http.StatusBadGateway,
			stage:  StageParse,
		},
		{
			name:      "unreachable table",
			pages:     map[string]string{"/kursna-lista/": outerPage},
			status:    http.StatusBadGateway,
			stage:     StageFetch,
			retryable: true,
		},
		{
			name:      "recalculation failure",
			pages:     fullSite(),
			recalcErr: errors.New("procedure missing"),
			status:    http.StatusInternalServerError,
			stage:     StageRecalculate,
			retryable: true,
			stale:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, tt.pages)
			p.repo.recalcErr = tt.recalcErr
			handler := NewHTTPHandler(p.service, p.logRepo)

			rec := httptest.NewRecorder()
			handler.Reload(rec, httptest.NewRequest(http.MethodPost, "/reload_currencies", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body reloadErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Stage != tt.stage || body.Retryable != tt.retryable || body.Stale != tt.stale {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestListRunsHandler(t *testing.T) {
	populated := &stubLogRepo{runs: []domain.IngestionRun{
		{ID: uuid.New(), Status: domain.IngestionStatusSucceeded, RowsLoaded: 30},
		{ID: uuid.New(), Status: domain.IngestionStatusFailed},
	}}

	tests := []struct {
		name   string
		repo   *stubLogRepo
		query  string
		status int
		count  int
	}{
		{name: "empty log", repo: &stubLogRepo{}, status: http.StatusNotFound},
		{name: "all runs", repo: populated, status: http.StatusOK, count: 2},
		{name: "limited", repo: populated, query: "?limit=1", status: http.StatusOK, count: 1},
		{name: "bad limit", repo: populated, query: "?limit=abc", status: http.StatusBadRequest},
		{name: "negative limit", repo: populated, query: "?limit=-1", status: http.StatusBadRequest},
		{name: "store failure", repo: &stubLogRepo{listErr: errors.New("down")}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHTTPHandler(nil, tt.repo)
			rec := httptest.NewRecorder()
			handler.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/get_ingestion_runs"+tt.query, nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var runs []domain.IngestionRun
			if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
				t.Fatalf("decode runs: %v", err)
			}
			if len(runs) != tt.count {
				t.Fatalf("expected %d runs, got %d", tt.count, len(runs))
			}
		})
	}
}
