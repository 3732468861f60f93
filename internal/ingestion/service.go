package ingestion

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rpattn/nwreports/internal/domain"
	"github.com/rpattn/nwreports/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultDeadline = 2 * time.Minute
	recordTimeout   = 5 * time.Second
	rateDateLayout  = "2006-01-02"
)

// Source describes where the exchange-rate table is published and how to read it.
type Source struct {
	OuterURL      string
	BaseHost      string
	FrameSelector string
	RowSelector   string
	CellSelector  string
	HeaderRows    int
}

// DefaultSource points at the official middle-rate list of the National Bank of Serbia.
func DefaultSource() Source {
	return Source{
		OuterURL:      "https://www.nbs.rs/sr_RS/finansijsko_trziste/medjubankarsko-devizno-trziste/kursna-lista/zvanicni-srednji-kurs-dinara/",
		BaseHost:      "https://webappcenter.nbs.rs",
		FrameSelector: "iframe#frameId",
		RowSelector:   "tr",
		CellSelector:  "td",
		HeaderRows:    DefaultHeaderRows,
	}
}

// Summary reports the outcome of a successful run.
type Summary struct {
	RunID         uuid.UUID `json:"runId"`
	FrameURL      string    `json:"frameUrl"`
	RateDate      string    `json:"rateDate"`
	RowsScraped   int       `json:"rowsScraped"`
	RowsDiscarded int       `json:"rowsDiscarded"`
	RowsLoaded    int       `json:"rowsLoaded"`
}

// Option configures the Service.
type Option func(*Service)

// WithDeadline bounds a whole run, fetches and database work included.
func WithDeadline(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// WithClock overrides the time source used for run timestamps and rate dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs the scrape, normalise and reload pipeline.
type Service struct {
	fetcher  Fetcher
	loader   *Loader
	logRepo  repository.IngestionLogRepository
	deadline time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	source Source
}

// NewService creates a new ingestion service. logRepo may be nil.
func NewService(
	source Source,
	fetcher Fetcher,
	loader *Loader,
	logRepo repository.IngestionLogRepository,
	opts ...Option,
) *Service {
	s := &Service{
		fetcher:  fetcher,
		loader:   loader,
		logRepo:  logRepo,
		deadline: defaultDeadline,
		now:      time.Now,
		source:   source,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the active source settings.
func (s *Service) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Deadline is the upper bound of a single run.
func (s *Service) Deadline() time.Duration {
	return s.deadline
}

// SetSource swaps the source settings used by subsequent runs.
func (s *Service) SetSource(source Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
}

// Run executes one reload. Cancellation of ctx does not stop a run that has
// started; only the service deadline does.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deadline)
	defer cancel()

	source := s.Source()
	run := domain.IngestionRun{
		ID:        uuid.New(),
		SourceURL: source.OuterURL,
		StartedAt: s.now().UTC(),
	}
	log.Printf("[INGEST] run %s started from %s", run.ID, source.OuterURL)

	summary, err := s.run(ctx, source)
	summary.RunID = run.ID

	run.FinishedAt = s.now().UTC()
	run.RowsScraped = summary.RowsScraped
	run.RowsLoaded = summary.RowsLoaded
	if err != nil {
		run.Status = domain.IngestionStatusFailed
		message := err.Error()
		run.ErrorMessage = &message
		if stage := StageOf(err); stage != "" {
			value := string(stage)
			run.Stage = &value
		}
		log.Printf("[INGEST] run %s failed: %v", run.ID, err)
	} else {
		run.Status = domain.IngestionStatusSucceeded
		log.Printf("[INGEST] run %s loaded %d of %d rows (%d discarded)",
			run.ID, summary.RowsLoaded, summary.RowsScraped, summary.RowsDiscarded)
	}

	s.record(ctx, run)
	return summary, err
}

func (s *Service) run(ctx context.Context, source Source) (Summary, error) {
	var summary Summary

	outer, err := s.fetcher.Fetch(ctx, source.OuterURL)
	if err != nil {
		return summary, &ReloadError{Stage: StageFetch, Err: err}
	}

	frameURL, ok := LocateFrameURL(outer, source.FrameSelector, source.BaseHost)
	if !ok {
		return summary, &ReloadError{Stage: StageParse, Err: ErrFrameNotFound}
	}
	summary.FrameURL = frameURL

	inner, err := s.fetcher.Fetch(ctx, frameURL)
	if err != nil {
		return summary, &ReloadError{Stage: StageFetch, Err: err}
	}

	summary.RateDate = s.now().Format(rateDateLayout)
	rows := ExtractRows(inner, source.RowSelector, source.CellSelector, source.HeaderRows)
	records, scraped := NormalizeAll(rows, summary.RateDate)
	summary.RowsScraped = scraped
	summary.RowsDiscarded = scraped - len(records)

	loaded, err := s.loader.Reload(ctx, records)
	summary.RowsLoaded = loaded
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *Service) record(ctx context.Context, run domain.IngestionRun) {
	if s.logRepo == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.logRepo.Record(recordCtx, run); err != nil {
		log.Printf("[INGEST] failed to record run %s: %v", run.ID, err)
	}
}
