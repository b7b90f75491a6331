package core

// service.go orchestrates a full validation run: ingest the payload,
// validate the batch, render the report, and (when a store is wired)
// persist the run and its accepted customers. The engine itself stays
// pure; all state lives behind the Store interface so the service is
// testable without a database.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one persisted validation run.
type Run struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	TotalRows  int       `json:"total_rows"`
	ValidRows  int       `json:"valid_rows"`
	ErrorRows  int       `json:"error_rows"`
	ErrorCount int       `json:"error_count"`
	Report     string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists validation runs and their accepted customers.
// Implemented by the Postgres store; a nil Store disables persistence.
type Store interface {
	InsertRun(ctx context.Context, run Run, valid []ValidRecord) error
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	CustomersByRun(ctx context.Context, id uuid.UUID) ([]Customer, error)
}

// ErrorDetail is a FieldError annotated with its user-facing code.
type ErrorDetail struct {
	FieldError
	Code string `json:"code"`
}

// RunSummary is the result of one validation run, shaped for API and
// CLI consumers. Report and Result carry the full artifacts for
// collaborators that write files.
type RunSummary struct {
	RunID    uuid.UUID     `json:"run_id"`
	FileName string        `json:"file_name"`
	Total    int           `json:"total_records"`
	Valid    int           `json:"valid_records"`
	Invalid  int           `json:"invalid_rows"`
	Errors   []ErrorDetail `json:"errors"`

	Report string      `json:"-"`
	Result BatchResult `json:"-"`
}

// Service runs validations and exposes run history.
type Service struct {
	store Store
}

// NewService creates a Service. store may be nil, in which case runs
// are not persisted and history lookups fail.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Persistent reports whether runs are being persisted.
func (s *Service) Persistent() bool {
	return s.store != nil
}

// ValidateFile runs the full pipeline on a CSV payload. Row-level
// defects never fail the call; the only errors returned are fatal ones
// (unreadable file, missing required column, persistence failure).
func (s *Service) ValidateFile(ctx context.Context, fileName string, data []byte) (*RunSummary, error) {
	records, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}

	result := ValidateBatch(records)
	report := FormatReport(result)

	run := Run{
		ID:         uuid.New(),
		FileName:   fileName,
		TotalRows:  result.Total,
		ValidRows:  len(result.Valid),
		ErrorRows:  result.InvalidRows(),
		ErrorCount: len(result.Errors),
		Report:     report,
		CreatedAt:  time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.InsertRun(ctx, run, result.Valid); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	errors := make([]ErrorDetail, 0, len(result.Errors))
	for _, e := range result.Errors {
		errors = append(errors, ErrorDetail{
			FieldError: e,
			Code:       MessageForKind(e.Kind).Code,
		})
	}

	return &RunSummary{
		RunID:    run.ID,
		FileName: run.FileName,
		Total:    run.TotalRows,
		Valid:    run.ValidRows,
		Invalid:  run.ErrorRows,
		Errors:   errors,
		Report:   report,
		Result:   result,
	}, nil
}

// Run returns one persisted validation run.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	if s.store == nil {
		return Run{}, fmt.Errorf("no database configured")
	}
	return s.store.GetRun(ctx, id)
}

// Runs returns the most recent persisted runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]Run, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no database configured")
	}
	return s.store.ListRuns(ctx, limit)
}

// RunCustomers returns the accepted customers of a persisted run, in
// input row order.
func (s *Service) RunCustomers(ctx context.Context, id uuid.UUID) ([]Customer, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no database configured")
	}
	return s.store.CustomersByRun(ctx, id)
}
