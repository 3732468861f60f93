package employees

import (
	"context"
	"fmt"

	"github.com/rpattn/nwreports/internal/domain"
	"github.com/rpattn/nwreports/internal/repository"
	"github.com/rpattn/nwreports/pkg/validator"
)

// ValidationFailedError carries the field errors of a rejected employee.
type ValidationFailedError struct {
	Result validator.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("employee failed validation with %d errors", len(e.Result.Errors))
}

// Service validates and inserts employees.
type Service struct {
	repo      repository.EmployeeRepository
	validator *validator.RecordValidator
}

// NewService creates a new employee service.
func NewService(repo repository.EmployeeRepository) *Service {
	return &Service{
		repo:      repo,
		validator: validator.NewRecordValidator(),
	}
}

// Validate checks the employee without touching the database.
func (s *Service) Validate(e domain.Employee) (validator.ValidationResult, error) {
	return s.validator.Validate(e)
}

// Create validates the employee and inserts it. A *ValidationFailedError is
// returned before any database work when validation fails.
func (s *Service) Create(ctx context.Context, e domain.Employee) error {
	result, err := s.Validate(e)
	if err != nil {
		return err
	}
	if !result.IsValid {
		return &ValidationFailedError{Result: result}
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}
