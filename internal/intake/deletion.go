package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/pkg/logging"
)

const invalidEmailMessage = "Please enter a valid email address"

// DeletionService erases every stored submission for an email address.
type DeletionService struct {
	validator *leads.Validator
	repo      leads.Repository
	logger    *logging.Logger
}

// NewDeletionService creates the service that erases a lead's submissions.
func NewDeletionService(validator *leads.Validator, repo leads.Repository, logger *logging.Logger) *DeletionService {
	if repo == nil {
		panic("intake: repository required")
	}
	if validator == nil {
		validator = leads.NewValidator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DeletionService{validator: validator, repo: repo, logger: logger}
}

// DeleteByEmail removes all submissions whose email equals the trimmed
// input and returns how many were removed. Zero matches is not an error.
func (d *DeletionService) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if !d.validator.ValidEmail(email) {
		return 0, &ValidationError{Fields: leads.FieldErrors{"email": invalidEmailMessage}}
	}

	removed, err := d.repo.DeleteByEmail(ctx, email)
	if err != nil {
		d.logger.Error("failed to delete lead submissions", "error", err)
		return 0, fmt.Errorf("intake: delete by email: %w", err)
	}
	d.logger.Info("lead submissions erased", "removed", removed)
	return removed, nil
}
