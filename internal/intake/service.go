package intake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/internal/notify"
	"github.com/macspp/lead-intake/internal/observability/metrics"
	"github.com/macspp/lead-intake/pkg/logging"
)

// DefaultRedirect is where the site sends a lead after a successful submit.
const DefaultRedirect = "/thank-you"

// ErrSubmissionFailed is returned when a valid submission could not be stored.
var ErrSubmissionFailed = errors.New("intake: submission failed")

// ValidationError carries per-field messages for invalid input.
type ValidationError struct {
	Fields leads.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "intake: invalid fields: " + strings.Join(names, ", ")
}

// Dispatcher fans a stored submission out to the notification channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub *leads.Submission) notify.Report
}

// Result describes an accepted submission.
type Result struct {
	ID         string        `json:"id"`
	Redirect   string        `json:"redirect"`
	Deliveries notify.Report `json:"-"`
}

// Service validates, stores and fans out lead submissions.
type Service struct {
	validator *leads.Validator
	repo      leads.Repository
	fanout    Dispatcher
	logger    *logging.Logger
	metrics   *metrics.LeadMetrics
	redirect  string
}

// NewService creates the intake orchestrator. A nil fanout stores leads
// without notifying anyone.
func NewService(validator *leads.Validator, repo leads.Repository, fanout Dispatcher, logger *logging.Logger, m *metrics.LeadMetrics) *Service {
	if repo == nil {
		panic("intake: repository required")
	}
	if validator == nil {
		validator = leads.NewValidator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		validator: validator,
		repo:      repo,
		fanout:    fanout,
		logger:    logger,
		metrics:   m,
		redirect:  DefaultRedirect,
	}
}

// WithRedirect overrides the post-submit redirect path.
func (s *Service) WithRedirect(path string) *Service {
	if strings.TrimSpace(path) != "" {
		s.redirect = path
	}
	return s
}

// Submit validates raw, stores it and notifies every channel. Invalid input
// returns *ValidationError with nothing stored or sent. A store failure
// returns ErrSubmissionFailed and no channel is contacted. Channel failures
// are reported in Result.Deliveries and never fail the submission.
func (s *Service) Submit(ctx context.Context, raw leads.RawSubmission) (*Result, error) {
	sub, fieldErrs := s.validator.Validate(raw)
	if fieldErrs != nil {
		s.metrics.ObserveSubmission("invalid")
		s.logger.Info("lead submission rejected", "fields", len(fieldErrs))
		return nil, &ValidationError{Fields: fieldErrs}
	}

	id, err := s.repo.Append(ctx, sub)
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		s.logger.Error("failed to store lead submission", "error", err, "lead_email", sub.Email)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	s.metrics.ObserveSubmission("accepted")
	s.logger.Info("lead submission stored", "lead_id", id, "city", sub.City, "project_type", string(sub.ProjectType))

	result := &Result{ID: id, Redirect: s.redirect}
	if s.fanout != nil {
		result.Deliveries = s.fanout.Dispatch(ctx, sub)
		if failed := result.Deliveries.Failed(); len(failed) > 0 {
			s.logger.Warn("lead stored with undelivered notifications", "lead_id", id, "channels", failed)
		}
	}
	return result, nil
}
