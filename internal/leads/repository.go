package leads

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	// Append assigns ID and CreatedAt, writes the row and returns the ID.
	Append(ctx context.Context, sub *Submission) (string, error)
	// List returns submissions newest first.
	List(ctx context.Context, filter ListFilter) ([]*Submission, error)
	// DeleteByEmail removes every row with an exactly matching email.
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	// UpdateStatus changes the operator status label of one submission.
	UpdateStatus(ctx context.Context, id, status string) error
}

// InMemoryRepository keeps submissions in process memory. Used for local
// development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Submission
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: time.Now}
}

// WithClock overrides the time source used for CreatedAt.
func (r *InMemoryRepository) WithClock(now func() time.Time) *InMemoryRepository {
	if now != nil {
		r.now = now
	}
	return r
}

// Append stores a copy of sub and fills in its ID and CreatedAt.
func (r *InMemoryRepository) Append(ctx context.Context, sub *Submission) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sub.ID = uuid.New().String()
	sub.CreatedAt = ToZone(r.now())
	if sub.Status == "" {
		sub.Status = DefaultStatus
	}

	stored := *sub
	r.mu.Lock()
	r.leads = append(r.leads, &stored)
	r.mu.Unlock()

	return sub.ID, nil
}

// List returns copies of stored submissions, newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Submission, 0, len(r.leads))
	for i := len(r.leads) - 1; i >= 0; i-- {
		cp := *r.leads[i]
		out = append(out, &cp)
	}
	return page(out, filter), nil
}

// DeleteByEmail removes all submissions whose email matches exactly.
func (r *InMemoryRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.leads[:0]
	var removed int64
	for _, lead := range r.leads {
		if lead.Email == email {
			removed++
			continue
		}
		kept = append(kept, lead)
	}
	for i := len(kept); i < len(r.leads); i++ {
		r.leads[i] = nil
	}
	r.leads = kept
	return removed, nil
}

// UpdateStatus sets the status label of the submission with id.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lead := range r.leads {
		if lead.ID == id {
			lead.Status = status
			return nil
		}
	}
	return ErrLeadNotFound
}

func page(items []*Submission, filter ListFilter) []*Submission {
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []*Submission{}
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items
}

var _ Repository = (*InMemoryRepository)(nil)
