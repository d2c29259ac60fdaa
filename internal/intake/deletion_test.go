package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/pkg/logging"
)

func TestDeleteByEmail_RemovesOnlyMatching(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	svc := NewService(nil, repo, nil, logging.Discard(), nil)
	for _, email := range []string{"jane@example.com", "bob@example.com", "jane@example.com"} {
		raw := janeDoe()
		raw.Email = email
		_, err := svc.Submit(context.Background(), raw)
		require.NoError(t, err)
	}

	deletion := NewDeletionService(nil, repo, logging.Discard())
	removed, err := deletion.DeleteByEmail(context.Background(), "  jane@example.com ")
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	rest, _ := repo.List(context.Background(), leads.ListFilter{})
	require.Len(t, rest, 1)
	require.Equal(t, "bob@example.com", rest[0].Email)
}

func TestDeleteByEmail_UnknownAndRepeatedAreIdempotent(t *testing.T) {
	deletion := NewDeletionService(nil, leads.NewInMemoryRepository(), logging.Discard())

	for i := 0; i < 2; i++ {
		removed, err := deletion.DeleteByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		require.Zero(t, removed)
	}
}

func TestDeleteByEmail_InvalidEmail(t *testing.T) {
	deletion := NewDeletionService(nil, leads.NewInMemoryRepository(), nil)

	_, err := deletion.DeleteByEmail(context.Background(), "not-an-email")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Please enter a valid email address", verr.Fields["email"])
}

func TestDeleteByEmail_StoreFailure(t *testing.T) {
	deletion := NewDeletionService(nil, brokenRepo{}, logging.Discard())

	_, err := deletion.DeleteByEmail(context.Background(), "jane@example.com")
	require.ErrorIs(t, err, leads.ErrStoreUnavailable)
}
