package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var submissionColumns = []string{
	"id", "name", "email", "phone", "city", "project_type", "message", "consent",
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term", "status", "created_at",
}

func TestPostgresRepository_AppendInsertsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2024, 6, 1, 17, 30, 15, 0, time.UTC)
	repo := NewPostgresRepository(mock).WithClock(fixedClock(at))

	sub := &Submission{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "215-555-0100",
		City:        "Media",
		ProjectType: ProjectInterior,
		Consent:     true,
		UTMSource:   "google",
	}

	mock.ExpectExec("INSERT INTO form_submissions").
		WithArgs(
			pgxmock.AnyArg(),
			"Jane Doe",
			"jane@example.com",
			"215-555-0100",
			"Media",
			"interior",
			"",
			true,
			"google",
			"",
			"",
			"",
			"",
			DefaultStatus,
			ToZone(at),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.Append(context.Background(), sub)
	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	require.NoError(t, parseErr)
	require.Equal(t, id, sub.ID)
	require.Equal(t, "2024-06-01T12:30:15-05:00", FormatTimestamp(sub.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_AppendWrapsStoreError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectExec("INSERT INTO form_submissions").
		WillReturnError(errors.New("connection refused"))

	sub := &Submission{Name: "Jane Doe", Email: "jane@example.com"}
	_, err = repo.Append(context.Background(), sub)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Empty(t, sub.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	newer := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	older := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(submissionColumns).
		AddRow("id-2", "Bob Smith", "bob@example.com", "2155550101", "Media", "exterior", "", true, "", "", "", "", "", "new", newer).
		AddRow("id-1", "Jane Doe", "jane@example.com", "2155550100", "Media", "interior", "hi", true, "fb", "cpc", "spring", "", "", "contacted", older)

	mock.ExpectQuery("SELECT .* FROM form_submissions ORDER BY created_at DESC").
		WithArgs(50, 10).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), ListFilter{Limit: 50, Offset: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "id-2", got[0].ID)
	require.Equal(t, ProjectExterior, got[0].ProjectType)
	require.Equal(t, "contacted", got[1].Status)
	require.Equal(t, "spring", got[1].UTMCampaign)
	require.Equal(t, "2024-06-01T05:00:00-05:00", FormatTimestamp(got[1].CreatedAt))
	require.Equal(t, Zone, got[1].CreatedAt.Location())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectQuery("SELECT .* FROM form_submissions").WillReturnError(errors.New("boom"))

	_, err = repo.List(context.Background(), ListFilter{})
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestPostgresRepository_DeleteByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectExec("DELETE FROM form_submissions").
		WithArgs("jane@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM form_submissions").
		WithArgs("jane@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := repo.DeleteByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	removed, err = repo.DeleteByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.EqualValues(t, 0, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE form_submissions SET status").
		WithArgs("contacted", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE form_submissions SET status").
		WithArgs("contacted", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), id.String(), "contacted"))
	require.ErrorIs(t, repo.UpdateStatus(context.Background(), id.String(), "contacted"), ErrLeadNotFound)
	require.ErrorIs(t, repo.UpdateStatus(context.Background(), "not-a-uuid", "contacted"), ErrLeadNotFound)
	require.ErrorIs(t, repo.UpdateStatus(context.Background(), id.String(), ""), ErrInvalidStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}
