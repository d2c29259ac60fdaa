package intake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/pkg/logging"
)

func newTestHandler(repo leads.Repository) *Handler {
	logger := logging.Discard()
	return NewHandler(
		NewService(nil, repo, newFanout(fiveChannels()), logger, nil),
		NewDeletionService(nil, repo, logger),
		logger,
	)
}

func TestSubmitLead_JSON(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	h := newTestHandler(repo)

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"215-555-0100","city":"Media","projectType":"interior","consent":true,"utm_source":"google"}`
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.SubmitLead(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp SubmitResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "/thank-you", resp.Redirect)

	stored, _ := repo.List(req.Context(), leads.ListFilter{})
	require.Len(t, stored, 1)
	require.Equal(t, "google", stored[0].UTMSource)
}

func TestSubmitLead_Form(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	h := newTestHandler(repo)

	form := url.Values{
		"name":        {"Jane Doe"},
		"email":       {"jane@example.com"},
		"phone":       {"215-555-0100"},
		"city":        {"Media"},
		"projectType": {"exterior"},
		"consent":     {"on"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	w := httptest.NewRecorder()
	h.SubmitLead(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stored, _ := repo.List(req.Context(), leads.ListFilter{})
	require.Equal(t, leads.ProjectExterior, stored[0].ProjectType)
}

func TestSubmitLead_ValidationErrors(t *testing.T) {
	h := newTestHandler(leads.NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"J","consent":false}`))
	w := httptest.NewRecorder()
	h.SubmitLead(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ErrorsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "Name must be at least 2 characters", resp.Errors["name"])
	require.Contains(t, resp.Errors, "consent")
}

func TestSubmitLead_BadBody(t *testing.T) {
	h := newTestHandler(leads.NewInMemoryRepository())

	w := httptest.NewRecorder()
	h.SubmitLead(w, httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitLead_StoreFailure(t *testing.T) {
	h := newTestHandler(brokenRepo{})

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"215-555-0100","city":"Media","projectType":"interior","consent":true}`
	w := httptest.NewRecorder()
	h.SubmitLead(w, httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body)))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp["error"])
}

func TestUnsubscribe(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	h := newTestHandler(repo)
	_, err := h.service.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(), janeDoe())
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        string
		contentType string
		wantCode    int
		wantRemoved int64
	}{
		{"removes", `{"email":"jane@example.com"}`, "application/json", http.StatusOK, 1},
		{"repeat", `{"email":"jane@example.com"}`, "application/json", http.StatusOK, 0},
		{"form", "email=jane%40example.com", "application/x-www-form-urlencoded", http.StatusOK, 0},
		{"invalid", `{"email":"nope"}`, "application/json", http.StatusUnprocessableEntity, 0},
		{"bad body", `{`, "application/json", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/unsubscribe", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			h.Unsubscribe(w, req)

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusOK {
				var resp UnsubscribeResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				require.True(t, resp.Success)
				require.Equal(t, tt.wantRemoved, resp.Removed)
			}
		})
	}
}

func TestFormBool(t *testing.T) {
	for _, v := range []string{"true", "on", "ON", "1", "yes"} {
		require.True(t, formBool(v), v)
	}
	for _, v := range []string{"", "false", "off", "0"} {
		require.False(t, formBool(v), v)
	}
}
