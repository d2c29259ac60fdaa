package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/macspp/lead-intake/pkg/logging"
)

func seedRepo(t *testing.T, n int) (*InMemoryRepository, []string) {
	t.Helper()
	repo := NewInMemoryRepository()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := repo.Append(context.Background(), &Submission{Name: "Lead", Email: "lead@example.com"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ids = append(ids, id)
	}
	return repo, ids
}

func TestListLeads_DefaultsAndPaging(t *testing.T) {
	repo, _ := seedRepo(t, 3)
	handler := NewHandler(repo, logging.Discard())

	req := httptest.NewRequest(http.MethodGet, "/admin/leads?limit=2&offset=1", nil)
	w := httptest.NewRecorder()
	handler.ListLeads(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || resp.Limit != 2 || resp.Offset != 1 {
		t.Fatalf("unexpected paging %+v", resp)
	}
}

func TestListLeads_IgnoresBadPagingParams(t *testing.T) {
	repo, _ := seedRepo(t, 1)
	handler := NewHandler(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads?limit=9999&offset=-3", nil)
	w := httptest.NewRecorder()
	handler.ListLeads(w, req)

	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Limit != 50 || resp.Offset != 0 || resp.Count != 1 {
		t.Fatalf("expected defaults, got %+v", resp)
	}
}

type failingRepo struct {
	InMemoryRepository
	err error
}

func (f *failingRepo) List(context.Context, ListFilter) ([]*Submission, error) {
	return nil, f.err
}

func (f *failingRepo) UpdateStatus(context.Context, string, string) error {
	return f.err
}

func TestListLeads_StoreError(t *testing.T) {
	handler := NewHandler(&failingRepo{err: ErrStoreUnavailable}, logging.Discard())

	w := httptest.NewRecorder()
	handler.ListLeads(w, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func patchStatus(handler *Handler, id, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Patch("/admin/leads/{leadID}/status", handler.UpdateStatus)

	req := httptest.NewRequest(http.MethodPatch, "/admin/leads/"+id+"/status", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateStatus(t *testing.T) {
	repo, ids := seedRepo(t, 1)
	handler := NewHandler(repo, logging.Discard())

	tests := []struct {
		name string
		id   string
		body string
		want int
	}{
		{"updates", ids[0], `{"status":"contacted"}`, http.StatusOK},
		{"bad json", ids[0], `{`, http.StatusBadRequest},
		{"empty status", ids[0], `{"status":""}`, http.StatusBadRequest},
		{"unknown id", "does-not-exist", `{"status":"contacted"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := patchStatus(handler, tt.id, tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	all, _ := repo.List(context.Background(), ListFilter{})
	if all[0].Status != "contacted" {
		t.Fatalf("expected status persisted, got %q", all[0].Status)
	}
}

func TestUpdateStatus_StoreError(t *testing.T) {
	handler := NewHandler(&failingRepo{err: errors.New("db down")}, logging.Discard())

	w := patchStatus(handler, "abc", `{"status":"won"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
