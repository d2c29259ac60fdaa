package intake

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler serves the public intake endpoints.
type Handler struct {
	service  *Service
	deletion *DeletionService
	logger   *logging.Logger
}

// NewHandler creates the public intake handler.
func NewHandler(service *Service, deletion *DeletionService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, deletion: deletion, logger: logger}
}

// SubmitResponse is returned for an accepted lead.
type SubmitResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Redirect string `json:"redirect"`
}

// ErrorsResponse carries per-field validation messages.
type ErrorsResponse struct {
	Errors leads.FieldErrors `json:"errors"`
}

// UnsubscribeRequest is the body of POST /api/unsubscribe.
type UnsubscribeRequest struct {
	Email string `json:"email"`
}

// UnsubscribeResponse reports how many submissions were erased.
type UnsubscribeResponse struct {
	Success bool  `json:"success"`
	Removed int64 `json:"removed"`
}

// SubmitLead handles POST /api/leads. It accepts JSON or form-encoded bodies.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeSubmission(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), raw)
	var verr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorsResponse{Errors: verr.Fields})
		return
	default:
		h.logger.Error("lead submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "We couldn't save your request. Please try again or call us directly.")
		return
	}

	writeJSON(w, http.StatusCreated, SubmitResponse{
		Success:  true,
		ID:       result.ID,
		Redirect: result.Redirect,
	})
}

// Unsubscribe handles POST /api/unsubscribe.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Email = r.PostForm.Get("email")
	} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	removed, err := h.deletion.DeleteByEmail(r.Context(), req.Email)
	var verr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorsResponse{Errors: verr.Fields})
		return
	default:
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	writeJSON(w, http.StatusOK, UnsubscribeResponse{Success: true, Removed: removed})
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (leads.RawSubmission, error) {
	var raw leads.RawSubmission
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if !isForm(r) {
		err := json.NewDecoder(r.Body).Decode(&raw)
		return raw, err
	}

	if err := r.ParseForm(); err != nil {
		return raw, err
	}
	form := r.PostForm
	raw = leads.RawSubmission{
		Name:        form.Get("name"),
		Email:       form.Get("email"),
		Phone:       form.Get("phone"),
		City:        form.Get("city"),
		ProjectType: form.Get("projectType"),
		Message:     form.Get("message"),
		Consent:     formBool(form.Get("consent")),
		UTMSource:   form.Get("utm_source"),
		UTMMedium:   form.Get("utm_medium"),
		UTMCampaign: form.Get("utm_campaign"),
		UTMContent:  form.Get("utm_content"),
		UTMTerm:     form.Get("utm_term"),
	}
	return raw, nil
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded"
}

// formBool reads an HTML checkbox value.
func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
