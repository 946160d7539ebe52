package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"credgate/internal/ledger"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/platform/httputil"
	"credgate/pkg/requestcontext"
)

func (h *Handler) handleHolderCredentials(w http.ResponseWriter, r *http.Request) {
	claims, ok := requestcontext.Claims(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	summaries, err := h.trust.HolderCredentials(r.Context(), claims)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, credentialList(summaries))
}

func (h *Handler) handleCredentialDetail(w http.ResponseWriter, r *http.Request) {
	claims, ok := requestcontext.Claims(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := credentialIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.trust.CredentialDetail(r.Context(), claims, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"credential":   record,
		"verification": h.trust.Reference(id),
	})
}

func (h *Handler) handleIssuerCredentials(w http.ResponseWriter, r *http.Request) {
	claims, ok := requestcontext.Claims(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	summaries, err := h.trust.IssuerCredentials(r.Context(), claims)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, credentialList(summaries))
}

func (h *Handler) handleProvenance(w http.ResponseWriter, r *http.Request) {
	claims, ok := requestcontext.Claims(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := credentialIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	trace, err := h.trust.Provenance(r.Context(), claims, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"provenance": trace,
	})
}

func (h *Handler) handleVerifyPublic(w http.ResponseWriter, r *http.Request) {
	id, err := credentialIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.trust.VerifyPublic(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func credentialIDParam(r *http.Request) (domain.CredentialID, error) {
	return domain.ParseCredentialID(chi.URLParam(r, "credentialID"))
}

// credentialList wraps summaries so an empty answer serializes as an empty
// array, never null.
func credentialList(summaries []ledger.CredentialSummary) map[string]any {
	if summaries == nil {
		summaries = []ledger.CredentialSummary{}
	}
	return map[string]any{
		"credentials": summaries,
		"count":       len(summaries),
	}
}
