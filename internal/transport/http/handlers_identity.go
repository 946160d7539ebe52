package httptransport

import (
	"encoding/json"
	"net/http"

	"credgate/internal/identity/models"
	"credgate/internal/identity/service"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/platform/httputil"
	"credgate/pkg/requestcontext"
)

func (h *Handler) handleRegisterHolder(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterHolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.identity.RegisterHolder(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, h.authResponse(result))
}

func (h *Handler) handleRegisterIssuer(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterIssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.identity.RegisterIssuer(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, h.authResponse(result))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.identity.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.authResponse(result))
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requestcontext.Claims(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	identity, err := h.identity.Profile(r.Context(), claims)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user": identityJSON(identity),
	})
}

func (h *Handler) authResponse(result *service.AuthResult) map[string]any {
	return map[string]any{
		"token":      result.Token,
		"expires_in": int64(h.tokenTTL.Seconds()),
		"user":       identityJSON(result.Identity),
	}
}

// identityJSON shapes an identity for responses. The secret hash never
// leaves the service boundary.
func identityJSON(identity *models.Identity) map[string]any {
	out := map[string]any{
		"email": identity.Email,
		"role":  identity.Role.String(),
	}
	if identity.Role == domain.RoleIssuer {
		out["organization_id"] = identity.IssuerID.String()
		out["organization_name"] = identity.IssuerName
		out["contact_person"] = identity.ContactPerson
		return out
	}
	out["student_id"] = identity.HolderID.String()
	out["first_name"] = identity.FirstName
	out["last_name"] = identity.LastName
	out["university"] = identity.Institution
	return out
}
