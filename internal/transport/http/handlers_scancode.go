package httptransport

import (
	"net/http"
	"strconv"

	"credgate/pkg/platform/httputil"
)

func (h *Handler) handleScancode(w http.ResponseWriter, r *http.Request) {
	id, err := credentialIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payload, err := h.scancodes.Embed(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleScancodeImage(w http.ResponseWriter, r *http.Request) {
	id, err := credentialIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	png, err := h.scancodes.Image(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}
