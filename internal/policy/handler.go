package policy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lanewise/pkg/platform/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the policy routes. requireAdmin guards cancellation, which
// is not available to agents.
func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/policies/{reference}", h.handleGet)
	r.Post("/policies/{reference}/activate", h.handleActivate)
	r.With(requireAdmin).Post("/policies/{reference}/cancel", h.handleCancel)
}

// CancelRequest carries the reason recorded with an administrative
// cancellation.
type CancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Activate(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	p, err := h.service.Cancel(r.Context(), chi.URLParam(r, "reference"), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}
