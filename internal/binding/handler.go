package binding

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

func (h *Handler) Register(r chi.Router) {
	r.Post("/quotes/{reference}/bind", h.handleBind)
}

func (h *Handler) handleBind(w http.ResponseWriter, r *http.Request) {
	var req BindRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	pol, err := h.service.Bind(r.Context(), chi.URLParam(r, "reference"), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pol)
}
