package quote

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lanewise/internal/rating"
	derrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/platform/httputil"
	"lanewise/pkg/requestcontext"
)

// Handler exposes the quote endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the quote routes. Auth middleware is applied by the router
// that mounts this handler.
func (h *Handler) Register(r chi.Router) {
	r.Post("/quotes", h.handleCreate)
	r.Get("/quotes", h.handleList)
	r.Get("/quotes/{reference}", h.handleGet)
	r.Post("/quotes/{reference}/rerate", h.handleRerate)
}

// CreateRequest is the payload for quoting a new risk.
type CreateRequest struct {
	Driver    rating.DriverInput         `json:"driver"`
	Vehicles  []rating.VehicleInput      `json:"vehicles"`
	Location  rating.LocationInput       `json:"location"`
	Coverages []rating.CoverageSelection `json:"coverages"`
}

// RerateRequest replaces the coverage selections on an existing quote.
type RerateRequest struct {
	Coverages []rating.CoverageSelection `json:"coverages"`
}

// View is the API shape of a quote. DaysRemaining and Urgency are derived
// from the expiration clock at read time.
type View struct {
	Quote
	DaysRemaining int     `json:"days_remaining"`
	Urgency       Urgency `json:"urgency"`
}

func (h *Handler) view(r *http.Request, q *Quote) View {
	now := requestcontext.Now(r.Context())
	return View{
		Quote:         *q,
		DaysRemaining: q.DaysRemaining(now),
		Urgency:       q.UrgencyTier(now),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	q, err := h.service.Create(r.Context(), rating.RateRequest{
		Driver:    req.Driver,
		Vehicles:  req.Vehicles,
		Location:  req.Location,
		Coverages: req.Coverages,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.view(r, q))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Get(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.view(r, q))
}

func (h *Handler) handleRerate(w http.ResponseWriter, r *http.Request) {
	var req RerateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	q, err := h.service.Rerate(r.Context(), chi.URLParam(r, "reference"), req.Coverages)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.view(r, q))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	agentID := requestcontext.AgentID(r.Context())
	if agentID == "" {
		httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "agent identity missing"))
		return
	}
	quotes, err := h.service.ListByAgent(r.Context(), agentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	views := make([]View, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, h.view(r, q))
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}
