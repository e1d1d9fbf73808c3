package membership

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olimpofit/gym-server/internal/pkg/httputil"
)

// Handlers provides HTTP handlers for the membership API
type Handlers struct {
	service *Service
}

// NewHandlers creates new membership handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Routes mounts the membership endpoints on r. Deletion is an
// explicit admin operation.
func (h *Handlers) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/expiring", h.HandleExpiring)
	r.Get("/user/{userID}", h.HandleListByUser)
	r.Get("/{id}", h.HandleGet)
	r.Patch("/{id}", h.HandleUpdate)
	r.With(admin).Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/renew", h.HandleRenew)
}

// HandleCreate creates a membership
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, m)
}

// HandleList returns memberships with optional type/status filters
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	f := ListFilter{
		Type:   Type(r.URL.Query().Get("type")),
		Status: Status(r.URL.Query().Get("status")),
	}
	f.Limit, f.Offset = httputil.PageParams(r)

	memberships, total, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if memberships == nil {
		memberships = []*Membership{}
	}
	httputil.OK(w, map[string]interface{}{
		"items": memberships,
		"total": total,
	})
}

// HandleListByUser returns all memberships for one user
func (h *Handlers) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	f := ListFilter{UserID: chi.URLParam(r, "userID")}
	f.Limit, f.Offset = httputil.PageParams(r)

	memberships, total, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if memberships == nil {
		memberships = []*Membership{}
	}
	httputil.OK(w, map[string]interface{}{
		"items": memberships,
		"total": total,
	})
}

// HandleGet returns a single membership
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, m)
}

// HandleUpdate applies a partial update
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	m, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, m)
}

// HandleDelete removes a membership
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.NoContent(w)
}

// HandleRenew renews a membership for another 30-day period
func (h *Handlers) HandleRenew(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.RenewMembership(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, m)
}

// HandleExpiring lists ACTIVE memberships ending within ?days (default 7)
func (h *Handlers) HandleExpiring(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "days must be a positive integer")
			return
		}
		days = n
	}

	now := time.Now().UTC()
	memberships, err := h.service.FindExpiringMemberships(r.Context(), now, now.AddDate(0, 0, days), false)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if memberships == nil {
		memberships = []*Membership{}
	}
	httputil.OK(w, map[string]interface{}{
		"items": memberships,
		"total": len(memberships),
	})
}
