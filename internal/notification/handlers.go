package notification

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olimpofit/gym-server/internal/pkg/httputil"
)

// Handlers provides HTTP handlers for the notification API
type Handlers struct {
	service *Service
}

// NewHandlers creates new notification handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Routes mounts the notification endpoints on r. Mutating endpoints
// require the admin role; reads need only a valid token.
func (h *Handlers) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.With(admin).Post("/email", h.HandleSendEmail)
	r.With(admin).Post("/whatsapp", h.HandleSendWhatsApp)
	r.With(admin).Post("/membership-expiration", h.HandleMembershipExpiration)
	r.With(admin).Post("/membership-renewal", h.HandleMembershipRenewal)
	r.With(admin).Post("/bulk-email", h.HandleBulkEmail)
	r.Get("/", h.HandleList)
	r.Get("/user/{userID}", h.HandleListByUser)

	r.Route("/templates", func(r chi.Router) {
		r.With(admin).Post("/", h.HandleCreateTemplate)
		r.Get("/", h.HandleListTemplates)
		r.Get("/{id}", h.HandleGetTemplate)
		r.With(admin).Put("/{id}", h.HandleUpdateTemplate)
		r.With(admin).Delete("/{id}", h.HandleDeleteTemplate)
	})
}

// HandleSendEmail dispatches a single email
func (h *Handlers) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Recipient == "" || req.Message == "" {
		httputil.BadRequest(w, "recipient and message are required")
		return
	}

	ok := h.service.SendEmail(r.Context(), req)
	httputil.OK(w, map[string]bool{"success": ok})
}

// HandleSendWhatsApp dispatches a single WhatsApp message
func (h *Handlers) HandleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Recipient == "" || req.Message == "" {
		httputil.BadRequest(w, "recipient and message are required")
		return
	}

	ok := h.service.SendWhatsApp(r.Context(), req)
	httputil.OK(w, map[string]bool{"success": ok})
}

// HandleMembershipExpiration sends an expiry reminder email
func (h *Handlers) HandleMembershipExpiration(w http.ResponseWriter, r *http.Request) {
	var req LifecycleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		httputil.BadRequest(w, "email and name are required")
		return
	}

	ok := h.service.SendMembershipExpirationNotification(r.Context(), req)
	httputil.OK(w, map[string]bool{"success": ok})
}

// HandleMembershipRenewal sends a renewal confirmation email
func (h *Handlers) HandleMembershipRenewal(w http.ResponseWriter, r *http.Request) {
	var req LifecycleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		httputil.BadRequest(w, "email and name are required")
		return
	}

	ok := h.service.SendMembershipRenewalNotification(r.Context(), req)
	httputil.OK(w, map[string]bool{"success": ok})
}

// HandleBulkEmail sends an email to every listed recipient
func (h *Handlers) HandleBulkEmail(w http.ResponseWriter, r *http.Request) {
	var req BulkEmailRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	result, err := h.service.SendBulkEmail(r.Context(), req)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, result)
}

// HandleList returns notification records, newest first
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	f, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	notifications, total, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	httputil.OK(w, map[string]interface{}{
		"items": notifications,
		"total": total,
	})
}

// HandleListByUser returns one user's notification records
func (h *Handlers) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	f, ok := parseListFilter(w, r)
	if !ok {
		return
	}
	f.UserID = chi.URLParam(r, "userID")

	notifications, total, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	httputil.OK(w, map[string]interface{}{
		"items": notifications,
		"total": total,
	})
}

func parseListFilter(w http.ResponseWriter, r *http.Request) (ListFilter, bool) {
	q := r.URL.Query()
	f := ListFilter{
		Type:         NotifType(q.Get("type")),
		Status:       Status(q.Get("status")),
		UserID:       q.Get("user_id"),
		MembershipID: q.Get("membership_id"),
	}
	f.Limit, f.Offset = httputil.PageParams(r)

	for param, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if v := q.Get(param); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				httputil.BadRequest(w, param+" must be RFC3339")
				return f, false
			}
			*dst = &ts
		}
	}
	return f, true
}

// Template handlers

// HandleCreateTemplate creates a template
func (h *Handlers) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	t, err := h.service.CreateTemplate(r.Context(), req)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, t)
}

// HandleListTemplates returns all templates
func (h *Handlers) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if templates == nil {
		templates = []*Template{}
	}
	httputil.OK(w, templates)
}

// HandleGetTemplate returns one template
func (h *Handlers) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, t)
}

// HandleUpdateTemplate replaces a template
func (h *Handlers) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	t, err := h.service.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, t)
}

// HandleDeleteTemplate removes a non-default template
func (h *Handlers) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.NoContent(w)
}
