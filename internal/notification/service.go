package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/olimpofit/gym-server/internal/errs"
	"github.com/olimpofit/gym-server/internal/membership"
	"github.com/olimpofit/gym-server/internal/user"
)

// bulkSuccessThreshold is the delivered fraction above which a bulk
// send is summarized as OK. Per-recipient counts remain authoritative.
const bulkSuccessThreshold = 0.9

const dateLayout = "02/01/2006"

// Service orchestrates notification delivery: template resolution,
// channel selection, audit-record creation and status updates. Send
// methods never panic or error past this boundary; every outcome ends
// up as a SENT or FAILED record and a boolean.
type Service struct {
	store    *Store
	email    Channel
	whatsapp Channel
	cache    *TemplateCache
	gymName  string
}

// NewService creates a notification service. cache may be nil.
func NewService(store *Store, email, whatsapp Channel, cache *TemplateCache, gymName string) *Service {
	return &Service{store: store, email: email, whatsapp: whatsapp, cache: cache, gymName: gymName}
}

// SendEmail logs and dispatches a single email. Returns true when the
// provider accepted the message.
func (s *Service) SendEmail(ctx context.Context, req SendRequest) bool {
	return s.send(ctx, TypeEmail, s.email, req)
}

// SendWhatsApp logs and dispatches a single WhatsApp message.
func (s *Service) SendWhatsApp(ctx context.Context, req SendRequest) bool {
	return s.send(ctx, TypeWhatsApp, s.whatsapp, req)
}

func (s *Service) send(ctx context.Context, typ NotifType, ch Channel, req SendRequest) (ok bool) {
	n := &Notification{
		Type:         typ,
		Recipient:    req.Recipient,
		Subject:      req.Subject,
		Message:      req.Message,
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		TemplateID:   req.TemplateID,
	}
	id, err := s.store.Create(ctx, n)
	if err != nil {
		// The attempt could not even be logged; nothing to update.
		log.Printf("[Notification] Failed to create %s record: %v", typ, err)
		return false
	}

	sendErr := s.attempt(ctx, ch, req)
	if sendErr != nil {
		if err := s.store.UpdateStatus(ctx, id, StatusFailed, sendErr.Error()); err != nil {
			log.Printf("[Notification] Failed to mark %s FAILED: %v", id, err)
		}
		return false
	}
	if err := s.store.UpdateStatus(ctx, id, StatusSent, ""); err != nil {
		log.Printf("[Notification] Failed to mark %s SENT: %v", id, err)
	}
	return true
}

// attempt invokes the channel, converting panics into errors so a
// misbehaving adapter can never take down a send loop.
func (s *Service) attempt(ctx context.Context, ch Channel, req SendRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panic: %v", r)
		}
	}()
	if ch == nil {
		return errs.Provider(nil, "channel not configured")
	}
	return ch.Send(ctx, req.Recipient, req.Subject, req.Message)
}

// LifecycleRequest carries the recipient and membership facts needed
// for an expiration or renewal notice.
type LifecycleRequest struct {
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	MembershipType string    `json:"membership_type"`
	Date           time.Time `json:"date"`
	UserID         string    `json:"user_id,omitempty"`
	MembershipID   string    `json:"membership_id,omitempty"`
	TemplateID     string    `json:"template_id,omitempty"`
}

// SendMembershipExpirationNotification emails an expiry reminder. The
// message comes from the explicit template, else the type's default
// template, else the built-in copy; template lookup failures fall back
// softly rather than blocking the notice.
func (s *Service) SendMembershipExpirationNotification(ctx context.Context, req LifecycleRequest) bool {
	vars := map[string]interface{}{
		"name":           req.Name,
		"membershipType": req.MembershipType,
		"expirationDate": req.Date.Format(dateLayout),
		"gymName":        s.gymName,
	}
	subject, content := s.resolveContent(ctx, req.TemplateID,
		fmt.Sprintf("Tu membresía está por expirar - %s", s.gymName),
		"Hola {{name}},\n\n"+
			"Te informamos que tu membresía {{membershipType}} en {{gymName}} expirará el {{expirationDate}}.\n\n"+
			"Para renovar tu membresía, puedes acercarte a nuestras instalaciones o hacerlo directamente desde nuestra plataforma web.\n\n"+
			"¡Gracias por ser parte de {{gymName}}!\n\nSaludos,\nEl equipo de {{gymName}}")

	return s.SendEmail(ctx, SendRequest{
		Recipient:    req.Email,
		Subject:      Render(subject, vars),
		Message:      Render(content, vars),
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		TemplateID:   req.TemplateID,
	})
}

// SendMembershipRenewalNotification emails a renewal confirmation.
func (s *Service) SendMembershipRenewalNotification(ctx context.Context, req LifecycleRequest) bool {
	vars := map[string]interface{}{
		"name":              req.Name,
		"membershipType":    req.MembershipType,
		"newExpirationDate": req.Date.Format(dateLayout),
		"gymName":           s.gymName,
	}
	subject, content := s.resolveContent(ctx, req.TemplateID,
		fmt.Sprintf("Tu membresía ha sido renovada - %s", s.gymName),
		"Hola {{name}},\n\n"+
			"Te informamos que tu membresía {{membershipType}} en {{gymName}} ha sido renovada exitosamente.\n\n"+
			"Tu nueva fecha de expiración es el {{newExpirationDate}}.\n\n"+
			"¡Gracias por seguir confiando en {{gymName}}!\n\nSaludos,\nEl equipo de {{gymName}}")

	return s.SendEmail(ctx, SendRequest{
		Recipient:    req.Email,
		Subject:      Render(subject, vars),
		Message:      Render(content, vars),
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		TemplateID:   req.TemplateID,
	})
}

// resolveContent picks the subject and body for a lifecycle notice:
// explicit template, then the EMAIL default template, then the
// built-in fallback copy.
func (s *Service) resolveContent(ctx context.Context, templateID, fallbackSubject, fallbackContent string) (string, string) {
	if templateID != "" {
		t, err := s.store.GetTemplate(ctx, templateID)
		if err != nil {
			log.Printf("[Notification] Template %s lookup failed, using fallback copy: %v", templateID, err)
		} else {
			return t.Subject, t.Content
		}
	} else if t, err := s.GetDefaultTemplate(ctx, TypeEmail); err == nil {
		return t.Subject, t.Content
	}
	return fallbackSubject, fallbackContent
}

// SendMembershipExpiration satisfies the membership notifier contract.
func (s *Service) SendMembershipExpiration(ctx context.Context, u *user.User, m *membership.Membership) bool {
	return s.SendMembershipExpirationNotification(ctx, LifecycleRequest{
		Email:          u.Email,
		Name:           u.FullName(),
		MembershipType: string(m.Type),
		Date:           m.EndDate,
		UserID:         u.ID,
		MembershipID:   m.ID,
	})
}

// SendMembershipRenewal satisfies the membership notifier contract.
func (s *Service) SendMembershipRenewal(ctx context.Context, u *user.User, m *membership.Membership) bool {
	return s.SendMembershipRenewalNotification(ctx, LifecycleRequest{
		Email:          u.Email,
		Name:           u.FullName(),
		MembershipType: string(m.Type),
		Date:           m.EndDate,
		UserID:         u.ID,
		MembershipID:   m.ID,
	})
}

// SendBulkEmail sends to each recipient sequentially and independently.
// A mid-batch failure affects only that recipient.
func (s *Service) SendBulkEmail(ctx context.Context, req BulkEmailRequest) (BulkResult, error) {
	if len(req.Emails) == 0 {
		return BulkResult{}, errs.Validation("emails list is empty")
	}

	subject, message := req.Subject, req.Message
	if req.TemplateID != "" {
		if t, err := s.store.GetTemplate(ctx, req.TemplateID); err == nil {
			subject, message = t.Subject, t.Content
		} else {
			log.Printf("[Notification] Bulk template %s lookup failed, using request copy: %v", req.TemplateID, err)
		}
	}

	var result BulkResult
	for _, email := range req.Emails {
		ok := s.SendEmail(ctx, SendRequest{
			Recipient:  email,
			Subject:    subject,
			Message:    message,
			TemplateID: req.TemplateID,
		})
		if ok {
			result.Success++
		} else {
			result.Failed++
		}
	}
	result.OK = float64(result.Success) >= bulkSuccessThreshold*float64(len(req.Emails))
	log.Printf("[Notification] Bulk email done: %d sent, %d failed", result.Success, result.Failed)
	return result, nil
}

// Get returns one notification record.
func (s *Service) Get(ctx context.Context, id string) (*Notification, error) {
	return s.store.Get(ctx, id)
}

// List returns notification records matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Notification, int, error) {
	return s.store.List(ctx, f)
}

// Template management

// CreateTemplate validates and stores a template. Variables default to
// the placeholders extracted from the subject and content.
func (s *Service) CreateTemplate(ctx context.Context, req TemplateRequest) (*Template, error) {
	if req.Name == "" || req.Content == "" {
		return nil, errs.Validation("name and content are required")
	}
	if !req.Type.IsValid() {
		return nil, errs.Validation("invalid notification type: %s", req.Type)
	}

	vars := req.Variables
	if len(vars) == 0 {
		vars = ExtractVariables(req.Subject + " " + req.Content)
	}

	t := &Template{
		Name:      req.Name,
		Type:      req.Type,
		Subject:   req.Subject,
		Content:   req.Content,
		Variables: vars,
		IsDefault: req.IsDefault,
		CreatedBy: req.CreatedBy,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, t.Type)
	return t, nil
}

// UpdateTemplate applies a full update to an existing template.
func (s *Service) UpdateTemplate(ctx context.Context, id string, req TemplateRequest) (*Template, error) {
	if !req.Type.IsValid() {
		return nil, errs.Validation("invalid notification type: %s", req.Type)
	}

	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	prevType := t.Type
	t.Name = req.Name
	t.Type = req.Type
	t.Subject = req.Subject
	t.Content = req.Content
	t.IsDefault = req.IsDefault
	t.Variables = req.Variables
	if len(t.Variables) == 0 {
		t.Variables = ExtractVariables(t.Subject + " " + t.Content)
	}

	if err := s.store.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, prevType)
	s.cache.Invalidate(ctx, t.Type)
	return t, nil
}

// DeleteTemplate removes a non-default template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, t.Type)
	return nil
}

// GetTemplate returns one template.
func (s *Service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	return s.store.GetTemplate(ctx, id)
}

// ListTemplates returns all templates.
func (s *Service) ListTemplates(ctx context.Context) ([]*Template, error) {
	return s.store.ListTemplates(ctx)
}

// GetDefaultTemplate returns the default template for a type, serving
// from the cache when possible.
func (s *Service) GetDefaultTemplate(ctx context.Context, typ NotifType) (*Template, error) {
	if t := s.cache.GetDefault(ctx, typ); t != nil {
		return t, nil
	}
	t, err := s.store.GetDefaultTemplate(ctx, typ)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(ctx, t)
	return t, nil
}
