package notification

import "time"

// NotifType identifies the delivery channel of a notification.
type NotifType string

const (
	TypeEmail    NotifType = "EMAIL"
	TypeWhatsApp NotifType = "WHATSAPP"
)

// IsValid reports whether t is a known notification type.
func (t NotifType) IsValid() bool {
	return t == TypeEmail || t == TypeWhatsApp
}

// Status is the delivery state of a notification attempt. A record is
// created PENDING and transitions exactly once to SENT or FAILED.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Notification is one logged delivery attempt. Records are append-only:
// there is no delete API.
type Notification struct {
	ID           string     `json:"id"`
	Type         NotifType  `json:"type"`
	Recipient    string     `json:"recipient"`
	Subject      string     `json:"subject,omitempty"`
	Message      string     `json:"message"`
	Status       Status     `json:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	UserID       string     `json:"user_id,omitempty"`
	MembershipID string     `json:"membership_id,omitempty"`
	TemplateID   string     `json:"template_id,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Template is reusable parameterized message content.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      NotifType `json:"type"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Variables []string  `json:"variables"`
	IsDefault bool      `json:"is_default"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows notification list queries.
type ListFilter struct {
	Type         NotifType
	Status       Status
	UserID       string
	MembershipID string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// SendRequest is the options structure for single sends. Optional
// associations are named fields, never positional.
type SendRequest struct {
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject,omitempty"`
	Message      string `json:"message"`
	UserID       string `json:"user_id,omitempty"`
	MembershipID string `json:"membership_id,omitempty"`
	TemplateID   string `json:"template_id,omitempty"`
}

// BulkEmailRequest is the payload for bulk email sends.
type BulkEmailRequest struct {
	Emails     []string `json:"emails"`
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	TemplateID string   `json:"template_id,omitempty"`
}

// BulkResult aggregates per-recipient outcomes of a bulk send. The
// counts are the authoritative contract; Success is a policy summary
// (at least 90% delivered).
type BulkResult struct {
	Success int  `json:"success"`
	Failed  int  `json:"failed"`
	OK      bool `json:"ok"`
}

// TemplateRequest is the create/update payload for templates.
type TemplateRequest struct {
	Name      string    `json:"name"`
	Type      NotifType `json:"type"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Variables []string  `json:"variables,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedBy string    `json:"created_by,omitempty"`
}
