package membership

import "time"

// Type identifies the membership plan.
type Type string

const (
	TypeMonthly    Type = "MONTHLY"
	TypeKickboxing Type = "KICKBOXING"
	TypeQuarterly  Type = "QUARTERLY"
	TypeAnnual     Type = "ANNUAL"
)

// ValidTypes lists every accepted membership type.
var ValidTypes = []Type{TypeMonthly, TypeKickboxing, TypeQuarterly, TypeAnnual}

// IsValid reports whether t is a known membership type.
func (t Type) IsValid() bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Status is the membership lifecycle state.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
	StatusPending Status = "PENDING"
)

// RenewalPeriod is the fixed membership period applied on create and
// renew, regardless of type. Plans do not follow calendar months.
const RenewalPeriod = 30 * 24 * time.Hour

// Membership is a user's paid access grant.
type Membership struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        Type      `json:"type"`
	Status      Status    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	DaysPerWeek *int      `json:"days_per_week,omitempty"`
	Price       float64   `json:"price"`
	AutoRenew   bool      `json:"auto_renew"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest is the payload for creating a membership.
type CreateRequest struct {
	UserID      string     `json:"user_id"`
	Type        Type       `json:"type"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DaysPerWeek *int       `json:"days_per_week,omitempty"`
	Price       float64    `json:"price"`
	AutoRenew   bool       `json:"auto_renew"`
}

// UpdateRequest is the payload for patching a membership. Nil fields
// are left unchanged.
type UpdateRequest struct {
	Type        *Type      `json:"type,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DaysPerWeek *int       `json:"days_per_week,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	AutoRenew   *bool      `json:"auto_renew,omitempty"`
}

// ListFilter narrows List queries.
type ListFilter struct {
	UserID string
	Type   Type
	Status Status
	Limit  int
	Offset int
}
