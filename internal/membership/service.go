package membership

import (
	"context"
	"log"
	"time"

	"github.com/olimpofit/gym-server/internal/errs"
	"github.com/olimpofit/gym-server/internal/user"
)

// Notifier dispatches membership lifecycle notifications. Implemented
// by the notification service; send failures are recorded there, so
// the boolean result is informational only.
type Notifier interface {
	SendMembershipExpiration(ctx context.Context, u *user.User, m *Membership) bool
	SendMembershipRenewal(ctx context.Context, u *user.User, m *Membership) bool
}

// Service implements the membership lifecycle operations.
type Service struct {
	store    *Store
	users    user.Repository
	notifier Notifier
}

// NewService creates a membership service. notifier may be nil, in
// which case lifecycle notifications are skipped.
func NewService(store *Store, users user.Repository, notifier Notifier) *Service {
	return &Service{store: store, users: users, notifier: notifier}
}

// Create validates the request and inserts a new ACTIVE membership.
// The end date is always start + 30 days regardless of type.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Membership, error) {
	if req.UserID == "" {
		return nil, errs.Validation("user_id is required")
	}
	if !req.Type.IsValid() {
		return nil, errs.Validation("invalid membership type: %s", req.Type)
	}
	if req.Type == TypeKickboxing && req.DaysPerWeek == nil {
		return nil, errs.Validation("days_per_week is required for KICKBOXING memberships")
	}

	start := time.Now().UTC()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}

	m := &Membership{
		UserID:      req.UserID,
		Type:        req.Type,
		Status:      StatusActive,
		StartDate:   start,
		EndDate:     start.Add(RenewalPeriod),
		DaysPerWeek: req.DaysPerWeek,
		Price:       req.Price,
		AutoRenew:   req.AutoRenew,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a membership by id.
func (s *Service) Get(ctx context.Context, id string) (*Membership, error) {
	return s.store.Get(ctx, id)
}

// List returns memberships matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Membership, int, error) {
	return s.store.List(ctx, f)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Membership, error) {
	if req.Type != nil && !req.Type.IsValid() {
		return nil, errs.Validation("invalid membership type: %s", *req.Type)
	}
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return nil, errs.Validation("end_date must be after start_date")
	}
	return s.store.Update(ctx, id, req)
}

// Delete removes a membership.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// CheckExpiredMemberships transitions ACTIVE memberships past their end
// date to EXPIRED. Updates are one-by-one and best-effort: a failed
// update is logged and the sweep continues. Returns the number of
// memberships transitioned.
func (s *Service) CheckExpiredMemberships(ctx context.Context) (int, error) {
	expired, err := s.store.ListExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, m := range expired {
		if err := s.store.UpdateStatus(ctx, m.ID, StatusExpired); err != nil {
			log.Printf("[Membership] Failed to expire membership %s: %v", m.ID, err)
			continue
		}
		updated++
	}
	if updated > 0 {
		log.Printf("[Membership] Expired %d of %d memberships", updated, len(expired))
	}
	return updated, nil
}

// FindExpiringMemberships returns ACTIVE memberships ending within
// [from, to]. When notify is set, an expiration notification is
// dispatched for each one.
func (s *Service) FindExpiringMemberships(ctx context.Context, from, to time.Time, notify bool) ([]*Membership, error) {
	expiring, err := s.store.ListExpiring(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if notify && s.notifier != nil {
		for _, m := range expiring {
			u, err := s.users.Get(ctx, m.UserID)
			if err != nil {
				log.Printf("[Membership] Skipping expiration notice for membership %s: %v", m.ID, err)
				continue
			}
			s.notifier.SendMembershipExpiration(ctx, u, m)
		}
	}
	return expiring, nil
}

// RenewMembership restarts a membership: start = now, end = now + 30
// days, status ACTIVE regardless of prior status.
func (s *Service) RenewMembership(ctx context.Context, id string) (*Membership, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	end := start.Add(RenewalPeriod)
	if err := s.store.UpdateDates(ctx, id, start, end, StatusActive); err != nil {
		return nil, err
	}

	m.StartDate = start
	m.EndDate = end
	m.Status = StatusActive
	return m, nil
}

// AutoRenewMemberships renews every eligible auto_renew membership
// past its end date and dispatches a renewal notification. Best-effort
// like the expiry sweep. Returns the number renewed.
func (s *Service) AutoRenewMemberships(ctx context.Context) (int, error) {
	renewable, err := s.store.ListAutoRenewable(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	renewed := 0
	for _, m := range renewable {
		updated, err := s.RenewMembership(ctx, m.ID)
		if err != nil {
			log.Printf("[Membership] Failed to auto-renew membership %s: %v", m.ID, err)
			continue
		}
		renewed++

		if s.notifier != nil {
			u, err := s.users.Get(ctx, m.UserID)
			if err != nil {
				log.Printf("[Membership] Skipping renewal notice for membership %s: %v", m.ID, err)
				continue
			}
			s.notifier.SendMembershipRenewal(ctx, u, updated)
		}
	}
	if renewed > 0 {
		log.Printf("[Membership] Auto-renewed %d of %d memberships", renewed, len(renewable))
	}
	return renewed, nil
}
