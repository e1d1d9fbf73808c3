package membership

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/olimpofit/gym-server/internal/errs"
	"github.com/olimpofit/gym-server/internal/user"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	return db, mock, func() { db.Close() }
}

// memUsers is an in-memory user repository for unit testing.
type memUsers struct {
	users map[string]*user.User
}

func (m *memUsers) Get(_ context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errs.NotFound("user %s not found", id)
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errs.NotFound("user with email %s not found", email)
}

func (m *memUsers) List(_ context.Context, _, _ int) ([]*user.User, int, error) {
	return nil, 0, nil
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.users[u.ID] = u
	return nil
}

// fakeNotifier records lifecycle notifications.
type fakeNotifier struct {
	expirations []string
	renewals    []string
}

func (f *fakeNotifier) SendMembershipExpiration(_ context.Context, u *user.User, _ *Membership) bool {
	f.expirations = append(f.expirations, u.Email)
	return true
}

func (f *fakeNotifier) SendMembershipRenewal(_ context.Context, u *user.User, _ *Membership) bool {
	f.renewals = append(f.renewals, u.Email)
	return true
}

func membershipRows(ms ...*Membership) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "status", "start_date", "end_date",
		"days_per_week", "price", "auto_renew", "created_at", "updated_at"})
	for _, m := range ms {
		var days interface{}
		if m.DaysPerWeek != nil {
			days = *m.DaysPerWeek
		}
		rows.AddRow(m.ID, m.UserID, string(m.Type), string(m.Status), m.StartDate, m.EndDate,
			days, m.Price, m.AutoRenew, m.CreatedAt, m.UpdatedAt)
	}
	return rows
}

func TestServiceCreateValidation(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewStore(db), &memUsers{}, nil)

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing user", CreateRequest{Type: TypeMonthly}},
		{"unknown type", CreateRequest{UserID: "u1", Type: "PILATES"}},
		{"kickboxing without days_per_week", CreateRequest{UserID: "u1", Type: TypeKickboxing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			if !errs.Is(err, errs.KindValidation) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestServiceCreateEndDate(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewStore(db), &memUsers{}, nil)

	mock.ExpectExec("INSERT INTO memberships").
		WillReturnResult(sqlmock.NewResult(1, 1))

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m, err := svc.Create(context.Background(), CreateRequest{
		UserID:    "u1",
		Type:      TypeMonthly,
		StartDate: &start,
		Price:     25000,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	want := start.AddDate(0, 0, 30)
	if !m.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want %v", m.EndDate, want)
	}
	if m.Status != StatusActive {
		t.Errorf("Status = %v, want %v", m.Status, StatusActive)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestServiceCreateKickboxing(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewStore(db), &memUsers{}, nil)

	mock.ExpectExec("INSERT INTO memberships").
		WillReturnResult(sqlmock.NewResult(1, 1))

	days := 3
	m, err := svc.Create(context.Background(), CreateRequest{
		UserID:      "u1",
		Type:        TypeKickboxing,
		DaysPerWeek: &days,
		Price:       30000,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if m.DaysPerWeek == nil || *m.DaysPerWeek != 3 {
		t.Errorf("DaysPerWeek = %v, want 3", m.DaysPerWeek)
	}
}

func TestCheckExpiredMembershipsBestEffort(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewStore(db), &memUsers{}, nil)

	now := time.Now().UTC()
	m1 := &Membership{ID: "m1", UserID: "u1", Type: TypeMonthly, Status: StatusActive,
		StartDate: now.AddDate(0, 0, -40), EndDate: now.AddDate(0, 0, -10), CreatedAt: now, UpdatedAt: now}
	m2 := &Membership{ID: "m2", UserID: "u2", Type: TypeMonthly, Status: StatusActive,
		StartDate: now.AddDate(0, 0, -35), EndDate: now.AddDate(0, 0, -5), CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM memberships WHERE status").
		WillReturnRows(membershipRows(m1, m2))
	// First update fails, sweep continues with the second.
	mock.ExpectExec("UPDATE memberships SET status").
		WithArgs(string(StatusExpired), sqlmock.AnyArg(), "m1").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("UPDATE memberships SET status").
		WithArgs(string(StatusExpired), sqlmock.AnyArg(), "m2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := svc.CheckExpiredMemberships(context.Background())
	if err != nil {
		t.Fatalf("CheckExpiredMemberships() error: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenewMembership(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewStore(db), &memUsers{}, nil)

	now := time.Now().UTC()
	m := &Membership{ID: "m1", UserID: "u1", Type: TypeMonthly, Status: StatusExpired,
		StartDate: now.AddDate(0, 0, -60), EndDate: now.AddDate(0, 0, -30), CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM memberships WHERE id").
		WithArgs("m1").
		WillReturnRows(membershipRows(m))
	mock.ExpectExec("UPDATE memberships SET start_date").
		WillReturnResult(sqlmock.NewResult(0, 1))

	renewed, err := svc.RenewMembership(context.Background(), "m1")
	if err != nil {
		t.Fatalf("RenewMembership() error: %v", err)
	}
	if renewed.Status != StatusActive {
		t.Errorf("Status = %v, want ACTIVE", renewed.Status)
	}
	if got := renewed.EndDate.Sub(renewed.StartDate); got != RenewalPeriod {
		t.Errorf("period = %v, want %v", got, RenewalPeriod)
	}
}

func TestRenewMembershipNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewStore(db), &memUsers{}, nil)

	mock.ExpectQuery("SELECT (.+) FROM memberships WHERE id").
		WithArgs("missing").
		WillReturnRows(membershipRows())

	_, err := svc.RenewMembership(context.Background(), "missing")
	if !errs.Is(err, errs.KindNotFound) {
		t.Errorf("error = %v, want not-found", err)
	}
}

func TestFindExpiringMembershipsNotifies(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	users := &memUsers{users: map[string]*user.User{
		"u1": {ID: "u1", FirstName: "Ana", LastName: "Gomez", Email: "ana@example.com"},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(NewStore(db), users, notifier)

	now := time.Now().UTC()
	m := &Membership{ID: "m1", UserID: "u1", Type: TypeMonthly, Status: StatusActive,
		StartDate: now.AddDate(0, 0, -25), EndDate: now.AddDate(0, 0, 5), CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM memberships WHERE status").
		WillReturnRows(membershipRows(m))

	found, err := svc.FindExpiringMemberships(context.Background(), now, now.AddDate(0, 0, 7), true)
	if err != nil {
		t.Fatalf("FindExpiringMemberships() error: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found = %d memberships, want 1", len(found))
	}
	if len(notifier.expirations) != 1 || notifier.expirations[0] != "ana@example.com" {
		t.Errorf("expirations = %v, want [ana@example.com]", notifier.expirations)
	}
}

func TestAutoRenewMemberships(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	users := &memUsers{users: map[string]*user.User{
		"u1": {ID: "u1", FirstName: "Ana", Email: "ana@example.com"},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(NewStore(db), users, notifier)

	now := time.Now().UTC()
	m := &Membership{ID: "m1", UserID: "u1", Type: TypeMonthly, Status: StatusExpired, AutoRenew: true,
		StartDate: now.AddDate(0, 0, -60), EndDate: now.AddDate(0, 0, -30), CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM memberships").
		WillReturnRows(membershipRows(m))
	mock.ExpectQuery("SELECT (.+) FROM memberships WHERE id").
		WithArgs("m1").
		WillReturnRows(membershipRows(m))
	mock.ExpectExec("UPDATE memberships SET start_date").
		WillReturnResult(sqlmock.NewResult(0, 1))

	renewed, err := svc.AutoRenewMemberships(context.Background())
	if err != nil {
		t.Fatalf("AutoRenewMemberships() error: %v", err)
	}
	if renewed != 1 {
		t.Errorf("renewed = %d, want 1", renewed)
	}
	if len(notifier.renewals) != 1 {
		t.Errorf("renewals = %v, want one entry", notifier.renewals)
	}
}
