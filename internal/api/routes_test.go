package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"

	"github.com/olimpofit/gym-server/internal/auth"
	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/membership"
	"github.com/olimpofit/gym-server/internal/notification"
	"github.com/olimpofit/gym-server/internal/user"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*chiHarness, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := user.NewPostgresRepository(db)
	memberSvc := membership.NewService(membership.NewStore(db), users, nil)
	notifSvc := notification.NewService(notification.NewStore(db), nil, nil, nil, "Olimpo Gym")

	deps := Deps{
		Auth:          auth.NewMiddleware(config.AuthConfig{Enabled: true, JWTSecret: testSecret}, false),
		Memberships:   membership.NewHandlers(memberSvc),
		Notifications: notification.NewHandlers(notifSvc),
		Health:        NewHealthChecker(db, nil),
	}

	cfg := config.ServerConfig{Port: 0, AllowedOrigins: []string{"http://localhost:5173"}}
	return &chiHarness{router: SetupRoutes(cfg, deps)}, mock
}

type chiHarness struct {
	router http.Handler
}

func (h *chiHarness) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "email": "ana@x.com", "role": role,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestHealthIsPublic(t *testing.T) {
	h, mock := newTestServer(t)
	mock.ExpectPing()

	rec := h.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.Checks["redis"].Status != "not_configured" {
		t.Errorf("redis check = %+v", status.Checks["redis"])
	}
}

func TestAPIRequiresToken(t *testing.T) {
	h, _ := newTestServer(t)

	rec := h.do(t, http.MethodGet, "/api/memberships", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMembershipListWithToken(t *testing.T) {
	h, mock := newTestServer(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM memberships").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "status", "start_date", "end_date",
			"days_per_week", "price", "auto_renew", "created_at", "updated_at"}))

	rec := h.do(t, http.MethodGet, "/api/memberships", signToken(t, "member"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Items == nil || body.Total != 0 {
		t.Errorf("body = %+v, want empty items array", body)
	}
}

func TestAdminGateOnNotificationSend(t *testing.T) {
	h, _ := newTestServer(t)

	rec := h.do(t, http.MethodPost, "/api/notifications/email", signToken(t, "member"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", rec.Code)
	}
}

func TestMembershipDeleteIsAdminOnly(t *testing.T) {
	h, mock := newTestServer(t)

	rec := h.do(t, http.MethodDelete, "/api/memberships/m1", signToken(t, "member"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", rec.Code)
	}

	mock.ExpectExec("DELETE FROM memberships").
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec = h.do(t, http.MethodDelete, "/api/memberships/m1", signToken(t, "admin"))
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin status = %d, want 204", rec.Code)
	}
}

func TestUnknownMembershipIs404(t *testing.T) {
	h, mock := newTestServer(t)

	mock.ExpectQuery("SELECT (.+) FROM memberships WHERE id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	rec := h.do(t, http.MethodGet, "/api/memberships/ghost", signToken(t, "member"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
