package membership

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olimpofit/gym-server/internal/errs"
)

// Store provides database operations for memberships
type Store struct {
	db *sql.DB
}

// NewStore creates a new membership store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const membershipColumns = `id, user_id, type, status, start_date, end_date, days_per_week, price, auto_renew, created_at, updated_at`

func scanMembership(row interface{ Scan(...interface{}) error }) (*Membership, error) {
	m := &Membership{}
	var daysPerWeek sql.NullInt64
	err := row.Scan(&m.ID, &m.UserID, &m.Type, &m.Status, &m.StartDate, &m.EndDate,
		&daysPerWeek, &m.Price, &m.AutoRenew, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if daysPerWeek.Valid {
		d := int(daysPerWeek.Int64)
		m.DaysPerWeek = &d
	}
	return m, nil
}

// Create inserts a new membership row
func (s *Store) Create(ctx context.Context, m *Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `INSERT INTO memberships (id, user_id, type, status, start_date, end_date,
		days_per_week, price, auto_renew, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var daysPerWeek interface{}
	if m.DaysPerWeek != nil {
		daysPerWeek = *m.DaysPerWeek
	}
	_, err := s.db.ExecContext(ctx, query, m.ID, m.UserID, m.Type, m.Status,
		m.StartDate, m.EndDate, daysPerWeek, m.Price, m.AutoRenew, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// Get retrieves a membership by ID
func (s *Store) Get(ctx context.Context, id string) (*Membership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("membership %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List retrieves memberships matching the filter plus the total count
func (s *Store) List(ctx context.Context, f ListFilter) ([]*Membership, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1
	if f.UserID != "" {
		where += fmt.Sprintf(" AND user_id = $%d", argN)
		args = append(args, f.UserID)
		argN++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argN)
		args = append(args, f.Type)
		argN++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, f.Status)
		argN++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT `+membershipColumns+` FROM memberships %s ORDER BY end_date DESC LIMIT $%d OFFSET $%d`,
		where, argN, argN+1)
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, 0, err
		}
		memberships = append(memberships, m)
	}
	return memberships, total, rows.Err()
}

// ListExpired returns ACTIVE memberships whose end date is before now
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]*Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE status = $1 AND end_date < $2`,
		StatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// ListExpiring returns ACTIVE memberships with end date inside [from, to]
func (s *Store) ListExpiring(ctx context.Context, from, to time.Time) ([]*Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE status = $1 AND end_date >= $2 AND end_date <= $3`,
		StatusActive, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// ListAutoRenewable returns expired-but-renewable rows with auto_renew set
func (s *Store) ListAutoRenewable(ctx context.Context, now time.Time) ([]*Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		WHERE auto_renew = TRUE AND status IN ($1, $2) AND end_date < $3`,
		StatusActive, StatusExpired, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// UpdateStatus sets the status of a single membership
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memberships SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("membership %s not found", id)
	}
	return nil
}

// UpdateDates sets new start/end dates and status on renewal
func (s *Store) UpdateDates(ctx context.Context, id string, start, end time.Time, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memberships SET start_date = $1, end_date = $2, status = $3, updated_at = $4 WHERE id = $5`,
		start, end, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("membership %s not found", id)
	}
	return nil
}

// Update applies a partial update and returns the updated row
func (s *Store) Update(ctx context.Context, id string, req UpdateRequest) (*Membership, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		m.Type = *req.Type
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.StartDate != nil {
		m.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		m.EndDate = *req.EndDate
	}
	if req.DaysPerWeek != nil {
		m.DaysPerWeek = req.DaysPerWeek
	}
	if req.Price != nil {
		m.Price = *req.Price
	}
	if req.AutoRenew != nil {
		m.AutoRenew = *req.AutoRenew
	}
	m.UpdatedAt = time.Now().UTC()

	var daysPerWeek interface{}
	if m.DaysPerWeek != nil {
		daysPerWeek = *m.DaysPerWeek
	}
	_, err = s.db.ExecContext(ctx, `UPDATE memberships
		SET type = $1, status = $2, start_date = $3, end_date = $4, days_per_week = $5,
			price = $6, auto_renew = $7, updated_at = $8
		WHERE id = $9`,
		m.Type, m.Status, m.StartDate, m.EndDate, daysPerWeek, m.Price, m.AutoRenew, m.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}
	return m, nil
}

// Delete removes a membership (explicit admin removal only)
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("membership %s not found", id)
	}
	return nil
}
