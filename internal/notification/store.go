package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/olimpofit/gym-server/internal/errs"
)

// Store provides database operations for notifications and templates.
// Notifications are an append-only audit log.
type Store struct {
	db *sql.DB
}

// NewStore creates a new notification store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const notificationColumns = `id, type, recipient, COALESCE(subject, ''), message, status, sent_at,
	created_at, updated_at, COALESCE(user_id, ''), COALESCE(membership_id, ''),
	COALESCE(template_id, ''), COALESCE(error_message, '')`

func scanNotification(row interface{ Scan(...interface{}) error }) (*Notification, error) {
	n := &Notification{}
	var sentAt sql.NullTime
	err := row.Scan(&n.ID, &n.Type, &n.Recipient, &n.Subject, &n.Message, &n.Status, &sentAt,
		&n.CreatedAt, &n.UpdatedAt, &n.UserID, &n.MembershipID, &n.TemplateID, &n.ErrorMessage)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
	return n, nil
}

// Create inserts a new PENDING notification record and returns its id.
func (s *Store) Create(ctx context.Context, n *Notification) (string, error) {
	n.ID = uuid.New().String()
	now := time.Now().UTC()
	n.Status = StatusPending
	n.CreatedAt = now
	n.UpdatedAt = now

	query := `INSERT INTO notifications (id, type, recipient, subject, message, status,
		created_at, updated_at, user_id, membership_id, template_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''))`

	_, err := s.db.ExecContext(ctx, query, n.ID, n.Type, n.Recipient, n.Subject, n.Message,
		n.Status, n.CreatedAt, n.UpdatedAt, n.UserID, n.MembershipID, n.TemplateID)
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return n.ID, nil
}

// UpdateStatus moves a record to its terminal state. SENT also stamps
// sent_at; an error message is stored when given.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	now := time.Now().UTC()
	var sentAt interface{}
	if status == StatusSent {
		sentAt = now
	}

	res, err := s.db.ExecContext(ctx, `UPDATE notifications
		SET status = $1, updated_at = $2, sent_at = COALESCE($3, sent_at),
			error_message = NULLIF($4, '')
		WHERE id = $5`,
		status, now, sentAt, errorMessage, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("notification %s not found", id)
	}
	return nil
}

// Get retrieves one notification by id.
func (s *Store) Get(ctx context.Context, id string) (*Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("notification %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// List retrieves notifications matching the filter, newest first, plus
// the total count.
func (s *Store) List(ctx context.Context, f ListFilter) ([]*Notification, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1
	add := func(clause string, v interface{}) {
		where += fmt.Sprintf(" AND "+clause, argN)
		args = append(args, v)
		argN++
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.MembershipID != "" {
		add("membership_id = $%d", f.MembershipID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT `+notificationColumns+` FROM notifications %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argN, argN+1)
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

// Template operations

const templateColumns = `id, name, type, subject, content, variables, is_default,
	COALESCE(created_by, ''), created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (*Template, error) {
	t := &Template{}
	err := row.Scan(&t.ID, &t.Name, &t.Type, &t.Subject, &t.Content, pq.Array(&t.Variables),
		&t.IsDefault, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTemplate inserts a template. When is_default is set, any prior
// default of the same type is cleared in the same transaction so that
// at most one default per type exists.
func (s *Store) CreateTemplate(ctx context.Context, t *Template) error {
	t.ID = uuid.New().String()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE notification_templates SET is_default = FALSE, updated_at = $1 WHERE type = $2 AND is_default = TRUE`,
			now, t.Type); err != nil {
			return fmt.Errorf("failed to clear previous default: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO notification_templates
		(id, name, type, subject, content, variables, is_default, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`,
		t.ID, t.Name, t.Type, t.Subject, t.Content, pq.Array(t.Variables),
		t.IsDefault, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return tx.Commit()
}

// GetTemplate retrieves one template by id.
func (s *Store) GetTemplate(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM notification_templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("template %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetDefaultTemplate returns the default template for a type, or a
// not-found error when none is configured.
func (s *Store) GetDefaultTemplate(ctx context.Context, typ NotifType) (*Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM notification_templates WHERE type = $1 AND is_default = TRUE`, typ)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("no default template for type %s", typ)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTemplates returns all templates, newest first.
func (s *Store) ListTemplates(ctx context.Context) ([]*Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM notification_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateTemplate replaces a template's fields. Promoting a template to
// default clears the previous default of the same type transactionally.
func (s *Store) UpdateTemplate(ctx context.Context, t *Template) error {
	t.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE notification_templates SET is_default = FALSE, updated_at = $1 WHERE type = $2 AND is_default = TRUE AND id <> $3`,
			t.UpdatedAt, t.Type, t.ID); err != nil {
			return fmt.Errorf("failed to clear previous default: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE notification_templates
		SET name = $1, type = $2, subject = $3, content = $4, variables = $5,
			is_default = $6, updated_at = $7
		WHERE id = $8`,
		t.Name, t.Type, t.Subject, t.Content, pq.Array(t.Variables), t.IsDefault, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("template %s not found", t.ID)
	}
	return tx.Commit()
}

// DeleteTemplate removes a template. Deleting the current default is
// rejected; it must be un-defaulted first.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t.IsDefault {
		return errs.Conflict("template %s is the default for type %s; unset default before deleting", id, t.Type)
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM notification_templates WHERE id = $1`, id)
	return err
}
