package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/club-events/internal/model"
)

// DefaultNotificationLimit bounds ListRecent when the caller passes a
// non-positive limit.
const DefaultNotificationLimit = 50

// NotificationRepo is the per-user notification outbox.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Append adds an unread notification for userID.
func (r *NotificationRepo) Append(ctx context.Context, userID uint64, message, typ string) (model.Notification, error) {
	return appendNotification(ctx, r.db, userID, message, typ)
}

// AppendTx is Append within the caller's transaction.
func (r *NotificationRepo) AppendTx(ctx context.Context, tx *sql.Tx, userID uint64, message, typ string) (model.Notification, error) {
	return appendNotification(ctx, tx, userID, message, typ)
}

func appendNotification(ctx context.Context, ex execer, userID uint64, message, typ string) (model.Notification, error) {
	if typ == "" {
		typ = model.NotificationInfo
	}
	if !model.ValidNotificationType(typ) {
		return model.Notification{}, fmt.Errorf("notification type %q: %w", typ, ErrInvalidType)
	}
	n := model.Notification{UserID: userID, Message: message, Type: typ, CreatedAt: time.Now().UTC()}
	res, err := ex.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message, type, is_read, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, message, typ, false, n.CreatedAt)
	if err != nil {
		return model.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Notification{}, err
	}
	n.ID = uint64(id)
	return n, nil
}

// ListRecent returns up to limit notifications for userID, newest first.
func (r *NotificationRepo) ListRecent(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, type, is_read, created_at FROM notifications
         WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification as read.  Rows belonging to another
// user are left untouched and no error is reported.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userID)
	return err
}

// MarkAllRead flags every notification of userID as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`, true, userID, false)
	return err
}

// Broadcast appends the same message to every member (role user) in a
// single transaction and returns how many notifications were written.
func (r *NotificationRepo) Broadcast(ctx context.Context, message, typ string) (int, error) {
	if typ == "" {
		typ = model.NotificationInfo
	}
	if !model.ValidNotificationType(typ) {
		return 0, fmt.Errorf("notification type %q: %w", typ, ErrInvalidType)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	rows, err := tx.QueryContext(ctx, `SELECT id FROM users WHERE role = ?`, model.RoleUser.String())
	if err != nil {
		return 0, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := appendNotification(ctx, tx, id, message, typ); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(ids), nil
}
