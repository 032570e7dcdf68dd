package store

import (
	"log/slog"
	"time"

	"github.com/pavelanni/submitter/internal/model"
)

// Notify appends a notification to the journal. Failures are logged, never returned,
// so the journal can sit next to the console in a notifier fan-out.
func (s *Store) Notify(n model.Notification, project model.Project) {
	if _, err := s.AddNotification(n, project); err != nil {
		slog.Error("failed to journal notification", "kind", n.Kind, "error", err)
	}
}

// AddNotification inserts a notification and returns its ID.
func (s *Store) AddNotification(n model.Notification, project model.Project) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO notifications (project, kind, level, title, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		project.Root, n.Kind, n.Level, n.Title, n.Content, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListNotifications returns up to limit notifications, newest first.
// A non-positive limit returns all of them.
func (s *Store) ListNotifications(limit int) ([]model.Notification, error) {
	query := `SELECT id, project, kind, level, title, content, created_at FROM notifications ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Project, &n.Kind, &n.Level, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
