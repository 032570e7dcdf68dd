package store

import (
	"time"

	"github.com/pavelanni/submitter/internal/model"
)

// Tag attaches a label to the local history of a project.
func (s *Store) Tag(project model.Project, label string) error {
	_, err := s.db.Exec(
		`INSERT INTO history_labels (project, label, created_at) VALUES (?, ?, ?)`,
		project.Root, label, time.Now(),
	)
	return err
}

// ListLabels returns the labels of a project, newest first.
// An empty project lists labels of all projects.
func (s *Store) ListLabels(project string) ([]model.HistoryLabel, error) {
	query := `SELECT id, project, label, created_at FROM history_labels`
	var args []any
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY id DESC`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var labels []model.HistoryLabel
	for rows.Next() {
		var l model.HistoryLabel
		if err := rows.Scan(&l.ID, &l.Project, &l.Label, &l.CreatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
