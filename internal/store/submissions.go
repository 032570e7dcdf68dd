package store

import (
	"time"

	"github.com/pavelanni/submitter/internal/model"
)

// RecordSubmission stores a freshly dispatched submission.
func (s *Store) RecordSubmission(rec model.SubmissionRecord) (int64, error) {
	now := time.Now()
	if rec.State == "" {
		rec.State = model.StateInitialized
	}
	res, err := s.db.Exec(
		`INSERT INTO submissions (url, exercise_id, exercise_name, group_id, language, submission_number, status, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.URL, rec.ExerciseID, rec.ExerciseName, rec.GroupID, rec.Language, rec.SubmissionNumber, rec.State, now, now,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSubmissionStatus stores the latest status seen for a tracked submission.
func (s *Store) UpdateSubmissionStatus(url string, status model.SubmissionStatus) error {
	query := `UPDATE submissions SET status = ?, updated_at = ? WHERE url = ?`
	args := []any{status.State, time.Now(), url}
	if status.State == model.StateReady {
		query = `UPDATE submissions SET status = ?, points = ?, max_points = ?, updated_at = ? WHERE url = ?`
		args = []any{status.State, status.Points, status.MaxPoints, time.Now(), url}
	}
	_, err := s.db.Exec(query, args...)
	return err
}

const submissionColumns = `id, url, exercise_id, exercise_name, group_id, language, submission_number,
	status, points, max_points, submitted_at, updated_at`

// ListSubmissions returns the local submission records, newest first.
func (s *Store) ListSubmissions() ([]model.SubmissionRecord, error) {
	rows, err := s.db.Query(`SELECT ` + submissionColumns + ` FROM submissions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.SubmissionRecord
	for rows.Next() {
		var r model.SubmissionRecord
		if err := rows.Scan(&r.ID, &r.URL, &r.ExerciseID, &r.ExerciseName, &r.GroupID, &r.Language,
			&r.SubmissionNumber, &r.State, &r.Points, &r.MaxPoints, &r.SubmittedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetSubmission returns a submission record by ID.
func (s *Store) GetSubmission(id int64) (model.SubmissionRecord, error) {
	var r model.SubmissionRecord
	err := s.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id).Scan(
		&r.ID, &r.URL, &r.ExerciseID, &r.ExerciseName, &r.GroupID, &r.Language,
		&r.SubmissionNumber, &r.State, &r.Points, &r.MaxPoints, &r.SubmittedAt, &r.UpdatedAt)
	return r, err
}
