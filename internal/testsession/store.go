package testsession

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gate-prep/backend/internal/models"
)

// Store persists completed attempts. Live session state never touches
// the database.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertAttempt(ctx context.Context, a models.TestAttempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_attempts
		 (user_id, session_id, exam_type, subject, specific_topic, score,
		  total_questions, answered_count, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (session_id) DO NOTHING`,
		a.UserID, a.SessionID, a.ExamType, a.Subject, a.SpecificTopic,
		a.Score, a.TotalQuestions, a.AnsweredCount, a.StartedAt, a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) ListAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.TestAttempt, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM test_attempts WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, exam_type, subject, COALESCE(specific_topic, ''),
		        score, total_questions, answered_count, started_at, completed_at
		 FROM test_attempts
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.TestAttempt
	for rows.Next() {
		var a models.TestAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.ExamType, &a.Subject,
			&a.SpecificTopic, &a.Score, &a.TotalQuestions, &a.AnsweredCount,
			&a.StartedAt, &a.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}
