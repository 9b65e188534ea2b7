package questions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gate-prep/backend/internal/models"
	"github.com/lib/pq"
)

// insertBatchSize bounds the number of rows per INSERT statement
// during bulk ingestion.
const insertBatchSize = 50

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const questionCols = `id, exam_type, subject, topic, question_text, question_type,
	question_pattern, difficulty, COALESCE(options, '{}'), correct_answer,
	COALESCE(explanation, ''), usage_count, created_at`

// ── Bank Reads ──────────────────────────────────────────

func (s *Store) CountForExamSubject(ctx context.Context, examType, subject string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM master_questions WHERE exam_type = $1 AND subject = $2`,
		examType, subject,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// FetchQuestions returns all rows matching the filter. Empty filter
// fields are skipped; Topic is a case-insensitive substring match.
func (s *Store) FetchQuestions(ctx context.Context, f models.QuestionFilter) ([]models.Question, error) {
	where, args := buildWhere(f)

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM master_questions %s ORDER BY id`, questionCols, where),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func buildWhere(f models.QuestionFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.ExamType != "" {
		add("exam_type = $%d", f.ExamType)
	}
	if f.Subject != "" {
		add("subject = $%d", f.Subject)
	}
	if f.QuestionType != "" {
		add("question_type = $%d", string(f.QuestionType))
	}
	if f.QuestionPattern != "" {
		add("question_pattern = $%d", string(f.QuestionPattern))
	}
	if f.Topic != "" {
		add("topic ILIKE $%d", "%"+f.Topic+"%")
	}
	if len(f.Difficulties) > 0 {
		diffs := make([]string, len(f.Difficulties))
		for i, d := range f.Difficulties {
			diffs[i] = string(d)
		}
		add("difficulty = ANY($%d)", pq.Array(diffs))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanQuestions(rows *sql.Rows) ([]models.Question, error) {
	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.ExamType, &q.Subject, &q.Topic, &q.QuestionText,
			&q.QuestionType, &q.QuestionPattern, &q.Difficulty, &q.Options,
			&q.CorrectAnswer, &q.Explanation, &q.UsageCount, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// IncrementUsage bumps usage_count for the given questions. The count
// is informational; failures are the caller's to log, not to surface.
func (s *Store) IncrementUsage(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE master_questions SET usage_count = usage_count + 1 WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	return err
}

// ── Ingestion Writes ────────────────────────────────────

// QuestionTextExists reports whether the bank already holds a question
// with this exact text.
func (s *Store) QuestionTextExists(ctx context.Context, text string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM master_questions WHERE question_text = $1)`,
		text,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing: %w", err)
	}
	return exists, nil
}

// InsertQuestions writes the transformed questions in batches of
// insertBatchSize inside one transaction, so a failure commits nothing.
func (s *Store) InsertQuestions(ctx context.Context, qs []models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(qs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(qs) {
			end = len(qs)
		}
		if err := insertBatch(ctx, tx, qs[start:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, batch []models.Question) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO master_questions
		(exam_type, subject, topic, question_text, question_type, question_pattern,
		 difficulty, options, correct_answer, explanation) VALUES `)

	args := make([]interface{}, 0, len(batch)*10)
	for i, q := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 10
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10))

		var options interface{}
		if len(q.Options) > 0 {
			options = pq.Array([]string(q.Options))
		}
		args = append(args, q.ExamType, q.Subject, q.Topic, q.QuestionText,
			string(q.QuestionType), string(q.QuestionPattern), string(q.Difficulty),
			options, q.CorrectAnswer, q.Explanation)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// ── Admin Queries ───────────────────────────────────────

func (s *Store) ListQuestions(ctx context.Context, f models.QuestionFilter, limit, offset int) ([]models.Question, int, error) {
	where, args := buildWhere(f)

	var total int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM master_questions %s`, where),
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM master_questions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			questionCols, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM master_questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ── Exams ───────────────────────────────────────────────

func (s *Store) ListExams(ctx context.Context) ([]models.Exam, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, exam_type, subject, duration_minutes, created_at
		 FROM exams ORDER BY exam_type, subject`,
	)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var e models.Exam
		if err := rows.Scan(&e.ID, &e.ExamType, &e.Subject, &e.DurationMinutes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

func (s *Store) CreateExam(ctx context.Context, req models.CreateExamRequest) (*models.Exam, error) {
	var e models.Exam
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO exams (exam_type, subject, duration_minutes)
		 VALUES ($1, $2, $3)
		 RETURNING id, exam_type, subject, duration_minutes, created_at`,
		req.ExamType, req.Subject, req.DurationMinutes,
	).Scan(&e.ID, &e.ExamType, &e.Subject, &e.DurationMinutes, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return &e, nil
}

// ── Saved Questions ─────────────────────────────────────

// SaveForUser persists a denormalized copy into the user's saved list.
// The (user_id, question_text) constraint makes repeated saves no-ops.
func (s *Store) SaveForUser(ctx context.Context, sq models.SavedQuestion) error {
	var options interface{}
	if len(sq.Options) > 0 {
		options = pq.Array([]string(sq.Options))
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_questions
		 (user_id, exam_type, subject, question_text, question_type, options,
		  correct_answer, explanation, difficulty)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, question_text) DO NOTHING`,
		sq.UserID, sq.ExamType, sq.Subject, sq.QuestionText, string(sq.QuestionType),
		options, sq.CorrectAnswer, sq.Explanation, string(sq.Difficulty),
	)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (s *Store) ListSavedForUser(ctx context.Context, userID int64) ([]models.SavedQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, exam_type, subject, question_text, question_type,
		        COALESCE(options, '{}'), correct_answer, COALESCE(explanation, ''),
		        difficulty, created_at
		 FROM saved_questions WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list saved questions: %w", err)
	}
	defer rows.Close()

	var saved []models.SavedQuestion
	for rows.Next() {
		var sq models.SavedQuestion
		if err := rows.Scan(&sq.ID, &sq.UserID, &sq.ExamType, &sq.Subject, &sq.QuestionText,
			&sq.QuestionType, &sq.Options, &sq.CorrectAnswer, &sq.Explanation,
			&sq.Difficulty, &sq.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved question: %w", err)
		}
		saved = append(saved, sq)
	}
	return saved, rows.Err()
}

func (s *Store) DeleteSavedForUser(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_questions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete saved question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
