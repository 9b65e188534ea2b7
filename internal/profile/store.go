package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gate-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, COALESCE(full_name, ''), COALESCE(phone, ''),
		        COALESCE(education, ''), COALESCE(target_exam, ''),
		        tokens, account_type, is_admin
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.FullName, &p.Phone, &p.Education, &p.TargetExam,
		&p.Tokens, &p.AccountType, &p.IsAdmin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.Profile, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles
		 SET full_name = $1, phone = $2, education = $3, target_exam = $4, updated_at = NOW()
		 WHERE user_id = $5`,
		req.FullName, req.Phone, req.Education, req.TargetExam, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// DecrementToken spends one generation token. The conditional WHERE
// means a concurrent spend can never push the balance negative; zero
// rows affected reports sql.ErrNoRows to the caller.
func (s *Store) DecrementToken(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET tokens = tokens - 1, updated_at = NOW()
		 WHERE user_id = $1 AND tokens > 0`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("decrement token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddTokens credits a purchase.
func (s *Store) AddTokens(ctx context.Context, userID int64, n int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET tokens = tokens + $1, updated_at = NOW() WHERE user_id = $2`,
		n, userID,
	)
	if err != nil {
		return fmt.Errorf("add tokens: %w", err)
	}
	return nil
}

func (s *Store) SetAccountType(ctx context.Context, userID int64, t models.AccountType) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET account_type = $1, updated_at = NOW() WHERE user_id = $2`,
		string(t), userID,
	)
	if err != nil {
		return fmt.Errorf("set account type: %w", err)
	}
	return nil
}

// ListUsers is the admin roster, newest first.
func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]models.Profile, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.user_id, COALESCE(p.full_name, ''), COALESCE(p.phone, ''),
		        COALESCE(p.education, ''), COALESCE(p.target_exam, ''),
		        p.tokens, p.account_type, p.is_admin
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY u.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Phone, &p.Education,
			&p.TargetExam, &p.Tokens, &p.AccountType, &p.IsAdmin); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, total, rows.Err()
}
