package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AccountType string

const (
	AccountFree    AccountType = "free"
	AccountPremium AccountType = "premium"
)

// Profile carries the per-user token balance and tier. Tokens gate
// free-tier test generation; premium accounts are not charged.
type Profile struct {
	UserID      int64       `json:"user_id"`
	FullName    string      `json:"full_name"`
	Phone       string      `json:"phone"`
	Education   string      `json:"education"`
	TargetExam  string      `json:"target_exam"`
	Tokens      int         `json:"tokens"`
	AccountType AccountType `json:"account_type"`
	IsAdmin     bool        `json:"is_admin"`
}

type UpdateProfileRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Education  string `json:"education"`
	TargetExam string `json:"target_exam"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
