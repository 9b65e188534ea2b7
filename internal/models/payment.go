package models

import "time"

// PaymentOrder tracks one checkout from creation to verification.
type PaymentOrder struct {
	ID          int64      `json:"id"`
	OrderID     string     `json:"order_id"`
	UserID      int64      `json:"user_id"`
	PlanID      string     `json:"plan_id"`
	Amount      int        `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	PaymentID   string     `json:"payment_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type CreateOrderRequest struct {
	PlanID string `json:"plan_id"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type VerifyPaymentResponse struct {
	Message     string      `json:"message"`
	Tokens      int         `json:"tokens"`
	AccountType AccountType `json:"account_type"`
}
