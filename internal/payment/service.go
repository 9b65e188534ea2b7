package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gate-prep/backend/internal/models"
)

var (
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderProcessed   = errors.New("order already processed")
	ErrInvalidSignature = errors.New("payment signature mismatch")
)

// Plan is one purchasable package. Amounts are in paise.
type Plan struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Tokens int    `json:"tokens"`
}

// plans is the catalog. The pro plan upgrades the account to premium
// on top of the token grant.
var plans = map[string]Plan{
	"pro": {ID: "pro", Name: "Pro Plan", Amount: 29900, Tokens: 15},
}

// ProfileCreditor applies a successful purchase to the buyer's profile.
type ProfileCreditor interface {
	AddTokens(ctx context.Context, userID int64, n int) error
	SetAccountType(ctx context.Context, userID int64, t models.AccountType) error
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
}

// Service creates orders and verifies gateway callbacks. Signature
// verification is HMAC-SHA256 over "orderID|paymentID" with the
// gateway secret, hex-encoded.
type Service struct {
	db       *sql.DB
	profiles ProfileCreditor
	secret   []byte
}

func NewService(db *sql.DB, profiles ProfileCreditor, secret []byte) *Service {
	return &Service{db: db, profiles: profiles, secret: secret}
}

func (s *Service) CreateOrder(ctx context.Context, userID int64, planID string) (*models.PaymentOrder, error) {
	plan, ok := plans[planID]
	if !ok {
		return nil, ErrUnknownPlan
	}

	orderID := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]

	var order models.PaymentOrder
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO payment_orders (order_id, user_id, plan_id, amount, currency)
		 VALUES ($1, $2, $3, $4, 'INR')
		 RETURNING id, order_id, user_id, plan_id, amount, currency, status, created_at`,
		orderID, userID, plan.ID, plan.Amount,
	).Scan(&order.ID, &order.OrderID, &order.UserID, &order.PlanID,
		&order.Amount, &order.Currency, &order.Status, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// VerifySignature checks the gateway callback signature in constant
// time.
func (s *Service) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessPayment verifies and settles an order, crediting tokens and
// upgrading the account. Settling an already-paid order fails rather
// than double-crediting.
func (s *Service) ProcessPayment(ctx context.Context, userID int64, req models.VerifyPaymentRequest) (*models.Profile, error) {
	var planID, status string
	err := s.db.QueryRowContext(ctx,
		`SELECT plan_id, status FROM payment_orders WHERE order_id = $1 AND user_id = $2`,
		req.OrderID, userID,
	).Scan(&planID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if status != "created" {
		return nil, ErrOrderProcessed
	}

	if !s.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE payment_orders SET status = 'failed', processed_at = $1 WHERE order_id = $2`,
			time.Now(), req.OrderID,
		); err != nil {
			return nil, fmt.Errorf("mark order failed: %w", err)
		}
		return nil, ErrInvalidSignature
	}

	plan := plans[planID]

	_, err = s.db.ExecContext(ctx,
		`UPDATE payment_orders
		 SET status = 'paid', payment_id = $1, processed_at = $2
		 WHERE order_id = $3`,
		req.PaymentID, time.Now(), req.OrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("settle order: %w", err)
	}

	if err := s.profiles.AddTokens(ctx, userID, plan.Tokens); err != nil {
		return nil, err
	}
	if err := s.profiles.SetAccountType(ctx, userID, models.AccountPremium); err != nil {
		return nil, err
	}

	return s.profiles.GetProfile(ctx, userID)
}

// Plans lists the purchasable catalog.
func (s *Service) Plans() []Plan {
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, p)
	}
	return out
}
