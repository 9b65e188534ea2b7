package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signatureFor(secret []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("test-gateway-secret")
	svc := NewService(nil, nil, secret)

	orderID := "order_abc123"
	paymentID := "pay_xyz789"
	valid := signatureFor(secret, orderID, paymentID)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid signature", orderID, paymentID, valid, true},
		{"tampered order", "order_other", paymentID, valid, false},
		{"tampered payment", orderID, "pay_other", valid, false},
		{"wrong signature", orderID, paymentID, "deadbeef", false},
		{"empty signature", orderID, paymentID, "", false},
		{"wrong secret", orderID, paymentID, signatureFor([]byte("other"), orderID, paymentID), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.VerifySignature(tc.orderID, tc.paymentID, tc.signature); got != tc.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlanCatalog(t *testing.T) {
	svc := NewService(nil, nil, []byte("secret"))

	found := false
	for _, p := range svc.Plans() {
		if p.ID == "pro" {
			found = true
			if p.Amount != 29900 {
				t.Errorf("pro plan amount = %d, want 29900", p.Amount)
			}
			if p.Tokens != 15 {
				t.Errorf("pro plan tokens = %d, want 15", p.Tokens)
			}
		}
	}
	if !found {
		t.Fatalf("pro plan missing from catalog")
	}
}
