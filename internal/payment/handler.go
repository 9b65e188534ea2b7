package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gate-prep/backend/internal/auth"
	"github.com/gate-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": h.service.Plans()})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, req.PlanID)
	if err != nil {
		if errors.Is(err, ErrUnknownPlan) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Unknown plan"})
			return
		}
		log.Printf("[handler] CreateOrder error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create order"})
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// VerifyPayment settles the gateway callback and returns the updated
// profile.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "order_id, payment_id and signature are required"})
		return
	}

	profile, err := h.service.ProcessPayment(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Order not found"})
		case errors.Is(err, ErrOrderProcessed):
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Order already processed"})
		case errors.Is(err, ErrInvalidSignature):
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Payment verification failed"})
		default:
			log.Printf("[handler] VerifyPayment error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to verify payment"})
		}
		return
	}

	writeJSON(w, http.StatusOK, models.VerifyPaymentResponse{
		Message:     "Payment verified",
		Tokens:      profile.Tokens,
		AccountType: profile.AccountType,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
