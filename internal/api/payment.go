package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/internal/types"
)

// PaymentHandler serves the Stripe subscription endpoints. Verifying a
// succeeded payment flips the subscription flag that the trial gate reads.
type PaymentHandler struct {
	payments *service.PaymentService
	trial    *service.TrialService
}

func NewPaymentHandler(payments *service.PaymentService, trial *service.TrialService) *PaymentHandler {
	return &PaymentHandler{payments: payments, trial: trial}
}

// CreateIntent handles POST /api/create-payment-intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req types.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}

	metadata := map[string]string{"user_id": currentUserID(c).String()}
	intent, err := h.payments.CreatePaymentIntent(c.Request.Context(), req.Amount, currency, metadata)
	if err != nil {
		log.Printf("payment intent creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"client_secret": intent.ClientSecret, "payment_intent_id": intent.ID})
}

// VerifyPayment handles POST /api/verify-payment.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req types.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent, err := h.payments.VerifyPayment(c.Request.Context(), req.PaymentIntentID)
	if errors.Is(err, service.ErrPaymentNotCompleted) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment not completed", "status": intent.Status})
		return
	}
	if err != nil {
		log.Printf("payment verification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify payment"})
		return
	}

	if err := h.trial.ActivateSubscription(c.Request.Context(), currentUserID(c)); err != nil {
		log.Printf("failed to activate subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription_active": true})
}
