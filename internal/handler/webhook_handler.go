package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentReconciler matches a captured payment to its booking.
type PaymentReconciler interface {
	ReconcilePayment(ctx context.Context, orderID, externalPaymentID string) error
}

// WebhookHandler receives payment gateway webhooks.
type WebhookHandler struct {
	reconciler    PaymentReconciler
	webhookSecret string
	logger        *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconciler PaymentReconciler, webhookSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// RegisterRoutes registers webhook routes on the router. Webhooks authenticate
// by signature, not session token.
func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/v1/webhooks/razorpay", h.HandleRazorpay)
}

// razorpayWebhook mirrors the subset of Razorpay's webhook payload this
// service reads.
type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID    string            `json:"id"`
				Notes map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleRazorpay handles POST /api/v1/webhooks/razorpay. The signature is
// verified over the raw body before any of it is parsed or acted on. Once the
// signature passes, every outcome is a 200 unless reconciliation itself fails:
// Razorpay retries non-2xx responses and a permanent condition (unknown event,
// missing booking) must not be retried forever.
func (h *WebhookHandler) HandleRazorpay(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !h.verifySignature(body, signature) {
		h.logger.Warn("rejected webhook with invalid signature",
			zap.String("remote_addr", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var event razorpayWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("ignoring malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if event.Event != "payment.captured" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	payment := event.Payload.Payment.Entity
	orderID := payment.Notes["booking_id"]
	if orderID == "" {
		h.logger.Warn("ignoring captured payment without booking reference",
			zap.String("payment_id", payment.ID),
		)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.reconciler.ReconcilePayment(c.Request.Context(), orderID, payment.ID); err != nil {
		h.logger.Error("payment reconciliation failed",
			zap.String("order_id", orderID),
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// verifySignature checks the hex-encoded HMAC-SHA256 of the raw body against
// the X-Razorpay-Signature header in constant time.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" || h.webhookSecret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
