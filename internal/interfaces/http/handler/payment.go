package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// maxWebhookBody caps how much of a webhook delivery we read. Stripe
// events are a few KB; anything past 64KB is not ours.
const maxWebhookBody = 64 << 10

// SignatureHeader carries the provider's webhook signature
const SignatureHeader = "Stripe-Signature"

// PaymentHandler exposes checkout intent creation and the provider webhook
type PaymentHandler struct {
	BaseHandler
	checkoutService *paymentapp.CheckoutService
	reconciler      *paymentapp.Reconciler
	jwtService      *auth.JWTService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(checkoutService *paymentapp.CheckoutService, reconciler *paymentapp.Reconciler, jwtService *auth.JWTService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		reconciler:      reconciler,
		jwtService:      jwtService,
	}
}

// CreateCheckoutIntentRequest is the body for opening a payment intent
type CreateCheckoutIntentRequest struct {
	// Email is optional. When omitted by an authenticated shopper it
	// falls back to the access token's email; guests may leave it out
	// entirely and the order carries none.
	Email           string         `json:"email" binding:"omitempty,email"`
	ShippingAddress AddressRequest `json:"shipping_address" binding:"required"`
	// BillingAddress defaults to the shipping address when omitted
	BillingAddress *AddressRequest `json:"billing_address"`
	Notes           string         `json:"notes" binding:"max=400"`
	ShippingMethod  string         `json:"shipping_method" binding:"max=50"`
}

// AddressRequest is a postal address in request bodies
type AddressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=100"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	Phone      string `json:"phone" binding:"max=30"`
}

// CreateCheckoutIntent prices the shopper's cart and opens a payment
// intent for it
// POST /payments/create-checkout-intent
func (h *PaymentHandler) CreateCheckoutIntent(c *gin.Context) {
	owner, err := middleware.ShopperIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CreateCheckoutIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	email := req.Email
	if email == "" {
		email = middleware.GetJWTEmail(c)
	}

	input := paymentapp.CreateIntentInput{
		Email:          email,
		Notes:          req.Notes,
		ShippingMethod: req.ShippingMethod,
	}
	input.ShippingAddress, err = req.ShippingAddress.toValueObject()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.BillingAddress != nil {
		input.BillingAddress, err = req.BillingAddress.toValueObject()
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}

	intent, err := h.checkoutService.CreateIntent(c.Request.Context(), owner, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, intent)
}

// Webhook receives provider event deliveries. The raw body is read
// before any parsing: signature verification covers the exact bytes the
// provider sent. Only a failed signature earns a non-2xx; processing
// failures are absorbed and acknowledged, surfacing as error-level log
// alerts rather than delivery errors.
// POST /payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	log := logger.FromGin(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(payload) > maxWebhookBody {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Webhook payload too large")
		return
	}

	outcome, err := h.reconciler.HandleDelivery(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		log.Warn("Rejected webhook delivery", zap.Error(err))
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"outcome": string(outcome)})
}

// RegisterRoutes registers payment routes. The webhook is verified by
// signature, not session auth; intent creation accepts users and guests.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/create-checkout-intent", middleware.OptionalAuth(h.jwtService), h.CreateCheckoutIntent)
		payments.POST("/webhook", h.Webhook)
	}
}
