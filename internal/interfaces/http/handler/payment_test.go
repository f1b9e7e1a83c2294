package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// =============================================================================
// Stubs
// =============================================================================

// stubGateway returns a canned verification result regardless of payload
type stubGateway struct {
	event checkout.Event
	err   error
}

func (g *stubGateway) CreateIntent(_ context.Context, _ int64, _ string, _ map[string]string) (checkout.IntentRef, error) {
	return checkout.IntentRef{}, nil
}

func (g *stubGateway) VerifyEvent(_ []byte, _ string) (checkout.Event, error) {
	return g.event, g.err
}

type noopMaterializer struct{}

func (noopMaterializer) Materialize(_ context.Context, _ string, _ int64, _ checkout.Payload) (*order.Order, error) {
	return &order.Order{}, nil
}

func (noopMaterializer) ClearCart(_ context.Context, _ uuid.UUID) error {
	return nil
}

func webhookRouter(gateway checkout.Gateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reconciler := paymentapp.NewReconciler(gateway, noopMaterializer{}, cache.NewInMemoryIdempotencyStore(), zap.NewNop())
	h := NewPaymentHandler(nil, reconciler, nil)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signature)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Webhook Transport Tests
// =============================================================================

func TestWebhook_RejectsBadSignature(t *testing.T) {
	router := webhookRouter(&stubGateway{err: checkout.ErrInvalidSignature})

	w := postWebhook(router, []byte(`{"id":"evt_1"}`), "t=1,v1=bogus")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidSignature, resp.Error.Code)
}

func TestWebhook_AcknowledgesUnhandledEventType(t *testing.T) {
	router := webhookRouter(&stubGateway{event: checkout.Event{
		ID:   "evt_refund",
		Type: "charge.refunded",
	}})

	w := postWebhook(router, []byte(`{"id":"evt_refund"}`), "t=1,v1=valid")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, string(paymentapp.OutcomeIgnored), resp.Data["outcome"])
}

func TestWebhook_RejectsOversizedBody(t *testing.T) {
	router := webhookRouter(&stubGateway{})

	body := []byte(strings.Repeat("a", maxWebhookBody+1))
	w := postWebhook(router, body, "t=1,v1=valid")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestWebhook_NotConfiguredGateway(t *testing.T) {
	router := webhookRouter(nil)

	w := postWebhook(router, []byte(`{"id":"evt_1"}`), "t=1,v1=valid")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodePaymentNotConfigured, resp.Error.Code)
}
