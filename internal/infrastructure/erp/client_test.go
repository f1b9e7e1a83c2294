package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

func newTestClient(t *testing.T, upstream http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func TestClient_Forward(t *testing.T) {
	t.Run("forwards request and returns raw JSON", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products/42", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "full", r.URL.Query().Get("detail"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": 42, "name": "Cup"}`))
		})

		query := url.Values{"detail": []string{"full"}}
		result, err := client.Forward(context.Background(), http.MethodGet, "/products/42", query, nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.JSONEq(t, `{"id": 42, "name": "Cup"}`, string(result.Body))
	})

	t.Run("passes through upstream client errors", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "no such product"}`))
		})

		result, err := client.Forward(context.Background(), http.MethodGet, "products/missing", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
	})

	t.Run("surfaces upstream server errors as ErrUpstream", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Forward(context.Background(), http.MethodGet, "products", nil, nil)

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("rejects paths outside the allowed resource set", func(t *testing.T) {
		called := false
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := client.Forward(context.Background(), http.MethodGet, "admin/users", nil, nil)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.False(t, called, "upstream should not be contacted for disallowed paths")
	})

	t.Run("forwards request bodies", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"ok": true}`))
		})

		result, err := client.Forward(context.Background(), http.MethodPost, "documents",
			nil, strings.NewReader(`{"type": "invoice"}`))

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.StatusCode)
	})
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{}, zap.NewNop())
	assert.Error(t, err)
}
