package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/erp"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ERPHandler proxies a whitelisted slice of the back-office ERP API so
// storefront admin tooling doesn't need direct ERP credentials.
type ERPHandler struct {
	BaseHandler
	client     *erp.Client
	jwtService *auth.JWTService
}

// NewERPHandler creates an ERPHandler. client may be nil when no ERP
// is configured.
func NewERPHandler(client *erp.Client, jwtService *auth.JWTService) *ERPHandler {
	return &ERPHandler{
		client:     client,
		jwtService: jwtService,
	}
}

// Forward relays the request to the ERP and returns its response as-is
func (h *ERPHandler) Forward(c *gin.Context) {
	if h.client == nil {
		h.Error(c, http.StatusServiceUnavailable, "ERR_INTERNAL", "ERP integration is not configured")
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")

	var body io.Reader
	if c.Request.Body != nil && c.Request.Method != http.MethodGet {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			h.BadRequest(c, "Failed to read request body")
			return
		}
		body = bytes.NewReader(raw)
	}

	result, err := h.client.Forward(c.Request.Context(), c.Request.Method, path, c.Request.URL.Query(), body)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(result.StatusCode, "application/json", result.Body)
}

// RegisterRoutes registers the ERP pass-through behind authentication
func (h *ERPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/erp", middleware.RequireAuth(h.jwtService))
	{
		group.Any("/*path", h.Forward)
	}
}
