package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey = "jwt_claims"
	JWTUserIDKey = "jwt_user_id"
	JWTEmailKey  = "jwt_email"

	// GuestTokenHeader lets anonymous shoppers carry a cart across requests
	GuestTokenHeader = "X-Guest-Token"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, jwtService)
		if !ok {
			requestID := c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and
// lets the request through either way. Storefront endpoints use it so
// guests and logged-in shoppers share routes.
func OptionalAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := validateBearer(c, jwtService); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func validateBearer(c *gin.Context, jwtService *auth.JWTService) (*auth.Claims, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, false
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return nil, false
	}
	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTEmailKey, claims.Email)
}

// GetJWTUserID returns the authenticated user ID, or "" for guests
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTEmail returns the authenticated user's email, or ""
func GetJWTEmail(c *gin.Context) string {
	return c.GetString(JWTEmailKey)
}

// ShopperIdentity builds the cart owner identity for the request: the
// JWT user when authenticated, otherwise the guest token header.
func ShopperIdentity(c *gin.Context) (cart.Identity, error) {
	if idStr := GetJWTUserID(c); idStr != "" {
		claims, _ := c.MustGet(JWTClaimsKey).(*auth.Claims)
		userID, err := claims.GetUserUUID()
		if err != nil {
			return cart.Identity{}, err
		}
		return cart.UserIdentity(userID), nil
	}
	return cart.GuestIdentity(c.GetHeader(GuestTokenHeader))
}
