package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthHandler exposes registration, login and account endpoints
type AuthHandler struct {
	BaseHandler
	authService    *identityapp.AuthService
	addressService *identityapp.AddressService
	jwtService     *auth.JWTService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authService *identityapp.AuthService, addressService *identityapp.AddressService, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		addressService: addressService,
		jwtService:     jwtService,
	}
}

// Register creates an account
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login authenticates a user
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Profile returns the authenticated user's account
// GET /auth/me
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	profile, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// ChangePassword sets a new password
// POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req identityapp.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListAddresses returns the user's saved addresses
// GET /auth/addresses
func (h *AuthHandler) ListAddresses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// SaveAddress stores a new address
// POST /auth/addresses
func (h *AuthHandler) SaveAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req identityapp.SaveAddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	address, err := h.addressService.Save(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// UpdateAddress replaces a saved address
// PUT /auth/addresses/:id
func (h *AuthHandler) UpdateAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid address ID")
		return
	}
	var req identityapp.SaveAddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	address, err := h.addressService.Update(c.Request.Context(), userID, uuid.MustParse(idReq.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// DeleteAddress removes a saved address
// DELETE /auth/addresses/:id
func (h *AuthHandler) DeleteAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid address ID")
		return
	}
	if err := h.addressService.Delete(c.Request.Context(), userID, uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers auth and account routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/auth")
	{
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)
	}

	private := rg.Group("/auth", middleware.RequireAuth(h.jwtService))
	{
		private.GET("/me", h.Profile)
		private.POST("/change-password", h.ChangePassword)
		private.GET("/addresses", h.ListAddresses)
		private.POST("/addresses", h.SaveAddress)
		private.PUT("/addresses/:id", h.UpdateAddress)
		private.DELETE("/addresses/:id", h.DeleteAddress)
	}
}
