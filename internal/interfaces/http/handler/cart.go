package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler exposes shopping cart endpoints for users and guests
type CartHandler struct {
	BaseHandler
	cartService *cartapp.Service
	jwtService  *auth.JWTService
}

// NewCartHandler creates a CartHandler
func NewCartHandler(cartService *cartapp.Service, jwtService *auth.JWTService) *CartHandler {
	return &CartHandler{cartService: cartService, jwtService: jwtService}
}

// AddItemRequest is the body for adding a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest is the body for changing a line quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// CartItemResponse is one cart line in API responses
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity"`
}

// CartResponse is a cart in API responses
type CartResponse struct {
	ID       uuid.UUID          `json:"id"`
	Items    []CartItemResponse `json:"items"`
	Subtotal string             `json:"subtotal"`
	Currency string             `json:"currency"`
	Quantity int                `json:"quantity"`
}

func toCartResponse(c *cart.Cart) (*CartResponse, error) {
	subtotal, err := c.Subtotal()
	if err != nil {
		return nil, err
	}
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Currency:  item.Currency,
			Quantity:  item.Quantity,
		})
	}
	return &CartResponse{
		ID:       c.ID,
		Items:    items,
		Subtotal: subtotal.Amount().StringFixed(2),
		Currency: string(subtotal.Currency()),
		Quantity: c.TotalQuantity(),
	}, nil
}

// Get returns the shopper's cart, creating it on first use
// GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	h.withCart(c, func(owner cart.Identity) (*cart.Cart, error) {
		return h.cartService.GetOrCreate(c.Request.Context(), owner)
	})
}

// AddItem puts a product into the cart
// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.withCart(c, func(owner cart.Identity) (*cart.Cart, error) {
		return h.cartService.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	})
}

// UpdateItem changes a line quantity; zero removes the line
// PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	productID := uuid.MustParse(idReq.ID)

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.withCart(c, func(owner cart.Identity) (*cart.Cart, error) {
		return h.cartService.UpdateQuantity(c.Request.Context(), owner, productID, req.Quantity)
	})
}

// RemoveItem deletes a line from the cart
// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	productID := uuid.MustParse(idReq.ID)

	h.withCart(c, func(owner cart.Identity) (*cart.Cart, error) {
		return h.cartService.RemoveItem(c.Request.Context(), owner, productID)
	})
}

// Clear empties the cart
// DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	owner, err := middleware.ShopperIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), owner); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Merge folds the guest cart named by X-Guest-Token into the
// authenticated user's cart
// POST /cart/merge
func (h *CartHandler) Merge(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	guestToken := c.GetHeader(middleware.GuestTokenHeader)
	if guestToken == "" {
		h.BadRequest(c, "Missing guest token header")
		return
	}

	merged, err := h.cartService.MergeGuestCart(c.Request.Context(), userID, guestToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := toCartResponse(merged)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *CartHandler) withCart(c *gin.Context, op func(cart.Identity) (*cart.Cart, error)) {
	owner, err := middleware.ShopperIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := op(owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := toCartResponse(result)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carts := rg.Group("/cart")
	carts.Use(middleware.OptionalAuth(h.jwtService))
	{
		carts.GET("", h.Get)
		carts.DELETE("", h.Clear)
		carts.POST("/items", h.AddItem)
		carts.PUT("/items/:id", h.UpdateItem)
		carts.DELETE("/items/:id", h.RemoveItem)
		carts.POST("/merge", h.Merge)
	}
}
