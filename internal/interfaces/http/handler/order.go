package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler exposes order history for authenticated shoppers
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
	jwtService   *auth.JWTService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(orderService *orderapp.Service, jwtService *auth.JWTService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		jwtService:   jwtService,
	}
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderResponse is an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          string              `json:"status"`
	Email           string              `json:"email"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	Total           decimal.Decimal     `json:"total"`
	AmountCharged   int64               `json:"amount_charged"`
	Currency        string              `json:"currency"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	BillingAddress  valueobject.Address `json:"billing_address"`
	ShippingMethod  string              `json:"shipping_method,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	PaidAt          time.Time           `json:"paid_at"`
	CreatedAt       time.Time           `json:"created_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		Number:          o.Number,
		Status:          string(o.Status),
		Email:           o.Email,
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		Total:           o.Total,
		AmountCharged:   o.AmountCharged,
		Currency:        o.Currency,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		ShippingMethod:  o.ShippingMethod,
		Notes:           o.Notes,
		Items:           items,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
	}
}

// List returns the authenticated user's orders
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	orders, total, err := h.orderService.ListByUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Get returns one of the authenticated user's orders
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	o, err := h.orderService.GetByID(c.Request.Context(), userID, uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders", middleware.RequireAuth(h.jwtService))
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
	}
}
