package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ProductHandler exposes the product catalog. Reads are public; writes
// require authentication.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
	jwtService     *auth.JWTService
}

// NewProductHandler creates a ProductHandler. imageService may be nil
// when object storage is not configured.
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService, jwtService *auth.JWTService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
		jwtService:     jwtService,
	}
}

// List returns a page of products
// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	result, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns one product
// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create adds a product
// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update modifies a product
// PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.productService.Update(c.Request.Context(), uuid.MustParse(idReq.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Disable takes a product off sale
// POST /products/:id/disable
func (h *ProductHandler) Disable(c *gin.Context) {
	h.setStatus(c, h.productService.Disable)
}

// Enable puts a product back on sale
// POST /products/:id/enable
func (h *ProductHandler) Enable(c *gin.Context) {
	h.setStatus(c, h.productService.Enable)
}

func (h *ProductHandler) setStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error) {
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	if err := op(c.Request.Context(), uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// InitiateImageUploadRequest asks for a presigned upload URL
type InitiateImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ConfirmImageUploadRequest attaches an uploaded object to the product
type ConfirmImageUploadRequest struct {
	Key string `json:"key" binding:"required,max=500"`
}

// InitiateImageUpload issues a presigned PUT URL for the product image
// POST /products/:id/image/upload-url
func (h *ProductHandler) InitiateImageUpload(c *gin.Context) {
	if h.imageService == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Object storage is not configured")
		return
	}
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req InitiateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	ticket, err := h.imageService.InitiateUpload(c.Request.Context(), uuid.MustParse(idReq.ID), req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// ConfirmImageUpload verifies the uploaded object and attaches it
// POST /products/:id/image/confirm
func (h *ProductHandler) ConfirmImageUpload(c *gin.Context) {
	if h.imageService == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Object storage is not configured")
		return
	}
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.imageService.ConfirmUpload(c.Request.Context(), uuid.MustParse(idReq.ID), req.Key); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveImage detaches and deletes the product image
// DELETE /products/:id/image
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	if h.imageService == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Object storage is not configured")
		return
	}
	idReq, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	if err := h.imageService.RemoveImage(c.Request.Context(), uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)
	}

	admin := rg.Group("/products", middleware.RequireAuth(h.jwtService))
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.POST("/:id/disable", h.Disable)
		admin.POST("/:id/enable", h.Enable)
		admin.POST("/:id/image/upload-url", h.InitiateImageUpload)
		admin.POST("/:id/image/confirm", h.ConfirmImageUpload)
		admin.DELETE("/:id/image", h.RemoveImage)
	}
}
