package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/storage"
)

// allowedImageTypes is the whitelist of content types accepted for
// product images. SVG is excluded: it can carry scripts.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageServiceConfig holds URL expiry settings for product images
type ImageServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultImageServiceConfig returns the default expiry settings
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// UploadTicket is a presigned PUT the client uses to push the image bytes
type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageService manages product images in object storage. Clients upload
// directly to storage through presigned URLs; the backend only brokers
// keys and confirms the object landed.
type ImageService struct {
	products catalog.ProductRepository
	storage  storage.ObjectStorage
	config   ImageServiceConfig
}

// NewImageService creates an image service
func NewImageService(products catalog.ProductRepository, objectStorage storage.ObjectStorage, config ImageServiceConfig) *ImageService {
	return &ImageService{
		products: products,
		storage:  objectStorage,
		config:   config,
	}
}

// InitiateUpload issues a presigned upload URL for a product image
func (s *ImageService) InitiateUpload(ctx context.Context, productID uuid.UUID, contentType string) (*UploadTicket, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_IMAGE_TYPE", "Image content type is not allowed")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// ConfirmUpload verifies the object exists and attaches it to the
// product, deleting the previous image if one was set.
func (s *ImageService) ConfirmUpload(ctx context.Context, productID uuid.UUID, key string) error {
	if !strings.HasPrefix(key, "products/"+productID.String()+"/") {
		return shared.ErrInvalidInput
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("UPLOAD_NOT_FOUND", "Uploaded object was not found in storage")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	previous := product.ImageKey
	if err := product.SetImageKey(key); err != nil {
		return err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return err
	}
	if previous != "" && previous != key {
		// Best effort: an orphaned object is harmless
		_ = s.storage.DeleteObject(ctx, previous)
	}
	return nil
}

// DownloadURL returns a presigned GET URL for a stored image key
func (s *ImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	url, _, err := s.storage.GenerateDownloadURL(ctx, key, s.config.DownloadURLExpiry)
	return url, err
}

// RemoveImage detaches and deletes a product's image
func (s *ImageService) RemoveImage(ctx context.Context, productID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.ImageKey == "" {
		return nil
	}
	key := product.ImageKey
	if err := product.SetImageKey(""); err != nil {
		return err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return err
	}
	return s.storage.DeleteObject(ctx, key)
}
