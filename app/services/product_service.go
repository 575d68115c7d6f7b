package services

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/app/repositories"
	"github.com/shashiranjanraj/myshop/config"
	"github.com/shashiranjanraj/myshop/pkg/cache"
	"github.com/shashiranjanraj/myshop/pkg/event"
	"github.com/shashiranjanraj/myshop/pkg/logger"
	"github.com/shashiranjanraj/myshop/pkg/pagination"
	"github.com/shashiranjanraj/myshop/pkg/storage"
	"gorm.io/gorm"
)

// Events fired by the product service. Payloads are models.Product except
// low_stock, which carries LowStockAlert.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventProductLowStock = "product.low_stock"
)

// LowStockAlert is the payload of product.low_stock.
type LowStockAlert struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`
}

// productsVersionKey is the cache version counter for the products
// collection. Every write bumps it, orphaning all list/stats entries built
// on the previous version.
const productsVersionKey = "products:ver"

const maxImageBytes = 5 << 20 // 5 MB

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ProductInput is the payload for create and full update (PUT).
type ProductInput struct {
	Name        string  `json:"name" validate:"required,safe_text,min=2,max=255"`
	Description string  `json:"description" validate:"required,safe_text"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	SKU         string  `json:"sku" validate:"nullable,alpha_dash,max=100"`
}

// ProductPatch is the payload for partial update (PATCH). Nil fields are
// left unchanged.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	SKU         *string  `json:"sku"`
}

// ImageInput describes one uploaded product image.
type ImageInput struct {
	File      multipart.File
	Filename  string
	Size      int64
	IsPrimary bool
	SortOrder int
}

type ProductService struct {
	products *repositories.ProductRepository
}

func NewProductService() *ProductService {
	return &ProductService{products: repositories.NewProductRepository()}
}

// List returns a shaped page of products, served from cache when the same
// query shape was answered since the last write to the collection.
func (s *ProductService) List(f repositories.ProductFilter, p pagination.Params) (pagination.Result, error) {
	key := s.listCacheKey(f, p)

	var cached pagination.Result
	cached.Data = &[]models.Product{}
	if cache.Get(key, &cached) {
		return cached, nil
	}

	products, total, err := s.products.List(f, p)
	if err != nil {
		return pagination.Result{}, fmt.Errorf("products: list: %w", err)
	}

	result := pagination.NewResult(products, total, p)
	if err := cache.Set(key, result, config.ProductListTTL()); err != nil {
		logger.Warn("products: cache set failed", "error", err)
	}
	return result, nil
}

// Get loads a single product by ID.
func (s *ProductService) Get(id uint) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("products: find %d: %w", id, err)
	}
	return product, nil
}

// Create validates and persists a new product owned by callerID.
func (s *ProductService) Create(callerID uint, in ProductInput) (models.Product, error) {
	if errs := crossFieldRules(in.Name, in.Description, in.Price, in.Stock); len(errs) > 0 {
		return models.Product{}, NewValidationError(errs)
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         strings.TrimSpace(in.SKU),
		CreatedByID: callerID,
	}

	if product.SKU == "" {
		sku, err := s.generateSKU()
		if err != nil {
			return models.Product{}, err
		}
		product.SKU = sku
	}

	if err := s.products.Create(&product); err != nil {
		return models.Product{}, fmt.Errorf("products: create: %w", err)
	}

	s.invalidate()
	s.fireStockEvents(product)
	event.Fire(EventProductCreated, product)

	return product, nil
}

// Update applies a full replacement (PUT). Only the owner or an admin may
// mutate; the owner reference never changes.
func (s *ProductService) Update(callerID uint, role string, id uint, in ProductInput) (models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return models.Product{}, err
	}
	if !product.OwnedBy(callerID, role) {
		return models.Product{}, ErrForbidden
	}

	if errs := crossFieldRules(in.Name, in.Description, in.Price, in.Stock); len(errs) > 0 {
		return models.Product{}, NewValidationError(errs)
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Stock = in.Stock
	if sku := strings.TrimSpace(in.SKU); sku != "" {
		product.SKU = sku
	}

	return s.save(product)
}

// Patch applies a partial update (PATCH). Nil fields keep their value.
func (s *ProductService) Patch(callerID uint, role string, id uint, in ProductPatch) (models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return models.Product{}, err
	}
	if !product.OwnedBy(callerID, role) {
		return models.Product{}, ErrForbidden
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.SKU != nil && strings.TrimSpace(*in.SKU) != "" {
		product.SKU = strings.TrimSpace(*in.SKU)
	}

	errs := map[string]string{}
	if product.Price <= 0 {
		errs["price"] = "The price must be greater than 0."
	}
	if product.Stock < 0 {
		errs["stock"] = "The stock must be greater than or equal to 0."
	}
	for field, msg := range crossFieldRules(product.Name, product.Description, product.Price, product.Stock) {
		errs[field] = msg
	}
	if len(errs) > 0 {
		return models.Product{}, NewValidationError(errs)
	}

	return s.save(product)
}

// Delete removes a product, its image rows, and their stored files.
func (s *ProductService) Delete(callerID uint, role string, id uint) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}
	if !product.OwnedBy(callerID, role) {
		return ErrForbidden
	}

	if err := s.products.Delete(&product); err != nil {
		return fmt.Errorf("products: delete %d: %w", id, err)
	}

	for _, img := range product.Images {
		if err := storage.Delete(img.Path); err != nil {
			logger.Warn("products: orphaned image file", "path", img.Path, "error", err)
		}
	}

	s.invalidate()
	event.Fire(EventProductDeleted, product)
	return nil
}

// Statistics returns catalogue-wide aggregates, cached under the current
// collection version.
func (s *ProductService) Statistics() (repositories.Statistics, error) {
	key := fmt.Sprintf("products:v%d:stats", cache.Version(productsVersionKey))

	var stats repositories.Statistics
	if cache.Get(key, &stats) {
		return stats, nil
	}

	stats, err := s.products.Statistics()
	if err != nil {
		return repositories.Statistics{}, fmt.Errorf("products: statistics: %w", err)
	}

	if err := cache.Set(key, stats, config.ProductStatsTTL()); err != nil {
		logger.Warn("products: cache set failed", "error", err)
	}
	return stats, nil
}

// UploadImage validates and stores one image for a product.
func (s *ProductService) UploadImage(callerID uint, role string, productID uint, in ImageInput) (models.ProductImage, error) {
	product, err := s.Get(productID)
	if err != nil {
		return models.ProductImage{}, err
	}
	if !product.OwnedBy(callerID, role) {
		return models.ProductImage{}, ErrForbidden
	}

	ext := strings.ToLower(path.Ext(in.Filename))
	if !allowedImageExts[ext] {
		return models.ProductImage{}, NewValidationError(map[string]string{
			"image": fmt.Sprintf("File extension %q is not allowed.", ext),
		})
	}
	if in.Size > maxImageBytes {
		return models.ProductImage{}, NewValidationError(map[string]string{
			"image": fmt.Sprintf("File size must be less than %d MB.", maxImageBytes>>20),
		})
	}

	name, err := randomHex(8)
	if err != nil {
		return models.ProductImage{}, err
	}
	storePath := fmt.Sprintf("products/%d/%s%s", productID, name, ext)

	if err := storage.PutStream(storePath, io.LimitReader(in.File, maxImageBytes)); err != nil {
		return models.ProductImage{}, fmt.Errorf("products: store image: %w", err)
	}

	image := models.ProductImage{
		ProductID: productID,
		Path:      storePath,
		URL:       storage.URL(storePath),
		IsPrimary: in.IsPrimary,
		SortOrder: in.SortOrder,
	}
	if err := s.products.AddImage(&image); err != nil {
		return models.ProductImage{}, fmt.Errorf("products: save image: %w", err)
	}

	s.invalidate()
	return image, nil
}

// DeleteImage removes one image row and its stored file.
func (s *ProductService) DeleteImage(callerID uint, role string, productID, imageID uint) error {
	product, err := s.Get(productID)
	if err != nil {
		return err
	}
	if !product.OwnedBy(callerID, role) {
		return ErrForbidden
	}

	image, err := s.products.FindImage(productID, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("products: find image: %w", err)
	}

	if err := s.products.DeleteImage(&image); err != nil {
		return fmt.Errorf("products: delete image: %w", err)
	}
	if err := storage.Delete(image.Path); err != nil {
		logger.Warn("products: orphaned image file", "path", image.Path, "error", err)
	}

	s.invalidate()
	return nil
}

func (s *ProductService) save(product models.Product) (models.Product, error) {
	if err := s.products.Update(&product); err != nil {
		return models.Product{}, fmt.Errorf("products: update %d: %w", product.ID, err)
	}

	s.invalidate()
	s.fireStockEvents(product)
	event.Fire(EventProductUpdated, product)
	return product, nil
}

// invalidate bumps the collection version before the write response is
// returned, so any subsequent read misses stale entries.
func (s *ProductService) invalidate() {
	if _, err := cache.Increment(productsVersionKey); err != nil {
		logger.Warn("products: cache invalidation failed", "error", err)
	}
}

func (s *ProductService) fireStockEvents(product models.Product) {
	if product.Stock < models.LowStockThreshold {
		event.Fire(EventProductLowStock, LowStockAlert{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Stock:     product.Stock,
		})
	}
}

func (s *ProductService) listCacheKey(f repositories.ProductFilter, p pagination.Params) string {
	shape := fmt.Sprintf("%s|page=%d|size=%d", f.Normalized(), p.Page, p.PerPage)
	sum := sha1.Sum([]byte(shape))
	return fmt.Sprintf("products:v%d:list:%s", cache.Version(productsVersionKey), hex.EncodeToString(sum[:8]))
}

func (s *ProductService) generateSKU() (string, error) {
	for range 5 {
		suffix, err := randomHex(4)
		if err != nil {
			return "", err
		}
		sku := "PROD-" + strings.ToUpper(suffix)

		taken, err := s.products.SKUExists(sku)
		if err != nil {
			return "", fmt.Errorf("products: check sku: %w", err)
		}
		if !taken {
			return sku, nil
		}
	}
	return "", fmt.Errorf("products: could not generate a unique sku")
}

// crossFieldRules enforces the object-level rules that span several fields.
func crossFieldRules(name, description string, price float64, stock int) map[string]string {
	errs := map[string]string{}

	if price > 10000 && len(description) < 50 {
		errs["description"] = "Expensive products (>$10,000) must have a detailed description (at least 50 characters)."
	}
	if stock == 0 && !strings.Contains(strings.ToLower(name), "out of stock") {
		errs["name"] = "Products with zero stock must include 'Out of Stock' in the name."
	}
	if price < 10 && stock >= 100 {
		errs["stock"] = "Cheap products (<$10) cannot have stock of 100 or more."
	}

	return errs
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random: %w", err)
	}
	return hex.EncodeToString(b), nil
}
