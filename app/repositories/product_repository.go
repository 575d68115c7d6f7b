package repositories

import (
	"strings"
	"time"

	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/pkg/database"
	"github.com/shashiranjanraj/myshop/pkg/metrics"
	"github.com/shashiranjanraj/myshop/pkg/pagination"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for Product and its images.
type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// List returns one shaped page of products plus the total row count for the
// filter. A page past the end of the collection returns an empty slice.
func (r *ProductRepository) List(f ProductFilter, p pagination.Params) ([]models.Product, int64, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var total int64
	if err := r.filtered(database.DB, f).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := r.filtered(database.DB, f).
		Preload("Images").
		Preload("CreatedBy").
		Order(f.OrderClause()).
		Offset(p.Offset).
		Limit(p.PerPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// FindByID loads a product with its images and owner.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var product models.Product
	err := database.DB.
		Preload("Images").
		Preload("CreatedBy").
		First(&product, id).Error
	return product, err
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return database.DB.Create(product).Error
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return database.DB.Save(product).Error
}

// Delete removes a product and its images.
func (r *ProductRepository) Delete(product *models.Product) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
}

// AddImage persists a new product image row.
func (r *ProductRepository) AddImage(image *models.ProductImage) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return database.DB.Create(image).Error
}

// FindImage loads an image belonging to the given product.
func (r *ProductRepository) FindImage(productID, imageID uint) (models.ProductImage, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var image models.ProductImage
	err := database.DB.
		Where("product_id = ?", productID).
		First(&image, imageID).Error
	return image, err
}

// DeleteImage removes an image row.
func (r *ProductRepository) DeleteImage(image *models.ProductImage) error {
	defer metrics.ObserveDBQuery("delete", time.Now())
	return database.DB.Delete(image).Error
}

// SKUExists reports whether any product already carries the given SKU.
func (r *ProductRepository) SKUExists(sku string) (bool, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var count int64
	err := database.DB.Model(&models.Product{}).Where("sku = ?", sku).Count(&count).Error
	return count > 0, err
}

// Statistics aggregates catalogue-wide numbers for the stats endpoint.
type Statistics struct {
	TotalProducts   int64   `json:"total_products"`
	AveragePrice    float64 `json:"average_price"`
	TotalStock      int64   `json:"total_stock"`
	InventoryValue  float64 `json:"total_inventory_value"`
	OutOfStockCount int64   `json:"out_of_stock_count"`
}

// Statistics computes the aggregate row in a single query plus one count.
func (r *ProductRepository) Statistics() (Statistics, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var stats Statistics
	err := database.DB.Model(&models.Product{}).
		Select("COUNT(*) AS total_products, COALESCE(AVG(price), 0) AS average_price, COALESCE(SUM(stock), 0) AS total_stock, COALESCE(SUM(price * stock), 0) AS inventory_value").
		Scan(&stats).Error
	if err != nil {
		return Statistics{}, err
	}

	err = database.DB.Model(&models.Product{}).
		Where("stock = 0").
		Count(&stats.OutOfStockCount).Error
	return stats, err
}

func (r *ProductRepository) filtered(db *gorm.DB, f ProductFilter) *gorm.DB {
	q := db.Session(&gorm.Session{})

	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	if f.Search != "" {
		// name matches by prefix, description by substring
		term := escapeLike(f.Search)
		q = q.Where(`name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`, term+"%", "%"+term+"%")
	}

	return q
}

// escapeLike neutralises LIKE metacharacters in user-supplied search terms
// so "%" searches for a literal percent sign instead of matching everything.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
