package models

import (
	"fmt"

	"gorm.io/gorm"
)

// LowStockThreshold is the stock level below which a product.low_stock
// event fires on save.
const LowStockThreshold = 10

// Product is a catalogue entry owned by the user who created it.
// CreatedByID is immutable after creation; price and stock are validated
// non-negative before any write reaches the database.
type Product struct {
	gorm.Model
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null;default:0;index" json:"price"`
	Stock       int     `gorm:"not null;default:0;index" json:"stock"`
	SKU         string  `gorm:"size:100;uniqueIndex" json:"sku"`
	CreatedByID uint    `gorm:"not null;index" json:"created_by_id"`

	CreatedBy User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Images    []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
}

// IsAvailable reports whether the product has stock left.
func (p Product) IsAvailable() bool { return p.Stock > 0 }

// InventoryValue is price × stock.
func (p Product) InventoryValue() float64 { return p.Price * float64(p.Stock) }

// FormattedPrice renders the price with a currency symbol.
func (p Product) FormattedPrice() string { return fmt.Sprintf("$%.2f", p.Price) }

// OwnedBy reports whether the given caller may mutate this product:
// the owner, or an admin.
func (p Product) OwnedBy(userID uint, role string) bool {
	return p.CreatedByID == userID || role == RoleAdmin
}

// ProductImage belongs to exactly one product; deleting the product
// cascades to its images.
type ProductImage struct {
	gorm.Model
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Path      string `gorm:"size:512;not null" json:"path"`
	URL       string `gorm:"size:512" json:"url"`
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}
