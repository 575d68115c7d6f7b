package seeders

import (
	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("users", SeedUsers)
	Register("catalog", SeedCatalog)
}

// SeedUsers creates an admin and a regular demo account. Idempotent:
// existing emails are left alone.
func SeedUsers(db *gorm.DB) error {
	users := []struct {
		name, email, password, role string
	}{
		{"Admin", "admin@myshop.test", "admin-secret-1", models.RoleAdmin},
		{"Demo User", "demo@myshop.test", "demo-secret-1", models.RoleUser},
	}

	for _, u := range users {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", u.email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		user := models.User{Name: u.name, Email: u.email, Password: hash, Role: u.role}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		profile := models.UserProfile{UserID: user.ID}
		if err := db.Create(&profile).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedCatalog inserts a handful of demo products owned by the admin user.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var admin models.User
	if err := db.Where("email = ?", "admin@myshop.test").First(&admin).Error; err != nil {
		return err
	}

	products := []models.Product{
		{Name: "Wireless Mouse", Description: "Compact 2.4 GHz wireless mouse with silent clicks.", Price: 24.99, Stock: 150, SKU: "PROD-A1B2C3D4", CreatedByID: admin.ID},
		{Name: "Mechanical Keyboard", Description: "Tenkeyless mechanical keyboard with hot-swappable switches.", Price: 89.00, Stock: 42, SKU: "PROD-E5F6A7B8", CreatedByID: admin.ID},
		{Name: "USB-C Hub", Description: "7-in-1 USB-C hub with HDMI, card reader and 100W passthrough.", Price: 39.50, Stock: 8, SKU: "PROD-C9D0E1F2", CreatedByID: admin.ID},
		{Name: "Monitor Stand (Out of Stock)", Description: "Height-adjustable aluminium monitor stand.", Price: 54.00, Stock: 0, SKU: "PROD-0A1B2C3D", CreatedByID: admin.ID},
	}

	return db.Create(&products).Error
}
