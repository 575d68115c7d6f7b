package repositories

import (
	"time"

	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/pkg/database"
	"github.com/shashiranjanraj/myshop/pkg/metrics"
)

// UserRepository handles database operations for User and UserProfile.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var user models.User
	err := database.DB.Where("email = ?", email).First(&user).Error
	return user, err
}

// FindByID looks up a user by primary key, with profile.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var user models.User
	err := database.DB.Preload("Profile").First(&user, id).Error
	return user, err
}

// EmailExists reports whether a user with the given email already exists.
func (r *UserRepository) EmailExists(email string) (bool, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var count int64
	err := database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return database.DB.Create(user).Error
}

// CreateProfile persists a new profile row for a user.
func (r *UserRepository) CreateProfile(profile *models.UserProfile) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return database.DB.Create(profile).Error
}
