package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fmontilla/users-system/internal/models"
)

// ErrRecordNotFound indicates a lookup matched no row.
var ErrRecordNotFound = errors.New("store: record not found")

// UserStore is the persistence contract consumed by the cache-aside
// repository. The store performs point-in-time reads and writes; it does
// not enforce ordering across concurrent mutations.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	// ListAll returns every record ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]models.User, error)
}

// GormUserStore implements UserStore on a gorm handle.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore constructs a UserStore backed by the supplied database.
func NewGormUserStore(db *gorm.DB) (*GormUserStore, error) {
	if db == nil {
		return nil, errors.New("user store: db is required")
	}
	return &GormUserStore{db: db}, nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user store: find by id: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user store: find by email: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) Insert(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("user store: insert: %w", err)
	}
	return nil
}

func (s *GormUserStore) Update(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("user store: update: %w", err)
	}
	return nil
}

func (s *GormUserStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("user store: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormUserStore) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("user store: list: %w", err)
	}
	return users, nil
}
