package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merrymatch/membership-backend/internal/repo"
	"github.com/merrymatch/membership-backend/pkg/db/models"
)

// Repository reads the externally managed users table.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Exists reports whether a user row with the given id is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
