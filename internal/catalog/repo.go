package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/merrymatch/membership-backend/internal/repo"
	"github.com/merrymatch/membership-backend/pkg/db/models"
)

// Repository reads the package catalog.
type Repository interface {
	List(ctx context.Context) ([]models.Package, error)
	FindByID(ctx context.Context, id int64) (*models.Package, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a catalog repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) List(ctx context.Context) ([]models.Package, error) {
	var pkgs []models.Package
	if err := r.DB(ctx).
		Order("position ASC").
		Order("package_id ASC").
		Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

// FindByID returns nil when the package does not exist.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.Package, error) {
	var pkg models.Package
	err := r.DB(ctx).Where("package_id = ?", id).Take(&pkg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
