package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
)

// Repository exposes catalog persistence for services and their packages.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List applies the browse filters. Search is case-insensitive over both
// name languages; results are ordered for display.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Service, error) {
	q := r.db.WithContext(ctx).Model(&models.Service{})

	if filters.Active != nil {
		q = q.Where("active = ?", *filters.Active)
	}
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name_en) LIKE ? OR LOWER(name_ar) LIKE ?", pattern, pattern)
	}
	if filters.PriceMin != nil {
		q = q.Where("price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		q = q.Where("price <= ?", *filters.PriceMax)
	}

	var rows []models.Service
	if err := q.Order("sort_order, created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a service without its packages.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var row models.Service
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create persists a new service.
func (r *Repository) Create(ctx context.Context, row *models.Service) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Update overwrites the full service row.
func (r *Repository) Update(ctx context.Context, row *models.Service) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// Delete removes the service and its packages.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Delete(&models.ServicePackage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Service{}).Error
	})
}

// ListPackages returns the ordered tiers of one service.
func (r *Repository) ListPackages(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePackage, error) {
	var rows []models.ServicePackage
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("sort_order, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindPackageByID loads one tier.
func (r *Repository) FindPackageByID(ctx context.Context, id uuid.UUID) (*models.ServicePackage, error) {
	var row models.ServicePackage
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreatePackageTx persists a new tier inside the caller's transaction.
func (r *Repository) CreatePackageTx(tx *gorm.DB, row *models.ServicePackage) error {
	return tx.Create(row).Error
}

// UpdatePackageTx overwrites the full tier row inside the caller's transaction.
func (r *Repository) UpdatePackageTx(tx *gorm.DB, row *models.ServicePackage) error {
	return tx.Save(row).Error
}

// DeletePackage removes one tier.
func (r *Repository) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ServicePackage{}).Error
}
