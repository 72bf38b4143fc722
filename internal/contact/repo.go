package contact

import (
	"context"

	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
)

// Repository exposes contact message persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contact repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx persists a contact message inside the caller's transaction.
func (r *Repository) CreateTx(tx *gorm.DB, message *models.ContactMessage) error {
	return tx.Create(message).Error
}

// List returns all stored submissions newest first.
func (r *Repository) List(ctx context.Context) ([]models.ContactMessage, error) {
	var rows []models.ContactMessage
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
