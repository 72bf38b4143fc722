package workspace

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// Repository exposes workspace and permission persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a workspace by its id (which equals the owner's user id).
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// Create persists a new workspace row.
func (r *Repository) Create(ctx context.Context, ws *models.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

// CreateTx persists a new workspace row inside the provided transaction.
func (r *Repository) CreateTx(tx *gorm.DB, ws *models.Workspace) error {
	return tx.Create(ws).Error
}

// FindPermissions loads the stored permission row for (org, role). Callers
// treat gorm.ErrRecordNotFound as "no grants configured".
func (r *Repository) FindPermissions(ctx context.Context, orgID uuid.UUID, role enums.MemberRole) (*models.WorkspacePermission, error) {
	var row models.WorkspacePermission
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND role = ?", orgID, role).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListPermissions returns all stored permission rows for the workspace.
func (r *Repository) ListPermissions(ctx context.Context, orgID uuid.UUID) ([]models.WorkspacePermission, error) {
	var rows []models.WorkspacePermission
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("role").
		Find(&rows).Error
	return rows, err
}

// UpsertPermissions writes the full flag set for (org, role), inserting or
// replacing the existing row.
func (r *Repository) UpsertPermissions(ctx context.Context, row *models.WorkspacePermission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "role"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"manage_team", "manage_permissions", "invite_members",
				"remove_members", "view_team", "manage_services",
				"manage_bookings", "manage_orders", "manage_tickets",
				"view_analytics", "view_billing", "manage_billing",
				"upload_files", "manage_workspace", "export_data",
				"updated_at",
			}),
		}).
		Create(row).Error
}
