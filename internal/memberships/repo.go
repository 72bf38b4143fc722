package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// ErrNotPending reports an activation attempt against a row that is no
// longer pending. The guarded UPDATE treats it the same as a lost race.
var ErrNotPending = fmt.Errorf("membership is not pending")

// Repository exposes team member persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new pending member row.
func (r *Repository) Create(ctx context.Context, dto CreateMemberDTO) (*models.TeamMember, error) {
	return r.create(r.db.WithContext(ctx), dto)
}

// CreateTx persists a new pending member row inside an existing transaction.
func (r *Repository) CreateTx(tx *gorm.DB, dto CreateMemberDTO) (*models.TeamMember, error) {
	return r.create(tx, dto)
}

func (r *Repository) create(conn *gorm.DB, dto CreateMemberDTO) (*models.TeamMember, error) {
	if !dto.Role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", dto.Role)
	}

	token := dto.InviteToken
	expires := dto.TokenExpiresAt
	member := &models.TeamMember{
		ID:              uuid.New(),
		OrganizationID:  dto.OrganizationID,
		Email:           dto.Email,
		FullName:        dto.FullName,
		Role:            dto.Role,
		Status:          enums.MembershipStatusPending,
		InviteToken:     &token,
		TokenExpiresAt:  &expires,
		InvitedByUserID: dto.InvitedByUserID,
	}

	if err := conn.Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// FindByID retrieves a member row by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByEmailActiveOrPending returns the member row for the email whose
// status still grants or will grant workspace access. Removed rows are
// deleted outright so a plain status filter is enough.
func (r *Repository) FindByEmailActiveOrPending(ctx context.Context, email string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("email = ? AND status IN ?", email, []enums.MembershipStatus{
			enums.MembershipStatusActive,
			enums.MembershipStatusPending,
		}).
		Order("created_at").
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByToken retrieves a pending member row by its invite token.
func (r *Repository) FindByToken(ctx context.Context, token string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("invite_token = ?", token).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByOrganization returns every member row of the workspace, oldest first.
func (r *Repository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]models.TeamMember, error) {
	var rows []models.TeamMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByOrganization counts active and pending members of the workspace.
// Used by the invite quota check.
func (r *Repository) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("organization_id = ? AND status IN ?", organizationID, []enums.MembershipStatus{
			enums.MembershipStatusActive,
			enums.MembershipStatusPending,
		}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ActivateTx flips a pending row to active inside an existing transaction.
// The status guard in the WHERE clause makes concurrent accepts race-safe;
// exactly one caller sees a row update, everyone else gets ErrNotPending.
func (r *Repository) ActivateTx(tx *gorm.DB, id uuid.UUID, now time.Time) (*models.TeamMember, error) {
	res := tx.Model(&models.TeamMember{}).
		Where("id = ? AND status = ?", id, enums.MembershipStatusPending).
		Updates(map[string]any{
			"status":           enums.MembershipStatusActive,
			"activated_at":     now,
			"invite_token":     nil,
			"token_expires_at": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotPending
	}

	var member models.TeamMember
	if err := tx.Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Delete removes a member row. Revoking a pending invite and removing an
// active member are the same operation at this layer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.TeamMember{}).Error
}
