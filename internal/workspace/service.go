package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
)

type workspaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	FindPermissions(ctx context.Context, orgID uuid.UUID, role enums.MemberRole) (*models.WorkspacePermission, error)
	ListPermissions(ctx context.Context, orgID uuid.UUID) ([]models.WorkspacePermission, error)
	UpsertPermissions(ctx context.Context, row *models.WorkspacePermission) error
}

type membersRepository interface {
	FindByEmailActiveOrPending(ctx context.Context, email string) (*models.TeamMember, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.TeamMember, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service resolves a user's workspace standing and manages role permissions.
type Service interface {
	Resolve(ctx context.Context, user *models.User) TeamContext
	UpdatePermissions(ctx context.Context, actor *models.User, role enums.MemberRole, set Permissions) error
	ListRolePermissions(ctx context.Context, actor *models.User) (map[enums.MemberRole]Permissions, error)
	GetWorkspace(ctx context.Context, id uuid.UUID) (*WorkspaceDTO, error)
}

type service struct {
	repo    workspaceRepository
	members membersRepository
	users   usersRepository
	logg    *logger.Logger
}

// NewService builds the resolver with the provided repositories.
func NewService(repo workspaceRepository, members membersRepository, usersRepo usersRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("workspace repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("members repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		members: members,
		users:   usersRepo,
		logg:    logg,
	}, nil
}

// Resolve determines the caller's workspace affiliation. Branch priority:
// membership row first, owned workspace second, no affiliation last. Any
// lookup error collapses to the no-affiliation state so a transient failure
// can never produce a partial or stale role.
func (s *service) Resolve(ctx context.Context, user *models.User) TeamContext {
	none := TeamContext{Permissions: NoAccess(), TeamMembers: []TeamMemberDTO{}}
	if user == nil {
		return none
	}

	member, err := s.members.FindByEmailActiveOrPending(ctx, user.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "membership lookup failed, resolving as no affiliation", err)
		return none
	}

	if member != nil {
		return s.resolveMember(ctx, member)
	}

	ws, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Error(ctx, "workspace lookup failed, resolving as no affiliation", err)
		}
		return none
	}

	orgID := ws.ID
	tc := TeamContext{
		Role:           enums.MemberRoleOwner,
		OrganizationID: &orgID,
		IsOwner:        true,
		OwnerEmail:     user.Email,
		Permissions:    FullAccess(),
	}
	tc.TeamMembers = s.loadMembers(ctx, orgID)
	return tc
}

func (s *service) resolveMember(ctx context.Context, member *models.TeamMember) TeamContext {
	orgID := member.OrganizationID
	tc := TeamContext{
		Role:           member.Role,
		OrganizationID: &orgID,
		IsOwner:        false,
		Permissions:    NoAccess(),
	}

	// Absent permission row means no grants were configured for the role.
	row, err := s.repo.FindPermissions(ctx, orgID, member.Role)
	if err == nil {
		tc.Permissions = permissionsFromModel(row)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "permission lookup failed, resolving as no affiliation", err)
		return TeamContext{Permissions: NoAccess(), TeamMembers: []TeamMemberDTO{}}
	}

	if owner, err := s.users.FindByID(ctx, orgID); err == nil {
		tc.OwnerEmail = owner.Email
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "owner lookup failed, resolving as no affiliation", err)
		return TeamContext{Permissions: NoAccess(), TeamMembers: []TeamMemberDTO{}}
	}

	tc.TeamMembers = s.loadMembers(ctx, orgID)
	return tc
}

// loadMembers tolerates failure: the member list is supplementary and never
// blocks role resolution.
func (s *service) loadMembers(ctx context.Context, orgID uuid.UUID) []TeamMemberDTO {
	rows, err := s.members.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logg.Error(ctx, "team member list failed during resolution", err)
		return []TeamMemberDTO{}
	}
	return TeamMembersFromModels(rows)
}

// UpdatePermissions writes the full flag set for (workspace, role). Only the
// workspace owner may call it.
func (s *service) UpdatePermissions(ctx context.Context, actor *models.User, role enums.MemberRole, set Permissions) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	tc := s.Resolve(ctx, actor)
	if !tc.IsOwner || tc.OrganizationID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the workspace owner can manage permissions")
	}

	row := &models.WorkspacePermission{
		OrganizationID: *tc.OrganizationID,
		Role:           role,
	}
	set.applyToModel(row)

	if err := s.repo.UpsertPermissions(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert permissions")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"organization_id": tc.OrganizationID.String(),
		"role":            role,
	})
	s.logg.Info(logCtx, "workspace permissions updated")
	return nil
}

// ListRolePermissions returns the stored permission matrix for the actor's
// workspace. Owner only; roles with no stored row are omitted.
func (s *service) ListRolePermissions(ctx context.Context, actor *models.User) (map[enums.MemberRole]Permissions, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	tc := s.Resolve(ctx, actor)
	if !tc.IsOwner || tc.OrganizationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the workspace owner can view the permission matrix")
	}

	rows, err := s.repo.ListPermissions(ctx, *tc.OrganizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list permissions")
	}

	out := make(map[enums.MemberRole]Permissions, len(rows))
	for i := range rows {
		out[rows[i].Role] = permissionsFromModel(&rows[i])
	}
	return out, nil
}

// GetWorkspace loads a workspace by id.
func (s *service) GetWorkspace(ctx context.Context, id uuid.UUID) (*WorkspaceDTO, error) {
	ws, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workspace not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find workspace")
	}
	return workspaceFromModel(ws), nil
}
