package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

func setupMembersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	teamMembers := `
CREATE TABLE IF NOT EXISTS team_members (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  email TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL,
  invite_token TEXT,
  token_expires_at DATETIME,
  activated_at DATETIME,
  invited_by_user_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(teamMembers).Error)

	return db
}

func createMember(t *testing.T, repo *Repository, org uuid.UUID, email string) *uuid.UUID {
	t.Helper()

	member, err := repo.Create(context.Background(), CreateMemberDTO{
		OrganizationID: org,
		Email:          email,
		FullName:       "Test Member",
		Role:           enums.MemberRoleMember,
		InviteToken:    uuid.NewString(),
		TokenExpiresAt: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return &member.ID
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	org := uuid.New()

	member, err := repo.Create(ctx, CreateMemberDTO{
		OrganizationID: org,
		Email:          "invitee@example.com",
		FullName:       "Invitee One",
		Role:           enums.MemberRoleAdmin,
		InviteToken:    "tok-123",
		TokenExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusPending, member.Status)
	require.NotNil(t, member.InviteToken)

	byEmail, err := repo.FindByEmailActiveOrPending(ctx, "invitee@example.com")
	require.NoError(t, err)
	assert.Equal(t, member.ID, byEmail.ID)
	assert.Equal(t, enums.MemberRoleAdmin, byEmail.Role)

	byToken, err := repo.FindByToken(ctx, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, member.ID, byToken.ID)

	_, err = repo.FindByToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateRejectsUnknownRole(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.Create(context.Background(), CreateMemberDTO{
		OrganizationID: uuid.New(),
		Email:          "x@example.com",
		FullName:       "X",
		Role:           enums.MemberRole("root"),
		InviteToken:    "tok",
		TokenExpiresAt: time.Now(),
	})
	require.Error(t, err)
}

func TestRepositoryActivateGuard(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	org := uuid.New()
	id := createMember(t, repo, org, "pending@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	activated, err := repo.ActivateTx(db, *id, now)
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusActive, activated.Status)
	assert.Nil(t, activated.InviteToken)
	assert.Nil(t, activated.TokenExpiresAt)
	require.NotNil(t, activated.ActivatedAt)

	// Second activation sees no pending row.
	_, err = repo.ActivateTx(db, *id, now)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestRepositoryListAndCount(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	org := uuid.New()
	otherOrg := uuid.New()

	first := createMember(t, repo, org, "a@example.com")
	createMember(t, repo, org, "b@example.com")
	createMember(t, repo, otherOrg, "c@example.com")

	_, err := repo.ActivateTx(db, *first, time.Now())
	require.NoError(t, err)

	rows, err := repo.ListByOrganization(ctx, org)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	count, err := repo.CountByOrganization(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	org := uuid.New()
	id := createMember(t, repo, org, "gone@example.com")

	require.NoError(t, repo.Delete(ctx, *id))

	_, err := repo.FindByID(ctx, *id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
