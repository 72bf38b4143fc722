package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

func setupTicketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE tickets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			description TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'medium',
			status TEXT NOT NULL DEFAULT 'open',
			service_id TEXT,
			closed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())
	})
	return db
}

func seedTicket(t *testing.T, db *gorm.DB, userID uuid.UUID, priority enums.TicketPriority, createdAt time.Time) *models.Ticket {
	t.Helper()

	ticket := &models.Ticket{
		ID:          uuid.New(),
		UserID:      userID,
		Subject:     "Bot keeps timing out",
		Description: "The chatbot stops responding after two minutes",
		Priority:    priority,
		Status:      enums.TicketStatusOpen,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, db.Create(ticket).Error)
	return ticket
}

func TestRepositoryCloseStampsAndReopenClears(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)

	ticket := seedTicket(t, db, uuid.New(), enums.TicketPriorityHigh, time.Now().UTC())
	closedAt := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

	closed, err := repo.UpdateStatusTx(db, ticket.ID, enums.TicketStatusClosed, closedAt)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	assert.WithinDuration(t, closedAt, *closed.ClosedAt, time.Second)

	// Closed to open is permitted and clears the close stamp.
	reopened, err := repo.UpdateStatusTx(db, ticket.ID, enums.TicketStatusOpen, time.Now())
	require.NoError(t, err)
	assert.Equal(t, enums.TicketStatusOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)

	_, err = repo.UpdateStatusTx(db, uuid.New(), enums.TicketStatusClosed, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	low := seedTicket(t, db, userID, enums.TicketPriorityLow, base)
	highOld := seedTicket(t, db, userID, enums.TicketPriorityHigh, base.Add(time.Hour))
	highNew := seedTicket(t, db, userID, enums.TicketPriorityHigh, base.Add(2*time.Hour))
	seedTicket(t, db, uuid.New(), enums.TicketPriorityHigh, base.Add(3*time.Hour))

	priority := enums.TicketPriorityHigh
	rows, next, err := repo.List(ctx, ListParams{UserID: &userID, Priority: &priority, Limit: 1}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, next)
	assert.Equal(t, highNew.ID, rows[0].ID)

	rows, next, err = repo.List(ctx, ListParams{UserID: &userID, Priority: &priority, Limit: 1}, next)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, next)
	assert.Equal(t, highOld.ID, rows[0].ID)

	status := enums.TicketStatusOpen
	rows, _, err = repo.List(ctx, ListParams{UserID: &userID, Status: &status, Limit: 10}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, low.ID, rows[2].ID)
}
