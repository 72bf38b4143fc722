package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// WorkspacePermission stores the capability matrix for one (workspace, role)
// pair. Owners never read these rows; their access is forced to full during
// resolution.
type WorkspacePermission struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID        `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:ux_workspace_permissions_org_role"`
	Role           enums.MemberRole `gorm:"column:role;type:text;not null;uniqueIndex:ux_workspace_permissions_org_role"`

	ManageTeam        bool `gorm:"column:manage_team;not null;default:false"`
	ManagePermissions bool `gorm:"column:manage_permissions;not null;default:false"`
	InviteMembers     bool `gorm:"column:invite_members;not null;default:false"`
	RemoveMembers     bool `gorm:"column:remove_members;not null;default:false"`
	ViewTeam          bool `gorm:"column:view_team;not null;default:false"`
	ManageServices    bool `gorm:"column:manage_services;not null;default:false"`
	ManageBookings    bool `gorm:"column:manage_bookings;not null;default:false"`
	ManageOrders      bool `gorm:"column:manage_orders;not null;default:false"`
	ManageTickets     bool `gorm:"column:manage_tickets;not null;default:false"`
	ViewAnalytics     bool `gorm:"column:view_analytics;not null;default:false"`
	ViewBilling       bool `gorm:"column:view_billing;not null;default:false"`
	ManageBilling     bool `gorm:"column:manage_billing;not null;default:false"`
	UploadFiles       bool `gorm:"column:upload_files;not null;default:false"`
	ManageWorkspace   bool `gorm:"column:manage_workspace;not null;default:false"`
	ExportData        bool `gorm:"column:export_data;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
