package workspace

import "github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"

// Permissions is the full capability set for one role inside a workspace.
// Always construct via NoAccess or FullAccess; literal zero values are fine
// only because the zero value equals NoAccess().
type Permissions struct {
	ManageTeam        bool `json:"manage_team"`
	ManagePermissions bool `json:"manage_permissions"`
	InviteMembers     bool `json:"invite_members"`
	RemoveMembers     bool `json:"remove_members"`
	ViewTeam          bool `json:"view_team"`
	ManageServices    bool `json:"manage_services"`
	ManageBookings    bool `json:"manage_bookings"`
	ManageOrders      bool `json:"manage_orders"`
	ManageTickets     bool `json:"manage_tickets"`
	ViewAnalytics     bool `json:"view_analytics"`
	ViewBilling       bool `json:"view_billing"`
	ManageBilling     bool `json:"manage_billing"`
	UploadFiles       bool `json:"upload_files"`
	ManageWorkspace   bool `json:"manage_workspace"`
	ExportData        bool `json:"export_data"`
}

// NoAccess returns the all-false permission set.
func NoAccess() Permissions {
	return Permissions{}
}

// FullAccess returns the all-true permission set. Owners always get this
// regardless of stored permission rows.
func FullAccess() Permissions {
	return Permissions{
		ManageTeam:        true,
		ManagePermissions: true,
		InviteMembers:     true,
		RemoveMembers:     true,
		ViewTeam:          true,
		ManageServices:    true,
		ManageBookings:    true,
		ManageOrders:      true,
		ManageTickets:     true,
		ViewAnalytics:     true,
		ViewBilling:       true,
		ManageBilling:     true,
		UploadFiles:       true,
		ManageWorkspace:   true,
		ExportData:        true,
	}
}

func permissionsFromModel(row *models.WorkspacePermission) Permissions {
	if row == nil {
		return NoAccess()
	}
	return Permissions{
		ManageTeam:        row.ManageTeam,
		ManagePermissions: row.ManagePermissions,
		InviteMembers:     row.InviteMembers,
		RemoveMembers:     row.RemoveMembers,
		ViewTeam:          row.ViewTeam,
		ManageServices:    row.ManageServices,
		ManageBookings:    row.ManageBookings,
		ManageOrders:      row.ManageOrders,
		ManageTickets:     row.ManageTickets,
		ViewAnalytics:     row.ViewAnalytics,
		ViewBilling:       row.ViewBilling,
		ManageBilling:     row.ManageBilling,
		UploadFiles:       row.UploadFiles,
		ManageWorkspace:   row.ManageWorkspace,
		ExportData:        row.ExportData,
	}
}

func (p Permissions) applyToModel(row *models.WorkspacePermission) {
	row.ManageTeam = p.ManageTeam
	row.ManagePermissions = p.ManagePermissions
	row.InviteMembers = p.InviteMembers
	row.RemoveMembers = p.RemoveMembers
	row.ViewTeam = p.ViewTeam
	row.ManageServices = p.ManageServices
	row.ManageBookings = p.ManageBookings
	row.ManageOrders = p.ManageOrders
	row.ManageTickets = p.ManageTickets
	row.ViewAnalytics = p.ViewAnalytics
	row.ViewBilling = p.ViewBilling
	row.ManageBilling = p.ManageBilling
	row.UploadFiles = p.UploadFiles
	row.ManageWorkspace = p.ManageWorkspace
	row.ExportData = p.ExportData
}
