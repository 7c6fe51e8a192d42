package navigation

import "github.com/reviewfighters/reviewfighters-api/internal/models"

// Destinations shared across roles.
var (
	linkHome      = Link{To: "/", Icon: "home", Label: "Home"}
	linkDashboard = Link{To: "/dashboard", Icon: "layout-dashboard", Label: "Dashboard"}
	linkReviews   = Link{To: "/reviews", Icon: "star", Label: "Reviews"}
	linkMedia     = Link{To: "/media", Icon: "image", Label: "Media"}
	linkProfile   = Link{To: "/profile", Icon: "user", Label: "Profile"}
	linkNotify    = Link{To: "/notifications", Icon: "bell", Label: "Notifications"}
	linkSettings  = Link{To: "/settings", Icon: "settings", Label: "Settings"}

	linkStaffTasks   = Link{To: "/staff/tasks", Icon: "clipboard-list", Label: "Tasks"}
	linkItemsReview  = Link{To: "/staff/review-items", Icon: "search-check", Label: "Items to Review"}
	linkOnboardingRv = Link{To: "/staff/onboarding-reviews", Icon: "user-check", Label: "Onboarding Reviews"}
)

var userSection = Section{
	Title: "Main",
	Links: []Link{linkHome, linkDashboard, linkReviews, linkMedia, linkProfile},
}

var affiliateSection = Section{
	Title: "Affiliate",
	Links: []Link{
		linkProfile,
		{To: "/affiliate/dashboard", Icon: "layout-dashboard", Label: "Affiliate Dashboard"},
		{To: "/affiliate/account", Icon: "wallet", Label: "Account"},
		{To: "/affiliate/marketing-materials", Icon: "folder-open", Label: "Marketing Materials"},
		{To: "/affiliate/marketing-tools", Icon: "megaphone", Label: "Marketing Tools"},
	},
}

var salesSection = Section{
	Title: "Sales",
	Links: []Link{
		linkProfile,
		{To: "/sales/dashboard", Icon: "layout-dashboard", Label: "Sales Dashboard"},
		{To: "/sales/tasks/available", Icon: "list-plus", Label: "Available Tasks"},
		{To: "/sales/tasks/mine", Icon: "list-checks", Label: "My Tasks"},
		{To: "/sales/account", Icon: "wallet", Label: "Account"},
		linkNotify,
	},
}

var staffSection = Section{
	Title: "Staff",
	Links: []Link{
		{To: "/staff/dashboard", Icon: "layout-dashboard", Label: "Staff Dashboard"},
		{To: "/staff/profile", Icon: "id-card", Label: "Staff Profile"},
		linkStaffTasks,
		linkItemsReview,
		linkOnboardingRv,
		linkNotify,
	},
}

// staffTasksSection is the slice of staff work that admins also handle.
var staffTasksSection = Section{
	Title: "Staff Tasks",
	Links: []Link{linkStaffTasks, linkItemsReview},
}

var adminToolsSection = Section{
	Title: "Admin Tools",
	Links: []Link{
		{To: "/admin/affiliates", Icon: "handshake", Label: "Manage Affiliates"},
		{To: "/admin/marketing-media", Icon: "film", Label: "Marketing Media"},
		{To: "/admin/role-permissions", Icon: "shield", Label: "Role Permissions"},
		{To: "/admin/users", Icon: "users", Label: "User Management"},
		{To: "/admin/email-settings", Icon: "mail", Label: "Email Settings"},
		{To: "/admin/onboarding", Icon: "clipboard-check", Label: "Onboarding Dashboard"},
		{To: "/admin/landing-editor", Icon: "pencil-ruler", Label: "Landing Editor"},
	},
}

var ownerFeaturesSection = Section{
	Title: "Owner",
	Links: []Link{
		{To: "/owner/dashboard", Icon: "crown", Label: "Owner Dashboard"},
		{To: "/owner/payouts", Icon: "banknote", Label: "Payouts"},
		{To: "/owner/staff", Icon: "users-round", Label: "Staff Management"},
		{To: "/owner/reports", Icon: "bar-chart", Label: "Reports"},
		linkNotify,
	},
}

// ownerPortalSection frames the owner's view; it carries the basic user
// dashboard that the admin table leaves out.
var ownerPortalSection = Section{
	Title: "Owner Portal",
	Links: []Link{linkHome, linkDashboard},
}

var settingsSection = Section{
	Title: "Account",
	Links: []Link{linkSettings},
}

var adminSections = []Section{staffTasksSection, adminToolsSection, ownerFeaturesSection}

// policy is the complete role -> navigation table. The ADMIN/OWNER split
// is business configuration.
var policy = table{
	models.RoleUser:      withSettings(userSection),
	models.RoleAffiliate: sections(affiliateSection),
	models.RoleSales:     sections(salesSection),
	models.RoleStaff:     withSettings(staffSection),
	models.RoleAdmin:     withSettings(adminSections...),
	models.RoleOwner:     withSettings(append([]Section{ownerPortalSection}, adminSections...)...),
}

func sections(s ...Section) []Section {
	return s
}

func withSettings(s ...Section) []Section {
	out := make([]Section, 0, len(s)+1)
	out = append(out, s...)
	return append(out, settingsSection)
}
