// Package routes is the build-time declaration of the back-office route
// policy table and navigation menu. It is loaded once at startup and never
// mutated at runtime.
//
// ORDERING MATTERS. Resolution is first-match-wins, so within each module the
// add and edit entries must stay above the placeholder detail entry whose
// prefix also covers them. Keep that invariant when adding routes; the
// routepolicy package docs explain the failure mode.
package routes

import (
	"fleetgate/internal/capability"
	"fleetgate/internal/navigation"
	"fleetgate/internal/routepolicy"
)

// Well-known paths used by the guard and the navigation resolver.
const (
	LoginPath        = "/auth/login"
	PublicAuthPrefix = "/auth"
	DashboardPath    = "/dashboard"
)

// Registry returns the route policy table for the fleet back-office.
func Registry() *routepolicy.Registry {
	return routepolicy.New(
		routepolicy.NewEntry("/", routepolicy.ModeExact, routepolicy.Public()),
		routepolicy.NewEntry(PublicAuthPrefix, routepolicy.ModePrefix, routepolicy.Public()),

		routepolicy.NewEntry(DashboardPath, routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewDashboard)),
		routepolicy.NewEntry("/executive", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewExecutiveDashboard)),

		routepolicy.NewEntry("/vehicles/add", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyAddVehicles)),
		routepolicy.NewEntry("/vehicles/edit/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyEditVehicles)),
		routepolicy.NewEntry("/vehicles/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewVehicles, capability.KeyEditVehicles)),
		routepolicy.NewEntry("/vehicles", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewVehicles, capability.KeyAddVehicles)),

		routepolicy.NewEntry("/owners/add", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyAddOwners)),
		routepolicy.NewEntry("/owners/edit/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyEditOwners)),
		routepolicy.NewEntry("/owners/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewOwners, capability.KeyEditOwners)),
		routepolicy.NewEntry("/owners", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewOwners)),

		routepolicy.NewEntry("/locations/edit/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyEditLocations)),
		routepolicy.NewEntry("/locations/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewLocations, capability.KeyEditLocations)),
		routepolicy.NewEntry("/locations", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewLocations)),

		routepolicy.NewEntry("/delivery-notes/add", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyAddDeliveryNotes)),
		routepolicy.NewEntry("/delivery-notes/edit/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyEditDeliveryNotes)),
		routepolicy.NewEntry("/delivery-notes/:id", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewDeliveryNotes, capability.KeyEditDeliveryNotes)),
		routepolicy.NewEntry("/delivery-notes", routepolicy.ModeExact, routepolicy.RequireAny(capability.KeyViewDeliveryNotes, capability.KeyAddDeliveryNotes)),

		routepolicy.NewEntry("/reports", routepolicy.ModePrefix, routepolicy.RequireAny(capability.KeyViewReports)),

		routepolicy.NewEntry("/settings", routepolicy.ModePrefix, routepolicy.RequireAny(capability.KeyViewSettings, capability.KeyEditSettings)),

		// Legacy role-gated admin area; folds into the same evaluator as
		// the capability entries above.
		routepolicy.NewEntry("/admin", routepolicy.ModePrefix, routepolicy.RequireRole(capability.RoleAdmin)),
	)
}

// Menu returns the static navigation definition in display order.
func Menu() []navigation.Entry {
	return []navigation.Entry{
		{ID: "dashboard", Label: "Dashboard", Icon: "gauge", Path: DashboardPath,
			Requirement: routepolicy.RequireAny(capability.KeyViewDashboard)},
		{ID: "executive", Label: "Executive Dashboard", Icon: "briefcase", Path: "/executive",
			Requirement: routepolicy.RequireAny(capability.KeyViewExecutiveDashboard)},
		{ID: "vehicles", Label: "Vehicles", Icon: "truck", Path: "/vehicles",
			Requirement: routepolicy.RequireAny(capability.KeyViewVehicles, capability.KeyAddVehicles)},
		{ID: "owners", Label: "Owners", Icon: "users", Path: "/owners",
			Requirement: routepolicy.RequireAny(capability.KeyViewOwners)},
		{ID: "locations", Label: "Locations", Icon: "map-pin", Path: "/locations",
			Requirement: routepolicy.RequireAny(capability.KeyViewLocations)},
		{ID: "delivery-notes", Label: "Delivery Notes", Icon: "clipboard", Path: "/delivery-notes",
			Requirement: routepolicy.RequireAny(capability.KeyViewDeliveryNotes, capability.KeyAddDeliveryNotes)},
		{ID: "reports", Label: "Reports", Icon: "bar-chart", Path: "/reports",
			Requirement: routepolicy.RequireAny(capability.KeyViewReports)},
		{ID: "settings", Label: "Settings", Icon: "settings", Path: "/settings",
			Requirement: routepolicy.RequireAny(capability.KeyViewSettings, capability.KeyEditSettings)},
	}
}
