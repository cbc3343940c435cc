// Package capability defines the closed permission vocabulary for the fleet
// back-office and the per-actor capability bag evaluated by the route policy
// engine. Keys follow an {action}_{module} naming convention, but that
// convention is display-only: security decisions compare whole keys and never
// parse them.
package capability

import "strings"

// Key identifies a single capability from the closed vocabulary below.
type Key string

// Vehicle module.
const (
	KeyViewVehicles Key = "view_vehicles"
	KeyAddVehicles  Key = "add_vehicles"
	KeyEditVehicles Key = "edit_vehicles"
)

// Owner / source module.
const (
	KeyViewOwners Key = "view_owners"
	KeyAddOwners  Key = "add_owners"
	KeyEditOwners Key = "edit_owners"
)

// Location module.
const (
	KeyViewLocations Key = "view_locations"
	KeyEditLocations Key = "edit_locations"
)

// Delivery note module.
const (
	KeyViewDeliveryNotes Key = "view_delivery_notes"
	KeyAddDeliveryNotes  Key = "add_delivery_notes"
	KeyEditDeliveryNotes Key = "edit_delivery_notes"
)

// Dashboards, reports, settings.
const (
	KeyViewDashboard          Key = "view_dashboard"
	KeyViewExecutiveDashboard Key = "view_executive_dashboard"
	KeyViewReports            Key = "view_reports"
	KeyViewSettings           Key = "view_settings"
	KeyEditSettings           Key = "edit_settings"
)

// Keys returns the full closed vocabulary in declaration order.
func Keys() []Key {
	return []Key{
		KeyViewVehicles, KeyAddVehicles, KeyEditVehicles,
		KeyViewOwners, KeyAddOwners, KeyEditOwners,
		KeyViewLocations, KeyEditLocations,
		KeyViewDeliveryNotes, KeyAddDeliveryNotes, KeyEditDeliveryNotes,
		KeyViewDashboard, KeyViewExecutiveDashboard,
		KeyViewReports, KeyViewSettings, KeyEditSettings,
	}
}

// IsKnown reports whether k belongs to the closed vocabulary.
func IsKnown(k Key) bool {
	for _, known := range Keys() {
		if known == k {
			return true
		}
	}
	return false
}

// ForModule returns the keys whose {action}_{module} suffix names the given
// module. This is a display helper for admin screens and must never feed an
// access decision.
func ForModule(module string) []Key {
	var keys []Key
	for _, k := range Keys() {
		if strings.HasSuffix(string(k), "_"+module) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Bag holds an actor's boolean capability grants. A missing key reads as
// false. Bags are replaced wholesale on refresh, never merged, so a reader
// holding a bag sees a consistent snapshot.
type Bag map[Key]bool

// Has reports whether the bag grants k. Nil bags grant nothing.
func (b Bag) Has(k Key) bool {
	return b[k]
}

// HasAny reports whether the bag grants at least one of keys. An empty key
// list is never satisfied; callers wanting "public" semantics must not reach
// the bag at all.
func (b Bag) HasAny(keys ...Key) bool {
	for _, k := range keys {
		if b[k] {
			return true
		}
	}
	return false
}

// HasAll reports whether the bag grants every one of keys.
func (b Bag) HasAll(keys ...Key) bool {
	for _, k := range keys {
		if !b[k] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the bag.
func (b Bag) Clone() Bag {
	if b == nil {
		return nil
	}
	out := make(Bag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
