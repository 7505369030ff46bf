// Package access computes which records a user may see or act on. The rules
// come from the checkpoint's permission table, not from roles: roles are
// display metadata except where a view needs a coarse "is tourist" check.
package access

import (
	"strings"

	"frontera/internal/identity"
)

// Ownership describes how a record relates to users: the owner-id foreign
// key stamped at creation, the free-text owner/traveler/guardian name, and
// the record id itself for the legacy id-substring match.
type Ownership struct {
	OwnerID   string
	OwnerName string
	RecordID  string
}

// Elevated reports whether the user sees every record in ordinary
// collections (vehicles, minors): border administrators and validators.
func Elevated(user identity.User) bool {
	return user.HasPermission(identity.PermAdmin) || user.HasPermission(identity.PermValidate)
}

// ElevatedForDeclarations additionally admits category validators, who see
// the full declarations collection narrowed to their category.
func ElevatedForDeclarations(user identity.User) bool {
	return user.HasPermission(identity.PermAdmin) ||
		user.HasPermission(identity.PermFoodValidation) ||
		user.HasPermission(identity.PermPetValidation)
}

// CategoryAllowed reports whether the user may see declarations of the given
// category ("food" or "pet"). Admins see both; a category validator without
// admin sees only their own category.
func CategoryAllowed(user identity.User, category string) bool {
	if user.HasPermission(identity.PermAdmin) {
		return true
	}
	switch category {
	case "food":
		return user.HasPermission(identity.PermFoodValidation)
	case "pet":
		return user.HasPermission(identity.PermPetValidation)
	default:
		return false
	}
}

// Owned reports whether the record belongs to the user. The owner-id foreign
// key decides when present; records predating the FK fall back to the legacy
// match: owner/traveler/guardian name contains the user's name
// case-insensitively, or the record id contains the user's id. The fallback
// is deliberately approximate - two users with overlapping names can see
// each other's legacy records. That limitation is documented, not a bug to
// silently fix.
func Owned(user identity.User, o Ownership) bool {
	if o.OwnerID != "" {
		return o.OwnerID == user.ID
	}
	if user.Name != "" && strings.Contains(strings.ToLower(o.OwnerName), strings.ToLower(user.Name)) {
		return true
	}
	return user.ID != "" && strings.Contains(o.RecordID, user.ID)
}

// Visible returns the subset of records the user may see. Elevated users get
// the full collection; everyone else gets records they own.
func Visible[T any](user identity.User, records []T, ownership func(T) Ownership) []T {
	if Elevated(user) {
		return records
	}
	visible := make([]T, 0, len(records))
	for _, record := range records {
		if Owned(user, ownership(record)) {
			visible = append(visible, record)
		}
	}
	return visible
}
