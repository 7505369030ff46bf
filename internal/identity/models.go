package identity

import "slices"

// Role is informational except where views use it as a coarse filter
// (e.g. "is this a tourist"). Authorization decisions run on permissions.
type Role string

const (
	RoleAdministrator   Role = "administrator"
	RoleTourist         Role = "tourist"
	RoleCarrier         Role = "carrier"
	RoleInspectionAgent Role = "inspection-agent"
)

// Permission strings mirror the capability set checked by the views.
const (
	PermAdmin          = "admin"
	PermValidate       = "validate"
	PermReports        = "reports"
	PermOffline        = "offline"
	PermDeclarations   = "declarations"
	PermUpload         = "upload"
	PermVehicles       = "vehicles"
	PermStatus         = "status"
	PermFoodValidation = "food_validation"
	PermPetValidation  = "pet_validation"
)

// User is the identity attached to every record operation.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the user holds the given capability.
func (u User) HasPermission(perm string) bool {
	return slices.Contains(u.Permissions, perm)
}

// Account pairs a user with login credentials. The credential table is demo
// data, not a security boundary.
type Account struct {
	User         User
	Email        string
	PasswordHash string
}
