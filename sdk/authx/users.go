package authx

const (
	// RoleSuperAdmin is the highest-privilege back-office role.
	RoleSuperAdmin = "super-admin"
	// RoleDirecteur is the content-management role held by the institution's
	// director.
	RoleDirecteur = "directeur"
)

// User represents a back-office user as returned by the CPPE API.
type User struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	// Roles is the ordered list of role names held by the User. It is
	// non-empty for any authenticated User.
	Roles []string `json:"roles"`
	// Permissions is the optional list of fine-grained permission names held
	// by the User.
	Permissions []string `json:"permissions,omitempty"`
}

// HasAnyRole returns true if the User holds at least one of the given roles.
// It is safe to call on a nil User.
func (u *User) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		for _, held := range u.Roles {
			if held == role {
				return true
			}
		}
	}
	return false
}

// HasPermission returns true if the User holds the named permission. It is
// safe to call on a nil User.
func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, held := range u.Permissions {
		if held == permission {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the User, or nil if the User is nil.
func (u *User) Copy() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	c.Permissions = append([]string(nil), u.Permissions...)
	return &c
}
