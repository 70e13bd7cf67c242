package model

// Role is the access level attached to a session when it is created. The
// gateway protocol carries no role field, so the role is decided exactly once
// at login time and stored with the session; call sites check the stored role
// rather than re-deriving it from the username.
type Role string

const (
	// RoleAdmin is held only by the reserved admin account.
	RoleAdmin Role = "admin"
	// RoleStandard is every other authenticated user.
	RoleStandard Role = "standard"
)

// AdminUsername is the reserved username of the sole admin account. The
// gateway protects this account server-side; we refuse to delete it locally
// as well.
const AdminUsername = "admin"

// UserSummary is one row of the gateway's user listing.
type UserSummary struct {
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	CreatedBy string `json:"createdBy,omitempty"`
}
