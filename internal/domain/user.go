package domain

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is the profile record cached next to the session token. Token and user
// are always stored and evicted together.
type User struct {
	ID        int64  `json:"user_id"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	ContactNo string `json:"contact_no"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
