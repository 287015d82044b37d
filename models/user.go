package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// UserSession is the persisted login record. Exactly one session is held
// per user; logging in again replaces the previous one.
type UserSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}
