package rbac

type Permission = string

type Role struct {
	Name        string
	Label       string
	Permissions []Permission
}

// Identity is the authenticated operator for the current console session.
type Identity struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}
