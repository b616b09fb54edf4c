package auth

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// CurrentUser = info singkat user yang lagi login
type CurrentUser struct {
	ID      int64
	Email   string
	Subject string // auth provider id
	Role    Role
}

// Identity is what the auth layer knows about a caller, before any directory lookup.
type Identity struct {
	Subject string
	Email   string
}

const ContextUserKey = "currentUser"

func (cu CurrentUser) IsAdmin() bool {
	return cu.Role == RoleAdmin
}

func (cu CurrentUser) Identity() Identity {
	return Identity{Subject: cu.Subject, Email: cu.Email}
}
