package entity

// Role is the casbin subject derived from a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) String() string { return string(r) }

// Object names the resource an authorization check is made against.
type Object string

const ObjectManager Object = "manager"

// Action is the verb of an authorization check.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)
