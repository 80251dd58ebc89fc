package models

import "strings"

// Role is the access level carried by a [Session].
type Role string

const (
	RoleNone   Role = ""
	RoleAdmin  Role = "admin"
	RoleMember Role = "user" // the backend's wire value for members
)

// ParseRole maps a wire value to a known [Role]; anything unrecognized is [RoleNone].
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleMember:
		return RoleMember
	default:
		return RoleNone
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	default:
		return "anonymous"
	}
}

// Session is the authenticated identity persisted across restarts.
//
// The zero value is the anonymous session.
type Session struct {
	Role       Role   `json:"role,omitempty"`
	Name       string `json:"name,omitempty"`
	Identifier string `json:"_id,omitempty"`
}

// IsAnonymous reports whether no role is set.
func (s Session) IsAnonymous() bool { return s.Role == RoleNone }

// Sanitize drops an unrecognized role so the session behaves as anonymous.
func (s Session) Sanitize() Session {
	s.Role = ParseRole(string(s.Role))
	return s
}
