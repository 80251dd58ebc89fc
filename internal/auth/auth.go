// Package auth decides which views a session may reach.
//
// [Authorize] is the gate placed in front of every protected view. It is pure: the outcome depends only on
// the required role and the session passed in.
package auth

import (
	"strings"

	"github.com/desertthunder/marquee/internal/models"
)

const (
	PathLogin        = "/"
	PathAdminHome    = "/admin/home"
	PathMemberHome   = "/user/home"
	PathUnauthorized = "/unauthorized"
)

// Decision is the outcome of the gate.
//
// When Allow is false, Redirect names the view to show instead and From records the path that was attempted.
type Decision struct {
	Allow    bool
	Redirect string
	From     string
}

// Authorize checks sess against the role a view requires.
func Authorize(required models.Role, sess models.Session) Decision {
	switch role := models.ParseRole(string(sess.Role)); {
	case role == required:
		return Decision{Allow: true}
	case role != models.RoleNone:
		return Decision{Redirect: PathUnauthorized}
	default:
		return Decision{Redirect: PathLogin}
	}
}

// Route is one entry of the route table. A [models.RoleNone] Role marks a public route.
type Route struct {
	Path string
	Role models.Role
}

// Routes is the application's route table.
type Routes []Route

// DefaultRoutes returns the routes of the client.
func DefaultRoutes() Routes {
	return Routes{
		{Path: PathLogin},
		{Path: PathAdminHome, Role: models.RoleAdmin},
		{Path: PathMemberHome, Role: models.RoleMember},
		{Path: PathUnauthorized},
	}
}

// Lookup returns the route registered for path.
func (r Routes) Lookup(path string) (Route, bool) {
	path = cleanPath(path)
	for _, route := range r {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

// Resolve applies the gate to path. Unknown paths resolve to the login view.
func (r Routes) Resolve(path string, sess models.Session) Decision {
	route, ok := r.Lookup(path)
	if !ok {
		return Decision{Redirect: PathLogin, From: cleanPath(path)}
	}
	if route.Role == models.RoleNone {
		return Decision{Allow: true}
	}

	d := Authorize(route.Role, sess)
	if !d.Allow {
		d.From = route.Path
	}
	return d
}

// HomePath returns the landing view for role.
func HomePath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return PathAdminHome
	case models.RoleMember:
		return PathMemberHome
	default:
		return PathLogin
	}
}

func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathLogin
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return PathLogin
	}
	return path
}
