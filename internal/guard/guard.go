// Package guard gates navigation: protected views validate the session before
// mounting, role-restricted views check the cached user's role, and guest-only
// entry points bounce authenticated users to their home view.
package guard

import (
	"context"

	"aquaflow-client/internal/domain"
)

// Route describes one navigable view.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	// Role restricts the route to one role; empty means any authenticated
	// user.
	Role string
	// GuestOnly marks entry points that logged-in users are redirected away
	// from.
	GuestOnly bool
}

// DefaultRoutes is the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: "Landing"},
		{Path: "/login", Name: "Login", GuestOnly: true},
		{Path: "/register", Name: "Register", GuestOnly: true},
		{Path: "/forgotpass", Name: "ForgotPass"},
		{Path: "/customerDashboard", Name: "CustomerDashboard", RequiresAuth: true, Role: domain.RoleCustomer},
		{Path: "/customerContainer", Name: "CustomerContainer", RequiresAuth: true, Role: domain.RoleCustomer},
		{Path: "/customerCart", Name: "CustomerCart", RequiresAuth: true, Role: domain.RoleCustomer},
		{Path: "/orderHistory", Name: "OrderHistory", RequiresAuth: true, Role: domain.RoleCustomer},
		{Path: "/adminOrders", Name: "AdminOrders", RequiresAuth: true, Role: domain.RoleAdmin},
	}
}

type validator interface {
	Validate(ctx context.Context) bool
}

type userSource interface {
	User() (*domain.User, bool)
}

// Guard resolves navigation targets to access decisions. It has no side
// effects on the target view: nothing mounts until a decision is returned.
type Guard struct {
	validator validator
	users     userSource
	routes    map[string]Route
}

// New builds a Guard over the session validator and the route table.
func New(v validator, users userSource, routes []Route) *Guard {
	byPath := make(map[string]Route, len(routes))
	for _, r := range routes {
		byPath[r.Path] = r
	}
	return &Guard{validator: v, users: users, routes: byPath}
}

// Decision is the outcome of resolving a navigation.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision               { return Decision{Allow: true} }
func redirect(path string) Decision { return Decision{RedirectTo: path} }

// Resolve decides whether navigation to path may proceed. Unknown paths are
// allowed: the guard protects known views, it is not a firewall.
func (g *Guard) Resolve(ctx context.Context, path string) Decision {
	route, ok := g.routes[path]
	if !ok {
		return allow()
	}

	if route.RequiresAuth {
		if !g.validator.Validate(ctx) {
			return redirect("/login")
		}
		if route.Role != "" {
			user, ok := g.users.User()
			if !ok {
				return redirect("/login")
			}
			if user.Role != route.Role {
				return redirect(HomePath(user.Role))
			}
		}
		return allow()
	}

	if route.GuestOnly && g.validator.Validate(ctx) {
		role := ""
		if user, ok := g.users.User(); ok {
			role = user.Role
		}
		return redirect(HomePath(role))
	}

	return allow()
}

// HomePath is where a role lands after login or a blocked navigation.
func HomePath(role string) string {
	if role == domain.RoleAdmin {
		return "/adminOrders"
	}
	return "/customerDashboard"
}
