package dashboard

import "github.com/hay-kot/taskdeck/internal/core/auth"

// Route names a screen of the dashboard.
type Route string

const (
	RouteLogin      Route = "login"
	RouteRegister   Route = "register"
	RouteTasks      Route = "tasks"
	RouteTaskDetail Route = "task-detail"
	RouteSettings   Route = "settings"
	RouteAdminUsers Route = "admin-users"
	RouteAdminStats Route = "admin-stats"
)

// DeniedAdminRoute is shown when a signed-in user opens an admin route.
const DeniedAdminRoute = "Access denied: administrator role required"

type routeSpec struct {
	public bool
	role   auth.Role
}

var routeSpecs = map[Route]routeSpec{
	RouteLogin:      {public: true},
	RouteRegister:   {public: true},
	RouteTasks:      {role: auth.RoleUser},
	RouteTaskDetail: {role: auth.RoleUser},
	RouteSettings:   {role: auth.RoleUser},
	RouteAdminUsers: {role: auth.RoleAdmin},
	RouteAdminStats: {role: auth.RoleAdmin},
}

// IsPublic reports whether r can be shown without a session.
func (r Route) IsPublic() bool {
	return routeSpecs[r].public
}

// RequiredRole returns the role r demands. Unknown routes require a user.
func (r Route) RequiredRole() auth.Role {
	spec, ok := routeSpecs[r]
	if !ok || spec.role == "" {
		return auth.RoleUser
	}
	return spec.role
}

// DecisionKind is what the view layer should do with a route.
type DecisionKind int

const (
	// DecisionLoading shows a placeholder; the session is not settled.
	DecisionLoading DecisionKind = iota
	// DecisionRender shows the route.
	DecisionRender
	// DecisionRedirectLogin sends the user to the login route.
	DecisionRedirectLogin
	// DecisionDeny shows Message instead of the route.
	DecisionDeny
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionLoading:
		return "loading"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one route.
type Decision struct {
	Kind    DecisionKind
	Route   Route
	Message string
}

// SessionSource is what the guard reads from the session.
type SessionSource interface {
	Snapshot() Snapshot
}

// Guard decides whether a route may be rendered for the current session.
// It holds no state of its own.
type Guard struct {
	session SessionSource
}

// NewGuard creates a guard reading from session.
func NewGuard(session SessionSource) *Guard {
	return &Guard{session: session}
}

// Decide evaluates route against the current session snapshot. Protected
// content is never rendered before the session is confirmed.
func (g *Guard) Decide(route Route) Decision {
	if route.IsPublic() {
		return Decision{Kind: DecisionRender, Route: route}
	}

	snap := g.session.Snapshot()

	switch snap.Phase {
	case auth.PhaseInitializing, auth.PhaseTentative:
		return Decision{Kind: DecisionLoading, Route: route}
	}

	if !snap.Authenticated {
		return Decision{Kind: DecisionRedirectLogin, Route: RouteLogin}
	}

	if !snap.Identity.Role.Satisfies(route.RequiredRole()) {
		return Decision{Kind: DecisionDeny, Route: route, Message: DeniedAdminRoute}
	}

	return Decision{Kind: DecisionRender, Route: route}
}
