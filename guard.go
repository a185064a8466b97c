package authstate

// Decision is the route guard's verdict for a screen
type Decision int

const (
	// DecisionRender allows the screen to render
	DecisionRender Decision = iota
	// DecisionRedirectLogin sends an unauthenticated visitor to login
	DecisionRedirectLogin
	// DecisionRedirectUnauthorized sends an authenticated visitor with the
	// wrong role to the unauthorized landing screen
	DecisionRedirectUnauthorized
	// DecisionHold renders a placeholder while session state is undecided
	DecisionHold
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	case DecisionHold:
		return "hold"
	default:
		return "unknown"
	}
}

// AccessPolicy declares a screen's access requirements. Stateless, defined
// once per screen.
type AccessPolicy struct {
	RequiresAuth bool
	// AdminOnly is shorthand for AllowedRoles = {admin, superadmin}
	AdminOnly bool
	// AllowedRoles restricts access to the listed roles. Empty means any
	// authenticated role.
	AllowedRoles []Role
}

// PolicyPublic is the open policy for unguarded screens
func PolicyPublic() AccessPolicy {
	return AccessPolicy{}
}

// PolicyAuthenticated requires any authenticated principal
func PolicyAuthenticated() AccessPolicy {
	return AccessPolicy{RequiresAuth: true}
}

// PolicyAdmin requires an elevated principal
func PolicyAdmin() AccessPolicy {
	return AccessPolicy{RequiresAuth: true, AdminOnly: true}
}

// Decide evaluates a screen's access policy against a session snapshot.
// Pure function, re-evaluated on every navigation and on every snapshot
// change; never cached. The clause order encodes precedence: an undecided
// session always holds, missing authentication always precedes role checks.
func Decide(snap Snapshot, policy AccessPolicy) Decision {
	if snap.Loading {
		return DecisionHold
	}

	if policy.RequiresAuth && !snap.Authenticated {
		return DecisionRedirectLogin
	}

	if policy.AdminOnly && !HasAnyRole(snap, ElevatedRoles()...) {
		return DecisionRedirectUnauthorized
	}

	if len(policy.AllowedRoles) > 0 && !HasAnyRole(snap, policy.AllowedRoles...) {
		return DecisionRedirectUnauthorized
	}

	return DecisionRender
}

// Target resolves a decision to a navigation target, or "" for decisions
// that render in place. The navigation layer performs the actual redirect.
func (d Decision) Target(routes Routes) string {
	routes = routes.withDefaults()
	switch d {
	case DecisionRedirectLogin:
		return routes.Login
	case DecisionRedirectUnauthorized:
		return routes.Unauthorized
	default:
		return ""
	}
}

// EntryDecision is the verdict of the inverse rule guarding the public
// login/register entry screens
type EntryDecision int

const (
	// EntryShow renders the entry screen
	EntryShow EntryDecision = iota
	// EntryRedirectAdminHome sends an already-authenticated elevated
	// principal to the admin home
	EntryRedirectAdminHome
	// EntryRedirectUserHome sends any other authenticated principal to
	// the user home
	EntryRedirectUserHome
	// EntryHold renders a placeholder while session state is undecided
	EntryHold
)

func (d EntryDecision) String() string {
	switch d {
	case EntryShow:
		return "show"
	case EntryRedirectAdminHome:
		return "redirect-admin-home"
	case EntryRedirectUserHome:
		return "redirect-user-home"
	case EntryHold:
		return "hold"
	default:
		return "unknown"
	}
}

// DecideEntry is the smaller decision table scoped to the login and
// register entry screens: anonymous and pending-verification visitors see
// the screen, authenticated ones are bounced to their home.
func DecideEntry(snap Snapshot) EntryDecision {
	if snap.Loading {
		return EntryHold
	}

	if !snap.Authenticated {
		return EntryShow
	}

	if HasAnyRole(snap, ElevatedRoles()...) {
		return EntryRedirectAdminHome
	}

	return EntryRedirectUserHome
}

// Target resolves an entry decision to a navigation target, or "" when the
// entry screen renders in place.
func (d EntryDecision) Target(routes Routes) string {
	routes = routes.withDefaults()
	switch d {
	case EntryRedirectAdminHome:
		return routes.AdminHome
	case EntryRedirectUserHome:
		return routes.UserHome
	default:
		return ""
	}
}
