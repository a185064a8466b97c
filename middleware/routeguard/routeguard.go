// Package routeguard is the navigation layer around the pure guard: it
// evaluates a screen's access policy against the live session snapshot and
// performs the redirect or hold as an HTTP side effect, keeping the policy
// logic itself independently testable.
package routeguard

import (
	"net/http"

	"github.com/goliatone/go-router"

	authstate "github.com/goliatone/go-authstate"
)

// Guard adapts guard decisions for a go-router application
type Guard struct {
	store  *authstate.Store
	routes authstate.Routes
	hold   router.HandlerFunc
}

// New returns a Guard reading from the given store
func New(store *authstate.Store) *Guard {
	g := &Guard{
		store:  store,
		routes: authstate.DefaultRoutes(),
	}
	g.hold = g.defaultHold
	return g
}

// WithRoutes overrides the navigation table
func (g *Guard) WithRoutes(routes authstate.Routes) *Guard {
	g.routes = routes
	return g
}

// WithHoldHandler overrides the placeholder rendered while session state
// is undecided
func (g *Guard) WithHoldHandler(h router.HandlerFunc) *Guard {
	if h != nil {
		g.hold = h
	}
	return g
}

// Protected gates a screen behind an access policy. The decision is
// re-evaluated on every request against the latest snapshot.
func (g *Guard) Protected(policy authstate.AccessPolicy) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := authstate.Decide(g.store.Snapshot(), policy)

			switch decision {
			case authstate.DecisionRender:
				return next(c)
			case authstate.DecisionHold:
				return g.hold(c)
			default:
				return c.Redirect(decision.Target(g.routes), redirectStatus(c))
			}
		}
	}
}

// Entry gates the public login/register screens with the inverse rule:
// authenticated visitors are bounced to their home.
func (g *Guard) Entry() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := authstate.DecideEntry(g.store.Snapshot())

			switch decision {
			case authstate.EntryShow:
				return next(c)
			case authstate.EntryHold:
				return g.hold(c)
			default:
				return c.Redirect(decision.Target(g.routes), redirectStatus(c))
			}
		}
	}
}

func (g *Guard) defaultHold(c router.Context) error {
	return c.Status(http.StatusServiceUnavailable).SendString("Loading...")
}

// redirectStatus mirrors browser expectations: GET navigations get 302,
// form posts get 303 so the follow-up is a GET.
func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
