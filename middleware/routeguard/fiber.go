package routeguard

import (
	"github.com/gofiber/fiber/v2"

	authstate "github.com/goliatone/go-authstate"
)

// FiberProtected is the fiber-native form of Guard.Protected for apps that
// mount middleware directly on a fiber router.
func FiberProtected(store *authstate.Store, policy authstate.AccessPolicy, routes authstate.Routes) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := authstate.Decide(store.Snapshot(), policy)

		switch decision {
		case authstate.DecisionRender:
			return c.Next()
		case authstate.DecisionHold:
			return c.Status(fiber.StatusServiceUnavailable).SendString("Loading...")
		default:
			return c.Redirect(decision.Target(routes), fiberRedirectStatus(c))
		}
	}
}

// FiberEntry is the fiber-native form of Guard.Entry
func FiberEntry(store *authstate.Store, routes authstate.Routes) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := authstate.DecideEntry(store.Snapshot())

		switch decision {
		case authstate.EntryShow:
			return c.Next()
		case authstate.EntryHold:
			return c.Status(fiber.StatusServiceUnavailable).SendString("Loading...")
		default:
			return c.Redirect(decision.Target(routes), fiberRedirectStatus(c))
		}
	}
}

func fiberRedirectStatus(c *fiber.Ctx) int {
	if c.Method() == fiber.MethodGet {
		return fiber.StatusFound
	}
	return fiber.StatusSeeOther
}
