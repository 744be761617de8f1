// Package session ties each browser to a session id carried in a cookie.
// The id keys all per-session state (the cart and the order form flow).
package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// CookieName is the cookie that carries the session id.
const CookieName = "order_session"

const localsKey = "session_id"

var ErrNoSession = errors.New("no session")

// NewStore builds the cookie session store. Session data itself stays empty;
// only the id is used. A nil storage keeps sessions in process memory, which
// forgets every id on restart.
func NewStore(ttl time.Duration, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		Storage:        storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})
}

// Middleware resolves or creates the session for every request and exposes its
// id through IDFromCtx.
func Middleware(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "session unavailable"})
		}
		id := sess.ID()
		// Save refreshes the cookie expiry and releases sess
		if err := sess.Save(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "session unavailable"})
		}
		SetID(c, id)
		return c.Next()
	}
}

// SetID attaches a session id to the request context.
func SetID(c *fiber.Ctx, id string) {
	c.Locals(localsKey, id)
}

func IDFromCtx(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals(localsKey).(string)
	if !ok || id == "" {
		return "", ErrNoSession
	}
	return id, nil
}
