package serverutils

import (
	"context"

	"realtime-chat-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID   = "user_id"
	LocalIdentity = "identity"
)

// Authenticator verifies a bearer token and returns who it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entity.Identity, error)
}

// JwtMiddleware accepts only requests carrying a valid, unrevoked token of a
// live account. The user id is stored in Locals as a string, the full
// identity under "identity".
func JwtMiddleware(auth Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		identity, err := auth.Authenticate(ctx.UserContext(), authHeader[7:])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(LocalUserID, identity.UserId.String())
		ctx.Locals(LocalIdentity, identity)
		return ctx.Next()
	}
}

// CurrentIdentity reads what JwtMiddleware stored.
func CurrentIdentity(ctx *fiber.Ctx) (entity.Identity, bool) {
	identity, ok := ctx.Locals(LocalIdentity).(entity.Identity)
	return identity, ok
}
