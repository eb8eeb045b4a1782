package middleware

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/shared"
)

// PlayTokenVerifier resolves the play handle carried in the Authorization header.
type PlayTokenVerifier interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	ResolvePlay(token string) (playID, playerCode string, err error)
}

// RequiredPlay rejects requests without a valid play token and stores the
// play id and participant code in the request locals.
func RequiredPlay(verifier PlayTokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := verifier.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return shared.ResponseUnauthorized(c, err.Error())
		}

		playID, playerCode, err := verifier.ResolvePlay(token)
		if err != nil {
			log.WithError(err).Debug("Rejected play token")
			return shared.ResponseUnauthorized(c, "Invalid play token")
		}

		c.Locals(shared.PlayID, playID)
		c.Locals(shared.PlayerCode, playerCode)
		return c.Next()
	}
}

// PlayID reads the play id stored by RequiredPlay.
func PlayID(c *fiber.Ctx) string {
	id, _ := c.Locals(shared.PlayID).(string)
	return id
}
