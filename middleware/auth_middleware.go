package middleware

import (
	"errors"
	"strings"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrMissingIdentity = errors.New("token carries no usable user_id or role")

// Identity is who the bearer token says is calling.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// CurrentUser reads the identity Protected stored on the request.
func CurrentUser(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return Identity{}, ErrMissingIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrMissingIdentity
	}
	return IdentityFromClaims(claims)
}

func IdentityFromClaims(claims jwt.MapClaims) (Identity, error) {
	rawID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil || role == "" {
		return Identity{}, ErrMissingIdentity
	}
	return Identity{UserID: userID, Role: role}, nil
}

func AdminRequired() fiber.Handler {
	return roleRequired(models.RoleAdmin, "Forbidden: Admin access required")
}

func TutorRequired() fiber.Handler {
	return roleRequired(models.RoleTutor, "Forbidden: Tutor access required")
}

func ParentRequired() fiber.Handler {
	return roleRequired(models.RoleParent, "Forbidden: Parent access required")
}

func roleRequired(role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := CurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		if identity.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": message,
			})
		}
		return c.Next()
	}
}
