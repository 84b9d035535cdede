package serverutils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userIDLocal = "user_id"

var errNoToken = errors.New("missing token")

func parseUserID(claims jwt.MapClaims) (int, error) {
	raw, ok := claims["user_id"]
	if !ok {
		raw, ok = claims["sub"]
	}
	if !ok {
		return 0, errors.New("token has no user id")
	}

	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, fmt.Errorf("unsupported user id type %T", raw)
}

// bearerToken reads the Authorization header, falling back to the "token"
// query parameter used by browser websocket handshakes.
func bearerToken(ctx *fiber.Ctx) (string, error) {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		if q := ctx.Query("token"); q != "" {
			return q, nil
		}
		return "", errNoToken
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("malformed authorization header")
	}
	return authHeader[7:], nil
}

func userFromRequest(ctx *fiber.Ctx) (int, error) {
	tokenStr, err := bearerToken(ctx)
	if err != nil {
		return 0, err
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	return parseUserID(claims)
}

// JwtMiddleware rejects requests without a valid bearer token.
func JwtMiddleware(ctx *fiber.Ctx) error {
	userID, err := userFromRequest(ctx)
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, errNoToken) {
			msg = "Missing token"
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, msg))
	}

	ctx.Locals(userIDLocal, userID)
	return ctx.Next()
}

// OptionalJwtMiddleware attaches the user when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalJwtMiddleware(ctx *fiber.Ctx) error {
	if userID, err := userFromRequest(ctx); err == nil {
		ctx.Locals(userIDLocal, userID)
	}
	return ctx.Next()
}

// UserID returns the authenticated user, or nil for anonymous requests.
func UserID(ctx *fiber.Ctx) *int {
	id, ok := ctx.Locals(userIDLocal).(int)
	if !ok {
		return nil
	}
	return &id
}
