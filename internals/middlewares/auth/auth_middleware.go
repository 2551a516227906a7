// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"eschoolku_backend/internals/configs"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

// AuthJWT memverifikasi access token HS256 lalu resolve Viewer sekali
// di sini. Handler di bawahnya tidak pernah menyentuh claims mentah.
func AuthJWT() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET kosong")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secretKey), nil
		}); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		viewer, err := viewerFromClaims(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		helperAuth.SetViewer(c, viewer)

		return c.Next()
	}
}

// extractBearerToken: Authorization header dulu, fallback cookie access_token.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token != "" {
			return token, nil
		}
	}
	if cookie := strings.TrimSpace(c.Cookies("access_token")); cookie != "" {
		return cookie, nil
	}
	return "", errors.New("Unauthorized - Token tidak ditemukan")
}

// validateTokenExpiry memvalidasi exp dengan leeway kecil untuk clock skew.
func validateTokenExpiry(claims jwt.MapClaims, leeway time.Duration) error {
	expRaw, ok := claims["exp"]
	if !ok {
		return errors.New("exp claim tidak ada")
	}
	expFloat, ok := expRaw.(float64)
	if !ok {
		return errors.New("exp claim tidak valid")
	}
	expiry := time.Unix(int64(expFloat), 0)
	if time.Now().After(expiry.Add(leeway)) {
		return errors.New("token expired")
	}
	return nil
}

func viewerFromClaims(claims jwt.MapClaims) (helperAuth.Viewer, error) {
	userID, err := claimUUID(claims, "user_id")
	if err != nil {
		return helperAuth.Viewer{}, errors.New("Unauthorized - Invalid or missing user ID")
	}
	schoolID, err := claimUUID(claims, "school_id")
	if err != nil {
		return helperAuth.Viewer{}, errors.New("Unauthorized - Invalid or missing school ID")
	}
	baseRole, _ := claims["base_role"].(string)
	if strings.TrimSpace(baseRole) == "" {
		return helperAuth.Viewer{}, errors.New("Unauthorized - Missing role")
	}
	return helperAuth.Viewer{
		UserID:   userID,
		SchoolID: schoolID,
		BaseRole: baseRole,
	}, nil
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, errors.New("claim tidak ada: " + key)
	}
	return uuid.Parse(strings.TrimSpace(raw))
}
