package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pathlight-learn/pathlight_api/shared"
)

// AuthService is the privilege-check half of the access gate: catalog
// mutations require a bearer token carrying the author role. Learner-facing
// calls are anonymous and never pass through here.
type AuthService struct {
	context.DefaultService

	tokenDuration time.Duration
	jwtSecretKey  string
}

type AuthorClaims struct {
	CallerID string `json:"caller_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

const AUTH_SVC = "auth_svc"

const RoleAuthor = "author"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	svc.tokenDuration = 24 * time.Hour
	svc.jwtSecretKey = os.Getenv("JWT_AUTHOR_SECRET")
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	if svc.jwtSecretKey == "" {
		return errors.New("JWT_AUTHOR_SECRET is not set")
	}
	return nil
}

// IssueAuthorToken mints a token for a content-authoring caller. Exposed for
// operators and the seed CLI; there is no self-service signup.
func (svc *AuthService) IssueAuthorToken(callerID string) (string, error) {
	expTime := time.Now().Add(svc.tokenDuration)

	claims := &AuthorClaims{
		CallerID: callerID,
		Role:     RoleAuthor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pathlight",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(svc.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

// VerifyAuthorToken returns the caller id when the token is valid and
// carries the author role.
func (svc *AuthService) VerifyAuthorToken(jwtToken string) (string, error) {
	token, err := jwt.ParseWithClaims(jwtToken, &AuthorClaims{}, svc.getJWTKey)
	if err != nil || !token.Valid {
		return "", errors.New("invalid author token")
	}

	claims, ok := token.Claims.(*AuthorClaims)
	if !ok || claims == nil {
		return "", errors.New("unsupported JWT format")
	}

	if claims.Role != RoleAuthor {
		return "", errors.New("token does not carry the author role")
	}

	return claims.CallerID, nil
}

func (svc *AuthService) getJWTKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(svc.jwtSecretKey), nil
}

// RequireAuthor gates catalog-mutation routes.
func (svc *AuthService) RequireAuthor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		callerID, err := svc.VerifyAuthorToken(token)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid author token")
		}

		c.Locals(shared.CallerID, callerID)
		return c.Next()
	}
}

func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}
