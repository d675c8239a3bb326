package authorization

import (
	"fmt"
	"os"
	"time"

	"github.com/cristalhq/jwt/v4"

	"gastmanager/domain"
	"gastmanager/errors"
)

// TokenHeader is the fixed header the front end sends the credential in.
const TokenHeader = "X-Auth-Token"

const tokenLifetime = 60 * time.Minute

// secretKey is resolved on every use, never at package init: main loads the
// .env file after this package is initialized, so an early read would pin
// the fallback secret and silently ignore a configured JWT_SECRET.
func secretKey() []byte {
	if key := os.Getenv("JWT_SECRET"); key != "" {
		return []byte(key)
	}
	return []byte("defaultsecret")
}

// GenerateJWT builds a signed token for the given user.
func GenerateJWT(user *domain.User) (string, error) {
	signer, err := jwt.NewSignerHS(jwt.HS256, secretKey())
	if err != nil {
		return "", err
	}

	claims := &domain.Claims{
		UserID:    user.ID.Hex(),
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(tokenLifetime),
	}

	builder := jwt.NewBuilder(signer)
	token, err := builder.Build(claims)
	if err != nil {
		return "", err
	}

	return token.String(), nil
}

// VerifyToken checks the signature and expiry and returns the decoded claims.
func VerifyToken(tokenString string) (*domain.Claims, error) {
	verifier, err := jwt.NewVerifierHS(jwt.HS256, secretKey())
	if err != nil {
		return nil, fmt.Errorf(errors.InvalidTokenError)
	}

	var claims domain.Claims
	if err := jwt.ParseClaims([]byte(tokenString), verifier, &claims); err != nil {
		return nil, fmt.Errorf(errors.InvalidTokenError)
	}

	if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf(errors.InvalidTokenError)
	}

	return &claims, nil
}
