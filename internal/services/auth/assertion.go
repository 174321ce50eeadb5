package auth

import (
	"strconv"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// VerifyIdentityAssertion validates a token minted by the upstream identity
// provider and returns the asserted user id. The assertion is an HS256 JWT
// signed with a secret shared with the provider; its subject is the user id.
// Identity issuance itself lives outside this service.
func VerifyIdentityAssertion(assertion, providerSecret string) (int64, error) {
	if strings.TrimSpace(assertion) == "" || providerSecret == "" {
		return 0, ErrInvalidInput
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(assertion, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(providerSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || token == nil || !token.Valid {
		return 0, ErrUnauthorized
	}

	userID, parseErr := strconv.ParseInt(claims.Subject, 10, 64)
	if parseErr != nil || userID <= 0 {
		return 0, ErrUnauthorized
	}

	return userID, nil
}
