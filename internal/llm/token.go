package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedCredential is returned when the API key does not split into
// id and secret halves.
var ErrMalformedCredential = errors.New("malformed api key: expected id.secret")

// ErrSigningFailed wraps failures of the signing primitive itself.
var ErrSigningFailed = errors.New("token signing failed")

// mintToken generates a short-lived signed token for the Zhipu API.
// Zhipu requires a locally signed HS256 JWT as the Bearer token, not the raw
// key: the header carries sign_type=SIGN and the claims carry the key id plus
// issue/expiry timestamps in Unix milliseconds.
func mintToken(apiKey string, ttl time.Duration, now time.Time) (string, error) {
	id, secret, ok := strings.Cut(apiKey, ".")
	if !ok || id == "" || secret == "" {
		return "", ErrMalformedCredential
	}

	issuedMS := now.UnixMilli()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"api_key":   id,
		"timestamp": issuedMS,
		"exp":       now.Add(ttl).UnixMilli(),
	})
	token.Header["sign_type"] = "SIGN"

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return signed, nil
}
