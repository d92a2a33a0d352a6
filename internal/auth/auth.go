package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned for player tokens that are malformed, expired or signed
// with another secret.
var ErrInvalidToken = errors.New("invalid player token")

// PlayerClaims binds a websocket connection to one paddle of one game.
type PlayerClaims struct {
	GameToken string
	Paddle    int
	ExpiresAt time.Time
}

// IssuePlayerToken signs an HS256 token that lets its bearer drive paddle in the game
// identified by gameToken.
func IssuePlayerToken(secret, gameToken string, paddle int, ttl time.Duration) (string, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"game_token": gameToken,
		"paddle":     paddle,
		"exp":        jwt.NewNumericDate(exp).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign player token: %w", err)
	}
	return signed, nil
}

// ParsePlayerToken validates a token issued by IssuePlayerToken.
func ParsePlayerToken(secret, token string) (PlayerClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return PlayerClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return PlayerClaims{}, ErrInvalidToken
	}
	gameToken, ok := claims["game_token"].(string)
	if !ok || gameToken == "" {
		return PlayerClaims{}, ErrInvalidToken
	}
	paddle, ok := claims["paddle"].(float64)
	if !ok {
		return PlayerClaims{}, ErrInvalidToken
	}
	pc := PlayerClaims{GameToken: gameToken, Paddle: int(paddle)}
	if exp, ok := claims["exp"].(float64); ok {
		pc.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return pc, nil
}

// HashHostKey hashes the secret handed to whoever created a game.
func HashHostKey(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash host key: %w", err)
	}
	return string(hashed), nil
}

// VerifyHostKey checks a presented host key against its stored hash.
func VerifyHostKey(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
