package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPlayerTokenRoundTrip(t *testing.T) {
	tok, err := IssuePlayerToken("secret", "abc123", 2, time.Hour)
	if err != nil {
		t.Fatalf("IssuePlayerToken: %v", err)
	}
	claims, err := ParsePlayerToken("secret", tok)
	if err != nil {
		t.Fatalf("ParsePlayerToken: %v", err)
	}
	if claims.GameToken != "abc123" || claims.Paddle != 2 {
		t.Errorf("claims %+v", claims)
	}
	if claims.ExpiresAt.Before(time.Now()) {
		t.Errorf("expiry %v already passed", claims.ExpiresAt)
	}
}

func TestPlayerTokenRejectsWrongSecret(t *testing.T) {
	tok, _ := IssuePlayerToken("secret", "abc123", 1, time.Hour)
	if _, err := ParsePlayerToken("other", tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestPlayerTokenRejectsExpired(t *testing.T) {
	tok, _ := IssuePlayerToken("secret", "abc123", 1, -time.Minute)
	if _, err := ParsePlayerToken("secret", tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestPlayerTokenRejectsGarbage(t *testing.T) {
	if _, err := ParsePlayerToken("secret", "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestHostKey(t *testing.T) {
	hashed, err := HashHostKey("letmein")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyHostKey(hashed, "letmein") {
		t.Error("correct host key rejected")
	}
	if VerifyHostKey(hashed, "guess") {
		t.Error("wrong host key accepted")
	}
}
