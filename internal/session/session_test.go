package session

import (
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	issuer := NewIssuer("secret", "linkvault", time.Minute)
	token, err := issuer.Sign(Subject{ID: "user-1", Email: "a@b.com", Type: "customer"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.com" || claims.Type != "customer" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret", "linkvault", time.Minute).Sign(Subject{ID: "user-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewIssuer("other", "linkvault", time.Minute).Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", "linkvault", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Sign(Subject{ID: "user-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestSignProducesDistinctTokens(t *testing.T) {
	issuer := NewIssuer("secret", "linkvault", time.Minute)
	a, _ := issuer.Sign(Subject{ID: "user-1"})
	b, _ := issuer.Sign(Subject{ID: "user-1"})
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}

func TestActionTokensAreNotSessions(t *testing.T) {
	issuer := NewIssuer("secret", "linkvault", time.Minute)
	action, err := issuer.SignAction(Subject{ID: "user-1", Email: "a@b.com", Type: "customer"})
	if err != nil {
		t.Fatalf("sign action: %v", err)
	}
	if _, err := issuer.Parse(action); err != ErrInvalidToken {
		t.Fatalf("action token must not parse as a session, got %v", err)
	}
	claims, err := issuer.ParseAction(action)
	if err != nil || claims.UserID != "user-1" {
		t.Fatalf("parse action: %+v %v", claims, err)
	}

	sessionToken, _ := issuer.Sign(Subject{ID: "user-1", Email: "a@b.com", Type: "customer"})
	if _, err := issuer.ParseAction(sessionToken); err != ErrInvalidToken {
		t.Fatalf("session token must not redeem email links, got %v", err)
	}
}
