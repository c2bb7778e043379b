package redis

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/douradolabs/backoffice/internal/core/ports"
)

// Tokens that fail signature verification must resolve to "no session"
// before any Redis lookup happens, so these tests run without a server.

func credsFor(token string) ports.Credentials {
	return ports.Credentials{Token: token}
}

func TestResolve_MalformedTokens(t *testing.T) {
	p := NewSessionProvider(nil, "secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		principal, err := p.Resolve(context.Background(), credsFor(token))
		if err != nil {
			t.Fatalf("token %q: unexpected error: %v", token, err)
		}
		if principal != nil {
			t.Fatalf("token %q: expected nil principal, got %+v", token, principal)
		}
	}
}

func TestResolve_WrongSignature(t *testing.T) {
	p := NewSessionProvider(nil, "secret")

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "some-session",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	principal, err := p.Resolve(context.Background(), credsFor(forged))
	if err != nil || principal != nil {
		t.Fatalf("forged token must not resolve: principal=%v err=%v", principal, err)
	}
}

func TestResolve_ExpiredToken(t *testing.T) {
	p := NewSessionProvider(nil, "secret")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "some-session",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	principal, err := p.Resolve(context.Background(), credsFor(expired))
	if err != nil || principal != nil {
		t.Fatalf("expired token must not resolve: principal=%v err=%v", principal, err)
	}
}

func TestResolve_TokenWithoutSessionID(t *testing.T) {
	p := NewSessionProvider(nil, "secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	principal, err := p.Resolve(context.Background(), credsFor(token))
	if err != nil || principal != nil {
		t.Fatalf("token without sid must not resolve: principal=%v err=%v", principal, err)
	}
}
