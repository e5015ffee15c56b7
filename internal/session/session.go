// Package session models the authenticated identity handed to the client
// components. The engine and catalog receive a Session value explicitly at
// construction instead of reading ambient global state.
package session

import (
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Session is the identity exposed by the auth provider: an access token
// plus the display fields the answer page shows.
type Session struct {
	AccessToken string
	Email       string
	Photo       string
}

// Authenticated reports whether an access token is present.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

// Claims mirrors the token payload issued by the auth provider.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
	jwt.RegisteredClaims
}

// FromToken builds a Session from a bearer token by reading its claims
// without verifying the signature; only the issuing server holds the
// secret. An empty, unparseable or expired token yields an
// unauthenticated Session, which hosts must treat as "redirect to login".
func FromToken(tok string) Session {
	return fromTokenAt(tok, time.Now())
}

func fromTokenAt(tok string, now time.Time) Session {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Session{}
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return Session{}
	}
	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
		return Session{}
	}
	return Session{AccessToken: tok, Email: claims.Email, Photo: claims.Photo}
}
