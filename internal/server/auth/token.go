// Package auth implements the signed-token codec and the request principal
// for the passvault server. Tokens are HS256 JWTs carrying issuer, subject,
// audience, issued-at and expiry; access and refresh tokens differ only in
// audience and lifetime. The codec holds no mutable state and never touches
// storage, so access-token verification stays off the database path.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/common"
)

// TokenType distinguishes access tokens from refresh tokens. The two are
// never interchangeable: the audience claim is checked against the expected
// type on every verification.
type TokenType int

const (
	TokenAccess TokenType = iota
	TokenRefresh
)

// Audience returns the audience claim value bound to the token type.
func (t TokenType) Audience() string {
	if t == TokenRefresh {
		return "refresh"
	}
	return "access"
}

// Codec creates and verifies signed tokens. It is immutable after
// construction and safe for concurrent use.
type Codec struct {
	issuer     string
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec constructs a Codec with the given issuer, shared HMAC secret and
// per-type validity durations.
func NewCodec(issuer string, secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		issuer:     issuer,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) ttl(typ TokenType) time.Duration {
	if typ == TokenRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue builds the claim set {iss, sub, aud, iat, exp} for the subject and
// signs it with the shared secret.
func (c *Codec) Issue(subject uuid.UUID, typ TokenType) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject.String(),
		Audience:  jwt.ClaimStrings{typ.Audience()},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(typ))),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify decodes the token, checks the signature, and then validates issuer,
// audience and expiry in that order. Any failure, including a missing claim,
// yields a sentinel error; the subject is returned only when it parses as a
// UUID. Signature and claim checks are purely local.
func (c *Codec) Verify(tokenString string, typ TokenType) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, common.ErrInvalidToken
	}

	if claims.Issuer != c.issuer {
		return uuid.Nil, common.ErrInvalidToken
	}

	if len(claims.Audience) != 1 || claims.Audience[0] != typ.Audience() {
		return uuid.Nil, common.ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return uuid.Nil, common.ErrTokenExpired
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, common.ErrInvalidToken
	}

	return subject, nil
}
