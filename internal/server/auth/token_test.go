package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/common"
)

func newTestCodec() *Codec {
	return NewCodec("passvault.example.com", []byte("super-secret"), time.Minute, time.Hour)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec()
	subject := uuid.New()

	for _, typ := range []TokenType{TokenAccess, TokenRefresh} {
		tok, err := c.Issue(subject, typ)
		if err != nil {
			t.Fatalf("Issue error: %v", err)
		}

		got, err := c.Verify(tok, typ)
		if err != nil {
			t.Fatalf("Verify error: %v", err)
		}
		if got != subject {
			t.Fatalf("subject mismatch: got %s want %s", got, subject)
		}
	}
}

func TestVerify_TypeSeparation(t *testing.T) {
	t.Parallel()

	c := newTestCodec()
	subject := uuid.New()

	access, err := c.Issue(subject, TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	refresh, err := c.Issue(subject, TokenRefresh)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := c.Verify(access, TokenRefresh); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := c.Verify(refresh, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	c := NewCodec("passvault.example.com", []byte("super-secret"), -1*time.Second, -1*time.Second)
	subject := uuid.New()

	tok, err := c.Issue(subject, TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := c.Verify(tok, TokenAccess); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	subject := uuid.New()
	tok, err := newTestCodec().Issue(subject, TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := NewCodec("passvault.example.com", []byte("wrong-secret"), time.Minute, time.Hour)
	if _, err := other.Verify(tok, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	subject := uuid.New()
	issued := NewCodec("evil.example.com", []byte("super-secret"), time.Minute, time.Hour)
	tok, err := issued.Issue(subject, TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := newTestCodec().Verify(tok, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	c := newTestCodec()
	tok, err := c.Issue(uuid.New(), TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Flip the last character of the signature segment.
	last := tok[len(tok)-1]
	flipped := byte('Q')
	if last == 'Q' {
		flipped = 'A'
	}
	tampered := tok[:len(tok)-1] + string(flipped)

	if _, err := c.Verify(tampered, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("tampered signature accepted: %v", err)
	}
}

func TestVerify_TruncatedSignature(t *testing.T) {
	t.Parallel()

	c := newTestCodec()
	tok, err := c.Issue(uuid.New(), TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	truncated := parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])/2]
	if _, err := c.Verify(truncated, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("truncated signature accepted: %v", err)
	}
}

// A token whose audience claim was swapped after signing must fail both
// verification paths: the stale signature no longer covers the claims.
func TestVerify_AudienceSwappedAfterSigning(t *testing.T) {
	t.Parallel()

	c := newTestCodec()
	tok, err := c.Issue(uuid.New(), TokenAccess)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	claims["aud"] = TokenRefresh.Audience()

	forged, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	crafted := parts[0] + "." + base64.RawURLEncoding.EncodeToString(forged) + "." + parts[2]

	if _, err := c.Verify(crafted, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("crafted token accepted as access: %v", err)
	}
	if _, err := c.Verify(crafted, TokenRefresh); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("crafted token accepted as refresh: %v", err)
	}
}

func TestVerify_MalformedToken(t *testing.T) {
	t.Parallel()

	c := newTestCodec()
	if _, err := c.Verify("not.a.jwt", TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_NonUUIDSubject(t *testing.T) {
	t.Parallel()

	// Hand-build a token whose subject is not a UUID but which is otherwise
	// valid; the codec must reject it.
	c := newTestCodec()
	tok, err := issueWithSubject(c, "user-123", TokenAccess)
	if err != nil {
		t.Fatalf("issueWithSubject error: %v", err)
	}

	if _, err := c.Verify(tok, TokenAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("non-UUID subject accepted: %v", err)
	}
}

func issueWithSubject(c *Codec, subject string, typ TokenType) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{typ.Audience()},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}
