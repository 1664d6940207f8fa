// Package signingtokens issues and verifies capability tokens that grant one
// contact access to one document's public signing flow.
package signingtokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kingsign-backend/internal/shared/auth"
)

// Purpose is the only purpose claim accepted by Verify.
const Purpose = "public-signing"

// DefaultTTL is applied when neither the caller nor the configuration sets one.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrValidation    = errors.New("signingtokens: validation failed")
	ErrConfiguration = errors.New("signingtokens: signer misconfigured")
	ErrTokenInvalid  = errors.New("signingtokens: token invalid")
	ErrTokenExpired  = errors.New("signingtokens: token expired")
	ErrWrongPurpose  = fmt.Errorf("%w: wrong purpose", ErrTokenInvalid)
)

// Claims is the signed claim set of a capability token.
type Claims struct {
	DocumentID string `json:"documentId"`
	ContactID  string `json:"contactId"`
	Sub        string `json:"sub"`
	Aud        string `json:"aud,omitempty"`
	Iss        string `json:"iss,omitempty"`
	Purpose    string `json:"purpose"`
	Iat        int64  `json:"iat"`
	Exp        int64  `json:"exp"`
}

// IssueInput names the grant. Subject, Audience and Issuer come from the
// caller's verified session, never from the request body.
type IssueInput struct {
	DocumentID string
	ContactID  string
	Subject    string
	Audience   string
	Issuer     string
	TTL        time.Duration
}

// Service signs capability tokens with HS256.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a Service. A zero ttl uses DefaultTTL.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a token and verifies it before returning.
func (s *Service) Issue(in IssueInput) (string, Claims, error) {
	switch {
	case strings.TrimSpace(in.DocumentID) == "":
		return "", Claims{}, fmt.Errorf("%w: Document ID is required", ErrValidation)
	case strings.TrimSpace(in.ContactID) == "":
		return "", Claims{}, fmt.Errorf("%w: Contact ID is required", ErrValidation)
	case strings.TrimSpace(in.Subject) == "":
		return "", Claims{}, fmt.Errorf("%w: User ID (sub) is required", ErrValidation)
	}
	if len(s.secret) == 0 {
		return "", Claims{}, fmt.Errorf("%w: signing secret is empty", ErrConfiguration)
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now().UTC()
	claims := Claims{
		DocumentID: in.DocumentID,
		ContactID:  in.ContactID,
		Sub:        in.Subject,
		Aud:        in.Audience,
		Iss:        in.Issuer,
		Purpose:    Purpose,
		Iat:        now.Unix(),
		Exp:        now.Add(ttl).Unix(),
	}

	token, err := auth.EncodeHS256(claims, s.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if _, err := s.Verify(token); err != nil {
		return "", Claims{}, fmt.Errorf("%w: freshly issued token failed verification: %v", ErrConfiguration, err)
	}
	return token, claims, nil
}

// Verify checks signature, expiry and purpose.
func (s *Service) Verify(token string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, fmt.Errorf("%w: signing secret is empty", ErrConfiguration)
	}
	var claims Claims
	if err := auth.DecodeHS256(token, s.secret, &claims); err != nil {
		return Claims{}, ErrTokenInvalid
	}
	if claims.Exp == 0 || s.now().UTC().Unix() >= claims.Exp {
		return Claims{}, ErrTokenExpired
	}
	if claims.Purpose != Purpose {
		return Claims{}, ErrWrongPurpose
	}
	if claims.DocumentID == "" || claims.ContactID == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// TTL returns the default token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}
