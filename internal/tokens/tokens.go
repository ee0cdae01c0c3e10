// Package tokens issues and verifies the operator's session credential.
//
// Credentials are stateless HS256 JWTs. There is no server-side session
// table: a token stays valid until its exp claim unless a Denylist is
// attached, in which case Invalidate records its jti until that expiry.
package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Subject is the only identity a credential can carry.
const Subject = "operator"

// DefaultTTL applies when the configured TTL is not positive.
const DefaultTTL = time.Hour

var (
	// ErrNotConfigured means the operator password or signing secret is missing.
	ErrNotConfigured = errors.New("authentication is not configured")
	// ErrInvalidCredentials means the supplied password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated means no credential was presented.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidOrExpired means a credential was presented but failed verification.
	ErrInvalidOrExpired = errors.New("invalid or expired credential")
)

// Credential is a freshly issued session token and its metadata.
type Credential struct {
	Token     string
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTL returns the lifetime of the credential.
func (c Credential) TTL() time.Duration { return c.ExpiresAt.Sub(c.IssuedAt) }

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Deny(ctx context.Context, id string, ttl time.Duration) error
	IsDenied(ctx context.Context, id string) (bool, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now; used by tests to move past expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDenylist enables server-side revocation on Invalidate.
func WithDenylist(d Denylist) Option {
	return func(s *Service) { s.denylist = d }
}

// WithBcryptCost sets the cost used to hash the operator password at construction.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// Service issues, verifies and invalidates operator credentials.
type Service struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	hash     []byte
	cost     int
	now      func() time.Time
	denylist Denylist
}

// NewService builds the token service from the auth configuration. A missing
// password or secret does not fail construction; the service refuses to
// issue or verify instead.
func NewService(cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if cfg.OperatorPassword != "" {
		// nil hash leaves Issue failing closed
		if h, err := bcrypt.GenerateFromPassword(digest(cfg.OperatorPassword), s.cost); err == nil {
			s.hash = h
		}
	}
	return s
}

// digest pre-hashes passwords so bcrypt's 72-byte input limit never truncates them.
func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// TTL is the lifetime given to issued credentials.
func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) configured() bool { return len(s.secret) > 0 && s.hash != nil }

// Issue checks password against the operator secret and returns a signed credential.
func (s *Service) Issue(ctx context.Context, password string) (Credential, error) {
	if !s.configured() {
		return Credential{}, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, digest(password)); err != nil {
		return Credential{}, ErrInvalidCredentials
	}

	now := s.now().Truncate(time.Second)
	cred := Credential{
		ID:        uuid.NewString(),
		Subject:   Subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   cred.Subject,
		Issuer:    s.issuer,
		ID:        cred.ID,
		IssuedAt:  jwt.NewNumericDate(cred.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(cred.ExpiresAt),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("sign credential: %w", err)
	}
	cred.Token = tok
	return cred, nil
}

// Verify classifies raw and returns the subject of a valid credential.
// An empty raw value yields ErrUnauthenticated.
func (s *Service) Verify(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrUnauthenticated
	}
	if len(s.secret) == 0 {
		return "", ErrNotConfigured
	}
	claims, err := s.parse(raw)
	if err != nil {
		return "", ErrInvalidOrExpired
	}
	if s.denylist != nil && claims.ID != "" {
		denied, err := s.denylist.IsDenied(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("%w: denylist lookup: %w", ErrInvalidOrExpired, err)
		}
		if denied {
			return "", ErrInvalidOrExpired
		}
	}
	return claims.Subject, nil
}

// Invalidate revokes raw server-side when a denylist is attached. Without one
// it does nothing: the caller clears the client copy and the token remains
// valid until exp. Invalid or already expired tokens are ignored.
func (s *Service) Invalidate(ctx context.Context, raw string) error {
	if s.denylist == nil || raw == "" || len(s.secret) == 0 {
		return nil
	}
	claims, err := s.parse(raw)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.denylist.Deny(ctx, claims.ID, ttl)
}

func (s *Service) parse(raw string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(Subject),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
