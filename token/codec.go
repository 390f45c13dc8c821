package token

import (
	"bytes"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretBytes = 32

var (
	// ErrTokenInvalid is returned by Parse methods for any token that fails
	// signature, structure, or expiry checks.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the claim set embedded in both token kinds. Subject, issued-at,
// and expiry live in the registered claims; Email and Role are the only
// custom fields. A Claims value is immutable once signed; any tampering
// invalidates the signature.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the authenticated principal's identifier.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// Config defines the codec's two signing contexts. AccessSecret and
// RefreshSecret must be distinct: a token signed in one context must fail
// verification in the other.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Codec signs and verifies compact self-contained tokens (HS256). It holds
// two independent signing contexts, access and refresh, each with its own
// secret and TTL. A Codec is immutable and safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a Codec. Missing, short, or identical
// secrets are configuration errors and must be treated as fatal at startup.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) < minSecretBytes {
		return nil, errors.New("access secret must be at least 32 bytes")
	}
	if len(cfg.RefreshSecret) < minSecretBytes {
		return nil, errors.New("refresh secret must be at least 32 bytes")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must be distinct")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Codec{config: cfg}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.config.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.config.RefreshTTL }

// SignAccess mints an access token for the given subject.
func (c *Codec) SignAccess(subjectID, email, role string) (string, error) {
	return c.sign(subjectID, email, role, c.config.AccessSecret, c.config.AccessTTL)
}

// SignRefresh mints a refresh token for the given subject.
func (c *Codec) SignRefresh(subjectID, email, role string) (string, error) {
	return c.sign(subjectID, email, role, c.config.RefreshSecret, c.config.RefreshTTL)
}

// ParseAccess verifies tokenStr against the access secret and returns its
// claims. Every failure mode (bad signature, malformed structure, expiry)
// surfaces as a non-nil error; callers on the request hot path are expected
// to collapse it to an unauthenticated result.
func (c *Codec) ParseAccess(tokenStr string) (*Claims, error) {
	return c.parse(tokenStr, c.config.AccessSecret)
}

// ParseRefresh verifies tokenStr against the refresh secret.
func (c *Codec) ParseRefresh(tokenStr string) (*Claims, error) {
	return c.parse(tokenStr, c.config.RefreshSecret)
}

func (c *Codec) sign(subjectID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Codec) parse(tokenStr string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
