package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Kind selects the token lifetime. Access and refresh tokens share the
// signing key and claim shape, only the expiry differs.
type Kind int

const (
	KindAccess Kind = iota
	KindRefresh
)

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the verified content of a token. It is never persisted,
// only reconstructed from a valid signature.
type Identity struct {
	Subject   string
	Roles     []string
	ExpiresAt time.Time
}

type Codec struct {
	key               []byte
	accessTTL         time.Duration
	refreshMultiplier int
}

func NewCodec(key []byte, accessTTL time.Duration, refreshMultiplier int) (*Codec, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("signing key is %d bytes, need at least 32 for HS256", len(key))
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	if refreshMultiplier < 1 {
		return nil, fmt.Errorf("refresh multiplier must be at least 1")
	}
	return &Codec{key: key, accessTTL: accessTTL, refreshMultiplier: refreshMultiplier}, nil
}

func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.accessTTL * time.Duration(c.refreshMultiplier)
	}
	return c.accessTTL
}

// Issue signs a token for the subject. Roles are carried as an ordered
// list claim, not deduplicated.
func (c *Codec) Issue(subject string, roles []string, kind Kind) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tkn.SignedString(c.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify fails closed: any parse or signature failure yields an error,
// never a partially-populated identity.
func (c *Codec) Verify(tokenStr string) (*Identity, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}

	id := &Identity{
		Subject: claims.Subject,
		Roles:   claims.Roles,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
