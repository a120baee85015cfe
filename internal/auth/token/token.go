package token

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dgrijalva/jwt-go"
)

// Kind distinguishes the purpose a token was issued for. A refresh
// token must never be accepted where an access token is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL   = time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrExpiredToken = errors.New("expired_token")
	ErrWrongKind    = errors.New("wrong_token_kind")
)

// Claims carries the authenticated identity inside a signed JWT.
type Claims struct {
	jwt.StandardClaims
	UserID    string `json:"uid"`
	CompanyID string `json:"cid"`
	Role      string `json:"role"`
	Kind      Kind   `json:"kind"`
}

// Manager issues and verifies the three token kinds. Access and reset
// tokens share the primary secret, refresh tokens use their own so a
// leaked refresh secret cannot mint access tokens.
type Manager struct {
	secret        []byte
	refreshSecret []byte
}

func NewManager(secret, refreshSecret string) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if strings.TrimSpace(refreshSecret) == "" {
		refreshSecret = secret
	}
	return &Manager{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

// Identity is the subject a token is issued for.
type Identity struct {
	UserID    snowflake.ID
	CompanyID snowflake.ID
	Role      string
}

// Issue signs a token of the given kind for the identity.
func (m *Manager) Issue(identity Identity, kind Kind) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   identity.UserID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl(kind)).Unix(),
		},
		UserID:    identity.UserID.String(),
		CompanyID: identity.CompanyID.String(),
		Role:      identity.Role,
		Kind:      kind,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretFor(kind))
}

// Verify parses the token, checks its signature and expiry, and
// rejects tokens issued for a different purpose.
func (m *Manager) Verify(raw string, kind Kind) (Identity, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretFor(kind), nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return Identity{}, ErrWrongKind
	}

	userID, err := snowflake.ParseString(claims.UserID)
	if err != nil || userID == 0 {
		return Identity{}, ErrInvalidToken
	}
	companyID, err := snowflake.ParseString(claims.CompanyID)
	if err != nil || companyID == 0 {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:    userID,
		CompanyID: companyID,
		Role:      claims.Role,
	}, nil
}

func (m *Manager) ttl(kind Kind) time.Duration {
	switch kind {
	case KindRefresh:
		return RefreshTokenTTL
	case KindReset:
		return ResetTokenTTL
	default:
		return AccessTokenTTL
	}
}

func (m *Manager) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return m.refreshSecret
	}
	return m.secret
}
