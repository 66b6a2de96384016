package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the member id of a token's holder.
type Claims struct {
	MemberID int       `json:"memberId"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *TokenIssuer) IssueAccess(memberID int) (string, error) {
	token, _, err := i.issue(memberID, AccessToken, i.accessTTL)
	return token, err
}

// IssueRefresh returns the signed token and its id.
func (i *TokenIssuer) IssueRefresh(memberID int) (string, string, error) {
	return i.issue(memberID, RefreshToken, i.refreshTTL)
}

func (i *TokenIssuer) issue(memberID int, kind TokenKind, ttl time.Duration) (string, string, error) {
	now := i.now()
	id := uuid.NewString()
	claims := Claims{
		MemberID: memberID,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   fmt.Sprintf("%d", memberID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", errors.Wrap(err, "sign token")
	}
	return signed, id, nil
}

// Parse verifies the token's signature, expiry and kind.
func (i *TokenIssuer) Parse(token string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.MemberID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
