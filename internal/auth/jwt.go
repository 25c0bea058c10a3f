package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("signing secret not configured")
)

// Token purposes, carried in the audience claim so a state token cannot be
// used as a session and vice versa
const (
	audienceSession    = "lead-dashboard"
	audienceOAuthState = "oauth-state"
	issuer             = "lead-dashboard"
)

type sessionClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 tokens signed with the session secret
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager creates a token manager. An empty secret disables issuing
// and every validation fails.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock overrides the clock used for issued-at and expiry
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Configured reports whether a signing secret is set
func (m *TokenManager) Configured() bool {
	return len(m.secret) > 0
}

// IssueSession signs a session token for a dashboard user
func (m *TokenManager) IssueSession(user *UserContext, ttl time.Duration) (string, error) {
	if !m.Configured() {
		return "", ErrNoSecret
	}
	now := m.now()
	claims := sessionClaims{
		Name:  user.DisplayName,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Subject,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateSession validates a session token and returns the user it names
func (m *TokenManager) ValidateSession(tokenString string) (*UserContext, error) {
	claims := &sessionClaims{}
	if err := m.parse(tokenString, claims, audienceSession); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &UserContext{
		Subject:     claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		AuthType:    AuthTypeJWT,
	}, nil
}

// IssueState signs an OAuth state value that expires after ttl
func (m *TokenManager) IssueState(ttl time.Duration) (string, error) {
	if !m.Configured() {
		return "", ErrNoSecret
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audienceOAuthState},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateState checks an OAuth state value issued by IssueState
func (m *TokenManager) ValidateState(state string) error {
	return m.parse(state, &jwt.RegisteredClaims{}, audienceOAuthState)
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, audience string) error {
	if !m.Configured() {
		return ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
