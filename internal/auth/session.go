// Package auth wraps the platform's bearer tokens: decoding a session
// token into a profile with derived role flags, and holding the
// current session behind an explicit initialize/clear lifecycle.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoSession      = errors.New("auth: no session")
	ErrSessionExpired = errors.New("auth: session expired")
	ErrInvalidToken   = errors.New("auth: invalid token")
)

// adminRoles is the role-membership set granting dashboard access.
var adminRoles = map[string]bool{"ADMIN": true, "ROLE_ADMIN": true}

type Profile struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// IsAdmin is a plain string-membership test against {ADMIN, ROLE_ADMIN}.
func (p Profile) IsAdmin() bool {
	for _, r := range p.Roles {
		if adminRoles[r] {
			return true
		}
	}
	return false
}

// Session is a decoded token plus the minimal profile derived from it.
type Session struct {
	Token     string
	Profile   Profile
	ExpiresAt time.Time
}

type Claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 session tokens.
type Verifier struct{ secret []byte }

func NewVerifier(secret string) *Verifier { return &Verifier{secret: []byte(secret)} }

func (v *Verifier) Verify(token string) (Session, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Session{}, ErrInvalidToken
	}

	s := Session{
		Token: token,
		Profile: Profile{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  claims.Name,
			Roles: claims.Roles,
		},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Store holds the process-wide session. The token and the cached
// profile live and die together: Init sets both, Clear and expiry
// detection drop both.
type Store struct {
	v *Verifier

	mu   sync.Mutex
	sess *Session
}

func NewStore(v *Verifier) *Store { return &Store{v: v} }

func (s *Store) Init(token string) (Session, error) {
	sess, err := s.v.Verify(token)
	if err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	s.sess = &sess
	s.mu.Unlock()
	return sess, nil
}

// Current returns the active session. A token found expired at read
// time clears the store and reports ErrSessionExpired, the caller's
// cue to redirect to login.
func (s *Store) Current() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return Session{}, ErrNoSession
	}
	if !s.sess.ExpiresAt.IsZero() && time.Now().After(s.sess.ExpiresAt) {
		s.sess = nil
		return Session{}, ErrSessionExpired
	}
	return *s.sess, nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.sess = nil
	s.mu.Unlock()
}
