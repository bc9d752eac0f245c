/*
Package auth decides who is calling and which employees they may see.

ROLES:
  admin:  sees every employee, records leave directly, decides requests
  member: linked to one employee id; sees only that employee and submits
          leave as requests for approval

SESSIONS:
  Login checks a username/password against bcrypt hashes from config and
  returns a signed HS256 JWT carrying the role and linked employee id.
  The HTTP layer parses it on every request.

SEE ALSO:
  - api/middleware.go: Extracts the token and stores the Principal
  - config/config.go: Where users are declared
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
)

// Role is what a principal is allowed to do.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleMember }

// =============================================================================
// PRINCIPAL
// =============================================================================

// Principal is the authenticated caller.
type Principal struct {
	Username   string
	Name       string
	Role       Role
	EmployeeID string // linked employee, members only
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanAccess reports whether p may read or act for the given employee.
// A member without a linked employee can access nobody.
func (p Principal) CanAccess(employeeID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.EmployeeID != "" && p.EmployeeID == employeeID
}

// DisplayName is used as the requester on submitted leave.
func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Username != "" {
		return p.Username
	}
	return "Member"
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// =============================================================================
// USERS & LOGIN
// =============================================================================

// User is a configured credential.
type User struct {
	Username     string
	PasswordHash string // bcrypt
	Name         string
	Role         Role
	EmployeeID   string
}

// Authenticator verifies credentials and issues tokens.
type Authenticator struct {
	users  map[string]User
	issuer *TokenIssuer
}

// NewAuthenticator indexes users by username. Users with an empty username
// or password hash are ignored.
func NewAuthenticator(users []User, issuer *TokenIssuer) (*Authenticator, error) {
	index := make(map[string]User, len(users))
	for _, u := range users {
		if u.Username == "" || u.PasswordHash == "" {
			continue
		}
		if !u.Role.Valid() {
			return nil, fmt.Errorf("user %q: unknown role %q", u.Username, u.Role)
		}
		if _, dup := index[u.Username]; dup {
			return nil, fmt.Errorf("user %q declared twice", u.Username)
		}
		index[u.Username] = u
	}
	return &Authenticator{users: index, issuer: issuer}, nil
}

// Login returns a signed token for valid credentials.
func (a *Authenticator) Login(username, password string) (string, Principal, error) {
	if username == "" || password == "" {
		return "", Principal{}, ErrInvalidCredentials
	}
	u, ok := a.users[username]
	if !ok {
		return "", Principal{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", Principal{}, ErrInvalidCredentials
	}

	p := Principal{Username: u.Username, Name: u.Name, Role: u.Role, EmployeeID: u.EmployeeID}
	token, err := a.issuer.Issue(p)
	if err != nil {
		return "", Principal{}, err
	}
	return token, p, nil
}

// Verify parses a session token.
func (a *Authenticator) Verify(token string) (Principal, error) {
	return a.issuer.Parse(token)
}

// HashPassword is a convenience for producing config entries.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// =============================================================================
// TOKENS
// =============================================================================

type claims struct {
	Name       string `json:"name,omitempty"`
	Role       Role   `json:"role"`
	EmployeeID string `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer; now defaults to time.Now.
func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

func (t *TokenIssuer) Issue(p Principal) (string, error) {
	issuedAt := t.now()
	c := claims{
		Name:       p.Name,
		Role:       p.Role,
		EmployeeID: p.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Parse(token string) (Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	if !c.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{Username: c.Subject, Name: c.Name, Role: c.Role, EmployeeID: c.EmployeeID}, nil
}
