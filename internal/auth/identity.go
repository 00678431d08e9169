// Package auth implements credential parsing and the policy gate for broker
// operations. The Enforcer is an explicitly constructed instance threaded
// through the service layer; there is no process-wide singleton.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognised by the policy rules.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleLessee = "lessee"
)

// Identity is the resolved caller: the project acting and the roles it
// holds.
type Identity struct {
	ProjectID string
	Roles     []string
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}

	return false
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

// Claims is the JWT payload carried by broker API tokens.
type Claims struct {
	ProjectID string   `json:"project_id"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 bearer token and returns the identity it
// carries.
func ParseToken(secret, tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	if claims.ProjectID == "" {
		return Identity{}, fmt.Errorf("token missing project_id")
	}

	return Identity{ProjectID: claims.ProjectID, Roles: claims.Roles}, nil
}

// SignToken issues an HS256 token for the given identity. Used by tests and
// the token issuance endpoint of an external identity service.
func SignToken(secret string, identity Identity) (string, error) {
	claims := Claims{
		ProjectID: identity.ProjectID,
		Roles:     identity.Roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}
