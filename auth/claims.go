package auth

import (
	"github.com/dmitrymomot/subman/pkg/jwt"
	"github.com/dmitrymomot/subman/user"
)

// tokenIssuer identifies tokens minted by this service.
const tokenIssuer = "subman"

// AccessClaims is the bearer token payload. Subject carries the user
// ID; the role claim is advisory only, authorization always reloads the
// user record.
type AccessClaims struct {
	jwt.StandardClaims
	Role user.Role `json:"role,omitempty"`
}
