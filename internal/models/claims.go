package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the identity supplied by the external auth service. The
// wallet core trusts UserID as-is; it does not manage sessions or tokens.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}
