package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a Paperboard identity token. Tokens are issued by
// the hosting application's auth provider; this service only validates them and
// uses the identity to resolve "who is the current user" for the folder API.
type Payload struct {
	jwt.StandardClaims

	// UserID is the stable external identifier of the user.
	UserID string `json:"userId"`

	// UserName is the display name shown to collaborators; may be empty.
	UserName string `json:"userName"`
}
