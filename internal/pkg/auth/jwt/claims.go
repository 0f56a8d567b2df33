package jwt

import "github.com/golang-jwt/jwt"

// Roles a credential may carry. The appointment system mints tokens for
// exactly these two parties.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Claims defines the JWT payload the appointment system signs for its
// users. The realtime server only consumes these tokens; it never mints
// identity tokens of its own.
type Claims struct {
	jwt.StandardClaims

	// UserID is the platform-wide identifier of the patient or doctor.
	UserID string `json:"id"`

	// Role is the party's role, "patient" or "doctor".
	Role string `json:"role"`
}
