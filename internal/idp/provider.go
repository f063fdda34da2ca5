// Package idp defines the capability the handlers depend on: a remote identity
// provider that owns the account lifecycle (sign-up, confirmation, password
// authentication and access-token introspection).
//
// Implementations:
//   - cognito: Amazon Cognito user pool app client (production).
//   - local: in-process provider for development and tests.
//
// Every method performs a single round-trip. A nil error is the success
// outcome; a failure outcome is always a *Failure (see AsFailure).
package idp

import "context"

// User is the profile returned for a valid access token.
type User struct {
	Username   string
	Attributes map[string]string
}

// AuthResult is the success payload of InitiateAuth. AccessToken is empty when
// the provider answered with a challenge instead of tokens.
type AuthResult struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	TokenType    string
	ExpiresIn    int32

	// ChallengeName is set when the provider requires another step
	// (NEW_PASSWORD_REQUIRED, SMS_MFA, ...).
	ChallengeName string
}

// SignUpResult is the success payload of SignUp.
type SignUpResult struct {
	UserSub       string
	UserConfirmed bool
	// Destination where the confirmation code was delivered (masked).
	CodeDestination string
}

// Provider is the identity provider client.
type Provider interface {
	// GetUser resolves the user owning accessToken.
	GetUser(ctx context.Context, accessToken string) (*User, error)

	// InitiateAuth runs the username/password flow.
	InitiateAuth(ctx context.Context, username, password, secretHash string) (*AuthResult, error)

	// SignUp creates a pending (unconfirmed) account.
	SignUp(ctx context.Context, email, username, password, secretHash string) (*SignUpResult, error)

	// ConfirmSignUp activates a pending account with the delivered code.
	ConfirmSignUp(ctx context.Context, username, code, secretHash string) error
}

// Operation names, shared by logs and metrics.
const (
	OpGetUser       = "GetUser"
	OpInitiateAuth  = "InitiateAuth"
	OpSignUp        = "SignUp"
	OpConfirmSignUp = "ConfirmSignUp"
)
