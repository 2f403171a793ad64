package auth

import "errors"

// Authentication errors. Unknown email and wrong password are the same
// error kind; only the message differs.
var (
	// ErrAuthentication is the base error for rejected authentication.
	ErrAuthentication = errors.New("authentication failed")

	// ErrUserNotFoundForEmail is returned when no user matches the email.
	// The message is part of the service contract.
	ErrUserNotFoundForEmail = errors.New("user not found for the given email")

	// ErrInvalidPassword is returned when the password does not match.
	// The message is part of the service contract.
	ErrInvalidPassword = errors.New("invalid password")
)

// Token validation errors.
var (
	// ErrInvalidToken is returned when a token is malformed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's NotBefore is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
)

// IsAuthenticationError reports whether err is a rejected-authentication
// outcome, regardless of which message it carries.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrUserNotFoundForEmail) ||
		errors.Is(err, ErrInvalidPassword)
}
