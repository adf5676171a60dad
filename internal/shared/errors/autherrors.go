package errors

import "net/http"

// Error types for the admin authentication flow.
const (
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeTokenExpired       ErrorType = "token_expired"
	ErrorTypeTokenInvalid       ErrorType = "token_invalid"
)

// NewInvalidCredentialsError is returned on a failed admin login. The
// message never says whether the username or the password was wrong.
func NewInvalidCredentialsError() *AppError {
	return newAppError(ErrorTypeInvalidCredentials, http.StatusUnauthorized, "invalid credentials")
}

// NewTokenExpiredError is returned when a bearer token is past its
// expiry. The client should log in again.
func NewTokenExpiredError() *AppError {
	return newAppError(ErrorTypeTokenExpired, http.StatusUnauthorized, "token has expired", "please login again")
}

// NewTokenInvalidError covers every other token rejection, including
// malformed tokens, bad signatures and wrong token types.
func NewTokenInvalidError(details ...string) *AppError {
	return newAppError(ErrorTypeTokenInvalid, http.StatusUnauthorized, "invalid token", details...)
}
