package identity

import "github.com/circlesoft/crm/internal/domain/shared"

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrEmailInUse         = shared.NewDomainError("EMAIL_IN_USE", "An account with this email already exists")
	ErrUserNotFound       = shared.NewDomainError("USER_NOT_FOUND", "No account found for this email")
	ErrPasswordMismatch   = shared.NewDomainError("PASSWORD_MISMATCH", "Passwords do not match")
	ErrTermsNotAccepted   = shared.NewDomainError("TERMS_NOT_ACCEPTED", "You must accept the terms of service")
)
