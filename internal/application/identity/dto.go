package identity

// LoginInput contains the input for user login
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Name            string `validate:"required,max=100"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string
	AcceptTerms     bool
}

// ResetPasswordInput contains the input for a password reset
type ResetPasswordInput struct {
	Email           string
	Password        string `validate:"required"`
	ConfirmPassword string
}

// Defaults for self-registered accounts
const (
	DefaultRole       = "Agent"
	DefaultDepartment = "Sales"
)
