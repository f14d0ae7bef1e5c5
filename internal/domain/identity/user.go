// Package identity holds user accounts and the session pointer.
package identity

import "strings"

// User is the public profile of an account
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	AvatarURL  string `json:"avatarUrl"`
	Email      string `json:"email"`
	About      string `json:"about"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	JoinDate   string `json:"joinDate,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Account is a User plus its credential. Only the bcrypt hash is stored.
type Account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// ProfileUpdate carries editable profile fields; nil fields are left unchanged
type ProfileUpdate struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	AvatarURL  *string `json:"avatarUrl"`
	About      *string `json:"about"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	JoinDate   *string `json:"joinDate"`
	EmployeeID *string `json:"employeeId"`
	Location   *string `json:"location"`
}

// Apply merges the update into u
func (p ProfileUpdate) Apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, p.Name)
	set(&u.Role, p.Role)
	set(&u.AvatarURL, p.AvatarURL)
	set(&u.About, p.About)
	set(&u.Phone, p.Phone)
	set(&u.Department, p.Department)
	set(&u.JoinDate, p.JoinDate)
	set(&u.EmployeeID, p.EmployeeID)
	set(&u.Location, p.Location)
}

// AvatarFor returns the generated avatar URL for a seed string
func AvatarFor(seed string) string {
	return "https://i.pravatar.cc/56?u=" + seed
}

// NormalizeEmail trims surrounding whitespace. Matching stays case-sensitive.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// RememberedCredentials is what "remember me" persists
type RememberedCredentials struct {
	Email string `json:"email"`
}

// Demo account seeded on first run
const (
	DemoUserID       = "user_demo_123"
	DemoUserEmail    = "user@example.com"
	DemoUserPassword = "password123"
)

// DemoUser returns the profile of the first-run demo account
func DemoUser() User {
	return User{
		ID:         DemoUserID,
		Name:       "Demo User",
		Role:       "HR Manager",
		AvatarURL:  AvatarFor(DemoUserEmail),
		Email:      DemoUserEmail,
		About:      "This is a pre-populated demo account for testing purposes.",
		Phone:      "(555) 123-4567",
		Department: "Sales",
		JoinDate:   "2023-01-15",
		EmployeeID: "CS-1001",
		Location:   "New York, USA",
	}
}
