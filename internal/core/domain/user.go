package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// ValidRole reports whether role is one the system knows.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}

// User models a librarian or a borrower.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Borrower is the public projection of a User joined onto loans and lists.
type Borrower struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

// AsBorrower strips credentials and role.
func (u *User) AsBorrower() *Borrower {
	if u == nil {
		return nil
	}
	return &Borrower{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email}
}
