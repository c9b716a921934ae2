// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Password holds the bcrypt hash and is never
// serialized. GitHubID is set only for accounts created through GitHub sign-in;
// those accounts have an empty password hash and cannot log in with a password.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GitHubID  *int64    `json:"githubId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPatch lists the profile fields a user may change on their own account.
type UserPatch struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Password == nil
}
