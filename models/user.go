package models

// User is the cached display identity assembled client-side after login or registration.
// It is never the source of truth; the backend profile is.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
