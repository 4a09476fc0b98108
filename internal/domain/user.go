package domain

import "time"

type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	HashedPass        string    `json:"-"`
	Role              string    `json:"role"`
	MustResetPassword bool      `json:"must_reset_password"`
	CreatedAt         time.Time `json:"created_at"`
}

// Profile extends User 1:1, keyed by the same id.
type Profile struct {
	UserID     string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	Department string  `json:"department,omitempty"`
	Branch     string  `json:"branch,omitempty"`
	Phone      string  `json:"phone,omitempty"`
}

// Graduate is the listing shape for GET /graduates/list: identity plus
// profile fields and the computed progress percentage.
type Graduate struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Progress  int     `json:"progress"`
}
