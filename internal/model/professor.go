package model

import "time"

// Professor is the profile attached to a user with the professor role.
type Professor struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name for display.
func (p *Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}
