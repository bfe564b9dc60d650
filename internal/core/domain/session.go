package domain

import "time"

// Session is an upload workspace owned by the HTTP layer.
// Each session indexes its folder under its own identity.
type Session struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"created_at"`
}
