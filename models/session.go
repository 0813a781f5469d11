package models

import "time"

// Session is a scheduled study session belonging to a group.
type Session struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date,omitempty"`
	Time        string    `json:"time,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// NewSession is the payload for scheduling a session.
type NewSession struct {
	GroupID     int64  `json:"group" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
}

// SessionFilter narrows the session list; zero values are omitted from the query.
type SessionFilter struct {
	GroupID int64
	Date    string
}
