package models

import "time"

// Group is a study group as served by the backend.
type Group struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color,omitempty"`
	Participants int       `json:"participants,omitempty"`
	Owner        string    `json:"owner,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// NewGroup is the payload for creating a group.
type NewGroup struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// IndexOfGroup returns the position of the group with the given id, or -1.
func IndexOfGroup(groups []Group, id int64) int {
	for i, g := range groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}
