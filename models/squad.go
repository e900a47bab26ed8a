package models

import "time"

type Squad struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	Members []SquadMember `json:"members,omitempty"`
}

type SquadMember struct {
	SquadID   int       `json:"squad_id"`
	ProfileID int       `json:"profile_id"`
	FullName  string    `json:"full_name,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}
