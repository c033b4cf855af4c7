package model

import "time"

// Project is a student project owned by one user.
//
// StartTime and EndTime are kept exactly as the form submitted them (the
// browser's datetime-local value). The portal only displays them back, so
// there is nothing to gain from parsing them into time.Time.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	TechStack   string    `json:"techStack"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
