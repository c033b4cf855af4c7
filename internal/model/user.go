// Package model holds the portal's domain types. They carry no behaviour and
// are shared by the repository, service and handler layers.
package model

import "time"

// User represents a student account.
//
// The identity provider is Google, so the primary key is the OpenID Connect
// subject ("sub") Google issues for the account. It is an opaque string that
// never changes for the same Google account, so we use it directly as our ID
// instead of generating one.
//
// WHY PLAIN STRINGS FOR PROFILE FIELDS?
// Every profile field starts empty on first login and is filled in later
// from the profile form. The columns are NOT NULL DEFAULT '', so a user who
// never edited their profile still scans cleanly into this struct and the
// edit form gets "" instead of a NULL to special-case.
type User struct {
	ID               string    `json:"id"               db:"id"`
	Name             string    `json:"name"             db:"name"`
	Email            string    `json:"email"            db:"email"`
	ProfilePic       string    `json:"profilePic"       db:"profile_pic"`
	Major            string    `json:"major"            db:"major"`
	Year             string    `json:"year"             db:"year"`
	GPA              string    `json:"gpa"              db:"gpa"`
	Advisor          string    `json:"advisor"          db:"advisor"`
	EnrollmentStatus string    `json:"enrollmentStatus" db:"enrollment_status"`
	Level            string    `json:"level"            db:"level"`
	Program          string    `json:"program"          db:"program"`
	College          string    `json:"college"          db:"college"`
	CreatedAt        time.Time `json:"createdAt"        db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt"        db:"updated_at"`
}

// Profile is the editable part of a User. Saving a profile overwrites every
// field, including name and email.
type Profile struct {
	Name             string
	Email            string
	Major            string
	Year             string
	GPA              string
	Advisor          string
	EnrollmentStatus string
	Level            string
	Program          string
	College          string
}
