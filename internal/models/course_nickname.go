package models

import "time"

// CourseNickname is a user's custom display name for a course.
type CourseNickname struct {
	UserID    string    `db:"user_id" json:"-"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	Nickname  string    `db:"nickname" json:"nickname"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
