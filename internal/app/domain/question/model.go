package question

import "time"

// MaxContentLen bounds the question text, matching the column width.
const MaxContentLen = 240

// Question is a forum question. Author and AuthorID snapshot the external
// identity at creation; the slug is generated once and never changes.
type Question struct {
	ID        string
	Slug      string
	Content   string
	AuthorID  string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
