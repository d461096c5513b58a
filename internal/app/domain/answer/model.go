package answer

import "time"

// Answer is a reply to a question. A given user authors at most one answer
// per question.
type Answer struct {
	ID         string
	QuestionID string
	AuthorID   string
	Author     string
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
