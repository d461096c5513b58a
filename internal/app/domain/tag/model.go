package tag

import "time"

// MaxNameLen bounds the tag label, matching the column width.
const MaxNameLen = 30

// MaxPerQuestion is the creation cutoff: a new tag is allowed while the
// existing count is at or below this value, so a question can end up with
// one more tag than the cutoff.
const MaxPerQuestion = 3

// Tag labels a question. Only the owning question's author may manage it.
type Tag struct {
	ID         string
	QuestionID string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
