// Package serialize maps stored entities to their wire representations,
// computing the derived fields (vote counts, has-voted/has-answered flags,
// human-formatted dates). Everything here is a pure projection over current
// store state plus the acting identity.
package serialize

import (
	"time"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/tag"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
)

// DateFormat renders creation dates as "month-name day, year".
const DateFormat = "January 02, 2006"

// QuestionView is the read projection of a question. Internal-only fields
// (update timestamp, raw voter sets) are omitted.
type QuestionView struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	Author          string    `json:"author"`
	CreatedAt       string    `json:"created_at"`
	LikesCount      int       `json:"likes_count"`
	DislikesCount   int       `json:"dislikes_count"`
	UserHasVoted    bool      `json:"user_has_voted"`
	AnswersCount    int       `json:"answers_count"`
	UserHasAnswered bool      `json:"user_has_answered"`
	Tags            []TagView `json:"tags"`
}

// AnswerView is the read projection of an answer.
type AnswerView struct {
	ID            string `json:"id"`
	QuestionSlug  string `json:"question_slug"`
	Author        string `json:"author"`
	Body          string `json:"body"`
	CreatedAt     string `json:"created_at"`
	LikesCount    int    `json:"likes_count"`
	DislikesCount int    `json:"dislikes_count"`
	UserHasVoted  bool   `json:"user_has_voted"`
}

// TagView is the read projection of a tag.
type TagView struct {
	ID           string `json:"id"`
	QuestionSlug string `json:"question_slug"`
	Name         string `json:"tag_name"`
	CreatedAt    string `json:"created_at"`
}

// Question projects a question with its derived fields.
func Question(q question.Question, votes vote.Set, answersCount int, hasAnswered bool, tags []tag.Tag, actor identity.User) QuestionView {
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, Tag(t, q.Slug))
	}

	return QuestionView{
		ID:              q.ID,
		Slug:            q.Slug,
		Content:         q.Content,
		Author:          q.Author,
		CreatedAt:       q.CreatedAt.Format(DateFormat),
		LikesCount:      len(votes.Up),
		DislikesCount:   len(votes.Down),
		UserHasVoted:    votes.Has(actor.ID),
		AnswersCount:    answersCount,
		UserHasAnswered: hasAnswered,
		Tags:            views,
	}
}

// Answer projects an answer with its derived fields.
func Answer(a answer.Answer, votes vote.Set, questionSlug string, actor identity.User) AnswerView {
	return AnswerView{
		ID:            a.ID,
		QuestionSlug:  questionSlug,
		Author:        a.Author,
		Body:          a.Body,
		CreatedAt:     a.CreatedAt.Format(DateFormat),
		LikesCount:    len(votes.Up),
		DislikesCount: len(votes.Down),
		UserHasVoted:  votes.Has(actor.ID),
	}
}

// Tag projects a tag.
func Tag(t tag.Tag, questionSlug string) TagView {
	return TagView{
		ID:           t.ID,
		QuestionSlug: questionSlug,
		Name:         t.Name,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
}
