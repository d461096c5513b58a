package storage

import (
	"context"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/tag"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
)

// QuestionStore persists questions and their voter sets.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, q question.Question) (question.Question, error)
	UpdateQuestion(ctx context.Context, q question.Question) (question.Question, error)
	GetQuestion(ctx context.Context, id string) (question.Question, error)
	GetQuestionBySlug(ctx context.Context, slug string) (question.Question, error)
	// ListQuestions returns questions newest first. A non-empty search term
	// filters to questions whose author username or tag names contain the
	// term, case-insensitively.
	ListQuestions(ctx context.Context, search string) ([]question.Question, error)
	// DeleteQuestion removes the question and cascades to its answers, tags
	// and votes.
	DeleteQuestion(ctx context.Context, id string) error

	// SetQuestionVote places userID in the given direction, atomically
	// removing any vote in the opposite direction.
	SetQuestionVote(ctx context.Context, questionID, userID string, dir vote.Direction) error
	// ClearQuestionVote removes userID from the given direction only; a
	// missing vote is not an error.
	ClearQuestionVote(ctx context.Context, questionID, userID string, dir vote.Direction) error
	QuestionVotes(ctx context.Context, questionID string) (vote.Set, error)
}

// AnswerStore persists answers and their voter sets.
type AnswerStore interface {
	CreateAnswer(ctx context.Context, a answer.Answer) (answer.Answer, error)
	UpdateAnswer(ctx context.Context, a answer.Answer) (answer.Answer, error)
	GetAnswer(ctx context.Context, id string) (answer.Answer, error)
	// ListAnswers returns a question's answers newest first.
	ListAnswers(ctx context.Context, questionID string) ([]answer.Answer, error)
	DeleteAnswer(ctx context.Context, id string) error
	CountAnswers(ctx context.Context, questionID string) (int, error)
	HasAnswerBy(ctx context.Context, questionID, authorID string) (bool, error)

	SetAnswerVote(ctx context.Context, answerID, userID string, dir vote.Direction) error
	ClearAnswerVote(ctx context.Context, answerID, userID string, dir vote.Direction) error
	AnswerVotes(ctx context.Context, answerID string) (vote.Set, error)
}

// TagStore persists question tags.
type TagStore interface {
	CreateTag(ctx context.Context, t tag.Tag) (tag.Tag, error)
	UpdateTag(ctx context.Context, t tag.Tag) (tag.Tag, error)
	GetTag(ctx context.Context, id string) (tag.Tag, error)
	// ListTags returns a question's tags newest first.
	ListTags(ctx context.Context, questionID string) ([]tag.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	CountTags(ctx context.Context, questionID string) (int, error)
}
