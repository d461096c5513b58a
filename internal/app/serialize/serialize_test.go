package serialize

import (
	"testing"
	"time"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/tag"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
)

func TestQuestionProjection(t *testing.T) {
	created := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
	q := question.Question{
		ID:        "q1",
		Slug:      "why-rust",
		Content:   "Why Rust?",
		Author:    "leila",
		CreatedAt: created,
	}
	votes := vote.Set{Up: []string{"u2", "u3"}, Down: []string{"u4"}}
	tags := []tag.Tag{{ID: "t1", QuestionID: "q1", Name: "languages", CreatedAt: created}}

	view := Question(q, votes, 2, true, tags, identity.User{ID: "u2", Username: "omar"})

	if view.CreatedAt != "March 05, 2024" {
		t.Fatalf("unexpected date %q", view.CreatedAt)
	}
	if view.LikesCount != 2 || view.DislikesCount != 1 {
		t.Fatalf("unexpected counts %+v", view)
	}
	if !view.UserHasVoted {
		t.Fatalf("expected u2 marked as voted")
	}
	if view.AnswersCount != 2 || !view.UserHasAnswered {
		t.Fatalf("unexpected answer fields %+v", view)
	}
	if len(view.Tags) != 1 || view.Tags[0].Name != "languages" || view.Tags[0].QuestionSlug != "why-rust" {
		t.Fatalf("unexpected tags %+v", view.Tags)
	}
}

func TestQuestionProjectionAnonymous(t *testing.T) {
	q := question.Question{ID: "q1", Slug: "s", CreatedAt: time.Now()}
	votes := vote.Set{Up: []string{"u2"}}

	view := Question(q, votes, 0, false, nil, identity.User{})
	if view.UserHasVoted {
		t.Fatalf("anonymous identity must never count as voted")
	}
	if view.Tags == nil {
		t.Fatalf("tags should serialize as an empty list, not null")
	}
}

func TestAnswerProjection(t *testing.T) {
	created := time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC)
	a := answer.Answer{ID: "a1", QuestionID: "q1", Author: "omar", Body: "because", CreatedAt: created}
	votes := vote.Set{Down: []string{"u5"}}

	view := Answer(a, votes, "why-rust", identity.User{ID: "u5"})
	if view.CreatedAt != "December 25, 2023" {
		t.Fatalf("unexpected date %q", view.CreatedAt)
	}
	if view.QuestionSlug != "why-rust" || view.DislikesCount != 1 || !view.UserHasVoted {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestTagProjection(t *testing.T) {
	created := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
	view := Tag(tag.Tag{ID: "t1", Name: "go", CreatedAt: created}, "slug")
	if view.CreatedAt != "2024-01-02T15:04:05Z" {
		t.Fatalf("unexpected timestamp %q", view.CreatedAt)
	}
	if view.Name != "go" || view.QuestionSlug != "slug" {
		t.Fatalf("unexpected view %+v", view)
	}
}
