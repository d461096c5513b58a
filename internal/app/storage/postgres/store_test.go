package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/errors"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateQuestionInsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO questions").
		WithArgs(sqlmock.AnyArg(), "why-go", "Why Go?", "u1", "leila", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateQuestion(context.Background(), question.Question{
		Slug: "why-go", Content: "Why Go?", AuthorID: "u1", Author: "leila",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamps, got %+v", created)
	}
	expectMet(t, mock)
}

func TestCreateQuestionDuplicateSlug(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO questions").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreateQuestion(context.Background(), question.Question{Slug: "dup"})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	expectMet(t, mock)
}

func TestGetQuestionBySlug(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "slug", "content", "author_id", "author_username", "created_at", "updated_at"}).
		AddRow("q1", "why-go", "Why Go?", "u1", "leila", now, now)
	mock.ExpectQuery("SELECT id, slug, content, author_id, author_username, created_at, updated_at").
		WithArgs("why-go").
		WillReturnRows(rows)

	q, err := store.GetQuestionBySlug(context.Background(), "why-go")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.ID != "q1" || q.Author != "leila" {
		t.Fatalf("unexpected question %+v", q)
	}
	expectMet(t, mock)
}

func TestGetQuestionNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, slug, content").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "content", "author_id", "author_username", "created_at", "updated_at"}))

	_, err := store.GetQuestion(context.Background(), "missing")
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	expectMet(t, mock)
}

func TestDeleteQuestionNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM questions").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteQuestion(context.Background(), "missing")
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	expectMet(t, mock)
}

func TestSetQuestionVoteUpsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO question_votes").
		WithArgs("q1", "u2", "up").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SetQuestionVote(context.Background(), "q1", "u2", vote.Up); err != nil {
		t.Fatalf("set vote: %v", err)
	}
	expectMet(t, mock)
}

func TestSetQuestionVoteMissingQuestion(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO question_votes").
		WillReturnError(&pq.Error{Code: "23503"})

	err := store.SetQuestionVote(context.Background(), "missing", "u2", vote.Up)
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	expectMet(t, mock)
}

func TestClearQuestionVoteDirectionScoped(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM question_votes").
		WithArgs("q1", "u2", "down").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// A non-matching direction deletes nothing and is not an error.
	if err := store.ClearQuestionVote(context.Background(), "q1", "u2", vote.Down); err != nil {
		t.Fatalf("clear vote: %v", err)
	}
	expectMet(t, mock)
}

func TestQuestionVotesSplitsByDirection(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"user_id", "direction"}).
		AddRow("u2", "up").
		AddRow("u3", "up").
		AddRow("u4", "down")
	mock.ExpectQuery("SELECT user_id, direction").
		WithArgs("q1").
		WillReturnRows(rows)

	set, err := store.QuestionVotes(context.Background(), "q1")
	if err != nil {
		t.Fatalf("votes: %v", err)
	}
	if len(set.Up) != 2 || len(set.Down) != 1 {
		t.Fatalf("unexpected set %+v", set)
	}
	expectMet(t, mock)
}

func TestCreateAnswerDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO answers").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreateAnswer(context.Background(), answer.Answer{QuestionID: "q1", AuthorID: "u2"})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if err.Error() != "You have already answered this Question!" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	expectMet(t, mock)
}

func TestHasAnswerBy(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("q1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	answered, err := store.HasAnswerBy(context.Background(), "q1", "u2")
	if err != nil || !answered {
		t.Fatalf("expected answered, got %v %v", answered, err)
	}
	expectMet(t, mock)
}

func TestCountTags(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tags`).
		WithArgs("q1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := store.CountTags(context.Background(), "q1")
	if err != nil || count != 3 {
		t.Fatalf("expected 3, got %d %v", count, err)
	}
	expectMet(t, mock)
}

func TestListQuestionsSearchQuery(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "slug", "content", "author_id", "author_username", "created_at", "updated_at"}).
		AddRow("q2", "newer", "newer", "u2", "omar", now, now).
		AddRow("q1", "older", "older", "u1", "leila", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT q.id, q.slug, q.content").
		WithArgs("omar").
		WillReturnRows(rows)

	qs, err := store.ListQuestions(context.Background(), "omar")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(qs) != 2 || qs[0].ID != "q2" {
		t.Fatalf("unexpected order %+v", qs)
	}
	expectMet(t, mock)
}

func TestListQuestionsSearchEscapesWildcards(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "slug", "content", "author_id", "author_username", "created_at", "updated_at"})
	mock.ExpectQuery("SELECT q.id, q.slug, q.content").
		WithArgs(`50\% off\\now\_`).
		WillReturnRows(rows)

	if _, err := store.ListQuestions(context.Background(), `50% off\now_`); err != nil {
		t.Fatalf("list: %v", err)
	}
	expectMet(t, mock)
}
