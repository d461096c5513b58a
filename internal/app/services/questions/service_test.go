package questions

import (
	"context"
	"strings"
	"testing"

	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/app/storage/memory"
	"github.com/questionforum/questionforum/internal/errors"
)

var (
	leila = identity.User{ID: "u1", Username: "leila"}
	omar  = identity.User{ID: "u2", Username: "omar"}
)

func newService() (*Service, *memory.Store) {
	store := memory.New()
	return New(store, store, store, nil), store
}

func TestCreateQuestion(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	view, err := svc.Create(ctx, leila, "  Why is the sky blue?  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Slug != "why-is-the-sky-blue" {
		t.Fatalf("unexpected slug %q", view.Slug)
	}
	if view.Author != "leila" || view.Content != "Why is the sky blue?" {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.AnswersCount != 0 || view.LikesCount != 0 || view.UserHasVoted {
		t.Fatalf("expected zero derived counts, got %+v", view)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, identity.User{}, "content"); !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous, got %v", err)
	}
	if _, err := svc.Create(ctx, leila, "   "); !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation for empty content, got %v", err)
	}
	long := strings.Repeat("a", question.MaxContentLen+1)
	if _, err := svc.Create(ctx, leila, long); !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation for long content, got %v", err)
	}
}

func TestCreateQuestionContentLengthInRunes(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	// é is two bytes; the limit counts characters, not bytes.
	atLimit := "q" + strings.Repeat("é", question.MaxContentLen-1)
	if _, err := svc.Create(ctx, leila, atLimit); err != nil {
		t.Fatalf("expected max-length multibyte content accepted, got %v", err)
	}
	overLimit := "q" + strings.Repeat("é", question.MaxContentLen)
	if _, err := svc.Create(ctx, leila, overLimit); !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation for over-limit content, got %v", err)
	}
}

func TestCreateQuestionSlugCollision(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, leila, "same content")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, omar, "same content")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Slug == first.Slug {
		t.Fatalf("expected distinct slugs, both %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, "same-content-") {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}
}

func TestUpdateQuestionAuthorOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, leila, "original")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, omar, created.Slug, "hijacked"); !errors.IsCode(err, errors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-author, got %v", err)
	}
	if _, err := svc.Update(ctx, identity.User{}, created.Slug, "anon"); !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous, got %v", err)
	}

	updated, err := svc.Update(ctx, leila, created.Slug, "revised")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "revised" || updated.Slug != created.Slug {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestDeleteQuestionAuthorOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, leila, "to be deleted")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, omar, created.Slug); !errors.IsCode(err, errors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, leila, created.Slug); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, leila, created.Slug); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVoteQuestionToggle(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, leila, "voting target")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.Vote(ctx, omar, created.Slug, vote.Up, vote.Add)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if view.LikesCount != 1 || view.DislikesCount != 0 || !view.UserHasVoted {
		t.Fatalf("expected one like, got %+v", view)
	}

	// A dislike from the same user replaces the like.
	view, err = svc.Vote(ctx, omar, created.Slug, vote.Down, vote.Add)
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if view.LikesCount != 0 || view.DislikesCount != 1 {
		t.Fatalf("expected vote switched, got %+v", view)
	}

	// Removing the like is a no-op while the dislike stands.
	view, err = svc.Vote(ctx, omar, created.Slug, vote.Up, vote.Remove)
	if err != nil {
		t.Fatalf("remove like: %v", err)
	}
	if view.DislikesCount != 1 {
		t.Fatalf("expected dislike kept, got %+v", view)
	}

	view, err = svc.Vote(ctx, omar, created.Slug, vote.Down, vote.Remove)
	if err != nil {
		t.Fatalf("remove dislike: %v", err)
	}
	if view.LikesCount != 0 || view.DislikesCount != 0 || view.UserHasVoted {
		t.Fatalf("expected no votes, got %+v", view)
	}

	if _, err := svc.Vote(ctx, identity.User{}, created.Slug, vote.Up, vote.Add); !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Vote(ctx, omar, created.Slug, vote.Direction("sideways"), vote.Add); !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation for bad direction, got %v", err)
	}
}

func TestListQuestionsSearch(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, leila, "first question"); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, omar, "second question")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.List(ctx, leila, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Slug != second.Slug {
		t.Fatalf("expected newest first, got %+v", all)
	}

	results, err := svc.List(ctx, leila, "omar")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != second.Slug {
		t.Fatalf("expected omar's question, got %+v", results)
	}
}
