// Package questions implements the business rules for forum questions:
// creation with slug generation, author-only writes, voting and search.
package questions

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/app/metrics"
	"github.com/questionforum/questionforum/internal/app/rules"
	"github.com/questionforum/questionforum/internal/app/serialize"
	"github.com/questionforum/questionforum/internal/app/storage"
	"github.com/questionforum/questionforum/internal/errors"
	"github.com/questionforum/questionforum/pkg/logger"
)

// slugRetries bounds collision retries when generating a unique slug.
const slugRetries = 5

// Service manages questions.
type Service struct {
	store   storage.QuestionStore
	answers storage.AnswerStore
	tags    storage.TagStore
	log     *logger.Logger
}

// New constructs a question service.
func New(store storage.QuestionStore, answers storage.AnswerStore, tags storage.TagStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("questions")
	}
	return &Service{store: store, answers: answers, tags: tags, log: log}
}

// Create validates and persists a new question authored by actor.
func (s *Service) Create(ctx context.Context, actor identity.User, content string) (serialize.QuestionView, error) {
	if actor.Zero() {
		return serialize.QuestionView{}, errors.Unauthorized("authentication required")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return serialize.QuestionView{}, errors.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > question.MaxContentLen {
		return serialize.QuestionView{}, errors.Validation("content must be at most %d characters", question.MaxContentLen)
	}

	q := question.Question{
		Content:  content,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Slug:     slugify(content),
	}

	created, err := s.store.CreateQuestion(ctx, q)
	for i := 0; i < slugRetries && errors.IsCode(err, errors.CodeValidation); i++ {
		q.Slug = withSuffix(slugify(content))
		created, err = s.store.CreateQuestion(ctx, q)
	}
	if err != nil {
		return serialize.QuestionView{}, err
	}

	metrics.RecordQuestionCreated()
	s.log.WithField("question_id", created.ID).
		WithField("slug", created.Slug).
		WithField("author_id", created.AuthorID).
		Info("question created")
	return s.project(ctx, created, actor)
}

// List returns questions newest first, optionally filtered by a search term
// matching author username or tag names.
func (s *Service) List(ctx context.Context, actor identity.User, search string) ([]serialize.QuestionView, error) {
	qs, err := s.store.ListQuestions(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	views := make([]serialize.QuestionView, 0, len(qs))
	for _, q := range qs {
		view, err := s.project(ctx, q, actor)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one question by slug.
func (s *Service) Get(ctx context.Context, actor identity.User, slug string) (serialize.QuestionView, error) {
	q, err := s.store.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	return s.project(ctx, q, actor)
}

// Update replaces the question content. Author-only.
func (s *Service) Update(ctx context.Context, actor identity.User, slug, content string) (serialize.QuestionView, error) {
	q, err := s.store.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	if err := rules.AuthorOrReadOnly(rules.OpWrite, q.AuthorID, actor); err != nil {
		return serialize.QuestionView{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return serialize.QuestionView{}, errors.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > question.MaxContentLen {
		return serialize.QuestionView{}, errors.Validation("content must be at most %d characters", question.MaxContentLen)
	}

	q.Content = content
	updated, err := s.store.UpdateQuestion(ctx, q)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	return s.project(ctx, updated, actor)
}

// Delete removes the question and everything it owns. Author-only.
func (s *Service) Delete(ctx context.Context, actor identity.User, slug string) error {
	q, err := s.store.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := rules.AuthorOrReadOnly(rules.OpWrite, q.AuthorID, actor); err != nil {
		return err
	}

	if err := s.store.DeleteQuestion(ctx, q.ID); err != nil {
		return err
	}
	s.log.WithField("question_id", q.ID).WithField("slug", q.Slug).Info("question deleted")
	return nil
}

// Vote applies a vote toggle on a question and returns the refreshed view.
func (s *Service) Vote(ctx context.Context, actor identity.User, slug string, dir vote.Direction, action vote.Action) (serialize.QuestionView, error) {
	if actor.Zero() {
		return serialize.QuestionView{}, errors.Unauthorized("authentication required")
	}
	if err := dir.Validate(); err != nil {
		return serialize.QuestionView{}, err
	}
	if err := action.Validate(); err != nil {
		return serialize.QuestionView{}, err
	}

	q, err := s.store.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return serialize.QuestionView{}, err
	}

	switch action {
	case vote.Add:
		err = s.store.SetQuestionVote(ctx, q.ID, actor.ID, dir)
	case vote.Remove:
		err = s.store.ClearQuestionVote(ctx, q.ID, actor.ID, dir)
	}
	if err != nil {
		return serialize.QuestionView{}, err
	}
	metrics.RecordVote("question", string(dir), string(action))
	return s.project(ctx, q, actor)
}

func (s *Service) project(ctx context.Context, q question.Question, actor identity.User) (serialize.QuestionView, error) {
	votes, err := s.store.QuestionVotes(ctx, q.ID)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	answersCount, err := s.answers.CountAnswers(ctx, q.ID)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	hasAnswered, err := s.answers.HasAnswerBy(ctx, q.ID, actor.ID)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	tags, err := s.tags.ListTags(ctx, q.ID)
	if err != nil {
		return serialize.QuestionView{}, err
	}
	return serialize.Question(q, votes, answersCount, hasAnswered, tags, actor), nil
}
