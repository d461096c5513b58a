// Package answers implements the business rules for answers: the one-answer-
// per-question rule, author-only writes and voting.
package answers

import (
	"context"
	"strings"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/app/metrics"
	"github.com/questionforum/questionforum/internal/app/rules"
	"github.com/questionforum/questionforum/internal/app/serialize"
	"github.com/questionforum/questionforum/internal/app/storage"
	"github.com/questionforum/questionforum/internal/errors"
	"github.com/questionforum/questionforum/pkg/logger"
)

// Service manages answers.
type Service struct {
	store     storage.AnswerStore
	questions storage.QuestionStore
	log       *logger.Logger
}

// New constructs an answer service.
func New(store storage.AnswerStore, questions storage.QuestionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("answers")
	}
	return &Service{store: store, questions: questions, log: log}
}

// Create posts an answer to the question identified by slug. Any
// authenticated user may answer, once per question.
func (s *Service) Create(ctx context.Context, actor identity.User, slug, body string) (serialize.AnswerView, error) {
	if actor.Zero() {
		return serialize.AnswerView{}, errors.Unauthorized("authentication required")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return serialize.AnswerView{}, errors.Validation("body is required")
	}

	q, err := s.questions.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return serialize.AnswerView{}, err
	}

	answered, err := s.store.HasAnswerBy(ctx, q.ID, actor.ID)
	if err != nil {
		return serialize.AnswerView{}, err
	}
	if answered {
		return serialize.AnswerView{}, errors.Validation("You have already answered this Question!")
	}

	created, err := s.store.CreateAnswer(ctx, answer.Answer{
		QuestionID: q.ID,
		AuthorID:   actor.ID,
		Author:     actor.Username,
		Body:       body,
	})
	if err != nil {
		return serialize.AnswerView{}, err
	}

	metrics.RecordAnswerCreated()
	s.log.WithField("answer_id", created.ID).
		WithField("question_id", q.ID).
		WithField("author_id", created.AuthorID).
		Info("answer created")
	return s.project(ctx, created, actor)
}

// ListForQuestion returns a question's answers newest first.
func (s *Service) ListForQuestion(ctx context.Context, actor identity.User, slug string) ([]serialize.AnswerView, error) {
	q, err := s.questions.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	as, err := s.store.ListAnswers(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	views := make([]serialize.AnswerView, 0, len(as))
	for _, a := range as {
		votes, err := s.store.AnswerVotes(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, serialize.Answer(a, votes, q.Slug, actor))
	}
	return views, nil
}

// Get returns one answer by id.
func (s *Service) Get(ctx context.Context, actor identity.User, id string) (serialize.AnswerView, error) {
	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return serialize.AnswerView{}, err
	}
	return s.project(ctx, a, actor)
}

// Update replaces the answer body. Author-only.
func (s *Service) Update(ctx context.Context, actor identity.User, id, body string) (serialize.AnswerView, error) {
	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return serialize.AnswerView{}, err
	}
	if err := rules.AuthorOrReadOnly(rules.OpWrite, a.AuthorID, actor); err != nil {
		return serialize.AnswerView{}, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return serialize.AnswerView{}, errors.Validation("body is required")
	}

	a.Body = body
	updated, err := s.store.UpdateAnswer(ctx, a)
	if err != nil {
		return serialize.AnswerView{}, err
	}
	return s.project(ctx, updated, actor)
}

// Delete removes the answer. Author-only.
func (s *Service) Delete(ctx context.Context, actor identity.User, id string) error {
	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return err
	}
	if err := rules.AuthorOrReadOnly(rules.OpWrite, a.AuthorID, actor); err != nil {
		return err
	}

	if err := s.store.DeleteAnswer(ctx, a.ID); err != nil {
		return err
	}
	s.log.WithField("answer_id", a.ID).WithField("question_id", a.QuestionID).Info("answer deleted")
	return nil
}

// Vote applies a vote toggle on an answer and returns the refreshed view.
func (s *Service) Vote(ctx context.Context, actor identity.User, id string, dir vote.Direction, action vote.Action) (serialize.AnswerView, error) {
	if actor.Zero() {
		return serialize.AnswerView{}, errors.Unauthorized("authentication required")
	}
	if err := dir.Validate(); err != nil {
		return serialize.AnswerView{}, err
	}
	if err := action.Validate(); err != nil {
		return serialize.AnswerView{}, err
	}

	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return serialize.AnswerView{}, err
	}

	switch action {
	case vote.Add:
		err = s.store.SetAnswerVote(ctx, a.ID, actor.ID, dir)
	case vote.Remove:
		err = s.store.ClearAnswerVote(ctx, a.ID, actor.ID, dir)
	}
	if err != nil {
		return serialize.AnswerView{}, err
	}
	metrics.RecordVote("answer", string(dir), string(action))
	return s.project(ctx, a, actor)
}

func (s *Service) project(ctx context.Context, a answer.Answer, actor identity.User) (serialize.AnswerView, error) {
	votes, err := s.store.AnswerVotes(ctx, a.ID)
	if err != nil {
		return serialize.AnswerView{}, err
	}
	q, err := s.questions.GetQuestion(ctx, a.QuestionID)
	if err != nil {
		return serialize.AnswerView{}, err
	}
	return serialize.Answer(a, votes, q.Slug, actor), nil
}
