// Package tags implements the tagging rules: question-author-only access and
// the per-question tag limit.
package tags

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/tag"
	"github.com/questionforum/questionforum/internal/app/rules"
	"github.com/questionforum/questionforum/internal/app/serialize"
	"github.com/questionforum/questionforum/internal/app/storage"
	"github.com/questionforum/questionforum/internal/errors"
	"github.com/questionforum/questionforum/pkg/logger"
)

// Service manages question tags.
type Service struct {
	store     storage.TagStore
	questions storage.QuestionStore
	log       *logger.Logger
}

// New constructs a tag service.
func New(store storage.TagStore, questions storage.QuestionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tags")
	}
	return &Service{store: store, questions: questions, log: log}
}

// Create attaches a tag to the question identified by slug. Only the
// question's author may tag it, and only while the existing tag count is at
// or below tag.MaxPerQuestion. The authorization check runs before the count
// check.
func (s *Service) Create(ctx context.Context, actor identity.User, slug, name string) (serialize.TagView, error) {
	q, err := s.questions.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return serialize.TagView{}, err
	}
	if err := rules.QuestionAuthorOnly(q.AuthorID, actor); err != nil {
		return serialize.TagView{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return serialize.TagView{}, errors.Validation("tag_name is required")
	}
	if utf8.RuneCountInString(name) > tag.MaxNameLen {
		return serialize.TagView{}, errors.Validation("tag_name must be at most %d characters", tag.MaxNameLen)
	}

	count, err := s.store.CountTags(ctx, q.ID)
	if err != nil {
		return serialize.TagView{}, err
	}
	if count > tag.MaxPerQuestion {
		return serialize.TagView{}, errors.Validation("Maximum of 3 tags can be added to a question")
	}

	created, err := s.store.CreateTag(ctx, tag.Tag{QuestionID: q.ID, Name: name})
	if err != nil {
		return serialize.TagView{}, err
	}

	s.log.WithField("tag_id", created.ID).
		WithField("question_id", q.ID).
		Info("tag created")
	return serialize.Tag(created, q.Slug), nil
}

// ListForQuestion returns a question's tags newest first. Question-author-only.
func (s *Service) ListForQuestion(ctx context.Context, actor identity.User, slug string) ([]serialize.TagView, error) {
	q, err := s.questions.GetQuestionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := rules.QuestionAuthorOnly(q.AuthorID, actor); err != nil {
		return nil, err
	}

	ts, err := s.store.ListTags(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	views := make([]serialize.TagView, 0, len(ts))
	for _, t := range ts {
		views = append(views, serialize.Tag(t, q.Slug))
	}
	return views, nil
}

// Get returns one tag by id. Question-author-only.
func (s *Service) Get(ctx context.Context, actor identity.User, id string) (serialize.TagView, error) {
	t, q, err := s.resolve(ctx, actor, id)
	if err != nil {
		return serialize.TagView{}, err
	}
	return serialize.Tag(t, q.Slug), nil
}

// Update renames a tag. Question-author-only.
func (s *Service) Update(ctx context.Context, actor identity.User, id, name string) (serialize.TagView, error) {
	t, q, err := s.resolve(ctx, actor, id)
	if err != nil {
		return serialize.TagView{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return serialize.TagView{}, errors.Validation("tag_name is required")
	}
	if utf8.RuneCountInString(name) > tag.MaxNameLen {
		return serialize.TagView{}, errors.Validation("tag_name must be at most %d characters", tag.MaxNameLen)
	}

	t.Name = name
	updated, err := s.store.UpdateTag(ctx, t)
	if err != nil {
		return serialize.TagView{}, err
	}
	return serialize.Tag(updated, q.Slug), nil
}

// Delete removes a tag. Question-author-only.
func (s *Service) Delete(ctx context.Context, actor identity.User, id string) error {
	t, _, err := s.resolve(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, t.ID); err != nil {
		return err
	}
	s.log.WithField("tag_id", t.ID).WithField("question_id", t.QuestionID).Info("tag deleted")
	return nil
}

// resolve loads a tag and its owning question and applies the
// question-author rule.
func (s *Service) resolve(ctx context.Context, actor identity.User, id string) (tag.Tag, question.Question, error) {
	t, err := s.store.GetTag(ctx, id)
	if err != nil {
		return tag.Tag{}, question.Question{}, err
	}
	q, err := s.questions.GetQuestion(ctx, t.QuestionID)
	if err != nil {
		return tag.Tag{}, question.Question{}, err
	}
	if err := rules.QuestionAuthorOnly(q.AuthorID, actor); err != nil {
		return tag.Tag{}, question.Question{}, err
	}
	return t, q, nil
}
