// Package app ties the forum services together over their stores.
package app

import (
	"github.com/questionforum/questionforum/internal/app/services/answers"
	"github.com/questionforum/questionforum/internal/app/services/questions"
	"github.com/questionforum/questionforum/internal/app/services/tags"
	"github.com/questionforum/questionforum/internal/app/storage"
	"github.com/questionforum/questionforum/internal/app/storage/memory"
	"github.com/questionforum/questionforum/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared in-memory implementation.
type Stores struct {
	Questions storage.QuestionStore
	Answers   storage.AnswerStore
	Tags      storage.TagStore
}

// Application bundles the domain services.
type Application struct {
	log *logger.Logger

	Questions *questions.Service
	Answers   *answers.Service
	Tags      *tags.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Questions == nil {
		stores.Questions = mem
	}
	if stores.Answers == nil {
		stores.Answers = mem
	}
	if stores.Tags == nil {
		stores.Tags = mem
	}

	return &Application{
		log:       log,
		Questions: questions.New(stores.Questions, stores.Answers, stores.Tags, log),
		Answers:   answers.New(stores.Answers, stores.Questions, log),
		Tags:      tags.New(stores.Tags, stores.Questions, log),
	}
}
