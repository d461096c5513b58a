// Package rules holds the capability checks applied before reading or
// mutating forum entities.
package rules

import (
	"github.com/questionforum/questionforum/internal/app/domain/identity"
	"github.com/questionforum/questionforum/internal/errors"
)

// Operation classifies what a request wants to do with an entity.
type Operation int

const (
	OpRead Operation = iota
	OpWrite
)

// AuthorOrReadOnly permits reads for any authenticated identity and writes
// only for the entity's author. Used for questions and answers.
func AuthorOrReadOnly(op Operation, authorID string, actor identity.User) error {
	if actor.Zero() {
		return errors.Unauthorized("authentication required")
	}
	if op == OpWrite && actor.ID != authorID {
		return errors.Forbidden("only the author may modify this resource")
	}
	return nil
}

// QuestionAuthorOnly permits access only for the owning question's author.
// Tags use this for reads as well as writes, unlike question and answer
// reads which are open to any authenticated user.
func QuestionAuthorOnly(questionAuthorID string, actor identity.User) error {
	if actor.Zero() {
		return errors.Unauthorized("authentication required")
	}
	if actor.ID != questionAuthorID {
		return errors.Forbidden("only the question's author may access its tags")
	}
	return nil
}
