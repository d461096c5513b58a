// Package vote defines vote directions and the per-entity voter sets.
package vote

import "github.com/questionforum/questionforum/internal/errors"

// Direction is the side of a vote.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// Validate rejects unknown directions.
func (d Direction) Validate() error {
	switch d {
	case Up, Down:
		return nil
	}
	return errors.Validation("unknown vote direction %q", d)
}

// Action is what a request does with a vote.
type Action string

const (
	Add    Action = "add"
	Remove Action = "remove"
)

// Validate rejects unknown actions.
func (a Action) Validate() error {
	switch a {
	case Add, Remove:
		return nil
	}
	return errors.Validation("unknown vote action %q", a)
}

// Set holds the voter ids per direction for one entity. A user id appears in
// at most one of the two slices; the store's uniqueness constraint on
// (entity, user) guarantees it.
type Set struct {
	Up   []string
	Down []string
}

// Has reports whether userID appears in either direction.
func (s Set) Has(userID string) bool {
	return contains(s.Up, userID) || contains(s.Down, userID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
