// Package memory is a thread-safe in-memory persistence layer implementing
// the storage interfaces. It is intended for tests and prototyping and
// deliberately keeps the implementation simple.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/tag"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/app/storage"
	"github.com/questionforum/questionforum/internal/errors"
)

type questionRec struct {
	q   question.Question
	seq int64
}

type answerRec struct {
	a   answer.Answer
	seq int64
}

type tagRec struct {
	t   tag.Tag
	seq int64
}

// Store holds all forum state behind one mutex.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	nextSeq int64

	questions map[string]questionRec
	slugs     map[string]string // slug -> question id
	answers   map[string]answerRec
	tags      map[string]tagRec

	// voter sets keyed by entity id; the inner map enforces one direction
	// per user.
	questionVotes map[string]map[string]vote.Direction
	answerVotes   map[string]map[string]vote.Direction
}

var _ storage.QuestionStore = (*Store)(nil)
var _ storage.AnswerStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:        1,
		questions:     make(map[string]questionRec),
		slugs:         make(map[string]string),
		answers:       make(map[string]answerRec),
		tags:          make(map[string]tagRec),
		questionVotes: make(map[string]map[string]vote.Direction),
		answerVotes:   make(map[string]map[string]vote.Direction),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return strconv.FormatInt(id, 10)
}

func (s *Store) nextSeqLocked() int64 {
	s.nextSeq++
	return s.nextSeq
}

// QuestionStore implementation ------------------------------------------------

func (s *Store) CreateQuestion(_ context.Context, q question.Question) (question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = s.nextIDLocked()
	} else if _, exists := s.questions[q.ID]; exists {
		return question.Question{}, errors.Validation("question %s already exists", q.ID)
	}
	if _, exists := s.slugs[q.Slug]; exists {
		return question.Question{}, errors.Validation("slug %q already in use", q.Slug)
	}

	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	s.questions[q.ID] = questionRec{q: q, seq: s.nextSeqLocked()}
	s.slugs[q.Slug] = q.ID
	return q, nil
}

func (s *Store) UpdateQuestion(_ context.Context, q question.Question) (question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.questions[q.ID]
	if !ok {
		return question.Question{}, errors.NotFound("question %s not found", q.ID)
	}

	q.Slug = rec.q.Slug
	q.AuthorID = rec.q.AuthorID
	q.Author = rec.q.Author
	q.CreatedAt = rec.q.CreatedAt
	q.UpdatedAt = time.Now().UTC()

	rec.q = q
	s.questions[q.ID] = rec
	return q, nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (question.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.questions[id]
	if !ok {
		return question.Question{}, errors.NotFound("question %s not found", id)
	}
	return rec.q, nil
}

func (s *Store) GetQuestionBySlug(_ context.Context, slug string) (question.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slugs[slug]
	if !ok {
		return question.Question{}, errors.NotFound("question %s not found", slug)
	}
	return s.questions[id].q, nil
}

func (s *Store) ListQuestions(_ context.Context, search string) ([]question.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(search))

	recs := make([]questionRec, 0, len(s.questions))
	for _, rec := range s.questions {
		if term == "" || s.matchesLocked(rec.q, term) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	result := make([]question.Question, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.q)
	}
	return result, nil
}

func (s *Store) matchesLocked(q question.Question, term string) bool {
	if strings.Contains(strings.ToLower(q.Author), term) {
		return true
	}
	for _, rec := range s.tags {
		if rec.t.QuestionID == q.ID && strings.Contains(strings.ToLower(rec.t.Name), term) {
			return true
		}
	}
	return false
}

func (s *Store) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.questions[id]
	if !ok {
		return errors.NotFound("question %s not found", id)
	}

	delete(s.questions, id)
	delete(s.slugs, rec.q.Slug)
	delete(s.questionVotes, id)
	for aid, arec := range s.answers {
		if arec.a.QuestionID == id {
			delete(s.answers, aid)
			delete(s.answerVotes, aid)
		}
	}
	for tid, trec := range s.tags {
		if trec.t.QuestionID == id {
			delete(s.tags, tid)
		}
	}
	return nil
}

func (s *Store) SetQuestionVote(_ context.Context, questionID, userID string, dir vote.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[questionID]; !ok {
		return errors.NotFound("question %s not found", questionID)
	}
	votes := s.questionVotes[questionID]
	if votes == nil {
		votes = make(map[string]vote.Direction)
		s.questionVotes[questionID] = votes
	}
	votes[userID] = dir
	return nil
}

func (s *Store) ClearQuestionVote(_ context.Context, questionID, userID string, dir vote.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[questionID]; !ok {
		return errors.NotFound("question %s not found", questionID)
	}
	if votes := s.questionVotes[questionID]; votes[userID] == dir {
		delete(votes, userID)
	}
	return nil
}

func (s *Store) QuestionVotes(_ context.Context, questionID string) (vote.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.questions[questionID]; !ok {
		return vote.Set{}, errors.NotFound("question %s not found", questionID)
	}
	return collectVotes(s.questionVotes[questionID]), nil
}

// AnswerStore implementation --------------------------------------------------

func (s *Store) CreateAnswer(_ context.Context, a answer.Answer) (answer.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[a.QuestionID]; !ok {
		return answer.Answer{}, errors.NotFound("question %s not found", a.QuestionID)
	}
	if a.ID == "" {
		a.ID = s.nextIDLocked()
	} else if _, exists := s.answers[a.ID]; exists {
		return answer.Answer{}, errors.Validation("answer %s already exists", a.ID)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	s.answers[a.ID] = answerRec{a: a, seq: s.nextSeqLocked()}
	return a, nil
}

func (s *Store) UpdateAnswer(_ context.Context, a answer.Answer) (answer.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.answers[a.ID]
	if !ok {
		return answer.Answer{}, errors.NotFound("answer %s not found", a.ID)
	}

	a.QuestionID = rec.a.QuestionID
	a.AuthorID = rec.a.AuthorID
	a.Author = rec.a.Author
	a.CreatedAt = rec.a.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	rec.a = a
	s.answers[a.ID] = rec
	return a, nil
}

func (s *Store) GetAnswer(_ context.Context, id string) (answer.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.answers[id]
	if !ok {
		return answer.Answer{}, errors.NotFound("answer %s not found", id)
	}
	return rec.a, nil
}

func (s *Store) ListAnswers(_ context.Context, questionID string) ([]answer.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]answerRec, 0)
	for _, rec := range s.answers {
		if rec.a.QuestionID == questionID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	result := make([]answer.Answer, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.a)
	}
	return result, nil
}

func (s *Store) DeleteAnswer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[id]; !ok {
		return errors.NotFound("answer %s not found", id)
	}
	delete(s.answers, id)
	delete(s.answerVotes, id)
	return nil
}

func (s *Store) CountAnswers(_ context.Context, questionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.answers {
		if rec.a.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}

func (s *Store) HasAnswerBy(_ context.Context, questionID, authorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.answers {
		if rec.a.QuestionID == questionID && rec.a.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetAnswerVote(_ context.Context, answerID, userID string, dir vote.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[answerID]; !ok {
		return errors.NotFound("answer %s not found", answerID)
	}
	votes := s.answerVotes[answerID]
	if votes == nil {
		votes = make(map[string]vote.Direction)
		s.answerVotes[answerID] = votes
	}
	votes[userID] = dir
	return nil
}

func (s *Store) ClearAnswerVote(_ context.Context, answerID, userID string, dir vote.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[answerID]; !ok {
		return errors.NotFound("answer %s not found", answerID)
	}
	if votes := s.answerVotes[answerID]; votes[userID] == dir {
		delete(votes, userID)
	}
	return nil
}

func (s *Store) AnswerVotes(_ context.Context, answerID string) (vote.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.answers[answerID]; !ok {
		return vote.Set{}, errors.NotFound("answer %s not found", answerID)
	}
	return collectVotes(s.answerVotes[answerID]), nil
}

// TagStore implementation -----------------------------------------------------

func (s *Store) CreateTag(_ context.Context, t tag.Tag) (tag.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[t.QuestionID]; !ok {
		return tag.Tag{}, errors.NotFound("question %s not found", t.QuestionID)
	}
	if t.ID == "" {
		t.ID = s.nextIDLocked()
	} else if _, exists := s.tags[t.ID]; exists {
		return tag.Tag{}, errors.Validation("tag %s already exists", t.ID)
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	s.tags[t.ID] = tagRec{t: t, seq: s.nextSeqLocked()}
	return t, nil
}

func (s *Store) UpdateTag(_ context.Context, t tag.Tag) (tag.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tags[t.ID]
	if !ok {
		return tag.Tag{}, errors.NotFound("tag %s not found", t.ID)
	}

	t.QuestionID = rec.t.QuestionID
	t.CreatedAt = rec.t.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	rec.t = t
	s.tags[t.ID] = rec
	return t, nil
}

func (s *Store) GetTag(_ context.Context, id string) (tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tags[id]
	if !ok {
		return tag.Tag{}, errors.NotFound("tag %s not found", id)
	}
	return rec.t, nil
}

func (s *Store) ListTags(_ context.Context, questionID string) ([]tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]tagRec, 0)
	for _, rec := range s.tags {
		if rec.t.QuestionID == questionID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	result := make([]tag.Tag, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.t)
	}
	return result, nil
}

func (s *Store) DeleteTag(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return errors.NotFound("tag %s not found", id)
	}
	delete(s.tags, id)
	return nil
}

func (s *Store) CountTags(_ context.Context, questionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.tags {
		if rec.t.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}

// Helpers ---------------------------------------------------------------------

func collectVotes(votes map[string]vote.Direction) vote.Set {
	var set vote.Set
	for userID, dir := range votes {
		if dir == vote.Up {
			set.Up = append(set.Up, userID)
		} else {
			set.Down = append(set.Down, userID)
		}
	}
	sort.Strings(set.Up)
	sort.Strings(set.Down)
	return set
}
