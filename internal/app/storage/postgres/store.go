// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/questionforum/questionforum/internal/app/domain/answer"
	"github.com/questionforum/questionforum/internal/app/domain/question"
	"github.com/questionforum/questionforum/internal/app/domain/tag"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/app/storage"
	"github.com/questionforum/questionforum/internal/errors"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.QuestionStore = (*Store)(nil)
var _ storage.AnswerStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// --- QuestionStore ----------------------------------------------------------

func (s *Store) CreateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (id, slug, content, author_id, author_username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, q.ID, q.Slug, q.Content, q.AuthorID, q.Author, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return question.Question{}, errors.Validation("slug %q already in use", q.Slug)
		}
		return question.Question{}, err
	}
	return q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	existing, err := s.GetQuestion(ctx, q.ID)
	if err != nil {
		return question.Question{}, err
	}

	q.Slug = existing.Slug
	q.AuthorID = existing.AuthorID
	q.Author = existing.Author
	q.CreatedAt = existing.CreatedAt
	q.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE questions
		SET content = $2, updated_at = $3
		WHERE id = $1
	`, q.ID, q.Content, q.UpdatedAt)
	if err != nil {
		return question.Question{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return question.Question{}, errors.NotFound("question %s not found", q.ID)
	}
	return q, nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (question.Question, error) {
	return s.scanQuestion(s.db.QueryRowContext(ctx, `
		SELECT id, slug, content, author_id, author_username, created_at, updated_at
		FROM questions
		WHERE id = $1
	`, id), id)
}

func (s *Store) GetQuestionBySlug(ctx context.Context, slug string) (question.Question, error) {
	return s.scanQuestion(s.db.QueryRowContext(ctx, `
		SELECT id, slug, content, author_id, author_username, created_at, updated_at
		FROM questions
		WHERE slug = $1
	`, slug), slug)
}

func (s *Store) scanQuestion(row *sql.Row, key string) (question.Question, error) {
	var q question.Question
	if err := row.Scan(&q.ID, &q.Slug, &q.Content, &q.AuthorID, &q.Author, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return question.Question{}, errors.NotFound("question %s not found", key)
		}
		return question.Question{}, err
	}
	return q, nil
}

// escapeLike escapes LIKE wildcards so a search term matches literally.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func (s *Store) ListQuestions(ctx context.Context, search string) ([]question.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.slug, q.content, q.author_id, q.author_username, q.created_at, q.updated_at
		FROM questions q
		WHERE $1 = ''
		   OR q.author_username ILIKE '%' || $1 || '%'
		   OR EXISTS (
			SELECT 1 FROM tags t
			WHERE t.question_id = q.id AND t.name ILIKE '%' || $1 || '%'
		   )
		ORDER BY q.created_at DESC
	`, escapeLike(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []question.Question
	for rows.Next() {
		var q question.Question
		if err := rows.Scan(&q.ID, &q.Slug, &q.Content, &q.AuthorID, &q.Author, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	return result, rows.Err()
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM questions WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.NotFound("question %s not found", id)
	}
	return nil
}

func (s *Store) SetQuestionVote(ctx context.Context, questionID, userID string, dir vote.Direction) error {
	// Single upsert on the (question_id, user_id) key: switching direction
	// replaces the row, so no reader ever sees the user in both sets.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO question_votes (question_id, user_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (question_id, user_id) DO UPDATE SET direction = EXCLUDED.direction
	`, questionID, userID, string(dir))
	if isPQCode(err, pqForeignKeyViolation) {
		return errors.NotFound("question %s not found", questionID)
	}
	return err
}

func (s *Store) ClearQuestionVote(ctx context.Context, questionID, userID string, dir vote.Direction) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM question_votes
		WHERE question_id = $1 AND user_id = $2 AND direction = $3
	`, questionID, userID, string(dir))
	return err
}

func (s *Store) QuestionVotes(ctx context.Context, questionID string) (vote.Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, direction
		FROM question_votes
		WHERE question_id = $1
		ORDER BY user_id
	`, questionID)
	if err != nil {
		return vote.Set{}, err
	}
	defer rows.Close()

	return scanVotes(rows)
}

// --- AnswerStore ------------------------------------------------------------

func (s *Store) CreateAnswer(ctx context.Context, a answer.Answer) (answer.Answer, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, question_id, author_id, author_username, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.QuestionID, a.AuthorID, a.Author, a.Body, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return answer.Answer{}, errors.Validation("You have already answered this Question!")
		}
		if isPQCode(err, pqForeignKeyViolation) {
			return answer.Answer{}, errors.NotFound("question %s not found", a.QuestionID)
		}
		return answer.Answer{}, err
	}
	return a, nil
}

func (s *Store) UpdateAnswer(ctx context.Context, a answer.Answer) (answer.Answer, error) {
	existing, err := s.GetAnswer(ctx, a.ID)
	if err != nil {
		return answer.Answer{}, err
	}

	a.QuestionID = existing.QuestionID
	a.AuthorID = existing.AuthorID
	a.Author = existing.Author
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE answers
		SET body = $2, updated_at = $3
		WHERE id = $1
	`, a.ID, a.Body, a.UpdatedAt)
	if err != nil {
		return answer.Answer{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return answer.Answer{}, errors.NotFound("answer %s not found", a.ID)
	}
	return a, nil
}

func (s *Store) GetAnswer(ctx context.Context, id string) (answer.Answer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, author_id, author_username, body, created_at, updated_at
		FROM answers
		WHERE id = $1
	`, id)

	var a answer.Answer
	if err := row.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Author, &a.Body, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return answer.Answer{}, errors.NotFound("answer %s not found", id)
		}
		return answer.Answer{}, err
	}
	return a, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]answer.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, author_id, author_username, body, created_at, updated_at
		FROM answers
		WHERE question_id = $1
		ORDER BY created_at DESC
	`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []answer.Answer
	for rows.Next() {
		var a answer.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Author, &a.Body, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM answers WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.NotFound("answer %s not found", id)
	}
	return nil
}

func (s *Store) CountAnswers(ctx context.Context, questionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM answers WHERE question_id = $1
	`, questionID).Scan(&count)
	return count, err
}

func (s *Store) HasAnswerBy(ctx context.Context, questionID, authorID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM answers WHERE question_id = $1 AND author_id = $2
		)
	`, questionID, authorID).Scan(&exists)
	return exists, err
}

func (s *Store) SetAnswerVote(ctx context.Context, answerID, userID string, dir vote.Direction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answer_votes (answer_id, user_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (answer_id, user_id) DO UPDATE SET direction = EXCLUDED.direction
	`, answerID, userID, string(dir))
	if isPQCode(err, pqForeignKeyViolation) {
		return errors.NotFound("answer %s not found", answerID)
	}
	return err
}

func (s *Store) ClearAnswerVote(ctx context.Context, answerID, userID string, dir vote.Direction) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM answer_votes
		WHERE answer_id = $1 AND user_id = $2 AND direction = $3
	`, answerID, userID, string(dir))
	return err
}

func (s *Store) AnswerVotes(ctx context.Context, answerID string) (vote.Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, direction
		FROM answer_votes
		WHERE answer_id = $1
		ORDER BY user_id
	`, answerID)
	if err != nil {
		return vote.Set{}, err
	}
	defer rows.Close()

	return scanVotes(rows)
}

// --- TagStore ---------------------------------------------------------------

func (s *Store) CreateTag(ctx context.Context, t tag.Tag) (tag.Tag, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, question_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.QuestionID, t.Name, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return tag.Tag{}, errors.NotFound("question %s not found", t.QuestionID)
		}
		return tag.Tag{}, err
	}
	return t, nil
}

func (s *Store) UpdateTag(ctx context.Context, t tag.Tag) (tag.Tag, error) {
	existing, err := s.GetTag(ctx, t.ID)
	if err != nil {
		return tag.Tag{}, err
	}

	t.QuestionID = existing.QuestionID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tags
		SET name = $2, updated_at = $3
		WHERE id = $1
	`, t.ID, t.Name, t.UpdatedAt)
	if err != nil {
		return tag.Tag{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return tag.Tag{}, errors.NotFound("tag %s not found", t.ID)
	}
	return t, nil
}

func (s *Store) GetTag(ctx context.Context, id string) (tag.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, name, created_at, updated_at
		FROM tags
		WHERE id = $1
	`, id)

	var t tag.Tag
	if err := row.Scan(&t.ID, &t.QuestionID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return tag.Tag{}, errors.NotFound("tag %s not found", id)
		}
		return tag.Tag{}, err
	}
	return t, nil
}

func (s *Store) ListTags(ctx context.Context, questionID string) ([]tag.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, name, created_at, updated_at
		FROM tags
		WHERE question_id = $1
		ORDER BY created_at DESC
	`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tag.Tag
	for rows.Next() {
		var t tag.Tag
		if err := rows.Scan(&t.ID, &t.QuestionID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM tags WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.NotFound("tag %s not found", id)
	}
	return nil
}

func (s *Store) CountTags(ctx context.Context, questionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tags WHERE question_id = $1
	`, questionID).Scan(&count)
	return count, err
}

// Helpers ---------------------------------------------------------------------

func scanVotes(rows *sql.Rows) (vote.Set, error) {
	var set vote.Set
	for rows.Next() {
		var (
			userID    string
			direction string
		)
		if err := rows.Scan(&userID, &direction); err != nil {
			return vote.Set{}, err
		}
		if vote.Direction(direction) == vote.Up {
			set.Up = append(set.Up, userID)
		} else {
			set.Down = append(set.Down, userID)
		}
	}
	return set, rows.Err()
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
