// Package httpapi exposes the forum services as a REST API.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/questionforum/questionforum/internal/app"
	"github.com/questionforum/questionforum/internal/app/domain/vote"
	"github.com/questionforum/questionforum/internal/app/metrics"
	"github.com/questionforum/questionforum/internal/errors"
	"github.com/questionforum/questionforum/internal/middleware"
	"github.com/questionforum/questionforum/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the forum REST API under /api,
// plus /healthz and /metrics.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.LoggingMiddleware(log))

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/questions", h.listQuestions).Methods(http.MethodGet)
	api.HandleFunc("/questions", h.createQuestion).Methods(http.MethodPost)
	api.HandleFunc("/questions/{slug}", h.getQuestion).Methods(http.MethodGet)
	api.HandleFunc("/questions/{slug}", h.updateQuestion).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/questions/{slug}", h.deleteQuestion).Methods(http.MethodDelete)

	api.HandleFunc("/questions/{slug}/like", h.voteQuestion(vote.Up, vote.Add)).Methods(http.MethodPost)
	api.HandleFunc("/questions/{slug}/like", h.voteQuestion(vote.Up, vote.Remove)).Methods(http.MethodDelete)
	api.HandleFunc("/questions/{slug}/dislike", h.voteQuestion(vote.Down, vote.Add)).Methods(http.MethodPost)
	api.HandleFunc("/questions/{slug}/dislike", h.voteQuestion(vote.Down, vote.Remove)).Methods(http.MethodDelete)

	api.HandleFunc("/questions/{slug}/answers", h.listAnswers).Methods(http.MethodGet)
	api.HandleFunc("/questions/{slug}/answers", h.createAnswer).Methods(http.MethodPost)
	api.HandleFunc("/questions/{slug}/answer", h.createAnswer).Methods(http.MethodPost)
	api.HandleFunc("/answers/{id}", h.getAnswer).Methods(http.MethodGet)
	api.HandleFunc("/answers/{id}", h.updateAnswer).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/answers/{id}", h.deleteAnswer).Methods(http.MethodDelete)

	api.HandleFunc("/answers/{id}/like", h.voteAnswer(vote.Up, vote.Add)).Methods(http.MethodPost)
	api.HandleFunc("/answers/{id}/like", h.voteAnswer(vote.Up, vote.Remove)).Methods(http.MethodDelete)
	api.HandleFunc("/answers/{id}/dislike", h.voteAnswer(vote.Down, vote.Add)).Methods(http.MethodPost)
	api.HandleFunc("/answers/{id}/dislike", h.voteAnswer(vote.Down, vote.Remove)).Methods(http.MethodDelete)

	api.HandleFunc("/questions/{slug}/tags", h.listTags).Methods(http.MethodGet)
	api.HandleFunc("/questions/{slug}/tags", h.createTag).Methods(http.MethodPost)
	api.HandleFunc("/questions/{slug}/tag", h.createTag).Methods(http.MethodPost)
	api.HandleFunc("/tags/{id}", h.getTag).Methods(http.MethodGet)
	api.HandleFunc("/tags/{id}", h.updateTag).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/tags/{id}", h.deleteTag).Methods(http.MethodDelete)

	return stripTrailingSlash(r)
}

// stripTrailingSlash maps slash-terminated paths onto the registered routes.
// A redirect here would drop POST and DELETE bodies, so the path is rewritten
// in place instead.
func stripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r2 := r.Clone(r.Context())
			r2.URL.Path = strings.TrimSuffix(p, "/")
			r2.URL.RawPath = strings.TrimSuffix(r2.URL.RawPath, "/")
			next.ServeHTTP(w, r2)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	views, err := h.app.Questions.List(r.Context(), actor, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation("invalid request body"))
		return
	}

	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Questions.Create(r.Context(), actor, payload.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Questions.Get(r.Context(), actor, mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := decodeJSONPartial(r.Body, &payload); err != nil {
		writeError(w, errors.Validation("invalid request body"))
		return
	}

	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Questions.Update(r.Context(), actor, mux.Vars(r)["slug"], payload.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	if err := h.app.Questions.Delete(r.Context(), actor, mux.Vars(r)["slug"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) voteQuestion(dir vote.Direction, action vote.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.UserFromContext(r.Context())
		view, err := h.app.Questions.Vote(r.Context(), actor, mux.Vars(r)["slug"], dir, action)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *handler) listAnswers(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	views, err := h.app.Answers.ListForQuestion(r.Context(), actor, mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) createAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation("invalid request body"))
		return
	}

	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Answers.Create(r.Context(), actor, mux.Vars(r)["slug"], payload.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *handler) getAnswer(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Answers.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) updateAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Body string `json:"body"`
	}
	if err := decodeJSONPartial(r.Body, &payload); err != nil {
		writeError(w, errors.Validation("invalid request body"))
		return
	}

	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Answers.Update(r.Context(), actor, mux.Vars(r)["id"], payload.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) deleteAnswer(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	if err := h.app.Answers.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) voteAnswer(dir vote.Direction, action vote.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.UserFromContext(r.Context())
		view, err := h.app.Answers.Vote(r.Context(), actor, mux.Vars(r)["id"], dir, action)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	views, err := h.app.Tags.ListForQuestion(r.Context(), actor, mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) createTag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"tag_name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation("invalid request body"))
		return
	}

	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Tags.Create(r.Context(), actor, mux.Vars(r)["slug"], payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *handler) getTag(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Tags.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) updateTag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"tag_name"`
	}
	if err := decodeJSONPartial(r.Body, &payload); err != nil {
		writeError(w, errors.Validation("invalid request body"))
		return
	}

	actor := middleware.UserFromContext(r.Context())
	view, err := h.app.Tags.Update(r.Context(), actor, mux.Vars(r)["id"], payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	if err := h.app.Tags.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeJSONPartial tolerates extra fields. Update payloads may echo back a
// full view; immutable fields are simply ignored.
func decodeJSONPartial(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
