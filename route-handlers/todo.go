package routehandlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coreybb/todo-api/datastore"
	"github.com/coreybb/todo-api/models"
	"github.com/coreybb/todo-api/webutil"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type TodoHandler struct {
	Repo *datastore.TodoRepository
}

func NewTodoHandler(repo *datastore.TodoRepository) *TodoHandler {
	return &TodoHandler{Repo: repo}
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type patchTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type todoListResponse struct {
	Todos []models.Todo `json:"todos"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

// HandleListTodos returns a page of the caller's todos, optionally filtered
// by completion status.
func (h *TodoHandler) HandleListTodos(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	skip, limit, completed, err := parseListQuery(r)
	if err != nil {
		return webutil.ErrBadRequest(err.Error())
	}

	todos, total, err := h.Repo.ListTodos(r.Context(), user.ID, skip, limit, completed)
	if err != nil {
		return fmt.Errorf("failed to list todos for user %s: %w", user.ID, err)
	}
	if todos == nil {
		todos = []models.Todo{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, todoListResponse{
		Todos: todos,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
	return nil
}

// HandleCreateTodo creates a todo owned by the caller.
func (h *TodoHandler) HandleCreateTodo(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var req createTodoRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Title) == "" {
		return webutil.ErrBadRequest("Title is required")
	}

	now := time.Now().UTC()
	newTodo := models.Todo{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Repo.CreateTodo(r.Context(), &newTodo); err != nil {
		return fmt.Errorf("failed to create todo for user %s: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, newTodo)
	return nil
}

// HandleGetTodo returns one of the caller's todos. A todo owned by another
// user is reported as not found, never as forbidden.
func (h *TodoHandler) HandleGetTodo(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	todoID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(todoID); err != nil {
		return webutil.ErrBadRequest("Invalid todo ID format")
	}

	todo, err := h.Repo.GetTodoByID(r.Context(), user.ID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to retrieve todo %s: %w", todoID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, todo)
	return nil
}

// HandleReplaceTodo overwrites every mutable field of the todo.
func (h *TodoHandler) HandleReplaceTodo(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	todoID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(todoID); err != nil {
		return webutil.ErrBadRequest("Invalid todo ID format")
	}

	var req createTodoRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Title) == "" {
		return webutil.ErrBadRequest("Title is required")
	}

	todo, err := h.Repo.GetTodoByID(r.Context(), user.ID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to retrieve todo %s: %w", todoID, err)
	}

	todo.Title = req.Title
	todo.Description = req.Description
	todo.Completed = req.Completed
	todo.UpdatedAt = time.Now().UTC()
	if err := h.Repo.UpdateTodo(r.Context(), todo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to update todo %s: %w", todoID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, todo)
	return nil
}

// HandlePatchTodo overwrites only the fields present in the request body.
func (h *TodoHandler) HandlePatchTodo(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	todoID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(todoID); err != nil {
		return webutil.ErrBadRequest("Invalid todo ID format")
	}

	var req patchTodoRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if req.Title == nil && req.Description == nil && req.Completed == nil {
		return webutil.ErrBadRequest("No fields provided for update")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return webutil.ErrBadRequest("Title must not be empty")
	}

	todo, err := h.Repo.GetTodoByID(r.Context(), user.ID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to retrieve todo %s: %w", todoID, err)
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedAt = time.Now().UTC()
	if err := h.Repo.UpdateTodo(r.Context(), todo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to update todo %s: %w", todoID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, todo)
	return nil
}

// HandleDeleteTodo removes one of the caller's todos. Deleting an absent id
// fails with the same 404 every time, so the operation is safely repeatable.
func (h *TodoHandler) HandleDeleteTodo(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	todoID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(todoID); err != nil {
		return webutil.ErrBadRequest("Invalid todo ID format")
	}

	todo, err := h.Repo.GetTodoByID(r.Context(), user.ID, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to retrieve todo %s: %w", todoID, err)
	}
	if err := h.Repo.DeleteTodo(r.Context(), user.ID, todoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Todo not found")
		}
		return fmt.Errorf("failed to delete todo %s: %w", todoID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Todo '%s' deleted successfully", todo.Title),
	})
	return nil
}

// HandleGetTodoStats returns completion counts over the caller's todos.
func (h *TodoHandler) HandleGetTodoStats(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	stats, err := h.Repo.GetTodoStats(r.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to get todo stats for user %s: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, stats)
	return nil
}

// parseListQuery reads skip/limit/completed query parameters. The limit is
// capped at maxListLimit to bound response size.
func parseListQuery(r *http.Request) (skip, limit int, completed *bool, err error) {
	skip = 0
	limit = defaultListLimit
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, nil, errors.New("skip must be a non-negative integer")
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, nil, errors.New("limit must be a positive integer")
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if raw := q.Get("completed"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return 0, 0, nil, errors.New("completed must be true or false")
		}
		completed = &value
	}
	return skip, limit, completed, nil
}
