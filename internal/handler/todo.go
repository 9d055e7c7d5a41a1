package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/service"
	"github.com/BuzzLyutic/todolist/pkg/respond"
)

type draftRequest struct {
	Text string `json:"text"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

// moveRequest: либо пара индексов, либо пара id
type moveRequest struct {
	From   *int   `json:"from,omitempty"`
	To     *int   `json:"to,omitempty"`
	FromID string `json:"fromId,omitempty"`
	ToID   string `json:"toId,omitempty"`
}

type TodoHandler struct {
	store  *service.TaskListStore
	logger *zap.Logger
}

func NewTodoHandler(store *service.TaskListStore, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		store:  store,
		logger: logger,
	}
}

func (h *TodoHandler) State(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.store.Snapshot())
}

// List returns the filtered view; ?filter= switches the mode first.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	if filter := r.URL.Query().Get("filter"); filter != "" {
		h.store.SetFilter(filter)
	}
	respond.JSON(w, r, http.StatusOK, h.store.FilteredTodos())
}

func (h *TodoHandler) SetDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := respond.Decode(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.store.SetDraft(req.Text)
	respond.JSON(w, r, http.StatusOK, map[string]string{"draft": h.store.Draft()})
}

// Create commits the draft. A body {"text": ...} replaces the draft first.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	switch err := respond.Decode(r, &req); {
	case err == nil:
		h.store.SetDraft(req.Text)
	case !errors.Is(err, respond.ErrEmptyBody):
		h.badRequest(w, r, err)
		return
	}

	task, ok := h.store.AddTodo()
	if !ok {
		respond.Error(w, r, http.StatusUnprocessableEntity, "draft is empty")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/todos/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.ToggleTodo(id) {
		h.logger.Debug("toggle of unknown todo", zap.String("id", id))
	}
	respond.NoContent(w, r)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.RemoveTodo(id) {
		h.logger.Debug("remove of unknown todo", zap.String("id", id))
	}
	respond.NoContent(w, r)
}

func (h *TodoHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed := h.store.ClearCompleted()
	respond.JSON(w, r, http.StatusOK, map[string]int{"removed": removed})
}

// SetFilter answers with the filter in effect; unknown values leave it unchanged.
func (h *TodoHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := respond.Decode(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.store.SetFilter(req.Filter)
	respond.JSON(w, r, http.StatusOK, map[string]string{"filter": string(h.store.Filter())})
}

func (h *TodoHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := respond.Decode(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	switch {
	case req.FromID != "" || req.ToID != "":
		h.store.MoveByID(req.FromID, req.ToID)
	case req.From != nil && req.To != nil:
		h.store.MoveByIndex(*req.From, *req.To)
	default:
		respond.Error(w, r, http.StatusBadRequest, "from/to or fromId/toId required")
		return
	}

	respond.JSON(w, r, http.StatusOK, h.store.Todos())
}

func (h *TodoHandler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("bad request", zap.String("path", r.URL.Path), zap.Error(err))
	if errors.Is(err, respond.ErrEmptyBody) {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}
	respond.Error(w, r, http.StatusBadRequest, err.Error())
}
