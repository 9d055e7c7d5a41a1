package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/idgen"
	"github.com/BuzzLyutic/todolist/internal/model"
	"github.com/BuzzLyutic/todolist/internal/repo"
	"github.com/BuzzLyutic/todolist/internal/service"
)

func setupHandler(t *testing.T) (*TodoHandler, *repo.MemoryStorage) {
	t.Helper()
	storage := repo.NewMemoryStorage()
	store := service.NewTaskListStore(context.Background(), storage,
		service.WithIDGenerator(&idgen.Sequence{Prefix: "id-"}),
		service.WithClock(func() int64 { return 1000 }),
	)
	t.Cleanup(store.Close)

	return NewTodoHandler(store, zap.NewNop()), storage
}

// do отправляет запрос через роутер
func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func addTodo(t *testing.T, h http.Handler, text string) model.Task {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/todos", draftRequest{Text: text})
	require.Equal(t, http.StatusCreated, w.Code)

	var task model.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
	return task
}

func TestTodoHandler_Create(t *testing.T) {
	tests := []struct {
		name          string
		body          interface{}
		wantCode      int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:     "successful creation",
			body:     draftRequest{Text: "  buy milk  "},
			wantCode: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var task model.Task
				json.NewDecoder(w.Body).Decode(&task)
				assert.Equal(t, "id-1", task.ID)
				assert.Equal(t, "buy milk", task.Text)
				assert.False(t, task.Completed)
				assert.Equal(t, int64(1000), task.CreatedAt)
				assert.Equal(t, "/api/todos/id-1", w.Header().Get("Location"))
			},
		},
		{
			name:     "blank draft",
			body:     draftRequest{Text: "   "},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "no body and no draft",
			body:     nil,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "invalid json",
			body:     `{"text":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown field",
			body:     `{"title":"x"}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupHandler(t)
			w := do(t, NewRouter(h), http.MethodPost, "/api/todos", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestTodoHandler_CreateFromDraft(t *testing.T) {
	h, _ := setupHandler(t)
	router := NewRouter(h)

	w := do(t, router, http.MethodPut, "/api/draft", draftRequest{Text: " from draft "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"draft":" from draft "}`, w.Body.String())

	// POST без тела коммитит текущий черновик
	w = do(t, router, http.MethodPost, "/api/todos", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var task model.Task
	json.NewDecoder(w.Body).Decode(&task)
	assert.Equal(t, "from draft", task.Text)
	assert.Empty(t, h.store.Draft())
}

func TestTodoHandler_BlankDraftIsKept(t *testing.T) {
	h, _ := setupHandler(t)
	router := NewRouter(h)

	do(t, router, http.MethodPut, "/api/draft", draftRequest{Text: "   "})
	w := do(t, router, http.MethodPost, "/api/todos", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "   ", h.store.Draft())
}

func TestTodoHandler_ToggleAndDelete(t *testing.T) {
	h, storage := setupHandler(t)
	router := NewRouter(h)

	a := addTodo(t, router, "a")
	b := addTodo(t, router, "b")
	writes := storage.Writes()

	t.Run("toggle existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/todos/"+a.ID+"/toggle", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", a.ID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		w := httptest.NewRecorder()
		h.Toggle(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 1, h.store.Remaining())
		assert.Equal(t, writes+1, storage.Writes())
	})

	t.Run("toggle unknown is silent", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/todos/nope/toggle", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 1, h.store.Remaining())
	})

	t.Run("delete", func(t *testing.T) {
		w := do(t, router, http.MethodDelete, "/api/todos/"+b.ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{a.ID}, todoIDs(h.store.Todos()))
	})

	t.Run("delete unknown is silent", func(t *testing.T) {
		w := do(t, router, http.MethodDelete, "/api/todos/"+b.ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Len(t, h.store.Todos(), 1)
	})
}

func TestTodoHandler_ClearCompleted(t *testing.T) {
	h, _ := setupHandler(t)
	router := NewRouter(h)

	a := addTodo(t, router, "a")
	addTodo(t, router, "b")
	do(t, router, http.MethodPost, "/api/todos/"+a.ID+"/toggle", nil)

	w := do(t, router, http.MethodPost, "/api/todos/clear-completed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":1}`, w.Body.String())
	assert.Len(t, h.store.Todos(), 1)
}

func TestTodoHandler_Filter(t *testing.T) {
	h, _ := setupHandler(t)
	router := NewRouter(h)

	a := addTodo(t, router, "a")
	addTodo(t, router, "b")
	do(t, router, http.MethodPost, "/api/todos/"+a.ID+"/toggle", nil)

	tests := []struct {
		name       string
		filter     string
		wantFilter string
		wantIDs    []string
	}{
		{name: "active", filter: "active", wantFilter: "active", wantIDs: []string{"id-2"}},
		{name: "bogus keeps previous", filter: "bogus", wantFilter: "active", wantIDs: []string{"id-2"}},
		{name: "completed", filter: "completed", wantFilter: "completed", wantIDs: []string{"id-1"}},
		{name: "all", filter: "all", wantFilter: "all", wantIDs: []string{"id-2", "id-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPut, "/api/filter", filterRequest{Filter: tt.filter})
			require.Equal(t, http.StatusOK, w.Code)

			var got map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.wantFilter, got["filter"])

			w = do(t, router, http.MethodGet, "/api/todos", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var tasks []model.Task
			require.NoError(t, json.NewDecoder(w.Body).Decode(&tasks))
			assert.Equal(t, tt.wantIDs, todoIDs(tasks))
		})
	}

	t.Run("query parameter", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/todos?filter=completed", nil)
		var tasks []model.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&tasks))
		assert.Equal(t, []string{"id-1"}, todoIDs(tasks))
		assert.Equal(t, model.FilterCompleted, h.store.Filter())
	})
}

func TestTodoHandler_Move(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantIDs  []string
	}{
		{name: "by index", body: `{"from":0,"to":2}`, wantCode: http.StatusOK, wantIDs: []string{"id-2", "id-1", "id-3"}},
		{name: "same index", body: `{"from":0,"to":0}`, wantCode: http.StatusOK, wantIDs: []string{"id-3", "id-2", "id-1"}},
		{name: "out of range", body: `{"from":0,"to":9}`, wantCode: http.StatusOK, wantIDs: []string{"id-3", "id-2", "id-1"}},
		{name: "by id", body: `{"fromId":"id-1","toId":"id-3"}`, wantCode: http.StatusOK, wantIDs: []string{"id-1", "id-3", "id-2"}},
		{name: "unknown id", body: `{"fromId":"x","toId":"y"}`, wantCode: http.StatusOK, wantIDs: []string{"id-3", "id-2", "id-1"}},
		{name: "missing target", body: `{"from":1}`, wantCode: http.StatusBadRequest, wantIDs: []string{"id-3", "id-2", "id-1"}},
		{name: "empty body", body: ``, wantCode: http.StatusBadRequest, wantIDs: []string{"id-3", "id-2", "id-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupHandler(t)
			router := NewRouter(h)
			for _, text := range []string{"a", "b", "c"} {
				addTodo(t, router, text)
			}

			w := do(t, router, http.MethodPost, "/api/todos/move", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantIDs, todoIDs(h.store.Todos()))
		})
	}
}

func TestTodoHandler_State(t *testing.T) {
	h, _ := setupHandler(t)
	router := NewRouter(h)

	a := addTodo(t, router, "a")
	addTodo(t, router, "b")
	do(t, router, http.MethodPost, "/api/todos/"+a.ID+"/toggle", nil)
	do(t, router, http.MethodPut, "/api/draft", draftRequest{Text: "next"})
	do(t, router, http.MethodPut, "/api/filter", filterRequest{Filter: "active"})

	w := do(t, router, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state service.State
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, "next", state.Draft)
	assert.Equal(t, model.FilterActive, state.Filter)
	assert.Equal(t, 1, state.Remaining)
	assert.True(t, state.HasTodos)
	assert.Equal(t, []string{"id-2", "id-1"}, todoIDs(state.Todos))
	assert.Equal(t, []string{"id-2"}, todoIDs(state.FilteredTodos))
}

func TestHealth(t *testing.T) {
	h, _ := setupHandler(t)
	w := do(t, NewRouter(h), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "ok"))
}

func todoIDs(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
