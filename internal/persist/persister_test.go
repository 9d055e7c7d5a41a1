package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/idgen"
	"github.com/BuzzLyutic/todolist/internal/model"
	"github.com/BuzzLyutic/todolist/internal/repo"
	"github.com/BuzzLyutic/todolist/internal/worker"
)

// MockStorage - мок хранилища
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Read(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) Write(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockStorage)
		want      []model.Task
	}{
		{
			name: "absent key",
			setupMock: func(m *MockStorage) {
				m.On("Read", mock.Anything, "todos:v1").Return("", false, nil)
			},
			want: []model.Task{},
		},
		{
			name: "read error",
			setupMock: func(m *MockStorage) {
				m.On("Read", mock.Anything, "todos:v1").Return("", false, errors.New("disk gone"))
			},
			want: []model.Task{},
		},
		{
			name: "corrupt payload",
			setupMock: func(m *MockStorage) {
				m.On("Read", mock.Anything, "todos:v1").Return("{not json", true, nil)
			},
			want: []model.Task{},
		},
		{
			name: "stored list",
			setupMock: func(m *MockStorage) {
				m.On("Read", mock.Anything, "todos:v1").
					Return(`[{"id":"a","text":"x","completed":true,"createdAt":9}]`, true, nil)
			},
			want: []model.Task{{ID: "a", Text: "x", Completed: true, CreatedAt: 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockStorage)
			tt.setupMock(m)

			got := Load(context.Background(), m, "todos:v1", &idgen.Sequence{}, now, zap.NewNop())
			assert.Equal(t, tt.want, got)
			m.AssertExpectations(t)
		})
	}
}

func TestPersister_Save(t *testing.T) {
	tasks := []model.Task{{ID: "a", Text: "x", CreatedAt: 1}}

	m := new(MockStorage)
	m.On("Write", mock.Anything, "todos:v1", `[{"id":"a","text":"x","completed":false,"createdAt":1}]`).Return(nil).Once()

	p := NewPersister(m, "todos:v1", func() []model.Task { return tasks }, nil, zap.NewNop())
	p.Changed()

	m.AssertExpectations(t)
}

func TestPersister_WriteFailureIsSwallowed(t *testing.T) {
	m := new(MockStorage)
	m.On("Write", mock.Anything, "todos:v1", mock.Anything).Return(errors.New("quota exceeded")).Twice()

	p := NewPersister(m, "todos:v1", func() []model.Task { return nil }, worker.Immediate{}, zap.NewNop())

	assert.NotPanics(t, func() {
		p.Changed()
		p.Changed()
	})
	m.AssertExpectations(t)
}

func TestPersister_WritesLatestState(t *testing.T) {
	storage := repo.NewMemoryStorage()
	d := worker.NewDebouncer(20*time.Millisecond, zap.NewNop())
	d.Start(context.Background())

	var mu sync.Mutex
	current := []model.Task{}
	source := func() []model.Task {
		mu.Lock()
		defer mu.Unlock()
		return append([]model.Task(nil), current...)
	}

	p := NewPersister(storage, DefaultKey, source, d, zap.NewNop())
	for i := 0; i < 5; i++ {
		mu.Lock()
		current = append([]model.Task{{ID: fmt.Sprintf("t%d", i), Text: "t"}}, current...)
		mu.Unlock()
		p.Changed()
	}

	assert.Eventually(t, func() bool { return storage.Writes() == 1 }, time.Second, 5*time.Millisecond)
	p.Stop()

	raw, ok, err := storage.Read(context.Background(), DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok := Decode(raw, &idgen.Sequence{}, now)
	require.True(t, ok)
	assert.Len(t, got, 5)
	assert.Equal(t, 1, storage.Writes(), "burst must collapse into one write")
}
