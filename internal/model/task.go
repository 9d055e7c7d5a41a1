package model

// Task is a single to-do item. ID is the only equality key.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"` // epoch ms
}

type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterActive    FilterMode = "active"
	FilterCompleted FilterMode = "completed"
)

// FilterModes lists the accepted filter values.
var FilterModes = []FilterMode{FilterAll, FilterActive, FilterCompleted}

// ParseFilterMode returns ok=false for anything outside FilterModes.
func ParseFilterMode(s string) (FilterMode, bool) {
	for _, m := range FilterModes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Match reports whether t is visible under the mode.
func (m FilterMode) Match(t Task) bool {
	switch m {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
