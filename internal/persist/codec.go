// Package persist converts the task list to and from its stored form and
// writes it back to storage on a best-effort basis.
//
// Stored form: a JSON array of {"id","text","completed","createdAt"} objects
// under a single versioned key. Reading is tolerant: each field of each entry
// is coerced on its own, so one bad field never drops the whole record.
package persist

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/BuzzLyutic/todolist/internal/idgen"
	"github.com/BuzzLyutic/todolist/internal/model"
)

// DefaultKey is bumped to invalidate previously stored data.
const DefaultKey = "todos:v1"

// Encode always produces an array, "[]" for an empty list.
func Encode(tasks []model.Task) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode returns ok=false when raw is empty, not JSON, or not an array.
// Entries that are not objects are kept with every field defaulted.
func Decode(raw string, gen idgen.Generator, now func() int64) ([]model.Task, bool) {
	if raw == "" {
		return nil, false
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	if entries == nil { // "null"
		return nil, false
	}

	tasks := make([]model.Task, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		t := coerce(looseObject(entry), gen, now)
		if seen[t.ID] {
			t.ID = idgen.Unique(gen, func(id string) bool { return seen[id] })
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	return tasks, true
}

// looseObject decodes one entry with numbers kept as json.Number.
func looseObject(entry json.RawMessage) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(entry))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil
	}
	return obj
}

func coerce(obj map[string]any, gen idgen.Generator, now func() int64) model.Task {
	return model.Task{
		ID:        coerceID(obj["id"], gen),
		Text:      strings.TrimSpace(scalarString(obj["text"])),
		Completed: truthy(obj["completed"]),
		CreatedAt: coerceTimestamp(obj["createdAt"], now),
	}
}

func coerceID(v any, gen idgen.Generator) string {
	switch v.(type) {
	case string, json.Number, bool:
		return scalarString(v)
	default:
		return gen.NewID()
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case json.Number:
		return numberString(x)
	case string, bool:
		return cast.ToString(x)
	default:
		return ""
	}
}

// numberString prints a number by value, not by its source text: 1.0 is "1", 1e2 is "100".
func numberString(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return cast.ToString(i)
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return cast.ToString(int64(f))
	}
	return cast.ToString(f)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			// out of range is still a non-zero number
			return true
		}
		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

func coerceTimestamp(v any, now func() int64) int64 {
	n, ok := v.(json.Number)
	if !ok {
		return now()
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f >= 1<<63 || f < -(1<<63) {
		return now()
	}
	return int64(f)
}
