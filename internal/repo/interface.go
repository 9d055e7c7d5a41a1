package repo

import (
	"context"
	"errors"
)

var (
	ErrorInvalidKey  = errors.New("invalid key")
	ErrorWriteFailed = errors.New("write failed")
)

// Storage - хранилище строк по ключу, в которое сохраняется список задач
type Storage interface {
	// Read возвращает ok=false, если ключа нет
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
}
