// Package storage provides the key-value backends that hold save data.
package storage

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when the backend is full.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a string-keyed blob store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
