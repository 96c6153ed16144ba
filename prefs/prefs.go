// Package prefs provides a small key-value preference store with
// interchangeable backends (JSON file, SQLite, memory).
package prefs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("preference store closed")

// Store is a flat string key-value store. Writes are durable when Set returns.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open opens the store for backend inside dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return OpenFile(filepath.Join(dir, "preferences.json"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "preferences.db"))
	default:
		return nil, fmt.Errorf("unknown preference backend %q", backend)
	}
}

// Bool reads a boolean, returning def when the key is absent.
func Bool(s Store, key string, def bool) (bool, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}

// SetBool stores a boolean.
func SetBool(s Store, key string, v bool) error {
	return s.Set(key, strconv.FormatBool(v))
}

// Int reads an integer, returning def when the key is absent.
func Int(s Store, key string, def int) (int, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

// SetInt stores an integer.
func SetInt(s Store, key string, v int) error {
	return s.Set(key, strconv.Itoa(v))
}

// Copy writes every key of src into dst.
func Copy(dst, src Store) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, err
	}
	for i, k := range keys {
		v, ok, err := src.Get(k)
		if err != nil {
			return i, err
		}
		if !ok {
			continue
		}
		if err := dst.Set(k, v); err != nil {
			return i, fmt.Errorf("copying %s: %w", k, err)
		}
	}
	return len(keys), nil
}
