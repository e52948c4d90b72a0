// Package prefs is the durable key/value preference store the timer survives
// process death with.
package prefs

import (
	"fmt"
	"strings"
	"sync"
)

// KV is a string key/value store. Get reports ok=false for a missing key.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Open selects a KV backend: "sqlite" (path is a database file or
// ":memory:"), "diskv" (path is a directory) or "memory" (path ignored).
func Open(backend, path string) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "sqlite", "":
		return NewSQLite(path)
	case "diskv":
		return NewDiskv(path)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown preference backend %q", backend)
}

// Memory is a process-local KV, used by tests and ephemeral runs.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Close() error { return nil }
