package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Port is the durable key/value storage everything else persists through.
//
// Get reports false both for missing keys and for storage that can't be read.
// Read tells the two apart: a missing key is ("", false, nil), a failed read
// returns the error. Callers treat Set/Remove failures as best-effort.
type Port interface {
	Get(key string) (string, bool)
	Read(key string) (string, bool, error)
	Set(key, value string) error
	Keys(prefix string) []string
	Remove(key string) error
}

// PrefixReplacer is implemented by ports that can swap every key under a
// prefix for a new set of values in one atomic step.
type PrefixReplacer interface {
	ReplacePrefix(prefix string, values map[string]string) error
}

// ErrQuotaExceeded is returned by Memory when it has been told to reject writes.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrUnavailable is returned by Memory when it has been told to reject reads.
var ErrUnavailable = errors.New("storage unavailable")

// Memory is an in-process Port, used by tests and as a fallback when the
// on-disk store can't be opened.
type Memory struct {
	mu sync.Mutex
	m  map[string]string

	// FailWrites makes Set, Remove and ReplacePrefix return ErrQuotaExceeded.
	FailWrites bool
	// FailReads makes Read return ErrUnavailable (and Get report false).
	FailReads bool
}

func NewMemory(seed map[string]string) *Memory {
	m := &Memory{m: map[string]string{}}
	for k, v := range seed {
		m.m[k] = v
	}
	return m
}

func (m *Memory) Get(key string) (string, bool) {
	v, ok, _ := m.Read(key)
	return v, ok
}

func (m *Memory) Read(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return "", false, ErrUnavailable
	}
	v, ok := m.m[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrQuotaExceeded
	}
	m.m[key] = value
	return nil
}

func (m *Memory) Keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.m))
	for k := range m.m {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrQuotaExceeded
	}
	delete(m.m, key)
	return nil
}

func (m *Memory) ReplacePrefix(prefix string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrQuotaExceeded
	}
	for k := range m.m {
		if strings.HasPrefix(k, prefix) {
			delete(m.m, k)
		}
	}
	for k, v := range values {
		m.m[k] = v
	}
	return nil
}

// Snapshot returns a copy of every stored pair.
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
