// Package sysprop persists system properties for the fingerprint
// bridge. It stands in for a platform property service on devices
// where the bridge runs as a plain daemon: a flat key/value YAML
// file, written through on every Set.
package sysprop

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a file-backed property table safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	path  string
	props map[string]string
}

// Open loads the property file at path, creating it and its directory
// when absent.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sysprop: empty store path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("sysprop: create store dir: %w", err)
	}
	s := &Store{path: path, props: map[string]string{}}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sysprop: read store: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s.props); err != nil {
		return nil, fmt.Errorf("sysprop: parse store: %w", err)
	}
	if s.props == nil {
		s.props = map[string]string{}
	}
	return s, nil
}

// Get returns the property value, or the empty string when unset.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props[key]
}

// Set stores the property and writes the table through to disk.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[key] = value
	return s.save()
}

// save goes through a temp file and rename so a crash never leaves a
// half-written table behind.
func (s *Store) save() error {
	raw, err := yaml.Marshal(s.props)
	if err != nil {
		return fmt.Errorf("sysprop: encode store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("sysprop: write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("sysprop: commit store: %w", err)
	}
	return nil
}
