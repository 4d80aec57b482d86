package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrExists is returned by SaveAs when a session of that name already
// exists and overwrite was not confirmed (spec §4.6: "'save as' refuses to
// overwrite without confirmation").
var ErrExists = errors.New("session: already exists")

// ErrNotFound is returned by Load/Delete when the named session file does
// not exist.
var ErrNotFound = errors.New("session: not found")

// Store persists sessions under {home}/.kql-panopticon/sessions/, one file
// per session named {name}.json (spec §4.6, §6).
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at {home}/.kql-panopticon/sessions.
func NewStore(home string) *Store {
	return &Store{Dir: filepath.Join(home, ".kql-panopticon", "sessions")}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// Save writes sess, overwriting any existing file of the same name — the
// explicit "save" action (spec §4.6: "'Save' over an existing session
// overwrites").
func (s *Store) Save(sess *Session) error {
	return s.write(sess)
}

// SaveAs writes sess only if no session of that name exists, unless
// overwrite is true.
func (s *Store) SaveAs(sess *Session, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(s.path(sess.Name)); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, sess.Name)
		}
	}
	return s.write(sess)
}

func (s *Store) write(sess *Session) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create session directory %s: %w", s.Dir, err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session %q: %w", sess.Name, err)
	}

	path := s.path(sess.Name)
	tmp, err := os.CreateTemp(s.Dir, ".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		if !ok {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	ok = true
	return nil
}

// Load reads and parses a session by name, clearing its dirty flag (spec
// §4.6: "Load: ... dirty flag cleared").
func (s *Store) Load(name string) (*Session, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read session %q: %w", name, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %q: %w", name, err)
	}
	sess.Dirty = false
	return &sess, nil
}

// Delete removes a session file. If it was the current session, the
// caller is responsible for clearing the current-session pointer (spec
// §4.6: "the current pointer becomes null").
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	return nil
}

// List returns the names of all saved sessions, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions in %s: %w", s.Dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
