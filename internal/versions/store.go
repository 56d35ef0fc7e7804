// Package versions owns the persisted desired-state document for the
// component fleet: which version each component should be at, and the locked
// version kept as a rollback target.
package versions

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/otiai10/copy"
)

// comment is written into the document so operators editing it by hand know
// the semantics of the two version fields.
const comment = "Version can be: 'latest' (tracks main/master), a git commit SHA, or a git tag. " +
	"Use 'locked_version' to record current stable version for rollback."

// document is the on-disk envelope.
type document struct {
	Comment    string                     `json:"_comment"`
	Components map[string]json.RawMessage `json:"components"`
}

// Store holds the in-memory component mapping and its persistence contract.
// It is loaded once per invocation and written back by an explicit Save.
type Store struct {
	path       string
	components map[string]Component
	logger     *slog.Logger
}

// Load reads the document at path, merged against defaults. A missing or
// unparseable file falls back to the defaults with a logged warning; Load
// never fails.
//
// Merge semantics: components present in defaults but absent from the file
// are inserted with default settings; for components present in both, only
// fields missing from the file entry are backfilled.
func Load(path string, defaults map[string]Component, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, components: make(map[string]Component), logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cannot read versions file, using defaults", "path", path, "error", err)
		}
		for name, c := range defaults {
			s.components[name] = c
		}
		return s
	}

	raw, err := decodeComponents(data)
	if err != nil {
		logger.Warn("versions file is corrupt, using defaults", "path", path, "error", err)
		for name, c := range defaults {
			s.components[name] = c
		}
		return s
	}

	for name, def := range defaults {
		entry, ok := raw[name]
		if !ok {
			s.components[name] = def
			continue
		}
		// Unmarshal on top of the default entry: fields present in the
		// file win, absent fields keep their default values.
		c := def
		if err := json.Unmarshal(entry, &c); err != nil {
			logger.Warn("invalid component entry, using defaults", "component", name, "error", err)
			c = def
		}
		s.components[name] = c
	}

	// Components the operator added that have no built-in default.
	for name, entry := range raw {
		if _, ok := s.components[name]; ok {
			continue
		}
		c := Component{Version: Latest}
		if err := json.Unmarshal(entry, &c); err != nil {
			logger.Warn("invalid component entry, skipping", "component", name, "error", err)
			continue
		}
		s.components[name] = c
	}

	return s
}

// decodeComponents accepts both the commented envelope and a bare
// name-to-component mapping written by older tool versions.
func decodeComponents(data []byte) (map[string]json.RawMessage, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err == nil && doc.Components != nil {
		return doc.Components, nil
	}
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, err
	}
	delete(flat, "_comment")
	return flat, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Names returns all component names in deterministic order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Component returns the named component entry.
func (s *Store) Component(name string) (Component, bool) {
	c, ok := s.components[name]
	return c, ok
}

// Version returns the active version for name, defaulting to Latest.
func (s *Store) Version(name string) string {
	c, ok := s.components[name]
	if !ok || c.Version == "" {
		return Latest
	}
	return c.Version
}

// LockedVersion returns the rollback target for name, or "".
func (s *Store) LockedVersion(name string) string {
	return s.components[name].LockedVersion
}

// IsLocked reports whether name is pinned to a specific commit.
func (s *Store) IsLocked(name string) bool {
	return s.Version(name) != Latest
}

// SetVersion sets the active version for name. Returns false if the
// component does not exist; callers report and skip.
func (s *Store) SetVersion(name, version string) bool {
	c, ok := s.components[name]
	if !ok {
		return false
	}
	c.Version = version
	s.components[name] = c
	return true
}

// Lock pins name to sha, setting both version and locked_version. Locking an
// already-locked component overwrites both fields; lock states never stack.
func (s *Store) Lock(name, sha string) bool {
	c, ok := s.components[name]
	if !ok {
		return false
	}
	c.Version = sha
	c.LockedVersion = sha
	s.components[name] = c
	return true
}

// Unlock sets name back to tracking latest. The locked version is preserved
// as the rollback target.
func (s *Store) Unlock(name string) bool {
	c, ok := s.components[name]
	if !ok {
		return false
	}
	c.Version = Latest
	s.components[name] = c
	return true
}

// Rollback sets the active version to the locked version. Returns false when
// the component does not exist or has no locked version recorded.
func (s *Store) Rollback(name string) bool {
	c, ok := s.components[name]
	if !ok || c.LockedVersion == "" {
		return false
	}
	c.Version = c.LockedVersion
	s.components[name] = c
	return true
}

// Save writes the document back to its path. If a document already exists it
// is first copied to a timestamped sibling; a backup failure is logged but
// never blocks the save. The write itself is atomic (temp file + rename).
func (s *Store) Save() error {
	if _, err := os.Stat(s.path); err == nil {
		backup := fmt.Sprintf("%s.backup_%s", s.path, time.Now().Format("20060102_150405"))
		if err := copy.Copy(s.path, backup); err != nil {
			s.logger.Warn("versions backup failed, saving anyway", "path", backup, "error", err)
		}
	}

	entries := make(map[string]json.RawMessage, len(s.components))
	for name, c := range s.components {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshaling component %s: %w", name, err)
		}
		entries[name] = data
	}
	data, err := json.MarshalIndent(document{Comment: comment, Components: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling versions document: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp versions file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp versions file to %s: %w", s.path, err)
	}
	return nil
}
