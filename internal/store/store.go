// Package store provides durable storage for identifier-keyed reference
// data, backed by a human-diffable JSON file.
//
// The store bootstraps itself with caller-supplied defaults on first run,
// rewrites the whole mapping on every save, and makes the rewrite atomic
// via a temp-file-plus-rename so a crash mid-write can never leave a
// half-written file readable as valid.
//
// A file that exists but cannot be parsed is quarantined (renamed beside
// the original) and replaced by the defaults; the load still succeeds but
// returns an *IntegrityError so the caller can warn the operator instead
// of silently running on lost data.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"time"
)

// IntegrityError reports that a reference data file was unreadable and the
// store fell back to defaults. The accompanying records are still usable.
type IntegrityError struct {
	// Path is the file that failed to parse.
	Path string

	// QuarantinePath is where the unreadable file was moved, or empty if
	// the quarantine rename itself failed and the file was left in place.
	QuarantinePath string

	// Err is the underlying parse error.
	Err error
}

func (e *IntegrityError) Error() string {
	if e.QuarantinePath != "" {
		return fmt.Sprintf("unreadable data file %s quarantined to %s: %v", e.Path, e.QuarantinePath, e.Err)
	}
	return fmt.Sprintf("unreadable data file %s (left in place): %v", e.Path, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// IsIntegrityError reports whether err carries an *IntegrityError.
// Uses errors.As to handle wrapped errors.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// Store persists a mapping of identifier to record R as a JSON object.
//
// A Store serializes access through its own API; callers must never touch
// the backing file directly while the store is in use.
type Store[R any] struct {
	path string
}

// New creates a store over the given file path. The file itself is not
// touched until the first Load or Save.
func New[R any](path string) *Store[R] {
	return &Store[R]{path: path}
}

// Path returns the backing file path.
func (s *Store[R]) Path() string {
	return s.path
}

// Load reads the full mapping from disk.
//
// If the file does not exist it is created with the given defaults and a
// copy of the defaults is returned. If the file exists but cannot be
// parsed, it is quarantined, the defaults are returned, and the returned
// error carries an *IntegrityError; the returned mapping is valid in that
// case. Any other failure returns a nil mapping.
func (s *Store[R]) Load(defaults map[string]R) (map[string]R, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.Save(defaults); err != nil {
			return nil, err
		}
		return maps.Clone(defaults), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	var records map[string]R
	if err := json.Unmarshal(data, &records); err != nil {
		return s.quarantine(defaults, err)
	}
	if records == nil {
		records = make(map[string]R)
	}
	return records, nil
}

// quarantine moves the unreadable file aside, re-bootstraps the defaults,
// and reports the whole affair as an *IntegrityError.
func (s *Store[R]) quarantine(defaults map[string]R, parseErr error) (map[string]R, error) {
	ie := &IntegrityError{Path: s.path, Err: parseErr}

	dest := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if renameErr := os.Rename(s.path, dest); renameErr != nil {
		// Leave the unreadable bytes untouched rather than risk losing them.
		return maps.Clone(defaults), ie
	}
	ie.QuarantinePath = dest

	if saveErr := s.Save(defaults); saveErr != nil {
		return maps.Clone(defaults), errors.Join(ie, saveErr)
	}
	return maps.Clone(defaults), ie
}

// Save rewrites the full mapping. The new content is written to a sibling
// temp file, synced, then renamed over the target, so readers either see
// the old complete file or the new complete file.
func (s *Store[R]) Save(records map[string]R) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("save %s: marshal: %w", s.path, err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("save %s: sync: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: close: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: rename: %w", s.path, err)
	}
	return nil
}
