// Package journal is the durable, append-only record store and the source
// of truth for conversation memory. Each (user, session) pair owns one JSON
// file: <root>/<userID>/<sessionID>.json holding an array of records.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mcp-recall/pkg/types"
)

const fileExt = ".json"

// ErrSessionNotFound is returned by DeleteSession when the session file is
// absent. Callers treat it as success-equivalent absence.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidName rejects user or session identifiers that would escape the
// journal root.
var ErrInvalidName = errors.New("invalid user or session identifier")

// Store persists records under a root directory. Appends to one session are
// serialized with a per-session lock; the file rewrite itself is atomic
// (temp file + rename), so a crash never leaves a truncated session.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on first
// append, not here.
func NewStore(dir string) *Store {
	return &Store{root: dir, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) sessionLock(userID, sessionID string) *sync.Mutex {
	key := userID + "/" + sessionID
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[key] = lk
	}
	return lk
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

func (s *Store) sessionPath(userID, sessionID string) (string, error) {
	if !validName(userID) || !validName(sessionID) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, userID, sessionID+fileExt), nil
}

// Append adds one record to its session file. A missing or corrupt existing
// file is treated as empty rather than failing the write; the previous
// content is preserved under a .corrupt suffix when parsing fails.
func (s *Store) Append(ctx context.Context, rec *types.MemoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.sessionPath(rec.UserID, rec.SessionID)
	if err != nil {
		return err
	}

	lk := s.sessionLock(rec.UserID, rec.SessionID)
	lk.Lock()
	defer lk.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create user directory: %w", err)
	}

	records, err := readSessionFile(path)
	if err != nil {
		// Unparseable history must not block new writes. Keep the bad
		// bytes aside for inspection and start the session over.
		_ = os.Rename(path, path+".corrupt")
		records = nil
	}
	records = append(records, *rec)

	return writeSessionFile(path, records)
}

func readSessionFile(path string) ([]types.MemoryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []types.MemoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func writeSessionFile(path string, records []types.MemoryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// ListSessions enumerates session IDs for one user. A missing user
// directory yields an empty list, not an error.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(userID) {
		return nil, ErrInvalidName
	}
	entries, err := os.ReadDir(filepath.Join(s.root, userID))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, fileExt))
	}
	return sessions, nil
}

// DeleteSession removes one session file. An absent file returns
// ErrSessionNotFound.
func (s *Store) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.sessionPath(userID, sessionID)
	if err != nil {
		return err
	}

	lk := s.sessionLock(userID, sessionID)
	lk.Lock()
	defer lk.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Scan returns the records of one session, or of every session for the
// user when sessionID is empty. Within a session, append order is
// preserved; sessions follow directory-listing order. Corrupt files are
// skipped.
func (s *Store) Scan(ctx context.Context, userID, sessionID string) ([]types.MemoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sessionID != "" {
		path, err := s.sessionPath(userID, sessionID)
		if err != nil {
			return nil, err
		}
		records, err := readSessionFile(path)
		if err != nil {
			return nil, err
		}
		return records, nil
	}

	sessions, err := s.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	var all []types.MemoryRecord
	for _, session := range sessions {
		path, err := s.sessionPath(userID, session)
		if err != nil {
			continue
		}
		records, err := readSessionFile(path)
		if err != nil {
			continue
		}
		all = append(all, records...)
	}
	return all, nil
}

// WalkResult reports one session file visited during a walk.
type WalkResult struct {
	UserID    string
	SessionID string
	Records   []types.MemoryRecord
	Err       error
}

// WalkUsers visits every session file of every user, invoking fn once per
// file. Parse failures are reported through WalkResult.Err rather than
// aborting the walk. fn returning an error stops the walk.
func (s *Store) WalkUsers(ctx context.Context, fn func(WalkResult) error) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("walk journal root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		userID := entry.Name()
		sessions, err := s.ListSessions(ctx, userID)
		if err != nil {
			continue
		}
		for _, session := range sessions {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, perr := s.sessionPath(userID, session)
			if perr != nil {
				continue
			}
			records, rerr := readSessionFile(path)
			result := WalkResult{UserID: userID, SessionID: session, Records: records, Err: rerr}
			if err := fn(result); err != nil {
				return err
			}
		}
	}
	return nil
}
