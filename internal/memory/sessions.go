package memory

import (
	"context"
	"errors"

	"mcp-recall/internal/identity"
	"mcp-recall/internal/journal"
	"mcp-recall/pkg/types"
)

// ListSessions enumerates the caller's sessions.
func (s *Service) ListSessions(ctx context.Context, id identity.Identity) ([]string, error) {
	eff := s.resolver.Effective(id)
	return s.journal.ListSessions(ctx, eff.UserID)
}

// SessionContext returns every record of one of the caller's sessions, in
// append order.
func (s *Service) SessionContext(ctx context.Context, id identity.Identity, sessionID string) ([]types.MemoryRecord, error) {
	eff := s.resolver.Effective(id)
	return s.journal.Scan(ctx, eff.UserID, sessionID)
}

// DeleteSession removes the session file and best-effort deletes the
// session's vector entries. The bool reports whether the file existed;
// a vector-side failure degrades but never fails the delete.
func (s *Service) DeleteSession(ctx context.Context, id identity.Identity, sessionID string) (bool, error) {
	eff := s.resolver.Effective(id)

	found := true
	if err := s.journal.DeleteSession(ctx, eff.UserID, sessionID); err != nil {
		if !errors.Is(err, journal.ErrSessionNotFound) {
			return false, err
		}
		found = false
	}

	if s.vectorUsable() {
		where := map[string]interface{}{"session_id": sessionID, "user_id": eff.UserID}
		if err := s.index.DeleteWhere(ctx, where); err != nil {
			s.setState(StateDegraded, "vector delete failed, degrading to JSON-only", err)
		}
	}

	return found, nil
}
