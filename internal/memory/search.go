package memory

import (
	"context"
	"strings"

	"mcp-recall/internal/identity"
	"mcp-recall/pkg/types"
)

// FallbackDistance is assigned to every keyword-fallback hit. No genuine
// similarity score exists for substring matches, so all of them carry this
// un-ranked sentinel.
const FallbackDistance = 1.0

// DefaultSearchLimit bounds searches that pass no explicit limit.
const DefaultSearchLimit = 5

// SearchResult is one ranked hit. Vector-path results are ordered by
// ascending distance; fallback results keep journal scan order.
type SearchResult struct {
	Content  string             `json:"content"`
	Record   types.MemoryRecord `json:"record"`
	Distance float64            `json:"distance"`
	Fallback bool               `json:"fallback"`
}

// Search queries the vector index and falls back to a keyword scan of the
// caller's journal when the index is unavailable, erroring, or empty. It
// never fails: no results is an empty slice.
func (s *Service) Search(ctx context.Context, id identity.Identity, query, sessionID string, limit int) []SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	eff := s.resolver.Effective(id)

	if s.vectorUsable() {
		hits, err := s.index.Query(ctx, query, s.searchFilter(eff, sessionID), limit)
		if err != nil {
			s.setState(StateDegraded, "vector query failed, using keyword fallback", err)
		} else if len(hits) > 0 {
			results := make([]SearchResult, 0, len(hits))
			for _, hit := range hits {
				results = append(results, SearchResult{
					Content:  hit.Document,
					Record:   types.RecordFromMetadata(hit.Metadata),
					Distance: hit.Distance,
				})
			}
			return results
		}
	}

	return s.fallbackSearch(ctx, eff, query, sessionID, limit)
}

// searchFilter builds the vector-side visibility filter: session equality
// when scoped, team equality when the caller has one, and never private
// records. Private content is served only from the owner's journal.
func (s *Service) searchFilter(eff identity.Identity, sessionID string) map[string]interface{} {
	where := map[string]interface{}{
		"visibility": map[string]interface{}{
			"$in": []string{string(types.VisibilityTeam), string(types.VisibilityPublic)},
		},
	}
	if sessionID != "" {
		where["session_id"] = sessionID
	}
	if eff.TeamID != "" {
		where["team_id"] = eff.TeamID
	}
	return where
}

// fallbackSearch is the deterministic keyword path: lowercase substring
// match over the caller's own sessions, scan order preserved.
func (s *Service) fallbackSearch(ctx context.Context, eff identity.Identity, query, sessionID string, limit int) []SearchResult {
	records, err := s.journal.Scan(ctx, eff.UserID, sessionID)
	if err != nil {
		s.logger.Warn("fallback journal scan failed", "user", eff.UserID, "error", err)
		return []SearchResult{}
	}

	needle := strings.ToLower(query)
	results := make([]SearchResult, 0, limit)
	for i := range records {
		rec := records[i]
		if !strings.Contains(rec.SearchableText(), needle) {
			continue
		}
		results = append(results, SearchResult{
			Content:  rec.Document(),
			Record:   rec,
			Distance: FallbackDistance,
			Fallback: true,
		})
		if len(results) == limit {
			break
		}
	}
	return results
}
