// Package identity carries the acting user and team through every memory
// operation. Identity is an explicit per-call value rather than process
// state, so concurrent requests cannot leak into each other's scope.
package identity

import "mcp-recall/pkg/types"

// AnonymousUser is the sentinel owner used when no user can be resolved.
const AnonymousUser = "anonymous"

// Identity names the acting user and team for one call.
type Identity struct {
	UserID string
	TeamID string
}

// IsZero returns true when neither field is set.
func (id Identity) IsZero() bool {
	return id.UserID == "" && id.TeamID == ""
}

// Resolver applies the write-time ownership precedence: caller identity,
// then configured defaults, then values already on the record, then the
// anonymous sentinel.
type Resolver struct {
	DefaultUserID string
	DefaultTeamID string
}

// Resolve fills rec's UserID/TeamID per the precedence and returns the
// effective identity used for file pathing and search filters.
func (r *Resolver) Resolve(id Identity, rec *types.MemoryRecord) Identity {
	eff := Identity{
		UserID: firstNonEmpty(id.UserID, r.DefaultUserID, recUser(rec), AnonymousUser),
		TeamID: firstNonEmpty(id.TeamID, r.DefaultTeamID, recTeam(rec)),
	}
	if rec != nil {
		rec.UserID = eff.UserID
		rec.TeamID = eff.TeamID
	}
	return eff
}

// Effective resolves a read-scope identity with no record in play.
func (r *Resolver) Effective(id Identity) Identity {
	return r.Resolve(id, nil)
}

func recUser(rec *types.MemoryRecord) string {
	if rec == nil {
		return ""
	}
	return rec.UserID
}

func recTeam(rec *types.MemoryRecord) string {
	if rec == nil {
		return ""
	}
	return rec.TeamID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
