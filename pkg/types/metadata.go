package types

import (
	"strings"
)

// ListSeparator joins context and tag values when flattening metadata. The
// vector backend filters on scalar values only, so list fields are stored as
// a single delimited string.
const ListSeparator = "|"

// Metadata flattens the record to the scalar map shape the vector backend
// accepts alongside the indexed document.
func (r *MemoryRecord) Metadata() map[string]interface{} {
	m := map[string]interface{}{
		"id":         r.ID,
		"session_id": r.SessionID,
		"timestamp":  r.Timestamp,
		"source":     string(r.Source),
		"user_id":    r.UserID,
		"team_id":    r.TeamID,
		"visibility": string(r.Visibility),
	}
	if len(r.Context) > 0 {
		m["context"] = strings.Join(r.Context, ListSeparator)
	}
	if len(r.Tags) > 0 {
		m["tags"] = strings.Join(r.Tags, ListSeparator)
	}
	if r.ProjectID != "" {
		m["project_id"] = r.ProjectID
	}
	if r.Domain != "" {
		m["domain"] = r.Domain
	}
	return m
}

// RecordFromMetadata rebuilds the fields a query result carries. Numeric
// values arrive as float64 from JSON decoding.
func RecordFromMetadata(m map[string]interface{}) MemoryRecord {
	rec := MemoryRecord{
		ID:         stringField(m, "id"),
		SessionID:  stringField(m, "session_id"),
		Source:     Source(stringField(m, "source")),
		UserID:     stringField(m, "user_id"),
		TeamID:     stringField(m, "team_id"),
		Visibility: Visibility(stringField(m, "visibility")),
		ProjectID:  stringField(m, "project_id"),
		Domain:     stringField(m, "domain"),
	}
	switch ts := m["timestamp"].(type) {
	case float64:
		rec.Timestamp = int64(ts)
	case int64:
		rec.Timestamp = ts
	}
	if ctx := stringField(m, "context"); ctx != "" {
		rec.Context = strings.Split(ctx, ListSeparator)
	}
	if tags := stringField(m, "tags"); tags != "" {
		rec.Tags = strings.Split(tags, ListSeparator)
	}
	return rec
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
