// Package types provides core data structures for the memory server:
// conversation records, visibility scopes, and record sources.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visibility controls who may see a record through search.
type Visibility string

const (
	// VisibilityPrivate restricts a record to its owning user.
	VisibilityPrivate Visibility = "private"
	// VisibilityTeam shares a record within the owning team.
	VisibilityTeam Visibility = "team"
	// VisibilityPublic shares a record globally.
	VisibilityPublic Visibility = "public"
)

// Valid returns true if the visibility is a known value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityTeam, VisibilityPublic:
		return true
	}
	return false
}

// Source identifies where a record originated.
type Source string

const (
	// SourceUserProvided marks content supplied directly by the user.
	SourceUserProvided Source = "user_provided"
	// SourceEngineerAdded marks content added manually by an engineer.
	SourceEngineerAdded Source = "engineer_added"
	// SourceSystemGenerated marks content produced by the system itself.
	SourceSystemGenerated Source = "system_generated"
	// SourceExternalAPI marks content imported from an external API.
	SourceExternalAPI Source = "external_api"
	// SourceDocumentParsed marks content extracted from a parsed document.
	SourceDocumentParsed Source = "document_parsed"
)

// Valid returns true if the source is a known value.
func (s Source) Valid() bool {
	switch s {
	case SourceUserProvided, SourceEngineerAdded, SourceSystemGenerated, SourceExternalAPI, SourceDocumentParsed:
		return true
	}
	return false
}

// MemoryRecord is one stored conversation exchange. Records are immutable
// once written; they are removed only by deleting their whole session.
type MemoryRecord struct {
	ID                string     `json:"id,omitempty"`
	SessionID         string     `json:"session_id"`
	Timestamp         int64      `json:"timestamp"`
	UserMessage       string     `json:"user_message"`
	AssistantResponse string     `json:"assistant_response"`
	Context           []string   `json:"context,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Source            Source     `json:"source"`
	UserID            string     `json:"user_id"`
	TeamID            string     `json:"team_id,omitempty"`
	Visibility        Visibility `json:"visibility"`
	ProjectID         string     `json:"project_id,omitempty"`
	Domain            string     `json:"domain,omitempty"`
}

// Validate checks the record is storable. Enrichment defaults (ID,
// timestamp, visibility, source) are applied by Enrich before validation.
func (r *MemoryRecord) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session_id is required")
	}
	if !r.Source.Valid() {
		return fmt.Errorf("invalid source: %q", r.Source)
	}
	if !r.Visibility.Valid() {
		return fmt.Errorf("invalid visibility: %q", r.Visibility)
	}
	return nil
}

// Enrich fills generated and defaulted fields on a new record.
func (r *MemoryRecord) Enrich() {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
	if r.Visibility == "" {
		r.Visibility = VisibilityPrivate
	}
	if r.Source == "" {
		r.Source = SourceUserProvided
	}
}

// LegacyKey is the historical session+timestamp storage key. It is not
// collision-proof: two records in one session within the same millisecond
// share it. Kept only for records persisted before generated IDs existed.
func (r *MemoryRecord) LegacyKey() string {
	return r.SessionID + "_" + strconv.FormatInt(r.Timestamp, 10)
}

// VectorKey is the record's identity in the vector index.
func (r *MemoryRecord) VectorKey() string {
	if r.ID != "" {
		return r.ID
	}
	return r.LegacyKey()
}

// Document is the text body indexed for similarity search.
func (r *MemoryRecord) Document() string {
	return r.UserMessage + "\n" + r.AssistantResponse
}

// SearchableText is the lowercase haystack used by the keyword fallback.
func (r *MemoryRecord) SearchableText() string {
	return strings.ToLower(r.UserMessage + " " + r.AssistantResponse + " " + strings.Join(r.Tags, " "))
}
