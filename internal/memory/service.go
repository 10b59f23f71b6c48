// Package memory composes the durable journal and the vector index into the
// conversational memory service: validated writes to both backends, search
// with guaranteed fallback, bounded prompt building, session management,
// and journal-to-index reconciliation.
package memory

import (
	"context"
	"sync"

	"mcp-recall/internal/chroma"
	"mcp-recall/internal/config"
	"mcp-recall/internal/identity"
	"mcp-recall/internal/journal"
	"mcp-recall/internal/logging"
	"mcp-recall/pkg/types"
)

// BackendState reports the vector backend from the service's point of view.
type BackendState string

const (
	// StateOK means the vector backend is provisioned and taking calls.
	StateOK BackendState = "ok"
	// StateDegraded means the backend was unreachable or erroring; the
	// service runs JSON-only and search uses the keyword fallback.
	StateDegraded BackendState = "degraded"
	// StateDisabled means no backend was configured at all.
	StateDisabled BackendState = "disabled"
)

// VectorIndex is the slice of the vector client the service depends on.
type VectorIndex interface {
	WaitReady(ctx context.Context) error
	Provision(ctx context.Context) error
	Add(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}) error
	Query(ctx context.Context, text string, where map[string]interface{}, limit int) ([]chroma.QueryHit, error)
	DeleteWhere(ctx context.Context, where map[string]interface{}) error
}

// Service is the memory subsystem entry point. All operations take an
// explicit identity; none of them keep per-request state on the service.
type Service struct {
	journal  *journal.Store
	index    VectorIndex
	resolver *identity.Resolver
	cfg      config.MemoryConfig
	logger   *logging.Logger

	stateMu sync.RWMutex
	state   BackendState
}

// NewService wires the service. index may be nil (vector search disabled).
func NewService(cfg config.MemoryConfig, store *journal.Store, index VectorIndex, logger *logging.Logger) *Service {
	state := StateDisabled
	if index != nil {
		// Provisional until Init confirms the backend.
		state = StateDegraded
	}
	return &Service{
		journal: store,
		index:   index,
		resolver: &identity.Resolver{
			DefaultUserID: cfg.DefaultUserID,
			DefaultTeamID: cfg.DefaultTeamID,
		},
		cfg:    cfg,
		logger: logger,
		state:  state,
	}
}

// Init performs the bounded startup handshake with the vector backend:
// heartbeat wait, then provisioning. Any failure degrades to JSON-only
// rather than returning an error.
func (s *Service) Init(ctx context.Context) {
	if s.index == nil {
		s.logger.Info("vector backend not configured, running JSON-only")
		return
	}
	if err := s.index.WaitReady(ctx); err != nil {
		s.setState(StateDegraded, "vector backend unreachable at startup", err)
		return
	}
	if err := s.index.Provision(ctx); err != nil {
		s.setState(StateDegraded, "vector collection provisioning failed", err)
		return
	}
	s.setState(StateOK, "vector backend ready", nil)
}

// State returns the current backend state.
func (s *Service) State() BackendState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Service) setState(state BackendState, msg string, err error) {
	s.stateMu.Lock()
	prev := s.state
	s.state = state
	s.stateMu.Unlock()
	if prev == state {
		return
	}
	if state == StateDegraded {
		s.logger.Warn(msg, "previous_state", string(prev), "error", err)
	} else {
		s.logger.Info(msg, "previous_state", string(prev))
	}
}

func (s *Service) vectorUsable() bool {
	return s.index != nil && s.State() == StateOK
}

// Status describes both backends for the memory_status tool.
type Status struct {
	VectorBackend  BackendState `json:"vector_backend"`
	JournalEnabled bool         `json:"journal_enabled"`
	JournalDir     string       `json:"journal_dir"`
}

// Status reports the current subsystem health.
func (s *Service) Status() Status {
	return Status{
		VectorBackend:  s.State(),
		JournalEnabled: !s.cfg.DisableJSON,
		JournalDir:     s.cfg.Dir,
	}
}

// StoreResult reports what happened to one stored record. A failed journal
// write is reported here, not raised: the caller sees "memory not saved".
type StoreResult struct {
	Record    types.MemoryRecord `json:"record"`
	Persisted bool               `json:"persisted"`
	Indexed   bool               `json:"indexed"`
}

// Store validates and enriches the record, appends it to the journal, and
// mirrors it into the vector index. Only validation produces an error;
// backend failures are reflected in the result flags.
func (s *Service) Store(ctx context.Context, id identity.Identity, rec types.MemoryRecord) (StoreResult, error) {
	rec.Enrich()
	if rec.ProjectID == "" {
		rec.ProjectID = s.cfg.DefaultProject
	}
	s.resolver.Resolve(id, &rec)
	if err := rec.Validate(); err != nil {
		return StoreResult{}, err
	}

	result := StoreResult{Record: rec}

	if s.cfg.DisableJSON {
		result.Persisted = true // nothing to persist by configuration
	} else if err := s.journal.Append(ctx, &rec); err != nil {
		s.logger.Error("journal append failed", "session", rec.SessionID, "error", err)
	} else {
		result.Persisted = true
	}

	if s.shouldIndex(&rec) {
		err := s.index.Add(ctx,
			[]string{rec.VectorKey()},
			[]string{rec.Document()},
			[]map[string]interface{}{rec.Metadata()},
		)
		if err != nil {
			s.setState(StateDegraded, "vector add failed, degrading to JSON-only", err)
		} else {
			result.Indexed = true
		}
	}

	return result, nil
}

// shouldIndex applies the private-records policy: when PrivateJSONOnly is
// set, private content lives only in the owner's journal.
func (s *Service) shouldIndex(rec *types.MemoryRecord) bool {
	if !s.vectorUsable() {
		return false
	}
	if s.cfg.PrivateJSONOnly && rec.Visibility == types.VisibilityPrivate {
		return false
	}
	return true
}
