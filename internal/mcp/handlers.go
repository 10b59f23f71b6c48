package mcp

import (
	"context"
	"errors"
	"fmt"

	"mcp-recall/internal/identity"
	"mcp-recall/pkg/types"

	"github.com/go-viper/mapstructure/v2"
)

// identityArgs is embedded in every request struct; per-call identity
// overrides the configured defaults through the resolver.
type identityArgs struct {
	UserID string `mapstructure:"user_id"`
	TeamID string `mapstructure:"team_id"`
}

func (a identityArgs) identity() identity.Identity {
	return identity.Identity{UserID: a.UserID, TeamID: a.TeamID}
}

// decodeArgs decodes raw tool arguments into a typed request. Weak typing
// is required: JSON-RPC numbers arrive as float64.
func decodeArgs(args map[string]interface{}, dst interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type storeRequest struct {
	identityArgs      `mapstructure:",squash"`
	SessionID         string   `mapstructure:"session_id"`
	UserMessage       string   `mapstructure:"user_message"`
	AssistantResponse string   `mapstructure:"assistant_response"`
	Context           []string `mapstructure:"context"`
	Tags              []string `mapstructure:"tags"`
	Source            string   `mapstructure:"source"`
	Visibility        string   `mapstructure:"visibility"`
	ProjectID         string   `mapstructure:"project_id"`
	Domain            string   `mapstructure:"domain"`
}

func (ms *MemoryServer) handleStoreMemory(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var req storeRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, errors.New("session_id is required")
	}

	rec := types.MemoryRecord{
		SessionID:         req.SessionID,
		UserMessage:       req.UserMessage,
		AssistantResponse: req.AssistantResponse,
		Context:           req.Context,
		Tags:              req.Tags,
		Source:            types.Source(req.Source),
		Visibility:        types.Visibility(req.Visibility),
		ProjectID:         req.ProjectID,
		Domain:            req.Domain,
	}
	result, err := ms.service.Store(ctx, req.identity(), rec)
	if err != nil {
		return nil, err
	}

	status := "stored"
	if !result.Persisted {
		status = "not saved"
	}
	return map[string]interface{}{
		"status":     status,
		"id":         result.Record.ID,
		"session_id": result.Record.SessionID,
		"persisted":  result.Persisted,
		"indexed":    result.Indexed,
	}, nil
}

type searchRequest struct {
	identityArgs `mapstructure:",squash"`
	Query        string `mapstructure:"query"`
	SessionID    string `mapstructure:"session_id"`
	Limit        int    `mapstructure:"limit"`
}

func (ms *MemoryServer) handleSearchMemory(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var req searchRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if req.Query == "" {
		return nil, errors.New("query is required")
	}

	results := ms.service.Search(ctx, req.identity(), req.Query, req.SessionID, req.Limit)
	return map[string]interface{}{
		"results": results,
		"count":   len(results),
	}, nil
}

type sessionRequest struct {
	identityArgs `mapstructure:",squash"`
	SessionID    string `mapstructure:"session_id"`
}

func (ms *MemoryServer) handleGetSessionContext(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var req sessionRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, errors.New("session_id is required")
	}

	records, err := ms.service.SessionContext(ctx, req.identity(), req.SessionID)
	if err != nil {
		ms.logger.Warn("session context read failed", "session", req.SessionID, "error", err)
		records = nil
	}
	return map[string]interface{}{
		"session_id": req.SessionID,
		"records":    records,
		"count":      len(records),
	}, nil
}

type promptRequest struct {
	identityArgs `mapstructure:",squash"`
	Message      string `mapstructure:"message"`
	SessionID    string `mapstructure:"session_id"`
	MaxLength    int    `mapstructure:"max_length"`
}

func (ms *MemoryServer) handleBuildContextPrompt(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var req promptRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errors.New("message is required")
	}

	prompt := ms.service.BuildContextPrompt(ctx, req.identity(), req.Message, req.SessionID, req.MaxLength)
	return map[string]interface{}{"prompt": prompt}, nil
}

func (ms *MemoryServer) handleListSessions(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var req identityArgs
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}

	sessions, err := ms.service.ListSessions(ctx, req.identity())
	if err != nil {
		ms.logger.Warn("session listing failed", "error", err)
		sessions = []string{}
	}
	return map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}, nil
}

func (ms *MemoryServer) handleDeleteSession(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var req sessionRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, errors.New("session_id is required")
	}

	found, err := ms.service.DeleteSession(ctx, req.identity(), req.SessionID)
	if err != nil {
		return nil, err
	}
	status := "deleted"
	if !found {
		status = "not found"
	}
	return map[string]interface{}{
		"status":     status,
		"session_id": req.SessionID,
	}, nil
}

func (ms *MemoryServer) handleMemoryStatus(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	return ms.service.Status(), nil
}

func (ms *MemoryServer) handleReloadIndex(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	report, err := ms.service.ReloadFromJournal(ctx)
	if err != nil {
		return nil, err
	}
	return report, nil
}
