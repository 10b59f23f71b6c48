package mcp

import (
	mcpsdk "github.com/fredcamaral/gomcp-sdk"
)

// Tool names exposed by the memory subsystem.
const (
	ToolStoreMemory        = "store_conversation_memory"
	ToolSearchMemory       = "search_conversation_memory"
	ToolGetSessionContext  = "get_session_context"
	ToolBuildContextPrompt = "build_context_prompt"
	ToolListSessions       = "list_memory_sessions"
	ToolDeleteSession      = "delete_memory_session"
	ToolMemoryStatus       = "memory_status"
	ToolReloadIndex        = "reload_memory_index"
)

// identityProps are shared by every tool: an optional per-call identity
// overriding the configured defaults.
func identityProps() map[string]interface{} {
	return map[string]interface{}{
		"user_id": map[string]interface{}{
			"type":        "string",
			"description": "Acting user; defaults to the configured identity",
		},
		"team_id": map[string]interface{}{
			"type":        "string",
			"description": "Acting team; defaults to the configured identity",
		},
	}
}

func withIdentityProps(props map[string]interface{}) map[string]interface{} {
	for k, v := range identityProps() {
		props[k] = v
	}
	return props
}

// registerMemoryTools registers the 8 conversational memory tools.
func (ms *MemoryServer) registerMemoryTools() {
	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolStoreMemory,
		"Store one conversation exchange (user message + assistant response) in durable memory and, when available, the vector index. Use the same session_id to group exchanges of one ongoing conversation.",
		mcpsdk.ObjectSchema("Store parameters", withIdentityProps(map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Groups exchanges of one conversation; created implicitly on first store",
			},
			"user_message": map[string]interface{}{
				"type":        "string",
				"description": "The user's message, stored verbatim",
			},
			"assistant_response": map[string]interface{}{
				"type":        "string",
				"description": "The assistant's response, stored verbatim",
			},
			"context": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Ordered annotations such as 'file: x.ts' or 'url: https://…'",
			},
			"tags": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Category labels used by keyword search",
			},
			"source": map[string]interface{}{
				"type": "string",
				"enum": []string{"user_provided", "engineer_added", "system_generated", "external_api", "document_parsed"},
			},
			"visibility": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"private", "team", "public"},
				"description": "Who may see this record through search; defaults to private",
			},
			"project_id": map[string]interface{}{"type": "string"},
			"domain":     map[string]interface{}{"type": "string"},
		}), []string{"session_id", "user_message", "assistant_response"}),
	), mcpsdk.ToolHandlerFunc(ms.handleStoreMemory))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolSearchMemory,
		"Search stored conversation memory by similarity. Falls back to keyword matching over the caller's own sessions when the vector backend is unavailable; always returns a result set, possibly empty.",
		mcpsdk.ObjectSchema("Search parameters", withIdentityProps(map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Free-text query",
			},
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Restrict the search to one session",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum results, default 5",
			},
		}), []string{"query"}),
	), mcpsdk.ToolHandlerFunc(ms.handleSearchMemory))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolGetSessionContext,
		"Return every stored exchange of one session in append order.",
		mcpsdk.ObjectSchema("Session context parameters", withIdentityProps(map[string]interface{}{
			"session_id": map[string]interface{}{"type": "string"},
		}), []string{"session_id"}),
	), mcpsdk.ToolHandlerFunc(ms.handleGetSessionContext))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolBuildContextPrompt,
		"Build a bounded prompt fragment from the memories most relevant to the current message. Returns an empty string when nothing relevant is stored.",
		mcpsdk.ObjectSchema("Prompt parameters", withIdentityProps(map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "The current user message",
			},
			"session_id": map[string]interface{}{"type": "string"},
			"max_length": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum prompt characters, default 2000",
			},
		}), []string{"message"}),
	), mcpsdk.ToolHandlerFunc(ms.handleBuildContextPrompt))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolListSessions,
		"List the caller's memory sessions.",
		mcpsdk.ObjectSchema("List parameters", identityProps(), []string{}),
	), mcpsdk.ToolHandlerFunc(ms.handleListSessions))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolDeleteSession,
		"Delete one session's durable log and its vector index entries. Deleting an absent session reports not-found rather than failing.",
		mcpsdk.ObjectSchema("Delete parameters", withIdentityProps(map[string]interface{}{
			"session_id": map[string]interface{}{"type": "string"},
		}), []string{"session_id"}),
	), mcpsdk.ToolHandlerFunc(ms.handleDeleteSession))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolMemoryStatus,
		"Report memory subsystem health: vector backend state and journal location.",
		mcpsdk.ObjectSchema("Status parameters", map[string]interface{}{}, []string{}),
	), mcpsdk.ToolHandlerFunc(ms.handleMemoryStatus))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		ToolReloadIndex,
		"Replay every durable-log record into the vector index. Intended as a one-shot recovery job after the vector backend was rebuilt.",
		mcpsdk.ObjectSchema("Reload parameters", map[string]interface{}{}, []string{}),
	), mcpsdk.ToolHandlerFunc(ms.handleReloadIndex))
}
