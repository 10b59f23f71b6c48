package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/fredcamaral/gomcp-sdk"
)

// RegisterFileTools exposes the plugged file-system collaborators as MCP
// tools. Callers that never plug a handler get a memory-only server.
func (ms *MemoryServer) RegisterFileTools() error {
	if ms.fsHandler == nil || ms.fsValidator == nil {
		return errors.New("file tool handler and path validator must be set")
	}

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		"read_file", "Read a file inside the sandbox.",
		mcpsdk.ObjectSchema("Read parameters", map[string]interface{}{
			"path": map[string]interface{}{"type": "string"},
		}, []string{"path"}),
	), mcpsdk.ToolHandlerFunc(func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, err := ms.validatedPath(args, "path")
		if err != nil {
			return nil, err
		}
		content, err := ms.fsHandler.ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"content": content}, nil
	}))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		"write_file", "Write a file inside the sandbox.",
		mcpsdk.ObjectSchema("Write parameters", map[string]interface{}{
			"path":    map[string]interface{}{"type": "string"},
			"content": map[string]interface{}{"type": "string"},
		}, []string{"path", "content"}),
	), mcpsdk.ToolHandlerFunc(func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, err := ms.validatedPath(args, "path")
		if err != nil {
			return nil, err
		}
		content, _ := args["content"].(string)
		if err := ms.fsHandler.WriteFile(ctx, path, content); err != nil {
			return nil, err
		}
		return map[string]interface{}{"status": "written", "path": path}, nil
	}))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		"move_file", "Move or rename a file inside the sandbox.",
		mcpsdk.ObjectSchema("Move parameters", map[string]interface{}{
			"source":      map[string]interface{}{"type": "string"},
			"destination": map[string]interface{}{"type": "string"},
		}, []string{"source", "destination"}),
	), mcpsdk.ToolHandlerFunc(func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		source, err := ms.validatedPath(args, "source")
		if err != nil {
			return nil, err
		}
		destination, err := ms.validatedPath(args, "destination")
		if err != nil {
			return nil, err
		}
		if err := ms.fsHandler.MoveFile(ctx, source, destination); err != nil {
			return nil, err
		}
		return map[string]interface{}{"status": "moved"}, nil
	}))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		"list_directory", "List directory entries inside the sandbox.",
		mcpsdk.ObjectSchema("List parameters", map[string]interface{}{
			"path": map[string]interface{}{"type": "string"},
		}, []string{"path"}),
	), mcpsdk.ToolHandlerFunc(func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, err := ms.validatedPath(args, "path")
		if err != nil {
			return nil, err
		}
		entries, err := ms.fsHandler.ListDirectory(ctx, path)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"entries": entries}, nil
	}))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		"directory_tree", "Return the recursive tree of a sandbox directory.",
		mcpsdk.ObjectSchema("Tree parameters", map[string]interface{}{
			"path": map[string]interface{}{"type": "string"},
		}, []string{"path"}),
	), mcpsdk.ToolHandlerFunc(func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, err := ms.validatedPath(args, "path")
		if err != nil {
			return nil, err
		}
		tree, err := ms.fsHandler.DirectoryTree(ctx, path)
		if err != nil {
			return nil, err
		}
		return tree, nil
	}))

	ms.mcpServer.AddTool(mcpsdk.NewTool(
		"search_files", "Search for files by name pattern inside the sandbox.",
		mcpsdk.ObjectSchema("Search parameters", map[string]interface{}{
			"path":    map[string]interface{}{"type": "string"},
			"pattern": map[string]interface{}{"type": "string"},
		}, []string{"path", "pattern"}),
	), mcpsdk.ToolHandlerFunc(func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		root, err := ms.validatedPath(args, "path")
		if err != nil {
			return nil, err
		}
		pattern, _ := args["pattern"].(string)
		matches, err := ms.fsHandler.SearchFiles(ctx, root, pattern)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"matches": matches}, nil
	}))

	return nil
}

func (ms *MemoryServer) validatedPath(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return "", errors.New(key + " is required")
	}
	return ms.fsValidator.Validate(raw)
}
