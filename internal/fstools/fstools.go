// Package fstools declares the file-system tool collaborators the server
// can host alongside the memory tools. The handlers themselves are plain
// I/O wrappers supplied by the embedding application; only the seams live
// here.
package fstools

import "context"

// PathValidator resolves a raw client-supplied path against an allow-list
// of permitted roots, returning the validated absolute path or an error.
type PathValidator interface {
	Validate(raw string) (string, error)
}

// TreeEntry is one node of a directory_tree result.
type TreeEntry struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"` // "file" or "directory"
	Children []TreeEntry `json:"children,omitempty"`
}

// Handler implements the file tools (read_file, write_file, move_file,
// list_directory, directory_tree, search_files). Every path argument has
// already passed the PathValidator.
type Handler interface {
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, content string) error
	MoveFile(ctx context.Context, source, destination string) error
	ListDirectory(ctx context.Context, path string) ([]string, error)
	DirectoryTree(ctx context.Context, path string) (TreeEntry, error)
	SearchFiles(ctx context.Context, root, pattern string) ([]string, error)
}
