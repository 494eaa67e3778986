package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

const maxReadBytes = 256 * 1024

// resolveUnderRoot joins a relative path onto the jail root and rejects
// absolute inputs and parent traversal. All file tools go through it.
func resolveUnderRoot(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths are not allowed")
	}
	cleaned := filepath.Clean(rel)
	if cleaned == "" {
		cleaned = "."
	}
	candidate := filepath.Join(root, cleaned)
	if candidate != root && !strings.HasPrefix(candidate, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the tool root")
	}
	return candidate, nil
}

// ReadFile reads a UTF-8 file under the configured root.
type ReadFile struct{ root string }

func NewReadFile(root string) *ReadFile { return &ReadFile{root: root} }

func (t *ReadFile) Schema() tool.Schema {
	return tool.Schema{
		Name:        "read_file",
		Description: "Read a text file relative to the tool file root",
		Params: map[string]tool.Param{
			"path": {Type: tool.TypeString, Description: "Relative file path", Required: true},
		},
	}
}

func (t *ReadFile) Timeout() time.Duration { return 10 * time.Second }

type readFileRequest struct {
	Path string `json:"path"`
}

func (t *ReadFile) Execute(_ context.Context, params map[string]any) tool.Result {
	var req readFileRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid read_file params: %v", err)
	}

	abs, err := resolveUnderRoot(t.root, req.Path)
	if err != nil {
		return tool.Errorf("read_file: %v", err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return tool.Errorf("read_file: %v", err)
	}

	if len(raw) > maxReadBytes {
		return tool.Partial(
			map[string]any{"path": req.Path, "content": string(raw[:maxReadBytes])},
			fmt.Sprintf("file truncated to %d of %d bytes", maxReadBytes, len(raw)),
		)
	}
	return tool.Success(map[string]any{
		"path":    req.Path,
		"content": string(raw),
		"size":    len(raw),
	})
}

// WriteFile writes a file under the configured root. The write goes through
// a temp file and rename so a reported success always refers to a complete,
// flushed file.
type WriteFile struct{ root string }

func NewWriteFile(root string) *WriteFile { return &WriteFile{root: root} }

func (t *WriteFile) Schema() tool.Schema {
	return tool.Schema{
		Name:        "write_file",
		Description: "Write a text file relative to the tool file root, creating parent directories",
		Params: map[string]tool.Param{
			"path":    {Type: tool.TypeString, Description: "Relative file path", Required: true},
			"content": {Type: tool.TypeString, Description: "File content", Required: true},
		},
	}
}

func (t *WriteFile) Timeout() time.Duration { return 10 * time.Second }

type writeFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (t *WriteFile) Execute(_ context.Context, params map[string]any) tool.Result {
	var req writeFileRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid write_file params: %v", err)
	}

	abs, err := resolveUnderRoot(t.root, req.Path)
	if err != nil {
		return tool.Errorf("write_file: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return tool.Errorf("write_file: %v", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".write-*")
	if err != nil {
		return tool.Errorf("write_file: %v", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(req.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return tool.Errorf("write_file: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return tool.Errorf("write_file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return tool.Errorf("write_file: %v", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return tool.Errorf("write_file: %v", err)
	}

	return tool.Success(map[string]any{
		"path":         req.Path,
		"bytesWritten": len(req.Content),
	})
}

// ListDir lists directory entries under the configured root.
type ListDir struct{ root string }

func NewListDir(root string) *ListDir { return &ListDir{root: root} }

func (t *ListDir) Schema() tool.Schema {
	return tool.Schema{
		Name:        "list_dir",
		Description: "List directory entries relative to the tool file root",
		Params: map[string]tool.Param{
			"path": {Type: tool.TypeString, Description: "Relative directory path, default \".\""},
		},
	}
}

func (t *ListDir) Timeout() time.Duration { return 10 * time.Second }

type listDirRequest struct {
	Path string `json:"path"`
}

func (t *ListDir) Execute(_ context.Context, params map[string]any) tool.Result {
	var req listDirRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid list_dir params: %v", err)
	}
	if req.Path == "" {
		req.Path = "."
	}

	abs, err := resolveUnderRoot(t.root, req.Path)
	if err != nil {
		return tool.Errorf("list_dir: %v", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return tool.Errorf("list_dir: %v", err)
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"name":  e.Name(),
			"isDir": e.IsDir(),
		})
	}
	return tool.Success(map[string]any{
		"path":    req.Path,
		"entries": out,
	})
}
