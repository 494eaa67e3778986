package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

func TestWriteThenReadFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write := NewWriteFile(root)
	read := NewReadFile(root)

	res := write.Execute(context.Background(), map[string]any{
		"path":    "notes/hello.txt",
		"content": "hello world",
	})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("write status = %s, error = %q", res.Status, res.Error)
	}

	res = read.Execute(context.Background(), map[string]any{"path": "notes/hello.txt"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("read status = %s, error = %q", res.Status, res.Error)
	}
	if got := res.Data.(map[string]any)["content"]; got != "hello world" {
		t.Fatalf("content = %q", got)
	}
}

func TestFileTools_RejectEscapes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, path := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		res := NewReadFile(root).Execute(context.Background(), map[string]any{"path": path})
		if res.Status != tool.StatusError {
			t.Fatalf("read %q status = %s, want error", path, res.Status)
		}
		res = NewWriteFile(root).Execute(context.Background(), map[string]any{"path": path, "content": "x"})
		if res.Status != tool.StatusError {
			t.Fatalf("write %q status = %s, want error", path, res.Status)
		}
	}
	// Nothing may have been created outside the root.
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "outside.txt")); err == nil {
		t.Fatalf("escape write landed outside the root")
	}
}

func TestReadFile_TruncatesLargeFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	big := strings.Repeat("a", maxReadBytes+100)
	if err := os.WriteFile(filepath.Join(root, "big.txt"), []byte(big), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	res := NewReadFile(root).Execute(context.Background(), map[string]any{"path": "big.txt"})
	if res.Status != tool.StatusPartial {
		t.Fatalf("status = %s, want partial", res.Status)
	}
	if !strings.Contains(res.Error, "truncated") {
		t.Fatalf("warning = %q", res.Error)
	}
	if got := len(res.Data.(map[string]any)["content"].(string)); got != maxReadBytes {
		t.Fatalf("content length = %d, want %d", got, maxReadBytes)
	}
}

func TestListDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res := NewListDir(root).Execute(context.Background(), map[string]any{})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %s, error = %q", res.Status, res.Error)
	}
	entries := res.Data.(map[string]any)["entries"].([]map[string]any)
	if len(entries) != 2 {
		t.Fatalf("entries = %v, want 2", entries)
	}
}
