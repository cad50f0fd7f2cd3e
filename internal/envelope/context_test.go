package envelope

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildFilesContext(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "src", "main.go"), "package main\n")
	mustWrite(t, filepath.Join(dir, "src", "util", "x.go"), "package util")
	mustWrite(t, filepath.Join(dir, "README.md"), "readme\n")

	t.Run("recursive glob", func(t *testing.T) {
		out, err := BuildFilesContext(dir, []string{"src/**/*.go"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, `<FILE_CONTENT path="src/main.go">`) {
			t.Errorf("missing main.go block:\n%s", out)
		}
		if !strings.Contains(out, `<FILE_CONTENT path="src/util/x.go">`) {
			t.Errorf("missing nested block:\n%s", out)
		}
		if strings.Contains(out, "README.md") {
			t.Errorf("unmatched file included:\n%s", out)
		}
	})

	t.Run("missing trailing newline is added", func(t *testing.T) {
		out, err := BuildFilesContext(dir, []string{"src/util/*.go"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "package util\n</FILE_CONTENT>") {
			t.Errorf("content should end with a newline before the close tag:\n%s", out)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := BuildFilesContext(dir, []string{"*.rs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "" {
			t.Errorf("out = %q, want empty", out)
		}
	})
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*.go", "main.go", true},
		{"*.go", "src/main.go", false},
		{"src/*.go", "src/main.go", true},
		{"src/**/*.go", "src/a/b/c.go", true},
		{"src/**/*.go", "src/main.go", true},
		{"**/*.md", "docs/guide.md", true},
		{"**/*.md", "guide.md", true},
		{"src/*.go", "src/sub/x.go", false},
	}
	for _, tt := range tests {
		got, err := matchGlob(tt.pattern, tt.name)
		if err != nil {
			t.Fatalf("matchGlob(%q, %q): %v", tt.pattern, tt.name, err)
		}
		if got != tt.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
