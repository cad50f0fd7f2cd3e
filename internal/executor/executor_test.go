package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okrent/llmapply/internal/envelope"
	"github.com/okrent/llmapply/internal/hashline"
	"github.com/okrent/llmapply/internal/patch"
)

func newTestExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	dir := t.TempDir()
	exec, err := New(dir, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return exec, dir
}

func textContent(s string) envelope.Content {
	return envelope.Content{Text: s}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestExecutorNew(t *testing.T) {
	exec, dir := newTestExecutor(t)

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindNew, FilePath: "src/hello.txt", Content: textContent("hello\n")},
	}})

	if !report.AllSucceeded() {
		t.Fatalf("report = %+v", report)
	}
	if got := readFile(t, filepath.Join(dir, "src", "hello.txt")); got != "hello\n" {
		t.Errorf("content = %q", got)
	}
}

func TestExecutorNewIdenticalContentFails(t *testing.T) {
	exec, dir := newTestExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "same.txt"), []byte("same"), 0644); err != nil {
		t.Fatal(err)
	}

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindNew, FilePath: "same.txt", Content: textContent("same")},
	}})

	if report.AllSucceeded() {
		t.Error("identical content should fail as a no-op")
	}
	if !strings.Contains(report.Statuses[0].Error, "no changes") {
		t.Errorf("error = %q", report.Statuses[0].Error)
	}
}

func TestExecutorPatch(t *testing.T) {
	exec, dir := newTestExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatal(err)
	}

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindPatch, FilePath: "f.txt", Content: textContent("@@\n a\n-b\n+B\n c\n")},
	}})

	if !report.AllSucceeded() {
		t.Fatalf("report = %+v", report)
	}
	if report.Statuses[0].Tier != patch.TierStrict {
		t.Errorf("tier = %v, want strict", report.Statuses[0].Tier)
	}
	if got := readFile(t, filepath.Join(dir, "f.txt")); got != "a\nB\nc\n" {
		t.Errorf("content = %q", got)
	}
}

func TestExecutorPatchMissingFileCreatesIt(t *testing.T) {
	exec, dir := newTestExecutor(t)

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindPatch, FilePath: "fresh.txt", Content: textContent("@@\n+first line\n")},
	}})

	if !report.AllSucceeded() {
		t.Fatalf("report = %+v", report)
	}
	if got := readFile(t, filepath.Join(dir, "fresh.txt")); got != "first line\n" {
		t.Errorf("content = %q", got)
	}
}

func TestExecutorPatchNoMatchLeavesFileUntouched(t *testing.T) {
	exec, dir := newTestExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("foo\nbar\n"), 0644); err != nil {
		t.Fatal(err)
	}

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindPatch, FilePath: "f.txt", Content: textContent("@@\n qux\n+zap\n")},
		{Kind: envelope.KindNew, FilePath: "other.txt", Content: textContent("ok\n")},
	}})

	if report.Statuses[0].Success {
		t.Error("no-match patch should fail")
	}
	if !report.Statuses[1].Success {
		t.Error("later directives should still run")
	}
	if got := readFile(t, filepath.Join(dir, "f.txt")); got != "foo\nbar\n" {
		t.Errorf("failed patch modified the file: %q", got)
	}
}

func TestExecutorHashlinePatch(t *testing.T) {
	exec, dir := newTestExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "h.txt"), []byte("aaa\nbbb\nccc"), 0644); err != nil {
		t.Fatal(err)
	}

	tag := hashline.FormatLineTag(2, "bbb")

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindHashlinePatch, FilePath: "h.txt", Content: textContent(tag + ":BBB")},
	}})

	if !report.AllSucceeded() {
		t.Fatalf("report = %+v", report)
	}
	if got := readFile(t, filepath.Join(dir, "h.txt")); got != "aaa\nBBB\nccc" {
		t.Errorf("content = %q", got)
	}
}

func TestExecutorRename(t *testing.T) {
	exec, dir := newTestExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "old.txt"), []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindRename, FromPath: "old.txt", ToPath: "sub/new.txt"},
	}})

	if !report.AllSucceeded() {
		t.Fatalf("report = %+v", report)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.txt")); !os.IsNotExist(err) {
		t.Error("source still exists")
	}
	if got := readFile(t, filepath.Join(dir, "sub", "new.txt")); got != "content" {
		t.Errorf("content = %q", got)
	}
}

func TestExecutorRenameMissingSourceFails(t *testing.T) {
	exec, _ := newTestExecutor(t)

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindRename, FromPath: "ghost.txt", ToPath: "new.txt"},
	}})

	if report.AllSucceeded() {
		t.Error("rename of missing source should fail")
	}
}

func TestExecutorDelete(t *testing.T) {
	exec, dir := newTestExecutor(t)

	t.Run("file", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "gone.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
			{Kind: envelope.KindDelete, FilePath: "gone.txt"},
		}})
		if !report.AllSucceeded() {
			t.Fatalf("report = %+v", report)
		}
		if _, err := os.Stat(filepath.Join(dir, "gone.txt")); !os.IsNotExist(err) {
			t.Error("file still exists")
		}
	})

	t.Run("directory", func(t *testing.T) {
		sub := filepath.Join(dir, "subdir")
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
			{Kind: envelope.KindDelete, FilePath: "subdir"},
		}})
		if !report.AllSucceeded() {
			t.Fatalf("report = %+v", report)
		}
		if _, err := os.Stat(sub); !os.IsNotExist(err) {
			t.Error("directory still exists")
		}
	})

	t.Run("missing target fails", func(t *testing.T) {
		report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
			{Kind: envelope.KindDelete, FilePath: "never-there.txt"},
		}})
		if report.AllSucceeded() {
			t.Error("delete of missing path should fail")
		}
	})
}

func TestExecutorPathEscape(t *testing.T) {
	exec, dir := newTestExecutor(t)

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindNew, FilePath: "../outside.txt", Content: textContent("nope")},
		{Kind: envelope.KindDelete, FilePath: "a/../../etc/passwd"},
	}})

	for i, s := range report.Statuses {
		if s.Success {
			t.Errorf("directive %d should have failed", i)
		}
		if !strings.Contains(s.Error, "escapes base directory") {
			t.Errorf("directive %d error = %q", i, s.Error)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "outside.txt")); !os.IsNotExist(err) {
		t.Error("file was written outside the base directory")
	}
}

func TestExecutorFailDirective(t *testing.T) {
	exec, _ := newTestExecutor(t)

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindFail, FailKind: "FILE_NEW", FilePath: "x.txt", Reason: "missing attribute"},
	}})

	s := report.Statuses[0]
	if s.Success || s.Error != "missing attribute" || s.Kind != "Fail" {
		t.Errorf("status = %+v", s)
	}
}

func TestExecutorDryRun(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	exec, err := New(dir, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}

	report := exec.Apply(envelope.Changes{Directives: []envelope.Directive{
		{Kind: envelope.KindPatch, FilePath: "f.txt", Content: textContent("@@\n a\n-b\n+B\n c\n")},
		{Kind: envelope.KindNew, FilePath: "new.txt", Content: textContent("x\n")},
	}})

	if !report.AllSucceeded() {
		t.Fatalf("report = %+v", report)
	}
	if got := readFile(t, filepath.Join(dir, "f.txt")); got != "a\nb\nc\n" {
		t.Errorf("dry run modified the file: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "new.txt")); !os.IsNotExist(err) {
		t.Error("dry run created a file")
	}
	if !strings.Contains(report.Statuses[0].Diff, "-b") || !strings.Contains(report.Statuses[0].Diff, "+B") {
		t.Errorf("diff preview = %q", report.Statuses[0].Diff)
	}
}

func TestExecutorBaseDirMustExist(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), Options{}); err == nil {
		t.Error("expected error for missing base dir")
	}
}
