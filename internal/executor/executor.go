// Package executor resolves directive paths against a base directory and
// performs the file-system mutations, collecting per-directive outcomes.
// Failures are recorded in the report, not raised; the apply call itself
// errors only when it cannot proceed at all.
package executor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/okrent/llmapply/internal/envelope"
	"github.com/okrent/llmapply/internal/hashline"
	"github.com/okrent/llmapply/internal/patch"
)

// Options tunes one Executor.
type Options struct {
	// DryRun completes patches and records the resulting diffs without
	// touching the file system.
	DryRun bool
	Logger *Logger
}

// Executor applies directive lists under one base directory. It holds no
// state across Apply calls beyond the base directory itself.
type Executor struct {
	baseDir string
	dryRun  bool
	log     *Logger
}

// New creates an Executor rooted at baseDir. The directory must exist.
func New(baseDir string, opts Options) (*Executor, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("base dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base dir %s is not a directory", abs)
	}
	log := opts.Logger
	if log == nil {
		log = NopLogger()
	}
	return &Executor{baseDir: abs, dryRun: opts.DryRun, log: log}, nil
}

// BaseDir returns the resolved base directory.
func (e *Executor) BaseDir() string { return e.baseDir }

// Apply executes the directives in input order. Per-directive failures are
// recorded and do not stop the batch.
func (e *Executor) Apply(changes envelope.Changes) *Report {
	report := &Report{}
	for i := range changes.Directives {
		d := &changes.Directives[i]
		status := statusFor(d)
		if err := e.run(d, &status); err != nil {
			status.Error = err.Error()
		} else {
			status.Success = true
		}
		e.log.DirectiveApplied(status)
		report.Statuses = append(report.Statuses, status)
	}
	e.log.ApplyFinished(e.baseDir, len(report.Statuses), report.FailedCount())
	return report
}

func (e *Executor) run(d *envelope.Directive, status *DirectiveStatus) error {
	switch d.Kind {
	case envelope.KindNew:
		return e.runNew(d)
	case envelope.KindPatch:
		return e.runPatch(d, status)
	case envelope.KindHashlinePatch:
		return e.runHashlinePatch(d)
	case envelope.KindRename:
		return e.runRename(d)
	case envelope.KindDelete:
		return e.runDelete(d)
	case envelope.KindFail:
		return errors.New(d.Reason)
	}
	return fmt.Errorf("unhandled directive kind %v", d.Kind)
}

func (e *Executor) runNew(d *envelope.Directive) error {
	full, err := resolveInBase(e.baseDir, d.FilePath)
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(full); err == nil && string(existing) == d.Content.Text {
		return fmt.Errorf("no changes for %s: content is identical", d.FilePath)
	}
	if e.dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	return writeFileAtomic(full, d.Content.Text)
}

func (e *Executor) runPatch(d *envelope.Directive, status *DirectiveStatus) error {
	full, err := resolveInBase(e.baseDir, d.FilePath)
	if err != nil {
		return err
	}

	original, exists, err := readIfExists(full)
	if err != nil {
		return err
	}

	res, err := patch.Apply(original, d.Content.Text)
	if err != nil {
		return err
	}
	status.Tier = res.Tier

	if exists && res.Content == original {
		return fmt.Errorf("no changes for %s: patch is a no-op", d.FilePath)
	}
	if e.dryRun {
		status.Diff = previewDiff(original, res.Content, d.FilePath)
		return nil
	}
	if !exists {
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}
	return writeFileAtomic(full, res.Content)
}

func (e *Executor) runHashlinePatch(d *envelope.Directive) error {
	full, err := resolveInBase(e.baseDir, d.FilePath)
	if err != nil {
		return err
	}

	original, exists, err := readIfExists(full)
	if err != nil {
		return err
	}

	edits, err := hashline.ParseEdits(d.Content.Text)
	if err != nil {
		return err
	}
	res, err := hashline.Apply(original, edits)
	if err != nil {
		return err
	}

	if exists && res.Content == original {
		return fmt.Errorf("no changes for %s: edits are a no-op", d.FilePath)
	}
	if e.dryRun {
		return nil
	}
	if !exists {
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}
	return writeFileAtomic(full, res.Content)
}

func (e *Executor) runRename(d *envelope.Directive) error {
	from, err := resolveInBase(e.baseDir, d.FromPath)
	if err != nil {
		return err
	}
	to, err := resolveInBase(e.baseDir, d.ToPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(from); err != nil {
		return fmt.Errorf("rename source %s: %w", d.FromPath, err)
	}
	if e.dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	return os.Rename(from, to)
}

func (e *Executor) runDelete(d *envelope.Directive) error {
	full, err := resolveInBase(e.baseDir, d.FilePath)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("delete %s: %w", d.FilePath, err)
	}
	if e.dryRun {
		return nil
	}
	if info.IsDir() {
		return os.RemoveAll(full)
	}
	return os.Remove(full)
}

func readIfExists(full string) (content string, exists bool, err error) {
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read file: %w", err)
	}
	return string(data), true, nil
}

// writeFileAtomic writes via temp file + rename so a failed write never
// leaves a truncated file behind.
func writeFileAtomic(full, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(full), ".llmapply-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if info, err := os.Stat(full); err == nil {
		_ = os.Chmod(tmpPath, info.Mode())
	} else {
		_ = os.Chmod(tmpPath, 0644)
	}

	if err := os.Rename(tmpPath, full); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// previewDiff renders a display diff for dry-run reports.
func previewDiff(oldContent, newContent, path string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}
