package executor

import (
	"github.com/okrent/llmapply/internal/envelope"
	"github.com/okrent/llmapply/internal/patch"
)

// DirectiveStatus is the per-directive outcome record.
type DirectiveStatus struct {
	Kind     string     `json:"kind"`
	FilePath string     `json:"file_path"`
	FromPath string     `json:"from_path,omitempty"`
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
	Tier     patch.Tier `json:"-"`

	// Diff holds a preview unified diff (old vs new content) of a patch
	// directive in dry-run mode.
	Diff string `json:"diff,omitempty"`
}

// Report collects every directive's outcome for one apply call.
type Report struct {
	Statuses []DirectiveStatus `json:"statuses"`
}

// AllSucceeded reports whether no directive failed.
func (r *Report) AllSucceeded() bool {
	for _, s := range r.Statuses {
		if !s.Success {
			return false
		}
	}
	return true
}

// FailedCount returns the number of failed directives.
func (r *Report) FailedCount() int {
	n := 0
	for _, s := range r.Statuses {
		if !s.Success {
			n++
		}
	}
	return n
}

func statusFor(d *envelope.Directive) DirectiveStatus {
	s := DirectiveStatus{Kind: d.Kind.String(), FilePath: d.FilePath}
	switch d.Kind {
	case envelope.KindRename:
		s.FilePath = d.ToPath
		s.FromPath = d.FromPath
	case envelope.KindFail:
		s.Kind = "Fail"
		if s.FilePath == "" {
			s.FilePath = "unknown"
		}
	}
	return s
}
