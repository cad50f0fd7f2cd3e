package envelope

import (
	"testing"
)

func TestNewContent(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantFence bool
	}{
		{
			name: "plain with newline trim",
			raw:  "\nline one\nline two\n",
			want: "line one\nline two",
		},
		{
			name: "no surrounding newlines",
			raw:  "line one",
			want: "line one",
		},
		{
			name:      "fenced with language tag",
			raw:       "\n```go\npackage main\n\nfunc main() {}\n```\n",
			want:      "package main\n\nfunc main() {}",
			wantFence: true,
		},
		{
			name:      "fenced without language tag",
			raw:       "\n```\nbody\n```\n",
			want:      "body",
			wantFence: true,
		},
		{
			name: "opening fence without closing fence is kept",
			raw:  "\n```go\nbody\n",
			want: "```go\nbody",
		},
		{
			name: "backticks mid-content are not a fence",
			raw:  "\nuse `code` here\n",
			want: "use `code` here",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContent(tt.raw)
			if c.Text != tt.want {
				t.Errorf("Text = %q, want %q", c.Text, tt.want)
			}
			if (c.Fence != nil) != tt.wantFence {
				t.Errorf("Fence = %+v, wantFence %v", c.Fence, tt.wantFence)
			}
		})
	}
}

func TestNewContentFenceRecorded(t *testing.T) {
	c := NewContent("\n```rust\nfn main() {}\n```\n")
	if c.Fence == nil {
		t.Fatal("expected fence")
	}
	if c.Fence.Start != "```rust" {
		t.Errorf("fence start = %q", c.Fence.Start)
	}
	if c.Fence.End != "```" {
		t.Errorf("fence end = %q", c.Fence.End)
	}
}
